package cpu88

func init() {
	registerLogicFamily()
}

// logicALU is an AND/OR/XOR-shaped primitive: no carry in, CF/OF
// always cleared by the caller via setLogicFlags.
type logicALU func(a, b uint16) uint16

func andOp(a, b uint16) uint16 { return a & b }
func orOp(a, b uint16) uint16  { return a | b }
func xorOp(a, b uint16) uint16 { return a ^ b }

// execLogicRegMem mirrors execBinRegMem but for the logic family.
func (c *CPU) execLogicRegMem(inst *decodedInstruction, alu logicALU) {
	op := inst.opcode & 0x07
	w := Byte
	if op&0x01 != 0 {
		w = Word
	}

	var dstEA EA
	var dv, sv uint16

	switch {
	case op == 0x04 || op == 0x05:
		dstEA = EA{Kind: EARegister, Reg8: AL, Reg16: AX}
		if w == Byte {
			sv = uint16(c.fetchByte())
		} else {
			sv = c.fetchWord()
		}
		dv = c.readEA(dstEA, w)
	default:
		toReg := op&0x02 != 0
		m, ea := c.readModRM(w)
		regEA := EA{Kind: EARegister, Reg8: register8LUT[m.reg], Reg16: register16LUT[m.reg]}
		var srcEA EA
		if toReg {
			dstEA, srcEA = regEA, ea
		} else {
			dstEA, srcEA = ea, regEA
		}
		dv, sv = c.readEA(dstEA, w), c.readEA(srcEA, w)
	}

	result := alu(dv, sv)
	c.regs.Flags = setLogicFlags(c.regs.Flags, result, w, c.variant.clearsAuxOnLogic())
	c.writeEA(dstEA, w, result)
}

func registerLogicFamily() {
	for op := uint8(0x20); op <= 0x25; op++ {
		o := op
		opcodeTable[o] = func(c *CPU, inst *decodedInstruction) { c.execLogicRegMem(inst, andOp) }
	}
	for op := uint8(0x08); op <= 0x0D; op++ {
		o := op
		opcodeTable[o] = func(c *CPU, inst *decodedInstruction) { c.execLogicRegMem(inst, orOp) }
	}
	for op := uint8(0x30); op <= 0x35; op++ {
		o := op
		opcodeTable[o] = func(c *CPU, inst *decodedInstruction) { c.execLogicRegMem(inst, xorOp) }
	}

	// TEST: r/m,r (84/85) and acc,imm (A8/A9). Never writes its result.
	opcodeTable[0x84] = func(c *CPU, inst *decodedInstruction) { c.execTestRegMem(Byte) }
	opcodeTable[0x85] = func(c *CPU, inst *decodedInstruction) { c.execTestRegMem(Word) }
	opcodeTable[0xA8] = func(c *CPU, inst *decodedInstruction) {
		imm := uint16(c.fetchByte())
		a := c.regs.Get8(AL)
		c.regs.Flags = setLogicFlags(c.regs.Flags, uint16(a)&imm, Byte, c.variant.clearsAuxOnLogic())
	}
	opcodeTable[0xA9] = func(c *CPU, inst *decodedInstruction) {
		imm := c.fetchWord()
		c.regs.Flags = setLogicFlags(c.regs.Flags, c.regs.AX&imm, Word, c.variant.clearsAuxOnLogic())
	}
}

func (c *CPU) execTestRegMem(w Width) {
	m, ea := c.readModRM(w)
	regEA := EA{Kind: EARegister, Reg8: register8LUT[m.reg], Reg16: register16LUT[m.reg]}
	dv, sv := c.readEA(ea, w), c.readEA(regEA, w)
	c.regs.Flags = setLogicFlags(c.regs.Flags, dv&sv, w, c.variant.clearsAuxOnLogic())
}
