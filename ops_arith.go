package cpu88

func init() {
	registerAddFamily()
	registerGroup1()
	registerIncDecReg()
	registerGroup3()
	registerGroup2()
	registerBound()
}

// binALU is an ADD/SUB-shaped ALU primitive (no carry-in).
type binALU func(a, b uint16, w Width) (result uint16, carry, overflow, aux bool)

// binALUWithCarry is an ADC/SBB-shaped ALU primitive.
type binALUWithCarry func(a, b uint16, carryIn bool, w Width) (result uint16, carry, overflow, aux bool)

// execBinRegMem executes the classic "op r/m,r" / "op r,r/m" encodings
// that occupy the first six opcodes of every arithmetic group
// (00-05, 08-0D, ..., 38-3D): bits 1-0 of the opcode select
// (width, direction), or (for 04/05-shaped opcodes) AL/AX + imm.
func (c *CPU) execBinRegMem(inst *decodedInstruction, alu binALU, storeResult bool) {
	op := inst.opcode & 0x07
	w := Byte
	if op&0x01 != 0 {
		w = Word
	}

	switch {
	case op == 0x04 || op == 0x05: // AL/AX, imm
		var imm uint16
		if w == Byte {
			imm = uint16(c.fetchByte())
		} else {
			imm = c.fetchWord()
		}
		a := c.readEA(EA{Kind: EARegister, Reg8: AL, Reg16: AX}, w)
		result, carry, overflow, aux := alu(a, imm, w)
		c.regs.Flags = setArithFlags(c.regs.Flags, result, carry, overflow, aux, w)
		if storeResult {
			c.writeEA(EA{Kind: EARegister, Reg8: AL, Reg16: AX}, w, result)
		}
	default:
		toReg := op&0x02 != 0
		m, ea := c.readModRM(w)
		regEA := EA{Kind: EARegister, Reg8: register8LUT[m.reg], Reg16: register16LUT[m.reg]}

		var dst, src EA
		if toReg {
			dst, src = regEA, ea
		} else {
			dst, src = ea, regEA
		}
		dv, sv := c.readEA(dst, w), c.readEA(src, w)
		result, carry, overflow, aux := alu(dv, sv, w)
		c.regs.Flags = setArithFlags(c.regs.Flags, result, carry, overflow, aux, w)
		if storeResult {
			c.writeEA(dst, w, result)
		}
	}
}

// execBinRegMemCarry is execBinRegMem's ADC/SBB counterpart, threading
// the current carry flag in as carryIn.
func (c *CPU) execBinRegMemCarry(inst *decodedInstruction, alu binALUWithCarry) {
	op := inst.opcode & 0x07
	w := Byte
	if op&0x01 != 0 {
		w = Word
	}
	carryIn := c.regs.Flags&FlagCarry != 0

	switch {
	case op == 0x04 || op == 0x05:
		var imm uint16
		if w == Byte {
			imm = uint16(c.fetchByte())
		} else {
			imm = c.fetchWord()
		}
		a := c.readEA(EA{Kind: EARegister, Reg8: AL, Reg16: AX}, w)
		result, carry, overflow, aux := alu(a, imm, carryIn, w)
		c.regs.Flags = setArithFlags(c.regs.Flags, result, carry, overflow, aux, w)
		c.writeEA(EA{Kind: EARegister, Reg8: AL, Reg16: AX}, w, result)
	default:
		toReg := op&0x02 != 0
		m, ea := c.readModRM(w)
		regEA := EA{Kind: EARegister, Reg8: register8LUT[m.reg], Reg16: register16LUT[m.reg]}
		var dst, src EA
		if toReg {
			dst, src = regEA, ea
		} else {
			dst, src = ea, regEA
		}
		dv, sv := c.readEA(dst, w), c.readEA(src, w)
		result, carry, overflow, aux := alu(dv, sv, carryIn, w)
		c.regs.Flags = setArithFlags(c.regs.Flags, result, carry, overflow, aux, w)
		c.writeEA(dst, w, result)
	}
}

func registerAddFamily() {
	for op := uint8(0x00); op <= 0x05; op++ {
		o := op
		opcodeTable[o] = func(c *CPU, inst *decodedInstruction) { c.execBinRegMem(inst, Add, true) }
	}
	for op := uint8(0x10); op <= 0x15; op++ {
		o := op
		opcodeTable[o] = func(c *CPU, inst *decodedInstruction) { c.execBinRegMemCarry(inst, Adc) }
	}
	for op := uint8(0x28); op <= 0x2D; op++ {
		o := op
		opcodeTable[o] = func(c *CPU, inst *decodedInstruction) { c.execBinRegMem(inst, Sub, true) }
	}
	for op := uint8(0x18); op <= 0x1D; op++ {
		o := op
		opcodeTable[o] = func(c *CPU, inst *decodedInstruction) { c.execBinRegMemCarry(inst, Sbb) }
	}
	for op := uint8(0x38); op <= 0x3D; op++ {
		o := op
		opcodeTable[o] = func(c *CPU, inst *decodedInstruction) { c.execBinRegMem(inst, Sub, false) }
	}
}

// registerIncDecReg wires INC r16 (0x40-0x47) and DEC r16 (0x48-0x4F).
// These forms never touch CF (an Intel documented quirk so INC/DEC can
// be used inside an ADC/SBB chain without disturbing carry).
func registerIncDecReg() {
	for i := uint8(0); i < 8; i++ {
		reg := register16LUT[i]
		opcodeTable[0x40+i] = func(c *CPU, inst *decodedInstruction) {
			v := c.regs.Get16(reg)
			result, _, overflow, aux := Add(v, 1, Word)
			c.regs.Flags = setArithFlags(c.regs.Flags, result, c.regs.Flags&FlagCarry != 0, overflow, aux, Word)
			c.regs.Set16(reg, result)
		}
		opcodeTable[0x48+i] = func(c *CPU, inst *decodedInstruction) {
			v := c.regs.Get16(reg)
			result, _, overflow, aux := Sub(v, 1, Word)
			c.regs.Flags = setArithFlags(c.regs.Flags, result, c.regs.Flags&FlagCarry != 0, overflow, aux, Word)
			c.regs.Set16(reg, result)
		}
	}
}

// registerGroup1 wires the 0x80/0x81/0x83 immediate-to-r/m group: the
// ModR/M reg field selects ADD/OR/ADC/SBB/AND/SUB/XOR/CMP.
func registerGroup1() {
	opcodeTable[0x80] = func(c *CPU, inst *decodedInstruction) { c.execGroup1(Byte, false) }
	opcodeTable[0x81] = func(c *CPU, inst *decodedInstruction) { c.execGroup1(Word, false) }
	opcodeTable[0x83] = func(c *CPU, inst *decodedInstruction) { c.execGroup1(Word, true) }
}

// execGroup1 handles 80/81/83: signExtendImm8 is true for 0x83, whose
// immediate is a single sign-extended byte regardless of operand width.
func (c *CPU) execGroup1(w Width, signExtendImm8 bool) {
	m, ea := c.readModRM(w)
	var imm uint16
	if signExtendImm8 || w == Byte {
		imm = uint16(int16(int8(c.fetchByte())))
	} else {
		imm = c.fetchWord()
	}
	dv := c.readEA(ea, w)

	var result uint16
	var carry, overflow, aux bool
	store := true
	switch m.reg {
	case 0: // ADD
		result, carry, overflow, aux = Add(dv, imm, w)
	case 1: // OR
		result = dv | imm
	case 2: // ADC
		result, carry, overflow, aux = Adc(dv, imm, c.regs.Flags&FlagCarry != 0, w)
	case 3: // SBB
		result, carry, overflow, aux = Sbb(dv, imm, c.regs.Flags&FlagCarry != 0, w)
	case 4: // AND
		result = dv & imm
	case 5: // SUB
		result, carry, overflow, aux = Sub(dv, imm, w)
	case 6: // XOR
		result = dv ^ imm
	case 7: // CMP
		result, carry, overflow, aux = Sub(dv, imm, w)
		store = false
	}

	if m.reg == 1 || m.reg == 4 || m.reg == 6 {
		c.regs.Flags = setLogicFlags(c.regs.Flags, result, w, c.variant.clearsAuxOnLogic())
	} else {
		c.regs.Flags = setArithFlags(c.regs.Flags, result, carry, overflow, aux, w)
	}
	if store {
		c.writeEA(ea, w, result)
	}
}

// registerGroup3 wires 0xF6/0xF7: TEST/NOT/NEG/MUL/IMUL/DIV/IDIV
// selected by the ModR/M reg field.
func registerGroup3() {
	opcodeTable[0xF6] = func(c *CPU, inst *decodedInstruction) { c.execGroup3(Byte) }
	opcodeTable[0xF7] = func(c *CPU, inst *decodedInstruction) { c.execGroup3(Word) }
}

func (c *CPU) execGroup3(w Width) {
	m, ea := c.readModRM(w)
	switch m.reg {
	case 0, 1: // TEST r/m, imm
		var imm uint16
		if w == Byte {
			imm = uint16(c.fetchByte())
		} else {
			imm = c.fetchWord()
		}
		dv := c.readEA(ea, w)
		result := dv & imm
		c.regs.Flags = setLogicFlags(c.regs.Flags, result, w, c.variant.clearsAuxOnLogic())
	case 2: // NOT
		dv := c.readEA(ea, w)
		c.writeEA(ea, w, ^dv&w.Mask())
	case 3: // NEG
		dv := c.readEA(ea, w)
		result, carry, overflow, aux := Neg(dv, w)
		c.regs.Flags = setArithFlags(c.regs.Flags, result, carry, overflow, aux, w)
		c.writeEA(ea, w, result)
	case 4: // MUL
		c.execMul(ea, w, false)
	case 5: // IMUL
		c.execMul(ea, w, true)
	case 6: // DIV
		c.execDiv(ea, w, false)
	case 7: // IDIV
		c.execDiv(ea, w, true)
	}
}

func (c *CPU) execMul(ea EA, w Width, signed bool) {
	src := c.readEA(ea, w)
	if w == Byte {
		a := c.regs.Get8(AL)
		var product uint32
		var overflowsByte bool
		if signed {
			p := int32(int8(a)) * int32(int8(uint8(src)))
			product = uint32(p)
			overflowsByte = p < -128 || p > 127
		} else {
			product = uint32(a) * uint32(uint8(src))
			overflowsByte = product > 0xFF
		}
		c.regs.AX = uint16(product)
		c.setMulFlags(overflowsByte)
	} else {
		a := c.regs.AX
		var product uint64
		var overflowsWord bool
		if signed {
			p := int64(int16(a)) * int64(int16(src))
			product = uint64(p)
			overflowsWord = p < -32768 || p > 32767
		} else {
			product = uint64(a) * uint64(src)
			overflowsWord = product > 0xFFFF
		}
		c.regs.AX = uint16(product)
		c.regs.DX = uint16(product >> 16)
		c.setMulFlags(overflowsWord)
	}
}

func (c *CPU) setMulFlags(overflows bool) {
	c.regs.Flags = setFlag(c.regs.Flags, FlagCarry, overflows)
	c.regs.Flags = setFlag(c.regs.Flags, FlagOverflow, overflows)
}

func (c *CPU) execDiv(ea EA, w Width, signed bool) {
	src := c.readEA(ea, w)
	if w == Byte {
		if src == 0 {
			c.exception(vecDivideError)
			return
		}
		dividend := c.regs.AX
		if signed {
			q := int16(dividend) / int16(int8(uint8(src)))
			r := int16(dividend) % int16(int8(uint8(src)))
			if q > 127 || q < -128 {
				c.exception(vecDivideError)
				return
			}
			c.regs.Set8(AL, uint8(int8(q)))
			c.regs.Set8(AH, uint8(int8(r)))
		} else {
			q := dividend / uint16(uint8(src))
			r := dividend % uint16(uint8(src))
			if q > 0xFF {
				c.exception(vecDivideError)
				return
			}
			c.regs.Set8(AL, uint8(q))
			c.regs.Set8(AH, uint8(r))
		}
	} else {
		if src == 0 {
			c.exception(vecDivideError)
			return
		}
		dividend := uint32(c.regs.DX)<<16 | uint32(c.regs.AX)
		if signed {
			sd := int32(dividend)
			q := sd / int32(int16(src))
			r := sd % int32(int16(src))
			if q > 32767 || q < -32768 {
				c.exception(vecDivideError)
				return
			}
			c.regs.AX = uint16(int16(q))
			c.regs.DX = uint16(int16(r))
		} else {
			q := dividend / uint32(src)
			r := dividend % uint32(src)
			if q > 0xFFFF {
				c.exception(vecDivideError)
				return
			}
			c.regs.AX = uint16(q)
			c.regs.DX = uint16(r)
		}
	}
}

// registerBound wires BOUND (0x62): an 80186-lineage range check the
// NEC V20/V30 inherited but the genuine 8088/8086 never implemented
// (spec §7's "vector 5 for BOUND on NEC"). On the Intel variants the
// handler itself raises the invalid-opcode exception (vecInvalidOpcode).
func registerBound() {
	opcodeTable[0x62] = func(c *CPU, inst *decodedInstruction) {
		if c.variant.Arch() != ArchV20 {
			c.exception(vecInvalidOpcode)
			return
		}
		c.execBound()
	}
}

// execBound reads reg (the index) and a {lower,upper} signed-word pair
// from memory at r/m, r/m+2, raising the BOUND-range exception (vector
// 5) if the index falls outside [lower, upper] inclusive.
func (c *CPU) execBound() {
	m, ea := c.readModRM(Word)
	if ea.Kind != EAMemory {
		// A register r/m form is not a valid encoding of BOUND; treat
		// it as the undefined-behavior invalid-opcode case.
		c.exception(vecInvalidOpcode)
		return
	}
	reg := register16LUT[m.reg]
	index := int16(c.regs.Get16(reg))

	lower := int16(c.readEA(ea, Word))
	upperAddr := ea.Addr
	upperAddr.Off += 2
	upperEA := EA{Kind: EAMemory, Addr: upperAddr}
	upper := int16(c.readEA(upperEA, Word))

	if index < lower || index > upper {
		c.exception(vecBoundRange)
	}
}

// registerGroup2 wires the INC/DEC-by-ModR/M forms of 0xFE/0xFF (the
// rest of 0xFF's extensions — CALL/JMP/PUSH indirect — live in
// ops_branch.go/ops_move.go).
func registerGroup2() {
	opcodeTable[0xFE] = func(c *CPU, inst *decodedInstruction) {
		m, ea := c.readModRM(Byte)
		c.execIncDecEA(ea, Byte, m.reg == 1)
	}
	// 0xFF is registered by ops_branch.go, which falls back to
	// execIncDecEA for reg==0/1.
}

func (c *CPU) execIncDecEA(ea EA, w Width, dec bool) {
	dv := c.readEA(ea, w)
	var result uint16
	var overflow, aux bool
	if dec {
		result, _, overflow, aux = Sub(dv, 1, w)
	} else {
		result, _, overflow, aux = Add(dv, 1, w)
	}
	c.regs.Flags = setArithFlags(c.regs.Flags, result, c.regs.Flags&FlagCarry != 0, overflow, aux, w)
	c.writeEA(ea, w, result)
}
