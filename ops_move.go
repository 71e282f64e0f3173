package cpu88

// MOV family, stack transfer (PUSH/POP/XCHG), LEA/LES/LDS, the flags
// byte instructions LAHF/SAHF/PUSHF/POPF, and XLAT. Opcode 0xFF's full
// extension group (INC/DEC/CALL/JMP/PUSH) is dispatched from
// ops_branch.go so only one file owns that table slot; execPushEA
// below is the helper it calls for reg==6.
func init() {
	registerMOVFamily()
	registerStackFamily()
	registerXCHGFamily()
	registerLEAFamily()
	registerFlagsByteFamily()
	registerXLAT()
}

func accEA(w Width) EA {
	if w == Byte {
		return EA{Kind: EARegister, Reg8: AL}
	}
	return EA{Kind: EARegister, Reg16: AX}
}

func registerMOVFamily() {
	// r/m,r and r,r/m — 88/89 store to r/m, 8A/8B store to reg.
	opcodeTable[0x88] = func(c *CPU, inst *decodedInstruction) { c.execMovRegMem(Byte, false) }
	opcodeTable[0x89] = func(c *CPU, inst *decodedInstruction) { c.execMovRegMem(Word, false) }
	opcodeTable[0x8A] = func(c *CPU, inst *decodedInstruction) { c.execMovRegMem(Byte, true) }
	opcodeTable[0x8B] = func(c *CPU, inst *decodedInstruction) { c.execMovRegMem(Word, true) }

	// MOV r/m16,Sreg (8C) and MOV Sreg,r/m16 (8E).
	opcodeTable[0x8C] = func(c *CPU, inst *decodedInstruction) { c.execMovSegMem(false) }
	opcodeTable[0x8E] = func(c *CPU, inst *decodedInstruction) { c.execMovSegMem(true) }

	// MOV AL/AX,moffs and moffs,AL/AX.
	opcodeTable[0xA0] = func(c *CPU, inst *decodedInstruction) { c.execMovAccMoffs(Byte, true) }
	opcodeTable[0xA1] = func(c *CPU, inst *decodedInstruction) { c.execMovAccMoffs(Word, true) }
	opcodeTable[0xA2] = func(c *CPU, inst *decodedInstruction) { c.execMovAccMoffs(Byte, false) }
	opcodeTable[0xA3] = func(c *CPU, inst *decodedInstruction) { c.execMovAccMoffs(Word, false) }

	// MOV r8/r16,imm (B0-BF).
	for i := uint8(0); i < 8; i++ {
		reg := register8LUT[i]
		opcodeTable[0xB0+i] = func(c *CPU, inst *decodedInstruction) {
			c.regs.Set8(reg, c.fetchByte())
		}
	}
	for i := uint8(0); i < 8; i++ {
		reg := register16LUT[i]
		opcodeTable[0xB8+i] = func(c *CPU, inst *decodedInstruction) {
			c.regs.Set16(reg, c.fetchWord())
		}
	}

	// MOV r/m,imm (C6/C7).
	opcodeTable[0xC6] = func(c *CPU, inst *decodedInstruction) { c.execMovImm(Byte) }
	opcodeTable[0xC7] = func(c *CPU, inst *decodedInstruction) { c.execMovImm(Word) }
}

func (c *CPU) execMovRegMem(w Width, toReg bool) {
	m, ea := c.readModRM(w)
	regEA := EA{Kind: EARegister, Reg8: register8LUT[m.reg], Reg16: register16LUT[m.reg]}
	var dst, src EA
	if toReg {
		dst, src = regEA, ea
	} else {
		dst, src = ea, regEA
	}
	c.writeEA(dst, w, c.readEA(src, w))
}

func (c *CPU) execMovSegMem(toSeg bool) {
	m, ea := c.readModRM(Word)
	segEA := EA{Kind: EARegister, Reg16: segmentRegLUT[m.reg&0x03]}
	if toSeg {
		c.writeEA(segEA, Word, c.readEA(ea, Word))
	} else {
		c.writeEA(ea, Word, c.readEA(segEA, Word))
	}
}

func (c *CPU) execMovAccMoffs(w Width, load bool) {
	off := c.fetchWord()
	seg := c.segOverride
	if seg == NoSegmentOverride {
		seg = DS
	}
	ea := EA{Kind: EAMemory, Addr: Segmented(c.regs.Get16(seg), off)}
	if load {
		c.writeEA(accEA(w), w, c.readEA(ea, w))
	} else {
		c.writeEA(ea, w, c.readEA(accEA(w), w))
	}
}

func (c *CPU) execMovImm(w Width) {
	_, ea := c.readModRM(w)
	var imm uint16
	if w == Byte {
		imm = uint16(c.fetchByte())
	} else {
		imm = c.fetchWord()
	}
	c.writeEA(ea, w, imm)
}

func registerStackFamily() {
	for i := uint8(0); i < 8; i++ {
		reg := register16LUT[i]
		opcodeTable[0x50+i] = func(c *CPU, inst *decodedInstruction) { c.push(c.regs.Get16(reg)) }
		opcodeTable[0x58+i] = func(c *CPU, inst *decodedInstruction) { c.regs.Set16(reg, c.pop()) }
	}

	segPushOps := [4]uint8{0x06, 0x0E, 0x16, 0x1E}
	segPopOps := [3]uint8{0x07, 0x17, 0x1F} // 0x0F (POP CS) is not a valid form; omitted
	for i, op := range segPushOps {
		seg := segmentRegLUT[i]
		opcodeTable[op] = func(c *CPU, inst *decodedInstruction) { c.push(c.regs.Get16(seg)) }
	}
	segPopRegs := [3]Register16{ES, SS, DS}
	for i, op := range segPopOps {
		seg := segPopRegs[i]
		opcodeTable[op] = func(c *CPU, inst *decodedInstruction) { c.regs.Set16(seg, c.pop()) }
	}

	// POP r/m16 (0x8F, reg field must be 0).
	opcodeTable[0x8F] = func(c *CPU, inst *decodedInstruction) {
		_, ea := c.readModRM(Word)
		c.writeEA(ea, Word, c.pop())
	}
}

// execPushEA is 0xFF/6's handler, called from ops_branch.go's dispatch.
func (c *CPU) execPushEA(ea EA) {
	c.push(c.readEA(ea, Word))
}

func registerXCHGFamily() {
	opcodeTable[0x90] = func(c *CPU, inst *decodedInstruction) {} // XCHG AX,AX == NOP
	for i := uint8(1); i < 8; i++ {
		reg := register16LUT[i]
		opcodeTable[0x90+i] = func(c *CPU, inst *decodedInstruction) {
			a, b := c.regs.AX, c.regs.Get16(reg)
			c.regs.AX = b
			c.regs.Set16(reg, a)
		}
	}
	opcodeTable[0x86] = func(c *CPU, inst *decodedInstruction) { c.execXchgRegMem(Byte) }
	opcodeTable[0x87] = func(c *CPU, inst *decodedInstruction) { c.execXchgRegMem(Word) }
}

func (c *CPU) execXchgRegMem(w Width) {
	m, ea := c.readModRM(w)
	regEA := EA{Kind: EARegister, Reg8: register8LUT[m.reg], Reg16: register16LUT[m.reg]}
	dv, sv := c.readEA(ea, w), c.readEA(regEA, w)
	c.writeEA(ea, w, sv)
	c.writeEA(regEA, w, dv)
}

func registerLEAFamily() {
	opcodeTable[0x8D] = func(c *CPU, inst *decodedInstruction) {
		m, ea := c.readModRM(Word)
		reg := register16LUT[m.reg]
		if ea.Kind == EAMemory {
			c.regs.Set16(reg, ea.Addr.Off)
		}
	}
	opcodeTable[0xC4] = func(c *CPU, inst *decodedInstruction) { c.execLoadFarPointer(ES) }
	opcodeTable[0xC5] = func(c *CPU, inst *decodedInstruction) { c.execLoadFarPointer(DS) }
}

// execLoadFarPointer implements LES/LDS: load a 32-bit far pointer
// from memory into reg:seg, reg taking the offset and seg the segment
// word that follows it.
func (c *CPU) execLoadFarPointer(seg Register16) {
	m, ea := c.readModRM(Word)
	if ea.Kind != EAMemory {
		return
	}
	reg := register16LUT[m.reg]
	off := c.readEA(ea, Word)
	segAddr := ea.Addr
	segAddr.Off += 2
	segEA := EA{Kind: EAMemory, Addr: segAddr}
	segVal := c.readEA(segEA, Word)
	c.regs.Set16(reg, off)
	c.regs.Set16(seg, segVal)
}

func registerFlagsByteFamily() {
	opcodeTable[0x9F] = func(c *CPU, inst *decodedInstruction) { // LAHF
		c.regs.Set8(AH, uint8(c.regs.Flags))
	}
	opcodeTable[0x9E] = func(c *CPU, inst *decodedInstruction) { // SAHF
		ah := uint16(c.regs.Get8(AH))
		lowByte := (ah & 0xD5) | flagReserved1 // CF PF AF ZF SF, plus the always-1 bit
		c.regs.Flags = (c.regs.Flags &^ 0xFF) | lowByte
	}
	opcodeTable[0x9C] = func(c *CPU, inst *decodedInstruction) { // PUSHF
		c.push(c.regs.Flags)
	}
	opcodeTable[0x9D] = func(c *CPU, inst *decodedInstruction) { // POPF
		c.regs.Flags = reservedFlags(c.pop())
	}
}

func registerXLAT() {
	opcodeTable[0xD7] = func(c *CPU, inst *decodedInstruction) {
		seg := c.segOverride
		if seg == NoSegmentOverride {
			seg = DS
		}
		addr := linearize(c.regs.Get16(seg), c.regs.BX+uint16(c.regs.Get8(AL)))
		c.regs.Set8(AL, c.readMem8(addr))
	}
}
