package cpu88

// String instruction family: MOVS/CMPS/STOS/LODS/SCAS, plus the
// REP/REPE/REPNE prefix glue built on rep.go's coroutine. Each
// iteration samples a pending interrupt the way the real BIU does
// between string elements, so the "lost prefix" rewind in rep.go
// triggers correctly when one lands mid-loop.
func init() {
	registerStringFamily()
}

func registerStringFamily() {
	opcodeTable[0xA4] = func(c *CPU, inst *decodedInstruction) { c.execRepString(inst, repNone, func() { c.movsOnce(Byte) }) }
	opcodeTable[0xA5] = func(c *CPU, inst *decodedInstruction) { c.execRepString(inst, repNone, func() { c.movsOnce(Word) }) }
	opcodeTable[0xA6] = func(c *CPU, inst *decodedInstruction) { c.execRepString(inst, cmpsKind(inst), func() { c.cmpsOnce(Byte) }) }
	opcodeTable[0xA7] = func(c *CPU, inst *decodedInstruction) { c.execRepString(inst, cmpsKind(inst), func() { c.cmpsOnce(Word) }) }
	opcodeTable[0xAA] = func(c *CPU, inst *decodedInstruction) { c.execRepString(inst, repNone, func() { c.stosOnce(Byte) }) }
	opcodeTable[0xAB] = func(c *CPU, inst *decodedInstruction) { c.execRepString(inst, repNone, func() { c.stosOnce(Word) }) }
	opcodeTable[0xAC] = func(c *CPU, inst *decodedInstruction) { c.execRepString(inst, repNone, func() { c.lodsOnce(Byte) }) }
	opcodeTable[0xAD] = func(c *CPU, inst *decodedInstruction) { c.execRepString(inst, repNone, func() { c.lodsOnce(Word) }) }
	opcodeTable[0xAE] = func(c *CPU, inst *decodedInstruction) { c.execRepString(inst, cmpsKind(inst), func() { c.scasOnce(Byte) }) }
	opcodeTable[0xAF] = func(c *CPU, inst *decodedInstruction) { c.execRepString(inst, cmpsKind(inst), func() { c.scasOnce(Word) }) }
}

// cmpsKind picks REPE (0xF3) vs REPNE (0xF2) for the ZF-sensitive
// string ops; REPE takes priority if (invalidly) both are present.
func cmpsKind(inst *decodedInstruction) repKind {
	switch {
	case inst.prefixes.rep2: // 0xF3: REPE/REPZ
		return repEqual
	case inst.prefixes.rep1: // 0xF2: REPNE/REPNZ
		return repNotEqual
	}
	return repNone
}

func hasRepPrefix(inst *decodedInstruction) bool {
	return inst.prefixes.rep1 || inst.prefixes.rep2
}

// execRepString runs body once if inst carries no REP prefix, or loops
// it under the rep coroutine otherwise, sampling interrupts between
// elements.
func (c *CPU) execRepString(inst *decodedInstruction, kind repKind, body func()) {
	if !hasRepPrefix(inst) {
		body()
		return
	}
	c.rep.instrIP = inst.repPrefixIP
	c.rep.instrCS = inst.startCS
	if !c.repStart(kind) {
		c.repEnd()
		return
	}
	for {
		body()
		if c.serviceInterruptIfPending() {
			return
		}
		if !c.repStep() {
			break
		}
	}
	c.repEnd()
}

func (c *CPU) stringSrcSeg() Register16 {
	if c.segOverride != NoSegmentOverride {
		return c.segOverride
	}
	return DS
}

func (c *CPU) indexDelta(w Width) uint16 {
	if c.regs.Flags&FlagDirection != 0 {
		return uint16(-int16(w))
	}
	return uint16(w)
}

func (c *CPU) movsOnce(w Width) {
	srcAddr := linearize(c.regs.Get16(c.stringSrcSeg()), c.regs.SI)
	dstAddr := linearize(c.regs.ES, c.regs.DI)
	if w == Byte {
		c.writeMem8(dstAddr, c.readMem8(srcAddr))
	} else {
		c.writeMem16(dstAddr, c.readMem16(srcAddr))
	}
	delta := c.indexDelta(w)
	c.regs.SI += delta
	c.regs.DI += delta
}

func (c *CPU) cmpsOnce(w Width) {
	srcAddr := linearize(c.regs.Get16(c.stringSrcSeg()), c.regs.SI)
	dstAddr := linearize(c.regs.ES, c.regs.DI)
	var a, b uint16
	if w == Byte {
		a, b = uint16(c.readMem8(srcAddr)), uint16(c.readMem8(dstAddr))
	} else {
		a, b = c.readMem16(srcAddr), c.readMem16(dstAddr)
	}
	result, carry, overflow, aux := Sub(a, b, w)
	c.regs.Flags = setArithFlags(c.regs.Flags, result, carry, overflow, aux, w)
	delta := c.indexDelta(w)
	c.regs.SI += delta
	c.regs.DI += delta
}

func (c *CPU) stosOnce(w Width) {
	dstAddr := linearize(c.regs.ES, c.regs.DI)
	if w == Byte {
		c.writeMem8(dstAddr, c.regs.Get8(AL))
	} else {
		c.writeMem16(dstAddr, c.regs.AX)
	}
	c.regs.DI += c.indexDelta(w)
}

func (c *CPU) lodsOnce(w Width) {
	srcAddr := linearize(c.regs.Get16(c.stringSrcSeg()), c.regs.SI)
	if w == Byte {
		c.regs.Set8(AL, c.readMem8(srcAddr))
	} else {
		c.regs.AX = c.readMem16(srcAddr)
	}
	c.regs.SI += c.indexDelta(w)
}

func (c *CPU) scasOnce(w Width) {
	dstAddr := linearize(c.regs.ES, c.regs.DI)
	var a, b uint16
	if w == Byte {
		a, b = uint16(c.regs.Get8(AL)), uint16(c.readMem8(dstAddr))
	} else {
		a, b = c.regs.AX, c.readMem16(dstAddr)
	}
	result, carry, overflow, aux := Sub(a, b, w)
	c.regs.Flags = setArithFlags(c.regs.Flags, result, carry, overflow, aux, w)
	c.regs.DI += c.indexDelta(w)
}
