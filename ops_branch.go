package cpu88

// Jcc/JMP/CALL/RET/LOOP family, plus opcode 0xFF's full extension
// group (this is the one file that registers opcodeTable[0xFF]: reg
// 0/1 fall back to ops_arith.go's execIncDecEA, reg 6 to ops_move.go's
// execPushEA, reg 2-5 are CALL/JMP indirect handled here).
func init() {
	registerJcc()
	registerJmpCallDirect()
	registerRet()
	registerLoop()
	registerGroup5()
}

// condition evaluates one of the 16 8086 Jcc test conditions against
// the current flags.
func (c *CPU) condition(cc uint8) bool {
	f := c.regs.Flags
	cf := f&FlagCarry != 0
	zf := f&FlagZero != 0
	sf := f&FlagSign != 0
	of := f&FlagOverflow != 0
	pf := f&FlagParity != 0
	switch cc {
	case 0x0: // JO
		return of
	case 0x1: // JNO
		return !of
	case 0x2: // JB/JC/JNAE
		return cf
	case 0x3: // JAE/JNB/JNC
		return !cf
	case 0x4: // JE/JZ
		return zf
	case 0x5: // JNE/JNZ
		return !zf
	case 0x6: // JBE/JNA
		return cf || zf
	case 0x7: // JA/JNBE
		return !cf && !zf
	case 0x8: // JS
		return sf
	case 0x9: // JNS
		return !sf
	case 0xA: // JP/JPE
		return pf
	case 0xB: // JNP/JPO
		return !pf
	case 0xC: // JL/JNGE
		return sf != of
	case 0xD: // JGE/JNL
		return sf == of
	case 0xE: // JLE/JNG
		return zf || sf != of
	case 0xF: // JG/JNLE
		return !zf && sf == of
	}
	return false
}

func registerJcc() {
	for cc := uint8(0); cc < 16; cc++ {
		condition := cc
		opcodeTable[0x70+cc] = func(c *CPU, inst *decodedInstruction) {
			rel := int8(c.fetchByte())
			if c.condition(condition) {
				c.regs.IP = uint16(int32(c.regs.IP) + int32(rel))
				c.biu.queue.Flush()
			}
		}
	}
}

func registerJmpCallDirect() {
	opcodeTable[0xEB] = func(c *CPU, inst *decodedInstruction) { // JMP short
		rel := int8(c.fetchByte())
		c.regs.IP = uint16(int32(c.regs.IP) + int32(rel))
		c.biu.queue.Flush()
	}
	opcodeTable[0xE9] = func(c *CPU, inst *decodedInstruction) { // JMP near
		rel := int16(c.fetchWord())
		c.regs.IP = uint16(int32(c.regs.IP) + int32(rel))
		c.biu.queue.Flush()
	}
	opcodeTable[0xEA] = func(c *CPU, inst *decodedInstruction) { // JMP far
		newIP := c.fetchWord()
		newCS := c.fetchWord()
		c.regs.IP = newIP
		c.regs.CS = newCS
		c.biu.queue.Flush()
	}
	opcodeTable[0xE8] = func(c *CPU, inst *decodedInstruction) { // CALL near
		rel := int16(c.fetchWord())
		c.push(c.regs.IP)
		c.pushCallFrame()
		c.regs.IP = uint16(int32(c.regs.IP) + int32(rel))
		c.biu.queue.Flush()
	}
	opcodeTable[0x9A] = func(c *CPU, inst *decodedInstruction) { // CALL far
		newIP := c.fetchWord()
		newCS := c.fetchWord()
		c.push(c.regs.CS)
		c.push(c.regs.IP)
		c.pushCallFrame()
		c.regs.IP = newIP
		c.regs.CS = newCS
		c.biu.queue.Flush()
	}
}

func registerRet() {
	opcodeTable[0xC3] = func(c *CPU, inst *decodedInstruction) { // RET near
		c.regs.IP = c.pop()
		c.biu.queue.Flush()
		c.popCallFrame()
	}
	opcodeTable[0xC2] = func(c *CPU, inst *decodedInstruction) { // RET near, pop imm16
		n := c.fetchWord()
		c.regs.IP = c.pop()
		c.regs.SP += n
		c.biu.queue.Flush()
		c.popCallFrame()
	}
	opcodeTable[0xCB] = func(c *CPU, inst *decodedInstruction) { // RETF
		c.regs.IP = c.pop()
		c.regs.CS = c.pop()
		c.biu.queue.Flush()
		c.popCallFrame()
	}
	opcodeTable[0xCA] = func(c *CPU, inst *decodedInstruction) { // RETF, pop imm16
		n := c.fetchWord()
		c.regs.IP = c.pop()
		c.regs.CS = c.pop()
		c.regs.SP += n
		c.biu.queue.Flush()
		c.popCallFrame()
	}
}

func registerLoop() {
	opcodeTable[0xE2] = func(c *CPU, inst *decodedInstruction) { // LOOP
		rel := int8(c.fetchByte())
		c.regs.CX--
		if c.regs.CX != 0 {
			c.regs.IP = uint16(int32(c.regs.IP) + int32(rel))
			c.biu.queue.Flush()
		}
	}
	opcodeTable[0xE1] = func(c *CPU, inst *decodedInstruction) { // LOOPE/LOOPZ
		rel := int8(c.fetchByte())
		c.regs.CX--
		if c.regs.CX != 0 && c.regs.Flags&FlagZero != 0 {
			c.regs.IP = uint16(int32(c.regs.IP) + int32(rel))
			c.biu.queue.Flush()
		}
	}
	opcodeTable[0xE0] = func(c *CPU, inst *decodedInstruction) { // LOOPNE/LOOPNZ
		rel := int8(c.fetchByte())
		c.regs.CX--
		if c.regs.CX != 0 && c.regs.Flags&FlagZero == 0 {
			c.regs.IP = uint16(int32(c.regs.IP) + int32(rel))
			c.biu.queue.Flush()
		}
	}
	opcodeTable[0xE3] = func(c *CPU, inst *decodedInstruction) { // JCXZ
		rel := int8(c.fetchByte())
		if c.regs.CX == 0 {
			c.regs.IP = uint16(int32(c.regs.IP) + int32(rel))
			c.biu.queue.Flush()
		}
	}
}

// registerGroup5 wires the full 0xFF extension group. reg selects:
// 0 INC, 1 DEC, 2 CALL near indirect, 3 CALL far indirect,
// 4 JMP near indirect, 5 JMP far indirect, 6 PUSH r/m16 (7 is unused).
func registerGroup5() {
	opcodeTable[0xFF] = func(c *CPU, inst *decodedInstruction) {
		m, ea := c.readModRM(Word)
		switch m.reg {
		case 0:
			c.execIncDecEA(ea, Word, false)
		case 1:
			c.execIncDecEA(ea, Word, true)
		case 2:
			target := c.readEA(ea, Word)
			c.push(c.regs.IP)
			c.pushCallFrame()
			c.regs.IP = target
			c.biu.queue.Flush()
		case 3:
			c.execFarIndirect(ea, true)
		case 4:
			c.regs.IP = c.readEA(ea, Word)
			c.biu.queue.Flush()
		case 5:
			c.execFarIndirect(ea, false)
		case 6:
			c.execPushEA(ea)
		}
	}
}

// execFarIndirect loads CS:IP from a 32-bit far pointer in memory,
// pushing the current CS:IP first when isCall is true.
func (c *CPU) execFarIndirect(ea EA, isCall bool) {
	if ea.Kind != EAMemory {
		return
	}
	off := c.readEA(ea, Word)
	segAddr := ea.Addr
	segAddr.Off += 2
	seg := c.readEA(EA{Kind: EAMemory, Addr: segAddr}, Word)
	if isCall {
		c.push(c.regs.CS)
		c.push(c.regs.IP)
		c.pushCallFrame()
	}
	c.regs.IP = off
	c.regs.CS = seg
	c.biu.queue.Flush()
}
