package cpu88

// BCD adjust family: AAA/AAS/DAA/DAS/AAM/AAD. All operate on AL (AAM/AAD
// also touch AH); pseudocode ported from the documented Intel adjust
// algorithms rather than derived from first principles, since the
// low-nibble/high-nibble correction rules have no simpler closed form.
func init() {
	registerBCDFamily()
}

func registerBCDFamily() {
	opcodeTable[0x27] = func(c *CPU, inst *decodedInstruction) { c.opDAA() }
	opcodeTable[0x2F] = func(c *CPU, inst *decodedInstruction) { c.opDAS() }
	opcodeTable[0x37] = func(c *CPU, inst *decodedInstruction) { c.opAAA() }
	opcodeTable[0x3F] = func(c *CPU, inst *decodedInstruction) { c.opAAS() }
	opcodeTable[0xD4] = func(c *CPU, inst *decodedInstruction) { c.opAAM() }
	opcodeTable[0xD5] = func(c *CPU, inst *decodedInstruction) { c.opAAD() }
}

func (c *CPU) setBCDFlagsFromAL() {
	al := c.regs.Get8(AL)
	flags := c.regs.Flags
	flags = setFlag(flags, FlagZero, al == 0)
	flags = setFlag(flags, FlagSign, al&0x80 != 0)
	flags = setFlag(flags, FlagParity, Parity(uint16(al)))
	c.regs.Flags = flags
}

// opAAA: ASCII adjust after addition.
func (c *CPU) opAAA() {
	al := c.regs.Get8(AL)
	af := c.regs.Flags&FlagAuxCarry != 0
	if al&0x0F > 9 || af {
		c.regs.Set8(AL, al+6)
		c.regs.Set8(AH, c.regs.Get8(AH)+1)
		c.regs.Flags = setFlag(c.regs.Flags, FlagAuxCarry, true)
		c.regs.Flags = setFlag(c.regs.Flags, FlagCarry, true)
	} else {
		c.regs.Flags = setFlag(c.regs.Flags, FlagAuxCarry, false)
		c.regs.Flags = setFlag(c.regs.Flags, FlagCarry, false)
	}
	c.regs.Set8(AL, c.regs.Get8(AL)&0x0F)
	c.setBCDFlagsFromAL()
}

// opAAS: ASCII adjust after subtraction.
func (c *CPU) opAAS() {
	al := c.regs.Get8(AL)
	af := c.regs.Flags&FlagAuxCarry != 0
	if al&0x0F > 9 || af {
		c.regs.Set8(AL, al-6)
		c.regs.Set8(AH, c.regs.Get8(AH)-1)
		c.regs.Flags = setFlag(c.regs.Flags, FlagAuxCarry, true)
		c.regs.Flags = setFlag(c.regs.Flags, FlagCarry, true)
	} else {
		c.regs.Flags = setFlag(c.regs.Flags, FlagAuxCarry, false)
		c.regs.Flags = setFlag(c.regs.Flags, FlagCarry, false)
	}
	c.regs.Set8(AL, c.regs.Get8(AL)&0x0F)
	c.setBCDFlagsFromAL()
}

// opDAA: decimal adjust after addition.
func (c *CPU) opDAA() {
	al := c.regs.Get8(AL)
	oldAL := al
	oldCF := c.regs.Flags&FlagCarry != 0
	af := c.regs.Flags&FlagAuxCarry != 0
	cf := false

	if al&0x0F > 9 || af {
		sum := uint16(al) + 6
		cf = oldCF || sum > 0xFF
		al = uint8(sum)
		af = true
	} else {
		af = false
	}
	if oldAL > 0x99 || oldCF {
		al += 0x60
		cf = true
	}

	c.regs.Set8(AL, al)
	c.regs.Flags = setFlag(c.regs.Flags, FlagCarry, cf)
	c.regs.Flags = setFlag(c.regs.Flags, FlagAuxCarry, af)
	c.setBCDFlagsFromAL()
}

// opDAS: decimal adjust after subtraction.
func (c *CPU) opDAS() {
	al := c.regs.Get8(AL)
	oldAL := al
	oldCF := c.regs.Flags&FlagCarry != 0
	af := c.regs.Flags&FlagAuxCarry != 0
	cf := false

	if al&0x0F > 9 || af {
		cf = oldCF || al < 6
		al -= 6
		af = true
	} else {
		af = false
	}
	if oldAL > 0x99 || oldCF {
		al -= 0x60
		cf = true
	}

	c.regs.Set8(AL, al)
	c.regs.Flags = setFlag(c.regs.Flags, FlagCarry, cf)
	c.regs.Flags = setFlag(c.regs.Flags, FlagAuxCarry, af)
	c.setBCDFlagsFromAL()
}

// opAAM: ASCII adjust after multiply. A zero divisor reproduces the
// documented 8086 behavior of raising the divide-error vector rather
// than dividing by zero in Go.
func (c *CPU) opAAM() {
	base := c.fetchByte()
	if base == 0 {
		c.exception(vecDivideError)
		return
	}
	al := c.regs.Get8(AL)
	c.regs.Set8(AH, al/base)
	c.regs.Set8(AL, al%base)
	c.setBCDFlagsFromAL()
}

// opAAD: ASCII adjust before division, collapsing AH:AL into a binary
// AL prior to a following DIV.
func (c *CPU) opAAD() {
	base := c.fetchByte()
	al := c.regs.Get8(AL)
	ah := c.regs.Get8(AH)
	result := ah*base + al
	c.regs.Set8(AL, result)
	c.regs.Set8(AH, 0)
	c.setBCDFlagsFromAL()
}
