package cpu88

// Group 2: shift/rotate family, opcodes 0xD0-0xD3 (count=1 or count=CL)
// and 0xC0/0xC1 (count=imm8, the 186+ immediate-count form NEC V20/V30
// and later 8086 steppings decode but the original 8088 does not).
// These handlers are registered for every variant, the Intel parts
// included, and the fuzz driver's opcode list includes C0/C1.
func init() {
	registerShiftGroup()
}

// shiftKind selects which of the eight Group 2 operations the ModR/M
// reg field names: ROL ROR RCL RCR SHL/SAL SHR n/a SAR.
type shiftKind uint8

const (
	skRol shiftKind = iota
	skRor
	skRcl
	skRcr
	skShl
	skShr
	skShlAlt // reg==6 is an undocumented alias for SHL on real silicon
	skSar
)

func registerShiftGroup() {
	opcodeTable[0xD0] = func(c *CPU, inst *decodedInstruction) { c.execShiftGroup(Byte, 1, false) }
	opcodeTable[0xD1] = func(c *CPU, inst *decodedInstruction) { c.execShiftGroup(Word, 1, false) }
	opcodeTable[0xD2] = func(c *CPU, inst *decodedInstruction) { c.execShiftGroup(Byte, 0, true) }
	opcodeTable[0xD3] = func(c *CPU, inst *decodedInstruction) { c.execShiftGroup(Word, 0, true) }
	opcodeTable[0xC0] = func(c *CPU, inst *decodedInstruction) { c.execShiftGroupImm8(Byte) }
	opcodeTable[0xC1] = func(c *CPU, inst *decodedInstruction) { c.execShiftGroupImm8(Word) }
}

// execShiftGroup handles D0-D3: fixedCount is used unless byCL is set,
// in which case the count is all 8 bits of CL, unmasked, as on the
// real part. The 6-bit CL masking for D2/D3 lives in the fuzzer, which
// masks CL before synthesizing the instruction to keep generated test
// cases' cycle counts bounded (spec §4.6).
func (c *CPU) execShiftGroup(w Width, fixedCount uint8, byCL bool) {
	m, ea := c.readModRM(w)
	count := fixedCount
	if byCL {
		count = c.regs.Get8(CL)
	}
	c.applyShift(shiftKind(m.reg), ea, w, count)
}

func (c *CPU) execShiftGroupImm8(w Width) {
	m, ea := c.readModRM(w)
	count := c.fetchByte()
	c.applyShift(shiftKind(m.reg), ea, w, count)
}

// applyShift performs one Group 2 operation and sets flags per the
// documented 8086 rule: CF always reflects the last bit shifted out;
// OF is only meaningful (and only set by hardware) when count==1, so
// this core only touches OF in that case, leaving it unchanged
// otherwise — matching the real part's undefined-for-count>1 behavior
// rendered as "leave it alone" the same way setLogicFlags's AF does.
func (c *CPU) applyShift(kind shiftKind, ea EA, w Width, count uint8) {
	if count == 0 {
		return
	}
	v := c.readEA(ea, w)
	carryIn := c.regs.Flags&FlagCarry != 0

	var result uint16
	var carry bool
	switch kind {
	case skRol:
		result, carry = Rol(v, count, w)
	case skRor:
		result, carry = Ror(v, count, w)
	case skRcl:
		result, carry = Rcl(v, count, carryIn, w)
	case skRcr:
		result, carry = Rcr(v, count, carryIn, w)
	case skShl, skShlAlt:
		result, carry = Shl(v, count, w)
	case skShr:
		result, carry = Shr(v, count, w)
	case skSar:
		result, carry = c.arithShiftRight(v, count, w)
	}

	c.regs.Flags = setFlag(c.regs.Flags, FlagCarry, carry)
	if count == 1 {
		c.regs.Flags = setFlag(c.regs.Flags, FlagOverflow, shiftOverflow(kind, v, result, w))
	}
	switch kind {
	case skShl, skShlAlt, skShr, skSar:
		c.regs.Flags = setFlag(c.regs.Flags, FlagZero, result&w.Mask() == 0)
		c.regs.Flags = setFlag(c.regs.Flags, FlagSign, result&w.MSB() != 0)
		c.regs.Flags = setFlag(c.regs.Flags, FlagParity, Parity(result))
	}
	c.writeEA(ea, w, result)
}

// arithShiftRight is SAR: shifts right, replicating the sign bit.
func (c *CPU) arithShiftRight(v uint16, count uint8, w Width) (result uint16, carry bool) {
	msb := w.MSB()
	sign := v & msb
	for ; count > 0; count-- {
		carry = v&1 != 0
		v = (v >> 1) | sign
	}
	return v & w.Mask(), carry
}

// shiftOverflow implements the count==1 OF rule: for SHL/SAL, OF is
// set if the sign bit changed; for SHR, OF is the original sign bit;
// for SAR, OF is always cleared (sign is preserved by construction);
// ROL/RCL set OF to the XOR of the new sign bit and the new carry;
// ROR/RCR set it to the XOR of the two most significant result bits.
func shiftOverflow(kind shiftKind, before, after uint16, w Width) bool {
	msb := w.MSB()
	switch kind {
	case skShl, skShlAlt:
		return (before^after)&msb != 0
	case skShr:
		return before&msb != 0
	case skSar:
		return false
	case skRol:
		return (after&msb != 0) != (after&1 != 0)
	case skRcl:
		return (after&msb != 0) != (before&msb != 0)
	case skRor, skRcr:
		return (after&msb != 0) != (after&(msb>>1) != 0)
	}
	return false
}
