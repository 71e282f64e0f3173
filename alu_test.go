package cpu88

import "testing"

func TestAddCarryAndOverflowByte(t *testing.T) {
	// 0x90 + 0x90 = 0x120: wraps past 0xFF (carry), and in signed terms
	// -112 + -112 falls below -128 (overflow), same case TestAddALBLCarryAndOverflow
	// exercises end-to-end through the opcode table.
	r, carry, overflow, _ := Add(0x90, 0x90, Byte)
	if r != 0x20 {
		t.Errorf("result = %#02x, want 0x20", r)
	}
	if !carry {
		t.Errorf("carry not set")
	}
	if !overflow {
		t.Errorf("overflow not set")
	}
}

func TestAddNoOverflowWhenSignsDiffer(t *testing.T) {
	// A positive plus a negative operand can never overflow.
	_, _, overflow, _ := Add(0x7F, 0xFF, Byte)
	if overflow {
		t.Errorf("overflow set adding a positive and a negative operand")
	}
}

func TestSubBorrowSetsCarry(t *testing.T) {
	r, carry, _, _ := Sub(0x00, 0x01, Byte)
	if r != 0xFF {
		t.Errorf("result = %#02x, want 0xFF", r)
	}
	if !carry {
		t.Errorf("borrow did not set carry")
	}
}

func TestAdcFoldsCarryIn(t *testing.T) {
	r, carry, _, _ := Adc(0xFF, 0x00, true, Byte)
	if r != 0x00 || !carry {
		t.Errorf("0xFF+0x00+1 = %#02x carry=%v, want 0x00 carry=true", r, carry)
	}
}

func TestSbbFoldsCarryIn(t *testing.T) {
	r, carry, _, _ := Sbb(0x00, 0x00, true, Byte)
	if r != 0xFF || !carry {
		t.Errorf("0x00-0x00-1 = %#02x carry=%v, want 0xFF carry=true", r, carry)
	}
}

func TestNegIsZeroMinusOperand(t *testing.T) {
	r, carry, _, _ := Neg(0x01, Byte)
	if r != 0xFF {
		t.Errorf("Neg(1) = %#02x, want 0xFF", r)
	}
	if !carry {
		t.Errorf("Neg of a nonzero operand did not set carry (matches Sub(0,a))")
	}
	if r, _, _, _ := Neg(0x00, Byte); r != 0x00 {
		t.Errorf("Neg(0) = %#02x, want 0x00", r)
	}
}

// Rotates are not masked modulo width: rotating an 8-bit value left by
// 16 performs sixteen one-bit steps (two full turns), so 0xAA comes
// back as 0xAA, and the carry holds the last bit rotated out. A count
// masked to 16&7 == 0 would instead leave the carry untouched (false).
func TestRolNotMaskedByWidth(t *testing.T) {
	r, _ := Rol(0xAA, 16, Byte)
	identity, _ := Rol(0xAA, 8, Byte)
	if identity != 0xAA {
		t.Fatalf("Rol(0xAA, 8, Byte) = %#02x, want 0xAA (rotating a full byte-width is the identity)", identity)
	}
	if r != 0xAA {
		t.Errorf("Rol(0xAA, 16, Byte) = %#02x, want 0xAA", r)
	}
	if _, carry := Rol(0x01, 16, Byte); !carry {
		t.Errorf("Rol(0x01, 16, Byte) carry = false, want true (count was masked)")
	}
}

func TestRorRecoversAfterFullWidthRotation(t *testing.T) {
	r, _ := Ror(0x81, 8, Byte)
	if r != 0x81 {
		t.Errorf("Ror(0x81, 8, Byte) = %#02x, want 0x81", r)
	}
}

func TestRclCarriesBitIntoLSB(t *testing.T) {
	r, carry := Rcl(0x80, 1, false, Byte)
	if r != 0x00 {
		t.Errorf("Rcl(0x80,1,false) result = %#02x, want 0x00", r)
	}
	if !carry {
		t.Errorf("Rcl(0x80,1,false) carry = false, want true")
	}
	r2, _ := Rcl(0x00, 1, true, Byte)
	if r2 != 0x01 {
		t.Errorf("Rcl(0x00,1,true) result = %#02x, want 0x01 (carry-in rotated into bit 0)", r2)
	}
}

func TestRcrCarriesBitIntoMSB(t *testing.T) {
	r, _ := Rcr(0x00, 1, true, Byte)
	if r != 0x80 {
		t.Errorf("Rcr(0x00,1,true) result = %#02x, want 0x80 (carry-in rotated into bit 7)", r)
	}
}

func TestShlChainsCarryAcrossMultipleBits(t *testing.T) {
	r, carry := Shl(0x81, 2, Byte)
	if r != 0x04 {
		t.Errorf("Shl(0x81,2,Byte) result = %#02x, want 0x04", r)
	}
	if carry {
		t.Errorf("Shl(0x81,2,Byte) carry = true, want false (last bit shifted out was 0)")
	}
}

func TestShrDropsIntoCarryEachStep(t *testing.T) {
	r, carry := Shr(0x03, 2, Byte)
	if r != 0x00 || !carry {
		t.Errorf("Shr(0x03,2,Byte) = %#02x carry=%v, want 0x00 carry=true", r, carry)
	}
}

func TestParityIsEvenBitCountOfLowByte(t *testing.T) {
	if !Parity(0x00) {
		t.Errorf("Parity(0) should be even (zero set bits)")
	}
	if Parity(0x01) {
		t.Errorf("Parity(1) should be odd (one set bit)")
	}
	if !Parity(0x03) {
		t.Errorf("Parity(3) should be even (two set bits)")
	}
	// Only the low byte counts even for a 16-bit value.
	if !Parity(0xFF00) {
		t.Errorf("Parity(0xFF00) should be even (low byte is 0x00)")
	}
}

func TestWidthMaskAndMSB(t *testing.T) {
	if Byte.Mask() != 0xFF || Byte.MSB() != 0x80 {
		t.Errorf("Byte mask/MSB = %#04x/%#04x, want 0xFF/0x80", Byte.Mask(), Byte.MSB())
	}
	if Word.Mask() != 0xFFFF || Word.MSB() != 0x8000 {
		t.Errorf("Word mask/MSB = %#04x/%#04x, want 0xFFFF/0x8000", Word.Mask(), Word.MSB())
	}
}

func TestSetArithFlagsDerivesZeroSignParity(t *testing.T) {
	flags := setArithFlags(0, 0x00, false, false, false, Byte)
	if flags&FlagZero == 0 {
		t.Errorf("ZF not set for a zero result")
	}
	flags = setArithFlags(0, 0x80, false, false, false, Byte)
	if flags&FlagSign == 0 {
		t.Errorf("SF not set for a result with the high bit set")
	}
}

func TestSetLogicFlagsAlwaysClearsCarryAndOverflow(t *testing.T) {
	flags := setArithFlags(0, 0, true, true, true, Byte) // start with CF/OF/AF all set
	flags = setLogicFlags(flags, 0x01, Byte, true)
	if flags&FlagCarry != 0 || flags&FlagOverflow != 0 || flags&FlagAuxCarry != 0 {
		t.Errorf("logic flags left CF/OF/AF set: %#04x", flags)
	}
}

func TestReservedFlagsForcesAlwaysOnBits(t *testing.T) {
	flags := reservedFlags(0x0000)
	if flags&flagsReservedOn != flagsReservedOn {
		t.Errorf("reservedFlags(0) = %#04x, missing always-on bits", flags)
	}
	// Undefined bits outside flagsMask must not survive.
	if reservedFlags(0xFFFF)&^flagsMask&^flagsReservedOn != 0 {
		t.Errorf("reservedFlags(0xFFFF) leaked bits outside flagsMask")
	}
}
