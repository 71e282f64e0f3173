package cpu88

import "testing"

func newTestNecCPU(addr uint16, code ...uint8) (*CPU, *testBus) {
	bus := newTestBus()
	bus.loadAt(uint32(addr), code...)
	c := New(NecV20, bus)
	c.regs.CS, c.regs.DS, c.regs.SS, c.regs.ES = 0, 0, 0, 0
	c.regs.SP = 0x0100
	c.regs.IP = addr
	c.biu.queue.Flush()
	return c, bus
}

// BOUND AX, [0x2000] (62 06 00 20): mod=00 rm=110 is the bare-disp16
// exception to the ModR/M table, so this instruction is the opcode
// byte, a single ModR/M byte, and a disp16 operand with no further
// prefix bytes.
func boundInstruction(lowReg uint8) []uint8 {
	return []uint8{0x62, 0x06 | lowReg<<3, 0x00, 0x20}
}

func TestBoundWithinRangeDoesNotTrap(t *testing.T) {
	c, bus := newTestNecCPU(0x1000, boundInstruction(0)...) // reg=AX
	c.regs.Set16(AX, 5)
	bus.WriteU16(0x2000, 0)  // lower bound
	bus.WriteU16(0x2002, 10) // upper bound

	c.Step()

	if c.regs.CS != 0 {
		t.Errorf("CS = %#04x, want 0 (no BOUND exception taken)", c.regs.CS)
	}
}

func TestBoundOutOfRangeTrapsToVector5(t *testing.T) {
	c, bus := newTestNecCPU(0x1000, boundInstruction(0)...) // reg=AX
	c.regs.Set16(AX, 20)
	bus.WriteU16(0x2000, 0)
	bus.WriteU16(0x2002, 10)

	// IVT vector 5 -> 0060:0000, a single IRET there.
	bus.WriteU16(0x0014, 0x0000)
	bus.WriteU16(0x0016, 0x0060)
	bus.WriteU8(0x00600, 0xCF)

	c.Step()

	if c.regs.CS != 0x0060 || c.regs.IP != 0x0000 {
		t.Errorf("CS:IP = %04X:%04X, want 0060:0000 (BOUND-range vector taken)", c.regs.CS, c.regs.IP)
	}
}

// On the genuine Intel parts BOUND was never implemented in silicon;
// this core reports it the same as any other unassigned opcode byte.
func TestBoundOnIntelVariantIsInvalidOpcode(t *testing.T) {
	c, bus := newTestCPU(0x1000, boundInstruction(0)...)
	c.regs.Set16(AX, 5)
	bus.WriteU16(0x2000, 0)
	bus.WriteU16(0x2002, 10)

	// IVT vector 6 -> 0070:0000, a single IRET there.
	bus.WriteU16(0x0018, 0x0000)
	bus.WriteU16(0x001A, 0x0070)
	bus.WriteU8(0x00700, 0xCF)

	c.Step()

	if c.regs.CS != 0x0070 || c.regs.IP != 0x0000 {
		t.Errorf("CS:IP = %04X:%04X, want 0070:0000 (invalid-opcode vector taken)", c.regs.CS, c.regs.IP)
	}
}
