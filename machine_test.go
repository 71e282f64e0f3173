package cpu88

import "testing"

func TestNewMachineZeroValueKeepsArchitecturalReset(t *testing.T) {
	bus := newTestBus()
	c := NewMachine(bus, MachineConfiguration{Variant: NecV20})

	if c.variant != NecV20 {
		t.Errorf("variant = %v, want NecV20", c.variant)
	}
	if c.regs.CS != 0xFFFF || c.regs.IP != 0x0000 {
		t.Errorf("reset vector = %04X:%04X, want FFFF:0000", c.regs.CS, c.regs.IP)
	}
	if c.hasEndAddress {
		t.Errorf("end address armed with a zero-value MachineConfiguration")
	}
}

func TestNewMachineAppliesResetVectorOverride(t *testing.T) {
	bus := newTestBus()
	c := NewMachine(bus, MachineConfiguration{
		HasResetVector: true,
		ResetCS:        0x1000,
		ResetIP:        0x0050,
	})

	if c.regs.CS != 0x1000 || c.regs.IP != 0x0050 {
		t.Errorf("reset vector = %04X:%04X, want 1000:0050", c.regs.CS, c.regs.IP)
	}
}

func TestNewMachineArmsEndAddress(t *testing.T) {
	bus := newTestBus()
	c := NewMachine(bus, MachineConfiguration{
		HasEndAddress: true,
		EndAddress:    0x12345,
	})

	if !c.hasEndAddress || c.endAddress != 0x12345 {
		t.Errorf("end address = %#06x,%v want 0x12345,true", c.endAddress, c.hasEndAddress)
	}
}
