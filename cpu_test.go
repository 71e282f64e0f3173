package cpu88

import "testing"

// ADD AL,BL: carry and overflow set together when two negative operands
// (by signed interpretation) wrap past 0xFF and below -128.
func TestAddALBLCarryAndOverflow(t *testing.T) {
	c, _ := newTestCPU(0x1000, 0x00, 0xD8) // ADD AL,BL (ModR/M D8 = mod 11 reg BL r/m AL)
	c.regs.Set8(AL, 0x90)
	c.regs.Set8(BL, 0x90)

	res := c.Step()
	if res.Outcome != StepNormal {
		t.Fatalf("Step outcome = %v, want StepNormal", res.Outcome)
	}

	if got := c.regs.Get8(AL); got != 0x20 {
		t.Errorf("AL = %#02x, want 0x20", got)
	}
	if c.regs.Flags&FlagCarry == 0 {
		t.Errorf("carry flag not set")
	}
	if c.regs.Flags&FlagOverflow == 0 {
		t.Errorf("overflow flag not set")
	}
}

// DIV by a zero divisor raises the divide-error interrupt (vector 0)
// rather than producing a quotient.
func TestDivByZeroRaisesDivideError(t *testing.T) {
	c, bus := newTestCPU(0x1000, 0xF6, 0xF3) // DIV BL (F6 /6, mod 11 reg 110 r/m BL)
	c.regs.Set16(AX, 0x1234)
	c.regs.Set8(BL, 0x00)

	// IVT vector 0 -> 0050:0000, a single IRET there.
	bus.WriteU16(0x0000, 0x0000)
	bus.WriteU16(0x0002, 0x0050)
	bus.WriteU8(0x00500, 0xCF)

	c.Step()

	if c.regs.CS != 0x0050 || c.regs.IP != 0x0000 {
		t.Errorf("CS:IP = %04X:%04X, want 0050:0000 (divide-error vector taken)", c.regs.CS, c.regs.IP)
	}
}

// REP MOVSB with CX=3 copies three bytes and leaves CX at zero.
func TestRepMovsbCopiesCXBytes(t *testing.T) {
	c, bus := newTestCPU(0x1000, 0xF3, 0xA4) // REP MOVSB
	c.regs.CX = 3
	c.regs.SI = 0x2000
	c.regs.DI = 0x3000
	bus.loadAt(0x2000, 0xAA, 0xBB, 0xCC)

	for i := 0; i < 10 && c.regs.CX != 0; i++ {
		res := c.Step()
		if res.Outcome != StepNormal && res.Outcome != StepRepInProgress {
			t.Fatalf("Step outcome = %v", res.Outcome)
		}
	}

	if c.regs.CX != 0 {
		t.Fatalf("CX = %d, want 0 (REP did not complete)", c.regs.CX)
	}
	for i, want := range []uint8{0xAA, 0xBB, 0xCC} {
		if got := bus.ReadU8(0x3000 + uint32(i)); got != want {
			t.Errorf("ES:DI+%d = %#02x, want %#02x", i, got, want)
		}
	}
	if c.regs.SI != 0x2003 || c.regs.DI != 0x3003 {
		t.Errorf("SI:DI = %04X:%04X, want 2003:3003", c.regs.SI, c.regs.DI)
	}
}

// SCASB REPNE stops as soon as a match is found (ZF=1), leaving CX
// showing how many comparisons remain.
func TestScasbRepneStopsOnMatch(t *testing.T) {
	c, bus := newTestCPU(0x1000, 0xF2, 0xAE) // REPNE SCASB
	c.regs.CX = 5
	c.regs.DI = 0x2000
	c.regs.Set8(AL, 0x42)
	bus.loadAt(0x2000, 0x01, 0x02, 0x42, 0x03, 0x04)

	for i := 0; i < 10; i++ {
		res := c.Step()
		if res.Outcome == StepNormal {
			break
		}
	}

	if c.regs.Flags&FlagZero == 0 {
		t.Errorf("ZF not set after a matching SCASB")
	}
	if c.regs.CX != 2 {
		t.Errorf("CX = %d, want 2 (3 comparisons consumed of 5)", c.regs.CX)
	}
	if c.regs.DI != 0x2003 {
		t.Errorf("DI = %#04x, want 0x2003", c.regs.DI)
	}
}

// POPF with the popped word's trap-flag bit set arms single-step mode.
func TestPopfSetsTrapFlag(t *testing.T) {
	c, bus := newTestCPU(0x1000, 0x9D) // POPF
	c.regs.SP = 0x0100
	bus.WriteU16(0x0100, FlagTrap|flagsReservedOn)

	c.Step()

	if c.regs.Flags&FlagTrap == 0 {
		t.Errorf("TF not set after POPF popped a word with TF set")
	}
}

// A byte written to an I/O port reaches the bus's write path with the
// right port and value (the terminal-port intercept itself lives in
// the bus package and is exercised there).
func TestOutReachesBus(t *testing.T) {
	c, bus := newTestCPU(0x1000, 0xE6, 0x50) // OUT 0x50,AL
	c.regs.Set8(AL, 'X')

	c.Step()

	if bus.lastIOWritePort != 0x50 || bus.lastIOWriteVal != 'X' {
		t.Errorf("IO write = port %#02x val %#02x, want port 0x50 val 'X'", bus.lastIOWritePort, bus.lastIOWriteVal)
	}
	if bus.ioWrites != 1 {
		t.Errorf("ioWrites = %d, want 1", bus.ioWrites)
	}
}

func TestResetVector(t *testing.T) {
	bus := newTestBus()
	c := New(Intel8088, bus)
	if c.regs.CS != 0xFFFF || c.regs.IP != 0x0000 {
		t.Errorf("reset CS:IP = %04X:%04X, want FFFF:0000", c.regs.CS, c.regs.IP)
	}
	if c.regs.Flags&flagsReservedOn != flagsReservedOn {
		t.Errorf("reset flags missing reserved-on bits: %#04x", c.regs.Flags)
	}
}

func TestBreakpointStopsBeforeExecuting(t *testing.T) {
	c, _ := newTestCPU(0x1000, 0x90, 0x90) // NOP, NOP
	c.SetBreakpoint(0x1000)

	res := c.Step()
	if res.Outcome != StepBreakpointHit {
		t.Fatalf("Step outcome = %v, want StepBreakpointHit", res.Outcome)
	}
	if c.regs.IP != 0x1000 {
		t.Errorf("IP advanced past the breakpoint: %#04x", c.regs.IP)
	}
}

func TestEndAddressStopsStepping(t *testing.T) {
	c, _ := newTestCPU(0x1000, 0x90, 0x90)
	c.SetEndAddress(0x1000)

	res := c.Step()
	if res.Outcome != StepProgramEnd {
		t.Fatalf("Step outcome = %v, want StepProgramEnd", res.Outcome)
	}
}

func TestCallPushesAndRetPopsCallStack(t *testing.T) {
	c, bus := newTestCPU(0x1000, 0xE8, 0x02, 0x00) // CALL near +2
	bus.loadAt(0x1005, 0xC3)                       // RET at the call target

	c.Step() // CALL
	if frames := c.DumpCallStack(); len(frames) != 1 || frames[0] != 0x1003 {
		t.Fatalf("call stack after CALL = %v, want [0x1003]", frames)
	}

	c.Step() // RET
	if frames := c.DumpCallStack(); len(frames) != 0 {
		t.Fatalf("call stack after RET = %v, want empty", frames)
	}
	if c.regs.IP != 0x1003 {
		t.Errorf("IP after RET = %#04x, want 0x1003", c.regs.IP)
	}
}

func TestBusCycleChargesFourPlusWaitStates(t *testing.T) {
	c, _ := newTestCPU(0x1000, 0x90) // NOP: no memory operand, isolates fetch cost
	start := c.biu.cyclesCharged
	c.Step()
	if got := c.biu.cyclesCharged - start; got != 4 {
		t.Errorf("Step charged %d cycles, want 4 (one opcode-fetch bus cycle, no wait states)", got)
	}
}
