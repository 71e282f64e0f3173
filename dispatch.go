package cpu88

// Dispatch is the uniform handle a host drives instead of talking to a
// *CPU directly: every exported CPU operation the host needs crosses
// through here under the names this family's tooling (debuggers,
// fuzz drivers, trace loggers) expects, so swapping Variant never
// changes the call shape. Because cpu88 already holds both variant
// families behind one CPU type (the table-driven decode differs by
// Variant, not by Go type), Dispatch is a thin named wrapper rather
// than an enum-of-two — the "variant erasure" the call shape promises
// is already true of *CPU itself.
type Dispatch struct {
	cpu *CPU
}

// NewDispatch wraps an existing CPU in a Dispatch handle.
func NewDispatch(c *CPU) *Dispatch {
	return &Dispatch{cpu: c}
}

// CPU returns the underlying core, for callers that need something
// Dispatch doesn't expose (installing opcode-level test hooks, etc).
func (d *Dispatch) CPU() *CPU {
	return d.cpu
}

// Reset performs a hardware reset.
func (d *Dispatch) Reset() {
	d.cpu.Reset()
}

// Step executes one instruction, or returns StepBreakpointHit without
// executing it if skipBreakpoint is false and CS:IP sits on an armed
// breakpoint. Passing skipBreakpoint true is equivalent to arming a
// one-shot step-over at the current address first.
func (d *Dispatch) Step(skipBreakpoint bool) (StepResult, uint32) {
	if skipBreakpoint {
		d.cpu.SetStepOverBreakpoint(d.cpu.linearPC())
	}
	res := d.cpu.Step()
	return res, res.Cycles
}

// StepFinish runs Step and, if withDisassembly is set, additionally
// fills in a best-effort mnemonic label for the instruction just
// executed. Full operand tokenization is a host-side concern (spec
// §6); the label here is enough to correlate a step against a trace
// or history dump without duplicating a disassembler in the core.
func (d *Dispatch) StepFinish(withDisassembly bool) (StepResult, string) {
	res := d.cpu.Step()
	if !withDisassembly {
		return res, ""
	}
	return res, instructionName(d.cpu.lastInstruction.opcode)
}

// GetRegister8/SetRegister8/GetRegister16/SetRegister16 access one
// register of the live register file.
func (d *Dispatch) GetRegister8(reg Register8) uint8    { return d.cpu.regs.Get8(reg) }
func (d *Dispatch) SetRegister8(reg Register8, v uint8)  { d.cpu.regs.Set8(reg, v) }
func (d *Dispatch) GetRegister16(reg Register16) uint16  { return d.cpu.regs.Get16(reg) }
func (d *Dispatch) SetRegister16(reg Register16, v uint16) {
	d.cpu.regs.Set16(reg, v)
}

// GetFlags/SetFlags access the full flags word.
func (d *Dispatch) GetFlags() uint16        { return d.cpu.regs.Flags }
func (d *Dispatch) SetFlags(flags uint16)   { d.cpu.regs.Flags = reservedFlags(flags) }

// FlatIP returns CS:IP as a 20-bit linear address.
func (d *Dispatch) FlatIP() uint32 {
	return d.cpu.linearPC()
}

// FlatIPDisassembly returns FlatIP alongside the best-effort mnemonic
// label for the instruction currently at that address, one fetch
// cycle before it is actually executed (a peek, not a step).
func (d *Dispatch) FlatIPDisassembly() (uint32, string) {
	addr := d.cpu.linearPC()
	return addr, instructionName(d.cpu.bus.ReadU8(addr))
}

// FlatSP returns SS:SP as a 20-bit linear address.
func (d *Dispatch) FlatSP() uint32 {
	return linearize(d.cpu.regs.SS, d.cpu.regs.SP)
}

// DumpInstructionHistory returns the instruction-history ring.
func (d *Dispatch) DumpInstructionHistory() []HistoryEntry {
	return d.cpu.DumpInstructionHistory()
}

// DumpInstructionHistoryFlat is DumpInstructionHistory with each entry
// reduced to its linear address, the shape a flat memory-map debug
// view wants.
func (d *Dispatch) DumpInstructionHistoryFlat() []uint32 {
	hist := d.cpu.DumpInstructionHistory()
	out := make([]uint32, len(hist))
	for i, e := range hist {
		out[i] = linearize(e.CS, e.IP)
	}
	return out
}

// DumpCallStack returns the call-stack shadow, oldest frame first.
func (d *Dispatch) DumpCallStack() []uint32 {
	return d.cpu.DumpCallStack()
}

// SetBreakpoints replaces the armed breakpoint set with addrs.
func (d *Dispatch) SetBreakpoints(addrs []uint32) {
	d.cpu.ClearBreakpoints()
	for _, a := range addrs {
		d.cpu.SetBreakpoint(a)
	}
}

// GetStepOverBreakpoint/SetStepOverBreakpoint/ClearStepOverBreakpoint
// manage the one-shot step-over exemption.
func (d *Dispatch) GetStepOverBreakpoint() (uint32, bool) {
	return d.cpu.StepOverBreakpoint()
}

func (d *Dispatch) SetStepOverBreakpointAddr(addr uint32) {
	d.cpu.SetStepOverBreakpoint(addr)
}

func (d *Dispatch) ClearStepOverBreakpoint() {
	d.cpu.ClearStepOverBreakpoint()
}

// GetStopwatchData/SetStopwatch access the stopwatch measurement
// window (spec's get_sw_data/set_stopwatch).
func (d *Dispatch) GetStopwatchData() Stopwatch {
	return d.cpu.StopwatchData()
}

func (d *Dispatch) SetStopwatch(sw Stopwatch) {
	d.cpu.SetStopwatch(sw)
}

// SetOption/GetOption access a CPUOption's boolean state; SetOptionValue
// sets the integer parameter an option like DramRefreshAdjust takes.
func (d *Dispatch) SetOption(opt CPUOption, on bool) {
	d.cpu.SetOption(opt, on)
}

func (d *Dispatch) GetOption(opt CPUOption) bool {
	return d.cpu.Option(opt)
}

func (d *Dispatch) SetOptionValue(opt CPUOption, v int) {
	d.cpu.SetOptionValue(opt, v)
}

// RandomizeRegs/RandomizeMem/RandomInstFromOpcodes/RandomGrpInstruction
// delegate to the CPU's attached Fuzzer. They are no-ops if none is
// installed via SetFuzzer.
func (d *Dispatch) RandomizeRegs() {
	if d.cpu.fuzzer != nil {
		d.cpu.fuzzer.RandomizeRegs(d.cpu)
	}
}

func (d *Dispatch) RandomizeMem(size uint32) {
	if d.cpu.fuzzer != nil {
		d.cpu.fuzzer.RandomizeMem(d.cpu, size)
	}
}

func (d *Dispatch) RandomInstFromOpcodes(opcodes []uint8) {
	if d.cpu.fuzzer != nil {
		d.cpu.fuzzer.RandomInstFromOpcodes(d.cpu, opcodes)
	}
}

func (d *Dispatch) RandomGrpInstruction(opcode, extension uint8) {
	if d.cpu.fuzzer != nil {
		d.cpu.fuzzer.RandomGrpInstruction(d.cpu, opcode, extension)
	}
}

// Bus returns the Bus the CPU is wired to. cpu88 has no separate
// mutable/immutable Bus handle (Go has no const-reference distinction
// to mirror); callers that need read-only access should wrap it
// themselves.
func (d *Dispatch) Bus() Bus {
	return d.cpu.bus
}

// SetValidator installs (or clears, with nil) the optional cross-check
// capability.
func (d *Dispatch) SetValidator(v Validator) {
	d.cpu.SetValidator(v)
}
