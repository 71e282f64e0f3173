// Package cpu88 implements a cycle-stepped emulator core for the
// Intel 8088, Intel 8086, and NEC V20/V30 processor family: the ALU,
// the static ModR/M decoder, the Bus Interface Unit (prefetch queue +
// T-state bus-cycle sequencer), interrupt/exception dispatch, the
// REP-prefixed string-instruction coroutine, a seeded fuzzer for
// randomized instruction-stream testing, and a validator capability
// for cross-checking execution against an external reference trace.
package cpu88

import (
	"io"
	"log"
)

// Bus is the memory and I/O port map a CPU is wired to. bus.Bus
// satisfies this interface structurally; cpu88 does not import the
// bus package so the two can be tested independently (spec §5).
type Bus interface {
	ReadU8(addr uint32) uint8
	WriteU8(addr uint32, v uint8)
	ReadU16(addr uint32) uint16
	WriteU16(addr uint32, v uint16)
	IOReadU8(port uint16, cpuCycles uint32) uint8
	IOWriteU8(port uint16, data uint8, cpuCycles uint32)
	Tick(sysTicks uint32)
}

// CPUOption toggles an optional behavior, mirroring the host-tunable
// knobs spec §6 names: instruction history recording, scheduled test
// interrupts/DMA-refresh injection, the halt-resume delay, off-rails
// detection, artificial wait states, trace logging, and whether
// INT 0x15/0x1A-style BIOS service shims are installed.
type CPUOption int

const (
	OptInstructionHistory CPUOption = iota
	OptScheduleInterrupt
	OptScheduleDramRefresh
	OptDramRefreshAdjust
	OptHaltResumeDelay
	OptOffRailsDetection
	OptEnableWaitStates
	OptTraceLoggingEnabled
	OptEnableServiceInterrupt
)

// CPU is the 8088/8086/V20/V30 processor core.
type CPU struct {
	regs    Registers
	variant Variant
	bus     Bus
	biu     *biu

	halted  bool
	cycles  uint64

	segOverride Register16
	lockPrefix  bool

	rep repState

	pendingNMI       bool
	intFlagDelay     bool // STI delays interrupt sampling by one instruction
	interruptSource  InterruptSource

	options   map[CPUOption]bool
	intValues map[CPUOption]int

	history     []HistoryEntry
	historyCap  int
	callStack   []uint32
	breakpoints map[uint32]bool

	endAddress    uint32
	hasEndAddress bool

	stopwatch     Stopwatch
	stepOverAddr  uint32
	hasStepOver   bool

	fuzzer *Fuzzer

	validator Validator

	traceWriter     io.Writer
	traceFormat     TraceFormat
	traceHeaderDone bool

	lastInstruction decodedInstruction
	instBytes       []byte // fetch log for the instruction in progress
}

// HistoryEntry is one ring-buffer record for the OptInstructionHistory
// debugging aid (spec §6 dump_instruction_history).
type HistoryEntry struct {
	CS, IP uint16
	Opcode uint8
	Cycles uint32
}

// New creates a CPU for the given variant, wired to bus, and performs
// a hardware reset.
func New(variant Variant, bus Bus) *CPU {
	c := &CPU{
		variant:     variant,
		bus:         bus,
		biu:         newBIU(variant.QueueDepth()),
		options:     make(map[CPUOption]bool),
		intValues:   make(map[CPUOption]int),
		breakpoints: make(map[uint32]bool),
		historyCap:  64,
	}
	c.Reset()
	return c
}

// Reset puts the processor in its power-on state: CS=0xFFFF,
// IP=0x0000 (the reset vector at the top of memory), flags cleared,
// segment registers other than CS zeroed, and the prefetch queue
// flushed. It charges no cycles for a reset sequence.
func (c *CPU) Reset() {
	c.regs = Registers{CS: 0xFFFF, Flags: flagsReservedOn}
	c.halted = false
	c.cycles = 0
	c.segOverride = NoSegmentOverride
	c.lockPrefix = false
	c.rep = repState{}
	c.pendingNMI = false
	c.callStack = nil
	c.biu.queue.Flush()
}

// Halted reports whether the CPU is stopped in HLT awaiting an
// interrupt or reset.
func (c *CPU) Halted() bool {
	return c.halted
}

// Registers returns a copy of the programmer-visible register file.
func (c *CPU) Registers() Registers {
	return c.regs
}

// SetRegisters overwrites the register file directly, for test setup
// (spec §8's "establish exact pre-state" requirement).
func (c *CPU) SetRegisters(r Registers) {
	c.regs = r
}

// SetOption enables or disables a CPUOption.
func (c *CPU) SetOption(opt CPUOption, on bool) {
	c.options[opt] = on
}

// Option reports whether a CPUOption is currently enabled.
func (c *CPU) Option(opt CPUOption) bool {
	return c.options[opt]
}

// SetOptionValue sets the integer parameter associated with an option
// that takes one (DramRefreshAdjust, HaltResumeDelay).
func (c *CPU) SetOptionValue(opt CPUOption, v int) {
	c.intValues[opt] = v
}

// SetBreakpoint arms a breakpoint at a linear address.
func (c *CPU) SetBreakpoint(addr uint32) {
	c.breakpoints[addr] = true
}

// ClearBreakpoints removes every armed breakpoint.
func (c *CPU) ClearBreakpoints() {
	c.breakpoints = make(map[uint32]bool)
}

// SetEndAddress arms the configured stop address (spec's end_address):
// Step returns StepProgramEnd instead of executing once CS:IP reaches
// it. ClearEndAddress disarms it.
func (c *CPU) SetEndAddress(addr uint32) {
	c.endAddress = addr
	c.hasEndAddress = true
}

// ClearEndAddress disarms the configured stop address.
func (c *CPU) ClearEndAddress() {
	c.hasEndAddress = false
}

// SetValidator installs (or clears, with nil) the cross-check
// capability described in spec §7.
func (c *CPU) SetValidator(v Validator) {
	c.validator = v
}

// Stopwatch measures elapsed cycles between two linear addresses: once
// armed, Step starts the count when CS:IP reaches StartAddr and stops
// it (returning StepStopwatchHit instead of executing) when it reaches
// StopAddr, without needing the host to compute cycle deltas itself.
type Stopwatch struct {
	StartAddr uint32
	StopAddr  uint32
	Armed     bool
	running   bool
	startedAt uint64
	Cycles    uint64 // elapsed cycles from the last completed measurement
	Hits      uint32 // number of times StopAddr has been reached while running
}

// SetStopwatch arms a stopwatch window. Passing a zero-value Stopwatch
// disarms it.
func (c *CPU) SetStopwatch(sw Stopwatch) {
	c.stopwatch = sw
}

// StopwatchData returns the current stopwatch state (spec's get_sw_data).
func (c *CPU) StopwatchData() Stopwatch {
	return c.stopwatch
}

// SetStepOverBreakpoint arms a one-shot exemption: the next Step call
// that would otherwise stop at addr for a breakpoint hit instead
// executes through it. This is what lets a debugger step over a CALL
// that happens to sit on an armed breakpoint.
func (c *CPU) SetStepOverBreakpoint(addr uint32) {
	c.stepOverAddr = addr
	c.hasStepOver = true
}

// StepOverBreakpoint reports the currently armed step-over address, if
// any.
func (c *CPU) StepOverBreakpoint() (uint32, bool) {
	return c.stepOverAddr, c.hasStepOver
}

// ClearStepOverBreakpoint disarms the step-over exemption.
func (c *CPU) ClearStepOverBreakpoint() {
	c.hasStepOver = false
}

// linearPC returns CS:IP as a 20-bit linear address.
func (c *CPU) linearPC() uint32 {
	return linearize(c.regs.CS, c.regs.IP)
}

// fetchByte reads the next instruction byte, preferring the prefetch
// queue and falling back to a direct (cold) bus read when the queue
// has run dry — the case any real 8088 also pays a bus-wait for.
func (c *CPU) fetchByte() uint8 {
	var b uint8
	if qb, ok := c.biu.queue.Pop(); ok {
		c.biu.cycleI()
		b = qb
	} else {
		addr := c.linearPC()
		b = c.bus.ReadU8(addr)
		c.runBusCycle(CodeFetch, addr, uint16(b))
	}
	c.regs.IP++
	c.instBytes = append(c.instBytes, b)
	return b
}

// fetchWord reads a little-endian 16-bit immediate/displacement from
// the instruction stream.
func (c *CPU) fetchWord() uint16 {
	lo := c.fetchByte()
	hi := c.fetchByte()
	return uint16(lo) | uint16(hi)<<8
}

// refillQueue tops up the prefetch queue from the code segment,
// modeling the BIU filling idle bus cycles; called once per
// instruction boundary, which is a simplification of the real part's
// cycle-by-cycle overlap but preserves the property that a queue
// flush (jump/interrupt) costs a fetch stall before decode resumes.
func (c *CPU) refillQueue() {
	for !c.biu.queue.Full() {
		addr := linearize(c.regs.CS, c.regs.IP+uint16(c.biu.queue.Len()))
		c.biu.queue.Push(c.bus.ReadU8(addr))
	}
}

// readMem8/writeMem8/readMem16/writeMem16 access the bus and charge a
// bus cycle through runBusCycle. They do not tick devices; the bus's
// Tick is not called from the CPU.
func (c *CPU) readMem8(addr uint32) uint8 {
	v := c.bus.ReadU8(addr)
	c.runBusCycle(MemRead, addr, uint16(v))
	return v
}

func (c *CPU) writeMem8(addr uint32, v uint8) {
	c.bus.WriteU8(addr, v)
	c.runBusCycle(MemWrite, addr, uint16(v))
}

func (c *CPU) readMem16(addr uint32) uint16 {
	v := c.bus.ReadU16(addr)
	c.runBusCycle(MemRead, addr, v)
	return v
}

func (c *CPU) writeMem16(addr uint32, v uint16) {
	c.bus.WriteU16(addr, v)
	c.runBusCycle(MemWrite, addr, v)
}

// readEA/writeEA dereference a resolved EA at the given width.
func (c *CPU) readEA(e EA, w Width) uint16 {
	switch e.Kind {
	case EARegister:
		if w == Byte {
			return uint16(c.regs.Get8(e.Reg8))
		}
		return c.regs.Get16(e.Reg16)
	default:
		addr := e.Addr.Linear(0)
		if w == Byte {
			return uint16(c.readMem8(addr))
		}
		return c.readMem16(addr)
	}
}

func (c *CPU) writeEA(e EA, w Width, v uint16) {
	switch e.Kind {
	case EARegister:
		if w == Byte {
			c.regs.Set8(e.Reg8, uint8(v))
		} else {
			c.regs.Set16(e.Reg16, v)
		}
	default:
		addr := e.Addr.Linear(0)
		if w == Byte {
			c.writeMem8(addr, uint8(v))
		} else {
			c.writeMem16(addr, v)
		}
	}
}

// push/pop operate on SS:SP, always as words.
func (c *CPU) push(v uint16) {
	c.regs.SP -= 2
	c.writeMem16(linearize(c.regs.SS, c.regs.SP), v)
}

func (c *CPU) pop() uint16 {
	v := c.readMem16(linearize(c.regs.SS, c.regs.SP))
	c.regs.SP += 2
	return v
}

// readModRM fetches a ModR/M byte (and any displacement it implies),
// returning the decoded entry and its resolved EA.
func (c *CPU) readModRM(w Width) (modrmEntry, EA) {
	raw := c.fetchByte()
	m := decodeModRM(raw)

	var disp uint16
	switch m.disp {
	case dispPending8:
		disp = uint16(int16(int8(c.fetchByte())))
	case dispPending16:
		disp = c.fetchWord()
	}

	if m.mode != amRegister {
		c.biu.cyclesI(uint32(m.preDispCost), nil)
		c.biu.cyclesI(uint32(m.postDispCost), nil)
	}

	return m, ResolveEA(m, disp, &c.regs, c.segOverride, w)
}

// Step decodes and executes a single instruction, servicing a pending
// interrupt first if one is sampled and unmasked, and returns how it
// concluded. A REP string instruction runs all of its iterations in
// one Step unless an interrupt is taken between elements.
func (c *CPU) Step() StepResult {
	if c.halted {
		if !c.serviceInterruptIfPending() {
			return StepResult{Outcome: StepHalted}
		}
		c.halted = false
	}

	if addr := c.linearPC(); c.breakpoints[addr] {
		if c.hasStepOver && c.stepOverAddr == addr {
			c.hasStepOver = false
		} else {
			return StepResult{Outcome: StepBreakpointHit, NextAddress: addr, Err: ErrBreakpointHit}
		}
	}
	if c.hasEndAddress && c.linearPC() == c.endAddress {
		return StepResult{Outcome: StepProgramEnd, NextAddress: c.endAddress}
	}

	if sw := &c.stopwatch; sw.Armed {
		switch addr := c.linearPC(); {
		case !sw.running && addr == sw.StartAddr:
			sw.running = true
			sw.startedAt = c.biu.cyclesCharged
		case sw.running && addr == sw.StopAddr:
			sw.running = false
			sw.Cycles = c.biu.cyclesCharged - sw.startedAt
			sw.Hits++
			return StepResult{Outcome: StepStopwatchHit, NextAddress: addr, Cycles: uint32(sw.Cycles)}
		}
	}

	if !c.intFlagDelay {
		c.serviceInterruptIfPending()
	}
	c.intFlagDelay = false

	startCycles := c.biu.cyclesCharged
	c.segOverride = NoSegmentOverride
	c.lockPrefix = false
	c.instBytes = c.instBytes[:0]

	inst := decodedInstruction{startCS: c.regs.CS, startIP: c.regs.IP}
	inst.prefixes.segOverride = NoSegmentOverride

	if c.validator != nil {
		c.validator.BeginInstruction(c.snapshotRegisters(), c.endAddress)
	}

	for {
		prefixIP := c.regs.IP
		b := c.fetchByte()
		if seg, ok := segPrefixFor(b); ok {
			inst.prefixes.segOverride = seg
			c.segOverride = seg
			continue
		}
		switch b {
		case 0xF0:
			inst.prefixes.lock = true
			c.lockPrefix = true
			continue
		case 0xF2:
			inst.prefixes.rep1 = true
			inst.repPrefixIP = prefixIP
			continue
		case 0xF3:
			inst.prefixes.rep2 = true
			inst.repPrefixIP = prefixIP
			continue
		case 0x0F:
			inst.prefixes.escaped0F = true
			continue
		}
		inst.opcode = b
		break
	}

	handler := opcodeTable[inst.opcode]
	if handler == nil {
		log.Printf("cpu88: undecoded opcode 0x%02X at %04X:%04X", inst.opcode, inst.startCS, inst.startIP)
		c.exception(vecInvalidOpcode)
	} else {
		handler(c, &inst)
	}

	c.refillQueue()
	inst.raw = append([]byte(nil), c.instBytes...)
	inst.length = len(inst.raw)
	c.lastInstruction = inst

	if c.options[OptInstructionHistory] {
		c.pushHistory(inst)
	}

	if c.validator != nil {
		if err := c.validator.ValidateInstruction(instructionName(inst.opcode), inst.raw); err != nil {
			c.validator.ReportError(err)
		}
	}

	return StepResult{
		Outcome:     StepNormal,
		Cycles:      uint32(c.biu.cyclesCharged - startCycles),
		NextAddress: c.linearPC(),
	}
}

func (c *CPU) pushHistory(inst decodedInstruction) {
	e := HistoryEntry{CS: inst.startCS, IP: inst.startIP, Opcode: inst.opcode}
	c.history = append(c.history, e)
	if len(c.history) > c.historyCap {
		c.history = c.history[len(c.history)-c.historyCap:]
	}
}

// DumpInstructionHistory returns the instruction-history ring.
func (c *CPU) DumpInstructionHistory() []HistoryEntry {
	out := make([]HistoryEntry, len(c.history))
	copy(out, c.history)
	return out
}

// RaiseNMI edge-triggers a non-maskable interrupt, sampled at the next
// instruction boundary regardless of IF.
func (c *CPU) RaiseNMI() {
	c.pendingNMI = true
}

// pushCallFrame records a CALL's return address on the call-stack
// shadow (spec §4.4/§6's "call-stack shadow", a debugging aid only —
// it never participates in execution, unlike the real SS:SP stack).
func (c *CPU) pushCallFrame() {
	c.callStack = append(c.callStack, c.linearPC())
}

// popCallFrame pops one frame off the call-stack shadow on a RET,
// tolerating an unbalanced RET (more RETs than CALLs observed, e.g.
// because history started mid-call) by doing nothing when empty.
func (c *CPU) popCallFrame() {
	if len(c.callStack) == 0 {
		return
	}
	c.callStack = c.callStack[:len(c.callStack)-1]
}

// DumpCallStack returns the current call-stack shadow, oldest frame
// first.
func (c *CPU) DumpCallStack() []uint32 {
	out := make([]uint32, len(c.callStack))
	copy(out, c.callStack)
	return out
}

// opcodeHandler executes one decoded instruction.
type opcodeHandler func(c *CPU, inst *decodedInstruction)

var opcodeTable [256]opcodeHandler
