package cpu88

import "fmt"

// Validator is the optional cross-check capability described in the
// design notes: a register snapshot in/out, a per-cycle state push,
// and error reporting. Any implementation satisfies it — a serial
// link to real hardware, a reference emulator, or a null object —
// the core never depends on a concrete validator's internals.
type Validator interface {
	// BeginInstruction is called with the pre-execution register
	// snapshot and the configured run end address (0 if none is
	// armed), before the opcode handler executes.
	BeginInstruction(regs VRegisters, endAddr uint32)

	// ValidateInstruction is called after the instruction completes,
	// with its mnemonic (for diagnostics only) and raw encoded bytes.
	// It returns an error describing a mismatch, or nil.
	ValidateInstruction(name string, bytes []byte) error

	// PushCycleState records one bus-cycle observation for the
	// instruction currently in flight (queue op, bus status, data
	// bus, address latch — see CycleState).
	PushCycleState(cs CycleState)

	// ReportError surfaces a validator-detected mismatch that isn't
	// tied to a specific ValidateInstruction call (e.g. a trace
	// divergence discovered mid-instruction).
	ReportError(err error)
}

// CycleState is one bus-clock observation, the unit a Validator or a
// cycle-trace logger consumes. Field set mirrors the columns produced
// by CPU.CycleTableHeader.
type CycleState struct {
	Cycle      uint64
	TState     TCycle
	QueueOp    QueueOp
	BusStatus  BusStatus
	Strobes    BusStrobes
	AddressBus uint32
	DataBus    uint16
	Segment    Register16
}

// TCycle names a T-state of the bus-cycle state machine, exported for
// a Validator/tracer outside this package (mirrors the unexported
// tState biu.go drives internally).
type TCycle uint8

const (
	TCycleIdle TCycle = iota
	TCycleT1
	TCycleT2
	TCycleT3
	TCycleTw
	TCycleT4
)

// BusStrobes mirrors biu.go's busStrobes for external consumption.
type BusStrobes struct {
	ALE, MRDC, MWTC, AMWC, IORC, IOWC, AIOWC, INTA bool
}

// QueueOp classifies what the prefetch queue did on a given bus cycle.
type QueueOp uint8

const (
	QueueIdle QueueOp = iota
	QueueFetch
	QueueFlush
	QueueSubFetch // second byte of a 16-bit-bus fetch
)

// BusStatus mirrors the 8288 bus-cycle status lines (S0-S2) the BIU
// asserts for each external bus cycle.
type BusStatus uint8

const (
	BusStatusInterruptAck BusStatus = iota
	BusStatusIORead
	BusStatusIOWrite
	BusStatusHalt
	BusStatusCodeFetch
	BusStatusMemRead
	BusStatusMemWrite
	BusStatusPassive
)

// instructionName gives a Validator a diagnostic label for a
// ValidateInstruction call. No disassembler lives in the core (spec
// §6's tokenization is a host-side concern), so the label is the raw
// opcode byte; good enough to correlate mismatches against an
// external trace by address and opcode.
func instructionName(opcode uint8) string {
	return fmt.Sprintf("opcode_%02X", opcode)
}
