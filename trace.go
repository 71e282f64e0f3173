package cpu88

import (
	"fmt"
	"io"
)

// TraceFormat selects how CPU.SetTraceWriter renders each CycleState
// row it writes.
type TraceFormat int

const (
	TraceText TraceFormat = iota
	TraceCSV
)

// CycleTableHeader returns the column names for one cycle-trace row,
// in the order WriteCycleRow emits them. The header is fixed per
// variant only in the sense that every variant of this family shares
// the same bus-cycle shape; a future variant with a different BIU
// would override this independently, which is why it hangs off CPU
// rather than being a package-level constant.
func (c *CPU) CycleTableHeader() []string {
	return []string{"cyc", "t", "qop", "status", "addr", "data", "ale", "seg"}
}

// SetTraceWriter arms per-cycle trace output to w in the given format.
// Passing a nil w disarms tracing.
func (c *CPU) SetTraceWriter(w io.Writer, format TraceFormat) {
	c.traceWriter = w
	c.traceFormat = format
	c.traceHeaderDone = false
}

func tCycleFor(s tState) TCycle {
	switch s {
	case T1:
		return TCycleT1
	case T2:
		return TCycleT2
	case T3:
		return TCycleT3
	case Tw:
		return TCycleTw
	case T4:
		return TCycleT4
	default:
		return TCycleIdle
	}
}

func busStatusFor(s busStatus) BusStatus {
	switch s {
	case MemRead:
		return BusStatusMemRead
	case MemWrite:
		return BusStatusMemWrite
	case IoRead:
		return BusStatusIORead
	case IoWrite:
		return BusStatusIOWrite
	case CodeFetch:
		return BusStatusCodeFetch
	case InterruptAck:
		return BusStatusInterruptAck
	case Halt:
		return BusStatusHalt
	default:
		return BusStatusPassive
	}
}

func busStrobesFor(s busStrobes) BusStrobes {
	return BusStrobes{
		ALE: s.ALE, MRDC: s.MRDC, MWTC: s.MWTC, AMWC: s.AMWC,
		IORC: s.IORC, IOWC: s.IOWC, AIOWC: s.AIOWC, INTA: s.INTA,
	}
}

// runBusCycle drives one full T1-T4(+Tw) bus cycle through the BIU's
// state machine, pushing a CycleState for every T-state to the
// validator (if attached) and the trace writer (if armed). Memory
// reads/writes and code fetches charge their bus cycles here, so the
// T-state machinery biu.go defines is actually exercised rather than
// bypassed by a flat cycle count. IN/OUT call the bus's IOReadU8/
// IOWriteU8 directly and do not pass through here, and refillQueue
// charges no bus cycles.
func (c *CPU) runBusCycle(status busStatus, addr uint32, data uint16) {
	wait := 0
	if c.options[OptEnableWaitStates] {
		wait = c.intValues[OptEnableWaitStates]
	}

	c.biu.beginBusCycle(status)
	c.pushCycleState(addr, data)
	for {
		done := c.biu.advanceBusCycle(wait)
		c.pushCycleState(addr, data)
		if done {
			break
		}
	}
	c.biu.endBusCycle()
}

func (c *CPU) pushCycleState(addr uint32, data uint16) {
	if c.validator == nil && c.traceWriter == nil {
		return
	}
	qop := QueueIdle
	if c.biu.status == CodeFetch {
		qop = QueueFetch
	}
	cs := CycleState{
		Cycle:      c.biu.cyclesCharged,
		TState:     tCycleFor(c.biu.state),
		QueueOp:    qop,
		BusStatus:  busStatusFor(c.biu.status),
		Strobes:    busStrobesFor(c.biu.strobes),
		AddressBus: addr,
		DataBus:    data,
		Segment:    c.segOverride,
	}
	if c.validator != nil {
		c.validator.PushCycleState(cs)
	}
	if c.traceWriter != nil {
		c.writeCycleRow(cs)
	}
}

func (c *CPU) writeCycleRow(cs CycleState) {
	if !c.traceHeaderDone {
		if c.traceFormat == TraceCSV {
			fmt.Fprintln(c.traceWriter, joinCSV(c.CycleTableHeader()))
		}
		c.traceHeaderDone = true
	}

	ale := "0"
	if cs.Strobes.ALE {
		ale = "1"
	}
	fields := []string{
		fmt.Sprintf("%d", cs.Cycle),
		tCycleLabel(cs.TState),
		queueOpLabel(cs.QueueOp),
		busStatusLabel(cs.BusStatus),
		fmt.Sprintf("%05X", cs.AddressBus),
		fmt.Sprintf("%04X", cs.DataBus),
		ale,
		segmentLabel(cs.Segment),
	}

	switch c.traceFormat {
	case TraceCSV:
		fmt.Fprintln(c.traceWriter, joinCSV(fields))
	default:
		fmt.Fprintln(c.traceWriter, joinText(fields))
	}
}

func joinCSV(fields []string) string {
	out := ""
	for i, f := range fields {
		if i > 0 {
			out += ","
		}
		out += f
	}
	return out
}

func joinText(fields []string) string {
	out := ""
	for i, f := range fields {
		if i > 0 {
			out += " "
		}
		out += f
	}
	return out
}

func tCycleLabel(t TCycle) string {
	switch t {
	case TCycleT1:
		return "T1"
	case TCycleT2:
		return "T2"
	case TCycleT3:
		return "T3"
	case TCycleTw:
		return "Tw"
	case TCycleT4:
		return "T4"
	default:
		return "Ti"
	}
}

func queueOpLabel(q QueueOp) string {
	switch q {
	case QueueFetch:
		return "F"
	case QueueFlush:
		return "E"
	case QueueSubFetch:
		return "S"
	default:
		return "."
	}
}

func busStatusLabel(s BusStatus) string {
	switch s {
	case BusStatusMemRead:
		return "MR"
	case BusStatusMemWrite:
		return "MW"
	case BusStatusIORead:
		return "IR"
	case BusStatusIOWrite:
		return "IW"
	case BusStatusCodeFetch:
		return "CF"
	case BusStatusInterruptAck:
		return "IA"
	case BusStatusHalt:
		return "HA"
	default:
		return "PA"
	}
}

func segmentLabel(seg Register16) string {
	switch seg {
	case ES:
		return "ES"
	case CS:
		return "CS"
	case SS:
		return "SS"
	case DS:
		return "DS"
	default:
		return "--"
	}
}
