package cpu88

// repKind discriminates which REP flavor prefixed a string instruction:
// REP/REPE/REPZ (0xF3) repeats while CX != 0 (and, for CMPS/SCAS, also
// while ZF matches); REPNE/REPNZ (0xF2) repeats while CX != 0 and ZF
// does not match.
type repKind int

const (
	repNone repKind = iota
	repEqual
	repNotEqual
)

// repPhase tracks where a multi-iteration REP currently is, for the
// cycle tracer's queue-op column and for correctly rewinding IP when
// an interrupt lands mid-REP.
type repPhase int

const (
	repNotInRep repPhase = iota
	repStarting
	repIterating
	repEnding
)

// repState is the REP coroutine. A string instruction with a REP
// prefix does not execute as one atomic block: each element is its
// own "instruction" as far as interrupt sampling is concerned, which
// is what makes the classic 8088 lost-prefix bug possible (below).
type repState struct {
	kind  repKind
	phase repPhase

	// instrIP/instrCS record where the REP/REPE/REPNE prefix byte
	// itself was fetched from (decodedInstruction.repPrefixIP) — not
	// the instruction's overall start, which may point at a preceding
	// segment-override byte — so an interrupt landing mid-REP can
	// rewind IP back to re-fetch the prefix and opcode rather than
	// resuming after it.
	instrIP, instrCS uint16
}

// repStart begins (or continues) a REP-prefixed string op iteration.
// It returns false if the loop is already done (CX==0 on entry), after
// charging the 4 microcode cycles the real part spends falling through
// the rep-check jump ([0x112, 0x113, 0x114]) before discovering there
// is nothing to do.
func (c *CPU) repStart(kind repKind) bool {
	if c.regs.CX == 0 {
		c.biu.cyclesI(4, []uint16{0x112, 0x113, 0x114})
		return false
	}
	c.rep.kind = kind
	c.rep.phase = repIterating
	return true
}

// repStep consumes one CX and reports whether the loop should
// continue: CX must still be non-zero, and for repEqual/repNotEqual
// kinds ZF must agree with the terminating condition.
func (c *CPU) repStep() bool {
	c.regs.CX--
	if c.regs.CX == 0 {
		c.rep.phase = repEnding
		return false
	}
	switch c.rep.kind {
	case repEqual:
		if c.regs.Flags&FlagZero == 0 {
			c.rep.phase = repEnding
			return false
		}
	case repNotEqual:
		if c.regs.Flags&FlagZero != 0 {
			c.rep.phase = repEnding
			return false
		}
	}
	return true
}

// repEnd clears the coroutine state once the loop terminates
// naturally (CX hit zero or the ZF condition broke it).
func (c *CPU) repEnd() {
	c.rep.phase = repNotInRep
	c.rep.kind = repNone
}

// rewindForInterrupt implements the documented "8088 lost prefix" bug:
// if a maskable interrupt is sampled while a REP-prefixed string
// instruction is mid-loop, the real silicon does not save CS:IP
// pointing at the next element — it rewinds IP by exactly 2, back to
// the REP/REPE/REPNE prefix byte (c.rep.instrIP), because the prefix
// and opcode fetch share one microcode entry point. Any segment
// override preceding the REP prefix is NOT included in that rewind,
// so on return from the interrupt handler the CPU re-fetches and
// re-decodes the REP prefix and opcode, but the segment override is
// skipped and lost — the defining symptom of the bug. This core
// reproduces that by rewinding IP to c.rep.instrIP, not to the
// instruction's overall start, whenever serviceInterrupt is about to
// run with an in-progress REP.
func (c *CPU) rewindForInterrupt() {
	if c.rep.phase != repIterating {
		return
	}
	c.regs.IP = c.rep.instrIP
	c.regs.CS = c.rep.instrCS
}
