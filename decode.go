package cpu88

// prefixFlags records which prefix bytes preceded an opcode. Multiple
// segment overrides are legal to encode (the last one wins); LOCK and
// REP are independent of segment override.
type prefixFlags struct {
	segOverride Register16 // NoSegmentOverride if none seen
	lock        bool
	rep1        bool // 0xF2: REPNE/REPNZ for string ops, REPNZ-flavor for IDIV (F6/F7 /7) fuzzing
	rep2        bool // 0xF3: REP/REPE/REPZ
	escaped0F   bool
}

// segPrefixFor maps a segment-override prefix byte to the segment
// register it selects, and reports whether b is one at all.
func segPrefixFor(b uint8) (Register16, bool) {
	switch b {
	case 0x26:
		return ES, true
	case 0x2E:
		return CS, true
	case 0x36:
		return SS, true
	case 0x3E:
		return DS, true
	default:
		return NoSegmentOverride, false
	}
}

// isPrefixByte reports whether b is any recognized prefix (segment
// override, LOCK, REP, or the 0x0F two-byte escape).
func isPrefixByte(b uint8) bool {
	switch b {
	case 0x26, 0x2E, 0x36, 0x3E, 0xF0, 0xF2, 0xF3, 0x0F:
		return true
	}
	return false
}

// decodedInstruction is the record an opcode fetch/decode pass builds:
// enough for the dispatch table's handler to execute the instruction
// and for the tracer/validator to describe it afterward.
type decodedInstruction struct {
	prefixes prefixFlags
	opcode   uint8
	modrm    modrmEntry

	// startIP/startCS identify where the first prefix byte (or the
	// opcode, if there were none) was fetched from, for the
	// instruction-history ring and the undecoded-opcode log line.
	startIP uint16
	startCS uint16

	// repPrefixIP records where the REP/REPE/REPNE prefix byte itself
	// (0xF2/0xF3) was fetched from, distinct from startIP whenever a
	// segment-override prefix preceded it. rep.go's rewindForInterrupt
	// rewinds to this address, not startIP, reproducing the 8088
	// lost-prefix bug: the segment override is skipped on re-fetch,
	// the REP prefix and opcode are not. Zero when hasRepPrefix is false.
	repPrefixIP uint16

	// length is the total encoded length in bytes, prefixes included;
	// used for the instruction-history ring.
	length int

	// raw holds every byte fetched for this instruction, prefixes
	// through trailing immediate, in fetch order. Populated by Step
	// from the CPU's fetch log once the handler returns; a validator
	// diffing against an external trace reads this directly rather
	// than re-deriving encoded length from the individual fields above.
	raw []byte
}
