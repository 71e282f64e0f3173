package cpu88

import "math/rand/v2"

// Fuzzer generates randomized register/memory state and randomized
// instruction streams for the single-step-test-style cross-validation
// harness (cmd/fuzzdrive). Every random draw goes through one seeded
// source so a run is exactly reproducible from its seed.
type Fuzzer struct {
	rng *rand.Rand
}

// NewFuzzer seeds a Fuzzer. The same seed always produces the same
// instruction/register stream, which is what makes a divergence
// against an external validator reproducible.
func NewFuzzer(seed uint64) *Fuzzer {
	return &Fuzzer{rng: rand.New(rand.NewPCG(seed, seed))}
}

// SetFuzzer installs a Fuzzer on the CPU (used by random_inst_from_opcodes
// style host drivers; nil clears it).
func (c *CPU) SetFuzzer(f *Fuzzer) {
	c.fuzzer = f
}

func (f *Fuzzer) rand8() uint8   { return uint8(f.rng.Uint32()) }
func (f *Fuzzer) rand16() uint16 { return uint16(f.rng.Uint32()) }

// denySegOverride lists opcodes random_inst_from_opcodes must not
// prefix with a segment override: instructions with no memory operand,
// ones whose encoding a segment prefix would corrupt (e.g. consuming
// what would otherwise be an opcode byte), and a handful more whose
// necessity hasn't been reconfirmed since this list was curated (see
// the open question on preserving rather than pruning it).
var denySegOverride = map[uint8]bool{
	0x06: true, 0x07: true, 0x0E: true, 0x16: true, 0x17: true, 0x1E: true, 0x1F: true,
	0x27: true, 0x2F: true, 0x37: true, 0x3F: true,
	0x40: true, 0x41: true, 0x42: true, 0x43: true, 0x44: true, 0x45: true, 0x46: true, 0x47: true,
	0x48: true, 0x49: true, 0x4A: true, 0x4B: true, 0x4C: true, 0x4D: true, 0x4E: true, 0x4F: true,
	0x50: true, 0x51: true, 0x52: true, 0x53: true, 0x54: true, 0x55: true, 0x56: true, 0x57: true,
	0x58: true, 0x59: true, 0x5A: true, 0x5B: true, 0x5C: true, 0x5D: true, 0x5E: true, 0x5F: true,
	0x60: true, 0x61: true, 0x62: true, 0x63: true, 0x64: true, 0x65: true, 0x66: true, 0x67: true,
	0x68: true, 0x6A: true,
	0x70: true, 0x71: true, 0x72: true, 0x73: true, 0x74: true, 0x75: true, 0x76: true, 0x77: true,
	0x78: true, 0x79: true, 0x7A: true, 0x7B: true, 0x7C: true, 0x7D: true, 0x7E: true, 0x7F: true,
	0x90: true, 0x91: true, 0x92: true, 0x93: true, 0x94: true, 0x95: true, 0x96: true, 0x97: true,
	0x98: true, 0x99: true, 0x9B: true, 0x9C: true, 0x9D: true, 0x9E: true, 0x9F: true,
	0xA8: true, 0xA9: true,
	0xB0: true, 0xB1: true, 0xB2: true, 0xB3: true, 0xB4: true, 0xB5: true, 0xB6: true, 0xB7: true, 0xB8: true,
	0xB9: true, 0xBA: true, 0xBB: true, 0xBC: true, 0xBD: true, 0xBE: true, 0xBF: true,
	0xC8: true, 0xC9: true, 0xCA: true, 0xCB: true, 0xCC: true, 0xCD: true, 0xCE: true, 0xCF: true,
	0xD4: true, 0xD5: true,
	0xE4: true, 0xE5: true, 0xE6: true, 0xE7: true, 0xEC: true, 0xED: true, 0xEE: true, 0xEF: true,
	0xF5: true, 0xF8: true, 0xF9: true, 0xFA: true, 0xFB: true, 0xFC: true, 0xFD: true,
}

// modrmRegMask isolates the ModR/M reg field (bits 3-5).
const modrmRegMask uint8 = 0x38

// RandomizeRegs seeds every register with fresh random bits and clears
// TF/IF so a fuzzed run doesn't immediately single-step-trap itself or
// start with interrupts masked differently than the reference.
func (f *Fuzzer) RandomizeRegs(c *CPU) {
	var r Registers
	r.CS = f.rand16()
	r.IP = f.rand16()
	c.regs = r
	c.biu.queue.Flush()

	for _, reg := range register16LUT {
		c.regs.Set16(reg, f.rand16())
	}
	// CX's low bit is cleared, so CX is always even and never 0xFFFF.
	c.regs.CX &= 0xFFFE

	c.regs.DS = f.rand16()
	c.regs.SS = f.rand16()
	c.regs.ES = f.rand16()

	flags := f.rand16()
	flags &^= FlagTrap
	flags &^= FlagInterrupt
	c.regs.Flags = reservedFlags(flags)
}

// RandomizeMem fills the first size bytes of the address space with
// random bytes, then installs a minimal IVT entry at vector 0 (divide
// error) pointing at a single IRET, so a fuzzed DIV/IDIV/AAM that
// raises vecDivideError has somewhere valid to return from.
func (f *Fuzzer) RandomizeMem(c *CPU, size uint32) {
	for addr := uint32(0); addr < size; addr++ {
		c.bus.WriteU8(addr, f.rand8())
	}
	c.bus.WriteU16(0x00000, 0x0400)
	c.bus.WriteU16(0x00002, 0x0000)
	c.bus.WriteU8(0x00400, 0xCF) // IRET
}

// RandomInstFromOpcodes synthesizes one random instruction (prefixes
// + opcode + ModR/M + trailing random bytes) using a randomly chosen
// opcode from opcodes, and writes it to memory at the current CS:IP.
// Matches the source fuzzer's prefix-injection probabilities and
// per-opcode special cases (REP on string ops, CL masking for
// shifts, trap-bit scrubbing for POPF/IRET).
func (f *Fuzzer) RandomInstFromOpcodes(c *CPU, opcodes []uint8) {
	opcode := opcodes[f.rng.IntN(len(opcodes))]

	var instr []byte
	enableSegPrefix := !denySegOverride[opcode]

	switch {
	case opcode >= 0xA4 && opcode <= 0xA7 || opcode >= 0xAA && opcode <= 0xAF:
		// String ops: about 25% chance of REPNE, 25% of REPE and 50% of
		// no prefix (a random byte split 0-64/65-128/129-255).
		switch roll := f.rand8(); {
		case roll <= 64:
			instr = append(instr, 0xF2)
		case roll <= 128:
			instr = append(instr, 0xF3)
		}
	case opcode == 0x9D: // POPF
		f.scrubTrapFlag(c, c.regs.SP)
	case opcode == 0xCF: // IRET
		f.scrubTrapFlag(c, c.regs.SP+4)
	case opcode == 0xD2 || opcode == 0xD3:
		// Shift/rotate by CL: mask to 6 bits to shorten tests while
		// still catching an emulator that incorrectly 5-bit-masks.
		c.regs.Set8(CL, c.regs.Get8(CL)&0x3F)
	case opcode >= 0xC0 && opcode <= 0xC3 || opcode >= 0xC8 && opcode <= 0xCF:
		enableSegPrefix = false // RETN/RETF/INTx/IRET
	case opcode == 0xF5 || opcode >= 0xF8 && opcode <= 0xFD:
		enableSegPrefix = false // flag set/clear instructions
	}

	instr = append(instr, opcode)
	instr = append(instr, f.validModRM(opcode))

	if segRoll := f.rand8(); enableSegPrefix && segRoll > 127 {
		segPrefixes := [4]uint8{0x26, 0x2E, 0x36, 0x3E}
		instr = append([]byte{segPrefixes[segRoll&0x03]}, instr...)
	}

	for i := 0; i < 5; i++ {
		instr = append(instr, f.rand8())
	}

	f.writeInstruction(c, instr)
}

// RandomGrpInstruction synthesizes a random instruction for one
// ModR/M-reg-selected extension of a group opcode (0x80/0x81/0x83,
// 0xD0-D3, 0xF6/0xF7, 0xFE/0xFF), forcing the ModR/M reg field to the
// given extension.
func (f *Fuzzer) RandomGrpInstruction(c *CPU, opcode uint8, extension uint8) {
	var instr []byte

	if (opcode == 0xF6 || opcode == 0xF7) && extension == 0x07 {
		// IDIV: an undocumented quirk inverts the quotient when a REP
		// prefix precedes it. Inject REPNE when a random byte is at most
		// 0x05 (about 2%) and REPE when it is 0x06-0x10 (about 4%) so a
		// fuzz run occasionally exercises it.
		switch roll := f.rand8(); {
		case roll <= 0x05:
			instr = append(instr, 0xF2)
		case roll <= 0x10:
			instr = append(instr, 0xF3)
		}
	}
	instr = append(instr, opcode)

	if segRoll := f.rand8(); segRoll > 127 {
		segPrefixes := [4]uint8{0x26, 0x2E, 0x36, 0x3E}
		instr = append([]byte{segPrefixes[segRoll&0x03]}, instr...)
	}

	modrm := f.rand8()
	modrm = (modrm &^ modrmRegMask) | ((extension << 3) & modrmRegMask)
	instr = append(instr, modrm)

	for i := 0; i < 6; i++ {
		instr = append(instr, f.rand8())
	}

	f.writeInstruction(c, instr)
}

// validModRM draws a ModR/M byte, re-rolling until it avoids the
// encodings that make certain instructions unvalidatable (LEA/LES/LDS
// in register form, MOV Sreg with CS as destination).
func (f *Fuzzer) validModRM(opcode uint8) uint8 {
	for {
		m := f.rand8()
		switch opcode {
		case 0x8D, 0xC4, 0xC5: // LEA, LES, LDS
			if m&0xC0 == 0xC0 {
				continue
			}
		case 0x8E: // MOV Sreg,r/m
			if (m>>3)&0x03 == 0x01 {
				continue // CS destination is invalid
			}
		}
		return m
	}
}

// scrubTrapFlag clears the trap-flag bit of the flag word about to be
// popped by POPF/IRET, mirroring the fuzzer's rewrite so a fuzzed run
// never schedules a debug trap on itself mid-stream.
func (f *Fuzzer) scrubTrapFlag(c *CPU, sp uint16) {
	addr := linearize(c.regs.SS, sp)
	word := c.bus.ReadU16(addr)
	word &^= FlagTrap
	c.bus.WriteU16(addr, word)
}

func (f *Fuzzer) writeInstruction(c *CPU, instr []byte) {
	addr := linearize(c.regs.CS, c.regs.IP)
	for i, b := range instr {
		c.bus.WriteU8(addr+uint32(i), b)
	}
}
