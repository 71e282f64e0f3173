package cpu88

// addrMode enumerates the 24 memory addressing-mode shapes the R/M
// field of a ModR/M byte can select (register-direct mode is handled
// separately since it never computes an effective address).
type addrMode int

const (
	amBxSi addrMode = iota
	amBxDi
	amBpSi
	amBpDi
	amSi
	amDi
	amDisp16
	amBx
	amBxSiDisp8
	amBxDiDisp8
	amBpSiDisp8
	amBpDiDisp8
	amSiDisp8
	amDiDisp8
	amBpDisp8
	amBxDisp8
	amBxSiDisp16
	amBxDiDisp16
	amBpSiDisp16
	amBpDiDisp16
	amSiDisp16
	amDiDisp16
	amBpDisp16
	amBxDisp16
	amRegister // mod == 11: R/M names a register, not memory
)

// dispKind says what displacement (if any) follows the ModR/M byte.
type dispKind int

const (
	dispNone dispKind = iota
	dispPending8
	dispPending16
)

// modrmEntry is one of the 256 statically precomputed ModR/M
// decodings: the mod/reg/rm fields split out of the raw byte, which
// addressing mode mod+rm selects, what displacement follows, and the
// pre/post-displacement microcode costs the BIU charges while forming
// the effective address.
//
// The EA cost split and the oddity that an 8-bit displacement costs
// one microcode jump more than a 16-bit one (line 0x1de in the
// microcode listing) are ported as data from the original
// EA_INSTR_TABLE_PRE/_POST tables rather than re-derived.
type modrmEntry struct {
	mod, reg, rm uint8
	mode         addrMode
	disp         dispKind
	preDispCost  uint8
	postDispCost uint8
}

var modrmTable [256]modrmEntry

// eaCost holds the pre/post-displacement microcode cost for each of
// the 24 memory addressing modes, indexed by (mod<<3 | rm) the same
// way the original EA_INSTR_TABLE_PRE/_POST are, but collapsed to just
// the costs this port actually charges (see biu.go cycle_i).
var eaCost = [24]struct{ pre, post uint8 }{
	amBxSi:       {4, 0},
	amBxDi:       {5, 0},
	amBpSi:       {5, 0},
	amBpDi:       {4, 0},
	amSi:         {2, 0},
	amDi:         {2, 0},
	amDisp16:     {0, 1},
	amBx:         {2, 0},
	amBxSiDisp8:  {4, 3},
	amBxDiDisp8:  {5, 3},
	amBpSiDisp8:  {5, 3},
	amBpDiDisp8:  {4, 3},
	amSiDisp8:    {2, 3},
	amDiDisp8:    {2, 3},
	amBpDisp8:    {2, 3},
	amBxDisp8:    {2, 3},
	amBxSiDisp16: {4, 2},
	amBxDiDisp16: {5, 2},
	amBpSiDisp16: {5, 2},
	amBpDiDisp16: {4, 2},
	amSiDisp16:   {2, 2},
	amDiDisp16:   {2, 2},
	amBpDisp16:   {2, 2},
	amBxDisp16:   {2, 2},
}

func init() {
	for b := 0; b < 256; b++ {
		byte8 := uint8(b)
		mod := byte8 >> 6
		reg := (byte8 >> 3) & 0x07
		rm := byte8 & 0x07

		var mode addrMode
		var disp dispKind

		if mod == 0b11 {
			mode = amRegister
			disp = dispNone
		} else {
			mode = modeFor(mod, rm)
			switch {
			case mod == 0b00 && mode == amDisp16:
				disp = dispPending16
			case mod == 0b01:
				disp = dispPending8
			case mod == 0b10:
				disp = dispPending16
			default:
				disp = dispNone
			}
		}

		var pre, post uint8
		if mode != amRegister {
			c := eaCost[mode]
			pre, post = c.pre, c.post
		}

		modrmTable[b] = modrmEntry{
			mod: mod, reg: reg, rm: rm,
			mode: mode, disp: disp,
			preDispCost: pre, postDispCost: post,
		}
	}
}

// modeFor maps (mod, rm) to the addressing mode it selects. mod==00
// rm==110 is the lone exception: it does not mean "[BP]", it means a
// bare 16-bit displacement.
func modeFor(mod, rm uint8) addrMode {
	base := [8]addrMode{amBxSi, amBxDi, amBpSi, amBpDi, amSi, amDi, amBpDisp8, amBx}
	switch mod {
	case 0b00:
		if rm == 0b110 {
			return amDisp16
		}
		return base[rm]
	case 0b01:
		disp8 := [8]addrMode{amBxSiDisp8, amBxDiDisp8, amBpSiDisp8, amBpDiDisp8, amSiDisp8, amDiDisp8, amBpDisp8, amBxDisp8}
		return disp8[rm]
	case 0b10:
		disp16 := [8]addrMode{amBxSiDisp16, amBxDiDisp16, amBpSiDisp16, amBpDiDisp16, amSiDisp16, amDiDisp16, amBpDisp16, amBxDisp16}
		return disp16[rm]
	default:
		return amRegister
	}
}

// decodeModRM looks up the static table entry for a raw ModR/M byte.
func decodeModRM(b uint8) modrmEntry {
	return modrmTable[b]
}

// EAKind discriminates a resolved effective address between a register
// operand and a memory operand.
type EAKind int

const (
	EARegister EAKind = iota
	EAMemory
)

// EA is a resolved operand: either a register selector or a linear
// memory address together with the segment it was formed in (needed
// for re-reading the same EA after a segment-override prefix).
type EA struct {
	Kind  EAKind
	Reg8  Register8
	Reg16 Register16
	Addr  CpuAddress
}

// defaultSegmentFor returns the implied segment register for a memory
// addressing mode: SS for the BP-based modes, DS otherwise. A segment
// override prefix (handled by the caller) takes priority over this.
func defaultSegmentFor(mode addrMode) Register16 {
	switch mode {
	case amBpSi, amBpDi, amBpSiDisp8, amBpDiDisp8, amBpDisp8,
		amBpSiDisp16, amBpDiDisp16, amBpDisp16:
		return SS
	default:
		return DS
	}
}

// resolveMemory computes the 16-bit offset for a memory addressing
// mode given the already-fetched displacement (0 if the mode has
// none) and the current register file.
func resolveMemory(mode addrMode, disp uint16, regs *Registers) (offset uint16, seg Register16) {
	seg = defaultSegmentFor(mode)
	switch mode {
	case amBxSi:
		return regs.BX + regs.SI, seg
	case amBxDi:
		return regs.BX + regs.DI, seg
	case amBpSi:
		return regs.BP + regs.SI, seg
	case amBpDi:
		return regs.BP + regs.DI, seg
	case amSi:
		return regs.SI, seg
	case amDi:
		return regs.DI, seg
	case amDisp16:
		return disp, seg
	case amBx:
		return regs.BX, seg
	case amBxSiDisp8, amBxSiDisp16:
		return regs.BX + regs.SI + disp, seg
	case amBxDiDisp8, amBxDiDisp16:
		return regs.BX + regs.DI + disp, seg
	case amBpSiDisp8, amBpSiDisp16:
		return regs.BP + regs.SI + disp, seg
	case amBpDiDisp8, amBpDiDisp16:
		return regs.BP + regs.DI + disp, seg
	case amSiDisp8, amSiDisp16:
		return regs.SI + disp, seg
	case amDiDisp8, amDiDisp16:
		return regs.DI + disp, seg
	case amBpDisp8, amBpDisp16:
		return regs.BP + disp, seg
	case amBxDisp8, amBxDisp16:
		return regs.BX + disp, seg
	default:
		return 0, seg
	}
}

// ResolveEA builds the EA for a decoded ModR/M entry. disp is the
// sign-extended displacement already fetched from the instruction
// stream (ignored when the entry carries no displacement). segOverride,
// when not NoSegmentOverride, replaces the addressing mode's implied default
// segment (spec §4.4 segment-override prefixes).
func ResolveEA(m modrmEntry, disp uint16, regs *Registers, segOverride Register16, width Width) EA {
	if m.mode == amRegister {
		if width == Byte {
			return EA{Kind: EARegister, Reg8: register8LUT[m.rm]}
		}
		return EA{Kind: EARegister, Reg16: register16LUT[m.rm]}
	}

	offset, seg := resolveMemory(m.mode, disp, regs)
	if segOverride != NoSegmentOverride {
		seg = segOverride
	}
	segVal := regs.Get16(seg)
	return EA{Kind: EAMemory, Addr: Segmented(segVal, offset)}
}
