package cpu88

// Flag bit positions in the 8086 flag word.
const (
	FlagCarry     uint16 = 1 << 0
	flagReserved1 uint16 = 1 << 1 // always 1
	FlagParity    uint16 = 1 << 2
	FlagAuxCarry  uint16 = 1 << 4
	FlagZero      uint16 = 1 << 6
	FlagSign      uint16 = 1 << 7
	FlagTrap      uint16 = 1 << 8
	FlagInterrupt uint16 = 1 << 9
	FlagDirection uint16 = 1 << 10
	FlagOverflow  uint16 = 1 << 11

	// flagsReservedOn are the bits the 8086 always reads back as 1.
	flagsReservedOn uint16 = flagReserved1 | 1<<12 | 1<<13 | 1<<14 | 1<<15
	// flagsMask covers every defined flag bit plus reserved bit 1.
	flagsMask = FlagCarry | flagReserved1 | FlagParity | FlagAuxCarry | FlagZero |
		FlagSign | FlagTrap | FlagInterrupt | FlagDirection | FlagOverflow
)

// setFlag sets or clears a single flag bit.
func setFlag(flags uint16, bit uint16, on bool) uint16 {
	if on {
		return flags | bit
	}
	return flags &^ bit
}

// setArithFlags applies the standard CF/PF/AF/ZF/SF/OF set after an
// arithmetic (ADD/ADC/SUB/SBB/CMP/NEG/INC/DEC) ALU call.
func setArithFlags(flags uint16, result uint16, carry, overflow, aux bool, w Width) uint16 {
	flags = setFlag(flags, FlagCarry, carry)
	flags = setFlag(flags, FlagOverflow, overflow)
	flags = setFlag(flags, FlagAuxCarry, aux)
	flags = setFlag(flags, FlagZero, result&w.Mask() == 0)
	flags = setFlag(flags, FlagSign, result&w.MSB() != 0)
	flags = setFlag(flags, FlagParity, Parity(result))
	return flags
}

// setLogicFlags applies the flag rule for AND/OR/XOR/TEST: CF=0, OF=0,
// ZF/SF/PF from the result. AF is variant-specific (see variant.go):
// the 8088 leaves it undefined (we leave it unchanged, matching the
// common "undefined means untouched" emulator convention) while the
// NEC V20/V30 explicitly clears it; callers pass clearAux accordingly.
func setLogicFlags(flags uint16, result uint16, w Width, clearAux bool) uint16 {
	flags = setFlag(flags, FlagCarry, false)
	flags = setFlag(flags, FlagOverflow, false)
	if clearAux {
		flags = setFlag(flags, FlagAuxCarry, false)
	}
	flags = setFlag(flags, FlagZero, result&w.Mask() == 0)
	flags = setFlag(flags, FlagSign, result&w.MSB() != 0)
	flags = setFlag(flags, FlagParity, Parity(result))
	return flags
}

// reservedFlags masks a raw flag word down to defined bits and forces
// the reserved-on bits, as happens when POPF/IRET loads a flag word
// from the stack.
func reservedFlags(raw uint16) uint16 {
	return (raw & flagsMask) | flagsReservedOn
}
