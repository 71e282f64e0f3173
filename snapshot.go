package cpu88

import (
	"encoding/binary"
	"errors"
)

// cpuSerializeVersion is incremented whenever the binary layout changes.
const cpuSerializeVersion = 1

// cpuSerializeSize is the number of bytes produced by CPU.Serialize.
// Update this constant whenever the binary layout changes.
const cpuSerializeSize = 41

// SerializeSize returns the number of bytes needed for Serialize.
func (c *CPU) SerializeSize() int { return cpuSerializeSize }

// Serialize writes the full CPU state into buf, which must be at least
// SerializeSize() bytes. Bus and device references are not included.
func (c *CPU) Serialize(buf []byte) error {
	if len(buf) < cpuSerializeSize {
		return errors.New("cpu88: serialize buffer too small")
	}

	buf[0] = cpuSerializeVersion
	be := binary.BigEndian
	off := 1

	for _, v := range []uint16{
		c.regs.AX, c.regs.BX, c.regs.CX, c.regs.DX,
		c.regs.SP, c.regs.BP, c.regs.SI, c.regs.DI,
		c.regs.ES, c.regs.CS, c.regs.SS, c.regs.DS,
		c.regs.IP, c.regs.Flags,
	} {
		be.PutUint16(buf[off:], v)
		off += 2
	}

	be.PutUint64(buf[off:], c.cycles)
	off += 8

	buf[off] = boolByte(c.halted)
	off++
	buf[off] = boolByte(c.pendingNMI)
	off++
	buf[off] = uint8(int8(c.segOverride))
	off++
	buf[off] = boolByte(c.lockPrefix)
	return nil
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// Deserialize restores CPU state from buf, which must be at least
// SerializeSize() bytes. Returns an error if the buffer is too small or
// the version does not match. Bus and device references are left unchanged.
func (c *CPU) Deserialize(buf []byte) error {
	if len(buf) < cpuSerializeSize {
		return errors.New("cpu88: deserialize buffer too small")
	}
	if buf[0] != cpuSerializeVersion {
		return errors.New("cpu88: unsupported serialize version")
	}

	be := binary.BigEndian
	off := 1

	vals := [14]*uint16{
		&c.regs.AX, &c.regs.BX, &c.regs.CX, &c.regs.DX,
		&c.regs.SP, &c.regs.BP, &c.regs.SI, &c.regs.DI,
		&c.regs.ES, &c.regs.CS, &c.regs.SS, &c.regs.DS,
		&c.regs.IP, &c.regs.Flags,
	}
	for _, p := range vals {
		*p = be.Uint16(buf[off:])
		off += 2
	}

	c.cycles = be.Uint64(buf[off:])
	off += 8

	c.halted = buf[off] != 0
	off++
	c.pendingNMI = buf[off] != 0
	off++
	c.segOverride = Register16(int8(buf[off]))
	off++
	c.lockPrefix = buf[off] != 0
	return nil
}

// VRegisters is the register snapshot handed to a Validator at the
// start of each instruction (spec's begin_instruction). It mirrors
// Registers but is its own type so the Validator contract never leaks
// cpu88-internal representation decisions (segOverride, the REP
// coroutine state, and so on) into an external cross-check.
type VRegisters struct {
	AX, BX, CX, DX uint16
	SP, BP, SI, DI uint16
	ES, CS, SS, DS uint16
	IP             uint16
	Flags          uint16
}

// snapshotRegisters builds the VRegisters a Validator sees at the
// start of the instruction about to execute.
func (c *CPU) snapshotRegisters() VRegisters {
	r := c.regs
	return VRegisters{
		AX: r.AX, BX: r.BX, CX: r.CX, DX: r.DX,
		SP: r.SP, BP: r.BP, SI: r.SI, DI: r.DI,
		ES: r.ES, CS: r.CS, SS: r.SS, DS: r.DS,
		IP: r.IP, Flags: r.Flags,
	}
}

// restoreRegisters loads a VRegisters snapshot back into the programmer
// visible register file, for a Validator that wants to force the core
// back in sync after reporting a mismatch.
func (c *CPU) restoreRegisters(v VRegisters) {
	c.regs = Registers{
		AX: v.AX, BX: v.BX, CX: v.CX, DX: v.DX,
		SP: v.SP, BP: v.BP, SI: v.SI, DI: v.DI,
		ES: v.ES, CS: v.CS, SS: v.SS, DS: v.DS,
		IP: v.IP, Flags: v.Flags,
	}
}
