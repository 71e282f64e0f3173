package cpu88

import "log"

// Interrupt vector numbers this core raises internally; externally
// triggered vectors (hardware IRQs via the PIC, INT n) are whatever
// value the instruction or the interrupt source supplies.
const (
	vecDivideError   = 0
	vecSingleStep    = 1
	vecNMI           = 2
	vecBreakpoint    = 3
	vecOverflow      = 4
	vecBoundRange    = 5
	vecInvalidOpcode = 6
)

// exception raises an internally detected fault at the current
// instruction boundary. IP already points past the faulting
// instruction by the time this runs, so the return address pushed is
// "next instruction" for every fault class this core models (divide
// error, BOUND range, invalid opcode) — none of the restartable,
// precise-state exceptions later x86 generations added exist here.
func (c *CPU) exception(vector uint8) {
	log.Printf("cpu88: exception %d at %04X:%04X", vector, c.regs.CS, c.regs.IP)
	c.serviceInterrupt(vector)
}

// serviceInterrupt performs the documented 8088 interrupt sequence:
// push FLAGS, clear IF and TF, push CS, push IP, then load CS:IP from
// the four-byte IVT entry at linear address vector*4.
func (c *CPU) serviceInterrupt(vector uint8) {
	c.push(c.regs.Flags)
	c.regs.Flags = setFlag(c.regs.Flags, FlagInterrupt, false)
	c.regs.Flags = setFlag(c.regs.Flags, FlagTrap, false)
	c.push(c.regs.CS)
	c.push(c.regs.IP)

	ivtAddr := uint32(vector) * 4
	newIP := c.bus.ReadU16(ivtAddr)
	newCS := c.bus.ReadU16(ivtAddr + 2)
	c.regs.IP = newIP
	c.regs.CS = newCS

	c.biu.queue.Flush()
	c.biu.cyclesCharged += 51 // documented ~51-cycle INT sequence cost
}

// serviceInterruptIfPending samples NMI (edge-triggered, always
// serviced) and then, if IF is set, the installed interrupt source's
// highest-priority maskable IRQ via the two-pulse INTA handshake.
// Returns true if an interrupt was actually serviced (used to wake the
// CPU from HLT).
func (c *CPU) serviceInterruptIfPending() bool {
	if c.pendingNMI {
		c.pendingNMI = false
		c.rewindForInterrupt()
		c.serviceInterrupt(vecNMI)
		return true
	}

	if c.regs.Flags&FlagInterrupt == 0 {
		return false
	}
	if c.interruptSource == nil {
		return false
	}

	vector, ok := c.interruptSource.Acknowledge()
	if !ok {
		return false
	}
	c.rewindForInterrupt()
	c.serviceInterrupt(vector)
	return true
}

// InterruptSource is the capability the CPU polls for a pending
// hardware interrupt, satisfied by bus.DeviceCatalog's primary PIC
// (wired in by the host via SetInterruptSource).
type InterruptSource interface {
	Acknowledge() (vector uint8, ok bool)
}

// SetInterruptSource installs the device providing the two-pulse INTA
// handshake (normally the bus's primary PIC).
func (c *CPU) SetInterruptSource(src InterruptSource) {
	c.interruptSource = src
}
