package cpu88

// MachineConfiguration is the host-assembled, construction-time
// description of a machine instance: the pieces a CLI or config file
// resolve once and hand to the CPU and bus constructors (spec §6),
// as opposed to CPUOption's runtime-toggleable behaviors. Spec §7
// treats configuration errors as a host/build-time concern, so the
// core validates only what it must at construction: a zero-value
// MachineConfiguration is legal and yields an 8088 with the
// architectural reset vector, no end address, and no refresh period.
type MachineConfiguration struct {
	Variant Variant

	// HasResetVector overrides the architectural CS:IP the processor
	// loads on reset (0xFFFF:0x0000). Leave false to keep it.
	HasResetVector bool
	ResetCS, ResetIP uint16

	// HasEndAddress arms SetEndAddress at construction time.
	HasEndAddress bool
	EndAddress    uint32

	// InstalledDevices names the bus-side peripherals the host wired
	// onto its Bus for this machine (PIC/PIT/PPI/DMA plus any
	// register-only stand-ins). Purely descriptive: the core doesn't
	// look at it, but a trace or fuzzdrive-style host can report it
	// alongside Variant to describe the full machine shape.
	InstalledDevices []string

	// DramRefreshPeriod is the system-tick period the host configured
	// its bus's refresh scheduler with. Recorded here for the same
	// reporting reason as InstalledDevices; the core does not apply
	// it, since the refresh scheduler lives on the host's Bus value,
	// not on CPU.
	DramRefreshPeriod uint32
}

// NewMachine builds a CPU for cfg.Variant wired to bus, then applies
// the construction-time overrides cfg carries for the CPU side (reset
// vector, end address). Installing devices and configuring refresh
// period on bus is the host's job against its own Bus value before or
// after calling NewMachine; cfg just carries the values so the host
// can describe them once and use them in both places.
func NewMachine(bus Bus, cfg MachineConfiguration) *CPU {
	c := New(cfg.Variant, bus)
	if cfg.HasResetVector {
		c.regs.CS = cfg.ResetCS
		c.regs.IP = cfg.ResetIP
	}
	if cfg.HasEndAddress {
		c.SetEndAddress(cfg.EndAddress)
	}
	return c
}
