package bus

// StubDevice is a register-only stand-in for a peripheral class that
// renders, mixes, or moves bytes to removable media — all out of
// scope here (spec Non-goals). It claims its assigned ports, records
// the last byte written, and echoes it back on read, which is enough
// for BIOS POST probes and fuzzing to proceed past device detection
// without the core needing to model the device itself.
type StubDevice struct {
	name string
	last uint8
}

// NewStubDevice names the device class for debugger/trace display.
func NewStubDevice(name string) *StubDevice {
	return &StubDevice{name: name}
}

// Name returns the device class this stub stands in for.
func (s *StubDevice) Name() string { return s.name }

// ReadU8 implements Device.
func (s *StubDevice) ReadU8(port uint16) uint8 { return s.last }

// WriteU8 implements Device.
func (s *StubDevice) WriteU8(b *Bus, port uint16, val uint8) { s.last = val }

// Tick implements Device; stand-ins have no time-driven state.
func (s *StubDevice) Tick(sysTicks uint32) {}

// A0Register stands in for the latch some PC chipsets expose at port
// 0x92 (the "fast A20/reset" register). It stores the last byte written
// and returns it on read; no bit of it, reset request or A20 gate, has
// any effect.
type A0Register struct {
	value uint8
}

// NewA0Register returns the register in its power-on state.
func NewA0Register() *A0Register {
	return &A0Register{}
}

// ReadU8 implements Device.
func (a *A0Register) ReadU8(port uint16) uint8 { return a.value }

// WriteU8 implements Device.
func (a *A0Register) WriteU8(b *Bus, port uint16, val uint8) { a.value = val }

// Tick implements Device; the register has no time-driven state.
func (a *A0Register) Tick(sysTicks uint32) {}
