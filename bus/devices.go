package bus

// DeviceTag identifies which device instance a port maps to.
type DeviceTag int

const (
	TagNone DeviceTag = iota
	TagA0Register
	TagPPI
	TagPIT
	TagDMAPrimary
	TagDMASecondary
	TagPICPrimary
	TagPICSecondary
	TagFDC
	TagHDC
	TagSerial
	TagParallel
	TagEMS
	TagGamePort
	TagVideo
	TagSound
)

// Device is the capability every bus peripheral implements. ReadU8 and
// WriteU8 are the port-level read/write; Tick lets timer-like devices
// (PIT) advance with the bus clock. A device that only needs to claim
// ports and record the last byte (the out-of-scope stand-ins) can embed
// StubDevice to satisfy this trivially.
type Device interface {
	ReadU8(port uint16) uint8
	WriteU8(bus *Bus, port uint16, val uint8)
	Tick(sysTicks uint32)
}

// InterruptSource is implemented by devices that can raise an IRQ line
// on the primary or secondary PIC (PIT channel 0, FDC, serial, ...).
type InterruptSource interface {
	IRQLine() int
}

// DeviceCatalog holds the optional instances for every device class
// named in spec §3. A nil field means that device class is not
// installed on this machine configuration; unresolved ports behave as
// described in §4.3 (NoIOByte on read, recorded-but-unacknowledged).
type DeviceCatalog struct {
	A0  *A0Register
	PPI *PPI
	PIT *PIT
	DMA1 *DMA
	DMA2 *DMA
	PIC1 *PIC
	PIC2 *PIC

	FDC      *StubDevice
	HDC      *StubDevice
	Serial   *StubDevice
	Parallel *StubDevice
	EMS      *StubDevice
	GamePort *StubDevice
	Video    *StubDevice
	Sound    *StubDevice
}

// NewDeviceCatalog returns an empty catalog (no devices installed).
func NewDeviceCatalog() *DeviceCatalog {
	return &DeviceCatalog{}
}

// Wire cross-connects installed devices that need to signal one
// another directly: PIT channel 0's output line drives PIC1's IRQ0.
// The PPI, in turn, is constructed with a reference to the PIT (see
// NewPPI) so it can read channel 2's output for the speaker line.
func (c *DeviceCatalog) Wire() {
	if c.PIT != nil {
		c.PIT.pic = c.PIC1
	}
}

// Tick advances every installed device that implements ticking by n
// system ticks.
func (c *DeviceCatalog) Tick(sysTicks uint32) {
	if c.PIT != nil {
		c.PIT.Tick(sysTicks)
	}
	if c.DMA1 != nil {
		c.DMA1.Tick(sysTicks)
	}
	if c.DMA2 != nil {
		c.DMA2.Tick(sysTicks)
	}
}

// PendingInterrupt returns the vector of the highest-priority pending,
// unmasked IRQ on the primary PIC (PIC1), and whether one exists. The
// secondary PIC is not consulted, and nothing in this module calls it.
func (c *DeviceCatalog) PendingInterrupt() (vector uint8, ok bool) {
	if c.PIC1 == nil {
		return 0, false
	}
	return c.PIC1.Pending()
}

// deviceByTag returns the Device for a tag and whether it is
// installed. It never returns a non-nil interface wrapping a nil
// pointer (a classic Go footgun when a typed nil *T is stored in an
// interface value), which is why this is a type switch rather than a
// single map lookup.
func (c *DeviceCatalog) deviceByTag(tag DeviceTag) (Device, bool) {
	switch tag {
	case TagA0Register:
		if c.A0 == nil {
			return nil, false
		}
		return c.A0, true
	case TagPPI:
		if c.PPI == nil {
			return nil, false
		}
		return c.PPI, true
	case TagPIT:
		if c.PIT == nil {
			return nil, false
		}
		return c.PIT, true
	case TagDMAPrimary:
		if c.DMA1 == nil {
			return nil, false
		}
		return c.DMA1, true
	case TagDMASecondary:
		if c.DMA2 == nil {
			return nil, false
		}
		return c.DMA2, true
	case TagPICPrimary:
		if c.PIC1 == nil {
			return nil, false
		}
		return c.PIC1, true
	case TagPICSecondary:
		if c.PIC2 == nil {
			return nil, false
		}
		return c.PIC2, true
	case TagFDC:
		if c.FDC == nil {
			return nil, false
		}
		return c.FDC, true
	case TagHDC:
		if c.HDC == nil {
			return nil, false
		}
		return c.HDC, true
	case TagSerial:
		if c.Serial == nil {
			return nil, false
		}
		return c.Serial, true
	case TagParallel:
		if c.Parallel == nil {
			return nil, false
		}
		return c.Parallel, true
	case TagEMS:
		if c.EMS == nil {
			return nil, false
		}
		return c.EMS, true
	case TagGamePort:
		if c.GamePort == nil {
			return nil, false
		}
		return c.GamePort, true
	case TagVideo:
		if c.Video == nil {
			return nil, false
		}
		return c.Video, true
	case TagSound:
		if c.Sound == nil {
			return nil, false
		}
		return c.Sound, true
	}
	return nil, false
}
