package bus

// PPI is a simplified 8255A-style programmable peripheral interface as
// wired on the IBM PC/XT: port A reads the keyboard scancode latch
// (or, when port B bit 7 is set, the DIP-switch block), port B is
// write-only control (speaker gate/data, keyboard clear, switch-block
// select), and port C is a read-only status nibble (switches feedback
// and speaker/cassette state).
type PPI struct {
	portAKeyboard uint8
	portCSwitches uint8

	portB uint8

	pit *PIT // for deriving the speaker line from channel 2's output
}

// NewPPI returns a PPI with no key latched and all switches open.
func NewPPI(pit *PIT) *PPI {
	return &PPI{pit: pit}
}

// SetKeyboardByte latches the next scancode for port A to return.
func (p *PPI) SetKeyboardByte(v uint8) {
	p.portAKeyboard = v
}

// SetSwitches sets the DIP-switch byte port C exposes a nibble of.
func (p *PPI) SetSwitches(v uint8) {
	p.portCSwitches = v
}

// SpeakerEnabled reports whether the PPI's speaker-data bit (port B
// bit 1) is set and the PIT's channel 2 output is high.
func (p *PPI) SpeakerEnabled() bool {
	return p.portB&0x02 != 0 && p.pit != nil && p.pit.Channel2Output()
}

// ReadU8 implements Device.
func (p *PPI) ReadU8(port uint16) uint8 {
	switch port & 0x03 {
	case 0: // port A
		if p.portB&0x80 != 0 {
			return p.portCSwitches
		}
		return p.portAKeyboard
	case 2: // port C
		var v uint8
		if p.portB&0x04 != 0 {
			v |= p.portCSwitches >> 4
		} else {
			v |= p.portCSwitches & 0x0F
		}
		if p.SpeakerEnabled() {
			v |= 0x20
		}
		return v
	default:
		return 0
	}
}

// WriteU8 implements Device. Only port B (the control byte) is
// writable on a PC/XT PPI; port A/C writes are ignored.
func (p *PPI) WriteU8(b *Bus, port uint16, val uint8) {
	if port&0x03 != 1 {
		return
	}
	p.portB = val
	if p.pit != nil {
		p.pit.SetGate2(val&0x01 != 0)
	}
}

// Tick implements Device; the PPI has no time-driven state of its own.
func (p *PPI) Tick(sysTicks uint32) {}
