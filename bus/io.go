package bus

// IOReadU8 reads a byte from an I/O port. cpuCycles is the elapsed
// cycle count for the access, converted to system ticks via CPUFactor
// so a device can tick itself into sync before responding.
//
// Dispatch and the stats-ledger shape (acknowledged bool, last value)
// are ported from the original MartyPC bus::io::io_read_u8.
func (b *Bus) IOReadU8(port uint16, cpuCycles uint32) uint8 {
	sysTicks := b.CPUFactor.Ticks(cpuCycles)

	var val uint8
	var ok bool
	if tag, present := b.ioMap[port]; present {
		if dev, have := b.Devices.deviceByTag(tag); have {
			dev.Tick(sysTicks)
			val = dev.ReadU8(port)
			ok = true
		}
	}
	if !ok {
		val = NoIOByte
	}

	s := b.statsFor(port)
	s.LastRead = val
	s.Reads++
	s.ReadsDirty = true
	s.Acknowledged = ok

	return val
}

// IOWriteU8 writes a byte to an I/O port. The PPI, PIT, DMA and PIC,
// which can themselves reenter the bus, are moved out of the Bus for
// the duration of the call and moved back, so none of them observes a
// re-entrant access to itself (move-based exclusivity in place of
// locks, spec §4.3/§9). The FDC and HDC are written in place and are
// not moved out.
func (b *Bus) IOWriteU8(port uint16, data uint8, cpuCycles uint32) {
	sysTicks := b.CPUFactor.Ticks(cpuCycles)

	if b.terminalEnabled && port == b.terminalPort {
		if data != 0x1B {
			b.TerminalSink(data)
		}
	}

	resolved := false
	if tag, present := b.ioMap[port]; present {
		resolved = b.dispatchWrite(tag, port, data, sysTicks)
	}

	s := b.statsFor(port)
	s.Writes++
	s.WritesDirty = true
	s.Acknowledged = resolved

	if b.analyzer != nil {
		b.analyzer.ObserveIOWrite(port, data, resolved)
	}
}

// dispatchWrite performs the move-out/call/move-in dance for the
// device identified by tag. Devices that never reenter the bus (the
// stand-ins) are written in place.
func (b *Bus) dispatchWrite(tag DeviceTag, port uint16, data uint8, sysTicks uint32) bool {
	switch tag {
	case TagA0Register:
		if b.Devices.A0 == nil {
			return false
		}
		b.Devices.A0.WriteU8(b, port, data)
		return true
	case TagPPI:
		dev := b.Devices.PPI
		if dev == nil {
			return false
		}
		b.Devices.PPI = nil
		dev.WriteU8(b, port, data)
		b.Devices.PPI = dev
		return true
	case TagPIT:
		dev := b.Devices.PIT
		if dev == nil {
			return false
		}
		b.Devices.PIT = nil
		dev.Tick(sysTicks)
		dev.WriteU8(b, port, data)
		b.Devices.PIT = dev
		return true
	case TagDMAPrimary:
		dev := b.Devices.DMA1
		if dev == nil {
			return false
		}
		b.Devices.DMA1 = nil
		dev.WriteU8(b, port, data)
		b.Devices.DMA1 = dev
		return true
	case TagDMASecondary:
		dev := b.Devices.DMA2
		if dev == nil {
			return false
		}
		b.Devices.DMA2 = nil
		dev.WriteU8(b, port, data)
		b.Devices.DMA2 = dev
		return true
	case TagPICPrimary:
		dev := b.Devices.PIC1
		if dev == nil {
			return false
		}
		b.Devices.PIC1 = nil
		dev.WriteU8(b, port, data)
		b.Devices.PIC1 = dev
		return true
	case TagPICSecondary:
		dev := b.Devices.PIC2
		if dev == nil {
			return false
		}
		b.Devices.PIC2 = nil
		dev.WriteU8(b, port, data)
		b.Devices.PIC2 = dev
		return true
	default:
		dev, have := b.Devices.deviceByTag(tag)
		if !have {
			return false
		}
		dev.WriteU8(b, port, data)
		return true
	}
}

func (b *Bus) statsFor(port uint16) *PortStats {
	s, ok := b.ioStats[port]
	if !ok {
		s = &PortStats{}
		b.ioStats[port] = s
	}
	return s
}
