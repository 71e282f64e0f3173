package cpu88

// testBus is a flat 1 MiB byte-array bus plus a tiny fake I/O port
// space, enough to drive CPU.Step without pulling in the bus package
// (cpu88 and bus are tested independently per the core/bus split).
type testBus struct {
	mem [1 << 20]byte
	io  [0x10000]uint8

	lastIOWritePort uint16
	lastIOWriteVal  uint8
	ioWrites        int
}

func newTestBus() *testBus { return &testBus{} }

func (b *testBus) ReadU8(addr uint32) uint8     { return b.mem[addr&0xFFFFF] }
func (b *testBus) WriteU8(addr uint32, v uint8) { b.mem[addr&0xFFFFF] = v }

func (b *testBus) ReadU16(addr uint32) uint16 {
	return uint16(b.ReadU8(addr)) | uint16(b.ReadU8(addr+1))<<8
}

func (b *testBus) WriteU16(addr uint32, v uint16) {
	b.WriteU8(addr, uint8(v))
	b.WriteU8(addr+1, uint8(v>>8))
}

func (b *testBus) IOReadU8(port uint16, cpuCycles uint32) uint8 {
	return b.io[port]
}

func (b *testBus) IOWriteU8(port uint16, data uint8, cpuCycles uint32) {
	b.io[port] = data
	b.lastIOWritePort = port
	b.lastIOWriteVal = data
	b.ioWrites++
}

func (b *testBus) Tick(sysTicks uint32) {}

// loadAt writes code starting at a linear address.
func (b *testBus) loadAt(addr uint32, code ...uint8) {
	for i, v := range code {
		b.mem[addr+uint32(i)] = v
	}
}

// newTestCPU returns an 8088 CPU with CS=DS=SS=ES=0, IP=addr, wired to
// a fresh testBus with code already loaded there. Every test in this
// package uses CS=0 so linear addresses and IP coincide.
func newTestCPU(addr uint16, code ...uint8) (*CPU, *testBus) {
	bus := newTestBus()
	bus.loadAt(uint32(addr), code...)
	c := New(Intel8088, bus)
	c.regs.CS, c.regs.DS, c.regs.SS, c.regs.ES = 0, 0, 0, 0
	c.regs.SP = 0x0100
	c.regs.IP = addr
	c.biu.queue.Flush()
	return c, bus
}
