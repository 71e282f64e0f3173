// Command fuzzdrive wires a cpu88.CPU to a bus.Bus and drives it
// through randomized register/memory/instruction state, standing in
// for the GUI/timestep host this core is embedded in (out of scope
// here). It is the host spec §6 describes as mapping CLI flags onto
// CpuOption values and a MachineConfiguration; fuzzdrive's own flags
// are deliberately minimal (a seed, an iteration count, and the
// refresh period that feeds MachineConfiguration.DramRefreshPeriod).
package main

import (
	"flag"
	"log"

	cpu88 "github.com/user-none/go-chip-8088"
	"github.com/user-none/go-chip-8088/bus"
)

// opcodes is every single-byte opcode the fuzzer may draw from. Two-byte
// (0F-prefixed) and group-extension opcodes are driven separately via
// RandomGrpInstruction in a real harness; this driver only exercises
// the single-opcode path.
var opcodes = func() []uint8 {
	out := make([]uint8, 0, 256)
	for i := 0; i < 256; i++ {
		out = append(out, uint8(i))
	}
	return out
}()

func main() {
	seed := flag.Uint64("seed", 1, "fuzzer seed")
	iterations := flag.Int("iterations", 1000, "number of randomized instructions to execute")
	refreshPeriod := flag.Uint("refresh-period", 72, "DRAM refresh scheduler period, in system ticks (0 disables)")
	flag.Parse()

	cfg := cpu88.MachineConfiguration{
		Variant:           cpu88.Intel8088,
		InstalledDevices:  []string{"pic1", "pit", "ppi", "dma1"},
		DramRefreshPeriod: uint32(*refreshPeriod),
	}

	b := bus.New()
	b.Devices.PIC1 = bus.NewPIC(0x20)
	b.Devices.PIT = bus.NewPIT()
	b.Devices.PPI = bus.NewPPI(b.Devices.PIT)
	b.Devices.DMA1 = bus.NewDMA()
	b.Devices.Wire()
	b.MapPort(0x20, bus.TagPICPrimary)
	b.MapPort(0x21, bus.TagPICPrimary)
	b.MapPort(0x40, bus.TagPIT)
	b.MapPort(0x41, bus.TagPIT)
	b.MapPort(0x42, bus.TagPIT)
	b.MapPort(0x43, bus.TagPIT)
	b.MapPort(0x61, bus.TagPPI)
	b.ConfigureRefresh(bus.RefreshConfig{
		Enabled:     cfg.DramRefreshPeriod > 0,
		PeriodTicks: cfg.DramRefreshPeriod,
		Retrigger:   true,
	})

	c := cpu88.NewMachine(b, cfg)
	c.SetFuzzer(cpu88.NewFuzzer(*seed))
	d := cpu88.NewDispatch(c)

	var steps, faults int
	for i := 0; i < *iterations; i++ {
		d.RandomizeRegs()
		d.RandomizeMem(0x10000)
		d.RandomInstFromOpcodes(opcodes)

		res, _ := d.Step(false)
		steps++
		if res.Err != nil {
			faults++
			log.Printf("iteration %d: step fault: %v", i, res.Err)
		}
	}

	log.Printf("fuzzdrive: %d steps, %d faults, seed=%d, variant=%s, devices=%v", steps, faults, *seed, cfg.Variant, cfg.InstalledDevices)
}
