package cpu88

import (
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var sstPath = flag.String("sstpath", "", "directory containing single-step-test JSON files")
var sstStrict = flag.Bool("sststrict", false, "run all single-step tests including known failures")

// sstSkip lists JSON files that fail due to documented design choices.
// Remove entries as features are implemented to re-enable those tests.
var sstSkip = map[string]string{}

type sstRegs struct {
	AX, BX, CX, DX uint16
	CS, SS, DS, ES uint16
	SP, BP, SI, DI uint16
	IP             uint16
	Flags          uint16
}

type sstState struct {
	Regs  sstRegs    `json:"regs"`
	RAM   [][2]uint32 `json:"ram"`
	Queue []uint8    `json:"queue"`
}

func (s *sstState) toRegisters() Registers {
	r := s.Regs
	return Registers{
		AX: r.AX, BX: r.BX, CX: r.CX, DX: r.DX,
		SP: r.SP, BP: r.BP, SI: r.SI, DI: r.DI,
		ES: r.ES, CS: r.CS, SS: r.SS, DS: r.DS,
		IP: r.IP, Flags: r.Flags,
	}
}

type sstCase struct {
	Name    string      `json:"name"`
	Bytes   []uint8     `json:"bytes"`
	Initial sstState    `json:"initial"`
	Final   sstState    `json:"final"`
	Cycles  [][]any     `json:"cycles"`
}

// runSSTCase loads the initial state described by tc, steps once, and
// compares every register, RAM cell, and the cycle count against the
// final state. A case whose cycle count isn't provided skips that
// check rather than failing on a 0 vs 0 mismatch.
func runSSTCase(t *testing.T, tc *sstCase) {
	t.Helper()

	bus := newTestBus()
	for _, entry := range tc.Initial.RAM {
		bus.WriteU8(entry[0]&0xFFFFF, uint8(entry[1]))
	}

	c := New(Intel8088, bus)
	c.SetRegisters(tc.Initial.toRegisters())
	c.biu.queue.Flush()
	for _, b := range tc.Initial.Queue {
		c.biu.queue.Push(b)
	}

	res := c.Step()
	if res.Err != nil && res.Outcome != StepNormal {
		t.Fatalf("Step error: %v (outcome %v)", res.Err, res.Outcome)
	}

	want := tc.Final.toRegisters()
	got := c.Registers()

	check := func(name string, got, want uint16) {
		if got != want {
			t.Errorf("%s = %#04x, want %#04x", name, got, want)
		}
	}
	check("AX", got.AX, want.AX)
	check("BX", got.BX, want.BX)
	check("CX", got.CX, want.CX)
	check("DX", got.DX, want.DX)
	check("SP", got.SP, want.SP)
	check("BP", got.BP, want.BP)
	check("SI", got.SI, want.SI)
	check("DI", got.DI, want.DI)
	check("ES", got.ES, want.ES)
	check("CS", got.CS, want.CS)
	check("SS", got.SS, want.SS)
	check("DS", got.DS, want.DS)
	check("IP", got.IP, want.IP)
	check("Flags", got.Flags, want.Flags)

	for _, entry := range tc.Final.RAM {
		addr := entry[0] & 0xFFFFF
		wantVal := uint8(entry[1])
		if gotVal := bus.ReadU8(addr); gotVal != wantVal {
			t.Errorf("mem[%05X] = %#02x, want %#02x", addr, gotVal, wantVal)
		}
	}

	if len(tc.Cycles) > 0 {
		if want := uint32(len(tc.Cycles)); res.Cycles != want {
			t.Errorf("cycles = %d, want %d", res.Cycles, want)
		}
	}
}

// TestSingleStepFixtures runs the 8088 single-step-test corpus (the
// format the fuzzer's output and a hardware-validated reference trace
// both use) against every JSON file found under -sstpath. With no
// -sstpath given it's a no-op: the corpus itself is not vendored into
// this repository.
func TestSingleStepFixtures(t *testing.T) {
	if *sstPath == "" {
		t.Skip("no -sstpath provided")
	}

	entries, err := os.ReadDir(*sstPath)
	if err != nil {
		t.Fatalf("reading sstpath: %v", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		fname := entry.Name()
		if reason, ok := sstSkip[fname]; ok && !*sstStrict {
			t.Run(fname, func(t *testing.T) {
				t.Skipf("known failure: %s (use -sststrict to run)", reason)
			})
			continue
		}
		t.Run(fname, func(t *testing.T) {
			data, err := os.ReadFile(filepath.Join(*sstPath, fname))
			if err != nil {
				t.Fatalf("reading %s: %v", fname, err)
			}
			var cases []sstCase
			if err := json.Unmarshal(data, &cases); err != nil {
				t.Fatalf("parsing %s: %v", fname, err)
			}
			for i := range cases {
				tc := &cases[i]
				t.Run(tc.Name, func(t *testing.T) {
					runSSTCase(t, tc)
				})
			}
		})
	}
}
