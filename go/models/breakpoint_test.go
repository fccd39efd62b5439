package models

import (
	"testing"

	"github.com/lunixbochs/armdbg/go/models/cpu"
)

func TestBreakpointParse(t *testing.T) {
	tests := []struct {
		desc, str string
		addr, off uint64
	}{
		{"0x1000", "0x1000", 0x1000, 0},
		{"4096", "0x1000", 0x1000, 0},
		{"main", "main", 0, 0},
		{"main+0x10", "main+0x10", 0, 0x10},
		{"main+16@libfoo.so", "main+0x10@libfoo.so", 0, 0x10},
	}
	for _, test := range tests {
		b, err := NewBreakpoint(test.desc, nil, nil)
		if err != nil {
			t.Fatalf("%q: %v", test.desc, err)
		}
		if b.Addr != test.addr || b.Off != test.off || b.String() != test.str {
			t.Errorf("%q parsed as %+v (%s)", test.desc, b, b)
		}
	}
	if _, err := NewBreakpoint("", nil, nil); err == nil {
		t.Error("empty breakpoint parsed")
	}
}

func TestBreakpointApply(t *testing.T) {
	s := newTestSim()
	var hits []uint64
	cb := func(c cpu.Cpu, addr uint64, size uint32) { hits = append(hits, addr) }

	loader := ModuleList{{Name: "a.out", Base: 0x1000, Size: 0x100, Symbols: []Symbol{{"main", 0x1010, 0x1020}}}}
	b, _ := NewBreakpoint("main+4", cb, s)
	if err := b.Apply(loader); err != nil {
		t.Fatal(err)
	}
	if b.Addr != 0x1014 {
		t.Fatalf("symbol resolved to %#x", b.Addr)
	}
	tmp, _ := NewBreakpoint("0x1008", cb, s)
	tmp.Temporary = true
	if err := tmp.Apply(nil); err != nil {
		t.Fatal(err)
	}

	s.Start(0x1000, 0x1020)
	s.Start(0x1000, 0x1020)
	if len(hits) != 3 || hits[0] != 0x1008 || hits[1] != 0x1014 || hits[2] != 0x1014 {
		t.Fatalf("bad hits: %#x", hits)
	}
	if len(tmp.Addrs()) != 0 {
		t.Fatal("temporary breakpoint still hooked")
	}

	if err := b.Remove(); err != nil {
		t.Fatal(err)
	}
	s.Start(0x1000, 0x1020)
	if len(hits) != 3 {
		t.Fatal("removed breakpoint fired")
	}

	missing, _ := NewBreakpoint("nope@a.out", cb, s)
	if err := missing.Apply(loader); err == nil {
		t.Fatal("unresolved symbol applied")
	}
}
