package models

import (
	"encoding/binary"
	"testing"

	"github.com/lunixbochs/armdbg/go/models/cpu"
)

var testArch = &Arch{
	Name: "test",
	Bits: 32,
	PC:   15,
	SP:   13,
	Regs: map[int]string{0: "r0", 1: "r1", 2: "r2", 10: "r10", 11: "r11", 13: "sp", 15: "pc"},
}

func newTestSim() *cpu.Sim {
	return cpu.NewSim(uint(testArch.Bits), binary.LittleEndian, testArch.PC, testArch.Enums())
}

func TestArchNaturalOrder(t *testing.T) {
	var names []string
	for _, e := range testArch.Enums() {
		names = append(names, testArch.RegName(e))
	}
	if err := strseq(names, []string{"pc", "r0", "r1", "r2", "r10", "r11", "sp"}); err != nil {
		t.Fatal(err)
	}
}

func TestRegDump(t *testing.T) {
	s := newTestSim()
	s.RegWrite(1, 0x41)
	vals, err := testArch.RegDump(s, 1, 13)
	if err != nil {
		t.Fatal(err)
	}
	if len(vals) != 2 || vals[0].Name != "r1" || vals[0].Val != 0x41 || vals[1].Name != "sp" {
		t.Fatalf("bad dump: %+v", vals)
	}
	if _, err := testArch.RegDump(s, 99); err == nil {
		t.Fatal("dump of unknown register succeeded")
	}
}
