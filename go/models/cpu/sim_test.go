package cpu

import (
	"encoding/binary"
	"fmt"
	"testing"
)

const simPC = 1

func TestSimMemory(t *testing.T) {
	s := NewSim(64, binary.LittleEndian, simPC, nil)
	if err := s.MemMap(0x1000, 0x1000, PROT_ALL); err != nil {
		t.Fatal(err)
	}
	if err := WriteUint(s, s.ByteOrder(), 0x1010, 8, 0xdeadbeefcafe); err != nil {
		t.Fatal(err)
	}
	if n, err := ReadUint(s, s.ByteOrder(), 0x1010, 8); err != nil || n != 0xdeadbeefcafe {
		t.Fatalf("ReadUint() = %#x, %v", n, err)
	}
	if _, err := s.MemRead(0x3000, 4); err == nil {
		t.Fatal("read of unmapped memory succeeded")
	}
}

func TestSimStart(t *testing.T) {
	s := NewSim(32, binary.LittleEndian, simPC, nil)
	var seen []string
	s.HookAdd(HOOK_CODE, func(c Cpu, addr uint64, size uint32) {
		seen = append(seen, fmt.Sprintf("%#x/%d", addr, size))
		if addr == 0x1008 {
			c.Stop()
		}
	}, 1, 0)
	if err := s.Start(0x1000, 0x1010); err != nil {
		t.Fatal(err)
	}
	if err := strseq(seen, []string{"0x1000/4", "0x1004/4", "0x1008/4"}); err != nil {
		t.Fatal(err)
	}
	if pc, _ := s.RegRead(simPC); pc != 0x1008 {
		t.Fatalf("pc = %#x after stop, expected 0x1008", pc)
	}

	// odd start address walks compact 2-byte slots and runs to the end
	seen = nil
	if err := s.Start(0x2001, 0x2006); err != nil {
		t.Fatal(err)
	}
	if err := strseq(seen, []string{"0x2000/2", "0x2002/2", "0x2004/2"}); err != nil {
		t.Fatal(err)
	}
	if pc, _ := s.RegRead(simPC); pc != 0x2006 {
		t.Fatalf("pc = %#x, expected 0x2006", pc)
	}
}
