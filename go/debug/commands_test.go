package debug

import (
	"strings"
	"testing"

	"github.com/lunixbochs/armdbg/go/models/cpu"
)

func TestParseNum(t *testing.T) {
	tests := map[string]uint64{
		"10":    10,
		"010":   10,
		"0x10":  16,
		"0X1f":  31,
		"-1":    0xffffffffffffffff,
		"-0x10": 0,
	}
	for in, expected := range tests {
		n, err := ParseNum(in)
		if in == "-0x10" {
			if err == nil {
				t.Errorf("%q parsed", in)
			}
			continue
		}
		if err != nil || n != expected {
			t.Errorf("ParseNum(%q) = %#x, %v", in, n, err)
		}
	}
	for _, in := range []string{"", "0x", "abc", "0xzz"} {
		if _, err := ParseNum(in); err == nil {
			t.Errorf("%q parsed", in)
		}
	}
}

func TestDisAddrSuffix(t *testing.T) {
	a, err := parseHexAddr("0x1234L")
	if err != nil {
		t.Fatal(err)
	}
	b, err := parseHexAddr("0x1234")
	if err != nil {
		t.Fatal(err)
	}
	if a != b || a != 0x1234 {
		t.Fatalf("%#x != %#x", a, b)
	}
	if _, err := parseHexAddr("1234"); err == nil {
		t.Fatal("address without 0x parsed")
	}
}

func TestDisassembleBlock(t *testing.T) {
	e := newTestEnv(t)
	e.run(t, "d0x1001")
	if !e.v.lastAlt {
		t.Fatal("odd address didn't select the alternate encoding")
	}
	lines := strings.Split(strings.TrimSpace(e.out.String()), "\n")
	// 0x30 bytes of 2-byte instructions from 0x1000
	if len(lines) != 0x18 || !strings.HasPrefix(lines[0], "0x1000: ") {
		t.Fatalf("bad block:\n%s", e.out.String())
	}

	e.out.Reset()
	e.run(t, "d0x1004L")
	if e.v.lastAlt {
		t.Fatal("even address selected the alternate encoding")
	}
	lines = strings.Split(strings.TrimSpace(e.out.String()), "\n")
	if len(lines) != 0x0c || lines[0] != "0x1004: 01000000 op01" {
		t.Fatalf("bad block:\n%s", e.out.String())
	}
}

func TestDisassembleTruncates(t *testing.T) {
	e := newTestEnv(t)
	e.sim.MemWrite(0x1008, []byte{0xff})
	next, err := e.d.Disassemble(0x1000, 0x10, false)
	if err != nil {
		t.Fatal(err)
	}
	if next != 0x1008 {
		t.Fatalf("next = %#x, expected 0x1008", next)
	}
	next, err = e.d.Disassemble(0x1008, 4, false)
	if err != nil || next != 0x1008 {
		t.Fatalf("undecodable window: next = %#x, err = %v", next, err)
	}
	if !strings.Contains(e.errs.String(), "no instructions decoded at 0x1008") {
		t.Fatalf("errors: %q", e.errs.String())
	}
	if _, err := e.d.Disassemble(0x9000, 4, false); err == nil {
		t.Fatal("unmapped disassembly succeeded")
	}
}

func TestRegisterWrite(t *testing.T) {
	e := newTestEnv(t)
	e.run(t, "wr1 0x10", "wsp -1", "wr2 12")
	for reg, expected := range map[int]uint64{1: 0x10, regSP: 0xffffffff, 2: 12} {
		if val, _ := e.sim.RegRead(reg); val != expected {
			t.Errorf("reg %d = %#x, expected %#x", reg, val, expected)
		}
	}
	if !strings.Contains(e.out.String(), "r1=0x00000010") {
		t.Fatalf("written register not shown: %q", e.out.String())
	}
	e.errs.Reset()
	e.run(t, "wr1 zz", "wr9 1", "wr1")
	errs := e.errs.String()
	if !strings.Contains(errs, `bad number: "zz"`) || !strings.Contains(errs, "unknown command: wr9 1") || !strings.Contains(errs, "usage") {
		t.Fatalf("errors: %q", errs)
	}
}

func TestRegCommand(t *testing.T) {
	e := newTestEnv(t)
	e.run(t, "reg r3=0x42 lr", "reg r3", "reg nope")
	if val, _ := e.sim.RegRead(3); val != 0x42 {
		t.Fatalf("r3 = %#x", val)
	}
	if !strings.Contains(e.out.String(), "lr 0x0\n") || !strings.Contains(e.out.String(), "r3 0x42\n") {
		t.Fatalf("output: %q", e.out.String())
	}
	if !strings.Contains(e.errs.String(), "reg nope not found") {
		t.Fatalf("errors: %q", e.errs.String())
	}
}

func TestMemoryWriteCommands(t *testing.T) {
	e := newTestEnv(t)
	e.run(t, "wb0x4000 0x41", "ws0x4002 0x4243", "wi0x4004 -2")
	mem, _ := e.sim.MemRead(0x4000, 8)
	expected := []byte{0x41, 0, 0x43, 0x42, 0xfe, 0xff, 0xff, 0xff}
	if string(mem) != string(expected) {
		t.Fatalf("memory = %x", mem)
	}
	e.run(t, "wl0x4000 1")
	if !strings.Contains(e.errs.String(), "8 byte writes are not supported") {
		t.Fatalf("narrow variant accepted wl: %q", e.errs.String())
	}
	e.v.wide = true
	e.run(t, "wl0x4008 0x1122334455667788", "wb0x9000 1")
	if n, _ := cpu.ReadUint(e.sim, e.d.Variant.ByteOrder(), 0x4008, 8); n != 0x1122334455667788 {
		t.Fatalf("wl wrote %#x", n)
	}
	if !strings.Contains(e.errs.String(), "write at 0x9000 failed") {
		t.Fatalf("unmapped write: %q", e.errs.String())
	}
}

func TestDumpSizeLimit(t *testing.T) {
	e := newTestEnv(t)
	e.d.Config.MaxDumpSize = 0x100
	e.run(t, "m0x1000 0x101", "ms0x1000 0xffffffffffff")
	if strings.Count(e.errs.String(), "byte limit") != 2 {
		t.Fatalf("errors: %q", e.errs.String())
	}
	if _, err := e.d.Disassemble(0x1000, 0x104, false); err == nil {
		t.Fatal("disassembled past the limit")
	}
	e.errs.Reset()
	e.run(t, "m0x1000 0x100")
	if e.errs.Len() != 0 || !strings.Contains(e.out.String(), "0x000010f0: ") {
		t.Fatalf("output: %q errors: %q", e.out.String(), e.errs.String())
	}
	mem := e.d.Memory()
	if _, err := mem.Read(&MemoryView{Addr: 0x1000, Size: 0x101}); err == nil {
		t.Fatal("Memory.Read ignored the limit")
	}
}
