package cpu

import (
	"bytes"
	"encoding/binary"
	"testing"
)

var asdf = []byte("asdf")

func TestMemSim(t *testing.T) {
	var m MemSim
	for _, addr := range []uint64{0x3000, 0x1000, 0x2000} {
		if _, err := m.Map(addr, 0x1000, PROT_ALL); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := m.Map(0x1800, 0x10, PROT_ALL); err == nil {
		t.Fatal("overlapping map succeeded")
	}
	if err := m.Write(0x800, asdf); err == nil {
		t.Error("write succeeded below mapped memory")
	}
	if err := m.Write(0x3ffe, asdf); err == nil {
		t.Error("write succeeded across the end of mapped memory")
	}
	// spans the 0x1000/0x2000 boundary
	if err := m.Write(0x1ffe, asdf); err != nil {
		t.Fatal(err)
	}
	tmp := make([]byte, 4)
	if err := m.Read(0x1ffe, tmp); err != nil {
		t.Fatal(err)
	} else if !bytes.Equal(tmp, asdf) {
		t.Fatalf("read %q, expected %q", tmp, asdf)
	}
	if err, ok := m.Read(0x5000, tmp).(*MemError); !ok || err.Enum != MEM_READ_UNMAPPED {
		t.Fatalf("expected unmapped read error, got %v", err)
	}
}

func TestPackUint(t *testing.T) {
	for _, size := range []int{1, 2, 4, 8} {
		buf, err := PackUint(binary.LittleEndian, size, nil, 0x1122334455667788)
		if err != nil {
			t.Fatal(err)
		}
		n, err := UnpackUint(binary.LittleEndian, size, buf)
		if err != nil {
			t.Fatal(err)
		}
		mask := ^uint64(0) >> uint(64-size*8)
		if n != 0x1122334455667788&mask {
			t.Errorf("size %d: got %#x", size, n)
		}
	}
	if _, err := PackUint(binary.LittleEndian, 3, nil, 0); err == nil {
		t.Error("packed a 3-byte uint")
	}
}
