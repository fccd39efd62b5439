package cpu

import (
	"testing"
)

func TestXArchArm64(t *testing.T) {
	// nop; ret; then two stray bytes
	mem := []byte{0x1f, 0x20, 0x03, 0xd5, 0xc0, 0x03, 0x5f, 0xd6, 0xff, 0xff}
	x := &XArch{Arch: XArchARM64}
	dis, err := x.Dis(mem, 0x4000)
	if err != nil {
		t.Fatal(err)
	}
	if len(dis) != 2 {
		t.Fatalf("decoded %d instructions, expected 2", len(dis))
	}
	if dis[0].Mnemonic() != "nop" || dis[1].Mnemonic() != "ret" {
		t.Fatalf("bad mnemonics: %s, %s", dis[0].Mnemonic(), dis[1].Mnemonic())
	}
	if dis[1].Addr() != 0x4004 || len(dis[1].Bytes()) != 4 {
		t.Fatalf("bad second instruction: %#x %x", dis[1].Addr(), dis[1].Bytes())
	}
	// cached result is identical
	again, _ := x.Dis(mem, 0x4000)
	if len(again) != 2 || again[0] != dis[0] {
		t.Fatal("cache miss on identical input")
	}
}

func TestXArchArm(t *testing.T) {
	// mov r0, #1 ; bx lr
	mem := []byte{0x01, 0x00, 0xa0, 0xe3, 0x1e, 0xff, 0x2f, 0xe1}
	x := &XArch{Arch: XArchARM}
	dis, err := x.Dis(mem, 0x1000)
	if err != nil {
		t.Fatal(err)
	}
	if len(dis) != 2 {
		t.Fatalf("decoded %d instructions, expected 2", len(dis))
	}
	if dis[0].Mnemonic() != "mov" || dis[1].Mnemonic() != "bx" {
		t.Fatalf("bad mnemonics: %s, %s", dis[0].Mnemonic(), dis[1].Mnemonic())
	}
}

func TestXArchShort(t *testing.T) {
	x := &XArch{Arch: XArchARM64}
	if _, err := x.Dis([]byte{0x1f, 0x20}, 0); err == nil {
		t.Fatal("decoded a partial instruction")
	}
}
