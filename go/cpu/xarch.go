package cpu

import (
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/arch/arm/armasm"
	"golang.org/x/arch/arm64/arm64asm"

	"github.com/lunixbochs/armdbg/go/models"
)

const (
	XArchARM = iota
	XArchARM64
)

type xIns struct {
	addr     uint64
	bytes    []byte
	mnemonic string
	opStr    string
}

func (i *xIns) Addr() uint64     { return i.addr }
func (i *xIns) Bytes() []byte    { return i.bytes }
func (i *xIns) Mnemonic() string { return i.mnemonic }
func (i *xIns) OpStr() string    { return i.opStr }

// XArch is a cgo-free disassembler for A32 and A64 built on golang.org/x/arch.
// It does not decode Thumb.
type XArch struct {
	Arch int

	dc *models.Discache
}

func (x *XArch) decode(mem []byte) (string, int, error) {
	switch x.Arch {
	case XArchARM:
		inst, err := armasm.Decode(mem, armasm.ModeARM)
		if err != nil {
			return "", 0, err
		}
		return armasm.GNUSyntax(inst), inst.Len, nil
	case XArchARM64:
		inst, err := arm64asm.Decode(mem)
		if err != nil {
			return "", 0, err
		}
		return arm64asm.GNUSyntax(inst), 4, nil
	}
	return "", 0, errors.Errorf("unsupported x/arch architecture: %d", x.Arch)
}

func (x *XArch) Dis(mem []byte, addr uint64) ([]models.Ins, error) {
	if x.dc == nil {
		x.dc = models.NewDiscache()
	}
	if dis, ok := x.dc.Get(addr, mem); ok {
		return dis, nil
	}
	// instructions keep slices of mem, so they must not alias the caller's buffer
	mem = append([]byte(nil), mem...)
	var ret []models.Ins
	var err error
	for off := 0; off < len(mem); {
		var text string
		var size int
		if text, size, err = x.decode(mem[off:]); err != nil {
			break
		}
		text = strings.ToLower(text)
		mnemonic, opStr := text, ""
		if i := strings.IndexByte(text, ' '); i >= 0 {
			mnemonic, opStr = text[:i], strings.TrimSpace(text[i+1:])
		}
		ret = append(ret, &xIns{
			addr:     addr + uint64(off),
			bytes:    mem[off : off+size],
			mnemonic: mnemonic,
			opStr:    opStr,
		})
		off += size
	}
	if len(ret) == 0 && err != nil {
		return nil, errors.Wrapf(err, "decode failed at %#x", addr)
	}
	x.dc.Put(addr, mem, ret)
	return ret, nil
}
