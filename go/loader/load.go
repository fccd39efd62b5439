package loader

import (
	"bytes"
	"io/ioutil"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/lunixbochs/armdbg/go/models"
	"github.com/lunixbochs/armdbg/go/models/cpu"
)

// LoadFile opens an ELF file, or falls back to a raw image for arch mapped at base.
func LoadFile(path, arch string, base uint64) (Image, error) {
	p, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read image")
	}
	return Load(p, arch, base)
}

func Load(p []byte, arch string, base uint64) (Image, error) {
	r := bytes.NewReader(p)
	if MatchElf(r) {
		img, err := NewElfImage(r)
		if err != nil {
			return nil, err
		}
		if arch != "" && img.Arch() != arch {
			return nil, errors.Errorf("image is %s, expected %s", img.Arch(), arch)
		}
		return img, nil
	}
	if len(p) == 0 {
		return nil, errors.New("empty image")
	}
	bits, ok := archBits[arch]
	if !ok {
		return nil, errors.Errorf("raw image needs an arch, one of %v", []string{"arm", "arm64"})
	}
	return NewRawImage(p, arch, bits, base), nil
}

// Map maps and writes every segment of img into c, and returns the module spanning them.
func Map(c cpu.Cpu, img Image, path string) (*models.Module, error) {
	segs, err := img.Segments()
	if err != nil {
		return nil, err
	}
	if len(segs) == 0 {
		return nil, errors.New("image has no loadable segments")
	}
	var low, high uint64 = ^uint64(0), 0
	// segments may share a page, which is then mapped with the first segment's protection
	mapped := make(map[uint64]bool)
	for _, seg := range segs {
		start := seg.Addr &^ 0xfff
		end := pageAlign(seg.Addr + seg.Size)
		for page := start; page < end; {
			if mapped[page] {
				page += 0x1000
				continue
			}
			run := page
			for ; run < end && !mapped[run]; run += 0x1000 {
				mapped[run] = true
			}
			if err := c.MemMap(page, run-page, seg.Prot); err != nil {
				return nil, errors.Wrapf(err, "MemMap(%#x, %#x) failed", page, run-page)
			}
			page = run
		}
		if err := c.MemWrite(seg.Addr, seg.Data); err != nil {
			return nil, errors.Wrapf(err, "MemWrite(%#x) failed", seg.Addr)
		}
		if seg.Addr < low {
			low = seg.Addr
		}
		if seg.Addr+seg.Size > high {
			high = seg.Addr + seg.Size
		}
	}
	syms, err := img.Symbols()
	if err != nil {
		return nil, err
	}
	return &models.Module{
		Name:    filepath.Base(path),
		Base:    low,
		Size:    high - low,
		Symbols: syms,
	}, nil
}
