package loader

import (
	"github.com/lunixbochs/armdbg/go/models/cpu"
)

var archBits = map[string]int{"arm": 32, "arm64": 64}

// RawImage is a flat code blob with no headers. It's mapped RWX at its base and entered at the base.
type RawImage struct {
	imageHeader
	base uint64
	data []byte
}

func NewRawImage(data []byte, arch string, bits int, base uint64) *RawImage {
	return &RawImage{
		imageHeader: imageHeader{arch: arch, bits: bits, entry: base},
		base:        base,
		data:        data,
	}
}

func (r *RawImage) Segments() ([]Segment, error) {
	return []Segment{{Addr: r.base, Size: uint64(len(r.data)), Data: r.data, Prot: cpu.PROT_ALL}}, nil
}
