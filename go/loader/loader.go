package loader

import (
	"encoding/binary"
	"sort"

	"github.com/lunixbochs/armdbg/go/models"
)

// Segment is one chunk of an image to be mapped at Addr. Size may exceed len(Data) (zero fill).
type Segment struct {
	Addr uint64
	Size uint64
	Data []byte
	Prot int
}

// Image is an executable file, parsed enough to map it and resolve its symbols.
type Image interface {
	Arch() string
	Bits() int
	ByteOrder() binary.ByteOrder
	Entry() uint64
	Segments() ([]Segment, error)
	Symbols() ([]models.Symbol, error)
}

type imageHeader struct {
	arch      string
	bits      int
	byteOrder binary.ByteOrder
	entry     uint64
	symCache  []models.Symbol
	getSyms   func() ([]models.Symbol, error)
}

func (l *imageHeader) Arch() string {
	return l.arch
}

func (l *imageHeader) Bits() int {
	return l.bits
}

func (l *imageHeader) ByteOrder() binary.ByteOrder {
	if l.byteOrder == nil {
		return binary.LittleEndian
	}
	return l.byteOrder
}

func (l *imageHeader) Entry() uint64 {
	return l.entry
}

func (l *imageHeader) Symbols() ([]models.Symbol, error) {
	if l.symCache != nil || l.getSyms == nil {
		return l.symCache, nil
	}
	syms, err := l.getSyms()
	if err != nil {
		return nil, err
	}
	sort.Slice(syms, func(i, j int) bool { return syms[i].Start < syms[j].Start })
	l.symCache = syms
	return syms, nil
}
