package models

import (
	"encoding/binary"
	"io"

	"github.com/lunixbochs/struc"

	"github.com/lunixbochs/armdbg/go/models/cpu"
)

type StrucStream struct {
	Stream io.ReadWriter
	Order  binary.ByteOrder
}

// StrucAt packs and unpacks structs directly against backend memory at addr.
func StrucAt(c cpu.Cpu, order binary.ByteOrder, addr uint64) *StrucStream {
	rw := memReadWriter{&MemReader{c, addr}, &MemWriter{c, addr}}
	return &StrucStream{Stream: rw, Order: order}
}

func (s *StrucStream) Pack(i interface{}) error {
	return struc.PackWithOrder(s.Stream, i, s.Order)
}

func (s *StrucStream) Unpack(i interface{}) error {
	return struc.UnpackWithOrder(s.Stream, i, s.Order)
}
