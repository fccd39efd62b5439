package models

import (
	"github.com/lunixbochs/armdbg/go/models/cpu"
)

// MemReader streams backend memory starting at Addr.
type MemReader struct {
	Cpu  cpu.Cpu
	Addr uint64
}

func (m *MemReader) Read(p []byte) (int, error) {
	if err := m.Cpu.MemReadInto(p, m.Addr); err != nil {
		return 0, err
	}
	m.Addr += uint64(len(p))
	return len(p), nil
}

// MemWriter streams writes into backend memory starting at Addr.
type MemWriter struct {
	Cpu  cpu.Cpu
	Addr uint64
}

func (m *MemWriter) Write(p []byte) (int, error) {
	if err := m.Cpu.MemWrite(m.Addr, p); err != nil {
		return 0, err
	}
	m.Addr += uint64(len(p))
	return len(p), nil
}

type memReadWriter struct {
	*MemReader
	*MemWriter
}
