package cpu

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// Sim is a Cpu with working memory, registers and hooks but no instruction semantics.
// Start walks the requested range one instruction slot at a time and fires code hooks,
// which is enough to drive breakpoints, tracing and the debugger in tests.
type Sim struct {
	*Hooks
	*Regs

	mem   MemSim
	order binary.ByteOrder
	pc    int

	running bool
	stop    bool
}

func NewSim(bits uint, order binary.ByteOrder, pc int, enums []int) *Sim {
	s := &Sim{
		Regs:  NewRegs(bits, append([]int{pc}, enums...)),
		order: order,
		pc:    pc,
	}
	s.Hooks = NewHooks(s)
	return s
}

func (s *Sim) ByteOrder() binary.ByteOrder {
	return s.order
}

func (s *Sim) Mappings() Pages {
	return s.mem.Mem
}

func (s *Sim) MemMap(addr, size uint64, prot int) error {
	_, err := s.mem.Map(addr, size, prot)
	return err
}

func (s *Sim) MemReadInto(p []byte, addr uint64) error {
	if err := s.mem.Read(addr, p); err != nil {
		return err
	}
	s.OnMem(MEM_READ, addr, len(p), 0)
	return nil
}

func (s *Sim) MemRead(addr, size uint64) ([]byte, error) {
	p := make([]byte, size)
	if err := s.MemReadInto(p, addr); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Sim) MemWrite(addr uint64, p []byte) error {
	if err := s.mem.Write(addr, p); err != nil {
		return err
	}
	s.OnMem(MEM_WRITE, addr, len(p), 0)
	return nil
}

// Start fires code hooks for every slot in begin:until. An odd begin selects 2-byte slots.
func (s *Sim) Start(begin, until uint64) error {
	step := uint64(4)
	if begin&1 == 1 {
		step = 2
		begin &^= 1
	}
	wasRunning, wasStopped := s.running, s.stop
	s.running, s.stop = true, false
	defer func() { s.running, s.stop = wasRunning, wasStopped }()

	addr := begin
	for addr < until && !s.stop {
		if err := s.RegWrite(s.pc, addr); err != nil {
			return err
		}
		s.OnCode(addr, uint32(step))
		if s.stop {
			break
		}
		addr += step
	}
	return errors.Wrap(s.RegWrite(s.pc, addr), "sim.Start() failed")
}

func (s *Sim) Stop() error {
	if s.running {
		s.stop = true
	}
	return nil
}

func (s *Sim) Close() error {
	return nil
}
