package cpu

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"
)

type MemError struct {
	Addr uint64
	Size int
	Enum int
}

func (m *MemError) Error() string {
	reason := "memory error"
	switch m.Enum {
	case MEM_READ_UNMAPPED:
		reason = "unmapped read"
	case MEM_WRITE_UNMAPPED:
		reason = "unmapped write"
	}
	return fmt.Sprintf("%s at %#x(%d)", reason, m.Addr, m.Size)
}

type Page struct {
	Addr uint64
	Size uint64
	Prot int
	Data []byte
}

func (p *Page) Contains(addr uint64) bool {
	return addr >= p.Addr && addr < p.Addr+p.Size
}

func (p *Page) Overlaps(addr, size uint64) bool {
	return addr < p.Addr+p.Size && p.Addr < addr+size
}

type Pages []*Page

func (p Pages) Len() int           { return len(p) }
func (p Pages) Swap(i, j int)      { p[i], p[j] = p[j], p[i] }
func (p Pages) Less(i, j int) bool { return p[i].Addr < p[j].Addr }

// index of the page containing addr, or -1
func (p Pages) find(addr uint64) int {
	i := sort.Search(len(p), func(i int) bool { return p[i].Addr+p[i].Size > addr })
	if i < len(p) && p[i].Contains(addr) {
		return i
	}
	return -1
}

// MemSim is a sorted list of mapped pages. Adjacent pages are treated as contiguous.
type MemSim struct {
	Mem Pages
}

func (m *MemSim) Map(addr, size uint64, prot int) (*Page, error) {
	if size == 0 {
		return nil, errors.New("zero-sized mapping")
	}
	for _, p := range m.Mem {
		if p.Overlaps(addr, size) {
			return nil, errors.Errorf("mapping %#x-%#x overlaps %#x-%#x", addr, addr+size, p.Addr, p.Addr+p.Size)
		}
	}
	page := &Page{Addr: addr, Size: size, Prot: prot, Data: make([]byte, size)}
	m.Mem = append(m.Mem, page)
	sort.Sort(m.Mem)
	return page, nil
}

// RangeValid checks whether addr:addr+size is entirely mapped.
func (m *MemSim) RangeValid(addr, size uint64) bool {
	i := m.Mem.find(addr)
	if i < 0 {
		return false
	}
	end := addr + size
	for _, p := range m.Mem[i:] {
		if !p.Contains(addr) {
			break
		}
		addr = p.Addr + p.Size
		if addr >= end {
			return true
		}
	}
	return addr >= end
}

func (m *MemSim) Read(addr uint64, p []byte) error {
	if !m.RangeValid(addr, uint64(len(p))) {
		return &MemError{Addr: addr, Size: len(p), Enum: MEM_READ_UNMAPPED}
	}
	for _, pg := range m.Mem[m.Mem.find(addr):] {
		if len(p) == 0 {
			break
		}
		n := copy(p, pg.Data[addr-pg.Addr:])
		addr, p = addr+uint64(n), p[n:]
	}
	return nil
}

func (m *MemSim) Write(addr uint64, p []byte) error {
	if !m.RangeValid(addr, uint64(len(p))) {
		return &MemError{Addr: addr, Size: len(p), Enum: MEM_WRITE_UNMAPPED}
	}
	for _, pg := range m.Mem[m.Mem.find(addr):] {
		if len(p) == 0 {
			break
		}
		n := copy(pg.Data[addr-pg.Addr:], p)
		addr, p = addr+uint64(n), p[n:]
	}
	return nil
}
