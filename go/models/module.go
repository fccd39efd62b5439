package models

import (
	"fmt"
)

// Module is a loaded image as reported by the loader.
type Module struct {
	Name    string
	Base    uint64
	Size    uint64
	Symbols []Symbol
}

func (m *Module) String() string {
	return fmt.Sprintf("%s@%#x", m.Name, m.Base)
}

func (m *Module) Contains(addr uint64) bool {
	return addr >= m.Base && addr < m.Base+m.Size
}

// SymbolLookup finds a symbol by name. Symbol addresses are absolute.
func (m *Module) SymbolLookup(name string) (Symbol, bool) {
	for _, s := range m.Symbols {
		if s.Name == name {
			return s, true
		}
	}
	return Symbol{}, false
}

// Symbolicate renders addr as module!sym+0xoff, or module+0xoff without a symbol.
func (m *Module) Symbolicate(addr uint64) string {
	for _, s := range m.Symbols {
		if s.Contains(addr) {
			if addr == s.Start {
				return fmt.Sprintf("%s!%s", m.Name, Demangle(s.Name))
			}
			return fmt.Sprintf("%s!%s+%#x", m.Name, Demangle(s.Name), addr-s.Start)
		}
	}
	return fmt.Sprintf("%s+%#x", m.Name, addr-m.Base)
}

// Loader is the part of the module loader the debugger needs.
type Loader interface {
	Modules() []*Module
	FindModule(name string) *Module
	ModuleAt(addr uint64) *Module
}

// ModuleList is a static Loader.
type ModuleList []*Module

func (l ModuleList) Modules() []*Module {
	return l
}

func (l ModuleList) FindModule(name string) *Module {
	for _, m := range l {
		if m.Name == name {
			return m
		}
	}
	return nil
}

func (l ModuleList) ModuleAt(addr uint64) *Module {
	for _, m := range l {
		if m.Contains(addr) {
			return m
		}
	}
	return nil
}
