package models

type Symbol struct {
	Name       string
	Start, End uint64
}

func (s Symbol) Contains(addr uint64) bool {
	return s.Start <= addr && (addr < s.End || s.End == 0 && addr == s.Start)
}
