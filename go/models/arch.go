package models

import (
	"sort"

	"github.com/lunixbochs/fvbommel-util/sortorder"
	"github.com/pkg/errors"

	"github.com/lunixbochs/armdbg/go/models/cpu"
)

type Reg struct {
	Enum int
	Name string
}

type RegVal struct {
	Reg
	Val uint64
}

type regList []Reg

func (r regList) Len() int           { return len(r) }
func (r regList) Swap(i, j int)      { r[i], r[j] = r[j], r[i] }
func (r regList) Less(i, j int) bool { return sortorder.NaturalLess(r[i].Name, r[j].Name) }

// Arch describes a register file: which backend enums exist and what they're called.
type Arch struct {
	Name string
	Bits int
	PC   int
	SP   int
	LR   int
	// Regs is every register shown by a full dump, keyed by backend enum.
	Regs map[int]string

	// sorted for RegDump
	regList regList
}

func (a *Arch) sorted() regList {
	if a.regList == nil {
		rl := make(regList, 0, len(a.Regs))
		for e, n := range a.Regs {
			rl = append(rl, Reg{e, n})
		}
		sort.Sort(rl)
		a.regList = rl
	}
	return a.regList
}

// Enums lists every register in natural name order (r2 before r10).
func (a *Arch) Enums() []int {
	rl := a.sorted()
	ret := make([]int, len(rl))
	for i, r := range rl {
		ret[i] = r.Enum
	}
	return ret
}

func (a *Arch) RegName(enum int) string {
	return a.Regs[enum]
}

// RegDump reads regs from c, or the whole register file if regs is empty.
func (a *Arch) RegDump(c cpu.Cpu, regs ...int) ([]RegVal, error) {
	if len(regs) == 0 {
		regs = a.Enums()
	}
	ret := make([]RegVal, len(regs))
	for i, enum := range regs {
		val, err := c.RegRead(enum)
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s failed", a.Regs[enum])
		}
		ret[i] = RegVal{Reg{enum, a.Regs[enum]}, val}
	}
	return ret, nil
}
