package models

import (
	"fmt"
	"strings"

	"github.com/mgutz/ansi"

	"github.com/lunixbochs/armdbg/go/models/cpu"
)

var chSame = ansi.ColorCode("default:default")
var chNew = ansi.ColorCode("default+bu:default")

func colorPad(s, color string, pad int) string {
	length := len(s)
	s = color + s + ansi.Reset
	if length < pad {
		s = strings.Repeat(" ", pad-length) + s
	}
	return s
}

type ChangeMask struct {
	New     string
	Changed bool
}

type Change struct {
	Old, New uint64
	Enum     int
	Name     string
}

func (c *Change) Changed() bool {
	return c.Old != c.New
}

// Mask splits the hex rendering of New into runs that differ from Old.
func (c *Change) Mask(digits int) []ChangeMask {
	hexFmt := fmt.Sprintf("%%0%dx", digits)
	s1, s2 := fmt.Sprintf(hexFmt, c.New), fmt.Sprintf(hexFmt, c.Old)
	pos := 0
	matching := true
	var masks []ChangeMask
	for i := range s1 {
		if (s1[i] == s2[i]) != matching {
			if i > pos {
				masks = append(masks, ChangeMask{New: s1[pos:i], Changed: !matching})
				pos = i
			}
			matching = !matching
		}
	}
	if pos < len(s1) {
		masks = append(masks, ChangeMask{New: s1[pos:], Changed: !matching})
	}
	return masks
}

func (c *Change) String(digits int, color bool) string {
	hexFmt := fmt.Sprintf("%%0%dx", digits)
	lineStart := fmt.Sprintf("%4s=0x", c.Name)
	if !c.Changed() {
		return fmt.Sprintf(" "+lineStart+hexFmt, c.New)
	}
	if !color {
		return fmt.Sprintf("+"+lineStart+hexFmt, c.New)
	}
	out := []string{fmt.Sprintf(" %s=0x", colorPad(c.Name, chNew, 4))}
	for _, mask := range c.Mask(digits) {
		col := chSame
		if mask.Changed {
			col = chNew
		}
		out = append(out, col+mask.New)
	}
	out = append(out, ansi.Reset)
	return strings.Join(out, "")
}

type Changes struct {
	Digits  int
	Changes []*Change
}

// String lays registers out column-major, four to a row.
func (cs *Changes) String(color bool) string {
	var out []string
	printRow := func(row []*Change) {
		for _, c := range row {
			out = append(out, c.String(cs.Digits, color), " ")
		}
		if len(row) > 0 {
			out = append(out, "\n")
		}
	}
	changes := cs.Changes
	cols := 4
	rows := len(changes) / cols
	row := make([]*Change, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			row[j] = changes[j*rows+i]
		}
		printRow(row)
	}
	printRow(changes[rows*cols:])
	return strings.Join(out, "")
}

func (cs *Changes) Count() int {
	ret := 0
	for _, c := range cs.Changes {
		if c.Changed() {
			ret++
		}
	}
	return ret
}

func (cs *Changes) Find(enum int) *Change {
	for _, c := range cs.Changes {
		if c.Enum == enum {
			return c
		}
	}
	return nil
}

// StatusDiff tracks register values between breaks so changes can be highlighted.
type StatusDiff struct {
	Arch    *Arch
	oldRegs map[int]uint64
}

// Changes reads regs (all registers when empty) and diffs them against the last call.
func (s *StatusDiff) Changes(c cpu.Cpu, regs ...int) (*Changes, error) {
	vals, err := s.Arch.RegDump(c, regs...)
	if err != nil {
		return nil, err
	}
	cs := make([]*Change, 0, len(vals))
	for _, reg := range vals {
		old := reg.Val
		if prev, ok := s.oldRegs[reg.Enum]; ok {
			old = prev
		}
		cs = append(cs, &Change{Old: old, New: reg.Val, Enum: reg.Enum, Name: reg.Name})
	}
	if s.oldRegs == nil {
		s.oldRegs = make(map[int]uint64, len(vals))
	}
	for _, r := range vals {
		s.oldRegs[r.Enum] = r.Val
	}
	return &Changes{Digits: s.Arch.Bits / 4, Changes: cs}, nil
}
