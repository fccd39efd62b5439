package cpu

import (
	"github.com/pkg/errors"
)

// Regs is the register file behind Sim. It is keyed by the same unicorn
// register enums the debugger resolves names to, so commands and tests see
// one numbering whether they run on the emulator or on Sim.
// Writes are truncated to the register width (32 or 64 bits).
type Regs struct {
	mask  uint64
	enums []int
	vals  map[int]uint64
}

// RegSnapshot is the context Regs saves: every register value in enum order.
type RegSnapshot struct {
	Enums []int
	Vals  []uint64
}

// Get returns the saved value of enum.
func (s *RegSnapshot) Get(enum int) (uint64, bool) {
	for i, e := range s.Enums {
		if e == enum {
			return s.Vals[i], true
		}
	}
	return 0, false
}

// Diff lists the enums whose values differ between s and other.
func (s *RegSnapshot) Diff(other *RegSnapshot) []int {
	var changed []int
	for i, e := range s.Enums {
		if v, ok := other.Get(e); !ok || v != s.Vals[i] {
			changed = append(changed, e)
		}
	}
	return changed
}

func NewRegs(bits uint, enums []int) *Regs {
	r := &Regs{
		mask: ^uint64(0) >> (64 - bits),
		vals: make(map[int]uint64, len(enums)),
	}
	for _, e := range enums {
		if _, dup := r.vals[e]; dup {
			continue
		}
		r.enums = append(r.enums, e)
		r.vals[e] = 0
	}
	return r
}

func (r *Regs) RegRead(enum int) (uint64, error) {
	val, ok := r.vals[enum]
	if !ok {
		return 0, errors.Errorf("invalid register: %d", enum)
	}
	return val, nil
}

func (r *Regs) RegWrite(enum int, val uint64) error {
	if _, ok := r.vals[enum]; !ok {
		return errors.Errorf("invalid register: %d", enum)
	}
	r.vals[enum] = val & r.mask
	return nil
}

// ContextSave returns a *RegSnapshot. Passing a previous snapshot as reuse
// overwrites it in place.
func (r *Regs) ContextSave(reuse interface{}) (interface{}, error) {
	snap := &RegSnapshot{}
	if reuse != nil {
		var ok bool
		if snap, ok = reuse.(*RegSnapshot); !ok {
			return nil, errors.Errorf("incorrect context type %T", reuse)
		}
	}
	snap.Enums = append(snap.Enums[:0], r.enums...)
	snap.Vals = snap.Vals[:0]
	for _, e := range r.enums {
		snap.Vals = append(snap.Vals, r.vals[e])
	}
	return snap, nil
}

// ContextRestore refuses snapshots holding registers this file does not have.
func (r *Regs) ContextRestore(ctx interface{}) error {
	snap, ok := ctx.(*RegSnapshot)
	if !ok {
		return errors.Errorf("incorrect context type %T", ctx)
	}
	if len(snap.Enums) != len(snap.Vals) {
		return errors.New("corrupt register snapshot")
	}
	for _, e := range snap.Enums {
		if _, ok := r.vals[e]; !ok {
			return errors.Errorf("snapshot has unknown register: %d", e)
		}
	}
	for i, e := range snap.Enums {
		r.vals[e] = snap.Vals[i]
	}
	return nil
}
