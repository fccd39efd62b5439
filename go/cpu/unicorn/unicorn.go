package unicorn

import (
	"github.com/pkg/errors"
	uc "github.com/unicorn-engine/unicorn/bindings/go/unicorn"

	"github.com/lunixbochs/armdbg/go/models/cpu"
)

type Builder struct {
	Arch, Mode int
}

func (b *Builder) New() (*UnicornCpu, error) {
	u, err := uc.NewUnicorn(b.Arch, b.Mode)
	if err != nil {
		return nil, errors.Wrap(err, "NewUnicorn() failed")
	}
	return &UnicornCpu{u}, nil
}

// UnicornCpu adapts uc.Unicorn to cpu.Cpu.
type UnicornCpu struct {
	uc.Unicorn
}

func (u *UnicornCpu) Backend() interface{} {
	return u.Unicorn
}

func (u *UnicornCpu) ContextSave(reuse interface{}) (interface{}, error) {
	var ctx uc.Context
	if reuse != nil {
		var ok bool
		if ctx, ok = reuse.(uc.Context); !ok {
			return nil, errors.New("incorrect context type")
		}
	}
	return u.Unicorn.ContextSave(ctx)
}

func (u *UnicornCpu) ContextRestore(ctx interface{}) error {
	c, ok := ctx.(uc.Context)
	if !ok {
		return errors.New("incorrect context type")
	}
	return u.Unicorn.ContextRestore(c)
}

func (u *UnicornCpu) HookAdd(htype int, cb interface{}, start uint64, end uint64) (cpu.Hook, error) {
	// callbacks take a cpu.Cpu, so every hook is wrapped to hand back u instead of the raw engine
	var wrap interface{}
	switch htype {
	case cpu.HOOK_BLOCK, cpu.HOOK_CODE:
		cbc, ok := cb.(func(cpu.Cpu, uint64, uint32))
		if !ok {
			return nil, errors.Errorf("bad callback type for code hook: %T", cb)
		}
		wrap = func(_ uc.Unicorn, addr uint64, size uint32) { cbc(u, addr, size) }

	case cpu.HOOK_MEM_READ, cpu.HOOK_MEM_WRITE, cpu.HOOK_MEM_READ | cpu.HOOK_MEM_WRITE:
		cbc, ok := cb.(func(cpu.Cpu, int, uint64, int, int64))
		if !ok {
			return nil, errors.Errorf("bad callback type for memory hook: %T", cb)
		}
		wrap = func(_ uc.Unicorn, access int, addr uint64, size int, val int64) { cbc(u, access, addr, size, val) }

	default:
		return nil, errors.Errorf("unknown hook type: %d", htype)
	}
	hh, err := u.Unicorn.HookAdd(htype, wrap, start, end)
	return hh, errors.Wrap(err, "uc.HookAdd() failed")
}

func (u *UnicornCpu) HookDel(hh cpu.Hook) error {
	h, ok := hh.(uc.Hook)
	if !ok {
		return errors.Errorf("not a unicorn hook: %T", hh)
	}
	return u.Unicorn.HookDel(h)
}

func (u *UnicornCpu) MemMap(addr, size uint64, prot int) error {
	return u.Unicorn.MemMapProt(addr, size, prot)
}

func (u *UnicornCpu) MemReadInto(p []byte, addr uint64) error {
	return u.Unicorn.MemReadInto(p, addr)
}
