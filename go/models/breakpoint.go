package models

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/pkg/errors"

	"github.com/lunixbochs/armdbg/go/models/cpu"
)

var breakRe = regexp.MustCompile(`^(?:(?P<addr>0x[0-9a-fA-F]+|\d+)|(?P<sym>[^+@]+?)(?:\+(?P<off>0x[0-9a-fA-F]+|\d+))?)(?:@(?P<file>.+))?$`)

type Breakpoint struct {
	// break at address
	Addr uint64

	// symbol and offset
	Sym string
	Off uint64

	// module name
	Filename string

	// Temporary breakpoints remove themselves the first time they fire.
	Temporary bool

	// Align, if set, maps resolved addresses to the address the backend reports for the instruction.
	Align func(addr uint64) uint64

	// list of active addresses
	hooks []bpHook

	c  cpu.Cpu
	cb func(c cpu.Cpu, addr uint64, size uint32)
}

type bpHook struct {
	addr uint64
	hook cpu.Hook
}

var BreakpointParseErr = fmt.Errorf("breakpoint parse failed")

// NewBreakpoint parses desc: 0xADDR, sym or sym+0xOFF, optionally suffixed with @module.
func NewBreakpoint(desc string, cb func(c cpu.Cpu, addr uint64, size uint32), c cpu.Cpu) (*Breakpoint, error) {
	r := breakRe.FindStringSubmatch(desc)
	if len(r) == 0 {
		return nil, errors.WithStack(BreakpointParseErr)
	}
	addrG, sym, offG, fileG := r[1], r[2], r[3], r[4]
	b := &Breakpoint{Sym: sym, Filename: fileG, c: c, cb: cb}
	var err error
	if addrG != "" {
		b.Addr, err = strconv.ParseUint(addrG, 0, 64)
	} else if offG != "" {
		b.Off, err = strconv.ParseUint(offG, 0, 64)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse int")
	}
	return b, nil
}

func (b *Breakpoint) String() string {
	s := fmt.Sprintf("%#x", b.Addr)
	if b.Sym != "" {
		s = b.Sym
		if b.Off > 0 {
			s += fmt.Sprintf("+%#x", b.Off)
		}
	}
	if b.Filename != "" {
		s += "@" + b.Filename
	}
	if b.Temporary {
		s += " (temporary)"
	}
	return s
}

// Addrs returns the addresses this breakpoint is currently hooked at.
func (b *Breakpoint) Addrs() []uint64 {
	ret := make([]uint64, len(b.hooks))
	for i, h := range b.hooks {
		ret[i] = h.addr
	}
	return ret
}

// Apply hooks every address the breakpoint resolves to. Symbols are looked up through loader.
func (b *Breakpoint) Apply(loader Loader) error {
	var addrs []uint64
	if b.Sym == "" {
		addrs = append(addrs, b.Addr)
	} else if loader != nil {
		for _, m := range loader.Modules() {
			if b.Filename != "" && m.Name != b.Filename {
				continue
			}
			if sym, ok := m.SymbolLookup(b.Sym); ok {
				addrs = append(addrs, sym.Start+b.Off)
			}
		}
	}
	if len(addrs) == 0 {
		return errors.Errorf("no breakpoints set for %s", b)
	}
	if b.Align != nil {
		for i, addr := range addrs {
			addrs[i] = b.Align(addr)
		}
	}
outer:
	for _, addr := range addrs {
		for _, already := range b.hooks {
			if already.addr == addr {
				continue outer
			}
		}
		hook, err := b.c.HookAdd(cpu.HOOK_CODE, func(c cpu.Cpu, addr uint64, size uint32) {
			if b.Temporary {
				b.Remove()
			}
			b.cb(c, addr, size)
		}, addr, addr)
		if err != nil {
			return errors.Wrap(err, "HookAdd() failed")
		}
		b.hooks = append(b.hooks, bpHook{addr, hook})
	}
	if b.Sym != "" && len(b.hooks) > 0 {
		b.Addr = b.hooks[0].addr
	}
	return nil
}

// Remove deletes every backend hook added by this breakpoint.
func (b *Breakpoint) Remove() error {
	var firstErr error
	for _, hook := range b.hooks {
		if err := b.c.HookDel(hook.hook); err != nil && firstErr == nil {
			firstErr = errors.Wrap(err, "HookDel() failed")
		}
	}
	b.hooks = nil
	return firstErr
}
