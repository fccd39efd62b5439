package cpu

import (
	"github.com/pkg/errors"
)

type hookInfo struct {
	htype int
	start uint64
	end   uint64
}

func (h *hookInfo) Type() int {
	return h.htype
}

// start > end is the "whole address space" sentinel
func (h *hookInfo) Contains(addr uint64) bool {
	return h.start > h.end || addr >= h.start && addr <= h.end
}

type hinfo interface {
	Type() int
	Range() (uint64, uint64)
}

func (h *hookInfo) Range() (uint64, uint64) {
	return h.start, h.end
}

type codeHook struct {
	hookInfo
	cb func(Cpu, uint64, uint32)
}

type memHook struct {
	hookInfo
	cb func(Cpu, int, uint64, int, int64)
}

// Hooks is a hook table for backends that don't have their own.
type Hooks struct {
	cpu Cpu

	code  []*codeHook
	block []*codeHook
	mem   []*memHook
}

func NewHooks(cpu Cpu) *Hooks {
	return &Hooks{cpu: cpu}
}

func (h *Hooks) HookAdd(htype int, cb interface{}, start, end uint64) (Hook, error) {
	info := hookInfo{htype, start, end}
	var hook Hook
	switch htype {
	case HOOK_CODE, HOOK_BLOCK:
		fn, ok := cb.(func(Cpu, uint64, uint32))
		if !ok {
			return nil, errors.Errorf("bad callback type for code hook: %T", cb)
		}
		hh := &codeHook{info, fn}
		if htype == HOOK_CODE {
			h.code = append(h.code, hh)
		} else {
			h.block = append(h.block, hh)
		}
		hook = hh

	case HOOK_MEM_READ, HOOK_MEM_WRITE, HOOK_MEM_READ | HOOK_MEM_WRITE:
		fn, ok := cb.(func(Cpu, int, uint64, int, int64))
		if !ok {
			return nil, errors.Errorf("bad callback type for memory hook: %T", cb)
		}
		hh := &memHook{info, fn}
		h.mem, hook = append(h.mem, hh), hh

	default:
		return nil, errors.Errorf("unknown hook type: %d", htype)
	}
	return hook, nil
}

func (h *Hooks) HookDel(hh Hook) error {
	info, ok := hh.(hinfo)
	if !ok {
		return errors.Errorf("not a hook: %T", hh)
	}
	// rebuild instead of splicing so a callback removing itself
	// doesn't disturb an in-progress dispatch loop
	switch info.Type() {
	case HOOK_CODE:
		h.code = dropCode(h.code, hh)
	case HOOK_BLOCK:
		h.block = dropCode(h.block, hh)
	default:
		var tmp []*memHook
		for _, v := range h.mem {
			if v != hh {
				tmp = append(tmp, v)
			}
		}
		h.mem = tmp
	}
	return nil
}

func dropCode(list []*codeHook, hh Hook) []*codeHook {
	var tmp []*codeHook
	for _, v := range list {
		if v != hh {
			tmp = append(tmp, v)
		}
	}
	return tmp
}

// Len returns the number of installed hooks of a type.
func (h *Hooks) Len(htype int) int {
	switch htype {
	case HOOK_CODE:
		return len(h.code)
	case HOOK_BLOCK:
		return len(h.block)
	default:
		return len(h.mem)
	}
}

// HookRange reports the range a hook was installed with.
func HookRange(hh Hook) (start, end uint64, ok bool) {
	if info, ok := hh.(hinfo); ok {
		start, end = info.Range()
		return start, end, true
	}
	return 0, 0, false
}

func (h *Hooks) OnBlock(addr uint64, size uint32) {
	for _, v := range h.block {
		if v.Contains(addr) {
			v.cb(h.cpu, addr, size)
		}
	}
}

func (h *Hooks) OnCode(addr uint64, size uint32) {
	for _, v := range h.code {
		if v.Contains(addr) {
			v.cb(h.cpu, addr, size)
		}
	}
}

func (h *Hooks) OnMem(access int, addr uint64, size int, val int64) {
	for _, v := range h.mem {
		if v.Contains(addr) && (v.htype&HOOK_MEM_READ != 0 && access == MEM_READ ||
			v.htype&HOOK_MEM_WRITE != 0 && access == MEM_WRITE) {
			v.cb(h.cpu, access, addr, size, val)
		}
	}
}
