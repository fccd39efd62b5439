package debug

import (
	"github.com/pkg/errors"

	"github.com/lunixbochs/armdbg/go/models"
	"github.com/lunixbochs/armdbg/go/models/cpu"
)

// CallListener is notified of calls inside a traced range.
// PostCall fires when execution returns to the instruction after the call site.
type CallListener interface {
	OnCall(c cpu.Cpu, caller, target uint64)
	PostCall(c cpu.Cpu, caller, target uint64)
}

// calls nested deeper than this stop getting PostCall
const maxCallDepth = 1024

type callFrame struct {
	caller, target, ret uint64
}

// TraceHook is an installed call trace over [Begin, End). Begin > End means every address.
type TraceHook struct {
	Begin, End uint64
	Listener   CallListener

	variant Variant
	hook    cpu.Hook
	stack   []callFrame
	logf    func(format string, a ...interface{})
}

func (t *TraceHook) onCode(c cpu.Cpu, addr uint64, size uint32) {
	for n := len(t.stack); n > 0 && t.stack[n-1].ret == addr; n-- {
		f := t.stack[n-1]
		t.stack = t.stack[:n-1]
		t.Listener.PostCall(c, f.caller, f.target)
	}
	target, ok, err := t.variant.DecodeCall(c, addr, size)
	if err != nil {
		t.logf("trace: %v\n", err)
		return
	}
	if !ok {
		return
	}
	t.Listener.OnCall(c, addr, target)
	if len(t.stack) < maxCallDepth {
		t.stack = append(t.stack, callFrame{addr, target, addr + uint64(size)})
	}
}

// TraceFunctionCall hooks every call inside mod, or inside the whole address space when mod is nil.
// The hook is never removed.
func (d *Debugger) TraceFunctionCall(mod *models.Module, listener CallListener) (*TraceHook, error) {
	t := &TraceHook{Begin: 1, End: 0, Listener: listener, variant: d.Variant, logf: d.logf}
	hookBegin, hookEnd := t.Begin, t.End
	if mod != nil {
		if mod.Size == 0 {
			return nil, errors.Errorf("module %s is empty", mod.Name)
		}
		t.Begin, t.End = mod.Base, mod.Base+mod.Size
		hookBegin, hookEnd = t.Begin, t.End-1
	}
	hook, err := d.Cpu.HookAdd(cpu.HOOK_CODE, t.onCode, hookBegin, hookEnd)
	if err != nil {
		return nil, errors.Wrap(err, "HookAdd() failed")
	}
	t.hook = hook
	d.traces = append(d.traces, t)
	return t, nil
}

// printListener is the listener behind the trace command.
type printListener struct {
	d   *Debugger
	tag string
}

func (p *printListener) OnCall(c cpu.Cpu, caller, target uint64) {
	p.d.Printf("[%s] call %s -> %s\n", p.tag, p.d.Symbolicate(caller), p.d.Symbolicate(target))
}

func (p *printListener) PostCall(c cpu.Cpu, caller, target uint64) {
	p.d.Printf("[%s] return %s <- %s\n", p.tag, p.d.Symbolicate(caller), p.d.Symbolicate(target))
}

// PrintCalls returns a listener that prints each call and return tagged with tag.
func (d *Debugger) PrintCalls(tag string) CallListener {
	return &printListener{d: d, tag: tag}
}
