package debug

import (
	"bufio"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/lunixbochs/armdbg/go/models"
	"github.com/lunixbochs/armdbg/go/models/cpu"
)

// NoAddress tells EnterLoop there is no break address to show.
const NoAddress = ^uint64(0)

// Debugger owns the breakpoints, traces and input of one backend.
// A Session is started from it each time execution stops.
type Debugger struct {
	Cpu     cpu.Cpu
	Variant Variant
	Config  *models.Config

	// optional
	Loader  models.Loader
	Tasks   models.Scheduler
	Classes ClassDecoder

	// NewInput opens the interactive input. It's called again whenever a session resets its input.
	NewInput func() (Input, error)

	input       Input
	breakpoints []*models.Breakpoint
	traces      []*TraceHook
	status      *models.StatusDiff
	scratch     bool
	session     *Session
}

func NewDebugger(c cpu.Cpu, v Variant, config *models.Config) *Debugger {
	if config == nil {
		config = &models.Config{}
	}
	return &Debugger{
		Cpu:      c,
		Variant:  v,
		Config:   config.Init(),
		Classes:  &ObjcClassDecoder{},
		NewInput: stdinOpener(),
		status:   &models.StatusDiff{Arch: v.Arch()},
	}
}

// stdinOpener shares one buffered reader over stdin between every input it opens.
func stdinOpener() func() (Input, error) {
	var r *bufio.Reader
	return func() (Input, error) {
		if r == nil {
			r = bufio.NewReader(os.Stdin)
		}
		return NewLineInput(r), nil
	}
}

func (d *Debugger) Printf(format string, a ...interface{}) {
	fmt.Fprintf(d.Config.Output, format, a...)
}

func (d *Debugger) Errorf(format string, a ...interface{}) {
	fmt.Fprintf(d.Config.Errors, format, a...)
}

func (d *Debugger) logf(format string, a ...interface{}) {
	if d.Config.Verbose {
		fmt.Fprintf(d.Config.Errors, format, a...)
	}
}

// EnterLoop blocks in an interactive session until a resume command is entered.
// size is the number of bytes to disassemble at addr. resume, if not nil, is run by the "run" command.
func (d *Debugger) EnterLoop(addr uint64, size int, resume func() error) {
	if size < 0 {
		size = 0
	}
	prev := d.session
	s := newSession(d, addr, uint64(size), resume)
	d.session = s
	s.Loop()
	d.session = prev
	// an inner session may have replaced the input under the outer one
	if prev != nil {
		prev.RequestInputReset()
	}
}

// Break is a code hook callback that enters the debugger at the hooked instruction.
func (d *Debugger) Break(c cpu.Cpu, addr uint64, size uint32) {
	d.EnterLoop(addr, int(size), nil)
}

func (d *Debugger) openInput(reset bool) (Input, error) {
	if d.input != nil && !reset {
		return d.input, nil
	}
	if d.input != nil {
		d.input.Close()
		d.input = nil
	}
	in, err := d.NewInput()
	if err != nil {
		return nil, errors.Wrap(err, "failed to open input")
	}
	d.input = in
	return in, nil
}

// Close releases the interactive input.
func (d *Debugger) Close() error {
	if d.input == nil {
		return nil
	}
	err := d.input.Close()
	d.input = nil
	return err
}

// ShowRegs prints registers, highlighting changes since the last call. No regs means all of them.
func (d *Debugger) ShowRegs(regs ...int) error {
	cs, err := d.status.Changes(d.Cpu, regs...)
	if err != nil {
		return err
	}
	d.Printf("%s", cs.String(d.Config.Color))
	return nil
}

// AddBreakpoint sets a breakpoint from a description: 0xADDR, sym, sym+0xOFF, each optionally @module.
func (d *Debugger) AddBreakpoint(desc string) (*models.Breakpoint, error) {
	bp, err := models.NewBreakpoint(desc, d.Break, d.Cpu)
	if err != nil {
		return nil, err
	}
	bp.Align = d.align
	if bp.Sym == "" {
		bp.Addr = d.align(bp.Addr)
		if d.findBreakpoint(bp.Addr) != nil {
			return nil, errors.Errorf("breakpoint already set at %#x", bp.Addr)
		}
	}
	if err := bp.Apply(d.Loader); err != nil {
		return nil, err
	}
	d.breakpoints = append(d.breakpoints, bp)
	return bp, nil
}

func (d *Debugger) align(addr uint64) uint64 {
	addr, _ = d.Variant.BlockAddr(addr)
	return addr
}

// breakOnce stops at addr the next time it executes, then forgets about it.
func (d *Debugger) breakOnce(addr uint64) error {
	bp, err := models.NewBreakpoint(fmt.Sprintf("%#x", d.align(addr)), d.Break, d.Cpu)
	if err != nil {
		return err
	}
	bp.Temporary = true
	return bp.Apply(nil)
}

func (d *Debugger) findBreakpoint(addr uint64) *models.Breakpoint {
	for _, bp := range d.breakpoints {
		for _, a := range bp.Addrs() {
			if a == addr {
				return bp
			}
		}
	}
	return nil
}

// RemoveBreakpoint deletes the breakpoint hooked at addr.
func (d *Debugger) RemoveBreakpoint(addr uint64) error {
	addr = d.align(addr)
	bp := d.findBreakpoint(addr)
	if bp == nil {
		return errors.Errorf("no breakpoint at %#x", addr)
	}
	for i, v := range d.breakpoints {
		if v == bp {
			d.breakpoints = append(d.breakpoints[:i], d.breakpoints[i+1:]...)
			break
		}
	}
	return bp.Remove()
}

func (d *Debugger) Breakpoints() []*models.Breakpoint {
	return d.breakpoints
}

// Symbolicate names addr using the loader, falling back to plain hex.
func (d *Debugger) Symbolicate(addr uint64) string {
	if d.Loader != nil {
		if m := d.Loader.ModuleAt(addr); m != nil {
			return fmt.Sprintf("%#x (%s)", addr, m.Symbolicate(addr))
		}
	}
	return fmt.Sprintf("%#x", addr)
}

// Memory returns a reader over the backend using this debugger's word size and limits.
func (d *Debugger) Memory() *Memory {
	return &Memory{
		Cpu:     d.Cpu,
		Order:   d.Variant.ByteOrder(),
		PtrSize: d.Variant.Arch().Bits / 8,
		Strsize: d.Config.Strsize,
		MaxSize: d.Config.MaxDumpSize,
		Classes: d.Classes,
	}
}
