package debug

import (
	"io"
	"strings"

	"github.com/mattn/go-shellwords"
	"github.com/pkg/errors"

	"github.com/lunixbochs/armdbg/go/models/cpu"
)

// Session is one stop in the debugger. It lives until a resume command is entered.
type Session struct {
	d *Debugger

	// Addr is where execution stopped, or NoAddress.
	Addr uint64
	// Size is the disassembly window at Addr.
	Size uint64
	// Next follows the last instruction shown at Addr. The n command breaks there.
	Next uint64

	resume     func() error
	needsReset bool
}

func newSession(d *Debugger, addr, size uint64, resume func() error) *Session {
	return &Session{d: d, Addr: addr, Size: size, Next: addr + size, resume: resume}
}

// RequestInputReset makes the session reopen its input before reading the next line.
func (s *Session) RequestInputReset() {
	s.needsReset = true
}

func (s *Session) hasAddr() bool {
	return s.Addr != 0 && s.Addr != NoAddress
}

func (s *Session) showHere() {
	d := s.d
	alt, err := d.Variant.IsAlternate(d.Cpu)
	if err != nil {
		d.Errorf("%v\n", err)
		return
	}
	next, err := d.Disassemble(s.Addr, s.Size, alt)
	if err != nil {
		d.Errorf("%v\n", err)
		return
	}
	if next > s.Addr {
		s.Next = next
	}
}

// Loop reads and runs commands until one of them resumes execution.
// Running out of input counts as continue.
func (s *Session) Loop() {
	d := s.d
	if s.Addr != NoAddress {
		where := ""
		if d.Tasks != nil {
			if task := d.Tasks.RunningTask(); task != nil {
				where = " @ " + task.String()
			}
		}
		d.Printf("debugger break at: %#x%s\n", s.Addr, where)
		if err := d.ShowRegs(); err != nil {
			d.Errorf("%v\n", err)
		}
	}
	if s.hasAddr() {
		s.showHere()
	}
	for {
		in, err := d.openInput(s.needsReset)
		s.needsReset = false
		if err != nil {
			d.Errorf("%v\n", err)
			return
		}
		line, err := in.ReadLine()
		if err == ErrInterrupt {
			s.RequestInputReset()
			continue
		} else if err != nil {
			if err != io.EOF {
				d.Errorf("%v\n", err)
			}
			return
		}
		if s.Dispatch(line) {
			return
		}
	}
}

// Dispatch runs one command line and reports whether it resumes execution.
func (s *Session) Dispatch(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	// asm text may hold quotes or ; that aren't shell syntax, so fall back to plain fields
	args, err := shellwords.Parse(line)
	if err != nil || len(args) == 0 {
		args = strings.Fields(line)
	}
	for _, c := range commandTable {
		if c.match(s, line) {
			exit, err := c.run(s, line, args)
			if err != nil {
				s.d.Errorf("%s: %v\n", c.name, err)
			}
			return exit
		}
	}
	s.d.Errorf("unknown command: %s\n", line)
	return false
}

// stepInto enters the debugger at the next instruction executed after from.
// With a mnemonic, instructions are decoded one by one until one matches.
func (s *Session) stepInto(mnemonic string) error {
	d, from := s.d, s.Addr
	first := true
	var hook cpu.Hook
	var err error
	hook, err = d.Cpu.HookAdd(cpu.HOOK_CODE, func(c cpu.Cpu, addr uint64, size uint32) {
		// the stopped instruction may still be reported before it executes
		if first {
			first = false
			if addr == from {
				return
			}
		}
		if mnemonic != "" && !d.isMnemonic(addr, size, mnemonic) {
			return
		}
		c.HookDel(hook)
		d.EnterLoop(addr, int(size), nil)
	}, 1, 0)
	return errors.Wrap(err, "HookAdd() failed")
}

func (d *Debugger) isMnemonic(addr uint64, size uint32, mnemonic string) bool {
	alt, err := d.Variant.IsAlternate(d.Cpu)
	if err != nil {
		return false
	}
	mem, err := d.Cpu.MemRead(addr, uint64(size))
	if err != nil {
		return false
	}
	dis, err := d.Variant.Disassembler(alt).Dis(mem, addr)
	return err == nil && len(dis) > 0 && strings.EqualFold(dis[0].Mnemonic(), mnemonic)
}
