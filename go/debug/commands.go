package debug

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/lunixbochs/armdbg/go/models"
)

type command struct {
	name  string
	desc  string
	match func(s *Session, line string) bool
	run   func(s *Session, line string, args []string) (exit bool, err error)
}

func exact(names ...string) func(*Session, string) bool {
	return func(_ *Session, line string) bool {
		for _, n := range names {
			if line == n {
				return true
			}
		}
		return false
	}
}

func prefix(p string) func(*Session, string) bool {
	return func(_ *Session, line string) bool {
		return strings.HasPrefix(line, p)
	}
}

// ParseNum parses decimal, 0x hex, or negative decimal (two's complement).
func ParseNum(s string) (uint64, error) {
	var n uint64
	var err error
	switch {
	case strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"):
		n, err = strconv.ParseUint(s[2:], 16, 64)
	case strings.HasPrefix(s, "-"):
		var i int64
		i, err = strconv.ParseInt(s, 10, 64)
		n = uint64(i)
	default:
		n, err = strconv.ParseUint(s, 10, 64)
	}
	if err != nil {
		return 0, errors.Errorf("bad number: %q", s)
	}
	return n, nil
}

// parseHexAddr parses "0x..." with an optional trailing L.
func parseHexAddr(s string) (uint64, error) {
	s = strings.TrimRight(s, "Ll")
	if !strings.HasPrefix(s, "0x") {
		return 0, errors.Errorf("bad address: %q", s)
	}
	return ParseNum(s)
}

var writeWidths = map[byte]int{'b': 1, 's': 2, 'i': 4, 'l': 8}

func isMemWrite(_ *Session, line string) bool {
	return len(line) > 4 && line[0] == 'w' && writeWidths[line[1]] != 0 && line[2:4] == "0x"
}

func isRegWrite(s *Session, line string) bool {
	if len(line) < 2 || line[0] != 'w' {
		return false
	}
	name := strings.Fields(line)[0][1:]
	_, ok := s.d.Variant.ResolveWriteRegister(name)
	return ok
}

// ParseMemoryView parses an m command: m<register|0xaddr>[s|std|objc] [size].
// A bare m reads at the break address.
func (s *Session) ParseMemoryView(args []string) (*MemoryView, error) {
	d := s.d
	op := strings.TrimPrefix(args[0], "m")
	view := &MemoryView{Size: d.Config.DumpSize}
	for _, f := range formatSuffixes {
		if strings.HasSuffix(op, f.suffix) {
			op, view.Format = strings.TrimSuffix(op, f.suffix), f.format
			break
		}
	}
	if len(args) > 1 {
		size, err := ParseNum(args[1])
		if err != nil {
			return nil, err
		}
		if size > d.Config.MaxDumpSize {
			return nil, errors.Errorf("size %#x is over the %#x byte limit", size, d.Config.MaxDumpSize)
		}
		view.Size = size
	}
	switch {
	case op == "":
		if !s.hasAddr() {
			return nil, errors.New("no break address")
		}
		view.Addr, view.Name = s.Addr, "pc"
	case strings.HasPrefix(op, "0x"):
		addr, err := ParseNum(op)
		if err != nil {
			return nil, err
		}
		view.Addr, view.Name = addr, op
	default:
		reg, name, ok := d.Variant.ResolveRegister(op)
		if !ok {
			return nil, errors.Errorf("unknown register: %s", op)
		}
		val, err := d.Cpu.RegRead(reg)
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s failed", name)
		}
		view.Addr, view.Name = val, name
	}
	return view, nil
}

func (d *Debugger) help(addr uint64) {
	w := d.Config.Output
	d.Variant.Help(w, addr)
	for _, c := range commandTable {
		if c.desc != "" {
			fmt.Fprintf(w, "  %-24s %s\n", c.name, c.desc)
		}
	}
	d.Variant.WriteHelp(w)
}

var commandTable []*command

func init() {
	commandTable = []*command{
		{
			name: "d", desc: "show registers and disassemble at the break address",
			match: exact("d", "dis"),
			run: func(s *Session, _ string, _ []string) (bool, error) {
				if err := s.d.ShowRegs(); err != nil {
					return false, err
				}
				if s.hasAddr() {
					s.showHere()
				}
				return false, nil
			},
		},
		{
			name: "d0x<addr>", desc: "disassemble a block at an address",
			match: prefix("d0x"),
			run: func(s *Session, line string, _ []string) (bool, error) {
				addr, err := parseHexAddr(line[1:])
				if err != nil {
					return false, err
				}
				_, err = s.d.disassembleAt(addr)
				return false, err
			},
		},
		{
			name: "w{b,s,i,l}0x<addr> <v>", desc: "write byte/short/int/long to memory",
			match: isMemWrite,
			run: func(s *Session, line string, args []string) (bool, error) {
				d := s.d
				width := writeWidths[line[1]]
				if width > d.Variant.MaxWriteWidth() {
					return false, errors.Errorf("%d byte writes are not supported on %s", width, d.Variant.Name())
				}
				if len(args) != 2 {
					return false, errors.New("usage: w{b,s,i,l}0x<addr> <value>")
				}
				addr, err := parseHexAddr(args[0][2:])
				if err != nil {
					return false, err
				}
				val, err := ParseNum(args[1])
				if err != nil {
					return false, err
				}
				return false, d.Memory().Write(addr, val, width)
			},
		},
		{
			name: "w<reg> <v>", desc: "write a register",
			match: isRegWrite,
			run: func(s *Session, line string, args []string) (bool, error) {
				d := s.d
				if len(args) != 2 {
					return false, errors.New("usage: w<reg> <value>")
				}
				reg, _ := d.Variant.ResolveWriteRegister(args[0][1:])
				val, err := ParseNum(args[1])
				if err != nil {
					return false, err
				}
				if err := d.Cpu.RegWrite(reg, val); err != nil {
					return false, err
				}
				return false, d.ShowRegs(reg)
			},
		},
		{
			name: "help", desc: "show this help",
			match: exact("help", "?"),
			run: func(s *Session, _ string, _ []string) (bool, error) {
				s.d.help(s.Addr)
				return false, nil
			},
		},
		{
			name: "m<reg|0xaddr>[s|std|objc]", desc: "read memory [size]",
			match: prefix("m"),
			run: func(s *Session, _ string, args []string) (bool, error) {
				view, err := s.ParseMemoryView(args)
				if err != nil {
					return false, err
				}
				block, err := s.d.Memory().Read(view)
				if err != nil {
					return false, err
				}
				block.Print(s.d.Config.Output, s.d.Variant.Arch().Bits)
				return false, nil
			},
		},
		{
			name: "reg", desc: "show registers, or reg name=value",
			match: func(_ *Session, line string) bool { return line == "reg" || strings.HasPrefix(line, "reg ") },
			run:   regCmd,
		},
		{
			name: "b", desc: "list breakpoints",
			match: exact("b"),
			run: func(s *Session, _ string, _ []string) (bool, error) {
				for i, bp := range s.d.Breakpoints() {
					s.d.Printf("%d: %s\n", i, bp)
				}
				return false, nil
			},
		},
		{
			name: "blr", desc: "break once at the return address",
			match: exact("blr"),
			run: func(s *Session, _ string, _ []string) (bool, error) {
				d := s.d
				lr, err := d.Cpu.RegRead(d.Variant.Arch().LR)
				if err != nil {
					return false, err
				}
				return false, d.breakOnce(lr)
			},
		},
		{
			name: "b0x<addr>", desc: "set a breakpoint",
			match: prefix("b0x"),
			run: func(s *Session, line string, _ []string) (bool, error) {
				addr, err := parseHexAddr(line[1:])
				if err != nil {
					return false, err
				}
				bp, err := s.d.AddBreakpoint(fmt.Sprintf("%#x", addr))
				if err == nil {
					s.d.Printf("breakpoint set at %s\n", bp)
				}
				return false, err
			},
		},
		{
			name: "b <sym>[+off][@mod]", desc: "set a breakpoint on a symbol",
			match: prefix("b "),
			run: func(s *Session, _ string, args []string) (bool, error) {
				if len(args) != 2 {
					return false, errors.New("usage: b <sym>[+0xoff][@module]")
				}
				bp, err := s.d.AddBreakpoint(args[1])
				if err == nil {
					s.d.Printf("breakpoint set at %s (%s)\n", bp, s.d.Symbolicate(bp.Addr))
				}
				return false, err
			},
		},
		{
			name: "r", desc: "remove the breakpoint at the break address",
			match: exact("r"),
			run: func(s *Session, _ string, _ []string) (bool, error) {
				if !s.hasAddr() {
					return false, errors.New("no break address")
				}
				return false, s.d.RemoveBreakpoint(s.Addr)
			},
		},
		{
			name: "r0x<addr>", desc: "remove a breakpoint",
			match: prefix("r0x"),
			run: func(s *Session, line string, _ []string) (bool, error) {
				addr, err := parseHexAddr(line[1:])
				if err != nil {
					return false, err
				}
				return false, s.d.RemoveBreakpoint(addr)
			},
		},
		{
			name: "c", desc: "continue",
			match: exact("c"),
			run: func(s *Session, _ string, _ []string) (bool, error) {
				return true, nil
			},
		},
		{
			name: "n", desc: "step over",
			match: exact("n"),
			run: func(s *Session, _ string, _ []string) (bool, error) {
				if !s.hasAddr() || s.Next <= s.Addr {
					return false, errors.New("no next instruction")
				}
				if err := s.d.breakOnce(s.Next); err != nil {
					return false, err
				}
				return true, nil
			},
		},
		{
			name: "s", desc: "step into",
			match: exact("s", "si"),
			run: func(s *Session, _ string, _ []string) (bool, error) {
				if err := s.stepInto(""); err != nil {
					return false, err
				}
				return true, nil
			},
		},
		{
			name: "s(<mnemonic>)", desc: "run until an instruction with this mnemonic (slow)",
			match: func(_ *Session, line string) bool {
				return strings.HasPrefix(line, "s(") && strings.HasSuffix(line, ")") && len(line) > 3
			},
			run: func(s *Session, line string, _ []string) (bool, error) {
				if err := s.stepInto(strings.TrimSpace(line[2 : len(line)-1])); err != nil {
					return false, err
				}
				return true, nil
			},
		},
		{
			name: "q", desc: "stop emulation",
			match: exact("q", "quit", "exit"),
			run: func(s *Session, _ string, _ []string) (bool, error) {
				return true, s.d.Cpu.Stop()
			},
		},
		{
			name: "asm <ins>[; <ins>...]", desc: "assemble and run instructions once",
			match: prefix("asm "),
			run: func(s *Session, line string, _ []string) (bool, error) {
				if err := s.d.RunSnippet(strings.TrimSpace(line[4:])); err != nil {
					return false, err
				}
				return false, s.d.ShowRegs()
			},
		},
		{
			name: "trace [module] [tag]", desc: "print every call inside a module (default everywhere)",
			match: func(_ *Session, line string) bool { return line == "trace" || strings.HasPrefix(line, "trace ") },
			run:   traceCmd,
		},
		{
			name: "traces", desc: "list call traces",
			match: exact("traces"),
			run: func(s *Session, _ string, _ []string) (bool, error) {
				for i, t := range s.d.traces {
					if t.Begin > t.End {
						s.d.Printf("%d: everywhere\n", i)
					} else {
						s.d.Printf("%d: %#x-%#x\n", i, t.Begin, t.End)
					}
				}
				return false, nil
			},
		},
		{
			name: "run", desc: "run the paused function body",
			match: exact("run"),
			run: func(s *Session, _ string, _ []string) (bool, error) {
				if s.resume == nil {
					return false, errors.New("nothing to run")
				}
				err := s.resume()
				s.RequestInputReset()
				return false, err
			},
		},
	}
}

func traceCmd(s *Session, _ string, args []string) (bool, error) {
	d := s.d
	var mod *models.Module
	tag := "trace"
	if len(args) > 1 && args[1] != "*" {
		if d.Loader == nil {
			return false, errors.New("no modules loaded")
		}
		if mod = d.Loader.FindModule(args[1]); mod == nil {
			return false, errors.Errorf("module not found: %s", args[1])
		}
		tag = mod.Name
	}
	if len(args) > 2 {
		tag = args[2]
	}
	t, err := d.TraceFunctionCall(mod, d.PrintCalls(tag))
	if err != nil {
		return false, err
	}
	if mod == nil {
		d.Printf("tracing calls everywhere\n")
	} else {
		d.Printf("tracing calls in %s [%#x, %#x)\n", mod.Name, t.Begin, t.End)
	}
	return false, nil
}

// regCmd reads or assigns registers by their full name: reg, reg r0 sp, reg r0=0x10.
func regCmd(s *Session, _ string, args []string) (bool, error) {
	d := s.d
	arch := d.Variant.Arch()
	if len(args) == 1 {
		return false, d.ShowRegs()
	}
	names := make(map[string]int, len(arch.Regs))
	for enum, name := range arch.Regs {
		names[name] = enum
	}
	for _, v := range args[1:] {
		name, value := v, ""
		if i := strings.Index(v, "="); i >= 0 {
			name, value = v[:i], v[i+1:]
		}
		enum, ok := names[name]
		if !ok {
			d.Errorf("reg %s not found\n", name)
			continue
		}
		if value == "" {
			val, err := d.Cpu.RegRead(enum)
			if err != nil {
				return false, err
			}
			d.Printf("%s %#x\n", name, val)
			continue
		}
		n, err := ParseNum(value)
		if err != nil {
			d.Errorf("error parsing %s value: %v\n", name, err)
			continue
		}
		if err := d.Cpu.RegWrite(enum, n); err != nil {
			d.Errorf("%s: %v\n", v, err)
		}
	}
	return false, nil
}
