package ui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/chzyer/readline"
	"github.com/pkg/errors"
	"github.com/shibukawa/configdir"

	"github.com/lunixbochs/armdbg/go/debug"
)

// Repl is a readline debug.Input with persistent history.
type Repl struct {
	d  *debug.Debugger
	rl *readline.Instance

	// debugger output before readline took it over
	stdout, stderr io.Writer
}

func historyPath() string {
	configDirs := configdir.New("armdbg", "repl")
	cacheDir := configDirs.QueryCacheFolder()
	if err := cacheDir.MkdirAll(); err != nil {
		return ""
	}
	return filepath.Join(cacheDir.Path, "history")
}

func NewRepl(d *debug.Debugger) (*Repl, error) {
	rl, err := readline.NewEx(&readline.Config{
		InterruptPrompt: "\n",
		HistoryFile:     historyPath(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "readline.NewEx() failed")
	}
	r := &Repl{d: d, rl: rl, stdout: d.Config.Output, stderr: d.Config.Errors}
	// route debugger output through readline so the prompt is redrawn
	if d.Config.Output == os.Stdout {
		d.Config.Output = rl.Stdout()
	}
	if d.Config.Errors == os.Stderr {
		d.Config.Errors = rl.Stderr()
	}
	return r, nil
}

// Opener is a Debugger.NewInput that opens a fresh Repl each time.
func Opener(d *debug.Debugger) func() (debug.Input, error) {
	return func() (debug.Input, error) {
		return NewRepl(d)
	}
}

func (r *Repl) setPrompt() {
	d := r.d
	pc, err := d.Cpu.RegRead(d.Variant.Arch().PC)
	if err != nil {
		r.rl.SetPrompt("> ")
		return
	}
	r.rl.SetPrompt(fmt.Sprintf("%#x> ", pc))
	alt, err := d.Variant.IsAlternate(d.Cpu)
	if err != nil {
		return
	}
	mem, err := d.Cpu.MemRead(pc, 4)
	if err != nil {
		return
	}
	dis, err := d.Variant.Disassembler(alt).Dis(mem, pc)
	if err == nil && len(dis) > 0 {
		r.rl.SetPrompt(fmt.Sprintf("[%s %s] ", dis[0].Mnemonic(), dis[0].OpStr()))
	}
}

func (r *Repl) ReadLine() (string, error) {
	r.setPrompt()
	line, err := r.rl.Readline()
	if err == readline.ErrInterrupt {
		return "", debug.ErrInterrupt
	} else if err == io.EOF {
		return "", io.EOF
	}
	return line, err
}

func (r *Repl) Close() error {
	r.d.Config.Output, r.d.Config.Errors = r.stdout, r.stderr
	return r.rl.Close()
}
