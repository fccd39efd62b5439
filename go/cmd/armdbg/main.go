package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"

	"github.com/lunixbochs/armdbg/go/arch"
	"github.com/lunixbochs/armdbg/go/cpu/unicorn"
	"github.com/lunixbochs/armdbg/go/debug"
	"github.com/lunixbochs/armdbg/go/loader"
	"github.com/lunixbochs/armdbg/go/models"
	"github.com/lunixbochs/armdbg/go/models/cpu"
	"github.com/lunixbochs/armdbg/go/ui"
)

type strslice []string

func (s *strslice) String() string {
	return fmt.Sprintf("%v", *s)
}

func (s *strslice) Set(value string) error {
	*s = append(*s, value)
	return nil
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

func printError(err error) {
	fmt.Fprintf(os.Stderr, "%s\n", strings.Repeat("-", 40))
	fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	if err, ok := err.(stackTracer); ok {
		for _, f := range err.StackTrace() {
			fmt.Fprintf(os.Stderr, "%+s:%d\n", f, f)
		}
	}
}

type options struct {
	arch         string
	base, entry  uint64
	until        uint64
	thumb        bool
	breakAtEntry bool
	verbose      bool
	xarch        bool
	listen       string
	breaks       strslice
	traces       strslice
}

func run(o *options, path string) error {
	img, err := loader.LoadFile(path, o.arch, o.base)
	if err != nil {
		return err
	}
	profile, err := arch.GetArch(img.Arch())
	if err != nil {
		return err
	}
	b := &unicorn.Builder{Arch: profile.UC_ARCH, Mode: profile.UC_MODE}
	u, err := b.New()
	if err != nil {
		return err
	}
	defer u.Close()
	mod, err := loader.Map(u, img, path)
	if err != nil {
		return err
	}
	// stack above the image, past an unmapped guard page
	stackSize := uint64(0x10000)
	stackBase := (mod.Base+mod.Size+0xfff)&^0xfff + 0x1000
	if err := u.MemMap(stackBase, stackSize, cpu.PROT_READ|cpu.PROT_WRITE); err != nil {
		return errors.Wrap(err, "stack MemMap() failed")
	}
	stackTop := stackBase + stackSize

	v := profile.New()
	if o.xarch {
		if x, ok := v.(interface{ UseXArch() }); ok {
			x.UseXArch()
		}
	}
	config := &models.Config{Verbose: o.verbose}
	if isatty.IsTerminal(os.Stdout.Fd()) {
		config.Color = true
		config.Output = colorable.NewColorableStdout()
	}
	d := debug.NewDebugger(u, v, config)
	defer d.Close()
	if err := u.RegWrite(v.Arch().SP, stackTop-0x10); err != nil {
		return errors.Wrap(err, "RegWrite() failed")
	}

	d.Loader = models.ModuleList{mod}
	d.Tasks = &models.SingleTask{Task: &models.NamedTask{Tid: 1, Name: mod.Name}}

	if o.listen != "" {
		host, port, err := net.SplitHostPort(o.listen)
		if err != nil {
			return errors.Wrap(err, "bad listen address")
		}
		conn, err := debug.Accept(host, port)
		if err != nil {
			return err
		}
		defer conn.Close()
		d.Attach(conn)
	} else {
		d.NewInput = ui.Opener(d)
	}

	entry := o.entry
	if entry == 0 {
		entry = img.Entry()
	}
	until := o.until
	if until == 0 {
		until = mod.Base + mod.Size
	}
	for _, desc := range o.traces {
		var mod *models.Module
		tag := "trace"
		if desc != "*" {
			if mod = d.Loader.FindModule(desc); mod == nil {
				return errors.Errorf("module not found: %s", desc)
			}
			tag = mod.Name
		}
		if _, err := d.TraceFunctionCall(mod, d.PrintCalls(tag)); err != nil {
			return err
		}
	}
	for _, desc := range o.breaks {
		if _, err := d.AddBreakpoint(desc); err != nil {
			return err
		}
	}
	if o.thumb && img.Arch() == "arm" {
		entry |= 1
	}
	if o.breakAtEntry {
		if _, err := d.AddBreakpoint(fmt.Sprintf("%#x", entry&^1)); err != nil {
			return err
		}
	}
	if err := u.Start(entry, until); err != nil {
		// let the user look around the faulting state
		fmt.Fprintf(config.Errors, "%v\n", errors.Wrap(err, "Start() failed"))
		pc, _ := u.RegRead(v.Arch().PC)
		d.EnterLoop(pc, 4, nil)
		return err
	}
	return nil
}

func parseAddr(s string) (uint64, error) {
	n, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, errors.Errorf("bad address: %q", s)
	}
	return n, nil
}

func main() {
	fs := flag.NewFlagSet("armdbg", flag.ExitOnError)
	o := &options{}
	fs.StringVar(&o.arch, "arch", "", fmt.Sprintf("cpu architecture %v, required for raw images", arch.Names()))
	base := fs.String("base", "0x100000", "address to map a raw image at")
	entry := fs.String("entry", "", "start address (default: image entry point)")
	until := fs.String("until", "", "stop address (default: end of image)")
	fs.BoolVar(&o.thumb, "thumb", false, "start in thumb mode (arm only)")
	fs.BoolVar(&o.breakAtEntry, "break", true, "break at the entry point")
	fs.BoolVar(&o.verbose, "v", false, "verbose output")
	fs.BoolVar(&o.xarch, "xarch", false, "disassemble ARM and ARM64 with golang.org/x/arch instead of capstone")
	fs.StringVar(&o.listen, "listen", "", "serve the debugger on host:port instead of the terminal")
	connect := fs.String("connect", "", "connect to a debugger served with -listen")
	fs.Var(&o.breaks, "b", "add a breakpoint (repeatable): 0xADDR or sym[+0xOFF][@module]")
	fs.Var(&o.traces, "trace", "trace calls in a module, or * for everywhere (repeatable)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <image>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "       %s -connect host:port\n", os.Args[0])
		fs.PrintDefaults()
	}
	fs.Parse(os.Args[1:])

	if *connect != "" {
		if err := debug.RunClient(*connect); err != nil {
			printError(err)
			os.Exit(1)
		}
		return
	}
	args := fs.Args()
	if len(args) != 1 {
		fs.Usage()
		os.Exit(1)
	}
	var err error
	if o.base, err = parseAddr(*base); err != nil {
		printError(err)
		os.Exit(1)
	}
	if *entry != "" {
		if o.entry, err = parseAddr(*entry); err != nil {
			printError(err)
			os.Exit(1)
		}
	}
	if *until != "" {
		if o.until, err = parseAddr(*until); err != nil {
			printError(err)
			os.Exit(1)
		}
	}
	if err := run(o, args[0]); err != nil {
		printError(err)
		os.Exit(1)
	}
}
