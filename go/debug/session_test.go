package debug

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/lunixbochs/armdbg/go/models"
	"github.com/lunixbochs/armdbg/go/models/cpu"
)

func testLoader() models.ModuleList {
	return models.ModuleList{{
		Name: "prog", Base: 0x1000, Size: 0x100,
		Symbols: []models.Symbol{{Name: "start", Start: 0x1010, End: 0x1020}},
	}}
}

func TestEnterLoopContinue(t *testing.T) {
	e := newTestEnv(t, "c", "wr0 5")
	for i := 0; i < 4; i++ {
		e.sim.RegWrite(i, uint64(0x100+i))
	}
	e.sim.RegWrite(regPC, 0x4000)
	code := bytes.Repeat([]byte{0x11, 0x22, 0x33, 0x44}, 8)
	e.sim.MemWrite(0x4000, code)
	before, _ := e.sim.ContextSave(nil)

	e.d.EnterLoop(0x4000, 0x20, nil)

	out := e.out.String()
	for _, want := range []string{"debugger break at: 0x4000\n", "   r0=0x00000100", "0x4000: 11223344 op11", "0x401c: 11223344 op11"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "0x4020:") {
		t.Error("disassembled past the window")
	}
	if e.errs.Len() != 0 {
		t.Errorf("unexpected errors: %s", e.errs.String())
	}
	if e.script.pos != 1 {
		t.Fatalf("read %d lines, expected 1", e.script.pos)
	}
	after, _ := e.sim.ContextSave(nil)
	if changed := before.(*cpu.RegSnapshot).Diff(after.(*cpu.RegSnapshot)); len(changed) != 0 {
		t.Errorf("registers changed: %v", changed)
	}
	mem, _ := e.sim.MemRead(0x4000, uint64(len(code)))
	if !bytes.Equal(mem, code) {
		t.Error("memory changed")
	}
}

func TestEnterLoopEOF(t *testing.T) {
	e := newTestEnv(t)
	e.d.EnterLoop(NoAddress, 0, nil)
	if e.out.Len() != 0 || e.errs.Len() != 0 {
		t.Fatalf("unexpected output: %q %q", e.out.String(), e.errs.String())
	}
}

func TestEnterLoopUnknownCommand(t *testing.T) {
	e := newTestEnv(t, "bogus", "", "   c   ")
	e.d.EnterLoop(0x1000, 4, nil)
	if !strings.Contains(e.errs.String(), "unknown command: bogus") {
		t.Fatalf("errors: %q", e.errs.String())
	}
	if e.script.pos != 3 {
		t.Fatalf("loop stopped after %d lines", e.script.pos)
	}
}

func TestInputReset(t *testing.T) {
	e := newTestEnv(t, "", "c")
	e.script.errs = map[int]error{0: ErrInterrupt}
	e.d.EnterLoop(0x1000, 4, nil)
	if e.opened != 2 {
		t.Fatalf("input opened %d times, expected 2", e.opened)
	}
	// a later session keeps the same input
	e.script.lines = append(e.script.lines, "c")
	e.d.EnterLoop(0x1000, 4, nil)
	if e.opened != 2 {
		t.Fatalf("input reopened without a reset request")
	}
}

func TestRunResume(t *testing.T) {
	e := newTestEnv(t, "run", "c")
	ran := 0
	e.d.EnterLoop(NoAddress, 0, func() error {
		ran++
		return nil
	})
	if ran != 1 || e.opened != 2 {
		t.Fatalf("ran %d, opened %d", ran, e.opened)
	}
}

func TestTaskDisplay(t *testing.T) {
	e := newTestEnv(t, "c")
	e.d.Tasks = &models.SingleTask{Task: &models.NamedTask{Tid: 1, Name: "main"}}
	e.d.EnterLoop(0x1000, 4, nil)
	if !strings.Contains(e.out.String(), "debugger break at: 0x1000 @ main[1]\n") {
		t.Fatalf("output: %s", e.out.String())
	}
}

func TestBreakpointStep(t *testing.T) {
	e := newTestEnv(t, "b0x1008", "c", "s", "c")
	e.d.EnterLoop(NoAddress, 0, nil)
	if err := e.sim.Start(0x1000, 0x1020); err != nil {
		t.Fatal(err)
	}
	out := e.out.String()
	first := strings.Index(out, "debugger break at: 0x1008")
	second := strings.Index(out, "debugger break at: 0x100c")
	if first < 0 || second < first {
		t.Fatalf("bad break sequence:\n%s", out)
	}
	if strings.Count(out, "debugger break at") != 2 {
		t.Fatalf("step hook fired more than once:\n%s", out)
	}
}

func TestStepOver(t *testing.T) {
	e := newTestEnv(t, "n", "c")
	bp, err := e.d.AddBreakpoint("0x1004")
	if err != nil {
		t.Fatal(err)
	}
	e.sim.Start(0x1000, 0x1010)
	out := e.out.String()
	if !strings.Contains(out, "debugger break at: 0x1004") || !strings.Contains(out, "debugger break at: 0x1008") {
		t.Fatalf("output:\n%s", out)
	}
	if len(bp.Addrs()) != 1 || len(e.d.Breakpoints()) != 1 {
		t.Fatal("step over disturbed the user breakpoint")
	}
}

func TestStepMnemonic(t *testing.T) {
	e := newTestEnv(t, "s(OP05)", "c")
	e.d.AddBreakpoint("0x1004")
	e.sim.Start(0x1000, 0x1020)
	if !strings.Contains(e.out.String(), "debugger break at: 0x1014") {
		t.Fatalf("output:\n%s", e.out.String())
	}
}

func TestBreakOnReturn(t *testing.T) {
	e := newTestEnv(t, "blr", "c", "c")
	e.sim.RegWrite(regLR, 0x100d)
	e.d.AddBreakpoint("0x1000")
	e.sim.Start(0x1000, 0x1020)
	if !strings.Contains(e.out.String(), "debugger break at: 0x100c") {
		t.Fatalf("output:\n%s", e.out.String())
	}
}

func TestQuit(t *testing.T) {
	e := newTestEnv(t, "q")
	e.d.AddBreakpoint("0x1008")
	e.sim.Start(0x1000, 0x1020)
	if pc, _ := e.sim.RegRead(regPC); pc != 0x1008 {
		t.Fatalf("pc = %#x after quit", pc)
	}
}

func TestBreakpointCommands(t *testing.T) {
	e := newTestEnv(t)
	e.run(t, "b0x1009", "b0x1008", "b")
	if len(e.d.Breakpoints()) != 1 || e.d.Breakpoints()[0].Addr != 0x1008 {
		t.Fatalf("breakpoints: %v", e.d.Breakpoints())
	}
	if !strings.Contains(e.errs.String(), "already set") {
		t.Fatalf("duplicate breakpoint accepted: %q", e.errs.String())
	}
	if !strings.Contains(e.out.String(), "0: 0x1008") {
		t.Fatalf("listing: %q", e.out.String())
	}
	e.run(t, "r0x1008", "r0x1008")
	if len(e.d.Breakpoints()) != 0 || !strings.Contains(e.errs.String(), "no breakpoint at 0x1008") {
		t.Fatalf("remove failed: %q", e.errs.String())
	}

	e.d.AddBreakpoint("0x1000")
	e.run(t, "r")
	if len(e.d.Breakpoints()) != 0 {
		t.Fatal("r left the breakpoint at the break address")
	}
}

func TestSymbolBreakpoint(t *testing.T) {
	e := newTestEnv(t, "c")
	e.d.Loader = testLoader()
	e.run(t, "b start+4@prog", "b missing")
	bps := e.d.Breakpoints()
	if len(bps) != 1 || bps[0].Addr != 0x1014 {
		t.Fatalf("breakpoints: %v, errors: %q", bps, e.errs.String())
	}
	e.sim.Start(0x1000, 0x1020)
	if !strings.Contains(e.out.String(), "debugger break at: 0x1014") {
		t.Fatalf("output:\n%s", e.out.String())
	}
}

func TestHelp(t *testing.T) {
	e := newTestEnv(t)
	e.run(t, "?")
	out := e.out.String()
	for _, want := range []string{"test help at 0x1000", "asm <ins>", "s(<mnemonic>)", "test write help"} {
		if !strings.Contains(out, want) {
			t.Errorf("help is missing %q", want)
		}
	}
}

func TestStdinSurvivesReset(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	w.Write([]byte("run\nhelp\nc\n"))
	w.Close()
	stdin := os.Stdin
	os.Stdin = r
	defer func() { os.Stdin = stdin }()

	e := newTestEnv(t)
	e.d.NewInput = stdinOpener()
	runs := 0
	e.d.EnterLoop(NoAddress, 0, func() error {
		runs++
		return nil
	})
	if runs != 1 {
		t.Fatalf("resume ran %d times", runs)
	}
	if e.errs.Len() != 0 {
		t.Fatalf("unexpected errors: %q", e.errs.String())
	}
	if !strings.Contains(e.out.String(), "step over") {
		t.Fatalf("help didn't run after the reset:\n%s", e.out.String())
	}
}

func TestEnterLoopNegativeSize(t *testing.T) {
	e := newTestEnv(t, "c")
	e.d.EnterLoop(0x1000, -1, nil)
	if !strings.Contains(e.out.String(), "debugger break at: 0x1000\n") {
		t.Fatalf("output: %q", e.out.String())
	}
	if strings.Contains(e.out.String(), "0x1000: ") || e.errs.Len() != 0 {
		t.Fatalf("negative window disassembled: %q %q", e.out.String(), e.errs.String())
	}
}

func TestOversizedDumpKeepsLoop(t *testing.T) {
	e := newTestEnv(t, "m0x1000 0xffffffffffff", "m0x1000 0x10", "c")
	e.d.EnterLoop(0x1000, 4, nil)
	if !strings.Contains(e.errs.String(), "size 0xffffffffffff is over the 0x100000 byte limit") {
		t.Fatalf("errors: %q", e.errs.String())
	}
	if e.script.pos != 3 {
		t.Fatalf("loop stopped after %d lines", e.script.pos)
	}
	if !strings.Contains(e.out.String(), "0x00001000: 00000000 01000000 02000000 03000000") {
		t.Fatalf("dump after the error missing:\n%s", e.out.String())
	}
}
