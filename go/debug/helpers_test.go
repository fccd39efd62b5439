package debug

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"github.com/lunixbochs/armdbg/go/models"
	"github.com/lunixbochs/armdbg/go/models/cpu"
)

const (
	regPC   = 15
	regSP   = 13
	regLR   = 14
	regMode = 16
)

var testArch = &models.Arch{
	Name: "test",
	Bits: 32,
	PC:   regPC,
	SP:   regSP,
	LR:   regLR,
	Regs: map[int]string{0: "r0", 1: "r1", 2: "r2", 3: "r3", regSP: "sp", regLR: "lr", regPC: "pc", regMode: "mode"},
}

var testRegs = &RegTable{Prefix: "r", Base: 0, Count: 4, Alias: map[string]int{"sp": regSP, "lr": regLR}}

type testIns struct {
	addr  uint64
	bytes []byte
}

func (i *testIns) Addr() uint64     { return i.addr }
func (i *testIns) Bytes() []byte    { return i.bytes }
func (i *testIns) Mnemonic() string { return fmt.Sprintf("op%02x", i.bytes[0]) }
func (i *testIns) OpStr() string    { return "" }

// testDis decodes fixed-size instructions named after their first byte. 0xff doesn't decode.
type testDis struct {
	size int
}

func (d *testDis) Dis(mem []byte, addr uint64) ([]models.Ins, error) {
	var out []models.Ins
	for i := 0; i+d.size <= len(mem); i += d.size {
		if mem[i] == 0xff {
			break
		}
		out = append(out, &testIns{addr + uint64(i), mem[i : i+d.size]})
	}
	return out, nil
}

// testAsm emits one 4-byte (or 2-byte compact) instruction per ;-separated statement.
type testAsm struct {
	size int
}

func (a *testAsm) Asm(asm string, addr uint64) ([]byte, error) {
	if strings.Contains(asm, "bad") {
		return nil, errors.New("invalid mnemonic")
	}
	n := len(strings.Split(asm, ";"))
	return bytes.Repeat([]byte{0x01}, n*a.size), nil
}

type testVariant struct {
	wide    bool
	lastAlt bool
}

func (v *testVariant) Name() string                { return "test" }
func (v *testVariant) Arch() *models.Arch          { return testArch }
func (v *testVariant) ByteOrder() binary.ByteOrder { return binary.LittleEndian }
func (v *testVariant) CallMnemonic() string        { return "opb1" }

func (v *testVariant) ResolveRegister(name string) (int, string, bool) {
	enum, ok := testRegs.Resolve(name)
	return enum, name, ok
}

func (v *testVariant) ResolveWriteRegister(name string) (int, bool) {
	return testRegs.Resolve(name)
}

func (v *testVariant) Help(w io.Writer, addr uint64) { fmt.Fprintf(w, "test help at %#x\n", addr) }
func (v *testVariant) WriteHelp(w io.Writer)         { fmt.Fprintln(w, "test write help") }

func (v *testVariant) BlockAddr(addr uint64) (uint64, bool) {
	return addr &^ 1, addr&1 == 1
}

func (v *testVariant) IsAlternate(c cpu.Cpu) (bool, error) {
	mode, err := c.RegRead(regMode)
	return mode&1 == 1, err
}

func (v *testVariant) Assembler(alt bool) models.Assembler {
	if alt {
		return &testAsm{2}
	}
	return &testAsm{4}
}

func (v *testVariant) Disassembler(alt bool) models.Disassembler {
	v.lastAlt = alt
	if alt {
		return &testDis{2}
	}
	return &testDis{4}
}

// 0xb1 calls the address in r0
func (v *testVariant) DecodeCall(c cpu.Cpu, addr uint64, size uint32) (uint64, bool, error) {
	mem, err := c.MemRead(addr, 1)
	if err != nil || mem[0] != 0xb1 {
		return 0, false, err
	}
	target, err := c.RegRead(0)
	return target, true, err
}

func (v *testVariant) MaxWriteWidth() int {
	if v.wide {
		return 8
	}
	return 4
}

type testEnv struct {
	sim    *cpu.Sim
	v      *testVariant
	d      *Debugger
	out    bytes.Buffer
	errs   bytes.Buffer
	script *scriptInput
	opened int
}

// scriptInput replays lines, returning the matching error instead when one is set.
type scriptInput struct {
	lines []string
	errs  map[int]error
	pos   int
}

func (s *scriptInput) ReadLine() (string, error) {
	if s.pos >= len(s.lines) {
		return "", io.EOF
	}
	i := s.pos
	s.pos++
	if err, ok := s.errs[i]; ok {
		return "", err
	}
	return s.lines[i], nil
}

func (s *scriptInput) Close() error { return nil }

func newTestEnv(t *testing.T, lines ...string) *testEnv {
	e := &testEnv{v: &testVariant{}, script: &scriptInput{lines: lines}}
	e.sim = cpu.NewSim(32, binary.LittleEndian, regPC, testArch.Enums())
	if err := e.sim.MemMap(0x1000, 0x1000, cpu.PROT_ALL); err != nil {
		t.Fatal(err)
	}
	if err := e.sim.MemMap(0x4000, 0x1000, cpu.PROT_ALL); err != nil {
		t.Fatal(err)
	}
	// op00 op01 op02 ...
	code := make([]byte, 0x1000)
	for i := 0; i < len(code); i += 4 {
		code[i] = byte(i / 4)
	}
	e.sim.MemWrite(0x1000, code)
	e.d = NewDebugger(e.sim, e.v, &models.Config{Output: &e.out, Errors: &e.errs})
	e.d.NewInput = func() (Input, error) {
		e.opened++
		return e.script, nil
	}
	return e
}

func (e *testEnv) run(t *testing.T, lines ...string) {
	for _, line := range lines {
		e.d.session = newSession(e.d, 0x1000, 4, nil)
		e.d.session.Dispatch(line)
	}
}

func strseq(a []string, b []string) error {
	if len(a) != len(b) {
		return fmt.Errorf("len mismatch: %d != %d\n%q\n%q", len(a), len(b), a, b)
	}
	for i := range a {
		if a[i] != b[i] {
			return fmt.Errorf("mismatch at %d: %q != %q", i, a[i], b[i])
		}
	}
	return nil
}
