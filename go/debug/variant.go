package debug

import (
	"encoding/binary"
	"io"
	"sort"
	"strconv"

	"github.com/lunixbochs/armdbg/go/models"
	"github.com/lunixbochs/armdbg/go/models/cpu"
)

// Variant is everything the debugger needs to know about one instruction set.
//
// Register names passed to ResolveRegister and ResolveWriteRegister have the command
// letter stripped: "r0", "x17", "fp", "ip", "sp".
type Variant interface {
	Name() string
	Arch() *models.Arch
	ByteOrder() binary.ByteOrder

	ResolveRegister(name string) (reg int, display string, ok bool)
	ResolveWriteRegister(name string) (reg int, ok bool)

	// Help and WriteHelp print the variant's part of the help text.
	// The debugger appends the shared command list.
	Help(w io.Writer, addr uint64)
	WriteHelp(w io.Writer)

	// BlockAddr aligns a d0x address and reports whether it selects the alternate encoding.
	BlockAddr(addr uint64) (aligned uint64, alternate bool)
	// IsAlternate reports whether the cpu is currently executing the alternate encoding.
	IsAlternate(c cpu.Cpu) (bool, error)

	Assembler(alternate bool) models.Assembler
	Disassembler(alternate bool) models.Disassembler

	// DecodeCall reports whether the instruction at addr is a call, and where it goes.
	DecodeCall(c cpu.Cpu, addr uint64, size uint32) (target uint64, ok bool, err error)
	CallMnemonic() string

	// MaxWriteWidth is the widest memory store wb/ws/wi/wl accepts, in bytes.
	MaxWriteWidth() int
}

// RegTable resolves indexed general purpose registers plus a few named aliases.
// Indexed registers must have contiguous backend enums starting at Base.
type RegTable struct {
	Prefix string
	Base   int
	Count  int
	Alias  map[string]int
}

func (t *RegTable) Resolve(name string) (int, bool) {
	if enum, ok := t.Alias[name]; ok {
		return enum, true
	}
	if len(name) <= len(t.Prefix) || name[:len(t.Prefix)] != t.Prefix {
		return 0, false
	}
	digits := name[len(t.Prefix):]
	// no leading zeros or signs: "r01" and "r+1" aren't registers
	if len(digits) > 1 && digits[0] == '0' {
		return 0, false
	}
	n := 0
	for _, c := range digits {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
		if n >= t.Count {
			return 0, false
		}
	}
	return t.Base + n, true
}

// Names lists every name Resolve accepts, indexed registers first.
func (t *RegTable) Names() []string {
	names := make([]string, 0, t.Count+len(t.Alias))
	for i := 0; i < t.Count; i++ {
		names = append(names, t.Prefix+strconv.Itoa(i))
	}
	aliases := make([]string, 0, len(t.Alias))
	for name := range t.Alias {
		aliases = append(aliases, name)
	}
	sort.Strings(aliases)
	return append(names, aliases...)
}
