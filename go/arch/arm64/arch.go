package arm64

import (
	"encoding/binary"
	"fmt"
	"io"

	ks "github.com/keystone-engine/keystone/bindings/go/keystone"
	uc "github.com/unicorn-engine/unicorn/bindings/go/unicorn"
	"golang.org/x/arch/arm64/arm64asm"

	cpus "github.com/lunixbochs/armdbg/go/cpu"
	"github.com/lunixbochs/armdbg/go/debug"
	"github.com/lunixbochs/armdbg/go/models"
	"github.com/lunixbochs/armdbg/go/models/cpu"
)

var Arch = &models.Arch{
	Name: "arm64",
	Bits: 64,
	PC:   uc.ARM64_REG_PC,
	SP:   uc.ARM64_REG_SP,
	LR:   uc.ARM64_REG_LR,
	Regs: map[int]string{
		uc.ARM64_REG_X0:   "x0",
		uc.ARM64_REG_X1:   "x1",
		uc.ARM64_REG_X2:   "x2",
		uc.ARM64_REG_X3:   "x3",
		uc.ARM64_REG_X4:   "x4",
		uc.ARM64_REG_X5:   "x5",
		uc.ARM64_REG_X6:   "x6",
		uc.ARM64_REG_X7:   "x7",
		uc.ARM64_REG_X8:   "x8",
		uc.ARM64_REG_X9:   "x9",
		uc.ARM64_REG_X10:  "x10",
		uc.ARM64_REG_X11:  "x11",
		uc.ARM64_REG_X12:  "x12",
		uc.ARM64_REG_X13:  "x13",
		uc.ARM64_REG_X14:  "x14",
		uc.ARM64_REG_X15:  "x15",
		uc.ARM64_REG_X16:  "x16",
		uc.ARM64_REG_X17:  "x17",
		uc.ARM64_REG_X18:  "x18",
		uc.ARM64_REG_X19:  "x19",
		uc.ARM64_REG_X20:  "x20",
		uc.ARM64_REG_X21:  "x21",
		uc.ARM64_REG_X22:  "x22",
		uc.ARM64_REG_X23:  "x23",
		uc.ARM64_REG_X24:  "x24",
		uc.ARM64_REG_X25:  "x25",
		uc.ARM64_REG_X26:  "x26",
		uc.ARM64_REG_X27:  "x27",
		uc.ARM64_REG_X28:  "x28",
		uc.ARM64_REG_FP:   "fp",
		uc.ARM64_REG_LR:   "lr",
		uc.ARM64_REG_SP:   "sp",
		uc.ARM64_REG_PC:   "pc",
		uc.ARM64_REG_NZCV: "nzcv",
	},
}

var regs = &debug.RegTable{
	Prefix: "x",
	Base:   uc.ARM64_REG_X0,
	Count:  29,
	Alias: map[string]int{
		"fp": uc.ARM64_REG_FP,
		"ip": uc.ARM64_REG_IP0,
		"sp": uc.ARM64_REG_SP,
		"lr": uc.ARM64_REG_LR,
	},
}

// Variant is the AArch64 debugger profile.
type Variant struct {
	// Dis defaults to capstone.
	Dis models.Disassembler

	asm *cpus.Keystone
}

func New() *Variant {
	return &Variant{Dis: cpus.NewCapstrArm64()}
}

// UseXArch switches decoding to the pure-Go decoder.
func (v *Variant) UseXArch() {
	v.Dis = &cpus.XArch{Arch: cpus.XArchARM64}
}

func (v *Variant) Name() string                          { return "arm64" }
func (v *Variant) Arch() *models.Arch                    { return Arch }
func (v *Variant) ByteOrder() binary.ByteOrder           { return binary.LittleEndian }
func (v *Variant) CallMnemonic() string                  { return "bl" }
func (v *Variant) MaxWriteWidth() int                    { return 8 }
func (v *Variant) IsAlternate(c cpu.Cpu) (bool, error)   { return false, nil }
func (v *Variant) Disassembler(bool) models.Disassembler { return v.Dis }

func (v *Variant) ResolveRegister(name string) (int, string, bool) {
	enum, ok := regs.Resolve(name)
	return enum, name, ok
}

func (v *Variant) ResolveWriteRegister(name string) (int, bool) {
	return regs.Resolve(name)
}

func (v *Variant) BlockAddr(addr uint64) (uint64, bool) {
	return addr &^ 3, false
}

func (v *Variant) Assembler(bool) models.Assembler {
	if v.asm == nil {
		v.asm = &cpus.Keystone{Arch: ks.ARCH_ARM64, Mode: ks.MODE_LITTLE_ENDIAN}
	}
	return v.asm
}

func regEnum(r arm64asm.Reg) int {
	switch r {
	case arm64asm.X29:
		return uc.ARM64_REG_FP
	case arm64asm.X30:
		return uc.ARM64_REG_LR
	}
	return uc.ARM64_REG_X0 + int(r-arm64asm.X0)
}

// DecodeCall recognizes BL and BLR.
func (v *Variant) DecodeCall(c cpu.Cpu, addr uint64, size uint32) (uint64, bool, error) {
	mem, err := c.MemRead(addr, 4)
	if err != nil {
		return 0, false, err
	}
	inst, err := arm64asm.Decode(mem)
	if err != nil {
		return 0, false, nil
	}
	switch inst.Op {
	case arm64asm.BL:
		if rel, ok := inst.Args[0].(arm64asm.PCRel); ok {
			return uint64(int64(addr) + int64(rel)), true, nil
		}
	case arm64asm.BLR:
		if reg, ok := inst.Args[0].(arm64asm.Reg); ok && reg >= arm64asm.X0 && reg <= arm64asm.X30 {
			target, err := c.RegRead(regEnum(reg))
			if err != nil {
				return 0, false, err
			}
			return target, true, nil
		}
	}
	return 0, false, nil
}

func (v *Variant) Help(w io.Writer, addr uint64) {
	fmt.Fprintf(w, "arm64 debugger, stopped at %#x\n", addr)
	fmt.Fprintln(w, "  mx0-mx28, mfp, mip, msp   show memory at a register [size]")
	fmt.Fprintln(w, "  s(bl)                     run until the next bl")
}

func (v *Variant) WriteHelp(w io.Writer) {
	fmt.Fprintln(w, "  wx0-wx28, wfp, wip, wsp, wlr <value>   write a register")
	fmt.Fprintln(w, "  wb0x<addr>, ws0x<addr>, wi0x<addr>, wl0x<addr> <value>   write byte, short, int, long")
}

func (v *Variant) Close() error {
	if v.asm == nil {
		return nil
	}
	return v.asm.Close()
}
