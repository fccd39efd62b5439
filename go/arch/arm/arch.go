package arm

import (
	"encoding/binary"
	"fmt"
	"io"

	ks "github.com/keystone-engine/keystone/bindings/go/keystone"
	uc "github.com/unicorn-engine/unicorn/bindings/go/unicorn"

	cpus "github.com/lunixbochs/armdbg/go/cpu"
	"github.com/lunixbochs/armdbg/go/debug"
	"github.com/lunixbochs/armdbg/go/models"
	"github.com/lunixbochs/armdbg/go/models/cpu"
)

var Arch = &models.Arch{
	Name: "arm",
	Bits: 32,
	PC:   uc.ARM_REG_PC,
	SP:   uc.ARM_REG_SP,
	LR:   uc.ARM_REG_LR,
	Regs: map[int]string{
		uc.ARM_REG_R0:   "r0",
		uc.ARM_REG_R1:   "r1",
		uc.ARM_REG_R2:   "r2",
		uc.ARM_REG_R3:   "r3",
		uc.ARM_REG_R4:   "r4",
		uc.ARM_REG_R5:   "r5",
		uc.ARM_REG_R6:   "r6",
		uc.ARM_REG_R7:   "r7",
		uc.ARM_REG_R8:   "r8",
		uc.ARM_REG_R9:   "r9",
		uc.ARM_REG_R10:  "r10",
		uc.ARM_REG_R11:  "r11",
		uc.ARM_REG_R12:  "r12",
		uc.ARM_REG_SP:   "sp",
		uc.ARM_REG_LR:   "lr",
		uc.ARM_REG_PC:   "pc",
		uc.ARM_REG_CPSR: "cpsr",
	},
}

var regs = &debug.RegTable{
	Prefix: "r",
	Base:   uc.ARM_REG_R0,
	Count:  13,
	Alias: map[string]int{
		"fp": uc.ARM_REG_R11,
		"ip": uc.ARM_REG_R12,
		"sp": uc.ARM_REG_SP,
		"lr": uc.ARM_REG_LR,
	},
}

// CPSR.T
const thumbBit = 1 << 5

// Variant is the 32-bit ARM/Thumb debugger profile.
type Variant struct {
	// ArmDis and ThumbDis decode each instruction set. New uses capstone for both.
	ArmDis, ThumbDis models.Disassembler

	armAsm, thumbAsm *cpus.Keystone
}

func New() *Variant {
	arm, thumb := cpus.NewCapstrArm()
	return &Variant{ArmDis: arm, ThumbDis: thumb}
}

// UseXArch switches ARM decoding to the pure-Go decoder. Thumb stays on capstone.
func (v *Variant) UseXArch() {
	v.ArmDis = &cpus.XArch{Arch: cpus.XArchARM}
}

func (v *Variant) Name() string                { return "arm" }
func (v *Variant) Arch() *models.Arch          { return Arch }
func (v *Variant) ByteOrder() binary.ByteOrder { return binary.LittleEndian }
func (v *Variant) CallMnemonic() string        { return "blx" }
func (v *Variant) MaxWriteWidth() int          { return 4 }

func (v *Variant) ResolveRegister(name string) (int, string, bool) {
	enum, ok := regs.Resolve(name)
	return enum, name, ok
}

func (v *Variant) ResolveWriteRegister(name string) (int, bool) {
	return regs.Resolve(name)
}

// odd addresses are Thumb
func (v *Variant) BlockAddr(addr uint64) (uint64, bool) {
	return addr &^ 1, addr&1 == 1
}

func (v *Variant) IsAlternate(c cpu.Cpu) (bool, error) {
	cpsr, err := c.RegRead(uc.ARM_REG_CPSR)
	if err != nil {
		return false, err
	}
	return cpsr&thumbBit != 0, nil
}

func (v *Variant) Assembler(thumb bool) models.Assembler {
	if thumb {
		if v.thumbAsm == nil {
			v.thumbAsm = &cpus.Keystone{Arch: ks.ARCH_ARM, Mode: ks.MODE_THUMB}
		}
		return v.thumbAsm
	}
	if v.armAsm == nil {
		v.armAsm = &cpus.Keystone{Arch: ks.ARCH_ARM, Mode: ks.MODE_ARM}
	}
	return v.armAsm
}

func (v *Variant) Disassembler(thumb bool) models.Disassembler {
	if thumb {
		return v.ThumbDis
	}
	return v.ArmDis
}

func (v *Variant) Help(w io.Writer, addr uint64) {
	fmt.Fprintf(w, "arm debugger, stopped at %#x\n", addr)
	fmt.Fprintln(w, "  mr0-mr12, mfp, mip, msp   show memory at a register [size]")
	fmt.Fprintln(w, "  d0x<addr>                 disassemble, odd addresses as thumb")
	fmt.Fprintln(w, "  s(blx)                    run until the next blx")
}

func (v *Variant) WriteHelp(w io.Writer) {
	fmt.Fprintln(w, "  wr0-wr12, wfp, wip, wsp, wlr <value>   write a register")
	fmt.Fprintln(w, "  wb0x<addr>, ws0x<addr>, wi0x<addr> <value>   write byte, short, int")
}

// Close releases the assemblers.
func (v *Variant) Close() error {
	var err error
	for _, k := range []*cpus.Keystone{v.armAsm, v.thumbAsm} {
		if k != nil {
			if cerr := k.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}
	}
	return err
}
