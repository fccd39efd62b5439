package arm

import (
	"strings"

	uc "github.com/unicorn-engine/unicorn/bindings/go/unicorn"
	"golang.org/x/arch/arm/armasm"

	"github.com/lunixbochs/armdbg/go/models/cpu"
)

// condPassed evaluates an A32 condition code against CPSR flags.
func condPassed(cond uint32, cpsr uint64) bool {
	n, z := cpsr>>31&1 == 1, cpsr>>30&1 == 1
	c, v := cpsr>>29&1 == 1, cpsr>>28&1 == 1
	var ok bool
	switch cond >> 1 {
	case 0:
		ok = z
	case 1:
		ok = c
	case 2:
		ok = n
	case 3:
		ok = v
	case 4:
		ok = c && !z
	case 5:
		ok = n == v
	case 6:
		ok = n == v && !z
	default:
		return true
	}
	if cond&1 == 1 {
		return !ok
	}
	return ok
}

func regEnum(r armasm.Reg) int {
	switch r {
	case armasm.SP:
		return uc.ARM_REG_SP
	case armasm.LR:
		return uc.ARM_REG_LR
	case armasm.PC:
		return uc.ARM_REG_PC
	}
	return uc.ARM_REG_R0 + int(r-armasm.R0)
}

func (v *Variant) DecodeCall(c cpu.Cpu, addr uint64, size uint32) (uint64, bool, error) {
	cpsr, err := c.RegRead(uc.ARM_REG_CPSR)
	if err != nil {
		return 0, false, err
	}
	mem, err := c.MemRead(addr, uint64(size))
	if err != nil {
		return 0, false, err
	}
	if cpsr&thumbBit != 0 {
		return decodeThumbCall(c, addr, mem)
	}
	if len(mem) < 4 {
		return 0, false, nil
	}
	inst, err := armasm.Decode(mem, armasm.ModeARM)
	if err != nil || !strings.HasPrefix(inst.Op.String(), "BL") {
		return 0, false, nil
	}
	if !condPassed(inst.Enc>>28, cpsr) {
		return 0, false, nil
	}
	switch arg := inst.Args[0].(type) {
	case armasm.PCRel:
		return uint64(uint32(int64(addr) + 8 + int64(arg))), true, nil
	case armasm.Reg:
		target, err := c.RegRead(regEnum(arg))
		if err != nil {
			return 0, false, err
		}
		return target &^ 1, true, nil
	}
	return 0, false, nil
}

// decodeThumbCall handles BL and BLX (T1/T2 immediate) and BLX Rm.
func decodeThumbCall(c cpu.Cpu, addr uint64, mem []byte) (uint64, bool, error) {
	if len(mem) < 2 {
		return 0, false, nil
	}
	hw1 := uint32(mem[0]) | uint32(mem[1])<<8
	if hw1&0xff87 == 0x4780 {
		rm := armasm.Reg((hw1 >> 3) & 0xf)
		target, err := c.RegRead(regEnum(armasm.R0 + rm))
		if err != nil {
			return 0, false, err
		}
		return target &^ 1, true, nil
	}
	if hw1&0xf800 != 0xf000 || len(mem) < 4 {
		return 0, false, nil
	}
	hw2 := uint32(mem[2]) | uint32(mem[3])<<8
	bl := hw2&0xd000 == 0xd000
	blx := hw2&0xd001 == 0xc000
	if !bl && !blx {
		return 0, false, nil
	}
	s := (hw1 >> 10) & 1
	j1, j2 := (hw2>>13)&1, (hw2>>11)&1
	i1, i2 := ^(j1^s)&1, ^(j2^s)&1
	imm := s<<24 | i1<<23 | i2<<22 | (hw1&0x3ff)<<12 | (hw2&0x7ff)<<1
	// sign extend from bit 24
	off := int64(int32(imm<<7) >> 7)
	base := addr + 4
	if blx {
		base &^= 3
	}
	return uint64(uint32(int64(base) + off)), true, nil
}
