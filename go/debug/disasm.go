package debug

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/lunixbochs/armdbg/go/models"
)

// Disassemble prints size bytes of code at addr and returns the address after the last whole instruction.
// Undecodable trailing bytes are dropped. If nothing decodes, addr is returned.
func (d *Debugger) Disassemble(addr, size uint64, alternate bool) (uint64, error) {
	if size == 0 {
		return addr, nil
	}
	if size > d.Config.MaxDumpSize {
		return addr, errors.Errorf("window %#x is over the %#x byte limit", size, d.Config.MaxDumpSize)
	}
	mem, err := d.Cpu.MemRead(addr, size)
	if err != nil {
		return addr, errors.Wrapf(err, "MemRead(%#x, %#x) failed", addr, size)
	}
	dis, err := d.Variant.Disassembler(alternate).Dis(mem, addr)
	if err != nil {
		return addr, err
	}
	if len(dis) == 0 {
		d.Errorf("no instructions decoded at %#x\n", addr)
		return addr, nil
	}
	d.Printf("%s\n", strings.Join(models.Disas(dis), "\n"))
	last := dis[len(dis)-1]
	return last.Addr() + uint64(len(last.Bytes())), nil
}

// disassembleAt shows a BlockSize window at a d0x address.
func (d *Debugger) disassembleAt(addr uint64) (uint64, error) {
	aligned, alt := d.Variant.BlockAddr(addr)
	return d.Disassemble(aligned, d.Config.BlockSize, alt)
}
