package debug

import (
	"github.com/pkg/errors"

	"github.com/lunixbochs/armdbg/go/models/cpu"
)

// RunSnippet assembles asm in the current encoding mode and runs it once from the scratch region.
// PC is restored afterwards; every other register keeps whatever the snippet did to it.
// Nothing is written to the backend if assembly fails.
func (d *Debugger) RunSnippet(asm string) error {
	c, cfg := d.Cpu, d.Config
	alt, err := d.Variant.IsAlternate(c)
	if err != nil {
		return err
	}
	code, err := d.Variant.Assembler(alt).Asm(asm, cfg.ScratchBase)
	if err != nil {
		return errors.Wrap(err, "assembly failed")
	}
	if uint64(len(code)) > cfg.ScratchSize {
		return errors.Errorf("snippet too large (%#x > %#x)", len(code), cfg.ScratchSize)
	}
	if !d.scratch {
		if err := c.MemMap(cfg.ScratchBase, cfg.ScratchSize, cpu.PROT_ALL); err != nil {
			return errors.Wrap(err, "mapping scratch memory failed")
		}
		d.scratch = true
	}
	if err := c.MemWrite(cfg.ScratchBase, code); err != nil {
		return errors.Wrap(err, "MemWrite() failed")
	}
	pcReg := d.Variant.Arch().PC
	pc, err := c.RegRead(pcReg)
	if err != nil {
		return errors.Wrap(err, "RegRead(pc) failed")
	}
	begin := cfg.ScratchBase
	if alt {
		begin |= 1
	}
	d.logf("running %d byte snippet at %#x\n", len(code), cfg.ScratchBase)
	runErr := c.Start(begin, cfg.ScratchBase+uint64(len(code)))
	if err := c.RegWrite(pcReg, pc); err != nil {
		return errors.Wrap(err, "restoring pc failed")
	}
	return errors.Wrap(runErr, "snippet failed")
}
