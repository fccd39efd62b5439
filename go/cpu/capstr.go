package cpu

import (
	cs "github.com/lunixbochs/capstr"
	"github.com/pkg/errors"

	"github.com/lunixbochs/armdbg/go/models"
)

// Capstr disassembles through capstone. One instance handles one arch/mode pair;
// Thumb is a separate instance rather than a runtime switch.
type Capstr struct {
	Arch, Mode int

	cs *cs.Engine
	dc *models.Discache
}

func (c *Capstr) Open() (err error) {
	engine, err := cs.New(c.Arch, c.Mode)
	if err == nil {
		c.cs = engine
		c.dc = models.NewDiscache()
	}
	return errors.Wrap(err, "cs.New() failed")
}

func (c *Capstr) Dis(mem []byte, addr uint64) ([]models.Ins, error) {
	if c.cs == nil {
		if err := c.Open(); err != nil {
			return nil, err
		}
	}
	if dis, ok := c.dc.Get(addr, mem); ok {
		return dis, nil
	}
	// capstone stops at the first undecodable instruction and returns what it had
	dis, err := c.cs.Dis(mem, addr, 0)
	if err != nil && len(dis) == 0 {
		return nil, errors.Wrap(err, "capstone disassembly failed")
	}
	ret := make([]models.Ins, len(dis))
	for i, v := range dis {
		ret[i] = v
	}
	c.dc.Put(addr, mem, ret)
	return ret, nil
}

// NewCapstrArm returns ARM and Thumb disassemblers.
func NewCapstrArm() (arm, thumb *Capstr) {
	return &Capstr{Arch: cs.ARCH_ARM, Mode: cs.MODE_ARM}, &Capstr{Arch: cs.ARCH_ARM, Mode: cs.MODE_THUMB}
}

func NewCapstrArm64() *Capstr {
	return &Capstr{Arch: cs.ARCH_ARM64, Mode: cs.MODE_ARM}
}
