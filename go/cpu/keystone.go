package cpu

import (
	ks "github.com/keystone-engine/keystone/bindings/go/keystone"
	"github.com/pkg/errors"
)

// Keystone is a lazily opened assembler for one arch/mode pair.
type Keystone struct {
	Arch ks.Architecture
	Mode ks.Mode
	ks   *ks.Keystone
}

func (k *Keystone) Open() (err error) {
	k.ks, err = ks.New(k.Arch, k.Mode)
	return errors.Wrap(err, "ks.New() failed")
}

func (k *Keystone) Asm(asm string, addr uint64) ([]byte, error) {
	if k.ks == nil {
		if err := k.Open(); err != nil {
			return nil, err
		}
	}
	out, _, ok := k.ks.Assemble(asm, addr)
	if !ok {
		return nil, errors.Wrap(k.ks.LastError(), "ks.Assemble() failed")
	}
	if len(out) == 0 {
		return nil, errors.Errorf("no instructions in %q", asm)
	}
	return out, nil
}

func (k *Keystone) Close() error {
	if k.ks == nil {
		return nil
	}
	err := k.ks.Close()
	k.ks = nil
	return errors.Wrap(err, "ks.Close() failed")
}
