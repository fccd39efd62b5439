package debug

import (
	"github.com/pkg/errors"

	"github.com/lunixbochs/armdbg/go/models"
)

// ClassDecoder names the runtime class of the object at addr.
type ClassDecoder interface {
	ClassName(m *Memory, obj uint64) (string, error)
}

// Objective-C runtime layout constants (arm64 non-pointer isa, objc4 class_rw_t)
const (
	objcIsaMask64      = 0x0000000ffffffff8
	objcFastDataMask64 = 0x00007ffffffffff8
	objcFastDataMask32 = 0xfffffffc
	objcRWRealized     = 1 << 31
)

type classRW struct {
	Flags   uint32
	Version uint32
}

type classRO32 struct {
	Flags         uint32
	InstanceStart uint32
	InstanceSize  uint32
	IvarLayout    uint32
	Name          uint32
}

type classRO64 struct {
	Flags         uint32
	InstanceStart uint32
	InstanceSize  uint32
	Reserved      uint32
	IvarLayout    uint64
	Name          uint64
}

// ObjcClassDecoder follows obj->isa->data()->ro->name.
type ObjcClassDecoder struct{}

func (o *ObjcClassDecoder) ClassName(m *Memory, obj uint64) (string, error) {
	ps := uint64(m.PtrSize)
	isa, err := m.ReadPtr(obj)
	if err != nil {
		return "", err
	}
	dataMask := uint64(objcFastDataMask32)
	if ps == 8 {
		isa &= objcIsaMask64
		dataMask = objcFastDataMask64
	}
	if isa == 0 {
		return "", errors.Errorf("%#x has a null isa", obj)
	}
	// isa, superclass, cache (two words), bits
	bits, err := m.ReadPtr(isa + 4*ps)
	if err != nil {
		return "", err
	}
	data := bits & dataMask
	if data == 0 {
		return "", errors.Errorf("class %#x has no data", isa)
	}
	var rw classRW
	if err := models.StrucAt(m.Cpu, m.Order, data).Unpack(&rw); err != nil {
		return "", errors.Wrapf(err, "class_rw_t read at %#x failed", data)
	}
	ro := data
	if rw.Flags&objcRWRealized != 0 {
		if ro, err = m.ReadPtr(data + 8); err != nil {
			return "", err
		}
	}
	var name uint64
	if ps == 8 {
		var ro64 classRO64
		err = models.StrucAt(m.Cpu, m.Order, ro).Unpack(&ro64)
		name = ro64.Name
	} else {
		var ro32 classRO32
		err = models.StrucAt(m.Cpu, m.Order, ro).Unpack(&ro32)
		name = uint64(ro32.Name)
	}
	if err != nil {
		return "", errors.Wrapf(err, "class_ro_t read at %#x failed", ro)
	}
	s, _, err := m.ReadCString(name)
	if err != nil {
		return "", err
	}
	return string(s), nil
}
