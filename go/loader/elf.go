package loader

import (
	"bytes"
	"debug/elf"
	"io"

	"github.com/pkg/errors"

	"github.com/lunixbochs/armdbg/go/models"
	"github.com/lunixbochs/armdbg/go/models/cpu"
)

var machineMap = map[elf.Machine]string{
	elf.EM_ARM:     "arm",
	elf.EM_AARCH64: "arm64",
}

type ElfImage struct {
	imageHeader
	file *elf.File
}

var elfMagic = []byte{0x7f, 0x45, 0x4c, 0x46}

func MatchElf(r io.ReaderAt) bool {
	return bytes.Equal(getMagic(r), elfMagic)
}

func NewElfImage(r io.ReaderAt) (*ElfImage, error) {
	file, err := elf.NewFile(r)
	if err != nil {
		return nil, errors.Wrap(err, "elf.NewFile() failed")
	}
	var bits int
	switch file.Class {
	case elf.ELFCLASS32:
		bits = 32
	case elf.ELFCLASS64:
		bits = 64
	default:
		return nil, errors.New("unknown ELF class")
	}
	machineName, ok := machineMap[file.Machine]
	if !ok {
		return nil, errors.Errorf("unsupported machine: %s", file.Machine)
	}
	e := &ElfImage{
		imageHeader: imageHeader{
			arch:      machineName,
			bits:      bits,
			byteOrder: file.ByteOrder,
			entry:     file.Entry,
		},
		file: file,
	}
	e.getSyms = e.getSymbols
	return e, nil
}

func elfProt(flags elf.ProgFlag) int {
	prot := cpu.PROT_NONE
	if flags&elf.PF_R != 0 {
		prot |= cpu.PROT_READ
	}
	if flags&elf.PF_W != 0 {
		prot |= cpu.PROT_WRITE
	}
	if flags&elf.PF_X != 0 {
		prot |= cpu.PROT_EXEC
	}
	return prot
}

func (e *ElfImage) Segments() ([]Segment, error) {
	ret := make([]Segment, 0, len(e.file.Progs))
	for _, prog := range e.file.Progs {
		if prog.Type != elf.PT_LOAD {
			continue
		}
		data := make([]byte, prog.Filesz)
		if _, err := prog.ReadAt(data, 0); err != nil && err != io.EOF {
			return nil, errors.Wrapf(err, "failed to read segment at %#x", prog.Vaddr)
		}
		ret = append(ret, Segment{
			Addr: prog.Vaddr,
			Size: prog.Memsz,
			Data: data,
			Prot: elfProt(prog.Flags),
		})
	}
	return ret, nil
}

func (e *ElfImage) getSymbols() ([]models.Symbol, error) {
	var symbols []models.Symbol
	add := func(syms []elf.Symbol) {
		for _, s := range syms {
			if s.Name == "" || s.Value == 0 {
				continue
			}
			t := elf.ST_TYPE(s.Info)
			if t != elf.STT_FUNC && t != elf.STT_OBJECT && t != elf.STT_NOTYPE {
				continue
			}
			symbols = append(symbols, models.Symbol{
				Name:  s.Name,
				Start: s.Value,
				End:   s.Value + s.Size,
			})
		}
	}
	// stripped files have neither table
	if syms, err := e.file.Symbols(); err == nil {
		add(syms)
	} else if err != elf.ErrNoSymbols {
		return nil, errors.Wrap(err, "failed to read symbols")
	}
	if dyn, err := e.file.DynamicSymbols(); err == nil {
		add(dyn)
	}
	if symbols == nil {
		symbols = []models.Symbol{}
	}
	return symbols, nil
}
