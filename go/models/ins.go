package models

type Ins interface {
	Addr() uint64
	Bytes() []byte
	Mnemonic() string
	OpStr() string
}

// Assembler turns mnemonics into machine code placed at addr.
type Assembler interface {
	Asm(asm string, addr uint64) ([]byte, error)
}

// Disassembler decodes as many whole instructions from mem as it can.
// It may return a short list along with a nil error when the tail of mem doesn't decode.
type Disassembler interface {
	Dis(mem []byte, addr uint64) ([]Ins, error)
}
