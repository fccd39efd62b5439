package models

import (
	"io"
	"os"
)

type Config struct {
	// Output receives registers, disassembly and memory. Errors receives diagnostics.
	Output io.Writer
	Errors io.Writer

	Color   bool
	Verbose bool

	// DumpSize is the default length of a raw memory dump.
	DumpSize uint64
	// MaxDumpSize caps raw dumps and disassembly windows.
	MaxDumpSize uint64
	// BlockSize is the window shown by d0x<addr>.
	BlockSize uint64
	// Strsize caps how far a C string is followed looking for NUL.
	Strsize int

	// snippets are assembled into and run from this region
	ScratchBase uint64
	ScratchSize uint64
}

const (
	DefaultDumpSize    = 0x70
	DefaultMaxDumpSize = 0x100000
	DefaultBlockSize   = 0x30
	DefaultStrsize     = 0x1000
	DefaultScratchBase = 0xfff00000
	DefaultScratchSize = 0x1000
)

// Init fills unset fields with defaults.
func (c *Config) Init() *Config {
	if c.Output == nil {
		c.Output = os.Stdout
	}
	if c.Errors == nil {
		c.Errors = os.Stderr
	}
	if c.DumpSize == 0 {
		c.DumpSize = DefaultDumpSize
	}
	if c.MaxDumpSize == 0 {
		c.MaxDumpSize = DefaultMaxDumpSize
	}
	if c.BlockSize == 0 {
		c.BlockSize = DefaultBlockSize
	}
	if c.Strsize == 0 {
		c.Strsize = DefaultStrsize
	}
	if c.ScratchBase == 0 {
		c.ScratchBase = DefaultScratchBase
	}
	if c.ScratchSize == 0 {
		c.ScratchSize = DefaultScratchSize
	}
	return c
}
