package debug

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/lunixbochs/armdbg/go/models"
	"github.com/lunixbochs/armdbg/go/models/cpu"
)

type Format int

const (
	FormatHex Format = iota
	FormatCString
	FormatStdString
	FormatClassName
)

func (f Format) String() string {
	switch f {
	case FormatCString:
		return "cstring"
	case FormatStdString:
		return "std::string"
	case FormatClassName:
		return "class"
	default:
		return "hex"
	}
}

// command suffixes, longest first so "std" isn't read as "s"
var formatSuffixes = []struct {
	suffix string
	format Format
}{
	{"objc", FormatClassName},
	{"std", FormatStdString},
	{"s", FormatCString},
}

// MemoryView is a parsed m command.
type MemoryView struct {
	Addr   uint64
	Size   uint64
	Format Format
	// Name is the register or literal the address came from.
	Name string
}

// Block is the result of reading a MemoryView.
type Block struct {
	Addr   uint64
	Format Format
	// Data is the raw bytes for hex dumps, or the decoded payload for strings.
	Data []byte
	// Consumed counts every byte interpreted at Addr, including length prefixes and terminators.
	Consumed uint64
	// Truncated is set when a string hit the size cap.
	Truncated bool
}

// Memory reads and writes typed values through the backend.
type Memory struct {
	Cpu     cpu.Cpu
	Order   binary.ByteOrder
	PtrSize int
	Strsize int
	// MaxSize limits raw reads. Zero means no limit.
	MaxSize uint64
	Classes ClassDecoder
}

func (m *Memory) ReadPtr(addr uint64) (uint64, error) {
	ptr, err := cpu.ReadUint(m.Cpu, m.Order, addr, m.PtrSize)
	return ptr, errors.Wrapf(err, "pointer read at %#x failed", addr)
}

const cstringChunk = 0x40

// ReadCString reads up to the first NUL, at most Strsize bytes.
// The terminator is not included in the result.
func (m *Memory) ReadCString(addr uint64) ([]byte, bool, error) {
	var out []byte
	buf := make([]byte, cstringChunk)
	for len(out) < m.Strsize {
		n := cstringChunk
		if left := m.Strsize - len(out); left < n {
			n = left
		}
		chunk := buf[:n]
		pos := addr + uint64(len(out))
		if err := m.Cpu.MemReadInto(chunk, pos); err != nil {
			// the string may end right before unmapped memory
			if chunk, err = m.readBytewise(pos, n); len(chunk) == 0 {
				return nil, false, errors.Wrapf(err, "string read at %#x failed", pos)
			}
		}
		for i, c := range chunk {
			if c == 0 {
				return append(out, chunk[:i]...), false, nil
			}
		}
		out = append(out, chunk...)
		if len(chunk) < n {
			return nil, false, errors.Errorf("unterminated string at %#x", addr)
		}
	}
	return out, true, nil
}

// readBytewise returns the readable prefix of addr:addr+n, stopping after a NUL.
func (m *Memory) readBytewise(addr uint64, n int) ([]byte, error) {
	var out []byte
	var b [1]byte
	for i := 0; i < n; i++ {
		if err := m.Cpu.MemReadInto(b[:], addr+uint64(i)); err != nil {
			return out, err
		}
		out = append(out, b[0])
		if b[0] == 0 {
			break
		}
	}
	return out, nil
}

// libc++ std::string layouts
type stdShort struct {
	Size byte
}

type stdLong32 struct {
	Cap, Size, Data uint32
}

type stdLong64 struct {
	Cap, Size, Data uint64
}

// ReadStdString decodes a libc++ std::string.
// The short form is a size byte with bit 0 clear followed by inline data.
// The long form is {cap|1, size, data} in pointer-sized words.
func (m *Memory) ReadStdString(addr uint64) (data []byte, consumed uint64, truncated bool, err error) {
	var short stdShort
	if err := models.StrucAt(m.Cpu, m.Order, addr).Unpack(&short); err != nil {
		return nil, 0, false, errors.Wrapf(err, "string header read at %#x failed", addr)
	}
	var size, ptr, header uint64
	if short.Size&1 == 0 {
		size, ptr, header = uint64(short.Size>>1), addr+1, 1
	} else if m.PtrSize == 8 {
		var long stdLong64
		if err := models.StrucAt(m.Cpu, m.Order, addr).Unpack(&long); err != nil {
			return nil, 0, false, errors.Wrapf(err, "string header read at %#x failed", addr)
		}
		size, ptr, header = long.Size, long.Data, 24
	} else {
		var long stdLong32
		if err := models.StrucAt(m.Cpu, m.Order, addr).Unpack(&long); err != nil {
			return nil, 0, false, errors.Wrapf(err, "string header read at %#x failed", addr)
		}
		size, ptr, header = uint64(long.Size), uint64(long.Data), 12
	}
	if size > uint64(m.Strsize) {
		size, truncated = uint64(m.Strsize), true
	}
	data = make([]byte, size)
	if err := m.Cpu.MemReadInto(data, ptr); err != nil {
		return nil, 0, false, errors.Wrapf(err, "string data read at %#x failed", ptr)
	}
	return data, header + size, truncated, nil
}

// Read interprets the memory described by view.
func (m *Memory) Read(view *MemoryView) (*Block, error) {
	if view.Addr == 0 {
		return nil, errors.Errorf("%s is a null pointer", view.Name)
	}
	b := &Block{Addr: view.Addr, Format: view.Format}
	var err error
	switch view.Format {
	case FormatHex:
		if m.MaxSize > 0 && view.Size > m.MaxSize {
			return nil, errors.Errorf("size %#x is over the %#x byte limit", view.Size, m.MaxSize)
		}
		b.Data = make([]byte, view.Size)
		if err = m.Cpu.MemReadInto(b.Data, view.Addr); err != nil {
			return nil, errors.Wrapf(err, "read at %#x failed", view.Addr)
		}
		b.Consumed = view.Size
	case FormatCString:
		if b.Data, b.Truncated, err = m.ReadCString(view.Addr); err != nil {
			return nil, err
		}
		b.Consumed = uint64(len(b.Data))
		if !b.Truncated {
			b.Consumed++
		}
	case FormatStdString:
		if b.Data, b.Consumed, b.Truncated, err = m.ReadStdString(view.Addr); err != nil {
			return nil, err
		}
	case FormatClassName:
		if m.Classes == nil {
			return nil, errors.New("no class decoder configured")
		}
		name, err := m.Classes.ClassName(m, view.Addr)
		if err != nil {
			return nil, err
		}
		b.Data = []byte(name)
	default:
		return nil, errors.Errorf("unknown memory format: %d", view.Format)
	}
	return b, nil
}

// Write stores the low width bytes of val at addr. width is 1, 2, 4 or 8.
func (m *Memory) Write(addr, val uint64, width int) error {
	switch width {
	case 1, 2, 4, 8:
	default:
		return errors.Errorf("bad write width: %d", width)
	}
	if err := cpu.WriteUint(m.Cpu, m.Order, addr, width, val); err != nil {
		return errors.Wrapf(err, "write at %#x failed", addr)
	}
	return nil
}

// Print renders a block the way the m command shows it.
func (b *Block) Print(w io.Writer, bits int) {
	switch b.Format {
	case FormatHex:
		fmt.Fprintln(w, strings.Join(models.HexDump(b.Addr, b.Data, bits), "\n"))
	case FormatClassName:
		fmt.Fprintf(w, "%#x: %s\n", b.Addr, b.Data)
	default:
		s := models.Repr(b.Data, 0)
		if b.Truncated {
			s += "..."
		}
		fmt.Fprintf(w, "%#x: %s\n", b.Addr, s)
	}
}
