package cpu

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// PackUint encodes the low size bytes of n. size must be 1, 2, 4 or 8.
func PackUint(order binary.ByteOrder, size int, buf []byte, n uint64) ([]byte, error) {
	if buf == nil {
		buf = make([]byte, size)
	} else if len(buf) < size {
		return nil, errors.Errorf("buffer too small (%d < %d)", len(buf), size)
	}
	switch size {
	case 8:
		order.PutUint64(buf, n)
	case 4:
		order.PutUint32(buf, uint32(n))
	case 2:
		order.PutUint16(buf, uint16(n))
	case 1:
		buf[0] = byte(n)
	default:
		return nil, errors.Errorf("unsupported uint size: %d", size)
	}
	return buf[:size], nil
}

func UnpackUint(order binary.ByteOrder, size int, buf []byte) (uint64, error) {
	if len(buf) < size {
		return 0, errors.Errorf("buffer too small (%d < %d)", len(buf), size)
	}
	switch size {
	case 8:
		return order.Uint64(buf), nil
	case 4:
		return uint64(order.Uint32(buf)), nil
	case 2:
		return uint64(order.Uint16(buf)), nil
	case 1:
		return uint64(buf[0]), nil
	default:
		return 0, errors.Errorf("unsupported uint size: %d", size)
	}
}

// ReadUint reads a size-byte unsigned integer from backend memory.
func ReadUint(c Cpu, order binary.ByteOrder, addr uint64, size int) (uint64, error) {
	var buf [8]byte
	if size > len(buf) {
		return 0, errors.Errorf("uint size too large: %d > 8", size)
	}
	if err := c.MemReadInto(buf[:size], addr); err != nil {
		return 0, err
	}
	return UnpackUint(order, size, buf[:size])
}

// WriteUint stores the low size bytes of val to backend memory.
func WriteUint(c Cpu, order binary.ByteOrder, addr uint64, size int, val uint64) error {
	var buf [8]byte
	if size > len(buf) {
		return errors.Errorf("uint size too large: %d > 8", size)
	}
	p, err := PackUint(order, size, buf[:], val)
	if err != nil {
		return err
	}
	return c.MemWrite(addr, p)
}
