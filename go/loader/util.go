package loader

import (
	"io"
)

func getMagic(r io.ReaderAt) []byte {
	ret := make([]byte, 4)
	r.ReadAt(ret, 0)
	return ret
}

func pageAlign(n uint64) uint64 {
	return (n + 0xfff) &^ 0xfff
}
