package models

import (
	"encoding/hex"
	"fmt"
	"strings"
)

func printable(p []byte) string {
	o := make([]byte, len(p))
	for i, c := range p {
		if c >= 0x20 && c <= 0x7e {
			o[i] = c
		} else {
			o[i] = '.'
		}
	}
	return string(o)
}

// HexDump renders mem as 16-byte lines: address, hex bytes, printable characters.
func HexDump(base uint64, mem []byte, bits int) []string {
	addrFmt := fmt.Sprintf("0x%%0%dx:", bits/4)
	var out []string
	for i := 0; i < len(mem); i += 16 {
		end := i + 16
		if end > len(mem) {
			end = len(mem)
		}
		line := mem[i:end]
		groups := make([]string, 0, 4)
		for j := 0; j < 16; j += 4 {
			if j >= len(line) {
				groups = append(groups, "        ")
				continue
			}
			k := j + 4
			if k > len(line) {
				k = len(line)
			}
			s := hex.EncodeToString(line[j:k])
			groups = append(groups, s+strings.Repeat(" ", 8-len(s)))
		}
		out = append(out, fmt.Sprintf("%s %s  %s", fmt.Sprintf(addrFmt, base+uint64(i)), strings.Join(groups, " "), printable(line)))
	}
	return out
}
