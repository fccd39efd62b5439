package models

import (
	"bytes"
)

// DiscacheLimit bounds how many decode windows a Discache keeps before it starts over.
const DiscacheLimit = 4096

type discacheEntry struct {
	mem []byte
	dis []Ins
}

// Discache remembers decoded windows by address. An entry only hits when the bytes are unchanged,
// so code patched by snippets or memory writes is decoded again.
// Not safe for concurrent use; the debugger drives it from the emulator thread.
type Discache struct {
	cache map[uint64]discacheEntry
}

func NewDiscache() *Discache {
	return &Discache{cache: make(map[uint64]discacheEntry)}
}

// Get returns the instructions previously decoded from exactly mem at addr.
func (d *Discache) Get(addr uint64, mem []byte) ([]Ins, bool) {
	ent, ok := d.cache[addr]
	if !ok || !bytes.Equal(mem, ent.mem) {
		return nil, false
	}
	return ent.dis, true
}

func (d *Discache) Put(addr uint64, mem []byte, dis []Ins) {
	if len(d.cache) >= DiscacheLimit {
		if _, ok := d.cache[addr]; !ok {
			d.cache = make(map[uint64]discacheEntry)
		}
	}
	d.cache[addr] = discacheEntry{mem: append([]byte(nil), mem...), dis: dis}
}

func (d *Discache) Len() int {
	return len(d.cache)
}
