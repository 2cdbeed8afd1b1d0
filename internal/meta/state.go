// Package meta implements the per-line protocol state and data-block model
// shared by every cache in a hierarchy: the coherence state enum, the
// sharer directory, and the metadata/data line types built on top of them.
package meta

import (
	"github.com/bits-and-blooms/bitset"
)

// State is one of the five coherence states a line can occupy. Not every
// policy uses every state: MI only ever produces Invalid/Modified, MSI adds
// Shared, MESI adds Exclusive. Owned is reserved for a future MOESI policy
// and is never produced by the policies in internal/policy today.
type State uint8

const (
	Invalid State = iota
	Shared
	Modified
	Owned
	Exclusive
)

func (s State) String() string {
	switch s {
	case Invalid:
		return "I"
	case Shared:
		return "S"
	case Modified:
		return "M"
	case Owned:
		return "O"
	case Exclusive:
		return "E"
	default:
		return "?"
	}
}

func (s State) IsValid() bool { return s != Invalid }

// MaxSharers bounds the directory bitmap: an inner port refuses to register
// a 64th coherent client (internal/coherence.Cache.Connect panics on it).
const MaxSharers = 63

// Directory tracks which inner caches (by coh-id, 0..62) may currently hold
// a line in a non-Invalid state. It is a superset of the true sharer set
// (directory fidelity, spec.md §3): entries are added eagerly on grant and
// removed only when a probe confirms invalidation.
type Directory struct {
	bits *bitset.BitSet
}

func NewDirectory() *Directory {
	return &Directory{bits: bitset.New(MaxSharers)}
}

func (d *Directory) Add(id int32) {
	if id < 0 {
		return
	}
	d.bits.Set(uint(id))
}

func (d *Directory) Remove(id int32) {
	if id < 0 {
		return
	}
	d.bits.Clear(uint(id))
}

func (d *Directory) Has(id int32) bool {
	if id < 0 {
		return false
	}
	return d.bits.Test(uint(id))
}

func (d *Directory) Clear() { d.bits.ClearAll() }

// Sharers calls fn for every coh-id currently marked present, in ascending
// order. Probe fan-out does not use it; it asks Has per inner id instead.
func (d *Directory) Sharers(fn func(id int32)) {
	for i, e := d.bits.NextSet(0); e; i, e = d.bits.NextSet(i + 1) {
		fn(int32(i))
	}
}

func (d *Directory) Count() uint { return d.bits.Count() }
