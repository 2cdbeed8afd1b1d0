// Package index implements the pure address -> set mapping functions used
// by a cache array.
package index

import "github.com/arenalabs/cachecoh/internal/meta"

// Func maps (addr, partition) to a set index in [0, 1<<IW).
type Func interface {
	Index(addr uint64, partition uint32) uint32
}

// Norm is the textbook direct-mapped/set-associative index: the IW bits
// immediately above the block offset.
type Norm struct {
	IW uint32
}

func (n Norm) Index(addr uint64, _ uint32) uint32 {
	return uint32((addr >> meta.BlockOffsetBits) & ((1 << n.IW) - 1))
}

// Skewed hashes each partition independently with a partition-specific
// xorshift constant so that addresses which collide in one partition's set
// are decorrelated in the others — the property a skewed cache relies on to
// resist adversarial/side-channel access patterns.
type Skewed struct {
	IW uint32
	Salts []uint64 // one odd salt per partition, fixed at construction
}

// NewSkewed derives P salts from a seed using a simple splitmix64 stream —
// deterministic across runs for reproducible simulation.
func NewSkewed(iw uint32, partitions int, seed uint64) *Skewed {
	salts := make([]uint64, partitions)
	x := seed
	for i := range salts {
		x += 0x9E3779B97F4A7C15
		z := x
		z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
		z = (z ^ (z >> 27)) * 0x94D049BB133111EB
		z = z ^ (z >> 31)
		salts[i] = z | 1 // keep it odd
	}
	return &Skewed{IW: iw, Salts: salts}
}

func (s *Skewed) Index(addr uint64, partition uint32) uint32 {
	salt := s.Salts[int(partition)%len(s.Salts)]
	v := addr >> meta.BlockOffsetBits
	v ^= salt
	v ^= v >> 17
	v *= salt | 1
	v ^= v >> 13
	return uint32(v & ((1 << s.IW) - 1))
}

// Random is a seeded content-addressed permutation: every address maps to a
// pseudo-random but *stable* set via a fixed bijective hash, independent of
// partition. Useful for studying fully-randomized indexing against MIRAGE-
// style remapping attacks.
type Random struct {
	IW uint32
	Seed uint64
}

func (r Random) Index(addr uint64, _ uint32) uint32 {
	v := (addr >> meta.BlockOffsetBits) ^ r.Seed
	v = (v ^ (v >> 33)) * 0xFF51AFD7ED558CCD
	v = (v ^ (v >> 33)) * 0xC4CEB9FE1A85EC53
	v = v ^ (v >> 33)
	return uint32(v & ((1 << r.IW) - 1))
}
