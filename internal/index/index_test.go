package index

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arenalabs/cachecoh/internal/meta"
)

func TestNormIndexMasksIWBitsAboveOffset(t *testing.T) {
	n := Norm{IW: 3} // 8 sets
	addr := uint64(0x5) << meta.BlockOffsetBits
	require.EqualValues(t, 5, n.Index(addr, 0))

	// Bits above IW must not leak into the set index.
	addr2 := addr | (uint64(0xFF) << (meta.BlockOffsetBits + 3))
	require.EqualValues(t, 5, n.Index(addr2, 0))
}

func TestSkewedDecorrelatesPartitions(t *testing.T) {
	s := NewSkewed(6, 4, 0xC0FFEE)
	addrs := []uint64{0x1000, 0x2000, 0x3000, 0x4000, 0x5000}

	// Two addresses that collide in partition 0 should not collide in
	// every other partition too (the whole point of skewing).
	collideEverywhere := true
	for i := 1; i < len(addrs); i++ {
		for p := uint32(1); p < 4; p++ {
			if s.Index(addrs[0], p) != s.Index(addrs[i], p) {
				collideEverywhere = false
			}
		}
	}
	require.False(t, collideEverywhere, "skewed salts must decorrelate at least some partition pairs")
}

func TestSkewedWithOnePartitionIsDeterministic(t *testing.T) {
	// spec.md §8 "With P=1, the skewed cache reduces exactly to the
	// set-associative case (same hit/miss trace)" — a single-partition
	// skewed index must still be a pure, stable function of the address.
	s := NewSkewed(4, 1, 7)
	addr := uint64(0x9999)
	first := s.Index(addr, 0)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, s.Index(addr, 0))
	}
}

func TestRandomIndexIsStablePerAddress(t *testing.T) {
	r := Random{IW: 5, Seed: 42}
	addr := uint64(0xBEEF)
	first := r.Index(addr, 0)
	for i := 0; i < 5; i++ {
		require.Equal(t, first, r.Index(addr, 0))
	}
	require.Less(t, first, uint32(1<<5))
}

func TestRandomDifferentSeedsLikelyDiffer(t *testing.T) {
	a := Random{IW: 10, Seed: 1}
	b := Random{IW: 10, Seed: 2}
	addr := uint64(0x1234)
	require.NotEqual(t, a.Index(addr, 0), b.Index(addr, 0))
}
