package array

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arenalabs/cachecoh/internal/meta"
)

func TestNormHitMiss(t *testing.T) {
	a := NewNorm(3, 4, 0, true, 64, false) // IW=3 -> 8 sets, 4 ways
	require.EqualValues(t, 8, a.NumSets())
	require.EqualValues(t, 4, a.NumWays())
	require.EqualValues(t, 4, a.RegularWays())
	require.True(t, a.HasData())

	addr := uint64(0x40) // set 1, offset 0
	set := uint32(1)
	_, ok := a.Hit(addr, set)
	require.False(t, ok, "nothing installed yet")

	m := a.GetMeta(set, 0)
	m.Install(addr)
	m.SetState(meta.Shared)

	w, ok := a.Hit(addr, set)
	require.True(t, ok)
	require.EqualValues(t, 0, w)
}

func TestNormExtendedWaysExcludedFromRegular(t *testing.T) {
	a := NewNorm(2, 4, 2, false, 64, true) // 4 regular + 2 extended ways
	require.EqualValues(t, 6, a.NumWays())
	require.EqualValues(t, 4, a.RegularWays())

	for w := uint32(0); w < a.NumWays(); w++ {
		m := a.GetMeta(0, w)
		if w < a.RegularWays() {
			require.False(t, m.Extended())
		} else {
			require.True(t, m.Extended(), "ways beyond RegularWays must be flagged extended")
		}
	}
}

func TestNormMetadataOnlyHasNoData(t *testing.T) {
	a := NewNorm(2, 4, 0, false, 64, false)
	require.False(t, a.HasData())
	require.Nil(t, a.GetData(0, 0), "a metadata-only array must report no data block (spec.md §3)")
}

func TestNewVictimIsSingleSetFullyAssociative(t *testing.T) {
	v := NewVictim(8, true, 64, false)
	require.EqualValues(t, 1, v.NumSets())
	require.EqualValues(t, 8, v.RegularWays())
	require.EqualValues(t, 0, v.IndexWidth())
}

func TestHitFirstMatchWins(t *testing.T) {
	a := NewNorm(1, 2, 0, false, 64, false)
	addr := uint64(0x80)
	a.GetMeta(0, 0).Install(addr)
	a.GetMeta(0, 0).SetState(meta.Shared)
	w, ok := a.Hit(addr, 0)
	require.True(t, ok)
	require.EqualValues(t, 0, w)
}
