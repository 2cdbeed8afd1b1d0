package meta

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMetadataInstallAndMatch(t *testing.T) {
	m := NewMetadata(3, false)
	require.False(t, m.IsValid())

	addr := uint64(0x1234_5600)
	m.Install(addr)
	require.False(t, m.IsValid(), "Install only stages the tag, state still Invalid until a grant")

	m.SetState(Modified)
	require.True(t, m.IsValid())
	require.Equal(t, Modified, m.State())
	require.True(t, m.Match(addr), "tag-match invariant: tag must match the address just installed")
	require.False(t, m.Match(addr+0x200), "a different line's address must not match")
}

func TestMetadataAddrReconstruction(t *testing.T) {
	// IW=4 -> 16 sets; block offset 6 bits.
	m := NewMetadata(4, false)
	set := uint32(9)
	addr := (uint64(0xABC) << (BlockOffsetBits + 4)) | (uint64(set) << BlockOffsetBits)
	m.Install(addr)
	require.Equal(t, addr, m.Addr(set), "Addr must invert Install's tag split for the same set")
}

func TestMetadataResetClearsDirectory(t *testing.T) {
	m := NewMetadata(0, true)
	m.Install(0x40)
	m.SetState(Shared)
	m.Directory().Add(3)
	require.True(t, m.Directory().Has(3))

	m.Reset()
	require.False(t, m.IsValid())
	require.Equal(t, Invalid, m.State())
	require.False(t, m.Directory().Has(3), "Reset must clear directory bookkeeping (spec.md §3 lifecycle)")
}

func TestMetadataInvalidateKeepDirectory(t *testing.T) {
	m := NewMetadata(0, true)
	m.Install(0x80)
	m.SetState(Modified)
	m.Directory().Add(5)

	m.InvalidateKeepDirectory()
	require.False(t, m.IsValid())
	require.True(t, m.Directory().Has(5), "exclusive-inclusion parents keep the directory after dropping residency")
}

func TestMetadataCopyDoesNotShareMutex(t *testing.T) {
	src := NewMetadata(2, true)
	src.Install(0x100)
	src.SetState(Exclusive)
	src.SetDirty(true)
	src.Directory().Add(1)

	dst := NewMetadata(2, true)
	dst.Copy(src)
	require.True(t, dst.Match(0x100))
	require.Equal(t, Exclusive, dst.State())
	require.True(t, dst.IsDirty())
	require.True(t, dst.Directory().Has(1))

	// Mutating dst's directory must not perturb src's (independent bitsets).
	dst.Directory().Add(2)
	require.False(t, src.Directory().Has(2))

	// Copy buffers must be independently lockable.
	dst.Lock()
	dst.Unlock()
	src.Lock()
	src.Unlock()
}

func TestDirectorySharersEnumeratesAscending(t *testing.T) {
	d := NewDirectory()
	d.Add(5)
	d.Add(1)
	d.Add(62)

	var seen []int32
	d.Sharers(func(id int32) { seen = append(seen, id) })
	require.Equal(t, []int32{1, 5, 62}, seen)
	require.EqualValues(t, 3, d.Count())

	d.Remove(5)
	require.False(t, d.Has(5))
	require.EqualValues(t, 2, d.Count())
}

func TestDirectoryNegativeIDIsNoop(t *testing.T) {
	d := NewDirectory()
	d.Add(-1) // an uncached (core) requester's ID; must never touch the bitmap
	require.False(t, d.Has(-1))
	require.EqualValues(t, 0, d.Count())
}

func TestStateString(t *testing.T) {
	require.Equal(t, "I", Invalid.String())
	require.Equal(t, "S", Shared.String())
	require.Equal(t, "M", Modified.String())
	require.Equal(t, "O", Owned.String())
	require.Equal(t, "E", Exclusive.String())
	require.False(t, Invalid.IsValid())
	require.True(t, Shared.IsValid())
}
