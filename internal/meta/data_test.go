package meta

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDataBytesRoundTrip(t *testing.T) {
	d := NewData(64)
	require.Equal(t, 8, d.NumWords())

	b := d.Bytes()
	require.Len(t, b, 64)
	for i := range b {
		b[i] = byte(i)
	}
	require.EqualValues(t, 0x0706050403020100, d.ReadWord(0))
}

func TestDataCopy(t *testing.T) {
	a := NewData(16)
	b := NewData(16)
	a.WriteWord(0, 0xDEADBEEF)
	a.WriteWord(1, 0xCAFEBABE)
	b.Copy(a)
	require.Equal(t, a.ReadWord(0), b.ReadWord(0))
	require.Equal(t, a.ReadWord(1), b.ReadWord(1))
}

func TestDataCopySizeMismatchPanics(t *testing.T) {
	a := NewData(16)
	b := NewData(32)
	require.Panics(t, func() { b.Copy(a) })
}

func TestDataWriteMasked(t *testing.T) {
	d := NewData(32) // 4 words
	d.WriteWord(0, 1)
	d.WriteWord(1, 2)
	d.WriteWord(2, 3)
	d.WriteWord(3, 4)

	d.WriteMasked([]uint64{100, 200, 300, 400}, 0b0101) // only words 0 and 2
	require.EqualValues(t, 100, d.ReadWord(0))
	require.EqualValues(t, 2, d.ReadWord(1), "unmasked word must be left untouched")
	require.EqualValues(t, 300, d.ReadWord(2))
	require.EqualValues(t, 4, d.ReadWord(3))
}

func TestDataFromWordsSharesBacking(t *testing.T) {
	words := make([]uint64, 2)
	d := NewDataFromWords(words)
	d.WriteWord(0, 7)
	require.EqualValues(t, 7, words[0], "NewDataFromWords must wrap without copying, per internal/arena's slab carving")
}
