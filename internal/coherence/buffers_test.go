package coherence

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMetaBufferPoolConservesCount(t *testing.T) {
	p := newMetaBufferPool(2, 3, false)

	a := p.get()
	b := p.get()
	require.NotSame(t, a, b)

	p.put(a)
	c := p.get()
	require.Same(t, a, c, "a returned buffer must be the next one handed out")
	p.put(b)
	p.put(c)
}

func TestMetaBufferPoolZeroSizePanics(t *testing.T) {
	require.Panics(t, func() { newMetaBufferPool(0, 3, false) })
}

func TestDataBufferPoolConservesCount(t *testing.T) {
	p := newDataBufferPool(1, 64)
	d := p.get()
	require.Len(t, d.Bytes(), 64)
	p.put(d)
	require.Same(t, d, p.get())
}

func TestDataBufferPoolZeroSizePanics(t *testing.T) {
	require.Panics(t, func() { newDataBufferPool(0, 64) })
}
