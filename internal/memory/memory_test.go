package memory

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arenalabs/cachecoh/internal/meta"
	"github.com/arenalabs/cachecoh/internal/policy"
)

func TestPlainAcquireRespFirstTouchIsZeroed(t *testing.T) {
	p := NewPlain(64)
	data := meta.NewData(64)
	m := meta.NewMetadata(0, false)

	_, existed := p.AcquireResp(0x40, policy.CmdRead(), data, m)
	require.False(t, existed)
	for _, b := range data.Bytes() {
		require.Zero(t, b)
	}
	require.Equal(t, meta.Shared, m.State())
}

func TestPlainWritebackThenAcquireSeesData(t *testing.T) {
	p := NewPlain(64)
	wbData := meta.NewData(64)
	wbData.WriteWord(0, 0xDEADBEEF)
	p.WritebackResp(0x80, policy.CmdWriteback(), wbData, nil)

	data := meta.NewData(64)
	m := meta.NewMetadata(0, false)
	_, existed := p.AcquireResp(0x80, policy.CmdRead(), data, m)
	require.True(t, existed)
	require.EqualValues(t, 0xDEADBEEF, data.ReadWord(0))
}

func TestPlainAcquireWriteGrantsModified(t *testing.T) {
	p := NewPlain(64)
	m := meta.NewMetadata(0, false)
	p.AcquireResp(0xC0, policy.CmdWrite(), meta.NewData(64), m)
	require.Equal(t, meta.Modified, m.State())
}

func TestPlainIsUncachedAndFinishIsNoop(t *testing.T) {
	p := NewPlain(64)
	require.True(t, p.IsUncached())
	p.FinishResp(0x40, -1) // must not panic
	require.Nil(t, p.QueryLocResp(0x40))
}
