package coherence

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arenalabs/cachecoh/internal/meta"
	"github.com/arenalabs/cachecoh/internal/policy"
)

// recordingPort is a minimal InnerPort fake standing in for the terminal
// memory boundary beyond a slice, recording which address it was asked for.
type recordingPort struct {
	acquired []uint64
}

func (p *recordingPort) AcquireResp(addr uint64, cmd policy.Cmd, dataOut *meta.Data, metaOut *meta.Metadata) (*meta.Metadata, bool) {
	p.acquired = append(p.acquired, addr)
	if metaOut != nil {
		st := meta.Shared
		if cmd.IsWrite() {
			st = meta.Modified
		}
		metaOut.SetState(st)
	}
	return nil, false
}
func (p *recordingPort) WritebackResp(addr uint64, cmd policy.Cmd, dataIn *meta.Data, metaIn *meta.Metadata) {
}
func (p *recordingPort) FinishResp(addr uint64, innerID int32) {}
func (p *recordingPort) QueryLocResp(addr uint64) []LocInfo    { return nil }
func (p *recordingPort) IsUncached() bool                      { return true }

const dispatcherTestIW, dispatcherTestNW, dispatcherTestBlockBytes = 1, 2, 64

// newDispatcherTestSlice builds a small single-partition MSI cache, backed
// by its own recordingPort standing in for memory, suitable as one
// Dispatcher slice.
func newDispatcherTestSlice(name string) (*Cache, *recordingPort) {
	core := NewCore(CoreConfig{
		Name: name,
		Partitions: 1,
		IW: dispatcherTestIW,
		NW: dispatcherTestNW,
		WithData: true,
		BlockBytes: dispatcherTestBlockBytes,
		ReplacerKind: "lru",
		IndexKind: "norm",
	})
	c := NewCache(name, core, policy.NewMSI(), nil, nil)
	mem := &recordingPort{}
	c.ConnectOuter(mem, -1)
	return c, mem
}

func TestDispatcherRoutesToTheHashedSlice(t *testing.T) {
	slice0, mem0 := newDispatcherTestSlice("slice0")
	slice1, mem1 := newDispatcherTestSlice("slice1")
	d := NewDispatcher(NormHash{}, []*Cache{slice0, slice1})

	d.AcquireResp(0x000, policy.CmdRead(), meta.NewData(dispatcherTestBlockBytes), nil)
	d.AcquireResp(0x040, policy.CmdRead(), meta.NewData(dispatcherTestBlockBytes), nil)

	require.Equal(t, []uint64{0x000}, mem0.acquired, "0x000 hashes to slice 0 under NormHash")
	require.Equal(t, []uint64{0x040}, mem1.acquired, "0x040 hashes to slice 1 under NormHash")
}

func TestDispatcherIsUncachedDefersToFirstSlice(t *testing.T) {
	core := NewCore(CoreConfig{Name: "uncached-slice", Partitions: 1, IW: dispatcherTestIW, NW: dispatcherTestNW, WithData: true, BlockBytes: dispatcherTestBlockBytes, ReplacerKind: "lru", IndexKind: "norm"})
	slice := NewCache("uncached-slice", core, policy.NewUncached(), nil, nil)
	d := NewDispatcher(NormHash{}, []*Cache{slice})
	require.True(t, d.IsUncached())
}

func TestNormHashDistributesByBlockAddress(t *testing.T) {
	h := NormHash{}
	require.Equal(t, 0, h.Slice(0x000, 4))
	require.Equal(t, 1, h.Slice(0x040, 4))
	require.Equal(t, 2, h.Slice(0x080, 4))
	require.Equal(t, 0, h.Slice(0x100, 4), "the block address wraps back to slice 0 after n slices")
}

func TestIntelCASHashStableAndInRange(t *testing.T) {
	h := IntelCASHash{}
	for _, addr := range []uint64{0x1000, 0xDEAD0, 0x7FFFFFF} {
		s := h.Slice(addr, 8)
		require.GreaterOrEqual(t, s, 0)
		require.Less(t, s, 8)
		require.Equal(t, s, h.Slice(addr, 8), "hashing must be a pure function of address and slice count")
	}
}

// TestDispatcherConnectRegistersChildOnEverySlice drives a real probe through
// a two-slice dispatcher to confirm a child wired in through
// Dispatcher.Connect is actually discoverable by whichever slice's own
// probe fan-out later needs to reach it, even though the child's traffic
// only ever touches one slice directly.
func TestDispatcherConnectRegistersChildOnEverySlice(t *testing.T) {
	slice0, _ := newDispatcherTestSlice("slice0")
	slice1, _ := newDispatcherTestSlice("slice1")
	d := NewDispatcher(NormHash{}, []*Cache{slice0, slice1})

	innerCore := NewCore(CoreConfig{Name: "l1", Partitions: 1, IW: dispatcherTestIW, NW: dispatcherTestNW, WithData: true, BlockBytes: dispatcherTestBlockBytes, ReplacerKind: "lru", IndexKind: "norm"})
	inner := NewCache("l1", innerCore, policy.NewMSI(), nil, nil)
	id := d.Connect(inner)
	inner.ConnectOuter(d, id)

	const addr = 0x000 // hashes to slice0 under NormHash

	readBuf := meta.NewData(dispatcherTestBlockBytes)
	inner.AcquireResp(addr, policy.CmdRead(), readBuf, nil)
	inner.FinishResp(addr, -1)

	_, _, _, found := inner.core.HitNoLock(addr)
	require.True(t, found, "inner must hold the line Shared after its own read")

	// A second requester's write lands directly on slice0 — exactly what the
	// dispatcher itself would do for this address — forcing slice0's
	// broadcast probe fan-out to reach every registered child.
	writeBuf := meta.NewData(dispatcherTestBlockBytes)
	slice0.AcquireResp(addr, policy.CmdWrite(), writeBuf, nil)
	slice0.FinishResp(addr, -1)

	_, _, _, found = inner.core.HitNoLock(addr)
	require.False(t, found, "a child registered through the dispatcher must be invalidated by its slice's probe fan-out")
}

func TestDispatcherConnectRequiresAtLeastOneSlice(t *testing.T) {
	d := NewDispatcher(NormHash{}, nil)
	innerCore := NewCore(CoreConfig{Name: "l1", Partitions: 1, IW: dispatcherTestIW, NW: dispatcherTestNW, WithData: true, BlockBytes: dispatcherTestBlockBytes, ReplacerKind: "lru", IndexKind: "norm"})
	inner := NewCache("l1", innerCore, policy.NewMSI(), nil, nil)
	require.Panics(t, func() { d.Connect(inner) })
}
