package coherence

import (
	"github.com/arenalabs/cachecoh/internal/meta"
	"github.com/arenalabs/cachecoh/internal/policy"
)

// SliceHash picks a slice in [0, n) for addr — the two variants spec.md
// §4.10 names.
type SliceHash interface {
	Slice(addr uint64, n int) int
}

// NormHash is (addr >> BlockOffsetBits) mod n.
type NormHash struct{}

func (NormHash) Slice(addr uint64, n int) int {
	return int((addr >> meta.BlockOffsetBits) % uint64(n))
}

// IntelCASHash XOR-folds a fixed set of address bits into a balanced
// 1-of-n selector, mirroring the folding scheme Intel's cache/address-hash
// documentation describes for CAS-based LLC slice selection.
type IntelCASHash struct{}

func (IntelCASHash) Slice(addr uint64, n int) int {
	v := addr >> meta.BlockOffsetBits
	h := uint64(0)
	for v != 0 {
		h ^= v & 0x3F
		v >>= 6
	}
	return int(h) % n
}

// Dispatcher fans coherence requests for a sliced LLC out to the slice
// addr hashes to. It implements InnerPort so a cache's
// outer connection can point at either a single cache or a dispatcher
// transparently. Slices are held concretely (not as the narrower InnerPort
// a single-outer connection uses) because Connect must register a new
// child on every slice, not just route requests to one of them.
type Dispatcher struct {
	hash SliceHash
	slices []*Cache
}

func NewDispatcher(hash SliceHash, slices []*Cache) *Dispatcher {
	return &Dispatcher{hash: hash, slices: slices}
}

func (d *Dispatcher) slice(addr uint64) *Cache { return d.slices[d.hash.Slice(addr, len(d.slices))] }

// Connect registers target as a child of every slice, so whichever slice an
// address hashes to can find it again during that slice's own probe
// fan-out. A child wired through a dispatcher must get back the *same*
// coh-id from every slice — Cache.ConnectOuter only has room for one — which
// holds as long as every inner connects through the dispatcher (never a
// slice directly), so each slice's registration order, and therefore the id
// it assigns, stays identical across slices.
func (d *Dispatcher) Connect(target ProbeTarget) int32 {
	if len(d.slices) == 0 {
		panic("coherence: dispatcher has no slices to connect to")
	}
	id := d.slices[0].Connect(target)
	for _, s := range d.slices[1:] {
		if got := s.Connect(target); got != id {
			panic("coherence: dispatcher slices disagree on a child's coh-id; a slice must have been connected to directly")
		}
	}
	return id
}

func (d *Dispatcher) AcquireResp(addr uint64, cmd policy.Cmd, dataOut *meta.Data, metaOut *meta.Metadata) (*meta.Metadata, bool) {
	return d.slice(addr).AcquireResp(addr, cmd, dataOut, metaOut)
}

func (d *Dispatcher) WritebackResp(addr uint64, cmd policy.Cmd, dataIn *meta.Data, metaIn *meta.Metadata) {
	d.slice(addr).WritebackResp(addr, cmd, dataIn, metaIn)
}

func (d *Dispatcher) FinishResp(addr uint64, innerID int32) { d.slice(addr).FinishResp(addr, innerID) }

func (d *Dispatcher) QueryLocResp(addr uint64) []LocInfo { return d.slice(addr).QueryLocResp(addr) }

// IsUncached reports the slices' own setting; a dispatcher never sits in
// front of a mix of cached and uncached slices, so the first slice speaks
// for all of them.
func (d *Dispatcher) IsUncached() bool { return d.slices[0].IsUncached() }
