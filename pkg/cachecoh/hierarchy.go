// Package cachecoh is the public API of the coherence engine: wiring a tree
// of caches, driving it through the core-facing operations
//, and observing it through monitors. internal/coherence,
// internal/policy, internal/array, internal/index and internal/replace do
// the actual protocol and data-structure work; this package only builds and
// connects them the way a configuration DSL would.
package cachecoh

import (
	"github.com/arenalabs/cachecoh/internal/coherence"
	"github.com/arenalabs/cachecoh/internal/memory"
	"github.com/arenalabs/cachecoh/internal/monitor"
	"github.com/arenalabs/cachecoh/internal/policy"
	"github.com/arenalabs/cachecoh/internal/uid"
)

// CacheSpec names the per-cache array/policy/replacer shape one node in the
// hierarchy needs. Zero values pick sensible defaults:
// Partitions defaults to 1 (a plain set-associative cache), ReplacerKind to
// "lru", IndexKind to "norm", Policy to MSI broadcast, BlockBytes to the
// Hierarchy's WithBlockBytes default.
type CacheSpec struct {
	Name string
	Partitions int // P; 0 defaults to 1
	IW, NW uint32 // index width, regular way count
	ExtraWays uint32 // extended, directory-only ways (exclusive protocols)
	VictimWays uint32 // 0 disables the victim partition
	WithData bool
	BlockBytes int // 0 uses the Hierarchy default
	Policy policy.Policy
	ReplacerKind string
	IndexKind string // "norm", "skewed", "random"
	PartitionSeed uint64
	Monitors []monitor.Monitor
	Delay monitor.DelayEstimator
}

// Hierarchy owns every cache, the id allocator, and the ambient config for
// one independent coherence simulation.
type Hierarchy struct {
	cfg *config
	uids *uid.Allocator
	caches map[string]*CoherentCache
	metrics *monitor.PromMonitor
}

// NewHierarchy applies opts and returns an empty hierarchy ready for
// NewCache/Connect calls.
func NewHierarchy(opts...Option) (*Hierarchy, error) {
	cfg, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	return &Hierarchy{cfg: cfg, uids: uid.NewAllocator(), caches: make(map[string]*CoherentCache)}, nil
}

// CoherentCache bundles one internal/coherence.Cache with the CacheSpec it
// was built from (spec.md component 9 "bundles (6,8) into a single node
// plugged into the tree").
type CoherentCache struct {
	*coherence.Cache
	Spec CacheSpec
	tag string
}

// Tag returns this cache's process-wide unique tracer tag, assigned by the
// owning Hierarchy's internal/uid.Allocator at construction (spec.md §6 "A
// process-wide unique-id allocator names caches; names are used in tracer
// output").
func (cc *CoherentCache) Tag() string { return cc.tag }

// NewCache builds and registers one coherent cache node.
func (h *Hierarchy) NewCache(spec CacheSpec) (*CoherentCache, error) {
	if spec.Name == "" {
		return nil, configErrorf("cache needs a non-empty name")
	}
	if _, exists := h.caches[spec.Name]; exists {
		return nil, configErrorf("duplicate cache name %q", spec.Name)
	}
	if spec.Partitions == 0 {
		spec.Partitions = 1
	}
	if spec.NW == 0 {
		return nil, configErrorf("cache %q needs at least one way", spec.Name)
	}
	if spec.ReplacerKind == "" {
		spec.ReplacerKind = "lru"
	}
	if spec.IndexKind == "" {
		spec.IndexKind = "norm"
	}
	if spec.IndexKind == "skewed" && spec.Partitions < 2 {
		return nil, configErrorf("cache %q: skewed indexing needs more than one partition", spec.Name)
	}
	pol := spec.Policy
	if pol == nil {
		pol = policy.NewMSI()
	}
	blockBytes := spec.BlockBytes
	if blockBytes == 0 {
		blockBytes = h.cfg.blockBytes
	}

	core := coherence.NewCore(coherence.CoreConfig{
			Name: spec.Name,
			Partitions: spec.Partitions,
			IW: spec.IW,
			NW: spec.NW,
			ExtraWays: spec.ExtraWays,
			VictimWays: spec.VictimWays,
			WithData: spec.WithData,
			BlockBytes: blockBytes,
			UseDirectory: pol.UsesDirectory(),
			ReplacerKind: spec.ReplacerKind,
			IndexKind: spec.IndexKind,
			EnMT: h.cfg.parallel,
			CopyBufSize: h.cfg.copyBufSize,
			PartitionSeed: spec.PartitionSeed,
	})

	mons := monitor.NewSupport()
	for _, m := range spec.Monitors {
		if !mons.Attach(spec.Name, m) {
			return nil, ErrMonitorRejected
		}
	}
	if pm := h.metricsFor(); pm != nil {
		if !mons.Attach(spec.Name, pm) {
			return nil, ErrMonitorRejected
		}
	}

	cc := &CoherentCache{
		Cache: coherence.NewCache(spec.Name, core, pol, mons, spec.Delay),
		Spec: spec,
		tag: h.uids.Tag(spec.Name),
	}
	h.caches[spec.Name] = cc
	return cc, nil
}

// Cache looks up a previously registered cache by name.
func (h *Hierarchy) Cache(name string) (*CoherentCache, bool) {
	cc, ok := h.caches[name]
	return cc, ok
}

// outerNode is what a cache needs from whatever sits immediately outward of
// it in order to register as a child: another coherent cache, or a slice
// dispatcher wrapping several. A terminal memory model has no children of
// its own and so never needs to satisfy this — it is wired with
// ConnectMemory instead.
type outerNode interface {
	coherence.InnerPort
	Connect(coherence.ProbeTarget) int32
}

// Connect registers inner as a child of outer, assigning inner the coh-id
// outer hands back, and wires inner's own outward pointer to outer.
func Connect(inner *CoherentCache, outer outerNode) {
	id := outer.Connect(inner.Cache)
	inner.Cache.ConnectOuter(outer, id)
}

// ConnectDispatcher wires inner's outward connection through a slice
// dispatcher rather than directly to a single outer cache: inner is
// registered as a child of every one of the dispatcher's slices (so
// whichever slice an address hashes to can find inner again for its own
// probe fan-out), then wired outward to the dispatcher under the coh-id
// that registration assigned.
func ConnectDispatcher(inner *CoherentCache, d *coherence.Dispatcher) {
	id := d.Connect(inner.Cache)
	inner.Cache.ConnectOuter(d, id)
}

// ConnectMemory wires cache's outward connection to a terminal memory model
// (internal/memory.Plain, internal/memory.Badger, or any other
// coherence.InnerPort with IsUncached() true). Memory never assigns or
// tracks a coh-id for its callers.
func ConnectMemory(cache *CoherentCache, mem coherence.InnerPort) {
	cache.Cache.ConnectOuter(mem, -1)
}

// NewMemory builds the default in-process memory model (internal/memory.Plain).
func NewMemory(blockBytes int) coherence.InnerPort {
	return memory.NewPlain(blockBytes)
}

// NewDispatcher builds a slice dispatcher fanning out to slices, hashing
// addresses with hash.
func NewDispatcher(hash coherence.SliceHash, slices []*CoherentCache) *coherence.Dispatcher {
	cs := make([]*coherence.Cache, len(slices))
	for i, s := range slices {
		cs[i] = s.Cache
	}
	return coherence.NewDispatcher(hash, cs)
}

// AttachMonitor attaches mon to an already-built cache, returning
// ErrMonitorRejected if mon's own Attach refuses.
func (h *Hierarchy) AttachMonitor(name string, mon monitor.Monitor) error {
	cc, ok := h.caches[name]
	if !ok {
		return configErrorf("unknown cache %q", name)
	}
	if !cc.Cache.Monitors().Attach(name, mon) {
		return ErrMonitorRejected
	}
	return nil
}
