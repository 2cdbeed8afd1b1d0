package coherence

import (
	"github.com/arenalabs/cachecoh/internal/meta"
	"github.com/arenalabs/cachecoh/internal/monitor"
	"github.com/arenalabs/cachecoh/internal/policy"
)

// InnerPort is the handle a cache hands to whatever calls up into it: its
// own registered children, or — at the outermost level — the core interface
//. A parent Cache and the terminal memory
// model both satisfy it; a memory model is simply an InnerPort with
// IsUncached() true and no children of its own.
type InnerPort interface {
	AcquireResp(addr uint64, cmd policy.Cmd, dataOut *meta.Data, metaOut *meta.Metadata) (*meta.Metadata, bool)
	WritebackResp(addr uint64, cmd policy.Cmd, dataIn *meta.Data, metaIn *meta.Metadata)
	FinishResp(addr uint64, innerID int32)
	QueryLocResp(addr uint64) []LocInfo
	IsUncached() bool
}

// ProbeTarget is the handle a cache holds for each of its own registered
// children, used purely to fan a probe out downward.
type ProbeTarget interface {
	ProbeResp(addr uint64, cmd policy.Cmd, dataOuter *meta.Data, metaOuter *meta.Metadata) (hit, writeback bool)
}

// child pairs a registered inner cache's ProbeTarget with the coh-id this
// cache assigned it, for directory lookups and probe fan-out.
type child struct {
	id int32
	target ProbeTarget
}

// Cache is a coherent cache node (spec.md component 9 "bundles (6,8) into a
// single node"): one Core, one Policy, and the two port roles, implemented
// directly on the same value since a cache never needs its inner and outer
// halves to have independent lifetimes.
type Cache struct {
	name string
	core *Core
	pol policy.Policy
	pending *pendingTable

	children []child
	outer InnerPort // this cache's parent; nil at the outermost LLC until wired to a memory model
	myID int32 // the coh-id this cache's parent assigned it, -1 until ConnectOuter

	mons *monitor.Support
	delay monitor.DelayEstimator
}

// NewCache wires a Core and a Policy into a coherent cache node. mons and
// delay may be nil (no-op fan-out / zero latency).
func NewCache(name string, core *Core, pol policy.Policy, mons *monitor.Support, delay monitor.DelayEstimator) *Cache {
	if mons == nil {
		mons = monitor.NewSupport()
	}
	if delay == nil {
		delay = monitor.ZeroDelay{}
	}
	return &Cache{name: name, core: core, pol: pol, pending: newPendingTable(), myID: -1, mons: mons, delay: delay}
}

func (c *Cache) Name() string { return c.name }
func (c *Cache) IsUncached() bool { return c.pol.IsUncached() }

// Monitors exposes this cache's monitor fan-out so a caller outside the
// package can drive lifecycle controls (start/stop/pause/resume/reset,
// spec.md §6 "Monitor hook") or attach an additional monitor after
// construction.
func (c *Cache) Monitors() *monitor.Support { return c.mons }

// QueryColocation reports whether addrA and addrB collide in at least one
// of this cache's own partitions.
func (c *Cache) QueryColocation(addrA, addrB uint64) bool {
	return c.core.QueryColocation(addrA, addrB)
}

// ConnectOuter wires this cache's outward connection to its parent (another
// Cache, a Dispatcher, or a memory model) and records the coh-id the parent
// assigned it.
func (c *Cache) ConnectOuter(outer InnerPort, assignedID int32) {
	c.outer = outer
	c.myID = assignedID
}

// Connect registers a child on this cache's inner side, returning the coh-id
// it must stamp into every Cmd it issues upward. spec.md §6 "An inner port
// assigns a numeric identifier (≤63...) to each registering outer".
func (c *Cache) Connect(target ProbeTarget) int32 {
	if len(c.children) >= meta.MaxSharers {
		panic("coherence: more than 63 inner ports registered on a directory cache")
	}
	id := int32(len(c.children))
	c.children = append(c.children, child{id: id, target: target})
	return id
}
