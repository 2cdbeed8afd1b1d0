package coherence

import (
	"math/rand/v2"

	"github.com/arenalabs/cachecoh/internal/array"
	"github.com/arenalabs/cachecoh/internal/index"
	"github.com/arenalabs/cachecoh/internal/meta"
	"github.com/arenalabs/cachecoh/internal/replace"
)

// partition bundles one array with the index function and replacer that
// drive it, plus its own per-set priority locks. A non-skewed cache has
// exactly one of these; a skewed cache has P, plus an optional victim
// partition appended at index P.
type partition struct {
	arr array.Array
	idx index.Func
	rep replace.Func
	locks *setLocks
}

func newPartition(arr array.Array, idx index.Func, rep replace.Func) *partition {
	return &partition{arr: arr, idx: idx, rep: rep, locks: newSetLocks(arr.NumSets())}
}

// Core is the cache core : arrays, replacers, the copy-buffer
// pools, and — when the cache has more than one partition — the local RNG a
// skewed cache uses to pick a partition uniformly at random on replace. P==1
// is the ordinary set-associative case; P>1 is what the teacher's
// CacheSkewed<...,P,...> type parameter selected at compile time, here a
// runtime-sized slice instead.
type Core struct {
	Name string
	partitions []*partition
	victim *partition // nil if this cache has no victim partition
	enMT bool
	rng *rand.Rand
	metaBufs *metaBufferPool
	dataBufs *dataBufferPool
	blockBytes int
}

// CoreConfig bundles the construction parameters a hierarchy builder
// (pkg/cachecoh) assembles from user options.
type CoreConfig struct {
	Name string
	Partitions int // P; 1 for a plain set-associative cache
	IW, NW uint32
	ExtraWays uint32 // extended, directory-only ways (exclusive protocols)
	VictimWays uint32 // 0 disables the victim partition
	WithData bool
	BlockBytes int
	UseDirectory bool
	ReplacerKind string
	IndexKind string // "norm", "skewed", "random"
	EnMT bool
	CopyBufSize int
	PartitionSeed uint64
}

// NewCore builds every partition array/index/replacer named by cfg. Index
// functions for a skewed cache (IndexKind "skewed") derive per-partition
// salts from PartitionSeed so the partitions decorrelate deterministically.
func NewCore(cfg CoreConfig) *Core {
	if cfg.Partitions < 1 {
		panic("coherence: a cache core needs at least one partition")
	}
	c := &Core{
		Name: cfg.Name,
		enMT: cfg.EnMT,
		rng: rand.New(rand.NewPCG(cfg.PartitionSeed, 0xD1B54A32D192ED03)),
		blockBytes: cfg.BlockBytes,
	}
	bufSize := cfg.CopyBufSize
	if bufSize == 0 {
		bufSize = 2 // spec.md §9 "the pool-size-of-2 assumption"
	}
	if cfg.EnMT {
		c.metaBufs = newMetaBufferPool(bufSize, cfg.IW, cfg.UseDirectory)
		if cfg.WithData {
			c.dataBufs = newDataBufferPool(bufSize, cfg.BlockBytes)
		}
	}

	var skewed *index.Skewed
	if cfg.IndexKind == "skewed" {
		skewed = index.NewSkewed(cfg.IW, cfg.Partitions, cfg.PartitionSeed)
	}
	for p := 0; p < cfg.Partitions; p++ {
		arr := array.NewNorm(cfg.IW, cfg.NW, cfg.ExtraWays, cfg.WithData, cfg.BlockBytes, cfg.UseDirectory)
		var idx index.Func
		switch cfg.IndexKind {
			case "skewed":
			idx = partitionSkew{s: skewed, partition: uint32(p)}
			case "random":
			idx = index.Random{IW: cfg.IW, Seed: cfg.PartitionSeed + uint64(p)}
			default:
			idx = index.Norm{IW: cfg.IW}
		}
		rep := replace.New(cfg.ReplacerKind, arr.NumSets(), cfg.NW)
		c.partitions = append(c.partitions, newPartition(arr, idx, rep))
	}
	if cfg.VictimWays > 0 {
		arr := array.NewVictim(cfg.VictimWays, cfg.WithData, cfg.BlockBytes, cfg.UseDirectory)
		rep := replace.New(cfg.ReplacerKind, 1, cfg.VictimWays)
		c.victim = newPartition(arr, index.Norm{IW: 0}, rep)
	}
	return c
}

// partitionSkew binds one partition index to the shared Skewed index so
// every partition of a skewed core consults the same salt table; the
// partition argument passed to this adapter's Index is ignored and the
// bound partition is handed to index.Skewed instead.
type partitionSkew struct {
	s *index.Skewed
	partition uint32
}

func (p partitionSkew) Index(addr uint64, _ uint32) uint32 { return p.s.Index(addr, p.partition) }

func (c *Core) NumPartitions() int { return len(c.partitions) }
func (c *Core) HasVictim() bool { return c.victim != nil }
func (c *Core) EnMT() bool { return c.enMT }
func (c *Core) BlockBytes() int { return c.blockBytes }

func (c *Core) partitionAt(ai uint32) *partition {
	if int(ai) < len(c.partitions) {
		return c.partitions[ai]
	}
	return c.victim
}

// Hit probes every normal partition, then the victim partition, for addr —
// spec.md §4.4 "probe all partitions (then the victim partition if
// present)". In multithread mode the winning partition's set is locked at
// prio before returning; callers release it once the transaction completes
// (a hit or a replace-then-fill both end the same way).
func (c *Core) Hit(addr uint64, prio Prio) (ai, s, w uint32, ok bool) {
	for i, p := range c.partitions {
		set := p.idx.Index(addr, uint32(i))
		if w, found := p.arr.Hit(addr, set); found {
			if c.enMT {
				p.locks.at(set).acquire(prio)
			}
			return uint32(i), set, w, true
		}
	}
	if c.victim != nil {
		if w, found := c.victim.arr.Hit(addr, 0); found {
			if c.enMT {
				c.victim.locks.at(0).acquire(prio)
			}
			return uint32(len(c.partitions)), 0, w, true
		}
	}
	return 0, 0, 0, false
}

// HitNoLock is the same tag-match scan as Hit but never touches a set's
// priority lock. It is only safe to call for an address whose per-line
// advisory lock (meta.Metadata.Lock) the caller already holds from a prior
// Hit/Replace-driven grant still awaiting FinishResp — the core-facing
// write path (pkg/cachecoh.Core.Write) uses it to relocate the exact line
// AcquireResp just granted, so it can merge the new value in before
// releasing the lock.
func (c *Core) HitNoLock(addr uint64) (ai, s, w uint32, ok bool) {
	for i, p := range c.partitions {
		set := p.idx.Index(addr, uint32(i))
		if w, found := p.arr.Hit(addr, set); found {
			return uint32(i), set, w, true
		}
	}
	if c.victim != nil {
		if w, found := c.victim.arr.Hit(addr, 0); found {
			return uint32(len(c.partitions)), 0, w, true
		}
	}
	return 0, 0, 0, false
}

// AllLines calls fn for every currently-valid line across every partition
// (and the victim partition, if present) with its reconstructed address and
// (ai,s,w) — spec.md §6 "flush_cache(&delay) — iterate every
// (partition,set,way) and flush each valid line".
func (c *Core) AllLines(fn func(addr uint64, ai, s, w uint32)) {
	for i, p := range c.partitions {
		nset := p.arr.NumSets()
		for s := uint32(0); s < nset; s++ {
			for w := uint32(0); w < p.arr.RegularWays(); w++ {
				m := p.arr.GetMeta(s, w)
				if m.IsValid() {
					fn(m.Addr(s), uint32(i), s, w)
				}
			}
		}
	}
	if c.victim != nil {
		for w := uint32(0); w < c.victim.arr.RegularWays(); w++ {
			m := c.victim.arr.GetMeta(0, w)
			if m.IsValid() {
				fn(m.Addr(0), uint32(len(c.partitions)), 0, w)
			}
		}
	}
}

// Replace picks a victim way for a miss. A skewed core (NumPartitions > 1)
// chooses the partition uniformly at random first ; a plain core has only partition 0 to
// choose from. The attempt fails — asking the caller to retry the whole
// acquire — if the chosen set is already held at an equal or higher
// priority.
func (c *Core) Replace(addr uint64, prio Prio) (ai, s, w uint32, ok bool) {
	pi := 0
	if len(c.partitions) > 1 {
		pi = c.rng.IntN(len(c.partitions))
	}
	p := c.partitions[pi]
	set := p.idx.Index(addr, uint32(pi))
	if c.enMT {
		if _, locked := p.locks.at(set).tryAcquire(prio); !locked {
			return 0, 0, 0, false
		}
	}
	return uint32(pi), set, p.rep.Replace(set), true
}

// ReleaseSet drops the priority lock Hit or Replace took out on (ai,s). It
// is a no-op in single-threaded mode.
func (c *Core) ReleaseSet(ai, s uint32) {
	if !c.enMT {
		return
	}
	c.partitionAt(ai).locks.at(s).release()
}

// ElevateSet raises the priority already held on (ai,s) to prio, without
// releasing it — spec.md §4.8 step 1's "under multithread, raise set
// priority to Sync" before a back-probe a policy has decided is mandatory.
// A no-op in single-threaded mode, where there is no lock to raise.
func (c *Core) ElevateSet(ai, s uint32, prio Prio) {
	if !c.enMT {
		return
	}
	c.partitionAt(ai).locks.at(s).elevate(prio)
}

func (c *Core) GetMeta(ai, s, w uint32) *meta.Metadata { return c.partitionAt(ai).arr.GetMeta(s, w) }
func (c *Core) GetData(ai, s, w uint32) *meta.Data { return c.partitionAt(ai).arr.GetData(s, w) }

// HookRead, HookWrite and HookManage drive the replacer and (via the
// caller-supplied monitor fan-out, wired at the port layer) observation
// hooks once an operation on (ai,s,w) has succeeded.
func (c *Core) HookRead(ai, s, w uint32) { c.partitionAt(ai).rep.Access(s, w, false) }

func (c *Core) HookWrite(ai, s, w uint32, isRelease bool) {
	c.partitionAt(ai).rep.Access(s, w, isRelease)
}

// HookManage retires (ai,s,w) from the replacer's perspective — called after
// an eviction or a flush frees the way.
func (c *Core) HookManage(ai, s, w uint32) { c.partitionAt(ai).rep.Invalid(s, w) }

func (c *Core) MetaCopyBuffer() *meta.Metadata { return c.metaBufs.get() }
func (c *Core) MetaReturnBuffer(m *meta.Metadata) { c.metaBufs.put(m) }
func (c *Core) DataCopyBuffer() *meta.Data { return c.dataBufs.get() }
func (c *Core) DataReturnBuffer(d *meta.Data) { c.dataBufs.put(d) }

// QueryColocation reports whether addrA and addrB land in the same set of
// at least one partition — the collision a MIRAGE-style remapping attack
// or a colocation study cares about. A non-skewed (single-partition) core
// answers this the same way a direct set-index comparison would.
func (c *Core) QueryColocation(addrA, addrB uint64) bool {
	for i, p := range c.partitions {
		if p.idx.Index(addrA, uint32(i)) == p.idx.Index(addrB, uint32(i)) {
			return true
		}
	}
	return false
}

// QueryLoc reports every (partition, set, way-range) addr could occupy —
// every partition's computed set for a normal partition, the whole way range
// for the victim partition.
func (c *Core) QueryLoc(addr uint64) []LocInfo {
	var out []LocInfo
	for i, p := range c.partitions {
		set := p.idx.Index(addr, uint32(i))
		out = append(out, LocInfo{CacheName: c.Name, Partition: uint32(i), Set: set, WayLo: 0, WayHi: p.arr.RegularWays()})
	}
	if c.victim != nil {
		out = append(out, LocInfo{CacheName: c.Name, Partition: uint32(len(c.partitions)), Set: 0, WayLo: 0, WayHi: c.victim.arr.RegularWays()})
	}
	return out
}
