package coherence

import "github.com/arenalabs/cachecoh/internal/policy"

// The methods in this file back spec.md §4.11's core interface
// (read/write/flush/writeback/flush_cache) for the outermost cache in a
// tree — the one a pkg/cachecoh.Core talks to directly instead of through
// another cache's outer port. They are deliberately thin: AcquireResp and
// FlushLine already implement the whole coherence transaction; what is
// missing for a genuine core client is (a) a way to push a newly written
// value into the exact line a grant just produced, before releasing its
// per-line lock, and (b) a whole-array walk for flush_cache.

// BlockBytes reports the cache-line size this cache's core was built with.
func (c *Cache) BlockBytes() int { return c.core.BlockBytes() }

// WriteLine merges value into the line at addr's data block and marks it
// dirty. It must only be called between an AcquireResp(..., CmdWrite,...)
// grant and the FinishResp that releases it — the per-line lock that grant
// still holds is what makes the intervening HitNoLock relookup safe.
func (c *Cache) WriteLine(addr uint64, value []byte) {
	ai, s, w, ok := c.core.HitNoLock(addr)
	if !ok {
		panic("coherence: WriteLine called with no resident line for addr")
	}
	if data := c.core.GetData(ai, s, w); data != nil {
		copy(data.Bytes(), value)
	}
	c.core.GetMeta(ai, s, w).SetDirty(true)
}

// FlushCache iterates every valid line in every partition (and the victim
// partition) and flushes each one (spec.md §6 "flush_cache(&delay) —
// iterate every (partition,set,way) and flush each valid line"). Addresses
// are collected up front so that invalidating one line mid-walk never
// perturbs the iteration of the others.
func (c *Cache) FlushCache() {
	var addrs []uint64
	c.core.AllLines(func(addr uint64, _, _, _ uint32) { addrs = append(addrs, addr) })
	for _, addr := range addrs {
		c.FlushLine(addr, policy.CmdFlush())
	}
}
