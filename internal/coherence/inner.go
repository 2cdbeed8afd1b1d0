package coherence

import (
	"github.com/arenalabs/cachecoh/internal/meta"
	"github.com/arenalabs/cachecoh/internal/policy"
)

// AcquireResp handles an incoming acquire from a child or the core
//. It returns the line's *meta.Metadata still locked and
// whether this level satisfied it as a hit (for the core-facing API's delay
// reporting, spec.md §6); the caller must eventually call
// FinishResp(addr, itsOwnID) to release it — immediately, in this
// synchronous implementation, once it is done consuming the grant.
func (c *Cache) AcquireResp(addr uint64, cmd policy.Cmd, dataOut *meta.Data, metaOut *meta.Metadata) (*meta.Metadata, bool) {
	for {
		ai, s, w, hit := c.core.Hit(addr, PrioAcquire)
		if hit {
			m := c.core.GetMeta(ai, s, w)
			m.Lock()
			if !m.Match(addr) {
				// preempted between Hit and Lock; the set lock was already
				// dropped by a competing higher-priority transaction.
				m.Unlock()
				continue
			}
			c.onAccessHit(addr, cmd, ai, s, w, m)
			c.core.ReleaseSet(ai, s)
			return c.finishGrant(addr, cmd, ai, s, w, m, dataOut, metaOut, true), true
		}

		ai, s, w, ok := c.core.Replace(addr, PrioAcquire)
		if !ok {
			continue // set held by an equal/higher priority transaction; retry
		}
		m := c.core.GetMeta(ai, s, w)
		m.Lock()
		c.onAccessMiss(addr, cmd, ai, s, w, m)
		c.core.ReleaseSet(ai, s)
		return c.finishGrant(addr, cmd, ai, s, w, m, dataOut, metaOut, false), false
	}
}

// onAccessHit runs the sync-then-promote decision pair spec.md §4.6 step 2
// describes, on a line this cache already holds.
func (c *Cache) onAccessHit(addr uint64, cmd policy.Cmd, ai, s, w uint32, m *meta.Metadata) {
	if need, probeCmd := c.pol.AccessNeedSync(cmd, m); need {
		if _, wb := c.probeChildren(addr, probeCmd, cmd.ID, m, c.core.GetData(ai, s, w)); wb {
			c.core.HookWrite(ai, s, w, false)
		}
	}
	if promote, promoteLocal, newCmd := c.pol.AccessNeedPromote(cmd, m); promoteLocal {
		m.SetState(meta.Modified)
		m.SetDirty(true)
	} else if promote {
		c.doAcquireOuter(addr, newCmd, ai, s, w, m)
	}
}

// onAccessMiss runs the evict-then-fetch path spec.md §4.6 step 3 describes.
func (c *Cache) onAccessMiss(addr uint64, cmd policy.Cmd, ai, s, w uint32, m *meta.Metadata) {
	if m.IsValid() {
		c.evictLine(ai, s, w, m)
	}
	m.Install(addr)
	outerCmd := cmd
	if !cmd.IsPrefetch() {
		outerCmd = c.pol.CmdForOuterAcquire(cmd)
	}
	c.doAcquireOuter(addr, outerCmd, ai, s, w, m)
}

// finishGrant is the common tail of AcquireResp's hit and miss paths
// : copy data out, apply the grant transition, drive
// the replacer and monitors, and record the pending finish.
func (c *Cache) finishGrant(addr uint64, cmd policy.Cmd, ai, s, w uint32, m *meta.Metadata, dataOut *meta.Data, metaOut *meta.Metadata, hit bool) *meta.Metadata {
	if data := c.core.GetData(ai, s, w); data != nil && dataOut != nil {
		dataOut.Copy(data)
	}
	c.pol.MetaAfterGrant(cmd, m, metaOut)
	// A prefetch landing on an uncached cache only touches the replacer on a genuine
	// miss; re-ordering an already-resident line on a prefetch hit would let
	// prefetch traffic distort the real access recency the replacer tracks.
	skipReplacerTouch := hit && cmd.IsPrefetch() && c.pol.IsUncached()
	if cmd.IsWrite() {
		if !skipReplacerTouch {
			c.core.HookWrite(ai, s, w, false)
		}
		c.mons.Write(addr, ai, s, w, m, hit)
	} else {
		if !skipReplacerTouch {
			c.core.HookRead(ai, s, w)
		}
		c.mons.Read(addr, ai, s, w, m, hit)
	}
	forward := c.outer != nil && !c.outer.IsUncached()
	c.pending.record(addr, cmd.ID, pendingEntry{forward: forward, ai: ai, s: s, w: w})
	return m
}

// WritebackResp absorbs an inner-initiated writeback or forwards a
// cascading flush.
func (c *Cache) WritebackResp(addr uint64, cmd policy.Cmd, dataIn *meta.Data, metaIn *meta.Metadata) {
	if cmd.IsFlush() || cmd.IsWriteback() {
		c.FlushLine(addr, cmd)
		return
	}
	ai, s, w, hit := c.core.Hit(addr, PrioRelease)
	if !hit {
		panic("coherence: writeback_resp for a line this cache does not hold")
	}
	m := c.core.GetMeta(ai, s, w)
	m.Lock()
	if data := c.core.GetData(ai, s, w); data != nil && dataIn != nil {
		data.Copy(dataIn)
	}
	c.pol.MetaAfterRelease(cmd, m, metaIn)
	c.core.HookWrite(ai, s, w, true)
	m.Unlock()
	c.core.ReleaseSet(ai, s)
}

// FinishResp releases the per-line lock a prior AcquireResp grant left held,
// and cascades a finish further out if that grant itself required an outer
// fetch from a cached (non-uncached) parent — resolving the "finish on
// uncached miss" ambiguity spec.md §9 flags by following
// original_source/cache/coherence.hpp: finish_req is only ever defined for
// cached outer ports.
func (c *Cache) FinishResp(addr uint64, innerID int32) {
	e := c.pending.take(addr, innerID)
	c.core.GetMeta(e.ai, e.s, e.w).Unlock()
	if e.forward {
		c.outer.FinishResp(addr, c.myID)
	}
}

// QueryLocResp appends this cache's LocInfo set to the chain and recurses
// outward.
func (c *Cache) QueryLocResp(addr uint64) []LocInfo {
	out := c.core.QueryLoc(addr)
	if c.outer != nil {
		out = append(out, c.outer.QueryLocResp(addr)...)
	}
	return out
}

// probeChildren fans a probe out to every registered child for which the
// policy's directory (or broadcast default) says it is addressed, OR-
// combining hit/writeback results. excludeID
// skips the requester itself, which never needs probing for its own
// in-flight request.
func (c *Cache) probeChildren(addr uint64, cmd policy.Cmd, excludeID int32, m *meta.Metadata, data *meta.Data) (hit, writeback bool) {
	for _, ch := range c.children {
		if ch.id == excludeID {
			continue
		}
		need, subCmd := c.pol.ProbeNeedProbe(cmd, m, ch.id)
		if !need {
			continue
		}
		h, wb := ch.target.ProbeResp(addr, subCmd, data, m)
		hit = hit || h
		writeback = writeback || wb
	}
	return hit, writeback
}
