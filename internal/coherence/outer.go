package coherence

import (
	"github.com/arenalabs/cachecoh/internal/meta"
	"github.com/arenalabs/cachecoh/internal/policy"
)

// doAcquireOuter is the outer-port client half of an acquire : stamp this cache's own coh-id into cmd, shield the
// in-cache meta/data behind copy buffers while the outer call is in flight
// (parallel mode only — a concurrent probe must see the stable pre-fetch
// state, not a half-updated one), then restore the granted result back into
// the real array slot.
func (c *Cache) doAcquireOuter(addr uint64, cmd policy.Cmd, ai, s, w uint32, m *meta.Metadata) {
	if c.outer == nil {
		panic("coherence: acquire escaped the outermost connected cache")
	}
	cmd = policy.WithID(cmd, c.myID)
	data := c.core.GetData(ai, s, w)

	if c.core.EnMT() {
		mbuf := c.core.MetaCopyBuffer()
		mbuf.Copy(m)
		var dbuf *meta.Data
		if data != nil {
			dbuf = c.core.DataCopyBuffer()
			dbuf.Copy(data)
		}
		c.outer.AcquireResp(addr, cmd, dbuf, mbuf)
		m.Copy(mbuf)
		c.core.MetaReturnBuffer(mbuf)
		if data != nil {
			data.Copy(dbuf)
			c.core.DataReturnBuffer(dbuf)
		}
	} else {
		c.outer.AcquireResp(addr, cmd, data, m)
	}
	c.pol.MetaAfterFetch(cmd, m, addr)
	if !c.outer.IsUncached() {
		c.outer.FinishResp(addr, c.myID)
	}
}

// doWritebackOuter is the outer-port client half of a writeback or flush
// forward.
func (c *Cache) doWritebackOuter(addr uint64, cmd policy.Cmd, data *meta.Data, m *meta.Metadata) {
	if c.outer == nil {
		return // the outermost uncached boundary has nowhere further to push
	}
	cmd = policy.WithID(cmd, c.myID)
	c.outer.WritebackResp(addr, cmd, data, m)
	c.pol.MetaAfterWriteback(cmd, m)
}

// ProbeResp answers a probe the parent's inner port fanned out to this
// cache : sync further down first if this cache
// itself has children, then apply the local transition.
func (c *Cache) ProbeResp(addr uint64, cmd policy.Cmd, dataOuter *meta.Data, metaOuter *meta.Metadata) (hit, writeback bool) {
	ai, s, w, found := c.core.Hit(addr, PrioProbe)
	if !found {
		c.pol.MetaAfterProbe(cmd, blankLine(), metaOuter, c.myID, false)
		return false, false
	}
	m := c.core.GetMeta(ai, s, w)
	m.Lock()
	defer func() {
		m.Unlock()
		c.core.ReleaseSet(ai, s)
	}()

	if needSub, subCmd := c.pol.ProbeNeedSync(cmd, m); needSub {
		if c.pol.SyncNeedLock() {
			c.core.ElevateSet(ai, s, PrioSync)
		}
		c.probeChildren(addr, subCmd, -1, m, c.core.GetData(ai, s, w))
	}

	wb := c.pol.ProbeNeedWriteback(cmd, m)
	if wb {
		if data := c.core.GetData(ai, s, w); data != nil && dataOuter != nil {
			dataOuter.Copy(data)
		}
	}
	c.pol.MetaAfterProbe(cmd, m, metaOuter, c.myID, wb)
	if cmd.IsInvalidate() {
		c.core.HookManage(ai, s, w)
		c.mons.Invalid(addr, ai, s, w, m)
	} else {
		c.core.HookWrite(ai, s, w, false)
	}
	return true, wb
}

// blankLine is the zero-value metadata MetaAfterProbe expects on a probe
// miss, where there is no real line to pass — it carries no directory so
// state-only policies (broadcast) read it safely; directory policies only
// ever reach this path for an id the directory already says is absent.
func blankLine() *meta.Metadata { return meta.NewMetadata(0, false) }

// evictLine runs the eviction protocol on an already-locked,
// already-hit (ai,s,w): back-probe if the policy demands it, push dirty
// data outward, then retire the line.
func (c *Cache) evictLine(ai, s, w uint32, m *meta.Metadata) {
	addr := m.Addr(s) // m still carries the evicted line's own tag; Install(addr) for the new line happens after this returns
	if needSync, cmd := c.pol.WritebackNeedSync(m); needSync {
		if c.pol.SyncNeedLock() {
			c.core.ElevateSet(ai, s, PrioSync)
		}
		c.probeChildren(addr, cmd, -1, m, c.core.GetData(ai, s, w))
	}
	if dirty, cmd := c.pol.WritebackNeedWriteback(m); dirty {
		c.doWritebackOuter(addr, cmd, c.core.GetData(ai, s, w), m)
	}
	c.pol.MetaAfterEvict(m)
	c.core.HookManage(ai, s, w)
	c.mons.Invalid(addr, ai, s, w, m)
}

// FlushLine runs the flush protocol at this cache: locate the
// line under Flush priority, optionally back-probe, optionally push dirty
// data outward — which cascades, since a parent's WritebackResp recognizes
// a flush-tagged Cmd and recurses into its own FlushLine rather than
// treating it as an ordinary release — then invalidate locally regardless
// of level. A plain (clwb) writeback instead leaves the line Shared.
func (c *Cache) FlushLine(addr uint64, cmd policy.Cmd) {
	ai, s, w, found := c.core.Hit(addr, PrioFlush)
	if !found {
		return // nothing resident at this level to flush
	}
	m := c.core.GetMeta(ai, s, w)
	m.Lock()
	defer func() {
		m.Unlock()
		c.core.ReleaseSet(ai, s)
	}()

	if needSync, subCmd := c.pol.FlushNeedSync(cmd, m); needSync {
		if c.pol.SyncNeedLock() {
			c.core.ElevateSet(ai, s, PrioSync)
		}
		c.probeChildren(addr, subCmd, -1, m, c.core.GetData(ai, s, w))
	}
	if dirty, _ := c.pol.WritebackNeedWriteback(m); dirty {
		c.doWritebackOuter(addr, cmd, c.core.GetData(ai, s, w), m)
	}
	c.pol.MetaAfterFlush(cmd, m)
	if cmd.IsFlush() {
		c.core.HookManage(ai, s, w)
	}
	c.mons.Invalid(addr, ai, s, w, m)
}
