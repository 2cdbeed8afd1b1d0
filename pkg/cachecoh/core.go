package cachecoh

// core.go implements spec.md §4.11's "Core interface" / §6's "Core-facing
// API" — the handle a trace replayer or regression harness drives directly:
// one instance per CPU core, wired to that core's own private L1 (the
// innermost, childless cache in the tree). Every operation normalizes its
// address (masking off the block-offset bits) before the coherence engine
// ever sees it, and reports a delay figure through the attached
// monitor.DelayEstimator — never on the hot path otherwise.

import (
	"github.com/arenalabs/cachecoh/internal/coherence"
	"github.com/arenalabs/cachecoh/internal/meta"
	"github.com/arenalabs/cachecoh/internal/monitor"
	"github.com/arenalabs/cachecoh/internal/policy"
)

// Core is one CPU core's handle onto its private L1.
type Core struct {
	name string
	l1 *CoherentCache
	delay monitor.DelayEstimator
	level string
}

// NewCore wires a Core onto l1. delay may be nil (every operation then
// reports zero latency). level labels which figure the delay estimator is
// asked for (e.g. "L1"); it defaults to "L1" if empty.
func NewCore(name string, l1 *CoherentCache, delay monitor.DelayEstimator, level string) *Core {
	if delay == nil {
		delay = monitor.ZeroDelay{}
	}
	if level == "" {
		level = "L1"
	}
	return &Core{name: name, l1: l1, delay: delay, level: level}
}

func (c *Core) Name() string { return c.name }

// normalizeAddr clears the block-offset bits.
func normalizeAddr(addr uint64) uint64 {
	return addr &^ ((uint64(1) << meta.BlockOffsetBits) - 1)
}

func (c *Core) delayFor(hit bool) uint64 {
	if hit {
		return c.delay.Hit(c.level)
	}
	return c.delay.Miss(c.level)
}

func (c *Core) acquire(addr uint64, cmd policy.Cmd) ([]byte, uint64) {
	addr = normalizeAddr(addr)
	buf := meta.NewData(c.l1.Cache.BlockBytes())
	_, hit := c.l1.Cache.AcquireResp(addr, cmd, buf, nil)
	c.l1.Cache.FinishResp(addr, -1)
	return buf.Bytes(), c.delayFor(hit)
}

// Read performs a plain load (spec.md §6 "read(addr, &delay) -> &data").
func (c *Core) Read(addr uint64) (data []byte, delayCycles uint64) {
	return c.acquire(addr, policy.CmdRead())
}

// Prefetch behaves like Read but tags the access as a prefetch, so monitors
// and replacers (and, at an uncached LLC, the act-as-prefetch tweak of
// spec.md §5 supplemented feature 2) can tell it apart from demand traffic.
func (c *Core) Prefetch(addr uint64) (data []byte, delayCycles uint64) {
	return c.acquire(addr, policy.CmdPrefetch())
}

// Write stores value into the line at addr, promoting it to Modified
// (spec.md §6 "write(addr, &data, &delay)"). The line's per-line lock,
// still held from the AcquireResp grant, is what makes the intervening
// WriteLine call race-free against a concurrent probe.
func (c *Core) Write(addr uint64, value []byte) (delayCycles uint64) {
	addr = normalizeAddr(addr)
	buf := meta.NewData(c.l1.Cache.BlockBytes())
	_, hit := c.l1.Cache.AcquireResp(addr, policy.CmdWrite(), buf, nil)
	c.l1.Cache.WriteLine(addr, value)
	c.l1.Cache.FinishResp(addr, -1)
	return c.delayFor(hit)
}

// Flush performs clflush semantics: write back a dirty line, then
// invalidate it (spec.md §6 "flush(addr, &delay) — clflush semantics").
func (c *Core) Flush(addr uint64) (delayCycles uint64) {
	addr = normalizeAddr(addr)
	c.l1.Cache.FlushLine(addr, policy.CmdFlush())
	return c.delay.Hit(c.level)
}

// Writeback performs clwb semantics: write back a dirty line but leave it
// resident, demoted to Shared (spec.md §6 "writeback(addr, &delay) — clwb
// semantics (state -> Shared)").
func (c *Core) Writeback(addr uint64) (delayCycles uint64) {
	addr = normalizeAddr(addr)
	c.l1.Cache.FlushLine(addr, policy.CmdWriteback())
	return c.delay.Hit(c.level)
}

// WritebackInvalidate performs wbinvd semantics. spec.md §6 explicitly
// allows this operation to go unimplemented, provided it fails loudly
// rather than silently degrading to something weaker — flushing every line
// from a single core's vantage point would require walking a directory of
// every outstanding copy across the whole hierarchy, not just this core's
// own L1, which this engine does not expose. Callers that need the whole
// hierarchy flushed should call FlushCache on each cache directly instead.
func (c *Core) WritebackInvalidate() error {
	return ErrUnimplemented
}

// FlushCache iterates every (partition,set,way) in this core's L1 and
// flushes each valid line (spec.md §6 "flush_cache(&delay)").
func (c *Core) FlushCache() (delayCycles uint64) {
	c.l1.Cache.FlushCache()
	return 0
}

// QueryLoc reports every LocInfo addr could occupy across the whole chain
// of caches reachable from this core's L1 (spec.md §6 "query_loc(addr) ->
// list<LocInfo>").
func (c *Core) QueryLoc(addr uint64) []coherence.LocInfo {
	return c.l1.Cache.QueryLocResp(normalizeAddr(addr))
}
