package policy

import "github.com/arenalabs/cachecoh/internal/meta"

// Policy exposes the pure decisions spec.md §4.5 lists for a single
// coherence protocol variant (MI, MSI, MESI, and their exclusive/directory
// flavors). Every method is a pure function of its arguments; policies hold
// no per-line state of their own (that lives in *meta.Metadata).
type Policy interface {
	// AccessNeedSync decides whether an acquire hit must back-probe inner
	// caches before it can be satisfied (e.g. a write hitting a Shared
	// line in a directory with other sharers).
	AccessNeedSync(cmd Cmd, m *meta.Metadata) (need bool, probeCmd Cmd)
	// AccessNeedPromote decides whether an acquire hit must fetch more
	// permission from the outer cache (promote) or can be satisfied purely
	// locally (promoteLocal, e.g. Exclusive -> Modified on a write with no
	// outer round trip).
	AccessNeedPromote(cmd Cmd, m *meta.Metadata) (promote, promoteLocal bool, newCmd Cmd)
	// ProbeNeedSync decides whether a probe received from outer must itself
	// recurse to this cache's inner caches before answering.
	ProbeNeedSync(cmd Cmd, m *meta.Metadata) (need bool, subCmd Cmd)
	// ProbeNeedWriteback decides whether data must be returned to the prober.
	ProbeNeedWriteback(cmd Cmd, m *meta.Metadata) bool
	// WritebackNeedSync decides whether an eviction must back-probe inner
	// caches first.
	WritebackNeedSync(m *meta.Metadata) (need bool, cmd Cmd)
	// WritebackNeedWriteback decides whether an eviction must push data to
	// the outer cache.
	WritebackNeedWriteback(m *meta.Metadata) (dirty bool, cmd Cmd)
	// ProbeNeedProbe decides, for one specific inner id, whether it must be
	// probed — consulting the directory when one is present.
	ProbeNeedProbe(cmd Cmd, m *meta.Metadata, innerID int32) (need bool, subCmd Cmd)
	// FlushNeedSync decides whether a user-initiated flush/writeback must
	// back-probe inner caches (consulted by FlushLine at every level: a
	// cached level runs its own flush rather than first handing it to its
	// parent).
	FlushNeedSync(cmd Cmd, m *meta.Metadata) (need bool, subCmd Cmd)

	CmdForOuterAcquire(cmd Cmd) Cmd
	CmdForFlush() Cmd

	// MetaAfterFetch applies the state transition once data for addr has
	// arrived from the outer cache via acquire_req.
	MetaAfterFetch(cmd Cmd, m *meta.Metadata, addr uint64)
	// MetaAfterGrant applies the transition when a grant is handed down to
	// an inner cache/core; innerMeta is the inner side's own line (nil at
	// the core-interface boundary, since the core has no metadata array).
	MetaAfterGrant(cmd Cmd, m *meta.Metadata, innerMeta *meta.Metadata)
	// MetaAfterRelease applies the transition when an inner writeback/clwb
	// is absorbed.
	MetaAfterRelease(cmd Cmd, m *meta.Metadata, innerMeta *meta.Metadata)
	// MetaAfterWriteback applies the transition at the requester after its
	// own writeback_req returns.
	MetaAfterWriteback(cmd Cmd, m *meta.Metadata)
	// MetaAfterEvict applies the transition once an eviction's back-probe
	// and writeback (if any) have completed.
	MetaAfterEvict(m *meta.Metadata)
	// MetaAfterFlush applies the transition once a flush's back-probe and
	// writeback (if any) have completed, at whichever level FlushLine runs.
	MetaAfterFlush(cmd Cmd, m *meta.Metadata)
	// MetaAfterProbe applies directory/state maintenance once a probe to
	// this exact line has been answered (hit or miss).
	MetaAfterProbe(cmd Cmd, m, outerMeta *meta.Metadata, innerID int32, writeback bool)

	// IsUncached marks the terminal (memory) boundary: uncached outer ports
	// skip the finish handshake and never register with an inner port.
	IsUncached() bool
	// SyncNeedLock reports whether a sync (back-probe during acquire/evict)
	// must raise the set's transaction priority to Sync first.
	SyncNeedLock() bool
	// UsesDirectory reports whether this policy expects its metadata to
	// carry a sharer bitmap, so a hierarchy builder knows whether to
	// allocate one (internal/meta.NewMetadata's useDirectory flag).
	UsesDirectory() bool
}
