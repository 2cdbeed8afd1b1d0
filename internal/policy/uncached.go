package policy

import "github.com/arenalabs/cachecoh/internal/meta"

// uncached is the degenerate policy at the terminal memory boundary
// (original_source/cache/coherence.hpp's is_uncached() branch): there is no
// line state to track, no probing, and no finish handshake — every access
// just grants whatever was asked for and every writeback is absorbed
// unconditionally.
type uncached struct{}

// NewUncached builds the policy a memory-model outer port uses: it never
// holds a cache array of its own, so every method that would consult one
// degrades to "never needed".
func NewUncached() Policy { return uncached{} }

func (uncached) AccessNeedSync(Cmd, *meta.Metadata) (bool, Cmd) { return false, Cmd{} }
func (uncached) AccessNeedPromote(c Cmd, _ *meta.Metadata) (bool, bool, Cmd) {
	return false, false, Cmd{}
}
func (uncached) ProbeNeedSync(Cmd, *meta.Metadata) (bool, Cmd) { return false, Cmd{} }
func (uncached) ProbeNeedWriteback(Cmd, *meta.Metadata) bool { return false }
func (uncached) WritebackNeedSync(*meta.Metadata) (bool, Cmd) { return false, Cmd{} }
func (uncached) WritebackNeedWriteback(*meta.Metadata) (bool, Cmd) { return false, Cmd{} }
func (uncached) ProbeNeedProbe(Cmd, *meta.Metadata, int32) (bool, Cmd) { return false, Cmd{} }
func (uncached) FlushNeedSync(Cmd, *meta.Metadata) (bool, Cmd) { return false, Cmd{} }
func (uncached) CmdForOuterAcquire(c Cmd) Cmd { return c }
func (uncached) CmdForFlush() Cmd { return Cmd{Op: OpFlush, ID: -1} }
func (uncached) MetaAfterFetch(Cmd, *meta.Metadata, uint64) {}
func (uncached) MetaAfterGrant(Cmd, *meta.Metadata, *meta.Metadata) {}
func (uncached) MetaAfterRelease(Cmd, *meta.Metadata, *meta.Metadata) {}
func (uncached) MetaAfterWriteback(Cmd, *meta.Metadata) {}
func (uncached) MetaAfterEvict(*meta.Metadata) {}
func (uncached) MetaAfterFlush(Cmd, *meta.Metadata) {}
func (uncached) MetaAfterProbe(Cmd, *meta.Metadata, *meta.Metadata, int32, bool) {}
func (uncached) IsUncached() bool { return true }
func (uncached) SyncNeedLock() bool { return false }
func (uncached) UsesDirectory() bool { return false }
