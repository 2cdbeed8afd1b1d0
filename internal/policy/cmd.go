// Package policy implements the pure coherence-decision layer : given a (command, metadata) pair, decide what probes, promotions,
// writebacks and post-state transitions are required. Nothing here touches
// a cache array, a lock, or an I/O boundary — policies are pure functions
// over Cmd and *meta.Metadata, so the same policy value can be shared across
// every cache in a hierarchy that runs the same protocol.
package policy

// Op names the coherence operation a Cmd carries end to end through the
// inner -> outer -> inner call chain.
type Op uint8

const (
	OpRead Op = iota
	OpWrite
	OpPrefetch
	OpFlush // user-initiated flush (clflush)
	OpWriteback // user-initiated writeback-and-downgrade (clwb)
	OpProbeInvalidate
	OpProbeDowngrade
	OpFinish
)

// Cmd is the ephemeral (command, identity, evict-flag) tuple threading an
// inner -> outer -> inner call. ID carries the
// requesting inner cache's coh-id for acquire/probe routing and directory
// bookkeeping; it is -1 when the requester is uncached (the core itself).
type Cmd struct {
	Op Op
	ID int32
	Evict bool // this command is itself part of an eviction (vs. a live probe)
}

func CmdRead() Cmd { return Cmd{Op: OpRead, ID: -1} }
func CmdWrite() Cmd { return Cmd{Op: OpWrite, ID: -1} }
func CmdPrefetch() Cmd { return Cmd{Op: OpPrefetch, ID: -1} }
func CmdFlush() Cmd { return Cmd{Op: OpFlush, ID: -1} }
func CmdWriteback() Cmd { return Cmd{Op: OpWriteback, ID: -1} }

func (c Cmd) IsRead() bool { return c.Op == OpRead }
func (c Cmd) IsWrite() bool { return c.Op == OpWrite }
func (c Cmd) IsPrefetch() bool { return c.Op == OpPrefetch }
func (c Cmd) IsFlush() bool { return c.Op == OpFlush }
func (c Cmd) IsWriteback() bool { return c.Op == OpWriteback }
func (c Cmd) IsProbe() bool { return c.Op == OpProbeInvalidate || c.Op == OpProbeDowngrade }
func (c Cmd) IsInvalidate() bool { return c.Op == OpProbeInvalidate }
func (c Cmd) IsFinish() bool { return c.Op == OpFinish }
func (c Cmd) IsEvict() bool { return c.Evict }

func WithID(c Cmd, id int32) Cmd { c.ID = id; return c }
func WithEvict(c Cmd) Cmd { c.Evict = true; return c }

func CmdProbeInvalidate(evict bool) Cmd { return Cmd{Op: OpProbeInvalidate, ID: -1, Evict: evict} }
func CmdProbeDowngrade() Cmd { return Cmd{Op: OpProbeDowngrade, ID: -1} }
func CmdForFinish(id int32) Cmd { return Cmd{Op: OpFinish, ID: id} }
