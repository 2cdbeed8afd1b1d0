package coherence

import "sync"

// pendingKey identifies one in-flight grant: the address and the requesting
// inner cache's coh-id.
type pendingKey struct {
	addr uint64
	innerID int32
}

// pendingEntry is what finish_resp needs to finalize a grant that
// acquire_resp already handed out: whether to forward a finish_req outward,
// and which array/set/way the line lives at (to release its per-line lock —
// the line lock, not the set lock, is what's held across grant->finish).
type pendingEntry struct {
	forward bool
	ai, s uint32
	w uint32
}

// pendingTable is a cache's record of grants awaiting finish. Spec.md §5
// "Shared resources": mutated only by the owning inner port, so a single
// mutex (rather than per-key locking) is both correct and simple — finish
// traffic is not the hot path.
type pendingTable struct {
	mu sync.Mutex
	entries map[pendingKey]pendingEntry
}

func newPendingTable() *pendingTable {
	return &pendingTable{entries: make(map[pendingKey]pendingEntry)}
}

func (t *pendingTable) record(addr uint64, innerID int32, e pendingEntry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[pendingKey{addr, innerID}] = e
}

// take removes and returns the entry, panicking if finish arrived for a
// grant the table has no record of — spec.md §7 "a pending-xact entry
// missing on finish" is an invariant violation, not a retryable condition.
func (t *pendingTable) take(addr uint64, innerID int32) pendingEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	k := pendingKey{addr, innerID}
	e, ok := t.entries[k]
	if !ok {
		panic("coherence: finish_resp with no matching pending transaction")
	}
	delete(t.entries, k)
	return e
}
