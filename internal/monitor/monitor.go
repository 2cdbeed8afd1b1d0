// Package monitor implements the performance-monitor hook spec.md §6
// describes: a fixed interface every cache calls into after a read, write,
// or invalidation, plus lifecycle controls a harness uses to delimit a
// measurement window. Monitors are external collaborators in spec.md's own
// words ("specified only by the interfaces they expose") — this package is
// the interface plus two concrete implementations (Prometheus, zap) grounded
// on the teacher's pkg/metrics.go.
package monitor

import "github.com/arenalabs/cachecoh/internal/meta"

// Monitor is one observer attached to a cache. Attach may refuse.
type Monitor interface {
	Attach(cacheID string) bool
	Read(cacheID string, addr uint64, ai, s, w uint32, m *meta.Metadata, hit bool)
	Write(cacheID string, addr uint64, ai, s, w uint32, m *meta.Metadata, hit bool)
	Invalid(cacheID string, addr uint64, ai, s, w uint32, m *meta.Metadata)

	Start()
	Stop()
	Pause()
	Resume()
	Reset()
}

// DelayEstimator turns an operation outcome into a cycle-ish latency figure;
// the core-facing API reports it back through each operation's delay
// out-parameter.
type DelayEstimator interface {
	Hit(level string) uint64
	Miss(level string) uint64
}

// ZeroDelay is the default estimator: every operation costs nothing. A
// hierarchy builder wires a real one in to get meaningful numbers out of
// read/write/flush.
type ZeroDelay struct{}

func (ZeroDelay) Hit(string) uint64 { return 0 }
func (ZeroDelay) Miss(string) uint64 { return 0 }

// Support fans every call out to zero or more attached Monitors. A cache
// holds exactly one Support and never talks to an individual Monitor
// directly — this is the "CacheMonitorSupport" aggregator spec.md's
// component list implies but does not name outright.
type Support struct {
	cacheID string
	monitors []Monitor
}

func NewSupport() *Support { return &Support{} }

// Attach tries to add mon, returning false (and not adding it) if mon
// refuses.
func (s *Support) Attach(cacheID string, mon Monitor) bool {
	s.cacheID = cacheID
	if !mon.Attach(cacheID) {
		return false
	}
	s.monitors = append(s.monitors, mon)
	return true
}

func (s *Support) Read(addr uint64, ai, st, w uint32, m *meta.Metadata, hit bool) {
	for _, mon := range s.monitors {
		mon.Read(s.cacheID, addr, ai, st, w, m, hit)
	}
}

func (s *Support) Write(addr uint64, ai, st, w uint32, m *meta.Metadata, hit bool) {
	for _, mon := range s.monitors {
		mon.Write(s.cacheID, addr, ai, st, w, m, hit)
	}
}

func (s *Support) Invalid(addr uint64, ai, st, w uint32, m *meta.Metadata) {
	for _, mon := range s.monitors {
		mon.Invalid(s.cacheID, addr, ai, st, w, m)
	}
}

func (s *Support) Start() { s.each(func(m Monitor) { m.Start() }) }
func (s *Support) Stop() { s.each(func(m Monitor) { m.Stop() }) }
func (s *Support) Pause() { s.each(func(m Monitor) { m.Pause() }) }
func (s *Support) Resume() { s.each(func(m Monitor) { m.Resume() }) }
func (s *Support) Reset() { s.each(func(m Monitor) { m.Reset() }) }

func (s *Support) each(fn func(Monitor)) {
	for _, mon := range s.monitors {
		fn(mon)
	}
}
