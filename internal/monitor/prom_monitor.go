package monitor

import (
	"sync/atomic"

	"github.com/arenalabs/cachecoh/internal/meta"
	"github.com/prometheus/client_golang/prometheus"
)

// PromMonitor counts hits/misses/invalidations per cache, grounded on the
// teacher's pkg/metrics.go promMetrics (a CounterVec per event plus an
// atomic mirror of the headline gauge, here the current miss count, so a
// read doesn't have to round-trip through the Prometheus registry).
type PromMonitor struct {
	hits *prometheus.CounterVec
	misses *prometheus.CounterVec
	invalid *prometheus.CounterVec
	running atomic.Bool
	missCnt atomic.Uint64
}

// NewPromMonitor registers its vectors with reg (use prometheus.NewRegistry
// in tests to avoid the global default registry's singleton panics).
func NewPromMonitor(reg prometheus.Registerer) *PromMonitor {
	p := &PromMonitor{
		hits: prometheus.NewCounterVec(prometheus.CounterOpts{Name: "cachecoh_hits_total"}, []string{"cache", "op"}),
		misses: prometheus.NewCounterVec(prometheus.CounterOpts{Name: "cachecoh_misses_total"}, []string{"cache", "op"}),
		invalid: prometheus.NewCounterVec(prometheus.CounterOpts{Name: "cachecoh_invalidations_total"}, []string{"cache"}),
	}
	reg.MustRegister(p.hits, p.misses, p.invalid)
	p.running.Store(true)
	return p
}

func (p *PromMonitor) Attach(string) bool { return true }

func (p *PromMonitor) Read(cacheID string, _ uint64, _, _, _ uint32, _ *meta.Metadata, hit bool) {
	p.count(cacheID, "read", hit)
}

func (p *PromMonitor) Write(cacheID string, _ uint64, _, _, _ uint32, _ *meta.Metadata, hit bool) {
	p.count(cacheID, "write", hit)
}

func (p *PromMonitor) count(cacheID, op string, hit bool) {
	if !p.running.Load() {
		return
	}
	if hit {
		p.hits.WithLabelValues(cacheID, op).Inc()
		return
	}
	p.misses.WithLabelValues(cacheID, op).Inc()
	p.missCnt.Add(1)
}

func (p *PromMonitor) Invalid(cacheID string, _ uint64, _, _, _ uint32, _ *meta.Metadata) {
	if !p.running.Load() {
		return
	}
	p.invalid.WithLabelValues(cacheID).Inc()
}

func (p *PromMonitor) MissCount() uint64 { return p.missCnt.Load() }

func (p *PromMonitor) Start() { p.running.Store(true) }
func (p *PromMonitor) Stop() { p.running.Store(false) }
func (p *PromMonitor) Pause() { p.running.Store(false) }
func (p *PromMonitor) Resume() { p.running.Store(true) }
func (p *PromMonitor) Reset() { p.missCnt.Store(0) }
