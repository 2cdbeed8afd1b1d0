package cachecoh

// metrics.go is the glue between the functional-options config and
// internal/monitor's PromMonitor, grounded on the teacher's pkg/metrics.go
// newMetricsSink factory: when the caller passes WithMetrics(reg), every
// cache a Hierarchy builds gets a shared PromMonitor attached automatically;
// when they don't, NewCache never touches Prometheus at all, so the hot
// path pays nothing for metrics it wasn't asked for.

import (
	"github.com/arenalabs/cachecoh/internal/monitor"
)

// metricsFor returns the shared PromMonitor for cfg's registry, lazily
// creating and registering it on first use. A Hierarchy has exactly one of
// these — every cache's hit/miss/invalidation counters share the "cache"
// label dimension already built into PromMonitor, so per-cache aggregation
// happens on the Prometheus side via sum()/rate(), exactly as the teacher's
// metrics.go comment describes for its shard label.
func (h *Hierarchy) metricsFor() *monitor.PromMonitor {
	if h.cfg.registry == nil {
		return nil
	}
	if h.metrics == nil {
		h.metrics = monitor.NewPromMonitor(h.cfg.registry)
	}
	return h.metrics
}
