package cachecoh

// config.go follows the teacher's pkg/config.go functional-option pattern
// (Option func(*config), defaultConfig, applyOptions validating and
// pre-computing derived fields) generalized from arena-cache's per-Cache
// knobs to the per-Hierarchy ones a coherence simulation needs: a logger, an
// optional Prometheus registry every attached PromMonitor shares, the
// default cache-line size, the deployment mode, and the copy-buffer pool size that
// mode relies on.

import (
	"go.uber.org/zap"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/arenalabs/cachecoh/internal/meta"
)

// Option configures a Hierarchy at construction.
type Option func(*config)

type config struct {
	logger *zap.Logger
	registry *prometheus.Registry
	blockBytes int
	parallel bool
	copyBufSize int
}

func defaultConfig() *config {
	return &config{
		logger: zap.NewNop(),
		blockBytes: 64, // matches spec.md §6's clflush/clwb block granularity
		copyBufSize: 2, // spec.md §9 "the pool-size-of-2 assumption"
	}
}

// WithLogger plugs an external zap.Logger. The hierarchy never logs on the
// hot path (acquire/probe/evict); only configuration decisions, invariant
// panics, and monitor attach/detach go through it.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics enables Prometheus instrumentation: every cache a Hierarchy
// subsequently builds via NewCache gets a shared monitor.PromMonitor
// attached automatically, in addition to any monitors CacheSpec.Monitors
// lists explicitly.
func WithMetrics(reg *prometheus.Registry) Option {
	return func(c *config) { c.registry = reg }
}

// WithBlockBytes overrides the default 64-byte cache line size used by
// every cache in the hierarchy that does not specify its own BlockBytes in
// CacheSpec.
func WithBlockBytes(n int) Option {
	return func(c *config) { c.blockBytes = n }
}

// WithParallel selects spec.md §5's "parallel threads" deployment mode:
// per-set transaction locks, per-line advisory locks, and copy-buffer pools
// are all live; every CacheSpec in the hierarchy runs with EnMT set. The
// default is single-threaded cooperative mode, with no locking overhead.
func WithParallel(enabled bool) Option {
	return func(c *config) { c.parallel = enabled }
}

// WithCopyBufSize overrides the default copy-buffer pool size. Only meaningful in parallel mode.
func WithCopyBufSize(n int) Option {
	return func(c *config) { c.copyBufSize = n }
}

func applyOptions(opts []Option) (*config, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.blockBytes <= 0 || cfg.blockBytes%meta.WordBytes != 0 {
		return nil, configErrorf("block size %d must be a positive multiple of %d", cfg.blockBytes, meta.WordBytes)
	}
	if cfg.parallel && cfg.copyBufSize <= 0 {
		return nil, configErrorf("copy buffer pool size must be > 0 in parallel mode, got %d", cfg.copyBufSize)
	}
	return cfg, nil
}
