package coherence

// NewSkewedCore is NewCore with IndexKind defaulted to "skewed" and
// Partitions required to be > 1 — the shape spec.md §4.4 calls a "skewed
// cache": P independently-hashed partitions plus, usually, a small victim
// partition to absorb the extra conflict misses skewing alone does not
// erase. The random-partition-pick-on-replace and per-partition indexing
// behavior both live in Core itself (Core.Replace, the partitionSkew index
// adapter) since a skewed core is not a structurally different type from a
// plain one, only a differently-parameterized one — the same simplification
// spec.md §9 suggests over the teacher's compile-time CacheSkewed<...,P,...>
// template parameter.
func NewSkewedCore(cfg CoreConfig) *Core {
	if cfg.Partitions < 2 {
		panic("coherence: a skewed core needs more than one partition")
	}
	cfg.IndexKind = "skewed"
	return NewCore(cfg)
}
