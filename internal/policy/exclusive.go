package policy

// NewMSIExclusive and NewMESIExclusive build the exclusive-inclusion
// variants spec.md §4.12 names: once a line is granted to an inner cache,
// this cache stops holding a resident copy of its own (the Exclusion
// contract, spec.md §3) — only a directory-style presence record survives,
// living in the same Metadata slot with its data/valid bit cleared
// (Metadata.InvalidateKeepDirectory). A directory is mandatory here: without
// one there would be nothing left to probe on a later access from a
// different inner cache, since the line is gone from every level above the
// one holding it.
func NewMSIExclusive() Policy {
	return &proto{hasShared: true, directory: true, exclusive: true}
}

func NewMESIExclusive() Policy {
	return &proto{hasShared: true, hasExclusive: true, directory: true, exclusive: true}
}
