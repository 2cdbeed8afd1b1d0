package policy

// NewMSI builds the classic three-state broadcast protocol: Invalid,
// Shared, Modified. Multiple inner caches may hold a Shared copy at once;
// any write invalidates them all via a broadcast probe (every candidate inner
// id is probed — there is no directory to narrow the fan-out).
func NewMSI() Policy {
	return &proto{hasShared: true}
}

// NewMSIDirectory is NewMSI with a sharer bitmap: probes are routed only to
// inner ids the directory actually lists as present, at the cost of the
// directory's own bookkeeping.
func NewMSIDirectory() Policy {
	return &proto{hasShared: true, directory: true}
}
