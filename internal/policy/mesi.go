package policy

// NewMESI builds MSI plus Exclusive: a line fetched fresh, with no other
// inner cache already holding a copy, is granted Exclusive instead of
// Shared. A write hit on an Exclusive line upgrades to Modified purely
// locally (AccessNeedPromote's promoteLocal path) — no outer round trip and
// no probe, since Exclusive already implies no other cache can be holding
// the line.
func NewMESI() Policy {
	return &proto{hasShared: true, hasExclusive: true}
}

// NewMESIDirectory is NewMESI with directory-routed probes instead of
// broadcast.
func NewMESIDirectory() Policy {
	return &proto{hasShared: true, hasExclusive: true, directory: true}
}
