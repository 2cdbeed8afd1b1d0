package policy

// NewMI builds the MI protocol: the simplest variant spec.md §4.12 lists. A
// line is either Invalid or Modified — every acquire a cache does not
// already hold exclusively, even a plain read, has to take ownership, so
// sharing never happens and every upgrade miss also invalidates any other
// copy. Broadcast-only: MI has no use for a directory, since at most one
// cache ever holds a line at a time.
func NewMI() Policy {
	return &proto{}
}
