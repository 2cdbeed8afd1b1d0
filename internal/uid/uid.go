// Package uid implements the process-wide unique-id allocator spec.md §6
// describes: "names are used in tracer output with format strings of fixed
// layout". It is scoped to one Hierarchy instance, not the process itself —
// spec.md §9 "initialize by hierarchy, not by process" — so two independent
// hierarchies in the same binary each start with their own empty allocator
// and never collide with each other, since both tag their caches with
// globally-unique UUIDs.
//
// This is deliberately distinct from the small, 0..62-bounded coh-id a
// directory-backed cache hands its registering children
// : that id is assigned by internal/coherence.Cache.Connect and
// bounded by meta.MaxSharers because it indexes a 63-bit sharer bitmap. The
// tag this package hands out has no such bound — a hierarchy may contain far
// more than 63 caches in total, only a single directory's immediate children
// are capped.
package uid

import "github.com/google/uuid"

// Allocator hands out a process-unique string tag per cache name, for
// tracer output and log correlation across caches in one hierarchy.
type Allocator struct {
	tags map[string]string
}

func NewAllocator() *Allocator {
	return &Allocator{tags: make(map[string]string)}
}

// Tag returns name's previously-assigned UUID tag, minting a fresh one on
// first use. Repeated calls for the same name are idempotent.
func (a *Allocator) Tag(name string) string {
	if t, ok := a.tags[name]; ok {
		return t
	}
	t := uuid.NewString()
	a.tags[name] = t
	return t
}
