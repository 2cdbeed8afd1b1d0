// Package arena provides a bump allocator for cache-line Data blocks.
//
// A CacheArrayNorm (internal/array) knows its total line count up front
// (nset * way_num) and never grows after construction, so instead of
// letting each line's Data own its own small []uint64 backing slice — one
// more object for the GC to scan per line, across potentially hundreds of
// thousands of lines in a large LLC — we carve all of them out of one flat
// slab allocated once at array construction. This keeps the hot read/write
// path free of allocation and keeps the GC's scan set to a single backing
// array per partition.
//
// This mirrors the teacher's internal/arena package (a wrapper around Go's
// experimental goexperiment.arenas allocator used to keep cached values off
// the GC-managed heap) but drops the build-tag-gated experimental API,
// which is not available on stable toolchains: the bump-slab approach below
// gets the same "one big backing allocation, no per-line GC object" property
// using only the stable language.
//
// © 2025 cachecoh authors. MIT License.
package arena

import "github.com/arenalabs/cachecoh/internal/meta"

// Arena owns one contiguous slab of words and hands out fixed-size,
// non-overlapping Data blocks carved from it until exhausted.
type Arena struct {
	slab []uint64
	wordsPerB int
	next int
}

// New allocates a slab able to hold n blocks of blockBytes each.
func New(n int, blockBytes int) *Arena {
	wordsPerB := blockBytes / meta.WordBytes
	return &Arena{
		slab: make([]uint64, n*wordsPerB),
		wordsPerB: wordsPerB,
	}
}

// NewData carves the next block out of the slab. Panics if the arena was
// undersized at construction — a configuration bug, never a runtime
// condition, since array construction always sizes the arena to exactly the
// number of lines it creates.
func (a *Arena) NewData() *meta.Data {
	if a.next+a.wordsPerB > len(a.slab) {
		panic("arena: slab exhausted, array misconfigured its line count")
	}
	words := a.slab[a.next : a.next+a.wordsPerB : a.next+a.wordsPerB]
	a.next += a.wordsPerB
	return meta.NewDataFromWords(words)
}

// Cap reports how many blocks this arena can serve in total.
func (a *Arena) Cap() int {
	if a.wordsPerB == 0 {
		return 0
	}
	return len(a.slab) / a.wordsPerB
}
