package meta

import "unsafe"

// WordBytes is the granularity at which Data supports masked writes —
// 8-byte words, matching typical LLC/DRAM burst granularity.
const WordBytes = 8

// Data is a fixed-size cache-line payload. BlockBytes must be a multiple of
// WordBytes; arrays that do not model data (metadata-only configurations)
// simply never allocate a Data, per spec.md §3 ("a cache may store only
// metadata").
type Data struct {
	words []uint64
}

// NewData allocates a zeroed block of blockBytes with its own slice. Array
// lines do not come from here: they are carved from an internal/arena slab
// via NewDataFromWords, so large hierarchies (many sets * ways * partitions)
// don't scatter many small GC-scanned slices across the heap.
func NewData(blockBytes int) *Data {
	return &Data{words: make([]uint64, blockBytes/WordBytes)}
}

// NewDataFromWords wraps a pre-allocated, pre-sized word slice without
// copying — used by internal/arena to hand out slab-backed blocks.
func NewDataFromWords(words []uint64) *Data {
	return &Data{words: words}
}

// Bytes returns a read/write view of the block's bytes without copying.
// Callers must treat it as borrowed for the duration of the call that
// produced it (mirrors the teacher's unsafehelpers disclaimers).
func (d *Data) Bytes() []byte {
	if len(d.words) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&d.words[0])), len(d.words)*WordBytes)
}

// Copy overwrites the receiver with src's contents. Panics if the two blocks
// are differently sized — a configuration error, not a runtime one.
func (d *Data) Copy(src *Data) {
	if src == nil {
		return
	}
	if len(d.words) != len(src.words) {
		panic("meta: Data.Copy size mismatch, misconfigured block size")
	}
	copy(d.words, src.words)
}

// WriteWord writes a single 8-byte word at wordIdx — the granularity a
// masked store operates at.
func (d *Data) WriteWord(wordIdx int, v uint64) { d.words[wordIdx] = v }

// ReadWord reads back a single word.
func (d *Data) ReadWord(wordIdx int) uint64 { return d.words[wordIdx] }

// WriteMasked writes the words for which mask bit i is set, leaving the rest
// untouched — used by partial-line stores from the core interface.
func (d *Data) WriteMasked(values []uint64, mask uint64) {
	for i := 0; i < len(d.words) && i < len(values); i++ {
		if mask&(1<<uint(i)) != 0 {
			d.words[i] = values[i]
		}
	}
}

func (d *Data) NumWords() int { return len(d.words) }
