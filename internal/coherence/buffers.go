package coherence

import "github.com/arenalabs/cachecoh/internal/meta"

// metaBufferPool and dataBufferPool are the copy-buffer pools spec.md §4.4
// and §9 describe: a small, fixed-size set of detached Metadata/Data
// instances an outer port borrows to shield an in-flight outer call's view
// of a line from a concurrent probe mutating the real array slot. Pool-size
// 0 is a configuration error (fails loudly at construction, spec.md §7 kind
// 1); exhaustion at runtime blocks the caller (§5 "copy-buffer pool waits"),
// satisfying the "buffer conservation" invariant (§3) by construction — a
// channel can never be emptied below zero or have more returned than taken.
type metaBufferPool struct {
	ch chan *meta.Metadata
}

func newMetaBufferPool(size int, iw uint32, useDirectory bool) *metaBufferPool {
	if size <= 0 {
		panic("coherence: copy-buffer pool size must be > 0")
	}
	p := &metaBufferPool{ch: make(chan *meta.Metadata, size)}
	for i := 0; i < size; i++ {
		p.ch <- meta.NewMetadata(iw, useDirectory)
	}
	return p
}

func (p *metaBufferPool) get() *meta.Metadata { return <-p.ch }
func (p *metaBufferPool) put(m *meta.Metadata) { p.ch <- m }

type dataBufferPool struct {
	ch chan *meta.Data
}

func newDataBufferPool(size, blockBytes int) *dataBufferPool {
	if size <= 0 {
		panic("coherence: copy-buffer pool size must be > 0")
	}
	p := &dataBufferPool{ch: make(chan *meta.Data, size)}
	for i := 0; i < size; i++ {
		p.ch <- meta.NewData(blockBytes)
	}
	return p
}

func (p *dataBufferPool) get() *meta.Data { return <-p.ch }
func (p *dataBufferPool) put(d *meta.Data) { p.ch <- d }
