// Package memory implements the terminal outer port : the InnerPort every LLC's outermost acquire/writeback
// ultimately lands on. It answers every request as permanent storage and
// never participates in the finish handshake (Policy.IsUncached is true for
// every memory-backed policy, per original_source/cache/coherence.hpp's
// is_uncached() branch).
package memory

import (
	"sync"

	"github.com/arenalabs/cachecoh/internal/coherence"
	"github.com/arenalabs/cachecoh/internal/meta"
	"github.com/arenalabs/cachecoh/internal/policy"
)

// Plain is a flat, in-process backing store keyed by the block-aligned
// address — every block lazily materializes to zero on first touch, mirroring
// the teacher's bench/example "generated value" fallback in examples/disk_eject.
type Plain struct {
	mu sync.Mutex
	blockBytes int
	blocks map[uint64][]byte
}

func NewPlain(blockBytes int) *Plain {
	return &Plain{blockBytes: blockBytes, blocks: make(map[uint64][]byte)}
}

func (p *Plain) block(addr uint64) ([]byte, bool) {
	base := addr &^ ((uint64(1) << meta.BlockOffsetBits) - 1) // caller already normalizes; defensive mask anyway
	if b, ok := p.blocks[base]; ok {
		return b, true
	}
	b := make([]byte, p.blockBytes)
	p.blocks[base] = b
	return b, false
}

// AcquireResp always succeeds — memory is the terminal boundary, it never
// misses in the cache sense. The returned bool instead reports whether the
// block had been touched before.
func (p *Plain) AcquireResp(addr uint64, cmd policy.Cmd, dataOut *meta.Data, metaOut *meta.Metadata) (*meta.Metadata, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	b, existed := p.block(addr)
	if dataOut != nil {
		copy(dataOut.Bytes(), b)
	}
	if metaOut != nil {
		state := meta.Shared
		if cmd.IsWrite() {
			state = meta.Modified
		}
		metaOut.SetState(state)
		metaOut.SetDirty(false)
	}
	return nil, existed
}

func (p *Plain) WritebackResp(addr uint64, cmd policy.Cmd, dataIn *meta.Data, metaIn *meta.Metadata) {
	if dataIn == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	b, _ := p.block(addr)
	copy(b, dataIn.Bytes())
}

func (p *Plain) FinishResp(uint64, int32) {}
func (p *Plain) QueryLocResp(uint64) []coherence.LocInfo { return nil }
func (p *Plain) IsUncached() bool { return true }
