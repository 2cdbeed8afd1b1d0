package meta

import "sync"

// BlockOffsetBits is the number of low address bits consumed by the block
// offset (clflush-granularity: 64B lines, spec.md §6 "byte addresses,
// normalized by masking off the low 6 bits").
const BlockOffsetBits = 6

// Metadata is the per-line protocol state owned by a single cache array
// slot. Tag match plus state transitions are the only things the coherence
// engine touches directly; everything else (lock, directory, extended flag)
// is bookkeeping the engine relies on but never inspects the internals of.
type Metadata struct {
	mu sync.Mutex // per-line advisory lock — distinct from the set priority lock

	iw uint32 // index width of the owning array, fixes the tag/set split
	tag uint64
	valid bool
	state State
	dirty bool
	extended bool // this way belongs to an extended/exclusive-directory-only region
	dir *Directory
}

// NewMetadata allocates an Invalid, untagged line for an array with the
// given index width. useDirectory controls whether this line tracks a
// sharer bitmap (directory protocols) or relies purely on broadcast probes.
func NewMetadata(iw uint32, useDirectory bool) *Metadata {
	m := &Metadata{iw: iw}
	if useDirectory {
		m.dir = NewDirectory()
	}
	return m
}

func (m *Metadata) Lock() { m.mu.Lock() }
func (m *Metadata) Unlock() { m.mu.Unlock() }

// Match reports whether this line currently holds addr (tag match under the
// tag-match invariant: a non-Invalid line's tag always equals the last
// address written into it).
func (m *Metadata) Match(addr uint64) bool {
	return m.valid && m.tag == tagOf(addr, m.iw)
}

func tagOf(addr uint64, iw uint32) uint64 {
	return addr >> (BlockOffsetBits + iw)
}

// Addr reconstructs the full line address from the tag and the containing
// set index (inverse of the index function for Norm indexing).
func (m *Metadata) Addr(set uint32) uint64 {
	return (m.tag << (BlockOffsetBits + m.iw)) | (uint64(set) << BlockOffsetBits)
}

func (m *Metadata) IsValid() bool { return m.valid }
func (m *Metadata) IsDirty() bool { return m.dirty }
func (m *Metadata) State() State { return m.state }
func (m *Metadata) Extended() bool { return m.extended }
func (m *Metadata) ToExtend() { m.extended = true }
func (m *Metadata) Directory() *Directory { return m.dir }

func (m *Metadata) SetState(s State) { m.state = s; m.valid = s.IsValid() }
func (m *Metadata) SetDirty(b bool) { m.dirty = b }

// ToDirty marks a hit line Modified and dirty without consulting a policy.
func (m *Metadata) ToDirty() {
	m.state = Modified
	m.dirty = true
}

// Install rewrites this (possibly stale/Invalid) line's tag to addr and
// leaves it Invalid, clearing dirty and directory bookkeeping. Called on
// fill (acquire miss) before Policy.MetaAfterGrant/Fetch mutate state.
func (m *Metadata) Install(addr uint64) {
	m.tag = tagOf(addr, m.iw)
	m.valid = false
	m.state = Invalid
	m.dirty = false
	if m.dir != nil {
		m.dir.Clear()
	}
}

// Copy overwrites the receiver's protocol-visible fields from src — used for
// copy-buffer shielding in parallel mode (OuterCohPortUncached.acquire_req).
// It deliberately does not copy the mutex.
func (m *Metadata) Copy(src *Metadata) {
	m.iw = src.iw
	m.tag = src.tag
	m.valid = src.valid
	m.state = src.state
	m.dirty = src.dirty
	m.extended = src.extended
	if m.dir != nil && src.dir != nil {
		m.dir.bits = src.dir.bits.Clone()
	}
}

// Reset clears a line back to Invalid, releasing directory bookkeeping —
// called on evict/flush completion.
func (m *Metadata) Reset() {
	m.valid = false
	m.state = Invalid
	m.dirty = false
	if m.dir != nil {
		m.dir.Clear()
	}
}

// InvalidateKeepDirectory clears presence/data validity but preserves any
// directory bitmap already recorded. Used by exclusive-inclusion policies:
// an exclusive parent cache must not hold a valid copy of a line an inner
// cache holds, yet it still needs to
// remember *who* holds it so a future probe can be routed — the directory-
// residence-only "extended way" behavior of spec.md §4.12.
func (m *Metadata) InvalidateKeepDirectory() {
	m.valid = false
	m.state = Invalid
	m.dirty = false
}
