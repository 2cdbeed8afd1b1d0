// Package array implements the cache array : a fixed-size,
// two-dimensional store of (metadata, data) indexed by (set, way).
package array

import (
	"github.com/arenalabs/cachecoh/internal/arena"
	"github.com/arenalabs/cachecoh/internal/meta"
)

// Array is the associative-lookup contract a CacheCore (internal/coherence)
// composes one or more of: a normal partition, or the appended fully
// associative victim partition (IW=0).
type Array interface {
	// Hit performs a linear tag match across the set's ways. First match
	// wins — ties are impossible under the tag-match invariant.
	Hit(addr uint64, set uint32) (way uint32, ok bool)
	GetMeta(set, way uint32) *meta.Metadata
	GetData(set, way uint32) *meta.Data // nil if this array is metadata-only
	NumSets() uint32
	NumWays() uint32 // includes extended ways
	RegularWays() uint32 // excludes extended (directory-only) ways — the only ways a replacer may choose
	IndexWidth() uint32
	HasData() bool
}

// Norm is a plain set-associative array: IW index bits, NW regular ways
// plus an optional count of extended ways (used by exclusive directory
// protocols to keep directory-only presence entries, spec.md §4.12).
type Norm struct {
	iw uint32
	nway uint32 // NW plus extraWays: all ways of a set
	extraWays uint32
	meta []*meta.Metadata // len == nset*wayNum
	data []*meta.Data // len == nset*wayNum, nil entries if !hasData
	hasData bool
	blockBytes int
}

// NewNorm builds an array of 1<<iw sets, nway regular ways plus extraWays
// extended ways, and blockBytes-sized data lines if withData is true (a
// cache may store only metadata, spec.md §3).
func NewNorm(iw, nway, extraWays uint32, withData bool, blockBytes int, useDirectory bool) *Norm {
	nset := uint32(1) << iw
	wayNum := nway + extraWays
	n := &Norm{iw: iw, nway: wayNum, extraWays: extraWays, hasData: withData, blockBytes: blockBytes}

	total := int(nset * wayNum)
	n.meta = make([]*meta.Metadata, total)
	for i := range n.meta {
		n.meta[i] = meta.NewMetadata(iw, useDirectory)
	}
	for s := uint32(0); s < nset; s++ {
		for w := nway; w < wayNum; w++ {
			n.meta[s*wayNum+w].ToExtend()
		}
	}

	if withData {
		// Data lines are carved from one slab per array (internal/arena) —
		// extended (directory-only) ways never hold data, so size the slab
		// for nset*nway only, matching the teacher's CacheArrayNorm.
		ar := arena.New(int(nset*nway), blockBytes)
		n.data = make([]*meta.Data, total)
		for s := uint32(0); s < nset; s++ {
			for w := uint32(0); w < nway; w++ {
				n.data[s*wayNum+w] = ar.NewData()
			}
		}
	}
	return n
}

func (n *Norm) Hit(addr uint64, set uint32) (uint32, bool) {
	base := set * n.nway
	for w := uint32(0); w < n.nway; w++ {
		if n.meta[base+w].Match(addr) {
			return w, true
		}
	}
	return 0, false
}

func (n *Norm) GetMeta(set, way uint32) *meta.Metadata { return n.meta[set*n.nway+way] }

func (n *Norm) GetData(set, way uint32) *meta.Data {
	if !n.hasData {
		return nil
	}
	return n.data[set*n.nway+way]
}

func (n *Norm) NumSets() uint32 { return uint32(1) << n.iw }
func (n *Norm) NumWays() uint32 { return n.nway }
func (n *Norm) RegularWays() uint32 { return n.nway - n.extraWays }
func (n *Norm) IndexWidth() uint32 { return n.iw }
func (n *Norm) HasData() bool { return n.hasData }

// NewVictim builds a victim partition: IW=0 (a single set), VW fully
// associative ways (spec.md §4.1 "A victim partition is an array with IW=0
// (one set), VW ways").
func NewVictim(vw uint32, withData bool, blockBytes int, useDirectory bool) *Norm {
	return NewNorm(0, vw, 0, withData, blockBytes, useDirectory)
}
