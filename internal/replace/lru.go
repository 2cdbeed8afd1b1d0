package replace

import lru "github.com/hashicorp/golang-lru/v2/simplelru"

// LRU drives eviction with one hashicorp/golang-lru simplelru.LRU[way,
// struct{}] per set, using recency order over way indices. We use
// simplelru purely as an ordered-by-recency key tracker — eviction itself
// is still decided by the cache core/engine, so Replace only *peeks* the
// least-recently-used way via Keys()[0] rather than calling RemoveOldest.
// A freed way is tracked in a separate per-set queue rather than re-added
// to the simplelru tracker: Add always lands a key at the most-recently-used
// end, so re-adding a just-invalidated way would make it the *last* one
// picked, the opposite of what Invalid promises.
type LRU struct {
	sets []*lru.LRU[uint32, struct{}]
	free [][]uint32 // per-set FIFO of ways freed since their last use
	nway uint32
}

func NewLRU(nset, nway uint32) *LRU {
	l := &LRU{sets: make([]*lru.LRU[uint32, struct{}], nset), free: make([][]uint32, nset), nway: nway}
	for s := range l.sets {
		c, err := lru.NewLRU[uint32, struct{}](int(nway), nil)
		if err != nil {
			panic("replace: NewLRU: " + err.Error())
		}
		// Seed every way so Keys() is always fully populated and the
		// least-recently-touched way is well-defined from set construction.
		for w := uint32(0); w < nway; w++ {
			c.Add(w, struct{}{})
		}
		l.sets[s] = c
	}
	return l
}

func (l *LRU) Replace(s uint32) uint32 {
	if q := l.free[s]; len(q) > 0 {
		w := q[0]
		l.free[s] = q[1:]
		return w
	}
	keys := l.sets[s].Keys()
	if len(keys) == 0 {
		return 0
	}
	return keys[0] // oldest-touched
}

func (l *LRU) Access(s, w uint32, _ bool) {
	for i, fw := range l.free[s] {
		if fw == w {
			q := l.free[s]
			l.free[s] = append(q[:i:i], q[i+1:]...)
			break
		}
	}
	l.sets[s].Add(w, struct{}{})
}

// Invalid removes w from the recency tracker entirely and queues it so the
// next Replace on this set picks it ahead of any still-tracked way.
func (l *LRU) Invalid(s, w uint32) {
	if present := l.sets[s].Remove(w); !present {
		return // already queued free, or never tracked
	}
	l.free[s] = append(l.free[s], w)
}
