package replace

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewDispatchesByKind(t *testing.T) {
	require.IsType(t, &LRU{}, New("lru", 1, 4))
	require.IsType(t, &LRU{}, New("", 1, 4), "unknown/empty kind defaults to LRU")
	require.IsType(t, &FIFO{}, New("fifo", 1, 4))
	require.IsType(t, &SRRIP{}, New("srrip", 1, 4))
	require.IsType(t, &ClockPro{}, New("clockpro", 1, 4))
}

func TestLRUReplaceOldestTouched(t *testing.T) {
	l := NewLRU(1, 4)
	// Touch ways in order 0,1,2,3 then access 0 again — 1 should now be oldest.
	for w := uint32(0); w < 4; w++ {
		l.Access(0, w, false)
	}
	require.EqualValues(t, 0, l.Replace(0))
	l.Access(0, 0, false)
	require.EqualValues(t, 1, l.Replace(0))
}

func TestLRUInvalidPrefersFreedWay(t *testing.T) {
	l := NewLRU(1, 2)
	l.Access(0, 0, false)
	l.Access(0, 1, false)
	l.Invalid(0, 0)
	require.EqualValues(t, 0, l.Replace(0), "a freshly-invalidated way must be preferred as the next victim")
}

func TestFIFOAdvancesOnlyOnInvalidOfCurrentHand(t *testing.T) {
	f := NewFIFO(1, 3)
	require.EqualValues(t, 0, f.Replace(0))
	f.Access(0, 0, false) // no-op for FIFO
	require.EqualValues(t, 0, f.Replace(0))

	f.Invalid(0, 1) // not the current hand: no advance
	require.EqualValues(t, 0, f.Replace(0))

	f.Invalid(0, 0) // the current hand: advances
	require.EqualValues(t, 1, f.Replace(0))
}

func TestSRRIPEvictsLongPredictedWayFirst(t *testing.T) {
	s := NewSRRIP(1, 2)
	// Way 0 is hit repeatedly (RRPV -> 0), way 1 is never touched (stays at max-1).
	s.Access(0, 0, false)
	victim := s.Replace(0)
	require.NotEqual(t, uint32(0), victim, "a recently-hit way should not be the first victim chosen")
}

func TestSRRIPAccessResetsRRPV(t *testing.T) {
	s := NewSRRIP(1, 1)
	s.Access(0, 0, false)
	require.EqualValues(t, 0, s.rrpv[0])
}

func TestClockProBasicEvictAndRefill(t *testing.T) {
	c := NewClockPro(1, 4)
	seen := make(map[uint32]bool)
	for i := 0; i < 4; i++ {
		w := c.Replace(0)
		require.False(t, seen[w], "clockpro must not offer the same empty way twice in a row without a hit/invalid between")
		seen[w] = true
		c.Access(0, w, false)
	}
	require.Len(t, seen, 4)
}
