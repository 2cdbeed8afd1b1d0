package replace

// FIFO replaces ways in strict insertion order, advancing a circular hand
// per set exactly like the teacher's internal/genring generation ring
// advances through its slots on rotation — except the "generation" being
// rotated here is a way index rather than a memory arena, and rotation is
// driven by Invalid() (a line being freed) instead of a byte/TTL budget.
type FIFO struct {
	hand []uint32 // per-set: index of the way filled longest ago
	nway uint32
}

func NewFIFO(nset, nway uint32) *FIFO {
	return &FIFO{hand: make([]uint32, nset), nway: nway}
}

// Replace hands back the current victim (the oldest-filled way) without
// advancing — mirroring the read-only Active() accessor on genring.Ring.
func (f *FIFO) Replace(s uint32) uint32 {
	return f.hand[s]
}

// Access is a no-op for strict FIFO: hits never change insertion order.
func (f *FIFO) Access(_, _ uint32, _ bool) {}

// Invalid advances the hand to the next way in round-robin order when w is
// the way under the hand (freeing any other way leaves the hand alone), the same
// "rotate to the next slot" step genring.Ring.Rotate performs when a
// generation is retired.
func (f *FIFO) Invalid(s, w uint32) {
	if f.hand[s] == w {
		f.hand[s] = (w + 1) % f.nway
	}
}
