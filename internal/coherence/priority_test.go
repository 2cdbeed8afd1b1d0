package coherence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSetLockEqualPriorityBlocks(t *testing.T) {
	l := newSetLock()
	l.acquire(PrioAcquire)

	acquired := make(chan struct{})
	go func() {
		l.acquire(PrioAcquire)
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("an equal-priority acquire must block while the set is held")
	case <-time.After(30 * time.Millisecond):
	}

	l.release()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("release must wake an equal-priority waiter")
	}
}

func TestSetLockHigherPriorityPreempts(t *testing.T) {
	l := newSetLock()
	l.acquire(PrioAcquire)

	done := make(chan struct{})
	go func() {
		l.acquire(PrioProbe)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("a strictly higher priority must not wait for the current holder")
	}
}

func TestSetLockTryAcquireFailsUnderEqualOrHigherPriority(t *testing.T) {
	l := newSetLock()
	l.acquire(PrioProbe)

	_, ok := l.tryAcquire(PrioAcquire)
	require.False(t, ok, "a lower priority tryAcquire must fail rather than block")

	_, ok = l.tryAcquire(PrioSync)
	require.True(t, ok, "a strictly higher priority tryAcquire must succeed immediately")
}

func TestSetLockStillHeldDetectsPreemption(t *testing.T) {
	l := newSetLock()
	epoch := l.acquire(PrioAcquire)
	require.True(t, l.stillHeld(epoch))

	l.release()
	l.acquire(PrioAcquire)
	require.False(t, l.stillHeld(epoch), "a new acquisition must bump the epoch past any earlier holder's")
}

func TestSetLockElevateRaisesPriorityWithoutReleasing(t *testing.T) {
	l := newSetLock()
	epoch := l.acquire(PrioAcquire)
	l.elevate(PrioSync)
	require.True(t, l.stillHeld(epoch), "elevate must not look like a preemption to the original holder")

	_, ok := l.tryAcquire(PrioProbe)
	require.False(t, ok, "a Probe-priority acquirer must not preempt a lock elevated to Sync")

	_, ok = l.tryAcquire(PrioRelease)
	require.True(t, ok, "a strictly higher priority than Sync must still preempt")
}

func TestSetLockElevateIsNoopBelowCurrentPriority(t *testing.T) {
	l := newSetLock()
	l.acquire(PrioSync)
	l.elevate(PrioAcquire)

	_, ok := l.tryAcquire(PrioProbe)
	require.False(t, ok, "elevate must never lower the held priority")
}

func TestSetLocksIndexesIndependently(t *testing.T) {
	locks := newSetLocks(4)
	locks.at(0).acquire(PrioAcquire)

	_, ok := locks.at(1).tryAcquire(PrioAcquire)
	require.True(t, ok, "locking set 0 must not affect set 1")
}
