package monitor

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/arenalabs/cachecoh/internal/meta"
)

type refusingMonitor struct{}

func (refusingMonitor) Attach(string) bool { return false }
func (refusingMonitor) Read(string, uint64, uint32, uint32, uint32, *meta.Metadata, bool)  {}
func (refusingMonitor) Write(string, uint64, uint32, uint32, uint32, *meta.Metadata, bool) {}
func (refusingMonitor) Invalid(string, uint64, uint32, uint32, uint32, *meta.Metadata)     {}
func (refusingMonitor) Start()                                                             {}
func (refusingMonitor) Stop()                                                              {}
func (refusingMonitor) Pause()                                                             {}
func (refusingMonitor) Resume()                                                            {}
func (refusingMonitor) Reset()                                                             {}

func TestSupportAttachRefusal(t *testing.T) {
	s := NewSupport()
	ok := s.Attach("l1", refusingMonitor{})
	require.False(t, ok, "spec.md §6 'Monitors may refuse to attach'")
}

func TestSupportFansOutToEveryAttachedMonitor(t *testing.T) {
	reg := prometheus.NewRegistry()
	pm := NewPromMonitor(reg)
	lm := NewLogMonitor(zaptest.NewLogger(t))

	s := NewSupport()
	require.True(t, s.Attach("l1", pm))
	require.True(t, s.Attach("l1", lm))

	m := meta.NewMetadata(0, false)
	m.Install(0x40)
	m.SetState(meta.Shared)

	s.Read(0x40, 0, 0, 0, m, true)
	s.Write(0x40, 0, 0, 0, m, false)
	s.Invalid(0x40, 0, 0, 0, m)

	require.EqualValues(t, 1, pm.MissCount(), "one miss counted from the Write(hit=false) call")
}

func TestSupportLifecycleTogglesEveryMonitor(t *testing.T) {
	reg := prometheus.NewRegistry()
	pm := NewPromMonitor(reg)
	s := NewSupport()
	s.Attach("l1", pm)

	s.Stop()
	m := meta.NewMetadata(0, false)
	m.Install(0x40)
	s.Read(0x40, 0, 0, 0, m, false)
	require.EqualValues(t, 0, pm.MissCount(), "a stopped monitor must discard calls")

	s.Resume()
	s.Read(0x40, 0, 0, 0, m, false)
	require.EqualValues(t, 1, pm.MissCount())

	s.Reset()
	require.EqualValues(t, 0, pm.MissCount())
}

func TestZeroDelay(t *testing.T) {
	var d ZeroDelay
	require.EqualValues(t, 0, d.Hit("L1"))
	require.EqualValues(t, 0, d.Miss("L1"))
}

func TestFixedDelay(t *testing.T) {
	d := NewFixedDelay()
	d.Set("L1", 4, 40)
	require.EqualValues(t, 4, d.Hit("L1"))
	require.EqualValues(t, 40, d.Miss("L1"))
	require.EqualValues(t, 0, d.Hit("L2"), "an unset level defaults to zero")
}
