package monitoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/banshee-data/scan-sim/internal/timeutil"
)

func TestTickStats_Accumulate(t *testing.T) {
	s := NewTickStats()
	s.AddTick(2400, 90)
	s.AddTick(2400, 110)
	s.AddSkipped()
	s.AddDropped()
	s.AddDropped()

	ticks, rays, detections, dropped, skipped, _ := s.GetAndReset()
	assert.Equal(t, int64(2), ticks)
	assert.Equal(t, int64(4800), rays)
	assert.Equal(t, int64(200), detections)
	assert.Equal(t, int64(2), dropped)
	assert.Equal(t, int64(1), skipped)
}

func TestTickStats_ResetZeroesCounters(t *testing.T) {
	s := NewTickStats()
	s.AddTick(100, 5)
	s.GetAndReset()

	ticks, rays, detections, dropped, skipped, _ := s.GetAndReset()
	assert.Zero(t, ticks)
	assert.Zero(t, rays)
	assert.Zero(t, detections)
	assert.Zero(t, dropped)
	assert.Zero(t, skipped)
}

func TestTickStats_IntervalDuration(t *testing.T) {
	clk := timeutil.NewMockClock(time.Unix(1000, 0))
	s := NewTickStatsWithClock(clk)

	clk.Advance(3 * time.Second)
	_, _, _, _, _, dur := s.GetAndReset()
	assert.Equal(t, 3*time.Second, dur)

	clk.Advance(500 * time.Millisecond)
	_, _, _, _, _, dur = s.GetAndReset()
	assert.Equal(t, 500*time.Millisecond, dur)
}

func TestSetLogger_NilInstallsNoop(t *testing.T) {
	orig := Logf
	defer SetLogger(orig)

	var lines []string
	SetLogger(func(format string, v ...interface{}) {
		lines = append(lines, format)
	})
	Logf("hello %d", 1)
	assert.Len(t, lines, 1)

	SetLogger(nil)
	Logf("dropped")
	assert.Len(t, lines, 1)
}
