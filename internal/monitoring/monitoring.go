// Package monitoring carries the process-wide diagnostic logger and the
// per-interval tick statistics reported by the simulation loop.
package monitoring

import (
	"log"
	"sync"
	"time"

	"github.com/banshee-data/scan-sim/internal/timeutil"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf
// but may be replaced by SetLogger; tests redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. A nil argument installs a no-op
// logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// TickStats accumulates counters across an interval of simulation ticks.
// Safe for concurrent use; the main loop adds, the stats ticker drains.
type TickStats struct {
	mu         sync.Mutex
	clock      timeutil.Clock
	tickCount  int64
	rayCount   int64
	detections int64
	dropped    int64
	skipped    int64
	lastReset  time.Time
}

// NewTickStats returns stats with the interval clock started.
func NewTickStats() *TickStats {
	return NewTickStatsWithClock(timeutil.RealClock{})
}

// NewTickStatsWithClock is NewTickStats with an injected clock for tests.
func NewTickStatsWithClock(clock timeutil.Clock) *TickStats {
	return &TickStats{clock: clock, lastReset: clock.Now()}
}

// AddTick records one completed tick with its ray batch and detection count.
func (s *TickStats) AddTick(rays, detections int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickCount++
	s.rayCount += int64(rays)
	s.detections += int64(detections)
}

// AddSkipped records a tick that scanned nothing (e.g. track exhausted).
func (s *TickStats) AddSkipped() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.skipped++
}

// AddDropped records a detection batch dropped by a non-blocking sink.
func (s *TickStats) AddDropped() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropped++
}

// GetAndReset returns the counters since the previous reset and zeroes them.
func (s *TickStats) GetAndReset() (ticks, rays, detections, dropped, skipped int64, duration time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	duration = now.Sub(s.lastReset)
	ticks = s.tickCount
	rays = s.rayCount
	detections = s.detections
	dropped = s.dropped
	skipped = s.skipped

	s.tickCount = 0
	s.rayCount = 0
	s.detections = 0
	s.dropped = 0
	s.skipped = 0
	s.lastReset = now

	return
}
