package monitor

import (
	"sync"

	"github.com/banshee-data/scan-sim/internal/sim"
)

// RecentDetections is a fixed-capacity ring of the latest detections,
// feeding the chart and websocket endpoints. It implements
// sim.DetectionSink; detections are copied out of the tick's buffer.
type RecentDetections struct {
	mu       sync.RWMutex
	buf      []sim.Detection
	next     int
	filled   bool
	lastTick uint64
}

// NewRecentDetections sizes the ring for capacity detections.
func NewRecentDetections(capacity int) *RecentDetections {
	if capacity < 1 {
		capacity = 1
	}
	return &RecentDetections{buf: make([]sim.Detection, capacity)}
}

// Emit implements sim.DetectionSink.
func (r *RecentDetections) Emit(tick uint64, detections []sim.Detection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastTick = tick
	for _, d := range detections {
		r.buf[r.next] = d
		r.next++
		if r.next == len(r.buf) {
			r.next = 0
			r.filled = true
		}
	}
}

// Snapshot returns a copy of the buffered detections, oldest first, and the
// most recent tick index.
func (r *RecentDetections) Snapshot() ([]sim.Detection, uint64) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.filled {
		out := make([]sim.Detection, r.next)
		copy(out, r.buf[:r.next])
		return out, r.lastTick
	}
	out := make([]sim.Detection, 0, len(r.buf))
	out = append(out, r.buf[r.next:]...)
	out = append(out, r.buf[:r.next]...)
	return out, r.lastTick
}
