// Package network streams detection frames to downstream consumers over
// UDP, mirroring how a real sensor unit publishes returns on the wire.
package network

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/banshee-data/scan-sim/internal/monitoring"
	"github.com/banshee-data/scan-sim/internal/sim"
)

// DropStats counts frames dropped by the non-blocking forwarder.
type DropStats interface {
	AddDropped()
}

// DetectionFrame is the wire format for one tick's detections.
type DetectionFrame struct {
	Tick       uint64      `json:"tick"`
	SensorID   string      `json:"sensor_id"`
	UnixNanos  int64       `json:"unix_nanos"`
	Detections []Detection `json:"detections"`
}

// Detection is the compact wire representation of one return.
type Detection struct {
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Z            float64 `json:"z"`
	Range        float64 `json:"range"`
	Reflectivity float64 `json:"reflectivity"`
}

// DetectionForwarder sends frames to a UDP address without ever blocking
// the tick loop; frames that cannot be queued are dropped and counted.
type DetectionForwarder struct {
	conn        *net.UDPConn
	channel     chan []byte
	stats       DropStats
	logInterval time.Duration
	address     string
	sensorID    string
}

// NewDetectionForwarder dials the destination and sizes the send queue.
func NewDetectionForwarder(addr string, port int, sensorID string, stats DropStats, logInterval time.Duration) (*DetectionForwarder, error) {
	forwardAddress := fmt.Sprintf("%s:%d", addr, port)
	udpAddr, err := net.ResolveUDPAddr("udp", forwardAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve forward address: %w", err)
	}

	conn, err := net.DialUDP("udp", nil, udpAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to create forward connection: %w", err)
	}

	return &DetectionForwarder{
		conn:        conn,
		channel:     make(chan []byte, 256),
		stats:       stats,
		logInterval: logInterval,
		address:     forwardAddress,
		sensorID:    sensorID,
	}, nil
}

// Start begins the forwarding goroutine. Send errors are batched into
// periodic log lines rather than reported per frame.
func (f *DetectionForwarder) Start(ctx context.Context) {
	go func() {
		droppedCount := 0
		var lastError error
		ticker := time.NewTicker(f.logInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case frame := <-f.channel:
				if _, err := f.conn.Write(frame); err != nil {
					droppedCount++
					lastError = err
				}
			case <-ticker.C:
				if droppedCount > 0 && lastError != nil {
					monitoring.Logf("dropped %d forwarded frames due to errors (latest: %v)", droppedCount, lastError)
					droppedCount = 0
					lastError = nil
				}
			}
		}
	}()

	monitoring.Logf("forwarding detections to %s", f.address)
}

// Emit implements sim.DetectionSink. The frame is marshalled and queued
// without blocking; a full queue drops the frame.
func (f *DetectionForwarder) Emit(tick uint64, detections []sim.Detection) {
	frame := DetectionFrame{
		Tick:       tick,
		SensorID:   f.sensorID,
		UnixNanos:  time.Now().UnixNano(),
		Detections: make([]Detection, len(detections)),
	}
	for i, d := range detections {
		frame.Detections[i] = Detection{X: d.X, Y: d.Y, Z: d.Z, Range: d.Range, Reflectivity: d.Reflectivity}
	}

	payload, err := json.Marshal(frame)
	if err != nil {
		monitoring.Logf("failed to encode detection frame: %v", err)
		return
	}

	select {
	case f.channel <- payload:
	default:
		if f.stats != nil {
			f.stats.AddDropped()
		}
	}
}

// Close shuts the connection down.
func (f *DetectionForwarder) Close() error {
	return f.conn.Close()
}
