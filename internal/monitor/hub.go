package monitor

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/banshee-data/scan-sim/internal/monitoring"
	"github.com/banshee-data/scan-sim/internal/sim"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 16384,
	// The monitor is a local debugging surface; cross-origin viewers are
	// expected.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub broadcasts detection frames to connected websocket clients. It
// implements sim.DetectionSink; slow clients are disconnected rather than
// allowed to stall the tick loop.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*websocket.Conn]chan []byte
	sensorID string
}

// NewHub creates an empty hub.
func NewHub(sensorID string) *Hub {
	return &Hub{
		clients:  make(map[*websocket.Conn]chan []byte),
		sensorID: sensorID,
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// wsFrame is the outbound message schema.
type wsFrame struct {
	Tick       uint64      `json:"tick"`
	SensorID   string      `json:"sensor_id"`
	UnixNanos  int64       `json:"unix_nanos"`
	Detections [][]float64 `json:"detections"` // [x, y, z, range, reflectivity]
}

// Emit implements sim.DetectionSink.
func (h *Hub) Emit(tick uint64, detections []sim.Detection) {
	h.mu.RLock()
	empty := len(h.clients) == 0
	h.mu.RUnlock()
	if empty {
		return
	}

	frame := wsFrame{
		Tick:       tick,
		SensorID:   h.sensorID,
		UnixNanos:  time.Now().UnixNano(),
		Detections: make([][]float64, len(detections)),
	}
	for i, d := range detections {
		frame.Detections[i] = []float64{d.X, d.Y, d.Z, d.Range, d.Reflectivity}
	}
	payload, err := json.Marshal(frame)
	if err != nil {
		monitoring.Logf("failed to encode websocket frame: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.clients {
		select {
		case ch <- payload:
		default:
			// Client cannot keep up; skip this frame for it rather than
			// block the tick loop.
		}
	}
}

// HandleWS upgrades the request and streams frames until the client leaves.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		monitoring.Logf("websocket upgrade failed: %v", err)
		return
	}

	ch := make(chan []byte, 64)
	h.mu.Lock()
	h.clients[conn] = ch
	h.mu.Unlock()

	monitoring.Logf("websocket client connected (%d total)", h.ClientCount())

	go h.writeLoop(conn, ch)

	// Reader loop only watches for close; the stream is one-way.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.drop(conn)
}

func (h *Hub) writeLoop(conn *websocket.Conn, ch chan []byte) {
	for payload := range ch {
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.drop(conn)
			return
		}
	}
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	ch, ok := h.clients[conn]
	if ok {
		delete(h.clients, conn)
		close(ch)
	}
	h.mu.Unlock()
	if ok {
		conn.Close()
		monitoring.Logf("websocket client disconnected (%d total)", h.ClientCount())
	}
}

// Shutdown disconnects every client.
func (h *Hub) Shutdown(ctx context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, ch := range h.clients {
		close(ch)
		conn.Close()
		delete(h.clients, conn)
	}
}
