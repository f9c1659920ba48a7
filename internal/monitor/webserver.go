// Package monitor serves the HTTP interface for watching a running
// simulation: JSON stats, detection charts, a scan-pattern coverage plot
// and a websocket stream of live detections.
package monitor

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/banshee-data/scan-sim/internal/monitoring"
	"github.com/banshee-data/scan-sim/internal/sim"
	"github.com/banshee-data/scan-sim/internal/version"
)

// WebServer handles the HTTP monitoring interface.
type WebServer struct {
	address  string
	sensorID string
	params   sim.Params
	stats    *monitoring.TickStats
	recent   *RecentDetections
	hub      *Hub
	server   *http.Server
}

// WebServerConfig contains the web server's wiring.
type WebServerConfig struct {
	Address  string
	SensorID string
	Params   sim.Params
	Stats    *monitoring.TickStats
	Recent   *RecentDetections
	Hub      *Hub
}

// NewWebServer creates a web server with the provided configuration.
func NewWebServer(config WebServerConfig) *WebServer {
	ws := &WebServer{
		address:  config.Address,
		sensorID: config.SensorID,
		params:   config.Params,
		stats:    config.Stats,
		recent:   config.Recent,
		hub:      config.Hub,
	}
	ws.server = &http.Server{
		Addr:    ws.address,
		Handler: ws.setupRoutes(),
	}
	return ws
}

func (ws *WebServer) setupRoutes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", ws.handleHealth)
	mux.HandleFunc("/api/sim/stats", ws.handleStats)
	mux.HandleFunc("/api/sim/params", ws.handleParams)
	mux.HandleFunc("/debug/detections", ws.handleDetectionsChart)
	mux.HandleFunc("/debug/coverage.png", ws.handleCoveragePlot)
	if ws.hub != nil {
		mux.HandleFunc("/ws/detections", ws.hub.HandleWS)
	}
	return mux
}

func (ws *WebServer) writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("ok"))
}

func (ws *WebServer) handleParams(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ws.params)
}

func (ws *WebServer) handleStats(w http.ResponseWriter, r *http.Request) {
	detections, lastTick := []sim.Detection(nil), uint64(0)
	if ws.recent != nil {
		detections, lastTick = ws.recent.Snapshot()
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"version":          version.String(),
		"sensor_id":        ws.sensorID,
		"last_tick":        lastTick,
		"buffered":         len(detections),
		"clients":          ws.hub.ClientCount(),
		"rays_per_tick":    ws.params.RaysPerTick(),
		"ticks_per_rev":    ws.params.TickRate / ws.params.ScanRate,
		"tick_period_secs": ws.params.TickPeriod(),
	})
}

// Start begins the HTTP server and shuts it down when ctx is cancelled.
func (ws *WebServer) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		ws.server.Shutdown(shutdownCtx)
	}()

	monitoring.Logf("monitor listening on %s", ws.address)
	if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
