package monitor

import (
	"math"
	"net/http"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// handleDetectionsChart renders a quick top-down plot (HTML) of the recent
// detection buffer using go-echarts. Debugging-only endpoint to eyeball the
// scan pattern without an external viewer.
// Query params:
//   - max_points (optional; default 8000) to reduce payload size
func (ws *WebServer) handleDetectionsChart(w http.ResponseWriter, r *http.Request) {
	if ws.recent == nil {
		ws.writeJSONError(w, http.StatusNotFound, "no detection buffer configured")
		return
	}

	detections, lastTick := ws.recent.Snapshot()
	if len(detections) == 0 {
		ws.writeJSONError(w, http.StatusNotFound, "no detections buffered yet")
		return
	}

	maxPoints := 8000
	if mp := r.URL.Query().Get("max_points"); mp != "" {
		if v, err := strconv.Atoi(mp); err == nil && v > 100 && v <= 50000 {
			maxPoints = v
		}
	}

	stride := 1
	if len(detections) > maxPoints {
		stride = int(math.Ceil(float64(len(detections)) / float64(maxPoints)))
	}

	data := make([]opts.ScatterData, 0, len(detections)/stride+1)
	for i := 0; i < len(detections); i += stride {
		d := detections[i]
		data = append(data, opts.ScatterData{
			Value:      []interface{}{d.X, d.Y},
			SymbolSize: 3,
		})
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "recent detections (top-down)",
			Subtitle: "sensor " + ws.sensorID + ", tick " + strconv.FormatUint(lastTick, 10),
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "x (m)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "y (m)"}),
	)
	scatter.AddSeries("detections", data)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	scatter.Render(w)
}
