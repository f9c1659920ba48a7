package monitor

import (
	"math"
	"net/http"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// handleCoveragePlot renders a PNG scatter of the angular coverage of the
// buffered detections (azimuth vs elevation of each world direction). Over
// a few revolutions the az transform should smear the pattern across the
// full field of view; gaps here usually mean a scheduling bug or a track
// that stopped moving.
func (ws *WebServer) handleCoveragePlot(w http.ResponseWriter, r *http.Request) {
	if ws.recent == nil {
		ws.writeJSONError(w, http.StatusNotFound, "no detection buffer configured")
		return
	}

	detections, _ := ws.recent.Snapshot()
	if len(detections) == 0 {
		ws.writeJSONError(w, http.StatusNotFound, "no detections buffered yet")
		return
	}

	pts := make(plotter.XYs, len(detections))
	for i, d := range detections {
		azimuth := math.Atan2(d.DX, d.DY) * 180 / math.Pi
		elevation := math.Asin(d.DZ) * 180 / math.Pi
		pts[i].X = azimuth
		pts[i].Y = elevation
	}

	p := plot.New()
	p.Title.Text = "angular coverage"
	p.X.Label.Text = "azimuth (deg)"
	p.Y.Label.Text = "elevation (deg)"

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, "failed to build scatter: "+err.Error())
		return
	}
	scatter.GlyphStyle.Radius = vg.Points(1)
	p.Add(scatter)

	wt, err := p.WriterTo(16*vg.Centimeter, 10*vg.Centimeter, "png")
	if err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, "failed to render plot: "+err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/png")
	wt.WriteTo(w)
}
