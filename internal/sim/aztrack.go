package sim

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
)

// AzTransformTrack is the time-indexed table of (azimuth, zenith) control
// angles, one row per whole second of the control timeline. The per-tick
// pipeline samples it to re-aim the whole scan pattern, emulating a
// non-repetitive scanning trajectory.
type AzTransformTrack struct {
	// rows[i] holds the control angles at second i, degrees.
	rows [][2]float64

	// tickPeriod is the snap window around integer seconds, seconds.
	tickPeriod float64
}

// NewAzTransformTrack wraps per-second (azimuth, zenith) degree pairs.
// tickPeriod is the simulation tick period in seconds; queries within one
// tick period of an integer second snap to that row exactly rather than
// interpolate, so ticks that land on a control sample reproduce it bit for
// bit.
func NewAzTransformTrack(rows [][2]float64, tickPeriod float64) (*AzTransformTrack, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: track needs at least 2 rows, got %d", ErrInvalidParameter, len(rows))
	}
	if tickPeriod <= 0 {
		return nil, fmt.Errorf("%w: tickPeriod must be positive, got %g", ErrInvalidParameter, tickPeriod)
	}
	return &AzTransformTrack{rows: rows, tickPeriod: tickPeriod}, nil
}

// Duration returns the covered timeline in seconds (the highest valid query
// timestamp).
func (tr *AzTransformTrack) Duration() float64 { return float64(len(tr.rows) - 1) }

// Sample returns the interpolated (azimuth, zenith) control angles for
// timestamp t in seconds. Identical t always yields identical output.
// Queries beyond the covered duration return ErrOutOfRange: the track is
// never extrapolated or clamped.
func (tr *AzTransformTrack) Sample(t float64) (azimuthDeg, zenithDeg float64, err error) {
	if t < 0 || t > tr.Duration() {
		return 0, 0, fmt.Errorf("%w: t=%.6fs outside track coverage [0, %gs]", ErrOutOfRange, t, tr.Duration())
	}

	lo := math.Floor(t)
	hi := math.Ceil(t)

	// Snap to an endpoint sample when the timestamp lands within one tick
	// of it, avoiding interpolation drift at control points.
	if t-lo < tr.tickPeriod {
		r := tr.rows[int(lo)]
		return r[0], r[1], nil
	}
	if hi-t < tr.tickPeriod {
		r := tr.rows[int(hi)]
		return r[0], r[1], nil
	}

	frac := t - lo
	a, b := tr.rows[int(lo)], tr.rows[int(hi)]
	azimuthDeg = a[0] + (b[0]-a[0])*frac
	zenithDeg = a[1] + (b[1]-a[1])*frac
	return azimuthDeg, zenithDeg, nil
}

// LoadTrack reads an az-transform table from a CSV file with a header line
// and one "azimuth_deg,zenith_deg" row per second.
func LoadTrack(path string, tickPeriod float64) (*AzTransformTrack, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open track file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 2
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse track CSV: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%w: track file %s has no data rows", ErrInvalidParameter, path)
	}

	rows := make([][2]float64, 0, len(records)-1)
	for i, rec := range records[1:] { // skip header
		az, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			return nil, fmt.Errorf("bad azimuth at row %d: %w", i+1, err)
		}
		zen, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, fmt.Errorf("bad zenith at row %d: %w", i+1, err)
		}
		rows = append(rows, [2]float64{az, zen})
	}

	return NewAzTransformTrack(rows, tickPeriod)
}
