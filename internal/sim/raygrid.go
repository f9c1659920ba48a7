package sim

import (
	"fmt"
	"math"
)

// RayGrid is the precomputed table of unit ray directions in the sensor
// frame, indexed by (azimuth step, elevation step). Built once at sensor
// construction and immutable afterwards; the per-tick pipeline only reads
// contiguous slices of it.
type RayGrid struct {
	AzimuthSteps   int
	ElevationSteps int
	MinElevation   float64 // degrees
	MaxElevation   float64 // degrees

	// directions holds unit vectors packed as x,y,z triples,
	// idx = (az*ElevationSteps + el) * 3.
	directions []float64
}

// NewRayGrid precomputes the direction table. The direction for (az, el) is
// the forward vector yawed by 360*az/azimuthSteps degrees and pitched by
// lerp(minElevation, maxElevation, el/(elevationSteps-1)) degrees.
func NewRayGrid(azimuthSteps, elevationSteps int, minElevation, maxElevation float64) (*RayGrid, error) {
	if azimuthSteps < 1 {
		return nil, fmt.Errorf("%w: azimuthSteps must be >= 1, got %d", ErrInvalidParameter, azimuthSteps)
	}
	if elevationSteps < 2 {
		return nil, fmt.Errorf("%w: elevationSteps must be >= 2, got %d", ErrInvalidParameter, elevationSteps)
	}
	if !(minElevation < maxElevation) {
		return nil, fmt.Errorf("%w: minElevation (%g) must be below maxElevation (%g)",
			ErrInvalidParameter, minElevation, maxElevation)
	}

	g := &RayGrid{
		AzimuthSteps:   azimuthSteps,
		ElevationSteps: elevationSteps,
		MinElevation:   minElevation,
		MaxElevation:   maxElevation,
		directions:     make([]float64, azimuthSteps*elevationSteps*3),
	}

	elevationSpan := maxElevation - minElevation
	for az := 0; az < azimuthSteps; az++ {
		azimuthDeg := 360.0 * float64(az) / float64(azimuthSteps)
		for el := 0; el < elevationSteps; el++ {
			elevationDeg := minElevation + elevationSpan*float64(el)/float64(elevationSteps-1)
			x, y, z := DirectionFromAngles(azimuthDeg, elevationDeg)
			idx := (az*elevationSteps + el) * 3
			g.directions[idx] = x
			g.directions[idx+1] = y
			g.directions[idx+2] = z
		}
	}

	return g, nil
}

// Len returns the total number of rays in the grid.
func (g *RayGrid) Len() int { return g.AzimuthSteps * g.ElevationSteps }

// At returns the unit direction for azimuth step az and elevation step el.
func (g *RayGrid) At(az, el int) (x, y, z float64) {
	idx := (az*g.ElevationSteps + el) * 3
	return g.directions[idx], g.directions[idx+1], g.directions[idx+2]
}

// Slice returns the packed x,y,z triples for count azimuth columns starting
// at startAz. Sections are scheduled to stay within bounds, so no
// wrap-around is performed; out-of-bounds requests panic like a slice would.
func (g *RayGrid) Slice(startAz, count int) []float64 {
	start := startAz * g.ElevationSteps * 3
	end := (startAz + count) * g.ElevationSteps * 3
	return g.directions[start:end]
}

// AnglesAt returns the construction angles (degrees) for a grid index, used
// by coverage diagnostics.
func (g *RayGrid) AnglesAt(az, el int) (azimuthDeg, elevationDeg float64) {
	azimuthDeg = 360.0 * float64(az) / float64(g.AzimuthSteps)
	elevationDeg = g.MinElevation + (g.MaxElevation-g.MinElevation)*float64(el)/float64(g.ElevationSteps-1)
	return
}

// VerifyUnit reports the largest deviation from unit norm across the table.
// Deterministic construction keeps this at floating-point noise; exposed for
// tests and startup sanity logging.
func (g *RayGrid) VerifyUnit() float64 {
	worst := 0.0
	for i := 0; i < len(g.directions); i += 3 {
		x, y, z := g.directions[i], g.directions[i+1], g.directions[i+2]
		dev := math.Abs(math.Sqrt(x*x+y*y+z*z) - 1.0)
		if dev > worst {
			worst = dev
		}
	}
	return worst
}
