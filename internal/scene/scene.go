// Package scene provides the intersection primitive consumed by the
// simulator core: a small geometric world of planes, spheres and boxes,
// each carrying a per-surface reflectivity scalar.
package scene

import (
	"math"

	"github.com/banshee-data/scan-sim/internal/sim"
)

// Surface is one raycastable shape.
type Surface interface {
	// Intersect returns the distance along the ray to the nearest
	// intersection within maxDistance, or ok=false.
	Intersect(ox, oy, oz, dx, dy, dz, maxDistance float64) (distance float64, ok bool)

	// Reflectivity returns the surface's reflectivity scalar in (0, 1];
	// zero means the surface carries no reflectivity data.
	Reflectivity() float64
}

// Scene is an ordered set of surfaces answering nearest-hit queries.
// It implements sim.Raycaster. Queries bound their search distance and are
// issued from a single goroutine by the registrar.
type Scene struct {
	surfaces []Surface
}

// New creates a scene from surfaces.
func New(surfaces ...Surface) *Scene {
	return &Scene{surfaces: surfaces}
}

// Add appends a surface.
func (s *Scene) Add(surface Surface) { s.surfaces = append(s.surfaces, surface) }

// Raycast returns the nearest surface hit within maxDistance.
func (s *Scene) Raycast(ox, oy, oz, dx, dy, dz, maxDistance float64) (sim.RaycastHit, bool) {
	best := maxDistance
	var hit Surface
	for _, surface := range s.surfaces {
		if d, ok := surface.Intersect(ox, oy, oz, dx, dy, dz, best); ok && d < best {
			best = d
			hit = surface
		}
	}
	if hit == nil {
		return sim.RaycastHit{}, false
	}
	return sim.RaycastHit{
		Distance:     best,
		X:            ox + dx*best,
		Y:            oy + dy*best,
		Z:            oz + dz*best,
		Reflectivity: hit.Reflectivity(),
	}, true
}

// Plane is an infinite plane through Point with unit Normal.
type Plane struct {
	PX, PY, PZ   float64
	NX, NY, NZ   float64
	Reflectance  float64
	epsNormalDot float64
}

// NewPlane builds a plane, normalizing the normal.
func NewPlane(px, py, pz, nx, ny, nz, reflectance float64) *Plane {
	n := math.Sqrt(nx*nx + ny*ny + nz*nz)
	return &Plane{
		PX: px, PY: py, PZ: pz,
		NX: nx / n, NY: ny / n, NZ: nz / n,
		Reflectance: reflectance,
	}
}

// Intersect implements Surface.
func (p *Plane) Intersect(ox, oy, oz, dx, dy, dz, maxDistance float64) (float64, bool) {
	denom := dx*p.NX + dy*p.NY + dz*p.NZ
	if math.Abs(denom) < 1e-12 {
		return 0, false
	}
	t := ((p.PX-ox)*p.NX + (p.PY-oy)*p.NY + (p.PZ-oz)*p.NZ) / denom
	if t <= 0 || t > maxDistance {
		return 0, false
	}
	return t, true
}

// Reflectivity implements Surface.
func (p *Plane) Reflectivity() float64 { return p.Reflectance }

// Sphere is a sphere at (CX, CY, CZ) with radius R.
type Sphere struct {
	CX, CY, CZ  float64
	R           float64
	Reflectance float64
}

// Intersect implements Surface.
func (s *Sphere) Intersect(ox, oy, oz, dx, dy, dz, maxDistance float64) (float64, bool) {
	lx, ly, lz := s.CX-ox, s.CY-oy, s.CZ-oz
	tca := lx*dx + ly*dy + lz*dz
	d2 := lx*lx + ly*ly + lz*lz - tca*tca
	r2 := s.R * s.R
	if d2 > r2 {
		return 0, false
	}
	thc := math.Sqrt(r2 - d2)
	t := tca - thc
	if t <= 0 {
		t = tca + thc // origin inside the sphere
	}
	if t <= 0 || t > maxDistance {
		return 0, false
	}
	return t, true
}

// Reflectivity implements Surface.
func (s *Sphere) Reflectivity() float64 { return s.Reflectance }

// Box is an axis-aligned box spanning (MinX..MaxX, MinY..MaxY, MinZ..MaxZ).
type Box struct {
	MinX, MinY, MinZ float64
	MaxX, MaxY, MaxZ float64
	Reflectance      float64
}

// Intersect implements Surface using the slab method.
func (b *Box) Intersect(ox, oy, oz, dx, dy, dz, maxDistance float64) (float64, bool) {
	tmin, tmax := 0.0, maxDistance

	for _, axis := range [3][3]float64{
		{ox, dx, 0}, {oy, dy, 1}, {oz, dz, 2},
	} {
		o, d := axis[0], axis[1]
		var lo, hi float64
		switch int(axis[2]) {
		case 0:
			lo, hi = b.MinX, b.MaxX
		case 1:
			lo, hi = b.MinY, b.MaxY
		default:
			lo, hi = b.MinZ, b.MaxZ
		}
		if math.Abs(d) < 1e-12 {
			if o < lo || o > hi {
				return 0, false
			}
			continue
		}
		t1 := (lo - o) / d
		t2 := (hi - o) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
		if tmin > tmax {
			return 0, false
		}
	}

	if tmin <= 0 || tmin > maxDistance {
		return 0, false
	}
	return tmin, true
}

// Reflectivity implements Surface.
func (b *Box) Reflectivity() float64 { return b.Reflectance }
