package sim

import "math"

// RaycastHit is the nearest-surface result of an intersection query.
// Reflectivity is the per-surface scalar in (0, 1]; zero means the surface
// carried no reflectivity data.
type RaycastHit struct {
	Distance     float64 // metres from the ray origin
	X, Y, Z      float64 // world-frame hit point
	Reflectivity float64
}

// Raycaster is the external intersection primitive. Implementations return
// the nearest hit within maxDistance, or ok=false for a miss. The registrar
// assumes it is not safe for concurrent invocation and calls it from a
// single goroutine.
type Raycaster interface {
	Raycast(ox, oy, oz, dx, dy, dz, maxDistance float64) (RaycastHit, bool)
}

// Detection is one accepted LiDAR return: the (noise-perturbed) world hit
// point plus the direction and measured range it was seen at. Detections
// carry no persistent identity; sinks consume them within the tick.
type Detection struct {
	Tick         uint64
	X, Y, Z      float64 // world-frame hit point after range perturbation
	DX, DY, DZ   float64 // world-frame ray direction
	Range        float64 // perturbed range, metres
	Reflectivity float64
}

// HitRegistrarParams are the acceptance-law and geometry knobs.
type HitRegistrarParams struct {
	MinDistance             float64 // skip-self offset, metres
	MaxDistance             float64 // raycast search bound, metres
	HitRegistrationConstant float64
	HitRegistrationExponent float64
	DistanceSigma           float64
}

// HitRegistrar issues intersection queries for a tick's composed directions
// and applies the reflectivity-dependent registration rule: a hit at range r
// with reflectivity rho is accepted iff r < C * rho^e, so brighter surfaces
// register from farther away. Accepted ranges are perturbed with one
// distance-noise draw per accepted ray. Runs single-threaded over the batch.
type HitRegistrar struct {
	params HitRegistrarParams

	// detections is reused across ticks; Register returns a view of it.
	detections []Detection
}

// NewHitRegistrar pre-sizes the detection buffer for raysPerTick rays.
func NewHitRegistrar(params HitRegistrarParams, raysPerTick int) *HitRegistrar {
	return &HitRegistrar{
		params:     params,
		detections: make([]Detection, 0, raysPerTick),
	}
}

// Accepts reports whether a hit at distance r with the given reflectivity
// passes the registration rule.
func (h *HitRegistrar) Accepts(r, reflectivity float64) bool {
	if reflectivity <= 0 {
		return false
	}
	return r < h.params.HitRegistrationConstant*math.Pow(reflectivity, h.params.HitRegistrationExponent)
}

// Register casts each composed direction from the sensor position and emits
// accepted detections. dirs holds packed x,y,z triples; px,py,pz is the
// sensor world position. A surface with missing reflectivity yields no
// detection for that ray but never aborts the batch. The returned slice is
// valid until the next Register call.
func (h *HitRegistrar) Register(caster Raycaster, dirs []float64, px, py, pz float64, tick uint64, noise *NoiseSource) []Detection {
	h.detections = h.detections[:0]
	accepted := 0

	for i := 0; i < len(dirs)/3; i++ {
		dx, dy, dz := dirs[i*3], dirs[i*3+1], dirs[i*3+2]

		// Offset the origin along the ray so the cast cannot hit the
		// sensor body itself.
		ox := px + dx*h.params.MinDistance
		oy := py + dy*h.params.MinDistance
		oz := pz + dz*h.params.MinDistance

		hit, ok := caster.Raycast(ox, oy, oz, dx, dy, dz, h.params.MaxDistance)
		if !ok {
			continue
		}
		if !h.Accepts(hit.Distance, hit.Reflectivity) {
			continue
		}

		// One distance draw per accepted ray, in acceptance order.
		perturb := noise.Distance(accepted) * h.params.DistanceSigma
		accepted++

		h.detections = append(h.detections, Detection{
			Tick:         tick,
			X:            hit.X + dx*perturb,
			Y:            hit.Y + dy*perturb,
			Z:            hit.Z + dz*perturb,
			DX:           dx,
			DY:           dy,
			DZ:           dz,
			Range:        hit.Distance + perturb,
			Reflectivity: hit.Reflectivity,
		})
	}

	return h.detections
}
