package sim

import "math"

// DirectionComposer turns the active grid slice into final world-space ray
// directions. Per ray it chains: grid direction -> sensor pose rotation ->
// az-transform rotation (yaw azimuth, pitch -zenith) -> angular-noise
// rotation (yaw nx*sigma, pitch ny*sigma) -> renormalize. Rays are
// independent, so the batch runs as a chunked parallel map writing into an
// output buffer distinct from the grid slice.
type DirectionComposer struct {
	angleSigma float64
	workers    int

	// out holds packed x,y,z triples for one tick's section; allocated once
	// and reused every tick.
	out []float64
}

// NewDirectionComposer pre-allocates the output buffer for raysPerTick rays.
func NewDirectionComposer(angleSigma float64, raysPerTick, workers int) *DirectionComposer {
	if workers < 1 {
		workers = 1
	}
	return &DirectionComposer{
		angleSigma: angleSigma,
		workers:    workers,
		out:        make([]float64, raysPerTick*3),
	}
}

// Compose maps the section slice (packed x,y,z triples, sensor frame) to
// world directions using the pose, the tick's control angles and the noise
// buffer. The returned slice aliases the composer's internal buffer and is
// valid until the next Compose call.
func (c *DirectionComposer) Compose(section []float64, pose *Pose, azimuthDeg, zenithDeg float64, noise *NoiseSource) []float64 {
	rays := len(section) / 3
	out := c.out[:rays*3]

	parallelFor(c.workers, rays, func(start, end int) {
		for i := start; i < end; i++ {
			x, y, z := section[i*3], section[i*3+1], section[i*3+2]

			// Sensor pose first: the az transform and noise act on world
			// axes, re-aiming the already-posed pattern.
			x, y, z = pose.RotateDirection(x, y, z)

			x, y, z = RotatePitch(x, y, z, -zenithDeg)
			x, y, z = RotateYaw(x, y, z, azimuthDeg)

			nx, ny := noise.AngularPair(i)
			x, y, z = RotatePitch(x, y, z, ny*c.angleSigma)
			x, y, z = RotateYaw(x, y, z, nx*c.angleSigma)

			// Rotations preserve length in exact arithmetic; renormalize to
			// stop float error accumulating across the five-stage chain.
			norm := math.Sqrt(x*x + y*y + z*z)
			out[i*3] = x / norm
			out[i*3+1] = y / norm
			out[i*3+2] = z / norm
		}
	})

	return out
}
