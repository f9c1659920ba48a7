package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// planeCaster intersects a single horizontal-facing wall at fixed range
// with fixed reflectivity; rays pointing away miss.
type planeCaster struct {
	distance     float64
	reflectivity float64
}

func (p planeCaster) Raycast(ox, oy, oz, dx, dy, dz, maxDistance float64) (RaycastHit, bool) {
	if p.distance > maxDistance {
		return RaycastHit{}, false
	}
	return RaycastHit{
		Distance:     p.distance,
		X:            ox + dx*p.distance,
		Y:            oy + dy*p.distance,
		Z:            oz + dz*p.distance,
		Reflectivity: p.reflectivity,
	}, true
}

// missCaster never hits anything.
type missCaster struct{}

func (missCaster) Raycast(ox, oy, oz, dx, dy, dz, maxDistance float64) (RaycastHit, bool) {
	return RaycastHit{}, false
}

func testRegistrarParams() HitRegistrarParams {
	return HitRegistrarParams{
		MinDistance:             0.05,
		MaxDistance:             100,
		HitRegistrationConstant: 15.23,
		HitRegistrationExponent: 0.369,
		DistanceSigma:           0, // exact geometry in most tests
	}
}

func TestAccepts_ReferenceScenario(t *testing.T) {
	h := NewHitRegistrar(testRegistrarParams(), 16)

	// Full reflectivity: threshold is 15.23 * 1^0.369 = 15.23 m.
	assert.True(t, h.Accepts(10, 1.0), "rho=1 at 10m must register")
	assert.False(t, h.Accepts(20, 1.0), "rho=1 at 20m must not register")
}

func TestAccepts_MonotoneInReflectivity(t *testing.T) {
	h := NewHitRegistrar(testRegistrarParams(), 16)

	// At fixed distance, acceptance never switches off as reflectivity
	// rises.
	for _, r := range []float64{1, 5, 10, 14, 15.22, 20, 60} {
		prev := false
		for rho := 0.05; rho <= 1.0; rho += 0.05 {
			cur := h.Accepts(r, rho)
			if prev {
				assert.Truef(t, cur, "acceptance regressed at r=%g rho=%g", r, rho)
			}
			prev = cur
		}
	}
}

func TestAccepts_MonotoneInDistance(t *testing.T) {
	h := NewHitRegistrar(testRegistrarParams(), 16)

	// Single cutoff per reflectivity: if the farther hit registers, so
	// does the nearer one.
	for _, rho := range []float64{0.1, 0.3, 0.7, 1.0} {
		for r1 := 1.0; r1 < 40; r1 += 1.5 {
			r2 := r1 + 3
			if h.Accepts(r2, rho) {
				assert.Truef(t, h.Accepts(r1, rho), "nearer hit rejected at rho=%g, r1=%g", rho, r1)
			}
		}
	}
}

func TestRegister_MissingReflectivity(t *testing.T) {
	h := NewHitRegistrar(testRegistrarParams(), 4)
	n, err := NewNoiseSource(1, 4, 1)
	require.NoError(t, err)
	n.Refill(0)

	dirs := []float64{0, 1, 0, 1, 0, 0}
	detections := h.Register(planeCaster{distance: 5, reflectivity: 0}, dirs, 0, 0, 0, 0, n)
	assert.Empty(t, detections, "surfaces without reflectivity data yield no detections")
}

func TestRegister_MissEmitsNothing(t *testing.T) {
	h := NewHitRegistrar(testRegistrarParams(), 4)
	n, _ := NewNoiseSource(1, 4, 1)
	n.Refill(0)

	detections := h.Register(missCaster{}, []float64{0, 1, 0}, 0, 0, 0, 0, n)
	assert.Empty(t, detections)
}

func TestRegister_GeometryAndOffset(t *testing.T) {
	params := testRegistrarParams()
	h := NewHitRegistrar(params, 4)
	n, _ := NewNoiseSource(1, 4, 1)
	n.Refill(0)

	dirs := []float64{0, 1, 0}
	detections := h.Register(planeCaster{distance: 8, reflectivity: 1}, dirs, 2, 3, 4, 17, n)
	require.Len(t, detections, 1)

	d := detections[0]
	assert.Equal(t, uint64(17), d.Tick)
	// Origin is offset along the ray by MinDistance before casting.
	assert.InDelta(t, 2.0, d.X, 1e-12)
	assert.InDelta(t, 3+params.MinDistance+8, d.Y, 1e-12)
	assert.InDelta(t, 4.0, d.Z, 1e-12)
	assert.InDelta(t, 8.0, d.Range, 1e-12)
	assert.Equal(t, 1.0, d.Reflectivity)
}

func TestRegister_DistanceNoisePerAcceptedRay(t *testing.T) {
	// Two of three rays accepted: distance draws must be consumed in
	// acceptance order from the buffer's distance region, not by ray index.
	params := testRegistrarParams()
	params.DistanceSigma = 0.5
	h := NewHitRegistrar(params, 3)
	n, _ := NewNoiseSource(5, 3, 1)
	n.Refill(2)

	caster := &selectiveCaster{hitIdx: map[int]bool{0: true, 2: true}, distance: 6, reflectivity: 1}
	dirs := []float64{0, 1, 0, 1, 0, 0, 0, 0, 1}

	detections := h.Register(caster, dirs, 0, 0, 0, 0, n)
	require.Len(t, detections, 2)

	assert.InDelta(t, 6+n.Distance(0)*0.5, detections[0].Range, 1e-12)
	assert.InDelta(t, 6+n.Distance(1)*0.5, detections[1].Range, 1e-12)
}

// selectiveCaster hits only for configured ray indices, tracking call order.
type selectiveCaster struct {
	hitIdx       map[int]bool
	calls        int
	distance     float64
	reflectivity float64
}

func (c *selectiveCaster) Raycast(ox, oy, oz, dx, dy, dz, maxDistance float64) (RaycastHit, bool) {
	idx := c.calls
	c.calls++
	if !c.hitIdx[idx] {
		return RaycastHit{}, false
	}
	return RaycastHit{
		Distance:     c.distance,
		X:            ox + dx*c.distance,
		Y:            oy + dy*c.distance,
		Z:            oz + dz*c.distance,
		Reflectivity: c.reflectivity,
	}, true
}

func TestRegister_PerturbationAlongRay(t *testing.T) {
	params := testRegistrarParams()
	params.DistanceSigma = 1.0
	h := NewHitRegistrar(params, 1)
	n, _ := NewNoiseSource(8, 1, 1)
	n.Refill(0)

	dirs := []float64{0, 1, 0}
	detections := h.Register(planeCaster{distance: 5, reflectivity: 1}, dirs, 0, 0, 0, 0, n)
	require.Len(t, detections, 1)

	d := detections[0]
	perturb := n.Distance(0)
	assert.InDelta(t, 5+perturb, d.Range, 1e-12)
	// The hit point moves along the ray by the same amount.
	assert.InDelta(t, params.MinDistance+5+perturb, d.Y, 1e-12)
	assert.InDelta(t, 0.0, d.X, 1e-12)
	assert.True(t, math.Abs(perturb) > 0, "distance draw should be nonzero")
}
