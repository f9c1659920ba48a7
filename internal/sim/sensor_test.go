package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// floorCaster models a flat fully-reflective plane normal to every ray at a
// fixed range, so each cast hits and acceptance depends only on range.
type floorCaster struct {
	distance float64
	rho      float64
	calls    int
}

func (f *floorCaster) Raycast(ox, oy, oz, dx, dy, dz, maxDistance float64) (RaycastHit, bool) {
	f.calls++
	if f.distance > maxDistance {
		return RaycastHit{}, false
	}
	return RaycastHit{
		Distance:     f.distance,
		X:            ox + dx*f.distance,
		Y:            oy + dy*f.distance,
		Z:            oz + dz*f.distance,
		Reflectivity: f.rho,
	}, true
}

// captureSink copies every emitted batch.
type captureSink struct {
	ticks   []uint64
	batches [][]Detection
}

func (c *captureSink) Emit(tick uint64, detections []Detection) {
	c.ticks = append(c.ticks, tick)
	batch := make([]Detection, len(detections))
	copy(batch, detections)
	c.batches = append(c.batches, batch)
}

func flatTrack(t *testing.T, seconds int, tickPeriod float64) *AzTransformTrack {
	t.Helper()
	rows := make([][2]float64, seconds+1)
	tr, err := NewAzTransformTrack(rows, tickPeriod)
	require.NoError(t, err)
	return tr
}

func testParams() Params {
	p := DefaultParams()
	p.AzimuthSteps = 360
	p.ElevationSteps = 40
	p.ScanRate = 10
	p.TickRate = 60
	p.Workers = 2
	return p
}

func TestNewSensor_Validation(t *testing.T) {
	p := testParams()
	track := flatTrack(t, 10, p.TickPeriod())
	caster := &floorCaster{distance: 10, rho: 1}

	t.Run("nil track", func(t *testing.T) {
		_, err := NewSensor(p, nil, FixedPose{P: IdentityPose("s")}, caster)
		assert.ErrorIs(t, err, ErrInvalidParameter)
	})
	t.Run("bad params", func(t *testing.T) {
		bad := p
		bad.ElevationSteps = 1
		_, err := NewSensor(bad, track, FixedPose{P: IdentityPose("s")}, caster)
		assert.ErrorIs(t, err, ErrInvalidParameter)
	})
	t.Run("scheduling mismatch", func(t *testing.T) {
		bad := p
		bad.TickRate = 59
		_, err := NewSensor(bad, track, FixedPose{P: IdentityPose("s")}, caster)
		assert.ErrorIs(t, err, ErrSchedulingMismatch)
	})
}

func TestSensor_EndToEndRevolution(t *testing.T) {
	p := testParams()
	require.Equal(t, 2400, p.RaysPerTick(), "360*10/60 azimuth columns of 40 rays")

	track := flatTrack(t, 10, p.TickPeriod())
	caster := &floorCaster{distance: 10, rho: 1}
	sink := &captureSink{}

	sensor, err := NewSensor(p, track, FixedPose{P: IdentityPose("s")}, caster, sink)
	require.NoError(t, err)

	ctx := context.Background()
	for tick := uint64(0); tick < 6; tick++ {
		detections, err := sensor.Tick(ctx, tick)
		require.NoError(t, err)
		// rho=1 at 10m with the default law (15.23 * 1^0.369 = 15.23 m
		// threshold) registers every ray.
		assert.Len(t, detections, 2400, "tick %d", tick)
	}

	// Six ticks of 2400 rays sweep the whole grid exactly once.
	assert.Equal(t, 6*2400, caster.calls)
	require.Len(t, sink.batches, 6)

	// With a flat (zero) az transform and an identity pose, the union of
	// detected directions covers all 360 azimuth columns exactly once.
	seen := make(map[int]int)
	for _, batch := range sink.batches {
		for _, d := range batch {
			azimuth := math.Atan2(d.DX, d.DY) * 180 / math.Pi
			if azimuth < 0 {
				azimuth += 360
			}
			seen[int(math.Round(azimuth))%360]++
		}
	}
	covered := 0
	for _, n := range seen {
		if n > 0 {
			covered++
		}
	}
	// Angular noise rounds a few columns into their neighbours; coverage
	// of nearly all columns is the invariant being checked.
	assert.Greater(t, covered, 350, "azimuth coverage after one revolution")
}

func TestSensor_RejectsBeyondThreshold(t *testing.T) {
	p := testParams()
	track := flatTrack(t, 10, p.TickPeriod())
	// rho=1 at 20m: 20 > 15.23, nothing registers.
	caster := &floorCaster{distance: 20, rho: 1}

	sensor, err := NewSensor(p, track, FixedPose{P: IdentityPose("s")}, caster)
	require.NoError(t, err)

	detections, err := sensor.Tick(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, detections)
}

func TestSensor_Deterministic(t *testing.T) {
	p := testParams()
	p.MasterSeed = 424242

	build := func() *Sensor {
		track := flatTrack(t, 10, p.TickPeriod())
		s, err := NewSensor(p, track, FixedPose{P: IdentityPose("s")}, &floorCaster{distance: 10, rho: 1})
		require.NoError(t, err)
		return s
	}

	a, b := build(), build()
	ctx := context.Background()
	for tick := uint64(0); tick < 3; tick++ {
		da, err := a.Tick(ctx, tick)
		require.NoError(t, err)
		db, err := b.Tick(ctx, tick)
		require.NoError(t, err)
		require.Equal(t, da, db, "tick %d diverged", tick)
	}
}

func TestSensor_TrackExhaustedSkipsScan(t *testing.T) {
	p := testParams()
	track := flatTrack(t, 1, p.TickPeriod()) // covers [0, 1s] = 60 ticks
	caster := &floorCaster{distance: 10, rho: 1}
	sink := &captureSink{}

	sensor, err := NewSensor(p, track, FixedPose{P: IdentityPose("s")}, caster, sink)
	require.NoError(t, err)

	ctx := context.Background()
	for tick := uint64(0); tick <= 60; tick++ {
		_, err := sensor.Tick(ctx, tick)
		require.NoError(t, err, "tick %d within coverage", tick)
	}

	// Tick 61 queries t=61/60 > 1s: the tick scans nothing and surfaces
	// the range error.
	before := caster.calls
	_, err = sensor.Tick(ctx, 61)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOutOfRange))
	assert.Equal(t, before, caster.calls, "no rays cast after track exhaustion")
	assert.Len(t, sink.batches, 61, "no batch emitted for the skipped tick")
}

func TestSensor_CancelledContext(t *testing.T) {
	p := testParams()
	track := flatTrack(t, 10, p.TickPeriod())
	caster := &floorCaster{distance: 10, rho: 1}
	sink := &captureSink{}

	sensor, err := NewSensor(p, track, FixedPose{P: IdentityPose("s")}, caster, sink)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = sensor.Tick(ctx, 0)
	require.Error(t, err)
	assert.Empty(t, sink.batches, "cancelled tick must not emit detections")
	assert.Equal(t, 0, caster.calls, "cancelled tick must not raycast")
}

func TestOrbitPose_AdvancesYaw(t *testing.T) {
	orbit := &OrbitPose{SensorID: "orbit", Y: 2, StepDeg: 90}

	first := orbit.Pose()
	require.True(t, IsValidTransformMatrix(first.T))
	x, y, z := first.Position()
	assert.Equal(t, [3]float64{0, 2, 0}, [3]float64{x, y, z})

	// 90 degrees clockwise carries local +Y onto world +X.
	dx, dy, dz := orbit.Pose().RotateDirection(0, 1, 0)
	assert.InDelta(t, 1, dx, 1e-12)
	assert.InDelta(t, 0, dy, 1e-12)
	assert.InDelta(t, 0, dz, 1e-12)

	// Full turn wraps back to the identity orientation.
	orbit.Pose()
	orbit.Pose()
	dx, dy, dz = orbit.Pose().RotateDirection(0, 1, 0)
	assert.InDelta(t, 0, dx, 1e-12)
	assert.InDelta(t, 1, dy, 1e-12)
	assert.InDelta(t, 0, dz, 1e-12)
}
