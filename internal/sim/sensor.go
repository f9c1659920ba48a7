package sim

import (
	"context"
	"fmt"
	"runtime"
)

// PoseProvider yields the sensor's current world pose, read once per tick.
type PoseProvider interface {
	Pose() *Pose
}

// FixedPose is a PoseProvider that always returns the same pose.
type FixedPose struct{ P *Pose }

// Pose implements PoseProvider.
func (f FixedPose) Pose() *Pose { return f.P }

// OrbitPose yaws the sensor by StepDeg every time it is read, spinning the
// platform in place for demos and tests. Not safe for concurrent reads; the
// tick loop reads the pose once per tick.
type OrbitPose struct {
	SensorID string
	X, Y, Z  float64
	StepDeg  float64
	yawDeg   float64
}

// Pose implements PoseProvider.
func (o *OrbitPose) Pose() *Pose {
	p := YawPose(o.SensorID, o.X, o.Y, o.Z, o.yawDeg)
	o.yawDeg += o.StepDeg
	if o.yawDeg >= 360 {
		o.yawDeg -= 360
	}
	return p
}

// DetectionSink consumes one tick's accepted detections. The slice is only
// valid for the duration of the call; sinks that retain detections must
// copy them.
type DetectionSink interface {
	Emit(tick uint64, detections []Detection)
}

// Sensor owns the whole per-tick pipeline: the ray grid, the section
// scheduler, the az-transform track, the noise and direction buffers, and
// the hit registrar. Buffers are allocated once here and reused every tick.
type Sensor struct {
	params    Params
	grid      *RayGrid
	scheduler *ScanScheduler
	track     *AzTransformTrack
	noise     *NoiseSource
	composer  *DirectionComposer
	registrar *HitRegistrar

	poses  PoseProvider
	caster Raycaster
	sinks  []DetectionSink
}

// NewSensor validates params, builds the grid and scheduler, and wires the
// collaborators. The track supplies control angles; caster answers
// intersection queries; sinks receive detections.
func NewSensor(params Params, track *AzTransformTrack, poses PoseProvider, caster Raycaster, sinks ...DetectionSink) (*Sensor, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if track == nil {
		return nil, fmt.Errorf("%w: az-transform track is required", ErrInvalidParameter)
	}
	if poses == nil || caster == nil {
		return nil, fmt.Errorf("%w: pose provider and raycaster are required", ErrInvalidParameter)
	}

	grid, err := NewRayGrid(params.AzimuthSteps, params.ElevationSteps, params.MinElevation, params.MaxElevation)
	if err != nil {
		return nil, err
	}
	scheduler, err := NewScanScheduler(params.AzimuthSteps, params.ScanRate, params.TickRate)
	if err != nil {
		return nil, err
	}

	workers := params.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	raysPerTick := params.RaysPerTick()

	noise, err := NewNoiseSource(params.MasterSeed, raysPerTick, workers)
	if err != nil {
		return nil, err
	}

	return &Sensor{
		params:    params,
		grid:      grid,
		scheduler: scheduler,
		track:     track,
		noise:     noise,
		composer:  NewDirectionComposer(params.AngleSigma, raysPerTick, workers),
		registrar: NewHitRegistrar(HitRegistrarParams{
			MinDistance:             params.MinDistance,
			MaxDistance:             params.MaxDistance,
			HitRegistrationConstant: params.HitRegistrationConstant,
			HitRegistrationExponent: params.HitRegistrationExponent,
			DistanceSigma:           params.DistanceSigma,
		}, raysPerTick),
		poses:  poses,
		caster: caster,
		sinks:  sinks,
	}, nil
}

// Params returns the sensor's configuration.
func (s *Sensor) Params() Params { return s.params }

// Grid exposes the precomputed ray table for diagnostics.
func (s *Sensor) Grid() *RayGrid { return s.grid }

// Tick runs one simulation step for tick index tick: select the active
// section, sample the az transform at the tick timestamp, refill noise,
// compose world directions, and register hits. It returns the accepted
// detections (valid until the next Tick) after handing them to every sink.
//
// A track query past its coverage returns ErrOutOfRange and the tick scans
// nothing. A cancelled context abandons the tick before registration, so no
// partial detections reach the sinks.
func (s *Sensor) Tick(ctx context.Context, tick uint64) ([]Detection, error) {
	startAz, count := s.scheduler.Advance()

	t := float64(tick) / float64(s.params.TickRate)
	azimuthDeg, zenithDeg, err := s.track.Sample(t)
	if err != nil {
		return nil, err
	}

	pose := s.poses.Pose()

	s.noise.Refill(tick)
	section := s.grid.Slice(startAz, count)
	dirs := s.composer.Compose(section, pose, azimuthDeg, zenithDeg, s.noise)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	px, py, pz := pose.Position()
	detections := s.registrar.Register(s.caster, dirs, px, py, pz, tick, s.noise)

	for _, sink := range s.sinks {
		sink.Emit(tick, detections)
	}
	return detections, nil
}
