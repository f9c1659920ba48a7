package sim

import "fmt"

// Params is the full configuration surface of one simulated sensor.
// Angles are degrees, distances metres, rates per second.
type Params struct {
	AzimuthSteps   int
	ElevationSteps int
	MinElevation   float64
	MaxElevation   float64

	ScanRate int // full revolutions per second
	TickRate int // simulation ticks per second

	MinDistance float64 // skip-self raycast offset
	MaxDistance float64 // raycast search bound

	HitRegistrationConstant float64
	HitRegistrationExponent float64

	AngleSigma    float64 // std-dev of angular noise, degrees
	DistanceSigma float64 // std-dev of range noise, metres

	MasterSeed uint64

	// Workers bounds the parallel batch width for noise refill and
	// direction composition. Zero means runtime.NumCPU.
	Workers int
}

// DefaultParams models a 360x~62 degree unit scanning at 10 rev/s under a
// 60 Hz simulation.
func DefaultParams() Params {
	return Params{
		AzimuthSteps:            360,
		ElevationSteps:          40,
		MinElevation:            -52.0,
		MaxElevation:            10.0,
		ScanRate:                10,
		TickRate:                60,
		MinDistance:             0.05,
		MaxDistance:             120.0,
		HitRegistrationConstant: 15.23,
		HitRegistrationExponent: 0.369,
		AngleSigma:              0.03,
		DistanceSigma:           0.02,
		MasterSeed:              1,
	}
}

// Validate checks the parameter domains that are fatal at construction.
// Scheduling divisibility is checked separately by NewScanScheduler.
func (p Params) Validate() error {
	if p.AzimuthSteps < 1 {
		return fmt.Errorf("%w: azimuth_steps must be >= 1, got %d", ErrInvalidParameter, p.AzimuthSteps)
	}
	if p.ElevationSteps < 2 {
		return fmt.Errorf("%w: elevation_steps must be >= 2, got %d", ErrInvalidParameter, p.ElevationSteps)
	}
	if !(p.MinElevation < p.MaxElevation) {
		return fmt.Errorf("%w: min_elevation (%g) must be below max_elevation (%g)",
			ErrInvalidParameter, p.MinElevation, p.MaxElevation)
	}
	if p.ScanRate < 1 || p.TickRate < 1 {
		return fmt.Errorf("%w: scan_rate and tick_rate must be positive, got %d and %d",
			ErrInvalidParameter, p.ScanRate, p.TickRate)
	}
	if p.MinDistance < 0 || p.MaxDistance <= p.MinDistance {
		return fmt.Errorf("%w: need 0 <= min_distance < max_distance, got %g and %g",
			ErrInvalidParameter, p.MinDistance, p.MaxDistance)
	}
	if p.HitRegistrationConstant <= 0 {
		return fmt.Errorf("%w: hit_registration_constant must be positive, got %g",
			ErrInvalidParameter, p.HitRegistrationConstant)
	}
	if p.AngleSigma < 0 || p.DistanceSigma < 0 {
		return fmt.Errorf("%w: noise sigmas must be non-negative, got %g and %g",
			ErrInvalidParameter, p.AngleSigma, p.DistanceSigma)
	}
	return nil
}

// RaysPerTick returns the number of rays in one active section.
func (p Params) RaysPerTick() int {
	return p.AzimuthSteps * p.ScanRate / p.TickRate * p.ElevationSteps
}

// TickPeriod returns the tick period in seconds.
func (p Params) TickPeriod() float64 { return 1.0 / float64(p.TickRate) }
