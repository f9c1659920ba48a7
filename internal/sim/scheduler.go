package sim

import "fmt"

// ScanScheduler spreads one full revolution of the ray grid across
// totalSections consecutive ticks. Each tick activates one contiguous
// section of azimuth columns; after totalSections ticks every azimuth index
// has been the base of exactly one active section.
type ScanScheduler struct {
	azimuthSteps  int
	sectionSize   int // azimuth columns per tick
	totalSections int
	section       int // 1-based, cycles [1, totalSections]
}

// NewScanScheduler derives the section geometry from the desired revolution
// rate (scanRate, rev/s) versus the simulation tick rate (ticks/s). Both
// ratios must be exact: a non-integral ratio would silently lose or
// duplicate azimuth coverage, so it is rejected rather than rounded.
func NewScanScheduler(azimuthSteps, scanRate, tickRate int) (*ScanScheduler, error) {
	if azimuthSteps < 1 {
		return nil, fmt.Errorf("%w: azimuthSteps must be >= 1, got %d", ErrInvalidParameter, azimuthSteps)
	}
	if scanRate < 1 || tickRate < 1 {
		return nil, fmt.Errorf("%w: scanRate and tickRate must be positive, got %d and %d",
			ErrInvalidParameter, scanRate, tickRate)
	}
	if tickRate%scanRate != 0 {
		return nil, fmt.Errorf("%w: tickRate %d is not a multiple of scanRate %d",
			ErrSchedulingMismatch, tickRate, scanRate)
	}
	if (azimuthSteps*scanRate)%tickRate != 0 {
		return nil, fmt.Errorf("%w: azimuthSteps*scanRate (%d) is not divisible by tickRate %d",
			ErrSchedulingMismatch, azimuthSteps*scanRate, tickRate)
	}

	return &ScanScheduler{
		azimuthSteps:  azimuthSteps,
		sectionSize:   azimuthSteps * scanRate / tickRate,
		totalSections: tickRate / scanRate,
		section:       1,
	}, nil
}

// SectionSize returns the number of azimuth columns scanned per tick.
func (s *ScanScheduler) SectionSize() int { return s.sectionSize }

// TotalSections returns the number of ticks per full revolution.
func (s *ScanScheduler) TotalSections() int { return s.totalSections }

// Section returns the 1-based index of the section the next Advance will
// activate.
func (s *ScanScheduler) Section() int { return s.section }

// Advance returns the active azimuth column range [startAz, startAz+count)
// for this tick and moves to the next section. The range is within grid
// bounds by construction (sectionSize*totalSections == azimuthSteps).
func (s *ScanScheduler) Advance() (startAz, count int) {
	startAz = (s.section - 1) * s.sectionSize
	count = s.sectionSize
	s.section = s.section%s.totalSections + 1
	return
}
