// Package config loads the simulator tuning file. Fields are pointers so a
// partial JSON file only overrides what it names; the Get* methods carry the
// defaults for everything else.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/banshee-data/scan-sim/internal/sim"
)

// SimConfig is the root JSON configuration. The schema mirrors the sensor
// parameter surface plus the sink options, so one file configures a whole
// run.
type SimConfig struct {
	// Sensor geometry
	AzimuthSteps   *int     `json:"azimuth_steps,omitempty"`
	ElevationSteps *int     `json:"elevation_steps,omitempty"`
	MinElevation   *float64 `json:"min_elevation,omitempty"`
	MaxElevation   *float64 `json:"max_elevation,omitempty"`

	// Scheduling
	ScanRate *int `json:"scan_rate,omitempty"`
	TickRate *int `json:"tick_rate,omitempty"`

	// Ranging
	MinDistance             *float64 `json:"min_distance,omitempty"`
	MaxDistance             *float64 `json:"max_distance,omitempty"`
	HitRegistrationConstant *float64 `json:"hit_registration_constant,omitempty"`
	HitRegistrationExponent *float64 `json:"hit_registration_exponent,omitempty"`

	// Noise
	AngleSigma    *float64 `json:"angle_sigma,omitempty"`
	DistanceSigma *float64 `json:"distance_sigma,omitempty"`
	MasterSeed    *uint64  `json:"master_seed,omitempty"`

	// Runtime
	Workers *int `json:"workers,omitempty"`

	// Collaborator files
	TrackFile *string `json:"track_file,omitempty"`
	SceneFile *string `json:"scene_file,omitempty"`
}

// Empty returns a SimConfig with all fields unset.
func Empty() *SimConfig { return &SimConfig{} }

// Load reads a SimConfig from a JSON file. The path must end in .json and
// the file is bounded at 1MB.
func Load(path string) (*SimConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Empty()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate rejects values outside their domain. Scheduling divisibility is
// left to sensor construction, which owns that invariant.
func (c *SimConfig) Validate() error {
	if c.AzimuthSteps != nil && *c.AzimuthSteps < 1 {
		return fmt.Errorf("azimuth_steps must be >= 1, got %d", *c.AzimuthSteps)
	}
	if c.ElevationSteps != nil && *c.ElevationSteps < 2 {
		return fmt.Errorf("elevation_steps must be >= 2, got %d", *c.ElevationSteps)
	}
	if c.ScanRate != nil && *c.ScanRate < 1 {
		return fmt.Errorf("scan_rate must be positive, got %d", *c.ScanRate)
	}
	if c.TickRate != nil && *c.TickRate < 1 {
		return fmt.Errorf("tick_rate must be positive, got %d", *c.TickRate)
	}
	if c.AngleSigma != nil && *c.AngleSigma < 0 {
		return fmt.Errorf("angle_sigma must be non-negative, got %f", *c.AngleSigma)
	}
	if c.DistanceSigma != nil && *c.DistanceSigma < 0 {
		return fmt.Errorf("distance_sigma must be non-negative, got %f", *c.DistanceSigma)
	}
	return nil
}

// Params merges the loaded overrides onto sim.DefaultParams.
func (c *SimConfig) Params() sim.Params {
	p := sim.DefaultParams()
	if c.AzimuthSteps != nil {
		p.AzimuthSteps = *c.AzimuthSteps
	}
	if c.ElevationSteps != nil {
		p.ElevationSteps = *c.ElevationSteps
	}
	if c.MinElevation != nil {
		p.MinElevation = *c.MinElevation
	}
	if c.MaxElevation != nil {
		p.MaxElevation = *c.MaxElevation
	}
	if c.ScanRate != nil {
		p.ScanRate = *c.ScanRate
	}
	if c.TickRate != nil {
		p.TickRate = *c.TickRate
	}
	if c.MinDistance != nil {
		p.MinDistance = *c.MinDistance
	}
	if c.MaxDistance != nil {
		p.MaxDistance = *c.MaxDistance
	}
	if c.HitRegistrationConstant != nil {
		p.HitRegistrationConstant = *c.HitRegistrationConstant
	}
	if c.HitRegistrationExponent != nil {
		p.HitRegistrationExponent = *c.HitRegistrationExponent
	}
	if c.AngleSigma != nil {
		p.AngleSigma = *c.AngleSigma
	}
	if c.DistanceSigma != nil {
		p.DistanceSigma = *c.DistanceSigma
	}
	if c.MasterSeed != nil {
		p.MasterSeed = *c.MasterSeed
	}
	if c.Workers != nil {
		p.Workers = *c.Workers
	}
	return p
}

// GetTrackFile returns the az-transform track path or the default.
func (c *SimConfig) GetTrackFile() string {
	if c.TrackFile == nil || *c.TrackFile == "" {
		return "config/aztrack.csv"
	}
	return *c.TrackFile
}

// GetSceneFile returns the scene path; empty means the built-in demo scene.
func (c *SimConfig) GetSceneFile() string {
	if c.SceneFile == nil {
		return ""
	}
	return *c.SceneFile
}
