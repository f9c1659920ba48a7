package scene

import (
	"encoding/json"
	"fmt"
	"os"
)

// sceneFile is the on-disk JSON schema for a scene. Each list is optional;
// omitted lists contribute no surfaces.
type sceneFile struct {
	Planes []struct {
		Point        [3]float64 `json:"point"`
		Normal       [3]float64 `json:"normal"`
		Reflectivity float64    `json:"reflectivity"`
	} `json:"planes,omitempty"`
	Spheres []struct {
		Center       [3]float64 `json:"center"`
		Radius       float64    `json:"radius"`
		Reflectivity float64    `json:"reflectivity"`
	} `json:"spheres,omitempty"`
	Boxes []struct {
		Min          [3]float64 `json:"min"`
		Max          [3]float64 `json:"max"`
		Reflectivity float64    `json:"reflectivity"`
	} `json:"boxes,omitempty"`
}

// Load reads a scene description from a JSON file.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene file: %w", err)
	}

	var f sceneFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse scene JSON: %w", err)
	}

	s := New()
	for _, p := range f.Planes {
		s.Add(NewPlane(p.Point[0], p.Point[1], p.Point[2], p.Normal[0], p.Normal[1], p.Normal[2], p.Reflectivity))
	}
	for _, sp := range f.Spheres {
		s.Add(&Sphere{CX: sp.Center[0], CY: sp.Center[1], CZ: sp.Center[2], R: sp.Radius, Reflectance: sp.Reflectivity})
	}
	for _, b := range f.Boxes {
		s.Add(&Box{
			MinX: b.Min[0], MinY: b.Min[1], MinZ: b.Min[2],
			MaxX: b.Max[0], MaxY: b.Max[1], MaxZ: b.Max[2],
			Reflectance: b.Reflectivity,
		})
	}

	return s, nil
}

// Demo returns a small built-in scene: flat ground, two walls and a few
// scattered objects with varied reflectivity.
func Demo() *Scene {
	return New(
		NewPlane(0, 0, -1.8, 0, 0, 1, 0.65), // ground below the sensor
		NewPlane(0, 40, 0, 0, -1, 0, 0.45),  // wall ahead
		NewPlane(-30, 0, 0, 1, 0, 0, 0.30),  // wall left
		&Sphere{CX: 5, CY: 12, CZ: 0, R: 1.2, Reflectance: 0.9},
		&Sphere{CX: -8, CY: 20, CZ: 0.5, R: 2.0, Reflectance: 0.2},
		&Box{MinX: 10, MinY: 18, MinZ: -1.8, MaxX: 12.5, MaxY: 23, MaxZ: 1.2, Reflectance: 0.75},
	)
}
