package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/banshee-data/scan-sim/internal/sim"
)

func writeConfig(t *testing.T, name, blob string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(blob), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_PartialOverride(t *testing.T) {
	path := writeConfig(t, "sim.json", `{
		"azimuth_steps": 720,
		"scan_rate": 5,
		"angle_sigma": 0.1,
		"track_file": "tracks/slow.csv"
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	got := cfg.Params()
	want := sim.DefaultParams()
	want.AzimuthSteps = 720
	want.ScanRate = 5
	want.AngleSigma = 0.1

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("params mismatch (-want +got):\n%s", diff)
	}
	if cfg.GetTrackFile() != "tracks/slow.csv" {
		t.Fatalf("track file override lost: %s", cfg.GetTrackFile())
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg := Empty()

	if diff := cmp.Diff(sim.DefaultParams(), cfg.Params()); diff != "" {
		t.Fatalf("empty config should yield defaults (-want +got):\n%s", diff)
	}
	if cfg.GetTrackFile() != "config/aztrack.csv" {
		t.Fatalf("unexpected default track file: %s", cfg.GetTrackFile())
	}
	if cfg.GetSceneFile() != "" {
		t.Fatalf("default scene file should be empty, got %s", cfg.GetSceneFile())
	}
}

func TestLoad_Validation(t *testing.T) {
	cases := []struct {
		name string
		blob string
	}{
		{"bad azimuth steps", `{"azimuth_steps": 0}`},
		{"bad elevation steps", `{"elevation_steps": 1}`},
		{"bad scan rate", `{"scan_rate": -1}`},
		{"bad tick rate", `{"tick_rate": 0}`},
		{"negative angle sigma", `{"angle_sigma": -0.5}`},
		{"negative distance sigma", `{"distance_sigma": -1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, "bad.json", tc.blob)
			if _, err := Load(path); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestLoad_FileChecks(t *testing.T) {
	t.Run("wrong extension", func(t *testing.T) {
		path := writeConfig(t, "sim.yaml", "{}")
		if _, err := Load(path); err == nil {
			t.Fatal("expected extension error")
		}
	})
	t.Run("missing file", func(t *testing.T) {
		if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
			t.Fatal("expected stat error")
		}
	})
	t.Run("malformed JSON", func(t *testing.T) {
		path := writeConfig(t, "sim.json", "{oops")
		if _, err := Load(path); err == nil {
			t.Fatal("expected parse error")
		}
	})
}
