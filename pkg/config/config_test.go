// pkg/config/config_test.go
package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/opd-ai/go-trainsim/pkg/physics"
)

const sampleYAML = `
navigation:
  v_max: 12
  max_angle_speed: 15
laser:
  min_range: 0
  max_range: 15
  max_angle_speed: 20
  zero: 10
  place: [5, 15]
  cone_opening_angle: 145
  fire_power: 3
  fire_time_limit: 4
  max_angle_speed_tracking: 5
locator:
  min_range: 1
  max_range: 100
  max_angle_speed: 20
  zero: 0
  place: {x: 0, y: 2}
  cone_opening_angle: 180
  ray_count: 11
  ray_step: 5
cartographer:
  cluster_distance: 25
simulation:
  ticks: 50
  seed: 7
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestLoadFile_ConvertsDegrees(t *testing.T) {
	cfg, err := LoadFile(writeFile(t, "trainsim.yaml", sampleYAML))
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	checks := []struct {
		name     string
		got      float64
		expected float64
	}{
		{"navigation_v_max", cfg.Navigation.VMax, 12},
		{"navigation_turn_rate", cfg.Navigation.MaxAngleSpeed, physics.Radians(15)},
		{"laser_zero", cfg.Laser.Zero, physics.Radians(10)},
		{"laser_cone", cfg.Laser.ConeOpeningAngle, physics.Radians(145)},
		{"laser_place_y", cfg.Laser.Place.Y, 15},
		{"laser_tracking_rate", cfg.Laser.MaxAngleSpeedTracking, physics.Radians(5)},
		{"locator_ray_step", cfg.Locator.RayStep, physics.Radians(5)},
		{"locator_place_y", cfg.Locator.Place.Y, 2},
		{"cluster_distance", cfg.Cartographer.ClusterDistance, 25},
	}
	for _, tt := range checks {
		t.Run(tt.name, func(t *testing.T) {
			if diff := tt.got - tt.expected; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("got %v, expected %v", tt.got, tt.expected)
			}
		})
	}

	if cfg.Laser.FireTimeLimit != 4 || cfg.Locator.RayCount != 11 {
		t.Errorf("integer keys not decoded: %+v", cfg)
	}
	if cfg.Simulation.Ticks != 50 || cfg.Simulation.Seed != 7 || cfg.Simulation.Vehicles != 1 {
		t.Errorf("simulation section = %+v", cfg.Simulation)
	}
}

func TestLoadFile_EnvOverride(t *testing.T) {
	t.Setenv("TRAINSIM_NAVIGATION_V_MAX", "25")
	cfg, err := LoadFile(writeFile(t, "trainsim.yaml", sampleYAML))
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Navigation.VMax != 25 {
		t.Errorf("VMax = %v, expected env override 25", cfg.Navigation.VMax)
	}
}

func TestLoadFile_MissingFile(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestFromMap_MissingKeys(t *testing.T) {
	sections := map[string]any{
		"navigation": map[string]any{"v_max": 10.0},
		"laser": map[string]any{
			"min_range": 0.0, "max_range": 15.0, "max_angle_speed": 0.1,
			"cone_opening_angle": 2.0, "fire_power": 1.0, "fire_time_limit": 2,
			"max_angle_speed_tracking": 0.1,
		},
	}

	_, err := FromMap(sections)
	if !errors.Is(err, ErrIncompleteConfig) {
		t.Fatalf("FromMap() error = %v, expected ErrIncompleteConfig", err)
	}

	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("error %v is not a ConfigError", err)
	}
	if cfgErr.Component != "navigation" {
		t.Errorf("first ConfigError component = %q", cfgErr.Component)
	}

	_, err = LaserFromMap(sections["laser"].(map[string]any))
	if !errors.As(err, &cfgErr) {
		t.Fatalf("LaserFromMap() error = %v", err)
	}
	if diff := cmp.Diff([]string{"place", "zero"}, cfgErr.Missing); diff != "" {
		t.Errorf("missing keys mismatch (-want +got):\n%s", diff)
	}
}

func TestComponentFromMap_UsesRadians(t *testing.T) {
	cfg, err := LocatorFromMap(map[string]any{
		"min_range": 0.0, "max_range": 50.0, "max_angle_speed": 0.5,
		"zero": 0.25, "place": []float64{1, 2}, "cone_opening_angle": 1.0,
		"ray_count": 3, "ray_step": 0.1,
	})
	if err != nil {
		t.Fatalf("LocatorFromMap() error = %v", err)
	}
	if cfg.Zero != 0.25 || cfg.RayStep != 0.1 || cfg.Place != (physics.Vector2D{X: 1, Y: 2}) {
		t.Errorf("unexpected locator config %+v", cfg)
	}

	nav, err := NavigationFromMap(map[string]any{"v_max": 3.0, "max_angle_speed": 0.2})
	if err != nil || nav.MaxAngleSpeed != 0.2 {
		t.Errorf("NavigationFromMap() = %+v, %v", nav, err)
	}

	carto, err := CartographerFromMap(map[string]any{})
	if err != nil || carto.ClusterDistance != 20 {
		t.Errorf("CartographerFromMap() = %+v, %v", carto, err)
	}
}

func TestFromMap_InvalidPlace(t *testing.T) {
	_, err := LaserFromMap(map[string]any{
		"min_range": 0.0, "max_range": 15.0, "max_angle_speed": 0.1, "zero": 0.0,
		"place": []float64{1, 2, 3}, "cone_opening_angle": 2.0, "fire_power": 1.0,
		"fire_time_limit": 2, "max_angle_speed_tracking": 0.1,
	})
	if !errors.Is(err, ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue, got %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	want := Default()
	want.Laser.Place = physics.Vector2D{X: 5, Y: 15}
	want.Laser.Zero = physics.Radians(10)

	if err := Save(want, path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
