// pkg/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/opd-ai/go-trainsim/pkg/cartographer"
	"github.com/opd-ai/go-trainsim/pkg/navigation"
	"github.com/opd-ai/go-trainsim/pkg/physics"
	"github.com/opd-ai/go-trainsim/pkg/sighting"
)

// EnvPrefix prefixes environment overrides, e.g. TRAINSIM_NAVIGATION_V_MAX.
const EnvPrefix = "TRAINSIM"

var (
	// ErrIncompleteConfig is wrapped by every ConfigError.
	ErrIncompleteConfig = errors.New("incomplete config")
	// ErrInvalidValue reports a key whose value has the wrong shape.
	ErrInvalidValue = errors.New("invalid config value")
)

// ConfigError names the required keys a component section is missing.
type ConfigError struct {
	Component string
	Missing   []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: incomplete config, missing keys: %s", e.Component, strings.Join(e.Missing, ", "))
}

// Unwrap makes errors.Is(err, ErrIncompleteConfig) succeed.
func (e *ConfigError) Unwrap() error {
	return ErrIncompleteConfig
}

// Config is the full simulator configuration. Angles are radians.
type Config struct {
	Navigation   navigation.Config
	Laser        sighting.LaserConfig
	Locator      sighting.LocatorConfig
	Cartographer cartographer.Config
	Simulation   SimulationConfig
}

// SimulationConfig controls a headless run.
type SimulationConfig struct {
	Ticks       int
	Seed        uint64
	Vehicles    int
	CruiseSpeed float64
	Scene       string
}

// Required keys per component section.
var (
	navigationKeys = []string{"v_max", "max_angle_speed"}
	turretKeys     = []string{"min_range", "max_range", "max_angle_speed", "zero", "place", "cone_opening_angle"}
	laserKeys      = append(append([]string{}, turretKeys...), "fire_power", "fire_time_limit", "max_angle_speed_tracking")
	locatorKeys    = append(append([]string{}, turretKeys...), "ray_count", "ray_step")
)

// DefaultSimulation returns the run settings used when a file omits them.
func DefaultSimulation() SimulationConfig {
	return SimulationConfig{Ticks: 1000, Seed: 1, Vehicles: 1, CruiseSpeed: 10}
}

// Default returns a complete reference configuration.
func Default() *Config {
	return &Config{
		Navigation: navigation.Config{
			VMax:          10,
			MaxAngleSpeed: physics.Radians(10),
			ProbeDistance: navigation.DefaultProbeDistance,
		},
		Laser: sighting.LaserConfig{
			Config: sighting.Config{
				MinRange:         0,
				MaxRange:         400,
				MaxAngleSpeed:    physics.Radians(30),
				ConeOpeningAngle: physics.Radians(145),
			},
			FirePower:             1,
			FireTimeLimit:         10,
			MaxAngleSpeedTracking: physics.Radians(10),
		},
		Locator: sighting.LocatorConfig{
			Config: sighting.Config{
				MinRange:         0,
				MaxRange:         300,
				MaxAngleSpeed:    physics.Radians(30),
				ConeOpeningAngle: physics.Radians(180),
			},
			RayCount: 11,
			RayStep:  physics.Radians(5),
		},
		Cartographer: cartographer.DefaultConfig(),
		Simulation:   DefaultSimulation(),
	}
}

// LoadFile reads a YAML or JSON configuration. Angles in the file are
// degrees. Environment variables prefixed with TRAINSIM_ override file values.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return decode(v, physics.Radians)
}

// FromMap builds a configuration from in-memory sections keyed by component
// name. Angles are already radians.
func FromMap(sections map[string]any) (*Config, error) {
	v := viper.New()
	if err := v.MergeConfigMap(sections); err != nil {
		return nil, fmt.Errorf("failed to merge config map: %w", err)
	}
	return decode(v, identity)
}

func identity(x float64) float64 { return x }

func decode(v *viper.Viper, angle func(float64) float64) (*Config, error) {
	cfg := &Config{}
	var errs []error
	var err error

	if cfg.Navigation, err = readNavigation(section(v, "navigation", angle)); err != nil {
		errs = append(errs, err)
	}
	if cfg.Laser, err = readLaser(section(v, "laser", angle)); err != nil {
		errs = append(errs, err)
	}
	if cfg.Locator, err = readLocator(section(v, "locator", angle)); err != nil {
		errs = append(errs, err)
	}
	if cfg.Cartographer, err = readCartographer(section(v, "cartographer", angle)); err != nil {
		errs = append(errs, err)
	}
	cfg.Simulation = readSimulation(section(v, "simulation", angle))

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

// NavigationFromMap builds a navigation config from radians.
func NavigationFromMap(m map[string]any) (navigation.Config, error) {
	return readNavigation(mapSection("navigation", m))
}

// LaserFromMap builds a laser config from radians.
func LaserFromMap(m map[string]any) (sighting.LaserConfig, error) {
	return readLaser(mapSection("laser", m))
}

// LocatorFromMap builds a locator config from radians.
func LocatorFromMap(m map[string]any) (sighting.LocatorConfig, error) {
	return readLocator(mapSection("locator", m))
}

// CartographerFromMap builds a cartographer config.
func CartographerFromMap(m map[string]any) (cartographer.Config, error) {
	return readCartographer(mapSection("cartographer", m))
}

func mapSection(name string, m map[string]any) *reader {
	v := viper.New()
	_ = v.MergeConfigMap(map[string]any{name: m})
	return section(v, name, identity)
}

func readNavigation(r *reader) (navigation.Config, error) {
	r.require(navigationKeys...)
	cfg := navigation.Config{
		VMax:          r.float("v_max"),
		MaxAngleSpeed: r.angle("max_angle_speed"),
		ProbeDistance: navigation.DefaultProbeDistance,
	}
	if r.has("probe_distance") {
		cfg.ProbeDistance = r.float("probe_distance")
	}
	if err := r.err(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func readTurret(r *reader) sighting.Config {
	return sighting.Config{
		MinRange:         r.float("min_range"),
		MaxRange:         r.float("max_range"),
		MaxAngleSpeed:    r.angle("max_angle_speed"),
		Zero:             r.angle("zero"),
		Place:            r.point("place"),
		ConeOpeningAngle: r.angle("cone_opening_angle"),
		RateLimited:      r.has("rate_limited") && r.v.GetBool(r.key("rate_limited")),
	}
}

func readLaser(r *reader) (sighting.LaserConfig, error) {
	r.require(laserKeys...)
	cfg := sighting.LaserConfig{
		Config:                readTurret(r),
		FirePower:             r.float("fire_power"),
		FireTimeLimit:         r.integer("fire_time_limit"),
		MaxAngleSpeedTracking: r.angle("max_angle_speed_tracking"),
	}
	if err := r.err(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func readLocator(r *reader) (sighting.LocatorConfig, error) {
	r.require(locatorKeys...)
	cfg := sighting.LocatorConfig{
		Config:   readTurret(r),
		RayCount: r.integer("ray_count"),
		RayStep:  r.angle("ray_step"),
	}
	if err := r.err(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func readCartographer(r *reader) (cartographer.Config, error) {
	cfg := cartographer.DefaultConfig()
	if r.has("cluster_distance") {
		cfg.ClusterDistance = r.float("cluster_distance")
	}
	if r.has("duplicate_epsilon") {
		cfg.DuplicateEpsilon = r.float("duplicate_epsilon")
	}
	if err := r.err(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func readSimulation(r *reader) SimulationConfig {
	cfg := DefaultSimulation()
	if r.has("ticks") {
		cfg.Ticks = r.integer("ticks")
	}
	if r.has("seed") {
		cfg.Seed = r.v.GetUint64(r.key("seed"))
	}
	if r.has("vehicles") {
		cfg.Vehicles = r.integer("vehicles")
	}
	if r.has("cruise_speed") {
		cfg.CruiseSpeed = r.float("cruise_speed")
	}
	if r.has("scene") {
		cfg.Scene = r.v.GetString(r.key("scene"))
	}
	return cfg
}

// reader pulls one component section out of a viper instance and records
// which required keys are absent.
type reader struct {
	v       *viper.Viper
	name    string
	angleFn func(float64) float64
	missing []string
	invalid []string
}

func section(v *viper.Viper, name string, angle func(float64) float64) *reader {
	return &reader{v: v, name: name, angleFn: angle}
}

func (r *reader) key(k string) string { return r.name + "." + k }

func (r *reader) has(k string) bool { return r.v.IsSet(r.key(k)) }

func (r *reader) require(keys ...string) {
	for _, k := range keys {
		if !r.has(k) {
			r.missing = append(r.missing, k)
		}
	}
}

func (r *reader) float(k string) float64 { return r.v.GetFloat64(r.key(k)) }

func (r *reader) integer(k string) int { return r.v.GetInt(r.key(k)) }

func (r *reader) angle(k string) float64 { return r.angleFn(r.float(k)) }

// point accepts [x, y] lists or {x, y} maps.
func (r *reader) point(k string) physics.Vector2D {
	if !r.has(k) {
		return physics.Vector2D{}
	}
	var xs []float64
	switch val := r.v.Get(r.key(k)).(type) {
	case []float64:
		xs = val
	case []int:
		for _, x := range val {
			xs = append(xs, float64(x))
		}
	case []any:
		for _, x := range val {
			f, ok := toFloat(x)
			if !ok {
				r.invalid = append(r.invalid, k)
				return physics.Vector2D{}
			}
			xs = append(xs, f)
		}
	case physics.Vector2D:
		return val
	case map[string]any:
		x, okX := toFloat(val["x"])
		y, okY := toFloat(val["y"])
		if okX && okY {
			return physics.Vector2D{X: x, Y: y}
		}
	}
	if len(xs) != 2 {
		r.invalid = append(r.invalid, k)
		return physics.Vector2D{}
	}
	return physics.Vector2D{X: xs[0], Y: xs[1]}
}

func toFloat(x any) (float64, bool) {
	switch n := x.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

func (r *reader) err() error {
	if len(r.missing) > 0 {
		missing := append([]string(nil), r.missing...)
		sort.Strings(missing)
		return &ConfigError{Component: r.name, Missing: missing}
	}
	if len(r.invalid) > 0 {
		return fmt.Errorf("%w: %s.%s", ErrInvalidValue, r.name, strings.Join(r.invalid, ", "))
	}
	return nil
}

// Save writes cfg as YAML with angles in degrees, readable by LoadFile.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(toFile(cfg))
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func turretFile(c sighting.Config) map[string]any {
	return map[string]any{
		"min_range":          c.MinRange,
		"max_range":          c.MaxRange,
		"max_angle_speed":    physics.Degrees(c.MaxAngleSpeed),
		"zero":               physics.Degrees(c.Zero),
		"place":              []float64{c.Place.X, c.Place.Y},
		"cone_opening_angle": physics.Degrees(c.ConeOpeningAngle),
		"rate_limited":       c.RateLimited,
	}
}

func toFile(cfg *Config) map[string]any {
	laser := turretFile(cfg.Laser.Config)
	laser["fire_power"] = cfg.Laser.FirePower
	laser["fire_time_limit"] = cfg.Laser.FireTimeLimit
	laser["max_angle_speed_tracking"] = physics.Degrees(cfg.Laser.MaxAngleSpeedTracking)

	locator := turretFile(cfg.Locator.Config)
	locator["ray_count"] = cfg.Locator.RayCount
	locator["ray_step"] = physics.Degrees(cfg.Locator.RayStep)

	sim := map[string]any{
		"ticks":        cfg.Simulation.Ticks,
		"seed":         cfg.Simulation.Seed,
		"vehicles":     cfg.Simulation.Vehicles,
		"cruise_speed": cfg.Simulation.CruiseSpeed,
	}
	if cfg.Simulation.Scene != "" {
		sim["scene"] = cfg.Simulation.Scene
	}

	return map[string]any{
		"navigation": map[string]any{
			"v_max":           cfg.Navigation.VMax,
			"max_angle_speed": physics.Degrees(cfg.Navigation.MaxAngleSpeed),
			"probe_distance":  cfg.Navigation.ProbeDistance,
		},
		"laser":   laser,
		"locator": locator,
		"cartographer": map[string]any{
			"cluster_distance":  cfg.Cartographer.ClusterDistance,
			"duplicate_epsilon": cfg.Cartographer.DuplicateEpsilon,
		},
		"simulation": sim,
	}
}
