// Package sighting implements vehicle-mounted turrets that aim within a cone
// and measure distances with rays: a single-ray Laser and a multi-ray Locator.
package sighting

import (
	"errors"
	"fmt"
	"math"

	"github.com/opd-ai/go-trainsim/pkg/physics"
)

// ErrInvalidConfig is returned for out-of-range turret settings.
var ErrInvalidConfig = errors.New("invalid sighting config")

// Restriction reports whether the last aim request hit a cone edge.
type Restriction int

const (
	RestrictionRight Restriction = -1
	RestrictionNone  Restriction = 0
	RestrictionLeft  Restriction = 1
)

// Config is shared by every turret. Angles are radians; Place is the mount
// offset in the vehicle frame.
type Config struct {
	MinRange         float64
	MaxRange         float64
	MaxAngleSpeed    float64
	Zero             float64
	Place            physics.Vector2D
	ConeOpeningAngle float64
	// RateLimited caps each aim change at MaxAngleSpeed. Off by default.
	RateLimited bool
}

// Validate checks ranges and angles.
func (c Config) Validate() error {
	switch {
	case c.MinRange < 0:
		return fmt.Errorf("%w: min_range must be >= 0, got %v", ErrInvalidConfig, c.MinRange)
	case c.MaxRange <= c.MinRange:
		return fmt.Errorf("%w: max_range %v must exceed min_range %v", ErrInvalidConfig, c.MaxRange, c.MinRange)
	case c.MaxAngleSpeed < 0:
		return fmt.Errorf("%w: max_angle_speed must be >= 0", ErrInvalidConfig)
	case c.ConeOpeningAngle < 0:
		return fmt.Errorf("%w: cone_opening_angle must be >= 0", ErrInvalidConfig)
	}
	return nil
}

// Query is the per-tick request to a sensor. Nil fields are not requested.
type Query struct {
	// Turn is the requested absolute (world) turret angle.
	Turn     *float64
	Distance bool
	Config   bool
	// Track and Fire are honoured by the Laser only.
	Track *bool
	Fire  *bool
}

// Turn is a helper for building a Query.Turn.
func Turn(angle float64) *float64 {
	return &angle
}

// Flag is a helper for building Query.Track and Query.Fire.
func Flag(v bool) *bool {
	return &v
}

// Alpha is the committed world turret angle and its restriction.
type Alpha struct {
	Value       float64
	Restriction Restriction
}

// Reading is one ray measurement. X and Y are world coordinates of the hit
// or of the unobstructed endpoint; SskX and SskY are in the turret frame.
type Reading struct {
	X           float64
	Y           float64
	SskX        float64
	SskY        float64
	Angle       float64
	Measurement bool
	Value       float64
}

// Point returns the world coordinates of the reading.
func (r Reading) Point() physics.Vector2D {
	return physics.Vector2D{X: r.X, Y: r.Y}
}

// Description echoes a sensor configuration.
type Description struct {
	Name             string
	MinRange         float64
	MaxRange         float64
	ConeOpeningAngle float64
	Zero             float64
	Place            physics.Vector2D
	RayCount         int
	RayStep          float64
}

// FireState reports the laser emitter.
type FireState struct {
	Active    bool
	Power     float64
	Remaining int
}

// Result holds the answers to the last Query. Only requested parts are set.
type Result struct {
	Alpha    *Alpha
	Distance []Reading
	Config   *Description
	Tracking *bool
	Fire     *FireState
}

// Empty reports whether nothing was requested.
func (r Result) Empty() bool {
	return r.Alpha == nil && r.Distance == nil && r.Config == nil && r.Tracking == nil && r.Fire == nil
}

// Sensor is the common tick protocol of Laser and Locator.
type Sensor interface {
	Name() string
	UpdateNavigation(x, y, heading float64)
	Receive(q Query)
	Step()
	Send() Result
}

// Hits collects the world points of all measured readings.
func Hits(results ...Result) []physics.Vector2D {
	var points []physics.Vector2D
	for _, res := range results {
		for _, r := range res.Distance {
			if r.Measurement {
				points = append(points, r.Point())
			}
		}
	}
	return points
}

// turret is the aiming and ray casting core shared by the sensors.
type turret struct {
	cfg     Config
	oracle  physics.Oracle
	x, y    float64
	heading float64
	// angle is relative to the mount zero, always within the cone.
	angle float64
}

func newTurret(cfg Config, oracle physics.Oracle) (turret, error) {
	if err := cfg.Validate(); err != nil {
		return turret{}, err
	}
	if oracle == nil {
		oracle = physics.EmptySpace
	}
	return turret{cfg: cfg, oracle: oracle}, nil
}

// UpdateNavigation records the carrying vehicle's pose.
func (t *turret) UpdateNavigation(x, y, heading float64) {
	t.x, t.y, t.heading = x, y, heading
}

func (t *turret) mount() physics.Vector2D {
	return physics.Vector2D{X: t.x, Y: t.y}.Add(t.cfg.Place.Rotate(t.heading))
}

func (t *turret) worldAngle() float64 {
	return physics.WrapAngle(t.angle + t.cfg.Zero + t.heading)
}

// servo aims at a world angle, clamping to the cone.
func (t *turret) servo(world, rate float64, limited bool) Alpha {
	desired := physics.WrapAngle(world - t.cfg.Zero - t.heading)
	restriction := RestrictionNone
	cone := t.cfg.ConeOpeningAngle
	if desired > cone {
		desired, restriction = cone, RestrictionLeft
	} else if desired < -cone {
		desired, restriction = -cone, RestrictionRight
	}
	if limited {
		// Both ends lie inside the cone so the direct difference never
		// leaves it.
		desired = t.angle + physics.Clamp(desired-t.angle, -rate, rate)
	}
	t.angle = desired
	return Alpha{Value: t.worldAngle(), Restriction: restriction}
}

// cast fires one ray from origin at world angle, relative is the ray angle in
// the turret frame.
func (t *turret) cast(origin physics.Vector2D, world, relative float64) Reading {
	end := origin.Add(physics.FromAngle(world, t.cfg.MaxRange))
	r := Reading{X: end.X, Y: end.Y, Angle: world, Value: t.cfg.MaxRange}
	if hit, ok := t.oracle.Query(origin, end); ok {
		// Hits inside the blind zone are not measurable.
		if d := origin.Distance(hit); d >= t.cfg.MinRange {
			r.X, r.Y, r.Value, r.Measurement = hit.X, hit.Y, d, true
		}
	}
	sin, cos := math.Sincos(relative)
	r.SskX, r.SskY = r.Value*cos, r.Value*sin
	return r
}

func (t *turret) describe(name string) *Description {
	return &Description{
		Name:             name,
		MinRange:         t.cfg.MinRange,
		MaxRange:         t.cfg.MaxRange,
		ConeOpeningAngle: t.cfg.ConeOpeningAngle,
		Zero:             t.cfg.Zero,
		Place:            t.cfg.Place,
	}
}
