// Package autopilot drives a vehicle with a simple reactive policy: turn
// around when something is close ahead, curve while an obstacle is in view,
// and swerve into open space after curving for a while.
package autopilot

import (
	"math"
	"math/rand/v2"

	"github.com/opd-ai/go-trainsim/pkg/navigation"
	"github.com/opd-ai/go-trainsim/pkg/physics"
	"github.com/opd-ai/go-trainsim/pkg/sighting"
)

// Config tunes the policy. Angles are radians.
type Config struct {
	CruiseSpeed        float64
	TurnAroundDistance float64
	ViewDistance       float64
	OpenDistance       float64
	CurveRate          float64
	SwerveAfter        int
	Jitter             float64
}

// DefaultConfig returns the reference policy at the given cruise speed.
func DefaultConfig(cruise float64) Config {
	return Config{
		CruiseSpeed:        cruise,
		TurnAroundDistance: 20,
		ViewDistance:       400,
		OpenDistance:       100,
		CurveRate:          physics.Radians(2),
		SwerveAfter:        100,
		Jitter:             physics.Radians(10),
	}
}

// Decision is what the vehicle should request for the next tick.
type Decision struct {
	Motion  navigation.Command
	Laser   sighting.Query
	Locator sighting.Query
}

// Autopilot holds the policy state of one vehicle.
type Autopilot struct {
	cfg       Config
	rng       *rand.Rand
	target    float64
	started   bool
	turning   bool
	direction float64
	curving   int
}

// New creates an Autopilot with a deterministic jitter source.
func New(cfg Config, seed uint64) *Autopilot {
	return &Autopilot{
		cfg:       cfg,
		rng:       rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		direction: 1,
	}
}

// Target returns the heading the autopilot is steering to.
func (a *Autopilot) Target() float64 {
	return a.target
}

func (a *Autopilot) jitter() float64 {
	return (a.rng.Float64()*2 - 1) * a.cfg.Jitter
}

// Decide picks the next motion from the current pose and the last laser
// result. An empty laser result counts as open space.
func (a *Autopilot) Decide(pose navigation.Pose, laser sighting.Result) Decision {
	if !a.started {
		a.target, a.started = pose.Heading, true
	}

	distance := math.Inf(1)
	for _, r := range laser.Distance {
		if r.Measurement {
			distance = math.Min(distance, r.Value)
		}
	}

	if a.turning && math.Abs(physics.WrapAngle(pose.Heading-a.target)) < physics.Radians(1) {
		a.turning = false
	}

	switch {
	case a.turning:
	case distance <= a.cfg.TurnAroundDistance:
		a.target = physics.WrapAngle(pose.Heading + math.Pi + a.jitter())
		a.turning = true
		a.curving = 0
	case distance < a.cfg.ViewDistance:
		a.target = physics.WrapAngle(a.target + a.direction*a.cfg.CurveRate)
		a.curving++
	}

	if a.curving > a.cfg.SwerveAfter && distance > a.cfg.OpenDistance {
		a.target = physics.WrapAngle(a.target + a.direction*math.Pi/2 + a.jitter())
		a.direction = -a.direction
		a.curving = 0
	}

	speed := a.cfg.CruiseSpeed
	if a.turning {
		speed = 0
	}
	aim := pose.Heading
	return Decision{
		Motion:  navigation.Command{Speed: speed, Heading: a.target},
		Laser:   sighting.Query{Turn: &aim, Distance: true},
		Locator: sighting.Query{Turn: sighting.Turn(aim), Distance: true},
	}
}
