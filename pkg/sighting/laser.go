package sighting

import (
	"fmt"

	"github.com/opd-ai/go-trainsim/pkg/physics"
)

// LaserConfig adds the emitter and tracking limits to the turret config.
type LaserConfig struct {
	Config
	FirePower             float64
	FireTimeLimit         int
	MaxAngleSpeedTracking float64
}

// Validate checks the turret and emitter settings.
func (c LaserConfig) Validate() error {
	if err := c.Config.Validate(); err != nil {
		return err
	}
	if c.FirePower < 0 || c.FireTimeLimit < 0 || c.MaxAngleSpeedTracking < 0 {
		return fmt.Errorf("%w: laser fire and tracking limits must be >= 0", ErrInvalidConfig)
	}
	return nil
}

// Laser is a single-ray rangefinder that can lock onto the point it measured
// and keep the turret on it while the vehicle moves.
type Laser struct {
	turret
	cfg LaserConfig

	query  Query
	result Result

	tracking bool
	captured *physics.Vector2D

	firing    bool
	fireTicks int
}

// NewLaser creates a Laser that measures against oracle.
func NewLaser(cfg LaserConfig, oracle physics.Oracle) (*Laser, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	t, err := newTurret(cfg.Config, oracle)
	if err != nil {
		return nil, err
	}
	return &Laser{turret: t, cfg: cfg}, nil
}

// Name identifies the sensor.
func (l *Laser) Name() string { return "laser" }

// Receive stores the query for the next Step.
func (l *Laser) Receive(q Query) {
	l.query = q
}

// Captured returns the locked world point, if any.
func (l *Laser) Captured() (physics.Vector2D, bool) {
	if l.captured == nil {
		return physics.Vector2D{}, false
	}
	return *l.captured, true
}

// Step aims, measures, tracks and fires according to the pending query.
func (l *Laser) Step() {
	q := l.query
	l.query = Query{}
	res := Result{}

	if q.Track != nil {
		l.tracking = *q.Track
		if !l.tracking {
			l.captured = nil
		}
		res.Tracking = Flag(l.tracking)
	}

	switch {
	case q.Turn != nil:
		alpha := l.servo(*q.Turn, l.cfg.MaxAngleSpeed, l.cfg.RateLimited)
		res.Alpha = &alpha
	case l.tracking && l.captured != nil:
		aim := l.captured.Sub(l.mount()).AngleOr(l.worldAngle())
		alpha := l.servo(aim, l.cfg.MaxAngleSpeedTracking, true)
		res.Alpha = &alpha
		if alpha.Restriction != RestrictionNone {
			l.captured = nil
			l.tracking = false
			res.Tracking = Flag(false)
		}
	}

	if q.Distance {
		reading := l.cast(l.mount(), l.worldAngle(), l.angle)
		res.Distance = []Reading{reading}
		if l.tracking {
			if reading.Measurement {
				p := reading.Point()
				l.captured = &p
			} else {
				l.captured = nil
			}
		}
	}

	if q.Fire != nil {
		// A request while idle starts a new burst.
		if *q.Fire != l.firing {
			l.fireTicks = 0
		}
		l.firing = *q.Fire
	}
	if q.Fire != nil || l.firing {
		res.Fire = l.fire()
	}

	if q.Config {
		d := l.describe(l.Name())
		res.Config = d
	}

	l.result = res
}

func (l *Laser) fire() *FireState {
	if !l.firing {
		return &FireState{Remaining: l.cfg.FireTimeLimit}
	}
	if l.fireTicks >= l.cfg.FireTimeLimit {
		l.firing = false
		return &FireState{}
	}
	l.fireTicks++
	return &FireState{
		Active:    true,
		Power:     l.cfg.FirePower,
		Remaining: l.cfg.FireTimeLimit - l.fireTicks,
	}
}

// Send returns the result of the last Step.
func (l *Laser) Send() Result {
	return l.result
}
