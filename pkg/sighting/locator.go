package sighting

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/opd-ai/go-trainsim/pkg/physics"
)

// LocatorConfig adds the ray fan layout to the turret config.
type LocatorConfig struct {
	Config
	RayCount int
	RayStep  float64
}

// Validate checks the turret settings and the fan layout.
func (c LocatorConfig) Validate() error {
	if err := c.Config.Validate(); err != nil {
		return err
	}
	if c.RayCount < 1 {
		return fmt.Errorf("%w: ray_count must be >= 1, got %d", ErrInvalidConfig, c.RayCount)
	}
	if c.RayStep < 0 {
		return fmt.Errorf("%w: ray_step must be >= 0", ErrInvalidConfig)
	}
	return nil
}

// Locator casts a fan of RayCount rays spaced RayStep apart, centred on the
// turret angle.
type Locator struct {
	turret
	cfg    LocatorConfig
	query  Query
	result Result
}

// NewLocator creates a Locator that measures against oracle.
func NewLocator(cfg LocatorConfig, oracle physics.Oracle) (*Locator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	t, err := newTurret(cfg.Config, oracle)
	if err != nil {
		return nil, err
	}
	return &Locator{turret: t, cfg: cfg}, nil
}

// Name identifies the sensor.
func (l *Locator) Name() string { return "locator" }

// Receive stores the query for the next Step.
func (l *Locator) Receive(q Query) {
	l.query = q
}

// RayAngles returns the turret-frame angle of every ray, left to right in
// increasing angle.
func (l *Locator) RayAngles() []float64 {
	n := l.cfg.RayCount
	begin := l.angle - float64(n-1)*l.cfg.RayStep/2
	angles := make([]float64, n)
	if n == 1 {
		angles[0] = begin
		return angles
	}
	return floats.Span(angles, begin, begin+float64(n-1)*l.cfg.RayStep)
}

// Step aims and scans according to the pending query.
func (l *Locator) Step() {
	q := l.query
	l.query = Query{}
	res := Result{}

	if q.Turn != nil {
		alpha := l.servo(*q.Turn, l.cfg.MaxAngleSpeed, l.cfg.RateLimited)
		res.Alpha = &alpha
	}

	if q.Distance {
		origin := l.mount()
		base := l.cfg.Zero + l.heading
		angles := l.RayAngles()
		readings := make([]Reading, len(angles))
		for i, rel := range angles {
			readings[i] = l.cast(origin, physics.WrapAngle(rel+base), rel)
		}
		res.Distance = readings
	}

	if q.Config {
		d := l.describe(l.Name())
		d.RayCount, d.RayStep = l.cfg.RayCount, l.cfg.RayStep
		res.Config = d
	}

	l.result = res
}

// Send returns the result of the last Step.
func (l *Locator) Send() Result {
	return l.result
}
