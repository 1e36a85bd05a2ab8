package autopilot

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/go-trainsim/pkg/navigation"
	"github.com/opd-ai/go-trainsim/pkg/physics"
	"github.com/opd-ai/go-trainsim/pkg/sighting"
)

func seen(distance float64) sighting.Result {
	return sighting.Result{Distance: []sighting.Reading{{Measurement: true, Value: distance}}}
}

func TestDecide_OpenSpaceCruises(t *testing.T) {
	a := New(DefaultConfig(10), 1)
	d := a.Decide(navigation.Pose{Heading: 0.3}, sighting.Result{})

	assert.Equal(t, 10.0, d.Motion.Speed)
	assert.InDelta(t, 0.3, d.Motion.Heading, 1e-12)
	require.NotNil(t, d.Laser.Turn)
	assert.InDelta(t, 0.3, *d.Laser.Turn, 1e-12)
	assert.True(t, d.Laser.Distance)
	assert.True(t, d.Locator.Distance)
}

func TestDecide_TurnsAroundNearObstacle(t *testing.T) {
	a := New(DefaultConfig(10), 1)
	d := a.Decide(navigation.Pose{}, seen(15))

	assert.Equal(t, 0.0, d.Motion.Speed)
	reversal := math.Abs(physics.WrapAngle(d.Motion.Heading))
	assert.InDelta(t, math.Pi, reversal, physics.Radians(10)+1e-9)

	// Still close on the next tick: the turn in progress is kept.
	again := a.Decide(navigation.Pose{Heading: physics.Radians(10)}, seen(15))
	assert.Equal(t, d.Motion.Heading, again.Motion.Heading)

	// Once the heading reaches the target the vehicle moves again.
	done := a.Decide(navigation.Pose{Heading: d.Motion.Heading}, sighting.Result{})
	assert.Equal(t, 10.0, done.Motion.Speed)
}

func TestDecide_CurvesWhileObstacleInView(t *testing.T) {
	a := New(DefaultConfig(10), 1)
	a.Decide(navigation.Pose{}, seen(200))
	d := a.Decide(navigation.Pose{}, seen(200))
	assert.InDelta(t, physics.Radians(4), d.Motion.Heading, 1e-9)
}

func TestDecide_SwervesAfterLongCurve(t *testing.T) {
	cfg := DefaultConfig(10)
	cfg.SwerveAfter = 3
	cfg.Jitter = 0
	a := New(cfg, 1)
	for i := 0; i < 4; i++ {
		a.Decide(navigation.Pose{}, seen(150))
	}
	// 4 curves of 2° then a 90° swerve in the same direction.
	assert.InDelta(t, physics.Radians(98), a.Target(), 1e-9)
	assert.Equal(t, -1.0, a.direction)
}

func TestNew_DeterministicJitter(t *testing.T) {
	a, b := New(DefaultConfig(10), 42), New(DefaultConfig(10), 42)
	assert.Equal(t, a.Decide(navigation.Pose{}, seen(5)), b.Decide(navigation.Pose{}, seen(5)))
}
