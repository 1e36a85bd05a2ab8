package navigation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/go-trainsim/pkg/physics"
)

func testConfig() Config {
	return Config{VMax: 10, MaxAngleSpeed: physics.Radians(10)}
}

func newNav(t *testing.T, pose Pose, oracle physics.Oracle) *Navigation {
	t.Helper()
	n, err := New(pose, testConfig(), oracle)
	require.NoError(t, err)
	return n
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	_, err := New(Pose{}, Config{VMax: -1}, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestStep_RateLimitsHeading(t *testing.T) {
	tests := []struct {
		name     string
		start    float64
		target   float64
		expected float64
	}{
		{"small_turn_reaches_target", 0, physics.Radians(5), physics.Radians(5)},
		{"large_turn_is_capped", 0, physics.Radians(90), physics.Radians(10)},
		{"negative_turn_is_capped", 0, physics.Radians(-90), physics.Radians(-10)},
		{"crosses_pi_on_short_arc", physics.Radians(175), physics.Radians(-170), physics.Radians(-175)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := newNav(t, Pose{Heading: tt.start}, nil)
			n.Receive(Command{Speed: 1, Heading: tt.target})
			n.Step()
			res := n.Send()
			assert.InDelta(t, tt.expected, res.Heading, 1e-9)
			turned := math.Abs(physics.WrapAngle(res.Heading - tt.start))
			assert.LessOrEqual(t, turned, physics.Radians(10)+1e-9)
		})
	}
}

func TestStep_HeadingTargetIsWrapped(t *testing.T) {
	n := newNav(t, Pose{}, nil)
	n.Receive(Command{Speed: 0, Heading: 2*math.Pi + physics.Radians(4)})
	n.Step()
	assert.InDelta(t, physics.Radians(4), n.Send().Heading, 1e-9)
}

func TestStep_SpeedClamp(t *testing.T) {
	tests := []struct {
		name     string
		speed    float64
		expected float64
	}{
		{"within_limit", 4, 4},
		{"over_limit", 50, 10},
		{"negative_is_zero", -5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := newNav(t, Pose{X: 1, Y: 1}, nil)
			n.Receive(Command{Speed: tt.speed, Heading: 0})
			n.Step()
			res := n.Send()
			moved := physics.Distance(physics.Vector2D{X: 1, Y: 1}, physics.Vector2D{X: res.X, Y: res.Y})
			assert.InDelta(t, tt.expected, moved, 1e-9)
		})
	}
}

func TestStep_CollisionHoldsPosition(t *testing.T) {
	wall := physics.OracleFunc(func(origin, end physics.Vector2D) (physics.Vector2D, bool) {
		return origin.Add(end).Scale(0.5), true
	})
	n := newNav(t, Pose{X: 3, Y: 4}, wall)
	n.Receive(Command{Speed: 5, Heading: physics.Radians(30)})
	n.Step()

	res := n.Send()
	assert.True(t, res.Collided)
	assert.Equal(t, 3.0, res.X)
	assert.Equal(t, 4.0, res.Y)
	assert.InDelta(t, physics.Radians(10), res.Heading, 1e-9, "heading still turns on a blocked step")
}

func TestStep_ZeroSpeedNeverCollides(t *testing.T) {
	queried := false
	wall := physics.OracleFunc(func(origin, end physics.Vector2D) (physics.Vector2D, bool) {
		queried = true
		return origin, true
	})
	n := newNav(t, Pose{}, wall)
	n.Receive(Command{Speed: 0, Heading: 1})
	n.Step()

	assert.False(t, n.Send().Collided)
	assert.False(t, queried)
}

func TestStep_CommandIsConsumed(t *testing.T) {
	n := newNav(t, Pose{}, nil)
	n.Receive(Command{Speed: 10, Heading: 0})
	n.Step()
	n.Step()

	res := n.Send()
	assert.InDelta(t, 10, res.X, 1e-9, "second step without a command must not move")
	assert.InDelta(t, 10+DefaultProbeDistance, res.Probe.X, 1e-9)
}

func TestStep_ProbeIsAheadOfPreStepPosition(t *testing.T) {
	n := newNav(t, Pose{X: 5, Y: 5}, nil)
	n.Receive(Command{Speed: 10, Heading: 0})
	n.Step()

	res := n.Send()
	assert.InDelta(t, 15, res.X, 1e-9)
	assert.InDelta(t, 5+DefaultProbeDistance, res.Probe.X, 1e-9)
	assert.InDelta(t, 5, res.Probe.Y, 1e-9)
}

func TestStep_MovesAlongHeading(t *testing.T) {
	n := newNav(t, Pose{Heading: math.Pi / 2}, nil)
	n.Receive(Command{Speed: 7, Heading: math.Pi / 2})
	n.Step()

	pose := n.Pose()
	assert.InDelta(t, 0, pose.X, 1e-9)
	assert.InDelta(t, 7, pose.Y, 1e-9)
}
