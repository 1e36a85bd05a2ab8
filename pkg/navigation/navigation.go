// Package navigation moves a vehicle one tick at a time with bounded speed
// and turn rate, refusing moves that an obstacle oracle reports as blocked.
package navigation

import (
	"errors"
	"fmt"

	"github.com/opd-ai/go-trainsim/pkg/physics"
)

// DefaultProbeDistance is the look-ahead offset reported with each step.
const DefaultProbeDistance = 0.02

// ErrInvalidConfig is returned for out-of-range navigation settings.
var ErrInvalidConfig = errors.New("invalid navigation config")

// Config bounds the vehicle's motion. Angles are radians.
type Config struct {
	VMax          float64
	MaxAngleSpeed float64
	ProbeDistance float64
}

// Validate checks that the limits are usable.
func (c Config) Validate() error {
	if c.VMax < 0 {
		return fmt.Errorf("%w: v_max must be >= 0, got %v", ErrInvalidConfig, c.VMax)
	}
	if c.MaxAngleSpeed < 0 {
		return fmt.Errorf("%w: max_angle_speed must be >= 0, got %v", ErrInvalidConfig, c.MaxAngleSpeed)
	}
	if c.ProbeDistance < 0 {
		return fmt.Errorf("%w: probe_distance must be >= 0, got %v", ErrInvalidConfig, c.ProbeDistance)
	}
	return nil
}

// Pose is a position and heading on the plane.
type Pose struct {
	X       float64 `yaml:"x"`
	Y       float64 `yaml:"y"`
	Heading float64 `yaml:"heading"`
}

// Position returns the pose location as a vector.
func (p Pose) Position() physics.Vector2D {
	return physics.Vector2D{X: p.X, Y: p.Y}
}

// Command is the motion request for one tick.
type Command struct {
	Speed   float64
	Heading float64
}

// Result is the pose committed by the last step.
type Result struct {
	X        float64
	Y        float64
	Heading  float64
	Collided bool
	// Probe is the collision test point: ProbeDistance ahead of the pre-step
	// position along the new heading.
	Probe physics.Vector2D
}

// Navigation owns a vehicle pose and advances it on Step.
type Navigation struct {
	cfg     Config
	oracle  physics.Oracle
	pose    Pose
	pending Command
	last    Result
}

// New creates a Navigation at pose. A nil oracle means open space.
func New(pose Pose, cfg Config, oracle physics.Oracle) (*Navigation, error) {
	if cfg.ProbeDistance == 0 {
		cfg.ProbeDistance = DefaultProbeDistance
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if oracle == nil {
		oracle = physics.EmptySpace
	}
	pose.Heading = physics.WrapAngle(pose.Heading)
	n := &Navigation{cfg: cfg, oracle: oracle, pose: pose}
	n.pending = Command{Heading: pose.Heading}
	n.last = Result{X: pose.X, Y: pose.Y, Heading: pose.Heading}
	return n, nil
}

// Config returns the limits in effect.
func (n *Navigation) Config() Config {
	return n.cfg
}

// Pose returns the current pose.
func (n *Navigation) Pose() Pose {
	return n.pose
}

// Receive stores the command for the next Step.
func (n *Navigation) Receive(cmd Command) {
	n.pending = cmd
}

// Step applies the pending command. The speed is clamped to [0, VMax] and
// the heading turns toward the target along the shorter arc by at most
// MaxAngleSpeed. The new heading is kept even if the move is blocked; a
// blocked move leaves the position unchanged.
func (n *Navigation) Step() {
	speed := physics.Clamp(n.pending.Speed, 0, n.cfg.VMax)
	heading := physics.LimitTurn(n.pose.Heading, n.pending.Heading, n.cfg.MaxAngleSpeed)

	origin := n.pose.Position()
	probe := origin.Add(physics.FromAngle(heading, n.cfg.ProbeDistance))
	end := origin.Add(physics.FromAngle(heading, speed))

	collided := false
	if speed > physics.Epsilon {
		if _, hit := n.oracle.Query(origin, end); hit {
			collided = true
			end = origin
		}
	} else {
		end = origin
	}

	n.pose = Pose{X: end.X, Y: end.Y, Heading: heading}
	n.last = Result{X: end.X, Y: end.Y, Heading: heading, Collided: collided, Probe: probe}
	// A new command is needed to keep moving.
	n.pending = Command{Heading: heading}
}

// Send returns the result of the last Step.
func (n *Navigation) Send() Result {
	return n.last
}
