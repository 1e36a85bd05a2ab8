// pkg/weapon/weapon.go
package weapon

import (
	"sync/atomic"

	"github.com/opd-ai/go-trainsim/pkg/navigation"
	"github.com/opd-ai/go-trainsim/pkg/physics"
)

// Kind identifies a projectile type
type Kind string

const (
	KindCannon Kind = "cannon"
	KindRocket Kind = "rocket"
)

// Weapon launches projectiles from a vehicle pose.
type Weapon interface {
	Name() Kind
	Cooldown() int
	Launch(ownerID uint64, from navigation.Pose, target physics.Vector2D, oracle physics.Oracle) (*Projectile, error)
}

// BaseWeapon holds the flight limits shared by all launchers
type BaseWeapon struct {
	Kind          Kind
	CooldownTicks int
	Speed         float64
	TurnRate      float64
	MaxLifetime   int
	Homing        bool
}

// Name returns the weapon kind
func (w *BaseWeapon) Name() Kind {
	return w.Kind
}

// Cooldown returns the ticks between launches
func (w *BaseWeapon) Cooldown() int {
	return w.CooldownTicks
}

// Launch creates a projectile leaving from toward target.
func (w *BaseWeapon) Launch(ownerID uint64, from navigation.Pose, target physics.Vector2D, oracle physics.Oracle) (*Projectile, error) {
	heading := target.Sub(from.Position()).AngleOr(from.Heading)
	nav, err := navigation.New(
		navigation.Pose{X: from.X, Y: from.Y, Heading: heading},
		navigation.Config{VMax: w.Speed, MaxAngleSpeed: w.TurnRate},
		oracle,
	)
	if err != nil {
		return nil, err
	}
	return &Projectile{
		ID:          GenerateID(),
		Kind:        w.Kind,
		OwnerID:     ownerID,
		Target:      target,
		nav:         nav,
		speed:       w.Speed,
		maxLifetime: w.MaxLifetime,
		homing:      w.Homing,
		alive:       true,
	}, nil
}

// Cannon fires a straight, fast shell
type Cannon struct {
	BaseWeapon
}

// NewCannon creates a cannon
func NewCannon() *Cannon {
	return &Cannon{BaseWeapon{
		Kind:          KindCannon,
		CooldownTicks: 5,
		Speed:         30,
		MaxLifetime:   40,
	}}
}

// Rocket fires a slower missile that steers toward its target
type Rocket struct {
	BaseWeapon
}

// NewRocket creates a rocket launcher
func NewRocket() *Rocket {
	return &Rocket{BaseWeapon{
		Kind:          KindRocket,
		CooldownTicks: 20,
		Speed:         15,
		TurnRate:      physics.Radians(90),
		MaxLifetime:   100,
		Homing:        true,
	}}
}

// Projectile is a weapon shell in flight
type Projectile struct {
	ID       uint64
	Kind     Kind
	OwnerID  uint64
	Target   physics.Vector2D
	Lifetime int
	// Hit is set when the projectile stopped against an obstacle.
	Hit bool
	// Reached is set when a homing projectile arrived at its target.
	Reached bool

	nav         *navigation.Navigation
	speed       float64
	maxLifetime int
	homing      bool
	alive       bool
}

// Alive reports whether the projectile is still flying
func (p *Projectile) Alive() bool {
	return p.alive
}

// Pose returns the current pose
func (p *Projectile) Pose() navigation.Pose {
	return p.nav.Pose()
}

// UpdateTarget moves the point a homing projectile steers to
func (p *Projectile) UpdateTarget(target physics.Vector2D) {
	p.Target = target
}

// Step advances the projectile one tick and retires it on impact, arrival or
// when its lifetime runs out.
func (p *Projectile) Step() {
	if !p.alive {
		return
	}
	pose := p.nav.Pose()
	heading := pose.Heading
	if p.homing {
		offset := p.Target.Sub(pose.Position())
		if offset.Length() <= p.speed {
			p.alive, p.Reached = false, true
			return
		}
		heading = offset.AngleOr(heading)
	}

	p.nav.Receive(navigation.Command{Speed: p.speed, Heading: heading})
	p.nav.Step()
	p.Lifetime++

	if p.nav.Send().Collided {
		p.alive, p.Hit = false, true
		return
	}
	if p.Lifetime >= p.maxLifetime {
		p.alive = false
	}
}

var nextID atomic.Uint64

// GenerateID returns a process-unique projectile ID
func GenerateID() uint64 {
	return nextID.Add(1)
}
