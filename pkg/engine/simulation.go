// pkg/engine/simulation.go
package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/opd-ai/go-trainsim/pkg/arena"
	"github.com/opd-ai/go-trainsim/pkg/config"
	"github.com/opd-ai/go-trainsim/pkg/event"
	"github.com/opd-ai/go-trainsim/pkg/logging"
	"github.com/opd-ai/go-trainsim/pkg/navigation"
	"github.com/opd-ai/go-trainsim/pkg/physics"
	"github.com/opd-ai/go-trainsim/pkg/sighting"
	"github.com/opd-ai/go-trainsim/pkg/validation"
	"github.com/opd-ai/go-trainsim/pkg/weapon"
)

// Status is the lifecycle state of a simulation
type Status int

const (
	StatusWaiting Status = iota
	StatusActive
	StatusEnded
)

// spawnClearance keeps new vehicles away from walls and obstacles.
const spawnClearance = 30

var (
	ErrVehicleNotFound = errors.New("vehicle not found")
	ErrNoSpawnPoint    = errors.New("no free spawn point")
	ErrUnknownWeapon   = errors.New("unknown weapon")
	ErrWeaponCooldown  = errors.New("weapon cooling down")
)

// Simulation owns an arena, the vehicles driving in it and the projectiles
// in flight. Ticks are processed one at a time in a fixed order.
type Simulation struct {
	Config      *config.Config
	Arena       *arena.Arena
	Vehicles    map[uint64]*Vehicle
	Projectiles map[uint64]*weapon.Projectile
	EntityLock  sync.RWMutex
	CurrentTick uint64
	EventBus    *event.Bus
	Status      Status
	StartTime   time.Time
	EndTime     time.Time
	Logger      *logging.Logger

	order   []uint64
	nextID  uint64
	weapons map[weapon.Kind]weapon.Weapon
	rng     *rand.Rand
}

// NewSimulation creates a simulation over the given arena. A nil arena uses
// the default scene and a nil logger discards output. Event handlers run
// inside Tick and must not call back into the simulation.
func NewSimulation(cfg *config.Config, a *arena.Arena, logger *logging.Logger) *Simulation {
	if a == nil {
		a = arena.DefaultScene()
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Simulation{
		Config:      cfg,
		Arena:       a,
		Vehicles:    make(map[uint64]*Vehicle),
		Projectiles: make(map[uint64]*weapon.Projectile),
		EventBus:    event.NewEventBus(),
		Logger:      logger,
		nextID:      1,
		weapons: map[weapon.Kind]weapon.Weapon{
			weapon.KindCannon: weapon.NewCannon(),
			weapon.KindRocket: weapon.NewRocket(),
		},
		rng: rand.New(rand.NewPCG(cfg.Simulation.Seed, 0x5eed)),
	}
}

// AddVehicle places a new vehicle at pose and returns its ID.
func (s *Simulation) AddVehicle(name string, pose navigation.Pose) (uint64, error) {
	s.EntityLock.Lock()
	defer s.EntityLock.Unlock()

	return s.addVehicle(name, pose)
}

func (s *Simulation) addVehicle(name string, pose navigation.Pose) (uint64, error) {
	name, err := validation.ValidateVehicleName(name)
	if err != nil {
		return 0, err
	}
	if err := validation.ValidatePose(pose); err != nil {
		return 0, fmt.Errorf("vehicle %q: %w", name, err)
	}

	id := s.nextID
	v, err := newVehicle(id, name, pose, s.Config, s.Arena)
	if err != nil {
		return 0, fmt.Errorf("failed to create vehicle %q: %w", name, err)
	}
	s.nextID++
	s.Vehicles[id] = v
	s.order = append(s.order, id)

	s.EventBus.Publish(event.NewVehicleEvent(event.VehicleAdded, s, id, s.CurrentTick, pose.X, pose.Y))
	return id, nil
}

// SpawnVehicles adds n vehicles at random free points with random headings.
func (s *Simulation) SpawnVehicles(n int) ([]uint64, error) {
	s.EntityLock.Lock()
	defer s.EntityLock.Unlock()

	ids := make([]uint64, 0, n)
	for i := 0; i < n; i++ {
		pos, ok := s.findSpawnPoint()
		if !ok {
			return ids, ErrNoSpawnPoint
		}
		pose := navigation.Pose{X: pos.X, Y: pos.Y, Heading: s.rng.Float64()*2*math.Pi - math.Pi}
		id, err := s.addVehicle(fmt.Sprintf("train-%d", s.nextID), pose)
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// findSpawnPoint samples the arena for a point clear of obstacles.
func (s *Simulation) findSpawnPoint() (physics.Vector2D, bool) {
	for attempt := 0; attempt < 1000; attempt++ {
		p := physics.Vector2D{
			X: s.rng.Float64() * s.Arena.Width,
			Y: s.rng.Float64() * s.Arena.Height,
		}
		if s.Arena.Free(p, spawnClearance) {
			return p, true
		}
	}
	return physics.Vector2D{}, false
}

// Start marks the simulation active
func (s *Simulation) Start(ctx context.Context) {
	s.Status = StatusActive
	s.StartTime = time.Now()
	s.Logger.Info(ctx, "simulation started", "vehicles", len(s.Vehicles), "arena", s.Arena.Name)
	s.EventBus.Publish(&event.BaseEvent{
		EventType: event.SimulationStarted,
		Source:    s,
	})
}

// Stop marks the simulation ended
func (s *Simulation) Stop(ctx context.Context) {
	s.Status = StatusEnded
	s.EndTime = time.Now()
	s.Logger.Info(ctx, "simulation ended", "ticks", s.CurrentTick, "elapsed", s.EndTime.Sub(s.StartTime).String())
	s.EventBus.Publish(&event.BaseEvent{
		EventType: event.SimulationEnded,
		Source:    s,
	})
}

// Command overrides the autopilot of a vehicle for the next tick.
func (s *Simulation) Command(vehicleID uint64, cmd navigation.Command) error {
	if err := validation.ValidateCommand(cmd); err != nil {
		return err
	}

	s.EntityLock.Lock()
	defer s.EntityLock.Unlock()

	v, ok := s.Vehicles[vehicleID]
	if !ok {
		return ErrVehicleNotFound
	}
	v.override = &cmd
	return nil
}

// TickReport summarises one tick
type TickReport struct {
	Tick     uint64
	Vehicles []VehicleReport
}

// Tick advances every vehicle, then every projectile, by one step.
func (s *Simulation) Tick(ctx context.Context) TickReport {
	s.EntityLock.Lock()
	defer s.EntityLock.Unlock()

	report := TickReport{Tick: s.CurrentTick, Vehicles: make([]VehicleReport, 0, len(s.order))}
	for _, id := range s.order {
		v := s.Vehicles[id]
		r := v.step()
		s.publishVehicleEvents(ctx, v, r)
		report.Vehicles = append(report.Vehicles, r)
	}
	s.updateProjectiles(ctx)
	s.CurrentTick++
	return report
}

func (s *Simulation) publishVehicleEvents(ctx context.Context, v *Vehicle, r VehicleReport) {
	if r.Collided {
		s.Logger.Debug(ctx, "vehicle blocked", "vehicle", v.ID, "x", r.Pose.X, "y", r.Pose.Y, "heading", r.Pose.Heading)
		s.EventBus.Publish(event.NewVehicleEvent(event.VehicleCollided, s, v.ID, s.CurrentTick, r.Pose.X, r.Pose.Y))
	}
	for _, res := range []struct {
		name   string
		result sighting.Result
	}{{v.Laser.Name(), v.LastLaser}, {v.Locator.Name(), v.LastLocator}} {
		if res.result.Alpha != nil && res.result.Alpha.Restriction != sighting.RestrictionNone {
			s.EventBus.Publish(event.NewTurretEvent(s, v.ID, res.name, int(res.result.Alpha.Restriction)))
		}
	}
	if r.Stats.Created > 0 {
		s.EventBus.Publish(event.NewClusterEvent(event.ClusterCreated, s, v.ID, r.Stats.Created, r.Clusters))
	}
	if r.Stats.Merged > 0 {
		s.Logger.Debug(ctx, "clusters merged", "vehicle", v.ID, "merged", r.Stats.Merged, "clusters", r.Clusters)
		s.EventBus.Publish(event.NewClusterEvent(event.ClusterMerged, s, v.ID, r.Stats.Merged, r.Clusters))
	}
}

func (s *Simulation) updateProjectiles(ctx context.Context) {
	ids := make([]uint64, 0, len(s.Projectiles))
	for id := range s.Projectiles {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		p := s.Projectiles[id]
		p.Step()
		if p.Alive() {
			continue
		}
		delete(s.Projectiles, id)
		s.Logger.Debug(ctx, "projectile retired", "projectile", id, "kind", string(p.Kind), "hit", p.Hit)
		s.EventBus.Publish(event.NewProjectileEvent(event.ProjectileDestroyed, s, id, p.OwnerID, string(p.Kind), p.Hit))
	}
}

// Fire launches a projectile of kind from the vehicle toward target.
func (s *Simulation) Fire(vehicleID uint64, kind weapon.Kind, target physics.Vector2D) (uint64, error) {
	if err := validation.ValidatePoint(target); err != nil {
		return 0, fmt.Errorf("fire target: %w", err)
	}

	s.EntityLock.Lock()
	defer s.EntityLock.Unlock()

	v, ok := s.Vehicles[vehicleID]
	if !ok {
		return 0, ErrVehicleNotFound
	}
	w, ok := s.weapons[kind]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownWeapon, kind)
	}
	if s.CurrentTick < v.ready[kind] {
		return 0, ErrWeaponCooldown
	}

	p, err := w.Launch(v.ID, v.Pose(), target, s.Arena)
	if err != nil {
		return 0, fmt.Errorf("failed to launch %s: %w", kind, err)
	}
	v.ready[kind] = s.CurrentTick + uint64(w.Cooldown())
	s.Projectiles[p.ID] = p
	s.EventBus.Publish(event.NewProjectileEvent(event.ProjectileFired, s, p.ID, v.ID, string(kind), false))
	return p.ID, nil
}

// Run ticks until the requested count is reached or ctx is cancelled.
// ticks <= 0 runs until cancellation. onTick may be nil.
func (s *Simulation) Run(ctx context.Context, ticks int, onTick func(TickReport)) error {
	s.Start(ctx)
	defer s.Stop(ctx)

	for i := 0; ticks <= 0 || i < ticks; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		report := s.Tick(ctx)
		if onTick != nil {
			onTick(report)
		}
	}
	return nil
}
