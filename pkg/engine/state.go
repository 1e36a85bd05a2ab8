// pkg/engine/state.go
package engine

import (
	"github.com/google/uuid"

	"github.com/opd-ai/go-trainsim/pkg/cartographer"
	"github.com/opd-ai/go-trainsim/pkg/navigation"
	"github.com/opd-ai/go-trainsim/pkg/physics"
	"github.com/opd-ai/go-trainsim/pkg/weapon"
)

// State is a copy of the simulation taken between ticks
type State struct {
	Tick        uint64
	Vehicles    map[uint64]VehicleState
	Projectiles map[uint64]ProjectileState
}

// VehicleState is a snapshot of one vehicle
type VehicleState struct {
	ID         uint64
	Name       string
	Pose       navigation.Pose
	Collisions int
	LaserPoint physics.Vector2D
	LaserHit   bool
	Clusters   []ClusterState
}

// ClusterState is a snapshot of one cluster
type ClusterState struct {
	ID     uuid.UUID
	Center physics.Vector2D
	Radius float64
	Points []physics.Vector2D
}

// ProjectileState is a snapshot of a projectile in flight
type ProjectileState struct {
	ID       uint64
	OwnerID  uint64
	Kind     weapon.Kind
	Position physics.Vector2D
}

// Snapshot returns the current state
func (s *Simulation) Snapshot() *State {
	s.EntityLock.RLock()
	defer s.EntityLock.RUnlock()

	return &State{
		Tick:        s.CurrentTick,
		Vehicles:    s.getVehicleStates(),
		Projectiles: s.getProjectileStates(),
	}
}

func (s *Simulation) getVehicleStates() map[uint64]VehicleState {
	states := make(map[uint64]VehicleState, len(s.Vehicles))
	for id, v := range s.Vehicles {
		vs := VehicleState{
			ID:         id,
			Name:       v.Name,
			Pose:       v.Pose(),
			Collisions: v.Collisions,
			Clusters:   ClusterStates(v.Cartographer.Clusters()),
		}
		if len(v.LastLaser.Distance) > 0 {
			r := v.LastLaser.Distance[0]
			vs.LaserPoint, vs.LaserHit = r.Point(), r.Measurement
		}
		states[id] = vs
	}
	return states
}

func (s *Simulation) getProjectileStates() map[uint64]ProjectileState {
	states := make(map[uint64]ProjectileState, len(s.Projectiles))
	for id, p := range s.Projectiles {
		states[id] = ProjectileState{
			ID:       id,
			OwnerID:  p.OwnerID,
			Kind:     p.Kind,
			Position: p.Pose().Position(),
		}
	}
	return states
}

// ClusterStates copies cartographer clusters into snapshot form
func ClusterStates(clusters []*cartographer.Cluster) []ClusterState {
	out := make([]ClusterState, len(clusters))
	for i, c := range clusters {
		out[i] = ClusterState{
			ID:     c.ID,
			Center: c.Center(),
			Radius: c.Radius(),
			Points: c.Points(),
		}
	}
	return out
}
