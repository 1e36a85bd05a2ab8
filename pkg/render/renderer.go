// pkg/render/renderer.go
package render

import (
	"context"

	"github.com/opd-ai/go-trainsim/pkg/arena"
	"github.com/opd-ai/go-trainsim/pkg/engine"
	"github.com/opd-ai/go-trainsim/pkg/logging"
)

// Renderer draws simulation snapshots.
type Renderer interface {
	Clear()
	RenderArena(a *arena.Arena)
	RenderCluster(c engine.ClusterState)
	RenderVehicle(v engine.VehicleState)
	RenderProjectile(p engine.ProjectileState)
	Present() error
}

// Draw renders the arena and a full snapshot in back-to-front order.
func Draw(r Renderer, a *arena.Arena, state *engine.State) error {
	r.Clear()
	if a != nil {
		r.RenderArena(a)
	}
	for _, v := range state.Vehicles {
		for _, c := range v.Clusters {
			r.RenderCluster(c)
		}
	}
	for _, p := range state.Projectiles {
		r.RenderProjectile(p)
	}
	for _, v := range state.Vehicles {
		r.RenderVehicle(v)
	}
	return r.Present()
}

// NullRenderer logs render calls at debug level and draws nothing.
type NullRenderer struct {
	logger *logging.Logger
}

// NewNullRenderer creates a NullRenderer. A nil logger discards output.
func NewNullRenderer(logger *logging.Logger) *NullRenderer {
	if logger == nil {
		logger = logging.Discard()
	}
	return &NullRenderer{logger: logger}
}

// Clear implements Renderer.
func (d *NullRenderer) Clear() {
	d.logger.Debug(context.Background(), "Clear called")
}

// RenderArena implements Renderer.
func (d *NullRenderer) RenderArena(a *arena.Arena) {
	d.logger.Debug(context.Background(), "RenderArena called", "obstacles", len(a.Obstacles))
}

// RenderCluster implements Renderer.
func (d *NullRenderer) RenderCluster(c engine.ClusterState) {
	d.logger.Debug(context.Background(), "RenderCluster called", "cluster_id", c.ID.String(), "points", len(c.Points))
}

// RenderVehicle implements Renderer.
func (d *NullRenderer) RenderVehicle(v engine.VehicleState) {
	d.logger.Debug(context.Background(), "RenderVehicle called", "vehicle_id", v.ID, "x", v.Pose.X, "y", v.Pose.Y)
}

// RenderProjectile implements Renderer.
func (d *NullRenderer) RenderProjectile(p engine.ProjectileState) {
	d.logger.Debug(context.Background(), "RenderProjectile called", "projectile_id", p.ID, "kind", string(p.Kind))
}

// Present implements Renderer.
func (d *NullRenderer) Present() error {
	d.logger.Debug(context.Background(), "Present called")
	return nil
}
