// pkg/engine/vehicle.go
package engine

import (
	"github.com/opd-ai/go-trainsim/pkg/autopilot"
	"github.com/opd-ai/go-trainsim/pkg/cartographer"
	"github.com/opd-ai/go-trainsim/pkg/config"
	"github.com/opd-ai/go-trainsim/pkg/navigation"
	"github.com/opd-ai/go-trainsim/pkg/physics"
	"github.com/opd-ai/go-trainsim/pkg/sighting"
	"github.com/opd-ai/go-trainsim/pkg/weapon"
)

// Vehicle bundles the components carried by one train. Components are not
// shared between vehicles.
type Vehicle struct {
	ID           uint64
	Name         string
	Navigation   *navigation.Navigation
	Laser        *sighting.Laser
	Locator      *sighting.Locator
	Cartographer *cartographer.Cartographer
	Autopilot    *autopilot.Autopilot

	LastMotion  navigation.Result
	LastLaser   sighting.Result
	LastLocator sighting.Result
	Collisions  int

	override *navigation.Command
	ready    map[weapon.Kind]uint64
}

func newVehicle(id uint64, name string, pose navigation.Pose, cfg *config.Config, oracle physics.Oracle) (*Vehicle, error) {
	nav, err := navigation.New(pose, cfg.Navigation, oracle)
	if err != nil {
		return nil, err
	}
	laser, err := sighting.NewLaser(cfg.Laser, oracle)
	if err != nil {
		return nil, err
	}
	locator, err := sighting.NewLocator(cfg.Locator, oracle)
	if err != nil {
		return nil, err
	}
	carto, err := cartographer.New(cfg.Cartographer)
	if err != nil {
		return nil, err
	}
	start := nav.Pose()
	laser.UpdateNavigation(start.X, start.Y, start.Heading)
	locator.UpdateNavigation(start.X, start.Y, start.Heading)

	return &Vehicle{
		ID:           id,
		Name:         name,
		Navigation:   nav,
		Laser:        laser,
		Locator:      locator,
		Cartographer: carto,
		Autopilot:    autopilot.New(autopilot.DefaultConfig(cfg.Simulation.CruiseSpeed), cfg.Simulation.Seed+id),
		LastMotion:   nav.Send(),
		ready:        make(map[weapon.Kind]uint64),
	}, nil
}

// Pose returns the vehicle's current pose.
func (v *Vehicle) Pose() navigation.Pose {
	return v.Navigation.Pose()
}

// VehicleReport is what one vehicle did during a tick.
type VehicleReport struct {
	ID            uint64
	Pose          navigation.Pose
	Collided      bool
	LaserDistance float64
	LaserHit      bool
	Hits          int
	Clusters      int
	Stats         cartographer.AppendStats
}

// step runs one vehicle through navigation, both sensors and the
// cartographer, in that order.
func (v *Vehicle) step() VehicleReport {
	decision := v.Autopilot.Decide(v.Navigation.Pose(), v.LastLaser)
	cmd := decision.Motion
	if v.override != nil {
		cmd, v.override = *v.override, nil
	}

	v.Navigation.Receive(cmd)
	v.Navigation.Step()
	motion := v.Navigation.Send()
	v.LastMotion = motion
	if motion.Collided {
		v.Collisions++
	}

	sensors := []struct {
		sensor sighting.Sensor
		query  sighting.Query
		out    *sighting.Result
	}{
		{v.Laser, decision.Laser, &v.LastLaser},
		{v.Locator, decision.Locator, &v.LastLocator},
	}
	for _, s := range sensors {
		s.sensor.UpdateNavigation(motion.X, motion.Y, motion.Heading)
		s.sensor.Receive(s.query)
		s.sensor.Step()
		*s.out = s.sensor.Send()
	}

	hits := sighting.Hits(v.LastLaser, v.LastLocator)
	stats := v.Cartographer.Append(hits)

	report := VehicleReport{
		ID:       v.ID,
		Pose:     v.Navigation.Pose(),
		Collided: motion.Collided,
		Hits:     len(hits),
		Clusters: len(v.Cartographer.Clusters()),
		Stats:    stats,
	}
	if len(v.LastLaser.Distance) > 0 {
		report.LaserDistance = v.LastLaser.Distance[0].Value
		report.LaserHit = v.LastLaser.Distance[0].Measurement
	}
	return report
}
