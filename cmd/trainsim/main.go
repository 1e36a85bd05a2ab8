// cmd/trainsim/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/opd-ai/go-trainsim/pkg/arena"
	"github.com/opd-ai/go-trainsim/pkg/config"
	"github.com/opd-ai/go-trainsim/pkg/engine"
	"github.com/opd-ai/go-trainsim/pkg/event"
	"github.com/opd-ai/go-trainsim/pkg/logging"
	"github.com/opd-ai/go-trainsim/pkg/physics"
	"github.com/opd-ai/go-trainsim/pkg/render"
	"github.com/opd-ai/go-trainsim/pkg/telemetry"
	"github.com/opd-ai/go-trainsim/pkg/worldmap"
)

type options struct {
	configPath    string
	createDefault bool
	scenePath     string
	ticks         int
	vehicles      int
	seed          uint64
	mapOut        string
	telemetryDir  string
	renderEvery   int
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "trainsim.yaml", "Path to configuration file")
	flag.BoolVar(&opts.createDefault, "default", false, "Create default configuration file")
	flag.StringVar(&opts.scenePath, "scene", "", "Path to scene file (overrides simulation.scene)")
	flag.IntVar(&opts.ticks, "ticks", -1, "Number of ticks to run, 0 runs until interrupted")
	flag.IntVar(&opts.vehicles, "vehicles", -1, "Number of vehicles to spawn")
	flag.Uint64Var(&opts.seed, "seed", 0, "Autopilot seed (0 keeps the configured seed)")
	flag.StringVar(&opts.mapOut, "map-out", "map.yaml", "Where to write the surveyed map, empty to skip")
	flag.StringVar(&opts.telemetryDir, "telemetry-dir", "", "Directory for CSV telemetry, empty to skip")
	flag.IntVar(&opts.renderEvery, "render-every", 0, "Draw the arena to stdout every N ticks, 0 disables")
	flag.Parse()

	logger := logging.NewLogger()
	ctx := logging.WithRunID(context.Background(), "")

	// Errors are logged where they happen; run returns so deferred cleanup
	// such as flushing telemetry still runs.
	if err := run(ctx, logger, opts); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *logging.Logger, opts options) error {
	// Create default configuration file if requested
	if opts.createDefault {
		if err := config.Save(config.Default(), opts.configPath); err != nil {
			logger.Error(ctx, "Failed to create default configuration", err,
				"config_path", opts.configPath,
			)
			return err
		}
		logger.Info(ctx, "Created default configuration file",
			"config_path", opts.configPath,
		)
		return nil
	}

	cfg, err := loadConfig(ctx, logger, opts.configPath)
	if err != nil {
		logger.Error(ctx, "Failed to load configuration", err,
			"config_path", opts.configPath,
		)
		return err
	}
	if opts.ticks >= 0 {
		cfg.Simulation.Ticks = opts.ticks
	}
	if opts.vehicles > 0 {
		cfg.Simulation.Vehicles = opts.vehicles
	}
	if opts.seed != 0 {
		cfg.Simulation.Seed = opts.seed
	}
	if opts.scenePath != "" {
		cfg.Simulation.Scene = opts.scenePath
	}

	scene, err := loadScene(ctx, logger, cfg.Simulation.Scene)
	if err != nil {
		logger.Error(ctx, "Failed to load scene", err,
			"scene_path", cfg.Simulation.Scene,
		)
		return err
	}

	recorder, err := telemetry.NewRecorder(opts.telemetryDir)
	if err != nil {
		logger.Error(ctx, "Failed to open telemetry", err,
			"telemetry_dir", opts.telemetryDir,
		)
		return err
	}
	defer func() {
		if err := recorder.Close(); err != nil {
			logger.Error(ctx, "Failed to close telemetry", err)
		}
	}()

	sim := engine.NewSimulation(cfg, scene, logger)
	sub := sim.EventBus.Subscribe(event.ClusterMerged, func(e event.Event) {
		if ce, ok := e.(*event.ClusterEvent); ok {
			logger.Debug(ctx, "Clusters merged",
				"vehicle_id", ce.VehicleID,
				"merged", ce.Count,
				"clusters", ce.Total,
			)
		}
	})
	defer sub.Cancel()

	if _, err := sim.SpawnVehicles(cfg.Simulation.Vehicles); err != nil {
		logger.Error(ctx, "Failed to spawn vehicles", err,
			"vehicles", cfg.Simulation.Vehicles,
		)
		return err
	}

	var terminal *render.TerminalRenderer
	if opts.renderEvery > 0 {
		terminal = render.NewTerminalRenderer(os.Stdout, 100, 36, 1)
		terminal.FitArena(scene)
		terminal.ClearScreen = true
	}

	// Handle graceful shutdown
	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	onTick := func(report engine.TickReport) {
		if err := recorder.RecordTick(report); err != nil {
			logger.Warn(ctx, "Failed to record tick", "tick", report.Tick, "error", err.Error())
		}
		if terminal != nil && report.Tick%uint64(opts.renderEvery) == 0 {
			if err := render.Draw(terminal, scene, sim.Snapshot()); err != nil {
				logger.Warn(ctx, "Failed to render frame", "tick", report.Tick, "error", err.Error())
			}
		}
	}

	logger.Info(ctx, "Starting simulation",
		"scene", scene.Name,
		"vehicles", cfg.Simulation.Vehicles,
		"ticks", cfg.Simulation.Ticks,
		"seed", cfg.Simulation.Seed,
	)
	if err := sim.Run(runCtx, cfg.Simulation.Ticks, onTick); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error(ctx, "Simulation failed", err)
		return err
	}

	if err := recorder.WriteClusters(sim.Snapshot()); err != nil {
		logger.Error(ctx, "Failed to write cluster telemetry", err)
	}
	if opts.mapOut != "" {
		m := buildMap(sim, scene)
		if err := m.Save(opts.mapOut); err != nil {
			logger.Error(ctx, "Failed to save map", err, "map_path", opts.mapOut)
			return err
		}
		logger.Info(ctx, "Saved surveyed map",
			"map_path", opts.mapOut,
			"objects", len(m.Objects),
			"complete", m.Description.Complete,
		)
	}
	return nil
}

func loadConfig(ctx context.Context, logger *logging.Logger, path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Info(ctx, "Configuration file not found, using default configuration",
			"config_path", path,
		)
		return config.Default(), nil
	}
	return config.LoadFile(path)
}

func loadScene(ctx context.Context, logger *logging.Logger, path string) (*arena.Arena, error) {
	if path == "" {
		logger.Info(ctx, "No scene configured, using default scene")
		return arena.DefaultScene(), nil
	}
	return arena.LoadScene(path)
}

// buildMap collects every vehicle's clusters into one map.
func buildMap(sim *engine.Simulation, scene *arena.Arena) *worldmap.Map {
	sim.EntityLock.RLock()
	defer sim.EntityLock.RUnlock()

	m := worldmap.New(scene.Name, "surveyed by trainsim")
	m.SetBorder(
		physics.Vector2D{X: 0, Y: 0},
		physics.Vector2D{X: scene.Width, Y: 0},
		physics.Vector2D{X: scene.Width, Y: scene.Height},
		physics.Vector2D{X: 0, Y: scene.Height},
	)

	ids := make([]uint64, 0, len(sim.Vehicles))
	for id := range sim.Vehicles {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		m.AddClusters(sim.Vehicles[id].Cartographer.Clusters())
	}

	m.Coverage(expectedPoints(sim))
	return m
}

// expectedPoints is the most hits the fleet could have reported: one laser
// ray plus every locator ray, per tick, per vehicle. Callers hold EntityLock.
func expectedPoints(sim *engine.Simulation) int {
	perTick := sim.Config.Locator.RayCount + 1
	return int(sim.CurrentTick) * perTick * len(sim.Vehicles)
}
