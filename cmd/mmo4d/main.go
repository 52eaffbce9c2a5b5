package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/profile"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/james-salafatinos/mmo4/internal/component"
	"github.com/james-salafatinos/mmo4/internal/config"
	"github.com/james-salafatinos/mmo4/internal/core/ecs"
	"github.com/james-salafatinos/mmo4/internal/data"
	gonet "github.com/james-salafatinos/mmo4/internal/net"
	"github.com/james-salafatinos/mmo4/internal/persist"
	"github.com/james-salafatinos/mmo4/internal/scripting"
	"github.com/james-salafatinos/mmo4/internal/system"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		cfgPath    = flag.String("config", "config/server.toml", "path to server config")
		cpuProfile = flag.Bool("profile", false, "write a CPU profile for this run")
	)
	flag.Parse()

	if p := os.Getenv("MMO4_CONFIG"); p != "" && *cfgPath == "config/server.toml" {
		*cfgPath = p
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	if *cpuProfile {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	}

	log.Info("starting server",
		zap.String("name", cfg.Server.Name),
		zap.String("world", cfg.Server.WorldName))

	// Component registry and world.
	registry := ecs.NewRegistry(log)
	component.RegisterAll(registry)

	world := ecs.NewWorld(cfg.Server.WorldName, registry, log)
	world.EnableSpatialIndex(cfg.Simulation.SpatialCellSize)

	// Optional persistence: connect, migrate, restore the latest snapshot.
	var (
		snapshots *persist.SnapshotRepo
		restored  bool
	)
	if cfg.Database.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		db, err := persist.NewDB(ctx, cfg.Database, log)
		if err != nil {
			cancel()
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			cancel()
			return fmt.Errorf("migrations: %w", err)
		}
		cancel()
		snapshots = persist.NewSnapshotRepo(db)
		restored = restoreWorld(world, snapshots, cfg.Server.WorldName, log)
	}

	// Prefab table seeds a fresh world; a restored one keeps its snapshot.
	prefabs, err := data.LoadPrefabTable(cfg.Simulation.PrefabPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Warn("no prefab file, starting with an empty world",
			zap.String("path", cfg.Simulation.PrefabPath))
	case err != nil:
		return fmt.Errorf("load prefabs: %w", err)
	default:
		log.Info("prefabs loaded", zap.Int("count", prefabs.Count()))
		if !restored {
			spawned := prefabs.SpawnAll(world, log)
			log.Info("world seeded", zap.Int("entities", spawned))
		}
	}

	// Lua behavior engine.
	luaEngine, err := scripting.NewEngine(cfg.Simulation.ScriptsDir, log)
	if err != nil {
		return fmt.Errorf("lua engine: %w", err)
	}
	defer luaEngine.Close()

	// Systems, highest priority first at runtime regardless of order here.
	world.RegisterSystem(system.NewMovementSystem(cfg.Simulation.FixedStep))
	world.RegisterSystem(system.NewSpatialSystem())
	world.RegisterSystem(system.NewScriptSystem(luaEngine))
	world.RegisterSystem(system.NewLifetimeSystem())
	world.RegisterSystem(system.NewSyncSystem())

	// Sync feed.
	netServer := gonet.NewServer(cfg.Network, log)
	go func() {
		if err := netServer.ListenAndServe(); err != nil {
			log.Error("sync server stopped", zap.Error(err))
		}
	}()
	broadcaster := gonet.NewBroadcaster(netServer, world, log)
	defer broadcaster.Detach()

	world.Start()
	log.Info("world running",
		zap.Duration("tick_rate", cfg.Simulation.TickRate),
		zap.String("bind", cfg.Network.BindAddress))

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Simulation.TickRate)
	defer ticker.Stop()

	var lastSnapshot time.Time
	for {
		select {
		case now := <-ticker.C:
			world.Update(now)
			if snapshots != nil && now.Sub(lastSnapshot) >= cfg.Database.SnapshotInterval {
				lastSnapshot = now
				saveSnapshot(world, snapshots, cfg, log)
			}
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			world.Stop()
			if snapshots != nil {
				saveSnapshot(world, snapshots, cfg, log)
			}
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := netServer.Shutdown(ctx); err != nil {
				log.Warn("sync server shutdown", zap.Error(err))
			}
			log.Info("server stopped")
			return nil
		}
	}
}

// restoreWorld loads the latest snapshot into the world. A missing snapshot
// is a fresh start, not an error.
func restoreWorld(world *ecs.World, snapshots *persist.SnapshotRepo, name string, log *zap.Logger) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	snap, err := snapshots.LoadLatest(ctx, name)
	if err != nil {
		log.Info("no snapshot restored", zap.Error(err))
		return false
	}
	loaded := world.LoadEntities(snap.Entities)
	log.Info("world restored",
		zap.Int("entities", len(loaded)),
		zap.Time("taken_at", snap.TakenAt))
	return true
}

func saveSnapshot(world *ecs.World, snapshots *persist.SnapshotRepo, cfg *config.Config, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	name := cfg.Server.WorldName
	if err := snapshots.Save(ctx, name, world.Serialize()); err != nil {
		log.Error("snapshot save failed", zap.Error(err))
		return
	}
	if err := snapshots.Prune(ctx, name, cfg.Database.SnapshotsKept); err != nil {
		log.Warn("snapshot prune failed", zap.Error(err))
	}
	log.Info("snapshot saved", zap.Int("entities", len(world.Entities())))
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
