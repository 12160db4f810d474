// Command worldsim runs the curious-world grid simulation: a chunked map of
// food and water, wandering herbivores, carnivores and omnivores, and an HTTP
// API to watch them.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/talgya/curious-world/internal/agents"
	"github.com/talgya/curious-world/internal/api"
	"github.com/talgya/curious-world/internal/config"
	"github.com/talgya/curious-world/internal/engine"
	"github.com/talgya/curious-world/internal/entropy"
	"github.com/talgya/curious-world/internal/persistence"
	"github.com/talgya/curious-world/internal/world"
)

func main() {
	// ── Configuration ─────────────────────────────────────────────────
	cfg := config.Default()
	if path := os.Getenv("WORLDSIM_CONFIG"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if s := os.Getenv("WORLDSIM_SEED"); s != "" {
		seed, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "WORLDSIM_SEED: %v\n", err)
			os.Exit(1)
		}
		cfg.World.Seed = seed
	}
	cfg.API.AdminKey = os.Getenv("WORLDSIM_ADMIN_KEY")

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	slog.Info("curious-world starting")

	// ── Randomness ───────────────────────────────────────────────────
	seed := cfg.World.Seed
	if seed == 0 {
		seed = entropy.CryptoSeed()
	}
	src := entropy.NewStream(seed)
	slog.Info("random stream seeded", "seed", seed)

	// ── World Map ─────────────────────────────────────────────────────
	bounds := world.Bounds{MinX: cfg.World.MinX, MaxX: cfg.World.MaxX, MinY: cfg.World.MinY, MaxY: cfg.World.MaxY}
	gen := world.GenConfig{
		Density:    cfg.World.Density,
		AmountMin:  cfg.World.AmountMin,
		AmountMax:  cfg.World.AmountMax,
		WaterLevel: cfg.World.WaterLevel,
		Seed:       entropy.Derive(seed, 1),
	}
	worldMap := world.Generate(bounds, gen, src)
	food, water := worldMap.ResourceTotals()
	slog.Info("world map generated", "bounds", worldMap, "chunks", worldMap.ChunkCount(), "food", food, "water", water)

	// ── Population ────────────────────────────────────────────────────
	instincts := agents.DefaultInstincts()
	instincts.MateEnergy = cfg.Rules.ReproductionMinEnergy

	sim := engine.NewSimulation(worldMap, cfg.Rules, cfg.Metabolism, src)
	if err := sim.Populate(agents.NewSpawner(src, instincts), cfg.Population); err != nil {
		slog.Error("failed to place population", "error", err)
		os.Exit(1)
	}

	// ── Journal ───────────────────────────────────────────────────────
	var journal *persistence.Journal
	if cfg.Journal.Enabled {
		j, err := persistence.Open(cfg.Journal.Path)
		if err != nil {
			slog.Error("failed to open journal", "error", err)
			os.Exit(1)
		}
		defer j.Close()
		if _, err := j.StartRun(seed, cfg); err != nil {
			slog.Error("failed to start journal run", "error", err)
			os.Exit(1)
		}
		journal = j
		sim.Sink = j
		slog.Info("journal opened", "path", cfg.Journal.Path)
	}

	// ── Engine ────────────────────────────────────────────────────────
	eng := engine.NewEngine()
	eng.Interval = time.Duration(cfg.Engine.TickIntervalMS) * time.Millisecond
	eng.ReportEvery = cfg.Engine.ReportEvery
	eng.MaxTicks = cfg.Engine.MaxTicks
	eng.SetSpeed(cfg.Engine.Speed)

	eng.OnTick = sim.Advance
	eng.OnReport = func(tick uint64) {
		sim.Report(tick)
		if journal == nil {
			return
		}
		if err := journal.SaveStats(tick, sim.Status().Stats); err != nil {
			slog.Warn("stats snapshot failed", "tick", tick, "error", err)
		}
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	if cfg.API.AdminKey == "" {
		slog.Warn("WORLDSIM_ADMIN_KEY not set, admin POST endpoints disabled")
	}
	apiServer := &api.Server{
		Sim:       sim,
		Eng:       eng,
		DB:        journal,
		Port:      cfg.API.Port,
		AdminKey:  cfg.API.AdminKey,
		Instincts: instincts,
	}
	httpServer := apiServer.Start()

	// ── Start ─────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		eng.Stop()
	}()

	st := sim.Status().Stats
	fmt.Printf("\nThe world is alive: %d creatures on %d cells.\n", st.Active, bounds.Area())
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.API.Port)
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	eng.Run()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Warn("HTTP shutdown failed", "error", err)
	}
	sim.Report(eng.Tick)
	fmt.Println("Simulation stopped.")
}
