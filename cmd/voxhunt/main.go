package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/voxhunt/server/internal/component"
	"github.com/voxhunt/server/internal/config"
	coresys "github.com/voxhunt/server/internal/core/system"
	"github.com/voxhunt/server/internal/data"
	"github.com/voxhunt/server/internal/debug"
	"github.com/voxhunt/server/internal/geom"
	"github.com/voxhunt/server/internal/grid"
	"github.com/voxhunt/server/internal/nav"
	"github.com/voxhunt/server/internal/persist"
	"github.com/voxhunt/server/internal/scripting"
	"github.com/voxhunt/server/internal/system"
	"github.com/voxhunt/server/internal/world"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(serverName string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m            voxhunt  v0.1.0                \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m     grid pathfinding & pursuit engine     \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mserver:\033[0m %s\n\n", serverName)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main server logic ─────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/server.toml"
	if p := os.Getenv("VOXHUNT_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// 3. Connect to PostgreSQL and run migrations (optional)
	var blockRepo *persist.BlockRepo
	if cfg.Database.Enabled {
		printSection("database")
		db, err := persist.Open(ctx, cfg.Database, log)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK("postgres connected")

		if err := db.Migrate(ctx); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		printOK("migrations applied")
		fmt.Println()

		blockRepo = persist.NewBlockRepo(db)
	}

	// 4. Load data tables
	printSection("data")

	archetypes, err := data.LoadArchetypeTable("data/yaml/archetype_list.yaml")
	if err != nil {
		return fmt.Errorf("load archetype table: %w", err)
	}
	printStat("archetypes", archetypes.Count())

	scenario, err := data.LoadScenario("data/yaml/scenario.yaml")
	if err != nil {
		return fmt.Errorf("load scenario: %w", err)
	}

	// 5. Initialize Lua scripting engine
	luaEngine, err := scripting.NewEngine(cfg.Scripting.Dir, log)
	if err != nil {
		return fmt.Errorf("lua engine: %w", err)
	}
	defer luaEngine.Close()
	printOK("lua scripts loaded")

	if cfg.Scripting.HotReload {
		watcher, err := scripting.NewWatcher(cfg.Scripting.Dir, luaEngine, log)
		if err != nil {
			return fmt.Errorf("script watcher: %w", err)
		}
		defer watcher.Close()
		printOK("script hot reload enabled")
	}

	// 6. Create world state and populate from scenario + stored blocks
	state := world.NewState(cfg.Server.Seed)

	blockCount := 0
	for _, b := range scenario.Blocks {
		state.CreateBlock(grid.Cell{X: b.X, Z: b.Z})
		blockCount++
	}
	if blockRepo != nil {
		stored, err := blockRepo.LoadAll(ctx)
		if err != nil {
			return fmt.Errorf("load stored blocks: %w", err)
		}
		for _, c := range stored {
			if _, exists := state.BlockAt(c); !exists {
				state.CreateBlock(c)
				blockCount++
			}
		}
	}
	printStat("blocks", blockCount)

	agentCount := spawnScenarioAgents(state, scenario, archetypes, luaEngine)
	printStat("agents", agentCount)

	spawnerCount := placeScenarioSpawners(state, scenario)
	printStat("spawners", spawnerCount)
	fmt.Println()

	// 7. Debug websocket feed (optional)
	var debugServer *debug.Server
	if cfg.Debug.Enabled {
		debugServer = debug.NewServer(cfg.Debug, log)
		debugServer.Start()
	}

	// 8. Create systems and register with runner
	planner := nav.NewPlanner(state.Grid)
	runner := coresys.NewRunner()
	runner.Register(system.NewIngestSystem(state, commandSource(debugServer), log))
	runner.Register(system.NewObstacleSyncSystem(state))
	runner.Register(system.NewWanderSystem(state))
	runner.Register(system.NewPursuitSystem(state, log))
	runner.Register(system.NewSpawnerSystem(state, archetypes, luaEngine, log))
	runner.Register(system.NewMovementSystem(state, planner, cfg.Simulation))
	runner.Register(system.NewCollisionSystem(state, cfg.Simulation))
	runner.Register(system.NewMarkerSystem(state))
	if debugServer != nil {
		runner.Register(system.NewDebugFeedSystem(state, debugServer))
	}
	var persistSys *system.PersistenceSystem
	if blockRepo != nil {
		persistSys = system.NewPersistenceSystem(state, blockRepo, log, cfg.Database.SaveInterval)
		runner.Register(persistSys)
	}
	runner.Register(system.NewCleanupSystem(state.ECS))

	// 9. Start simulation loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Simulation.TickRate)
	defer ticker.Stop()

	printSection("ready")
	if debugServer != nil {
		printReady(fmt.Sprintf("debug feed on ws://%s/ws", cfg.Debug.BindAddress))
	}
	printReady(fmt.Sprintf("simulation loop started (tick: %s)", cfg.Simulation.TickRate))
	fmt.Println()

	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Simulation.TickRate)
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			if persistSys != nil {
				// Block edits from the final tick are still in the bus back
				// buffer; drain it so they reach the flush.
				state.Bus.SwapBuffers()
				state.Bus.DispatchAll()
				persistSys.Flush()
			}
			if debugServer != nil {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				debugServer.Shutdown(shutdownCtx)
				cancel()
			}
			log.Info("server stopped")
			return nil
		}
	}
}

// commandSource adapts the optional debug server into the ingest system's
// command source without handing it a typed nil.
func commandSource(s *debug.Server) system.CommandSource {
	if s == nil {
		return nil
	}
	return s
}

// spawnScenarioAgents creates all initial agents, applying Lua tuning
// overrides on top of their archetype values.
func spawnScenarioAgents(state *world.State, scenario *data.Scenario, archetypes *data.ArchetypeTable, engine *scripting.Engine) int {
	count := 0
	for _, entry := range scenario.Agents {
		arch := archetypes.Get(entry.Archetype)
		if arch == nil {
			continue
		}
		tuned := engine.AgentTuning(*arch)
		n := entry.Count
		if n < 1 {
			n = 1
		}
		for i := 0; i < n; i++ {
			pos := geom.Vec2{X: entry.X, Z: entry.Z}
			id := system.SpawnAgent(state, tuned, entry.Owner, pos)
			if entry.DefaultOpponent && state.DefaultOpponent.IsZero() {
				state.DefaultOpponent = id
			}
			count++
		}
	}
	return count
}

func placeScenarioSpawners(state *world.State, scenario *data.Scenario) int {
	count := 0
	for _, entry := range scenario.Spawners {
		id := state.ECS.CreateEntity()
		pos := geom.Vec2{X: entry.X, Z: entry.Z}
		state.Transforms.Set(id, &component.Transform{Pos: pos, PrevPos: pos})
		state.Spawners.Set(id, &component.Spawner{
			Archetype: entry.Archetype,
			Owner:     entry.Owner,
			Interval:  entry.Interval,
			MaxAlive:  entry.MaxAlive,
		})
		if entry.Owner != "" {
			state.Owners.Set(id, &component.Ownership{Owner: entry.Owner})
		}
		count++
	}
	return count
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
