package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.toml")
	content := `
[server]
name = "test-server"
seed = 42

[simulation]
tick_rate = "100ms"
planner_budget = 500

[logging]
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Name != "test-server" || cfg.Server.Seed != 42 {
		t.Fatalf("server section not applied: %+v", cfg.Server)
	}
	if cfg.Simulation.TickRate != 100*time.Millisecond {
		t.Fatalf("tick rate = %v, want 100ms", cfg.Simulation.TickRate)
	}
	if cfg.Simulation.PlannerBudget != 500 {
		t.Fatalf("planner budget = %d, want 500", cfg.Simulation.PlannerBudget)
	}
	// Keys absent from the file keep their defaults.
	if cfg.Simulation.ArrivalThreshold != 0.05 {
		t.Fatalf("arrival threshold = %v, want default 0.05", cfg.Simulation.ArrivalThreshold)
	}
	if cfg.Debug.BindAddress != "127.0.0.1:7420" {
		t.Fatalf("debug bind = %q, want default", cfg.Debug.BindAddress)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("log level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Simulation.TickRate != 50*time.Millisecond {
		t.Fatalf("default tick rate = %v", cfg.Simulation.TickRate)
	}
	if cfg.Database.Enabled {
		t.Fatal("database must default to disabled")
	}
	if cfg.Simulation.NudgeThreshold != 0.2 {
		t.Fatalf("default nudge threshold = %v", cfg.Simulation.NudgeThreshold)
	}
}
