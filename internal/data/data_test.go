package data

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadArchetypeTable(t *testing.T) {
	path := writeFixture(t, "archetype_list.yaml", `
archetypes:
  - name: stalker
    speed: 2.5
    collider_radius: 0.35
    wander_radius: 6
    pursues: true
    detection_radius: 8
    step_budget: 24
    aggro_threshold: 3
    cooldown_seconds: 4.0
    rage_seconds: 10.0
  - name: drifter
    speed: 2.0
    collider_radius: 0.3
    wander_radius: 10
`)

	table, err := LoadArchetypeTable(path)
	if err != nil {
		t.Fatalf("LoadArchetypeTable: %v", err)
	}
	if table.Count() != 2 {
		t.Fatalf("Count = %d, want 2", table.Count())
	}

	stalker := table.Get("stalker")
	if stalker == nil {
		t.Fatal("stalker archetype missing")
	}
	if !stalker.Pursues || stalker.DetectionRadius != 8 || stalker.StepBudget != 24 {
		t.Fatalf("stalker fields wrong: %+v", stalker)
	}

	drifter := table.Get("drifter")
	if drifter == nil || drifter.Pursues {
		t.Fatalf("drifter should load as non-pursuing: %+v", drifter)
	}

	if table.Get("nope") != nil {
		t.Fatal("unknown archetype should return nil")
	}
}

func TestLoadScenario(t *testing.T) {
	path := writeFixture(t, "scenario.yaml", `
blocks:
  - { x: 1, z: 2 }
  - { x: -3, z: 4 }
agents:
  - archetype: drifter
    owner: north
    x: 0.5
    z: 12.0
    count: 1
    default_opponent: true
spawners:
  - archetype: brute
    owner: south
    x: -12.0
    z: -12.0
    interval: 20.0
    max_alive: 6
`)

	s, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("LoadScenario: %v", err)
	}
	if len(s.Blocks) != 2 || s.Blocks[1].X != -3 {
		t.Fatalf("blocks wrong: %+v", s.Blocks)
	}
	if len(s.Agents) != 1 || !s.Agents[0].DefaultOpponent || s.Agents[0].Owner != "north" {
		t.Fatalf("agents wrong: %+v", s.Agents)
	}
	if len(s.Spawners) != 1 || s.Spawners[0].MaxAlive != 6 {
		t.Fatalf("spawners wrong: %+v", s.Spawners)
	}
}

func TestLoadArchetypeTableErrors(t *testing.T) {
	if _, err := LoadArchetypeTable(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}

	bad := writeFixture(t, "bad.yaml", "archetypes: {not a list}")
	if _, err := LoadArchetypeTable(bad); err == nil {
		t.Fatal("expected a parse error")
	}
}
