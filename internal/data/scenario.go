package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// BlockEntry places one static block at a cell when the scenario loads.
type BlockEntry struct {
	X int `yaml:"x"`
	Z int `yaml:"z"`
}

// AgentEntry places agents of one archetype at world coordinates.
type AgentEntry struct {
	Archetype string  `yaml:"archetype"`
	Owner     string  `yaml:"owner"`
	X         float64 `yaml:"x"`
	Z         float64 `yaml:"z"`
	Count     int     `yaml:"count"`
	// DefaultOpponent marks this agent as the fallback pursuit target for
	// agents without an ownership tag. Only meaningful with Count 1.
	DefaultOpponent bool `yaml:"default_opponent"`
}

// SpawnerEntry places a spawner emitting agents on a cadence.
type SpawnerEntry struct {
	Archetype string  `yaml:"archetype"`
	Owner     string  `yaml:"owner"`
	X         float64 `yaml:"x"`
	Z         float64 `yaml:"z"`
	Interval  float64 `yaml:"interval"` // seconds
	MaxAlive  int     `yaml:"max_alive"`
}

// Scenario is the initial world content: pre-placed blocks, agents, and
// spawners.
type Scenario struct {
	Blocks   []BlockEntry   `yaml:"blocks"`
	Agents   []AgentEntry   `yaml:"agents"`
	Spawners []SpawnerEntry `yaml:"spawners"`
}

// LoadScenario loads the initial world content from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	return &s, nil
}
