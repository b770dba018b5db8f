package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Archetype holds the static tuning for one kind of agent, loaded from
// archetype_list.yaml. Scripting overrides are applied on top of these
// values at spawn time.
type Archetype struct {
	Name            string  `yaml:"name"`
	Speed           float64 `yaml:"speed"` // world units per second
	ColliderRadius  float64 `yaml:"collider_radius"`
	WanderRadius    float64 `yaml:"wander_radius"`
	Pursues         bool    `yaml:"pursues"`
	DetectionRadius int     `yaml:"detection_radius"` // cells
	StepBudget      int     `yaml:"step_budget"`
	AggroThreshold  int     `yaml:"aggro_threshold"`
	CooldownSeconds float64 `yaml:"cooldown_seconds"`
	RageSeconds     float64 `yaml:"rage_seconds"`
}

type archetypeListFile struct {
	Archetypes []Archetype `yaml:"archetypes"`
}

// ArchetypeTable holds all archetypes indexed by name.
type ArchetypeTable struct {
	archetypes map[string]*Archetype
}

// LoadArchetypeTable loads agent archetypes from a YAML file.
func LoadArchetypeTable(path string) (*ArchetypeTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read archetype_list: %w", err)
	}
	var f archetypeListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse archetype_list: %w", err)
	}
	t := &ArchetypeTable{archetypes: make(map[string]*Archetype, len(f.Archetypes))}
	for i := range f.Archetypes {
		a := &f.Archetypes[i]
		t.archetypes[a.Name] = a
	}
	return t, nil
}

// Get returns an archetype by name, or nil if not found.
func (t *ArchetypeTable) Get(name string) *Archetype {
	return t.archetypes[name]
}

// Count returns the number of loaded archetypes.
func (t *ArchetypeTable) Count() int {
	return len(t.archetypes)
}
