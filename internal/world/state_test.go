package world

import (
	"testing"

	"github.com/voxhunt/server/internal/component"
	"github.com/voxhunt/server/internal/core/ecs"
	"github.com/voxhunt/server/internal/geom"
	"github.com/voxhunt/server/internal/grid"
)

func newAgent(s *State, owner string, pos geom.Vec2) ecs.EntityID {
	id := s.ECS.CreateEntity()
	s.Transforms.Set(id, &component.Transform{Pos: pos, PrevPos: pos})
	if owner != "" {
		s.Owners.Set(id, &component.Ownership{Owner: owner})
	}
	return id
}

func TestAdversaries(t *testing.T) {
	s := NewState(1)
	north := newAgent(s, "north", geom.Vec2{})
	north2 := newAgent(s, "north", geom.Vec2{X: 1})
	south := newAgent(s, "south", geom.Vec2{X: 2})
	untagged := newAgent(s, "", geom.Vec2{X: 3})

	cases := []struct {
		name string
		a, b ecs.EntityID
		want bool
	}{
		{"same owner", north, north2, false},
		{"different owners", north, south, true},
		{"untagged vs tagged", untagged, north, true},
		{"self", north, north, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := s.Adversaries(tc.a, tc.b); got != tc.want {
				t.Fatalf("Adversaries = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestOpponentsOfExcludesOwnSide(t *testing.T) {
	s := NewState(1)
	pursuer := newAgent(s, "south", geom.Vec2{})
	teammate := newAgent(s, "south", geom.Vec2{X: 1})
	enemy := newAgent(s, "north", geom.Vec2{X: 2})

	opps := s.OpponentsOf(pursuer)
	if len(opps) != 1 || opps[0] != enemy {
		t.Fatalf("OpponentsOf = %v, want only %v", opps, enemy)
	}
	_ = teammate
}

func TestOpponentsOfUntaggedFallsBackToDefault(t *testing.T) {
	s := NewState(1)
	pursuer := newAgent(s, "", geom.Vec2{})

	if opps := s.OpponentsOf(pursuer); opps != nil {
		t.Fatalf("no default opponent set, got %v", opps)
	}

	target := newAgent(s, "", geom.Vec2{X: 5})
	s.DefaultOpponent = target
	opps := s.OpponentsOf(pursuer)
	if len(opps) != 1 || opps[0] != target {
		t.Fatalf("OpponentsOf = %v, want default opponent %v", opps, target)
	}

	// A destroyed default opponent disappears from candidates.
	s.ECS.MarkForDestruction(target)
	s.ECS.FlushDestroyQueue()
	if opps := s.OpponentsOf(pursuer); opps != nil {
		t.Fatalf("dead default opponent still returned: %v", opps)
	}
}

func TestBlockLifecycle(t *testing.T) {
	s := NewState(1)
	c := grid.Cell{X: 4, Z: -2}

	if _, ok := s.BlockAt(c); ok {
		t.Fatal("no block expected yet")
	}
	id := s.CreateBlock(c)
	got, ok := s.BlockAt(c)
	if !ok || got != id {
		t.Fatalf("BlockAt = %v, %v; want %v, true", got, ok, id)
	}
}

func TestAliveOwnedByExcludesSpawners(t *testing.T) {
	s := NewState(1)
	newAgent(s, "south", geom.Vec2{})
	newAgent(s, "south", geom.Vec2{X: 1})

	spawner := newAgent(s, "south", geom.Vec2{X: 2})
	s.Spawners.Set(spawner, &component.Spawner{Archetype: "brute", Owner: "south"})

	if got := s.AliveOwnedBy("south"); got != 2 {
		t.Fatalf("AliveOwnedBy = %d, want 2", got)
	}
	if got := s.AliveOwnedBy("north"); got != 0 {
		t.Fatalf("AliveOwnedBy(north) = %d, want 0", got)
	}
}
