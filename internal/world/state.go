package world

import (
	"math/rand"

	"github.com/voxhunt/server/internal/component"
	"github.com/voxhunt/server/internal/core/ecs"
	"github.com/voxhunt/server/internal/core/event"
	"github.com/voxhunt/server/internal/geom"
	"github.com/voxhunt/server/internal/grid"
)

// State is the shared simulation state handed to every system: the entity
// world, one typed store per component, the blocked-cell grid, and the
// outbound event bus. Accessed only from the simulation goroutine.
type State struct {
	ECS  *ecs.World
	Bus  *event.Bus
	Grid *grid.Grid
	Rand *rand.Rand

	Transforms  *ecs.Store[component.Transform]
	Obstacles   *ecs.Store[component.Obstacle]
	Followers   *ecs.Store[component.PathFollower]
	Wanders     *ecs.Store[component.Wander]
	Seeks       *ecs.Store[component.Seek]
	Owners      *ecs.Store[component.Ownership]
	Colliders   *ecs.Store[component.Collider]
	Appearances *ecs.Store[component.Appearance]
	Spawners    *ecs.Store[component.Spawner]

	// DefaultOpponent is the fallback pursuit target for deployments with
	// no ownership tagging in play. Zero when unset.
	DefaultOpponent ecs.EntityID
}

func NewState(seed int64) *State {
	w := ecs.NewWorld()
	s := &State{
		ECS:  w,
		Bus:  event.NewBus(),
		Grid: grid.New(),
		Rand: rand.New(rand.NewSource(seed)),

		Transforms:  ecs.NewStore[component.Transform](),
		Obstacles:   ecs.NewStore[component.Obstacle](),
		Followers:   ecs.NewStore[component.PathFollower](),
		Wanders:     ecs.NewStore[component.Wander](),
		Seeks:       ecs.NewStore[component.Seek](),
		Owners:      ecs.NewStore[component.Ownership](),
		Colliders:   ecs.NewStore[component.Collider](),
		Appearances: ecs.NewStore[component.Appearance](),
		Spawners:    ecs.NewStore[component.Spawner](),
	}
	w.RegisterStore(s.Transforms)
	w.RegisterStore(s.Obstacles)
	w.RegisterStore(s.Followers)
	w.RegisterStore(s.Wanders)
	w.RegisterStore(s.Seeks)
	w.RegisterStore(s.Owners)
	w.RegisterStore(s.Colliders)
	w.RegisterStore(s.Appearances)
	w.RegisterStore(s.Spawners)
	return s
}

// CreateBlock creates a static obstacle entity occupying the given cell.
// The obstacle synchronizer picks it up on the next sync phase.
func (s *State) CreateBlock(c grid.Cell) ecs.EntityID {
	id := s.ECS.CreateEntity()
	s.Transforms.Set(id, &component.Transform{Pos: grid.CellToWorld(c)})
	s.Obstacles.Set(id, &component.Obstacle{})
	return id
}

// BlockAt returns the obstacle entity occupying the given cell, if any.
func (s *State) BlockAt(c grid.Cell) (ecs.EntityID, bool) {
	var found ecs.EntityID
	ok := false
	ecs.Each2(s.Obstacles, s.Transforms, func(id ecs.EntityID, _ *component.Obstacle, t *component.Transform) {
		if !ok && grid.WorldToCell(t.Pos) == c {
			found = id
			ok = true
		}
	})
	return found, ok
}

// Owner returns the owner tag of an entity, or "" when untagged.
func (s *State) Owner(id ecs.EntityID) string {
	if o, ok := s.Owners.Get(id); ok {
		return o.Owner
	}
	return ""
}

// Adversaries reports whether two entities belong to different owners.
// Untagged entities are adversarial to everything except themselves, which
// matches the single-default-opponent fallback.
func (s *State) Adversaries(a, b ecs.EntityID) bool {
	if a == b {
		return false
	}
	oa, aok := s.Owners.Get(a)
	ob, bok := s.Owners.Get(b)
	if aok && bok {
		return oa.Owner != ob.Owner
	}
	return true
}

// OpponentCells returns the current cells of every candidate opponent of
// the given entity. Used by wander to avoid picking a destination on top of
// a tracked adversary.
func (s *State) OpponentCells(id ecs.EntityID) []grid.Cell {
	var cells []grid.Cell
	for _, opp := range s.OpponentsOf(id) {
		if t, ok := s.Transforms.Get(opp); ok {
			cells = append(cells, grid.WorldToCell(t.Pos))
		}
	}
	return cells
}

// OpponentsOf lists valid pursuit candidates for an entity: every owned
// agent not sharing its owner, or the default opponent when the entity
// carries no ownership tag.
func (s *State) OpponentsOf(id ecs.EntityID) []ecs.EntityID {
	owner, tagged := s.Owners.Get(id)
	if !tagged {
		if !s.DefaultOpponent.IsZero() && s.ECS.Alive(s.DefaultOpponent) {
			return []ecs.EntityID{s.DefaultOpponent}
		}
		return nil
	}
	var out []ecs.EntityID
	ecs.Each2(s.Owners, s.Transforms, func(cand ecs.EntityID, o *component.Ownership, _ *component.Transform) {
		if cand == id || o.Owner == owner.Owner {
			return
		}
		out = append(out, cand)
	})
	return out
}

// AliveOwnedBy counts live agents carrying the given owner tag, excluding
// spawner entities themselves. Used by spawner caps.
func (s *State) AliveOwnedBy(owner string) int {
	n := 0
	s.Owners.Each(func(id ecs.EntityID, o *component.Ownership) {
		if o.Owner == owner && !s.Spawners.Has(id) && s.ECS.Alive(id) {
			n++
		}
	})
	return n
}

// Position is a convenience accessor for an entity's current position.
func (s *State) Position(id ecs.EntityID) (geom.Vec2, bool) {
	t, ok := s.Transforms.Get(id)
	if !ok {
		return geom.Vec2{}, false
	}
	return t.Pos, true
}
