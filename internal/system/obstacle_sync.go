package system

import (
	"time"

	"github.com/voxhunt/server/internal/component"
	"github.com/voxhunt/server/internal/core/ecs"
	coresys "github.com/voxhunt/server/internal/core/system"
	"github.com/voxhunt/server/internal/grid"
	"github.com/voxhunt/server/internal/world"
)

// ObstacleSyncSystem reconciles the blocked-cell grid with the set of
// entities currently carrying the obstacle capability. It keeps exactly one
// registered cell per obstacle: a moved obstacle frees its old cell and
// blocks the new one, a vanished obstacle frees its cell.
//
// Freeing never checks whether another obstacle still occupies the cell.
// Placement rejects occupied cells, so unit-cell blocks cannot overlap by
// construction and a per-cell refcount would never exceed one.
// Runs in the sync phase, before any planning reads the grid this tick.
type ObstacleSyncSystem struct {
	state      *world.State
	registered map[ecs.EntityID]grid.Cell
}

func NewObstacleSyncSystem(st *world.State) *ObstacleSyncSystem {
	return &ObstacleSyncSystem{
		state:      st,
		registered: make(map[ecs.EntityID]grid.Cell, 256),
	}
}

func (s *ObstacleSyncSystem) Phase() coresys.Phase { return coresys.PhaseSync }

func (s *ObstacleSyncSystem) Update(_ time.Duration) {
	g := s.state.Grid

	seen := make(map[ecs.EntityID]struct{}, len(s.registered))
	ecs.Each2(s.state.Obstacles, s.state.Transforms,
		func(id ecs.EntityID, _ *component.Obstacle, t *component.Transform) {
			seen[id] = struct{}{}
			cell := grid.WorldToCell(t.Pos)
			prev, ok := s.registered[id]
			if ok && prev == cell {
				return // unchanged, skip grid writes
			}
			if ok {
				g.SetWalkable(prev)
			}
			g.SetBlocked(cell)
			s.registered[id] = cell
		})

	// Obstacles destroyed or stripped of the capability since last tick.
	for id, cell := range s.registered {
		if _, ok := seen[id]; ok {
			continue
		}
		g.SetWalkable(cell)
		delete(s.registered, id)
	}
}
