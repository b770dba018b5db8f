package system

import (
	"time"

	"github.com/voxhunt/server/internal/component"
	"github.com/voxhunt/server/internal/core/ecs"
	coresys "github.com/voxhunt/server/internal/core/system"
	"github.com/voxhunt/server/internal/grid"
	"github.com/voxhunt/server/internal/world"
)

const (
	wanderPickAttempts = 20
	wanderRetryWait    = 0.5 // seconds before the next pick in a cramped area
)

// WanderSystem hands idle agents random destinations around their origin.
// It never touches an agent that is seeking or in aggressive pursuit;
// the pursuit machine owns the follower target in those states.
// Phase 2 (Decision).
type WanderSystem struct {
	state *world.State
}

func NewWanderSystem(st *world.State) *WanderSystem {
	return &WanderSystem{state: st}
}

func (s *WanderSystem) Phase() coresys.Phase { return coresys.PhaseDecision }

func (s *WanderSystem) Update(dt time.Duration) {
	step := dt.Seconds()
	ecs.Each3(s.state.Wanders, s.state.Followers, s.state.Transforms,
		func(id ecs.EntityID, w *component.Wander, f *component.PathFollower, t *component.Transform) {
			if seek, ok := s.state.Seeks.Get(id); ok {
				if seek.State == component.SeekSeeking || seek.State == component.SeekAggressive {
					return
				}
			}
			if w.Wait > 0 {
				w.Wait -= step
				return
			}
			if !f.Idle() {
				return
			}
			dest, ok := s.pickDestination(id, w)
			if !ok {
				w.Wait = wanderRetryWait
				return
			}
			f.Retarget(grid.CellToWorld(dest))
		})
}

// pickDestination samples random cells within the wander radius of the
// origin, rejecting blocked cells and cells occupied by a tracked
// adversary. Bounded attempts keep a fully walled-in agent from spinning
// inside a single tick.
func (s *WanderSystem) pickDestination(id ecs.EntityID, w *component.Wander) (grid.Cell, bool) {
	oppCells := s.state.OpponentCells(id)
	r := int(w.Radius)
	if r < 1 {
		r = 1
	}
	origin := grid.WorldToCell(w.Origin)
	for attempt := 0; attempt < wanderPickAttempts; attempt++ {
		c := grid.Cell{
			X: origin.X + s.state.Rand.Intn(2*r+1) - r,
			Z: origin.Z + s.state.Rand.Intn(2*r+1) - r,
		}
		if s.state.Grid.IsBlocked(c) {
			continue
		}
		if occupiedByOpponent(c, oppCells) {
			continue
		}
		return c, true
	}
	return grid.Cell{}, false
}

func occupiedByOpponent(c grid.Cell, opponents []grid.Cell) bool {
	for _, o := range opponents {
		if o == c {
			return true
		}
	}
	return false
}
