package system

import (
	"time"

	"github.com/voxhunt/server/internal/component"
	"github.com/voxhunt/server/internal/config"
	"github.com/voxhunt/server/internal/core/ecs"
	coresys "github.com/voxhunt/server/internal/core/system"
	"github.com/voxhunt/server/internal/grid"
	"github.com/voxhunt/server/internal/nav"
	"github.com/voxhunt/server/internal/world"
)

// MovementSystem is the path follower / movement executor. It services
// pending plan requests through the planner and advances every entity along
// its path, waypoint by waypoint, with arrival snapping and facing updates.
//
// A failed plan arms a retry cooldown rather than erroring: reachability
// changes as blocks are placed and removed, so an unreachable target polls
// at the cooldown rate until the AI layer picks a different one.
// Phase 3 (Movement).
type MovementSystem struct {
	state   *world.State
	planner *nav.Planner
	cfg     config.SimulationConfig
}

func NewMovementSystem(st *world.State, planner *nav.Planner, cfg config.SimulationConfig) *MovementSystem {
	return &MovementSystem{state: st, planner: planner, cfg: cfg}
}

func (s *MovementSystem) Phase() coresys.Phase { return coresys.PhaseMovement }

func (s *MovementSystem) Update(dt time.Duration) {
	step := dt.Seconds()
	ecs.Each2(s.state.Followers, s.state.Transforms,
		func(id ecs.EntityID, f *component.PathFollower, t *component.Transform) {
			s.tickFollower(f, t, step)
		})
}

func (s *MovementSystem) tickFollower(f *component.PathFollower, t *component.Transform, dt float64) {
	// Pre-move position is what collision response reverts to.
	t.PrevPos = t.Pos

	if f.RetryCooldown > 0 {
		f.RetryCooldown -= dt
	}

	if f.NeedsPath && f.RetryCooldown <= 0 {
		start := grid.WorldToCell(t.Pos)
		goal := grid.WorldToCell(f.Target)
		path, ok := s.planner.FindPath(start, goal, s.cfg.PlannerBudget)
		if ok {
			f.Path = path
			f.Index = 0
		} else {
			f.RetryCooldown = s.cfg.RetryCooldown
		}
		f.NeedsPath = false
	}

	if f.Index < 0 || f.Index >= len(f.Path) {
		return
	}

	waypoint := grid.CellToWorld(f.Path[f.Index])
	delta := waypoint.Sub(t.Pos)
	dist := delta.Len()

	if dist <= s.cfg.ArrivalThreshold {
		// Snap exactly onto the waypoint center before advancing.
		t.Pos = waypoint
		f.Index++
		if f.Index >= len(f.Path) {
			f.Path = nil
			f.Index = -1
		}
		return
	}

	// Clamp to the remaining distance so a large dt never overshoots.
	stepLen := f.Speed * dt
	if stepLen > dist {
		stepLen = dist
	}
	move := delta.Scale(stepLen / dist)
	t.Pos = t.Pos.Add(move)

	if move.Len() > 1e-6 {
		t.Facing = move.Angle()
	}
}
