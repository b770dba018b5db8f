package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/voxhunt/server/internal/component"
	"github.com/voxhunt/server/internal/core/ecs"
	"github.com/voxhunt/server/internal/core/event"
	coresys "github.com/voxhunt/server/internal/core/system"
	"github.com/voxhunt/server/internal/geom"
	"github.com/voxhunt/server/internal/grid"
	"github.com/voxhunt/server/internal/world"
)

// Step counting ignores the first path segments after a recalculation so
// the settling move onto the path does not burn budget.
const stepCountMinIndex = 2

// escapeRadiusFactor scales the detection radius into the give-up distance
// for aggressive pursuit.
const escapeRadiusFactor = 4

// PursuitSystem runs the four-state seek machine for every agent holding a
// Seek record. State writes happen here and nowhere else; every transition
// goes through transition() so the marker feed sees all of them.
// Phase 2 (Decision).
type PursuitSystem struct {
	state *world.State
	log   *zap.Logger
}

func NewPursuitSystem(st *world.State, log *zap.Logger) *PursuitSystem {
	return &PursuitSystem{state: st, log: log}
}

func (s *PursuitSystem) Phase() coresys.Phase { return coresys.PhaseDecision }

func (s *PursuitSystem) Update(dt time.Duration) {
	step := dt.Seconds()
	ecs.Each3(s.state.Seeks, s.state.Followers, s.state.Transforms,
		func(id ecs.EntityID, seek *component.Seek, f *component.PathFollower, t *component.Transform) {
			switch seek.State {
			case component.SeekIdle:
				s.tickIdle(id, seek, f, t)
			case component.SeekSeeking:
				s.tickSeeking(id, seek, f, t)
			case component.SeekCooldown:
				s.tickCooldown(id, seek, step)
			case component.SeekAggressive:
				s.tickAggressive(id, seek, f, t, step)
			}
		})
}

// tickIdle scans for the nearest valid opponent within the detection
// radius and opens a pursuit when one is found.
func (s *PursuitSystem) tickIdle(id ecs.EntityID, seek *component.Seek, f *component.PathFollower, t *component.Transform) {
	opp, oppCell, ok := s.nearestOpponent(id, t, seek.DetectionRadius)
	if !ok {
		return
	}
	seek.Opponent = uint64(opp)
	seek.LastOpponentCell = oppCell
	seek.StepsLeft = seek.StepBudget
	seek.PrevWaypoint = -1
	f.Retarget(grid.CellToWorld(oppCell))
	s.transition(id, seek, component.SeekSeeking)
}

// tickSeeking chases the opponent's current cell and spends the step
// budget. Budget exhaustion bumps the aggravation counter and either
// escalates to aggressive pursuit or drops into cooldown.
func (s *PursuitSystem) tickSeeking(id ecs.EntityID, seek *component.Seek, f *component.PathFollower, t *component.Transform) {
	opp := ecs.EntityID(seek.Opponent)
	oppPos, alive := s.state.Position(opp)
	if !alive || !s.state.ECS.Alive(opp) {
		// Opponent gone mid-chase. Back off without touching the
		// aggravation counter, which only moves on budget exhaustion
		// and aggressive-pursuit exit.
		s.dropPursuit(id, seek, f)
		return
	}

	// Count a step when the follower advanced exactly one waypoint past
	// the settling segments.
	if f.Index == seek.PrevWaypoint+1 && f.Index >= stepCountMinIndex {
		seek.StepsLeft--
	}
	seek.PrevWaypoint = f.Index

	if seek.StepsLeft <= 0 {
		seek.Aggravation++
		if seek.Aggravation >= seek.AggroThreshold {
			seek.RageLeft = seek.RageDuration
			seek.PrevWaypoint = -1
			dest := grid.WorldToCell(s.aggressiveTarget(opp, oppPos))
			seek.LastOpponentCell = dest
			f.Retarget(grid.CellToWorld(dest))
			s.transition(id, seek, component.SeekAggressive)
			s.log.Debug("pursuit escalated",
				zap.Uint64("entity", uint64(id)),
				zap.Int("aggravation", seek.Aggravation))
			return
		}
		s.dropPursuit(id, seek, f)
		return
	}

	oppCell := grid.WorldToCell(oppPos)
	if oppCell != seek.LastOpponentCell {
		seek.LastOpponentCell = oppCell
		f.Retarget(grid.CellToWorld(oppCell))
		return
	}
	// A collision revert can leave the follower idle with the opponent
	// cell unchanged; re-arm it so the chase cannot stall.
	if f.Idle() {
		f.Retarget(grid.CellToWorld(oppCell))
	}
}

func (s *PursuitSystem) tickCooldown(id ecs.EntityID, seek *component.Seek, step float64) {
	seek.CooldownLeft -= step
	if seek.CooldownLeft <= 0 {
		seek.CooldownLeft = 0
		s.transition(id, seek, component.SeekIdle)
	}
}

// tickAggressive targets the opponent's intended destination instead of its
// current position. Every exit path resets the aggravation counter.
func (s *PursuitSystem) tickAggressive(id ecs.EntityID, seek *component.Seek, f *component.PathFollower, t *component.Transform, step float64) {
	seek.RageLeft -= step

	opp := ecs.EntityID(seek.Opponent)
	oppPos, alive := s.state.Position(opp)
	if !alive || !s.state.ECS.Alive(opp) {
		s.endAggressive(id, seek, f)
		return
	}
	oppCell := grid.WorldToCell(oppPos)
	myCell := grid.WorldToCell(t.Pos)
	if myCell.Manhattan(oppCell) > escapeRadiusFactor*seek.DetectionRadius {
		s.log.Debug("opponent escaped",
			zap.Uint64("entity", uint64(id)),
			zap.Uint64("opponent", seek.Opponent))
		s.endAggressive(id, seek, f)
		return
	}
	if seek.RageLeft <= 0 {
		s.endAggressive(id, seek, f)
		return
	}

	dest := s.aggressiveTarget(opp, oppPos)
	destCell := grid.WorldToCell(dest)
	if destCell != seek.LastOpponentCell {
		seek.LastOpponentCell = destCell
		f.Retarget(grid.CellToWorld(destCell))
		return
	}
	if f.Idle() {
		f.Retarget(grid.CellToWorld(destCell))
	}
}

// aggressiveTarget is the opponent's intended destination: its follower's
// target when it has one, its current position otherwise.
func (s *PursuitSystem) aggressiveTarget(opp ecs.EntityID, oppPos geom.Vec2) geom.Vec2 {
	if of, ok := s.state.Followers.Get(opp); ok && !of.Idle() {
		return of.Target
	}
	return oppPos
}

// dropPursuit moves a seeking agent into cooldown without touching the
// aggravation counter.
func (s *PursuitSystem) dropPursuit(id ecs.EntityID, seek *component.Seek, f *component.PathFollower) {
	seek.Opponent = 0
	seek.CooldownLeft = seek.CooldownDuration
	f.ClearPath()
	s.liftWanderSuppression(id)
	s.transition(id, seek, component.SeekCooldown)
}

// endAggressive closes an aggressive pursuit; this is the only place the
// aggravation counter resets.
func (s *PursuitSystem) endAggressive(id ecs.EntityID, seek *component.Seek, f *component.PathFollower) {
	seek.Aggravation = 0
	s.dropPursuit(id, seek, f)
}

// liftWanderSuppression gives the wander record a short wait so the agent
// resumes wandering promptly after a pursuit ends.
func (s *PursuitSystem) liftWanderSuppression(id ecs.EntityID) {
	if w, ok := s.state.Wanders.Get(id); ok {
		w.Wait = wanderRetryWait
	}
}

// nearestOpponent returns the closest valid opponent within radius cells,
// by cell Manhattan distance.
func (s *PursuitSystem) nearestOpponent(id ecs.EntityID, t *component.Transform, radius int) (ecs.EntityID, grid.Cell, bool) {
	myCell := grid.WorldToCell(t.Pos)
	var (
		best     ecs.EntityID
		bestCell grid.Cell
		bestDist = radius + 1
	)
	for _, cand := range s.state.OpponentsOf(id) {
		pos, ok := s.state.Position(cand)
		if !ok {
			continue
		}
		c := grid.WorldToCell(pos)
		if d := myCell.Manhattan(c); d < bestDist {
			best, bestCell, bestDist = cand, c, d
		}
	}
	if best.IsZero() {
		return 0, grid.Cell{}, false
	}
	return best, bestCell, true
}

func (s *PursuitSystem) transition(id ecs.EntityID, seek *component.Seek, to component.SeekState) {
	from := seek.State
	seek.State = to
	event.Emit(s.state.Bus, event.PursuitStateChanged{Entity: id, From: from, To: to})
}
