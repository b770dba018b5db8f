package system

import (
	"time"

	"github.com/voxhunt/server/internal/component"
	"github.com/voxhunt/server/internal/config"
	"github.com/voxhunt/server/internal/core/ecs"
	"github.com/voxhunt/server/internal/core/event"
	coresys "github.com/voxhunt/server/internal/core/system"
	"github.com/voxhunt/server/internal/geom"
	"github.com/voxhunt/server/internal/grid"
	"github.com/voxhunt/server/internal/world"
)

const halfCell = 0.5

// CollisionSystem detects and resolves contacts after the movement phase.
// Agent-vs-block uses the 3x3 cell neighborhood around each agent;
// agent-vs-agent goes through a spatial hash rebuilt every tick so pair
// checks stay local instead of all-pairs.
//
// Response policy:
//   - block contact: hard revert, clear path, short wander wait. Always,
//     regardless of pursuit state.
//   - contact with the pursued opponent: caught. Revert only; pursuit logic
//     keeps owning the target.
//   - contact with an adversary while not pursuing it: same as a block hit.
//   - non-adversarial pair: separating nudge, and only past a penetration
//     threshold so shallow overlaps do not jitter.
//
// Phase 4 (Collision).
type CollisionSystem struct {
	state *world.State
	hash  *world.SpatialHash
	cfg   config.SimulationConfig
}

func NewCollisionSystem(st *world.State, cfg config.SimulationConfig) *CollisionSystem {
	return &CollisionSystem{
		state: st,
		hash:  world.NewSpatialHash(),
		cfg:   cfg,
	}
}

func (s *CollisionSystem) Phase() coresys.Phase { return coresys.PhaseCollision }

func (s *CollisionSystem) Update(_ time.Duration) {
	s.hash.Clear()
	ecs.Each2(s.state.Colliders, s.state.Transforms,
		func(id ecs.EntityID, _ *component.Collider, t *component.Transform) {
			s.hash.Insert(id, t.Pos)
		})

	ecs.Each2(s.state.Colliders, s.state.Transforms,
		func(id ecs.EntityID, col *component.Collider, t *component.Transform) {
			s.resolveBlocks(id, col, t)
		})

	ecs.Each2(s.state.Colliders, s.state.Transforms,
		func(id ecs.EntityID, col *component.Collider, t *component.Transform) {
			s.resolveAgents(id, col, t)
		})
}

// resolveBlocks checks the agent's circle against every blocked cell in the
// 3x3 neighborhood of the cell it stands in.
func (s *CollisionSystem) resolveBlocks(id ecs.EntityID, col *component.Collider, t *component.Transform) {
	center := grid.WorldToCell(t.Pos)
	for dz := -1; dz <= 1; dz++ {
		for dx := -1; dx <= 1; dx++ {
			c := grid.Cell{X: center.X + dx, Z: center.Z + dz}
			if !s.state.Grid.IsBlocked(c) {
				continue
			}
			if !circleIntersectsCell(t.Pos, col.Radius, c) {
				continue
			}
			s.hardRevert(id, t)
			event.Emit(s.state.Bus, event.ObstacleContact{Entity: id, Cell: c})
			return
		}
	}
}

// resolveAgents handles this agent's side of every overlapping pair. Each
// entity resolves its own response, so asymmetric policies (pursuer caught
// vs. pursued bumped) fall out naturally.
func (s *CollisionSystem) resolveAgents(id ecs.EntityID, col *component.Collider, t *component.Transform) {
	for _, other := range s.hash.Nearby(t.Pos) {
		if other == id {
			continue
		}
		ocol, ok := s.state.Colliders.Get(other)
		if !ok {
			continue
		}
		opos, ok := s.state.Position(other)
		if !ok {
			continue
		}
		pen := col.Radius + ocol.Radius - t.Pos.Dist(opos)
		if pen <= 0 {
			continue
		}

		if !s.state.Adversaries(id, other) {
			if pen > s.cfg.NudgeThreshold {
				s.nudgeApart(t, opos, pen)
			}
			continue
		}
		if s.isPursuing(id, other) {
			// Caught. Stop momentum but keep the path; the pursuit
			// machine still owns this entity's target.
			t.Pos = t.PrevPos
			continue
		}
		s.hardRevert(id, t)
	}
}

// isPursuing reports whether entity id is actively chasing target.
func (s *CollisionSystem) isPursuing(id, target ecs.EntityID) bool {
	seek, ok := s.state.Seeks.Get(id)
	if !ok {
		return false
	}
	if seek.State != component.SeekSeeking && seek.State != component.SeekAggressive {
		return false
	}
	return ecs.EntityID(seek.Opponent) == target
}

// hardRevert restores the pre-move position, drops the stale path, and
// delays the next wander pick.
func (s *CollisionSystem) hardRevert(id ecs.EntityID, t *component.Transform) {
	t.Pos = t.PrevPos
	if f, ok := s.state.Followers.Get(id); ok {
		f.ClearPath()
	}
	if w, ok := s.state.Wanders.Get(id); ok {
		w.Wait = wanderRetryWait
	}
}

// nudgeApart pushes this agent half the penetration depth away from the
// other position. The other agent resolves its own half.
func (s *CollisionSystem) nudgeApart(t *component.Transform, other geom.Vec2, pen float64) {
	away := t.Pos.Sub(other)
	if away.Len() < 1e-6 {
		// Exactly coincident; pick an arbitrary axis.
		away = geom.Vec2{X: 1}
	}
	t.Pos = t.Pos.Add(away.Norm().Scale(pen / 2))
}

// circleIntersectsCell tests a circle against the unit box of a cell by
// clamping the circle center onto the box.
func circleIntersectsCell(p geom.Vec2, radius float64, c grid.Cell) bool {
	cx := clamp(p.X, float64(c.X)-halfCell, float64(c.X)+halfCell)
	cz := clamp(p.Z, float64(c.Z)-halfCell, float64(c.Z)+halfCell)
	dx := p.X - cx
	dz := p.Z - cz
	return dx*dx+dz*dz < radius*radius
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
