package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/voxhunt/server/internal/component"
	"github.com/voxhunt/server/internal/core/ecs"
	coresys "github.com/voxhunt/server/internal/core/system"
	"github.com/voxhunt/server/internal/data"
	"github.com/voxhunt/server/internal/geom"
	"github.com/voxhunt/server/internal/grid"
	"github.com/voxhunt/server/internal/scripting"
	"github.com/voxhunt/server/internal/world"
)

// SpawnerSystem emits agents from spawner entities on their cadence, capped
// by the number of the owner's agents currently alive.
// Phase 2 (Decision).
type SpawnerSystem struct {
	state      *world.State
	archetypes *data.ArchetypeTable
	engine     *scripting.Engine
	log        *zap.Logger
}

func NewSpawnerSystem(st *world.State, archetypes *data.ArchetypeTable, engine *scripting.Engine, log *zap.Logger) *SpawnerSystem {
	return &SpawnerSystem{state: st, archetypes: archetypes, engine: engine, log: log}
}

func (s *SpawnerSystem) Phase() coresys.Phase { return coresys.PhaseDecision }

func (s *SpawnerSystem) Update(dt time.Duration) {
	step := dt.Seconds()
	ecs.Each2(s.state.Spawners, s.state.Transforms,
		func(id ecs.EntityID, sp *component.Spawner, t *component.Transform) {
			sp.Accumulator += step
			if sp.Accumulator < sp.Interval {
				return
			}
			sp.Accumulator -= sp.Interval

			if sp.MaxAlive > 0 && s.state.AliveOwnedBy(sp.Owner) >= sp.MaxAlive {
				return
			}
			arch := s.archetypes.Get(sp.Archetype)
			if arch == nil {
				s.log.Warn("spawner references unknown archetype",
					zap.String("archetype", sp.Archetype))
				return
			}
			cell, ok := s.freeCellNear(grid.WorldToCell(t.Pos))
			if !ok {
				return // crowded, try again next interval
			}
			tuned := *arch
			if s.engine != nil {
				tuned = s.engine.AgentTuning(tuned)
			}
			spawned := SpawnAgent(s.state, tuned, sp.Owner, grid.CellToWorld(cell))
			s.log.Debug("agent spawned",
				zap.Uint64("entity", uint64(spawned)),
				zap.String("archetype", tuned.Name),
				zap.String("owner", sp.Owner))
		})
}

// freeCellNear spiral-searches radius 1 to 3 around a cell for the first
// unblocked, unoccupied cell.
func (s *SpawnerSystem) freeCellNear(origin grid.Cell) (grid.Cell, bool) {
	occupied := make(map[grid.Cell]struct{})
	ecs.Each2(s.state.Colliders, s.state.Transforms,
		func(_ ecs.EntityID, _ *component.Collider, t *component.Transform) {
			occupied[grid.WorldToCell(t.Pos)] = struct{}{}
		})
	for r := 1; r <= 3; r++ {
		for dx := -r; dx <= r; dx++ {
			for dz := -r; dz <= r; dz++ {
				c := grid.Cell{X: origin.X + dx, Z: origin.Z + dz}
				if s.state.Grid.IsBlocked(c) {
					continue
				}
				if _, taken := occupied[c]; taken {
					continue
				}
				return c, true
			}
		}
	}
	return grid.Cell{}, false
}

// SpawnAgent creates a fully wired agent entity from archetype tuning.
// Shared by the spawner system and scenario loading at boot.
func SpawnAgent(st *world.State, arch data.Archetype, owner string, pos geom.Vec2) ecs.EntityID {
	id := st.ECS.CreateEntity()
	st.Transforms.Set(id, &component.Transform{Pos: pos, PrevPos: pos})
	st.Followers.Set(id, &component.PathFollower{
		Index: -1,
		Speed: arch.Speed,
	})
	st.Wanders.Set(id, &component.Wander{
		Origin: pos,
		Radius: arch.WanderRadius,
	})
	st.Colliders.Set(id, &component.Collider{Radius: arch.ColliderRadius})
	st.Appearances.Set(id, &component.Appearance{
		Archetype: arch.Name,
		Marker:    component.MarkerCalm,
	})
	if owner != "" {
		st.Owners.Set(id, &component.Ownership{Owner: owner})
	}
	if arch.Pursues {
		st.Seeks.Set(id, &component.Seek{
			State:            component.SeekIdle,
			DetectionRadius:  arch.DetectionRadius,
			StepBudget:       arch.StepBudget,
			AggroThreshold:   arch.AggroThreshold,
			CooldownDuration: arch.CooldownSeconds,
			RageDuration:     arch.RageSeconds,
			PrevWaypoint:     -1,
		})
	}
	return id
}
