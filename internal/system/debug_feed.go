package system

import (
	"time"

	"github.com/voxhunt/server/internal/component"
	"github.com/voxhunt/server/internal/core/ecs"
	coresys "github.com/voxhunt/server/internal/core/system"
	"github.com/voxhunt/server/internal/debug"
	"github.com/voxhunt/server/internal/geom"
	"github.com/voxhunt/server/internal/grid"
	"github.com/voxhunt/server/internal/world"
)

// DebugFeedSystem pushes the per-tick observable state (positions, facing,
// markers, nearby cell statuses) to the debug websocket feed.
// Phase 5 (Output).
type DebugFeedSystem struct {
	state  *world.State
	server *debug.Server
	tick   uint64
}

func NewDebugFeedSystem(st *world.State, server *debug.Server) *DebugFeedSystem {
	return &DebugFeedSystem{state: st, server: server}
}

func (s *DebugFeedSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *DebugFeedSystem) Update(_ time.Duration) {
	s.tick++

	entities := make([]debug.EntitySnapshot, 0, s.state.Appearances.Len())
	ecs.Each2(s.state.Appearances, s.state.Transforms,
		func(id ecs.EntityID, app *component.Appearance, t *component.Transform) {
			entities = append(entities, debug.EntitySnapshot{
				ID:        uint64(id),
				X:         t.Pos.X,
				Z:         t.Pos.Z,
				Facing:    t.Facing,
				Marker:    markerName(app.Marker),
				Archetype: app.Archetype,
			})
		})

	s.server.Broadcast(s.tick, entities, func(center geom.Vec2, radius int) []grid.CellStatus {
		return s.state.Grid.StatusAround(center, radius)
	})
}

func markerName(m component.Marker) string {
	switch m {
	case component.MarkerAlert:
		return "alert"
	case component.MarkerEnraged:
		return "enraged"
	}
	return "calm"
}
