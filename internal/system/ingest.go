package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/voxhunt/server/internal/component"
	"github.com/voxhunt/server/internal/core/ecs"
	"github.com/voxhunt/server/internal/core/event"
	coresys "github.com/voxhunt/server/internal/core/system"
	"github.com/voxhunt/server/internal/debug"
	"github.com/voxhunt/server/internal/grid"
	"github.com/voxhunt/server/internal/world"
)

// CommandSource yields externally submitted block edits once per tick.
type CommandSource interface {
	Drain() []debug.Command
}

// IngestSystem opens each tick: it rotates the event bus so last tick's
// events reach their handlers, then applies external block placement
// commands so the obstacle synchronizer sees the edits this same tick.
// Phase 0 (Ingest).
type IngestSystem struct {
	state  *world.State
	source CommandSource
	log    *zap.Logger
}

func NewIngestSystem(st *world.State, source CommandSource, log *zap.Logger) *IngestSystem {
	return &IngestSystem{state: st, source: source, log: log}
}

func (s *IngestSystem) Phase() coresys.Phase { return coresys.PhaseIngest }

func (s *IngestSystem) Update(_ time.Duration) {
	s.state.Bus.SwapBuffers()
	s.state.Bus.DispatchAll()

	if s.source == nil {
		return
	}
	for _, cmd := range s.source.Drain() {
		switch cmd.Type {
		case "place_block":
			s.placeBlock(cmd.Cell)
		case "remove_block":
			s.removeBlock(cmd.Cell)
		}
	}
}

// placeBlock creates a block entity unless the cell already holds one or an
// agent is standing in it. Placement validation lives here so the
// simulation core never sees a block spawned on top of an entity.
func (s *IngestSystem) placeBlock(c grid.Cell) {
	if _, exists := s.state.BlockAt(c); exists {
		return
	}
	if s.cellOccupiedByAgent(c) {
		s.log.Debug("block placement rejected, cell occupied",
			zap.Int("x", c.X), zap.Int("z", c.Z))
		return
	}
	s.state.CreateBlock(c)
	event.Emit(s.state.Bus, event.BlockEdited{Cell: c})
	s.log.Debug("block placed", zap.Int("x", c.X), zap.Int("z", c.Z))
}

func (s *IngestSystem) removeBlock(c grid.Cell) {
	id, ok := s.state.BlockAt(c)
	if !ok {
		return
	}
	s.state.ECS.MarkForDestruction(id)
	event.Emit(s.state.Bus, event.BlockEdited{Cell: c, Removed: true})
	s.log.Debug("block removed", zap.Int("x", c.X), zap.Int("z", c.Z))
}

func (s *IngestSystem) cellOccupiedByAgent(c grid.Cell) bool {
	occupied := false
	ecs.Each2(s.state.Colliders, s.state.Transforms,
		func(_ ecs.EntityID, _ *component.Collider, t *component.Transform) {
			if grid.WorldToCell(t.Pos) == c {
				occupied = true
			}
		})
	return occupied
}
