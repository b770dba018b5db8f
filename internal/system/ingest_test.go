package system

import (
	"testing"

	"go.uber.org/zap"

	"github.com/voxhunt/server/internal/component"
	"github.com/voxhunt/server/internal/core/ecs"
	"github.com/voxhunt/server/internal/core/event"
	"github.com/voxhunt/server/internal/debug"
	"github.com/voxhunt/server/internal/grid"
	"github.com/voxhunt/server/internal/world"
)

type stubCommands struct {
	queue []debug.Command
}

func (s *stubCommands) Drain() []debug.Command {
	out := s.queue
	s.queue = nil
	return out
}

func TestIngestPlacesAndRemovesBlocks(t *testing.T) {
	st := world.NewState(1)
	src := &stubCommands{}
	sys := NewIngestSystem(st, src, zap.NewNop())

	var edits []event.BlockEdited
	event.Subscribe(st.Bus, func(ev event.BlockEdited) { edits = append(edits, ev) })

	c := grid.Cell{X: 2, Z: 2}
	src.queue = []debug.Command{{Type: "place_block", Cell: c}}
	sys.Update(testTick)

	if _, ok := st.BlockAt(c); !ok {
		t.Fatal("block entity should exist after the place command")
	}

	// Duplicate placement is rejected.
	src.queue = []debug.Command{{Type: "place_block", Cell: c}}
	sys.Update(testTick)
	count := 0
	st.Obstacles.Each(func(ecs.EntityID, *component.Obstacle) { count++ })
	if count != 1 {
		t.Fatalf("duplicate placement created %d obstacles", count)
	}

	src.queue = []debug.Command{{Type: "remove_block", Cell: c}}
	sys.Update(testTick)
	st.ECS.FlushDestroyQueue()
	if _, ok := st.BlockAt(c); ok {
		t.Fatal("block entity should be gone after the remove command")
	}

	// Events surface on the following tick's dispatch.
	sys.Update(testTick)
	if len(edits) != 2 {
		t.Fatalf("got %d block edit events, want 2", len(edits))
	}
	if edits[0].Removed || !edits[1].Removed {
		t.Fatalf("edit flags wrong: %+v", edits)
	}
}

func TestIngestRejectsOccupiedCell(t *testing.T) {
	st := world.NewState(1)
	src := &stubCommands{}
	sys := NewIngestSystem(st, src, zap.NewNop())

	agent := st.ECS.CreateEntity()
	st.Transforms.Set(agent, &component.Transform{Pos: grid.CellToWorld(grid.Cell{X: 4, Z: 4})})
	st.Colliders.Set(agent, &component.Collider{Radius: 0.3})

	src.queue = []debug.Command{{Type: "place_block", Cell: grid.Cell{X: 4, Z: 4}}}
	sys.Update(testTick)

	if _, ok := st.BlockAt(grid.Cell{X: 4, Z: 4}); ok {
		t.Fatal("placement on top of an agent must be rejected")
	}
}
