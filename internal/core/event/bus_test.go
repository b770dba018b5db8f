package event

import (
	"testing"

	"github.com/voxhunt/server/internal/component"
	"github.com/voxhunt/server/internal/core/ecs"
	"github.com/voxhunt/server/internal/grid"
)

func TestEventsDeferredUntilSwap(t *testing.T) {
	b := NewBus()
	var got []PursuitStateChanged
	Subscribe(b, func(ev PursuitStateChanged) { got = append(got, ev) })

	Emit(b, PursuitStateChanged{Entity: ecs.NewEntityID(1, 0)})

	b.DispatchAll()
	if len(got) != 0 {
		t.Fatalf("event delivered before swap: %v", got)
	}

	b.SwapBuffers()
	b.DispatchAll()
	if len(got) != 1 {
		t.Fatalf("got %d events after swap, want 1", len(got))
	}

	// A second swap clears the delivered batch instead of redelivering it.
	b.SwapBuffers()
	b.DispatchAll()
	if len(got) != 1 {
		t.Fatalf("event redelivered, total %d", len(got))
	}
}

func TestDispatchRoutesByType(t *testing.T) {
	b := NewBus()
	var pursuits, edits int
	Subscribe(b, func(PursuitStateChanged) { pursuits++ })
	Subscribe(b, func(BlockEdited) { edits++ })

	Emit(b, PursuitStateChanged{From: component.SeekIdle, To: component.SeekSeeking})
	Emit(b, BlockEdited{Cell: grid.Cell{X: 1, Z: 2}})
	Emit(b, BlockEdited{Cell: grid.Cell{X: 3, Z: 4}, Removed: true})

	b.SwapBuffers()
	b.DispatchAll()

	if pursuits != 1 || edits != 2 {
		t.Fatalf("pursuits = %d, edits = %d; want 1 and 2", pursuits, edits)
	}
}

func TestMultipleHandlersPerType(t *testing.T) {
	b := NewBus()
	calls := 0
	Subscribe(b, func(ObstacleContact) { calls++ })
	Subscribe(b, func(ObstacleContact) { calls++ })

	Emit(b, ObstacleContact{Cell: grid.Cell{X: 5, Z: 5}})
	b.SwapBuffers()
	b.DispatchAll()

	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
}
