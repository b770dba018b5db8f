package system

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/voxhunt/server/internal/core/event"
	"github.com/voxhunt/server/internal/grid"
	"github.com/voxhunt/server/internal/world"
)

func TestPersistencePicksUpEditsOnBusDrain(t *testing.T) {
	st := world.NewState(1)
	sys := NewPersistenceSystem(st, nil, zap.NewNop(), time.Minute)

	event.Emit(st.Bus, event.BlockEdited{Cell: grid.Cell{X: 3, Z: 4}})
	event.Emit(st.Bus, event.BlockEdited{Cell: grid.Cell{X: 3, Z: 4}, Removed: true})

	// Events stay in the back buffer until the bus is drained.
	if len(sys.pending) != 0 {
		t.Fatalf("pending = %d before dispatch, want 0", len(sys.pending))
	}

	// The shutdown path drains the bus before the final flush so edits from
	// the last tick are not dropped.
	st.Bus.SwapBuffers()
	st.Bus.DispatchAll()

	if len(sys.pending) != 2 {
		t.Fatalf("pending = %d after dispatch, want 2", len(sys.pending))
	}
	if got := sys.pending[0].Cell; got != (grid.Cell{X: 3, Z: 4}) {
		t.Fatalf("first pending edit cell = %v", got)
	}
	if !sys.pending[1].Removed {
		t.Fatal("second pending edit should be a removal")
	}
}

func TestPersistenceHoldsUntilInterval(t *testing.T) {
	st := world.NewState(1)
	sys := NewPersistenceSystem(st, nil, zap.NewNop(), time.Minute)

	event.Emit(st.Bus, event.BlockEdited{Cell: grid.Cell{X: 1, Z: 1}})
	st.Bus.SwapBuffers()
	st.Bus.DispatchAll()

	// Short of the save interval nothing is written; the edit stays queued.
	sys.Update(time.Second)
	if len(sys.pending) != 1 {
		t.Fatalf("pending = %d after a sub-interval update, want 1", len(sys.pending))
	}
}
