package system

import (
	"math"
	"testing"

	"github.com/voxhunt/server/internal/component"
	"github.com/voxhunt/server/internal/config"
	"github.com/voxhunt/server/internal/core/ecs"
	"github.com/voxhunt/server/internal/geom"
	"github.com/voxhunt/server/internal/grid"
	"github.com/voxhunt/server/internal/nav"
	"github.com/voxhunt/server/internal/world"
)

func testSimConfig() config.SimulationConfig {
	return config.Default().Simulation
}

func newMovementFixture(t *testing.T) (*world.State, *MovementSystem, ecs.EntityID) {
	t.Helper()
	st := world.NewState(1)
	sys := NewMovementSystem(st, nav.NewPlanner(st.Grid), testSimConfig())

	id := st.ECS.CreateEntity()
	st.Transforms.Set(id, &component.Transform{})
	st.Followers.Set(id, &component.PathFollower{Index: -1, Speed: 2.0})
	return st, sys, id
}

func TestMovementPlansOnRequest(t *testing.T) {
	st, sys, id := newMovementFixture(t)
	f, _ := st.Followers.Get(id)
	f.Retarget(geom.Vec2{X: 3, Z: 0})

	sys.Update(testTick)

	if f.NeedsPath {
		t.Fatal("request flag should be consumed")
	}
	if f.Index < 0 || len(f.Path) == 0 {
		t.Fatal("expected an active path")
	}
	if last := f.Path[len(f.Path)-1]; last != (grid.Cell{X: 3, Z: 0}) {
		t.Fatalf("path ends at %v, want (3,0)", last)
	}
}

func TestMovementNeverOvershoots(t *testing.T) {
	st, sys, id := newMovementFixture(t)
	f, _ := st.Followers.Get(id)
	tr, _ := st.Transforms.Get(id)
	f.Retarget(geom.Vec2{X: 1, Z: 0})

	// Run until arrival; the position must never pass a waypoint.
	for i := 0; i < 200 && !f.Idle(); i++ {
		prevX := tr.Pos.X
		sys.Update(testTick)
		if tr.Pos.X > 1.0+1e-9 {
			t.Fatalf("overshoot: X = %v", tr.Pos.X)
		}
		if tr.Pos.X < prevX-1e-9 {
			t.Fatalf("moved backwards: %v -> %v", prevX, tr.Pos.X)
		}
	}
	if !f.Idle() {
		t.Fatal("follower should be idle after arrival")
	}
	if tr.Pos.Dist(geom.Vec2{X: 1, Z: 0}) > 1e-9 {
		t.Fatalf("final position %v not snapped to destination", tr.Pos)
	}
}

func TestMovementFailedPlanArmsCooldown(t *testing.T) {
	st, sys, id := newMovementFixture(t)
	// wall off the goal
	goal := grid.Cell{X: 5, Z: 5}
	st.Grid.SetBlocked(goal)

	f, _ := st.Followers.Get(id)
	f.Retarget(grid.CellToWorld(goal))

	sys.Update(testTick)

	if f.NeedsPath {
		t.Fatal("request flag should be consumed even on failure")
	}
	if f.Index >= 0 {
		t.Fatal("no path should be active")
	}
	if f.RetryCooldown <= 0 {
		t.Fatal("failed plan must arm the retry cooldown")
	}

	// A new request during cooldown does not plan yet.
	f.Retarget(grid.CellToWorld(goal))
	sys.Update(testTick)
	if !f.NeedsPath {
		t.Fatal("request should stay pending while cooling down")
	}
}

func TestMovementRecordsPrevPosition(t *testing.T) {
	st, sys, id := newMovementFixture(t)
	f, _ := st.Followers.Get(id)
	tr, _ := st.Transforms.Get(id)
	f.Retarget(geom.Vec2{X: 2, Z: 0})

	sys.Update(testTick) // plan + first step
	before := tr.Pos
	sys.Update(testTick)
	if tr.PrevPos != before {
		t.Fatalf("PrevPos = %v, want pre-move position %v", tr.PrevPos, before)
	}
}

func TestMovementUpdatesFacing(t *testing.T) {
	st, sys, id := newMovementFixture(t)
	f, _ := st.Followers.Get(id)
	tr, _ := st.Transforms.Get(id)

	f.Retarget(geom.Vec2{X: 0, Z: 3})
	sys.Update(testTick)
	sys.Update(testTick)

	// Moving in +Z means facing pi/2.
	if math.Abs(tr.Facing-math.Pi/2) > 1e-6 {
		t.Fatalf("facing = %v, want %v", tr.Facing, math.Pi/2)
	}
}
