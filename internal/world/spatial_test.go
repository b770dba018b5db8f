package world

import (
	"testing"

	"github.com/voxhunt/server/internal/core/ecs"
	"github.com/voxhunt/server/internal/geom"
)

func contains(ids []ecs.EntityID, want ecs.EntityID) bool {
	for _, id := range ids {
		if id == want {
			return true
		}
	}
	return false
}

func TestSpatialHashNearbyNeighborhood(t *testing.T) {
	h := NewSpatialHash()
	a := ecs.NewEntityID(1, 0)
	b := ecs.NewEntityID(2, 0)
	far := ecs.NewEntityID(3, 0)

	h.Insert(a, geom.Vec2{X: 1, Z: 1})
	h.Insert(b, geom.Vec2{X: 7.5, Z: 1}) // neighboring bucket
	h.Insert(far, geom.Vec2{X: 100, Z: 100})

	near := h.Nearby(geom.Vec2{X: 2, Z: 2})
	if !contains(near, a) || !contains(near, b) {
		t.Fatalf("nearby %v should contain both close entities", near)
	}
	if contains(near, far) {
		t.Fatal("distant entity leaked into the neighborhood")
	}
}

func TestSpatialHashNegativeCoordinates(t *testing.T) {
	h := NewSpatialHash()
	a := ecs.NewEntityID(1, 0)
	h.Insert(a, geom.Vec2{X: -0.5, Z: -0.5})

	// A query on the positive side of the boundary still sees the entity
	// through the 3x3 neighborhood.
	if near := h.Nearby(geom.Vec2{X: 0.5, Z: 0.5}); !contains(near, a) {
		t.Fatalf("nearby %v should contain entity across the bucket boundary", near)
	}
}

func TestSpatialHashClear(t *testing.T) {
	h := NewSpatialHash()
	a := ecs.NewEntityID(1, 0)
	h.Insert(a, geom.Vec2{X: 1, Z: 1})
	h.Clear()
	if near := h.Nearby(geom.Vec2{X: 1, Z: 1}); len(near) != 0 {
		t.Fatalf("expected empty hash after clear, got %v", near)
	}
}
