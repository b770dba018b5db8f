package world

// SpatialHash buckets entities into coarse square cells for neighborhood
// queries. The bucket size is chosen so a 3x3 neighborhood of buckets
// covers any query radius up to bucketSize; the collision pass rebuilds the
// hash each tick and does fine-grained distance checks itself.
// Single-goroutine access only.

import (
	"github.com/voxhunt/server/internal/core/ecs"
	"github.com/voxhunt/server/internal/geom"
)

const bucketSize = 8.0

type bucketKey struct {
	bx int
	bz int
}

func toBucketCoord(v float64) int {
	if v < 0 {
		return int((v - bucketSize + 1) / bucketSize)
	}
	return int(v / bucketSize)
}

// SpatialHash tracks which entities are in which buckets.
type SpatialHash struct {
	buckets map[bucketKey][]ecs.EntityID
}

func NewSpatialHash() *SpatialHash {
	return &SpatialHash{
		buckets: make(map[bucketKey][]ecs.EntityID),
	}
}

// Clear empties every bucket, retaining allocated capacity.
func (h *SpatialHash) Clear() {
	for k := range h.buckets {
		h.buckets[k] = h.buckets[k][:0]
	}
}

// Insert places an entity into the bucket containing its position.
func (h *SpatialHash) Insert(id ecs.EntityID, p geom.Vec2) {
	k := bucketKey{bx: toBucketCoord(p.X), bz: toBucketCoord(p.Z)}
	h.buckets[k] = append(h.buckets[k], id)
}

// Nearby returns all entities in the 3x3 bucket neighborhood around p.
// Callers do their own exact distance filtering.
func (h *SpatialHash) Nearby(p geom.Vec2) []ecs.EntityID {
	bx := toBucketCoord(p.X)
	bz := toBucketCoord(p.Z)
	var out []ecs.EntityID
	for dx := -1; dx <= 1; dx++ {
		for dz := -1; dz <= 1; dz++ {
			out = append(out, h.buckets[bucketKey{bx: bx + dx, bz: bz + dz}]...)
		}
	}
	return out
}
