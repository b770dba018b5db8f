package event

import (
	"github.com/voxhunt/server/internal/component"
	"github.com/voxhunt/server/internal/core/ecs"
	"github.com/voxhunt/server/internal/grid"
)

// PursuitStateChanged fires on every pursuit state transition. Consumed by
// the marker system for appearance swaps; pure side channel, no feedback
// into AI logic.
type PursuitStateChanged struct {
	Entity ecs.EntityID
	From   component.SeekState
	To     component.SeekState
}

// ObstacleContact fires when a moving agent was reverted out of a blocked
// cell. The stale path has already been cleared by the collision system.
type ObstacleContact struct {
	Entity ecs.EntityID
	Cell   grid.Cell
}

// BlockEdited fires when the external placement feed adds or removes a
// block entity. Consumed by the persistence system to mark the cell dirty.
type BlockEdited struct {
	Cell    grid.Cell
	Removed bool
}
