package component

import (
	"github.com/voxhunt/server/internal/geom"
	"github.com/voxhunt/server/internal/grid"
)

// Transform is an entity's position on the world plane plus its facing
// angle. PrevPos holds the position recorded at the start of the movement
// phase, which is what collision response reverts to.
type Transform struct {
	Pos     geom.Vec2
	PrevPos geom.Vec2
	Facing  float64 // radians
}

// Obstacle marks an entity as a static unit-cell block. Presence of this
// record is the capability; it carries no data of its own.
type Obstacle struct{}

// PathFollower steers an entity along a computed cell path.
//
// The states are implicit in the data: Index == -1 with NeedsPath false is
// idle, NeedsPath true is requesting, Index >= 0 is following.
type PathFollower struct {
	Path          []grid.Cell
	Index         int       // current waypoint index, -1 = no active path
	Target        geom.Vec2 // ultimate destination that triggered planning
	Speed         float64   // world units per second
	NeedsPath     bool
	RetryCooldown float64 // seconds until the next plan attempt is allowed
}

// Idle reports whether the follower has neither an active path nor a
// pending plan request.
func (f *PathFollower) Idle() bool {
	return f.Index < 0 && !f.NeedsPath
}

// Retarget points the follower at a new destination and requests planning.
// This is the whole external movement-trigger contract: set the target,
// raise the flag, the movement executor does the rest.
func (f *PathFollower) Retarget(target geom.Vec2) {
	f.Target = target
	f.NeedsPath = true
}

// ClearPath drops the active path and any pending request.
func (f *PathFollower) ClearPath() {
	f.Path = nil
	f.Index = -1
	f.NeedsPath = false
}

// Wander makes an idle agent pick random destinations around a fixed origin.
type Wander struct {
	Origin geom.Vec2
	Radius float64
	Wait   float64 // seconds before the next destination pick
}

// SeekState tags the pursuit state machine.
type SeekState int

const (
	SeekIdle SeekState = iota
	SeekSeeking
	SeekCooldown
	SeekAggressive
)

func (s SeekState) String() string {
	switch s {
	case SeekIdle:
		return "idle"
	case SeekSeeking:
		return "seeking"
	case SeekCooldown:
		return "cooldown"
	case SeekAggressive:
		return "aggressive"
	}
	return "unknown"
}

// Seek is the pursuit/aggression state machine for one agent.
//
// Aggravation counts consecutive exhausted pursuits and resets only when an
// aggressive pursuit ends, never during cooldown.
type Seek struct {
	State           SeekState
	DetectionRadius int // cells

	// Active opponent (valid while Seeking or Aggressive).
	Opponent         uint64 // ecs.EntityID; 0 = none
	LastOpponentCell grid.Cell

	// Step budget per pursuit.
	StepBudget   int
	StepsLeft    int
	PrevWaypoint int // follower waypoint index seen last tick, for step counting

	// Cooldown.
	CooldownDuration float64
	CooldownLeft     float64

	// Escalation.
	Aggravation    int
	AggroThreshold int
	RageDuration   float64
	RageLeft       float64
}

// Ownership tags a spawned agent (and its spawner) with the identity that
// owns it. Pursuit target selection never picks a candidate sharing the
// pursuer's owner.
type Ownership struct {
	Owner string
}

// Collider is a circular contact footprint for the collision pass.
type Collider struct {
	Radius float64
}

// Marker identifies the externally visible appearance tied to pursuit state.
type Marker int

const (
	MarkerCalm    Marker = iota // idle and cooldown share one marker
	MarkerAlert                 // seeking
	MarkerEnraged               // aggressive pursuit
)

// Appearance is the observable marker output consumed by visual-sync code.
// Nothing in the simulation reads it back.
type Appearance struct {
	Archetype string
	Marker    Marker
}

// Spawner emits agents of one archetype on a fixed cadence, up to a cap of
// simultaneously alive agents sharing its owner tag.
type Spawner struct {
	Archetype   string
	Owner       string
	Interval    float64 // seconds between spawn attempts
	Accumulator float64
	MaxAlive    int
}
