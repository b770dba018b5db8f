package system

import "time"

// Phase fixes execution ordering within a single tick. The pipeline order
// matters: obstacle sync must land its grid writes before any planning or
// target selection reads them in the same tick.
type Phase int

const (
	PhaseIngest    Phase = iota // 0: drain external commands, dispatch last tick's events
	PhaseSync                   // 1: reconcile obstacles with the grid index
	PhaseDecision               // 2: AI target selection (wander, pursuit), spawners
	PhaseMovement               // 3: path planning + path following
	PhaseCollision              // 4: contact detection + response
	PhaseOutput                 // 5: marker swaps, debug snapshot broadcast
	PhasePersist                // 6: batch save of world edits
	PhaseCleanup                // 7: destroy queued entities
)

// System is the interface every tick system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
