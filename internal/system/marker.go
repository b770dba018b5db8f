package system

import (
	"time"

	"github.com/voxhunt/server/internal/component"
	"github.com/voxhunt/server/internal/core/event"
	coresys "github.com/voxhunt/server/internal/core/system"
	"github.com/voxhunt/server/internal/world"
)

// MarkerSystem swaps the visible appearance marker on pursuit state
// transitions delivered over the bus. Pure output; nothing in the
// simulation reads the marker back.
// Phase 5 (Output).
type MarkerSystem struct {
	state *world.State
}

func NewMarkerSystem(st *world.State) *MarkerSystem {
	s := &MarkerSystem{state: st}
	event.Subscribe(st.Bus, s.onPursuitStateChanged)
	return s
}

func (s *MarkerSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

// Update is a no-op; the work happens in the bus handler during dispatch.
func (s *MarkerSystem) Update(_ time.Duration) {}

func (s *MarkerSystem) onPursuitStateChanged(ev event.PursuitStateChanged) {
	app, ok := s.state.Appearances.Get(ev.Entity)
	if !ok {
		return
	}
	app.Marker = markerFor(ev.To)
}

func markerFor(st component.SeekState) component.Marker {
	switch st {
	case component.SeekSeeking:
		return component.MarkerAlert
	case component.SeekAggressive:
		return component.MarkerEnraged
	}
	// Idle and cooldown share the calm marker.
	return component.MarkerCalm
}
