package system

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/voxhunt/server/internal/core/event"
	coresys "github.com/voxhunt/server/internal/core/system"
	"github.com/voxhunt/server/internal/persist"
	"github.com/voxhunt/server/internal/world"
)

// PersistenceSystem batches block edits from the bus and flushes them to the
// database on the save interval. Phase 6 (Persist).
type PersistenceSystem struct {
	repo     *persist.BlockRepo
	log      *zap.Logger
	pending  []persist.BlockEdit
	elapsed  time.Duration
	interval time.Duration
}

func NewPersistenceSystem(st *world.State, repo *persist.BlockRepo, log *zap.Logger, interval time.Duration) *PersistenceSystem {
	s := &PersistenceSystem{repo: repo, log: log, interval: interval}
	event.Subscribe(st.Bus, s.onBlockEdited)
	return s
}

func (s *PersistenceSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *PersistenceSystem) onBlockEdited(ev event.BlockEdited) {
	s.pending = append(s.pending, persist.BlockEdit{Cell: ev.Cell, Removed: ev.Removed})
}

func (s *PersistenceSystem) Update(dt time.Duration) {
	s.elapsed += dt
	if s.elapsed < s.interval {
		return
	}
	s.elapsed = 0
	s.Flush()
}

// Flush writes all pending edits immediately. Also called on graceful
// shutdown so the last partial interval is not lost.
func (s *PersistenceSystem) Flush() {
	if len(s.pending) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.repo.Apply(ctx, s.pending); err != nil {
		s.log.Error("block save failed, retrying next interval",
			zap.Int("edits", len(s.pending)), zap.Error(err))
		return
	}
	s.log.Debug("blocks saved", zap.Int("edits", len(s.pending)))
	s.pending = s.pending[:0]
}
