package alarm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Raimguhinov/alarm-go/pkg/logger"
)

// Recompute re-derives the single next wake-up from the active set.
//
// With no active alarms the armed timer is cancelled and the boot hook
// disabled. Otherwise the minimum next-trigger instant across all
// active alarms is armed as the one outstanding timer, carrying every
// alarm ID that shares that instant. Permission denial is reported
// before any state is touched so the caller can roll back.
func (s *Service) Recompute(ctx context.Context) error {
	active, err := s.store.GetActive(ctx)
	if err != nil {
		return fmt.Errorf("alarm - Recompute - store.GetActive: %w", err)
	}

	if len(active) == 0 {
		s.timer.CancelNext()
		if err := s.boot.SetEnabled(false); err != nil {
			s.l.Warn("alarm: disabling boot hook failed", logger.Err(err))
		}
		return nil
	}

	if !s.timer.CanScheduleExact() {
		return ErrPermissionDenied
	}

	now := s.now()
	var minAt = now
	var ids []int

	for _, a := range active {
		at, err := NextTrigger(a.Hour, a.Minute, a.RepeatDays, now)
		if err != nil {
			return fmt.Errorf("alarm - Recompute - NextTrigger: %w", err)
		}
		switch {
		case len(ids) == 0 || at.Before(minAt):
			minAt, ids = at, []int{a.ID}
		case at.Equal(minAt):
			ids = append(ids, a.ID)
		}
	}

	s.timer.ArmAt(minAt, ids)
	if err := s.boot.SetEnabled(true); err != nil {
		s.l.Warn("alarm: enabling boot hook failed", logger.Err(err))
	}

	s.l.Debug("alarm: armed next wake-up",
		slog.Any("ids", ids), slog.Time("at", minAt))
	return nil
}
