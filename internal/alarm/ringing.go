package alarm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Raimguhinov/alarm-go/pkg/logger"
)

// HandleFire runs when the armed wake timer delivers. Delivery is
// at-least-once: a duplicate callback must neither start a second
// ringing experience nor skip retiring its one-shot alarms.
func (s *Service) HandleFire(ctx context.Context, ids []int) error {
	if len(ids) == 0 {
		return nil
	}

	acquired, err := s.guard.SetRinging(ctx, ids)
	if err != nil {
		return fmt.Errorf("alarm - HandleFire - guard.SetRinging: %w", err)
	}

	if acquired {
		primary := ids[0]
		uri := ""
		if a, err := s.store.GetByID(ctx, primary); err == nil {
			uri = a.RingtoneURI
		} else if !errors.Is(err, ErrNotFound) {
			s.l.Error("alarm: reading fired alarm failed", logger.Err(err))
		}

		if err := s.ringer.Start(ctx, primary, uri); err != nil {
			// Do not stay in a "ringing" state nobody can hear.
			s.l.Error("alarm: starting ringer failed", logger.Err(err))
			if cerr := s.guard.Clear(ctx); cerr != nil {
				s.l.Error("alarm: clearing guard after ringer failure", logger.Err(cerr))
			}
		}
	} else {
		s.l.Debug("alarm: duplicate fire, ringing already in progress",
			slog.Any("ids", ids))
	}

	// Runs on duplicates too: every delivery of this firing must retire
	// its one-shot members.
	if err := s.store.DeactivateOneShot(ctx, ids); err != nil {
		return fmt.Errorf("alarm - HandleFire - store.DeactivateOneShot: %w", err)
	}

	return s.Recompute(ctx)
}

// HandleStop runs when the user dismisses the ringing alarm. Repeating
// alarms in the fired set need no extra work here: the recompute that
// ran at fire time already armed their next occurrence. Calling it with
// nothing ringing is a no-op.
func (s *Service) HandleStop(ctx context.Context) error {
	st, err := s.guard.Current(ctx)
	if err != nil {
		return fmt.Errorf("alarm - HandleStop - guard.Current: %w", err)
	}
	if !st.IsRinging {
		return nil
	}

	if err := s.ringer.Stop(ctx); err != nil {
		s.l.Error("alarm: stopping ringer failed", logger.Err(err))
	}

	if err := s.guard.Clear(ctx); err != nil {
		return fmt.Errorf("alarm - HandleStop - guard.Clear: %w", err)
	}

	s.l.Info("alarm: ringing dismissed", slog.Any("ids", st.AlarmIDs))
	return nil
}
