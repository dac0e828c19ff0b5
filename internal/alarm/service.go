package alarm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Raimguhinov/alarm-go/pkg/logger"
)

// Service owns the alarm table mutations and the scheduling state
// machine around them. Every collaborator comes in as an interface so
// tests can substitute in-memory doubles.
type Service struct {
	store  Store
	guard  RingingGuard
	timer  WakeTimer
	ringer Ringer
	boot   BootHook
	l      *logger.Logger
	now    func() time.Time
}

type Option func(*Service)

// WithNow overrides the wall clock, for tests.
func WithNow(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(
	store Store,
	guard RingingGuard,
	timer WakeTimer,
	ringer Ringer,
	boot BootHook,
	l *logger.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		store:  store,
		guard:  guard,
		timer:  timer,
		ringer: ringer,
		boot:   boot,
		l:      l,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add inserts a new active alarm and arms the schedule. When the exact
// timer permission is denied the insert is rolled back so the stored
// state matches what is actually armed.
func (s *Service) Add(ctx context.Context, hour, minute int) (int, error) {
	a := &Alarm{Hour: hour, Minute: minute, IsActive: true, RepeatDays: Weekdays{}}
	if err := a.Validate(); err != nil {
		return 0, err
	}

	id, err := s.store.Insert(ctx, a)
	if err != nil {
		return 0, fmt.Errorf("alarm - Add - store.Insert: %w", err)
	}

	if err := s.Recompute(ctx); err != nil {
		if errors.Is(err, ErrPermissionDenied) {
			if delErr := s.store.Delete(ctx, id); delErr != nil {
				s.l.Error("alarm: rollback of insert failed", logger.Err(delErr))
			}
		}
		return 0, err
	}
	return id, nil
}

// Toggle flips isActive. A stale ID is a benign no-op. The flip is
// reverted when the recompute fails on permission.
func (s *Service) Toggle(ctx context.Context, id int, active bool) error {
	a, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return fmt.Errorf("alarm - Toggle - store.GetByID: %w", err)
	}

	prev := *a
	a.IsActive = active
	if err := s.store.Update(ctx, a); err != nil {
		return fmt.Errorf("alarm - Toggle - store.Update: %w", err)
	}

	if err := s.Recompute(ctx); err != nil {
		if errors.Is(err, ErrPermissionDenied) {
			if revErr := s.store.Update(ctx, &prev); revErr != nil {
				s.l.Error("alarm: revert of toggle failed", logger.Err(revErr))
			}
		}
		return err
	}
	return nil
}

// UpdateTime sets a new wall-clock time and re-activates the alarm.
func (s *Service) UpdateTime(ctx context.Context, id, hour, minute int) error {
	a, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return fmt.Errorf("alarm - UpdateTime - store.GetByID: %w", err)
	}

	prev := *a
	a.Hour, a.Minute, a.IsActive = hour, minute, true
	if err := a.Validate(); err != nil {
		return err
	}
	if err := s.store.Update(ctx, a); err != nil {
		return fmt.Errorf("alarm - UpdateTime - store.Update: %w", err)
	}

	if err := s.Recompute(ctx); err != nil {
		if errors.Is(err, ErrPermissionDenied) {
			if revErr := s.store.Update(ctx, &prev); revErr != nil {
				s.l.Error("alarm: revert of time update failed", logger.Err(revErr))
			}
		}
		return err
	}
	return nil
}

// SetRepeatDays replaces the repeat-day set. Scheduling trouble here is
// logged, not surfaced: the record mutation stands either way.
func (s *Service) SetRepeatDays(ctx context.Context, id int, days Weekdays) error {
	if err := days.Validate(); err != nil {
		return err
	}

	a, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return fmt.Errorf("alarm - SetRepeatDays - store.GetByID: %w", err)
	}

	a.RepeatDays = NewWeekdays(days...)
	if err := s.store.Update(ctx, a); err != nil {
		return fmt.Errorf("alarm - SetRepeatDays - store.Update: %w", err)
	}

	if err := s.Recompute(ctx); err != nil {
		s.l.Warn("alarm: recompute after repeat-days change failed", logger.Err(err))
	}
	return nil
}

// SetRingtone stores the opaque ringtone URI. The trigger schedule is
// unaffected.
func (s *Service) SetRingtone(ctx context.Context, id int, uri string) error {
	a, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return fmt.Errorf("alarm - SetRingtone - store.GetByID: %w", err)
	}

	a.RingtoneURI = uri
	if err := s.store.Update(ctx, a); err != nil {
		return fmt.Errorf("alarm - SetRingtone - store.Update: %w", err)
	}
	return nil
}

// Delete removes the record and re-derives the schedule.
func (s *Service) Delete(ctx context.Context, id int) error {
	a, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return fmt.Errorf("alarm - Delete - store.GetByID: %w", err)
	}

	if err := s.store.Delete(ctx, a.ID); err != nil {
		return fmt.Errorf("alarm - Delete - store.Delete: %w", err)
	}

	if err := s.Recompute(ctx); err != nil {
		s.l.Warn("alarm: recompute after delete failed", logger.Err(err))
	}
	return nil
}

func (s *Service) List(ctx context.Context) ([]Alarm, error) {
	return s.store.GetAll(ctx)
}

func (s *Service) Watch(ctx context.Context) <-chan []Alarm {
	return s.store.Watch(ctx)
}

func (s *Service) RingingState(ctx context.Context) (RingingState, error) {
	return s.guard.Current(ctx)
}
