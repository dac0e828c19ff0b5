package alarm

import (
	"context"
	"time"
)

// Store is the durable alarm table. Implementations must serialize
// concurrent writes to a record and hand out consistent snapshots.
type Store interface {
	Insert(ctx context.Context, a *Alarm) (int, error)
	Update(ctx context.Context, a *Alarm) error
	Delete(ctx context.Context, id int) error
	GetByID(ctx context.Context, id int) (*Alarm, error)
	GetAll(ctx context.Context) ([]Alarm, error)
	GetActive(ctx context.Context) ([]Alarm, error)
	// DeactivateOneShot flips isActive off for every listed ID whose
	// repeat-day set is empty, in a single statement.
	DeactivateOneShot(ctx context.Context, ids []int) error
	// Watch emits the full alarm list after every mutation until ctx is
	// done. The current list is emitted first.
	Watch(ctx context.Context) <-chan []Alarm
}

// RingingGuard provides the persisted at-most-one-concurrently-ringing
// semantics. It survives process death between fire and dismiss.
type RingingGuard interface {
	IsRinging(ctx context.Context) (bool, error)
	// SetRinging atomically transitions Idle -> Ringing(ids). It returns
	// false without mutating anything when a session is already ringing.
	SetRinging(ctx context.Context, ids []int) (bool, error)
	Clear(ctx context.Context) error
	Current(ctx context.Context) (RingingState, error)
}

// WakeTimer is the single-slot exact timer facility. Arming replaces any
// previously armed instant; the payload ID set rounds back through the
// fire callback.
type WakeTimer interface {
	CanScheduleExact() bool
	ArmAt(at time.Time, ids []int)
	CancelNext()
}

// Ringer is the external ringing experience (playback, notification,
// full-screen UI). The URI is pass-through; empty selects the default.
type Ringer interface {
	Start(ctx context.Context, alarmID int, ringtoneURI string) error
	Stop(ctx context.Context) error
}

// BootHook re-invokes scheduling after a device restart. It stays
// enabled exactly while at least one alarm is active.
type BootHook interface {
	SetEnabled(enabled bool) error
}
