package alarm

import (
	"context"
	"testing"
	"time"

	"github.com/Raimguhinov/alarm-go/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	svc    *Service
	store  *fakeStore
	guard  *fakeGuard
	timer  *fakeTimer
	ringer *fakeRinger
	hook   *fakeHook
	now    time.Time
}

func newTestEnv(now time.Time, alarms ...Alarm) *testEnv {
	env := &testEnv{
		store:  newFakeStore(alarms...),
		guard:  &fakeGuard{},
		timer:  &fakeTimer{exactOK: true},
		ringer: &fakeRinger{},
		hook:   &fakeHook{},
		now:    now,
	}
	env.svc = NewService(
		env.store, env.guard, env.timer, env.ringer, env.hook,
		logger.New("error", "prod"),
		WithNow(func() time.Time { return env.now }),
	)
	return env
}

func TestRecompute_NoActiveAlarms(t *testing.T) {
	env := newTestEnv(march(2, 6, 0),
		Alarm{ID: 1, Hour: 7, IsActive: false, RepeatDays: Weekdays{}},
	)

	require.NoError(t, env.svc.Recompute(context.Background()))

	assert.Equal(t, 1, env.timer.cancelled)
	assert.Zero(t, env.timer.armCount)
	assert.False(t, env.hook.enabled)
	assert.Positive(t, env.hook.calls)
}

func TestRecompute_PermissionDenied(t *testing.T) {
	env := newTestEnv(march(2, 6, 0),
		Alarm{ID: 1, Hour: 7, IsActive: true, RepeatDays: Weekdays{}},
	)
	env.timer.exactOK = false

	err := env.svc.Recompute(context.Background())

	assert.ErrorIs(t, err, ErrPermissionDenied)
	assert.Zero(t, env.timer.armCount)
	assert.Zero(t, env.hook.calls)
}

func TestRecompute_PicksMinimumTrigger(t *testing.T) {
	env := newTestEnv(march(2, 6, 0), // Sunday 06:00
		Alarm{ID: 1, Hour: 8, IsActive: true, RepeatDays: Weekdays{}},
		Alarm{ID: 2, Hour: 7, Minute: 30, IsActive: true, RepeatDays: Weekdays{}},
	)

	require.NoError(t, env.svc.Recompute(context.Background()))

	assert.Equal(t, march(2, 7, 30), env.timer.armedAt)
	assert.Equal(t, []int{2}, env.timer.armedIDs)
	assert.True(t, env.hook.enabled)
}

func TestRecompute_SharedInstantFiresTogether(t *testing.T) {
	// Monday 06:00: the one-shot and the Monday-repeater both resolve
	// to 07:00 today and must ride the same wake-up.
	env := newTestEnv(march(3, 6, 0),
		Alarm{ID: 1, Hour: 7, IsActive: true, RepeatDays: Weekdays{}},
		Alarm{ID: 2, Hour: 7, IsActive: true, RepeatDays: NewWeekdays(Monday)},
	)

	require.NoError(t, env.svc.Recompute(context.Background()))

	assert.Equal(t, 1, env.timer.armCount)
	assert.Equal(t, march(3, 7, 0), env.timer.armedAt)
	assert.Equal(t, []int{1, 2}, env.timer.armedIDs)
}

func TestRecompute_SkipsInactive(t *testing.T) {
	env := newTestEnv(march(2, 6, 0),
		Alarm{ID: 1, Hour: 6, Minute: 30, IsActive: false, RepeatDays: Weekdays{}},
		Alarm{ID: 2, Hour: 9, IsActive: true, RepeatDays: Weekdays{}},
	)

	require.NoError(t, env.svc.Recompute(context.Background()))

	assert.Equal(t, march(2, 9, 0), env.timer.armedAt)
	assert.Equal(t, []int{2}, env.timer.armedIDs)
}
