package alarm

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleFire_RingsAndRetiresOneShot(t *testing.T) {
	env := newTestEnv(march(2, 7, 0), // Sunday 07:00, fire time
		Alarm{ID: 1, Hour: 7, IsActive: true, RepeatDays: Weekdays{}, RingtoneURI: "file:///tone.wav"},
		Alarm{ID: 2, Hour: 8, IsActive: true, RepeatDays: NewWeekdays(Monday, Tuesday)},
	)
	ctx := context.Background()

	require.NoError(t, env.svc.HandleFire(ctx, []int{1}))

	assert.Equal(t, 1, env.ringer.starts)
	assert.Equal(t, 1, env.ringer.lastID)
	assert.Equal(t, "file:///tone.wav", env.ringer.lastURI)

	st, err := env.guard.Current(ctx)
	require.NoError(t, err)
	assert.True(t, st.IsRinging)
	assert.Equal(t, []int{1}, st.AlarmIDs)

	fired, err := env.store.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.False(t, fired.IsActive)

	// The next wake-up comes from the now-updated active set.
	assert.Equal(t, march(3, 8, 0), env.timer.armedAt)
	assert.Equal(t, []int{2}, env.timer.armedIDs)
}

func TestHandleFire_RepeatingAlarmSurvives(t *testing.T) {
	env := newTestEnv(march(3, 8, 0), // Monday 08:00
		Alarm{ID: 2, Hour: 8, IsActive: true, RepeatDays: NewWeekdays(Monday, Tuesday)},
	)
	ctx := context.Background()

	require.NoError(t, env.svc.HandleFire(ctx, []int{2}))

	a, err := env.store.GetByID(ctx, 2)
	require.NoError(t, err)
	assert.True(t, a.IsActive)

	// Re-armed for the next occurrence, not the one that just fired.
	assert.Equal(t, march(4, 8, 0), env.timer.armedAt)
	assert.Equal(t, []int{2}, env.timer.armedIDs)
}

func TestHandleFire_DuplicateDeliveryIsIdempotent(t *testing.T) {
	env := newTestEnv(march(2, 7, 0),
		Alarm{ID: 1, Hour: 7, IsActive: true, RepeatDays: Weekdays{}},
	)
	ctx := context.Background()

	require.NoError(t, env.svc.HandleFire(ctx, []int{1}))
	require.NoError(t, env.svc.HandleFire(ctx, []int{1}))

	assert.Equal(t, 1, env.ringer.starts)

	fired, err := env.store.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.False(t, fired.IsActive)
}

func TestHandleFire_ConcurrentDeliveryStartsOnce(t *testing.T) {
	env := newTestEnv(march(2, 7, 0),
		Alarm{ID: 1, Hour: 7, IsActive: true, RepeatDays: Weekdays{}},
	)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, env.svc.HandleFire(ctx, []int{1}))
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, env.ringer.starts)

	fired, err := env.store.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.False(t, fired.IsActive)
}

func TestHandleFire_RingerFailureClearsGuard(t *testing.T) {
	env := newTestEnv(march(2, 7, 0),
		Alarm{ID: 1, Hour: 7, IsActive: true, RepeatDays: Weekdays{}},
	)
	env.ringer.failStart = true
	ctx := context.Background()

	require.NoError(t, env.svc.HandleFire(ctx, []int{1}))

	ringing, err := env.guard.IsRinging(ctx)
	require.NoError(t, err)
	assert.False(t, ringing, "must not claim ringing with nothing audible")

	fired, err := env.store.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.False(t, fired.IsActive)
}

func TestHandleStop_NoopWhenIdle(t *testing.T) {
	env := newTestEnv(march(2, 7, 0))

	require.NoError(t, env.svc.HandleStop(context.Background()))

	assert.Zero(t, env.ringer.stops)
}

func TestHandleStop_ClearsRingingSession(t *testing.T) {
	env := newTestEnv(march(2, 7, 0),
		Alarm{ID: 1, Hour: 7, IsActive: true, RepeatDays: Weekdays{}},
	)
	ctx := context.Background()

	require.NoError(t, env.svc.HandleFire(ctx, []int{1}))
	require.NoError(t, env.svc.HandleStop(ctx))

	assert.Equal(t, 1, env.ringer.stops)
	ringing, err := env.guard.IsRinging(ctx)
	require.NoError(t, err)
	assert.False(t, ringing)

	// Dismissing again changes nothing.
	require.NoError(t, env.svc.HandleStop(ctx))
	assert.Equal(t, 1, env.ringer.stops)
}

// The walkthrough scenario: a 07:00 one-shot and an 08:00 Monday+Tuesday
// repeater, starting Sunday 06:00.
func TestFireCycle_Scenario(t *testing.T) {
	env := newTestEnv(march(2, 6, 0),
		Alarm{ID: 1, Hour: 7, IsActive: true, RepeatDays: Weekdays{}},
		Alarm{ID: 2, Hour: 8, IsActive: true, RepeatDays: NewWeekdays(Monday, Tuesday)},
	)
	ctx := context.Background()

	require.NoError(t, env.svc.Recompute(ctx))
	assert.Equal(t, march(2, 7, 0), env.timer.armedAt)
	assert.Equal(t, []int{1}, env.timer.armedIDs)

	env.now = march(2, 7, 0)
	require.NoError(t, env.svc.HandleFire(ctx, []int{1}))

	assert.Equal(t, march(3, 8, 0), env.timer.armedAt)
	assert.Equal(t, []int{2}, env.timer.armedIDs)

	require.NoError(t, env.svc.HandleStop(ctx))

	// The repeater's schedule was fixed at fire time; stopping must not
	// move it.
	assert.Equal(t, march(3, 8, 0), env.timer.armedAt)
}
