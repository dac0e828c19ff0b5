// Package wakeup implements the single-slot exact wake timer. There is
// only ever one outstanding timer for "the next alarm": arming replaces
// the previous instant, matching an OS alarm slot keyed by a fixed
// request code.
package wakeup

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Raimguhinov/alarm-go/pkg/logger"
)

// FireFunc receives the alarm-ID payload that was armed with the
// instant. Delivery is at-least-once; consumers must tolerate
// duplicates.
type FireFunc func(ids []int)

type Clock struct {
	l         *logger.Logger
	permitted func() bool

	mu    sync.Mutex
	fire  FireFunc
	timer *time.Timer
	ids   []int
	at    time.Time
}

// New builds the clock. The permitted probe models the runtime-revocable
// exact-timer permission; nil means always allowed.
func New(l *logger.Logger, permitted func() bool) *Clock {
	if permitted == nil {
		permitted = func() bool { return true }
	}
	return &Clock{l: l, permitted: permitted}
}

// OnFire registers the trigger callback. Must be called before the
// first ArmAt.
func (c *Clock) OnFire(fn FireFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fire = fn
}

func (c *Clock) CanScheduleExact() bool {
	return c.permitted()
}

// ArmAt arms the slot for the given instant, cancelling whatever was
// armed before. An instant already in the past fires immediately.
func (c *Clock) ArmAt(at time.Time, ids []int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timer != nil {
		c.timer.Stop()
	}

	c.at = at
	c.ids = append([]int(nil), ids...)

	payload := c.ids
	c.timer = time.AfterFunc(time.Until(at), func() {
		c.deliver(payload)
	})

	c.l.Debug("wakeup: armed", slog.Time("at", at), slog.Any("ids", ids))
}

// CancelNext disarms the slot.
func (c *Clock) CancelNext() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.ids = nil
	c.at = time.Time{}

	c.l.Debug("wakeup: cancelled")
}

func (c *Clock) deliver(ids []int) {
	c.mu.Lock()
	fn := c.fire
	c.mu.Unlock()

	if fn == nil {
		c.l.Warn("wakeup: fired with no handler registered")
		return
	}
	fn(ids)
}

// Run keeps the clock alive under the app run group and disarms it on
// shutdown.
func (c *Clock) Run(ctx context.Context) error {
	<-ctx.Done()
	c.CancelNext()
	return ctx.Err()
}
