package db

import (
	"context"
	"sync"

	"github.com/Raimguhinov/alarm-go/internal/alarm"
)

// broadcaster fans the current alarm list out to live watchers. Each
// subscriber holds a single latest-value slot: a slow consumer may skip
// intermediate snapshots, but the newest one is always delivered.
type broadcaster struct {
	mu   sync.Mutex
	subs map[*subscriber]struct{}
}

type subscriber struct {
	mu     sync.Mutex
	latest []alarm.Alarm
	ready  chan struct{}
	out    chan []alarm.Alarm
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subs: make(map[*subscriber]struct{})}
}

// subscribe registers a watcher seeded with the given snapshot. The
// returned channel closes once ctx is done.
func (b *broadcaster) subscribe(ctx context.Context, snapshot []alarm.Alarm) <-chan []alarm.Alarm {
	sub := &subscriber{
		latest: snapshot,
		ready:  make(chan struct{}, 1),
		out:    make(chan []alarm.Alarm),
	}
	sub.ready <- struct{}{}

	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()

	go b.pump(ctx, sub)
	return sub.out
}

func (b *broadcaster) pump(ctx context.Context, sub *subscriber) {
	defer func() {
		b.mu.Lock()
		delete(b.subs, sub)
		b.mu.Unlock()
		close(sub.out)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.ready:
		}

		sub.mu.Lock()
		snapshot := sub.latest
		sub.mu.Unlock()

		select {
		case <-ctx.Done():
			return
		case sub.out <- snapshot:
		}
	}
}

// publish overwrites every subscriber's latest-value slot and wakes its
// pump. Publishing never blocks on a consumer.
func (b *broadcaster) publish(snapshot []alarm.Alarm) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for sub := range b.subs {
		sub.mu.Lock()
		sub.latest = snapshot
		sub.mu.Unlock()

		select {
		case sub.ready <- struct{}{}:
		default:
		}
	}
}

func (b *broadcaster) hasSubscribers() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs) > 0
}
