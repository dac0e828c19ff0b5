package alarm

import (
	"context"
	"errors"
	"sync"
	"time"
)

// In-memory doubles for the repository interfaces, mirroring the
// Postgres implementations closely enough for the state machine tests.

type fakeStore struct {
	mu     sync.Mutex
	nextID int
	rows   map[int]Alarm
	failIO bool
}

var errStoreIO = errors.New("store i/o failure")

func newFakeStore(alarms ...Alarm) *fakeStore {
	s := &fakeStore{rows: make(map[int]Alarm)}
	for _, a := range alarms {
		s.rows[a.ID] = a
		if a.ID > s.nextID {
			s.nextID = a.ID
		}
	}
	return s
}

func (s *fakeStore) Insert(_ context.Context, a *Alarm) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failIO {
		return 0, errStoreIO
	}
	s.nextID++
	a.ID = s.nextID
	s.rows[a.ID] = *a
	return a.ID, nil
}

func (s *fakeStore) Update(_ context.Context, a *Alarm) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failIO {
		return errStoreIO
	}
	s.rows[a.ID] = *a
	return nil
}

func (s *fakeStore) Delete(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failIO {
		return errStoreIO
	}
	delete(s.rows, id)
	return nil
}

func (s *fakeStore) GetByID(_ context.Context, id int) (*Alarm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failIO {
		return nil, errStoreIO
	}
	a, ok := s.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (s *fakeStore) GetAll(_ context.Context) ([]Alarm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failIO {
		return nil, errStoreIO
	}
	out := make([]Alarm, 0, len(s.rows))
	for id := 1; id <= s.nextID; id++ {
		if a, ok := s.rows[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *fakeStore) GetActive(ctx context.Context) ([]Alarm, error) {
	all, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	active := all[:0]
	for _, a := range all {
		if a.IsActive {
			active = append(active, a)
		}
	}
	return active, nil
}

func (s *fakeStore) DeactivateOneShot(_ context.Context, ids []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failIO {
		return errStoreIO
	}
	for _, id := range ids {
		if a, ok := s.rows[id]; ok && len(a.RepeatDays) == 0 {
			a.IsActive = false
			s.rows[id] = a
		}
	}
	return nil
}

func (s *fakeStore) Watch(ctx context.Context) <-chan []Alarm {
	ch := make(chan []Alarm, 1)
	if snapshot, err := s.GetAll(ctx); err == nil {
		ch <- snapshot
	}
	close(ch)
	return ch
}

type fakeGuard struct {
	mu    sync.Mutex
	state RingingState
}

func (g *fakeGuard) IsRinging(context.Context) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state.IsRinging, nil
}

func (g *fakeGuard) SetRinging(_ context.Context, ids []int) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state.IsRinging {
		return false, nil
	}
	g.state = RingingState{IsRinging: true, AlarmIDs: append([]int(nil), ids...)}
	return true, nil
}

func (g *fakeGuard) Clear(context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = RingingState{}
	return nil
}

func (g *fakeGuard) Current(context.Context) (RingingState, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state, nil
}

type fakeTimer struct {
	mu        sync.Mutex
	exactOK   bool
	armedAt   time.Time
	armedIDs  []int
	armCount  int
	cancelled int
}

func (t *fakeTimer) CanScheduleExact() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.exactOK
}

func (t *fakeTimer) ArmAt(at time.Time, ids []int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.armedAt = at
	t.armedIDs = append([]int(nil), ids...)
	t.armCount++
}

func (t *fakeTimer) CancelNext() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.armedAt = time.Time{}
	t.armedIDs = nil
	t.cancelled++
}

type fakeRinger struct {
	mu        sync.Mutex
	starts    int
	stops     int
	lastID    int
	lastURI   string
	failStart bool
}

func (r *fakeRinger) Start(_ context.Context, alarmID int, ringtoneURI string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failStart {
		return errors.New("audio subsystem unavailable")
	}
	r.starts++
	r.lastID = alarmID
	r.lastURI = ringtoneURI
	return nil
}

func (r *fakeRinger) Stop(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stops++
	return nil
}

type fakeHook struct {
	mu      sync.Mutex
	enabled bool
	calls   int
}

func (h *fakeHook) SetEnabled(enabled bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.enabled = enabled
	h.calls++
	return nil
}
