package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/siri-restaurant/internal/model"
	"github.com/iliyamo/siri-restaurant/internal/notify"
	"github.com/iliyamo/siri-restaurant/internal/queue"
	"github.com/iliyamo/siri-restaurant/internal/repository"
)

type fakeStore struct {
	mu      sync.Mutex
	nextID  uint64
	rows    map[uint64]model.Reservation
	creates int
	updates int
	err     error
	// afterGet runs after a successful GetByID, outside the lock.
	afterGet func(id uint64)
}

func newFakeStore() *fakeStore { return &fakeStore{rows: map[uint64]model.Reservation{}} }

func (f *fakeStore) Create(_ context.Context, r *model.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.nextID++
	r.ID = f.nextID
	f.rows[r.ID] = *r
	f.creates++
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id uint64) (*model.Reservation, error) {
	f.mu.Lock()
	r, ok := f.rows[id]
	f.mu.Unlock()
	if !ok {
		return nil, sql.ErrNoRows
	}
	if f.afterGet != nil {
		f.afterGet(id)
	}
	return &r, nil
}

func (f *fakeStore) UpdateStatus(_ context.Context, id uint64, status model.ReservationStatus, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok {
		return sql.ErrNoRows
	}
	r.Status, r.UpdatedAt = status, at
	f.rows[id] = r
	f.updates++
	return nil
}

func (f *fakeStore) CountByStatus(_ context.Context, status model.ReservationStatus) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.rows {
		if r.Status == status {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) List(_ context.Context, flt repository.ReservationFilter) ([]model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Reservation{}
	for _, r := range f.rows {
		if flt.Status == "" || r.Status == flt.Status {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (f *fakeStore) Delete(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.rows, id)
	return nil
}

type statusCall struct {
	status model.ReservationStatus
	alts   []string
}

type fakeNotifier struct {
	mu          sync.Mutex
	newCalls    int
	statusCalls []statusCall
	fail        bool
}

func (f *fakeNotifier) result(kind string) notify.Result {
	if f.fail {
		return notify.Result{Outcome: notify.DispatchFailed, Kind: kind,
			Err: &notify.DispatchError{Kind: kind, To: "x", Err: errors.New("smtp down")}}
	}
	return notify.Result{Outcome: notify.Delivered, Kind: kind, MessageID: "m"}
}

func (f *fakeNotifier) NewReservation(context.Context, model.Reservation) notify.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.newCalls++
	return f.result(notify.KindNewReservation)
}

func (f *fakeNotifier) StatusUpdate(_ context.Context, _ model.Reservation, status model.ReservationStatus, alts []string) notify.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusCalls = append(f.statusCalls, statusCall{status: status, alts: alts})
	return f.result(notify.KindStatusUpdate)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []queue.ReservationEvent
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, ev queue.ReservationEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return f.err
}

type fakeUsers struct {
	byID   map[uint64]model.User
	nextID uint64
}

func newFakeUsers() *fakeUsers { return &fakeUsers{byID: map[uint64]model.User{}} }

func (f *fakeUsers) Create(_ context.Context, name, email, hash string) (model.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return model.User{}, repository.ErrEmailExists
		}
	}
	f.nextID++
	u := model.User{ID: f.nextID, Name: name, Email: email, PasswordHash: hash}
	f.byID[u.ID] = u
	return u, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, sql.ErrNoRows
}

func (f *fakeUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return model.User{}, sql.ErrNoRows
	}
	return u, nil
}

type fakeSessions struct {
	byHash map[string]model.Session
	nextID uint64
}

func newFakeSessions() *fakeSessions { return &fakeSessions{byHash: map[string]model.Session{}} }

func (f *fakeSessions) Create(_ context.Context, s model.Session) (model.Session, error) {
	f.nextID++
	s.ID = f.nextID
	f.byHash[s.TokenHash] = s
	return s, nil
}

func (f *fakeSessions) GetByHash(_ context.Context, h string) (model.Session, error) {
	s, ok := f.byHash[h]
	if !ok {
		return model.Session{}, sql.ErrNoRows
	}
	return s, nil
}

func (f *fakeSessions) DeleteByHash(_ context.Context, h string) error {
	delete(f.byHash, h)
	return nil
}
