package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-registration/internal/model"
	"github.com/iliyamo/event-registration/internal/repository"
)

// fakeStore is an in-memory Store.  Admit mirrors the guarantees of
// the SQL implementation: the duplicate check and the conditional
// counter increment happen under one lock, so concurrent admissions
// contend the way they would against the database constraints.
type fakeStore struct {
	mu       sync.Mutex
	events   map[uint64]*model.Event
	regs     map[string]bool
	admitted []*model.Registration
	nextID   uint64
}

func newFakeStore(events ...*model.Event) *fakeStore {
	f := &fakeStore{events: map[uint64]*model.Event{}, regs: map[string]bool{}}
	for _, e := range events {
		f.events[e.ID] = e
	}
	return f
}

func regKey(email string, eventID uint64) string {
	return fmt.Sprintf("%s|%d", email, eventID)
}

func (f *fakeStore) GetEvent(_ context.Context, id uint64) (*model.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[id]
	if !ok {
		return nil, repository.ErrEventNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeStore) HasRegistration(_ context.Context, email string, eventID uint64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.regs[regKey(email, eventID)], nil
}

func (f *fakeStore) Admit(_ context.Context, reg *model.Registration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.regs[regKey(reg.Email, reg.EventID)] {
		return repository.ErrDuplicateRegistration
	}
	e, ok := f.events[reg.EventID]
	if !ok || e.RegisteredUsers >= e.SeatLimit {
		return repository.ErrEventFull
	}
	e.RegisteredUsers++
	f.regs[regKey(reg.Email, reg.EventID)] = true
	f.nextID++
	reg.ID = f.nextID
	f.admitted = append(f.admitted, reg)
	return nil
}

func futureEvent(id uint64, seats uint32) *model.Event {
	return &model.Event{ID: id, Name: "GopherCon", Date: "2099-01-01", SeatLimit: seats}
}

func TestRegisterSuccess(t *testing.T) {
	store := newFakeStore(futureEvent(1, 1))
	svc := NewAdmissionService(store)

	msg, err := svc.Register(context.Background(), "Alice", "a@x.com", 1)
	require.NoError(t, err)
	require.Equal(t, "Alice, your ticket is on its way to a@x.com!", msg)

	require.Equal(t, uint32(1), store.events[1].RegisteredUsers, "counter must increase by exactly 1")
	require.Len(t, store.admitted, 1)
	require.NotEmpty(t, store.admitted[0].Ticket, "admitted registration must carry a ticket artifact")
	require.Equal(t, "a@x.com", store.admitted[0].Email)
}

func TestRegisterEventNotFound(t *testing.T) {
	svc := NewAdmissionService(newFakeStore())
	_, err := svc.Register(context.Background(), "Alice", "a@x.com", 99)
	require.ErrorIs(t, err, ErrEventNotFound)
}

func TestRegisterDuplicate(t *testing.T) {
	store := newFakeStore(futureEvent(1, 10))
	svc := NewAdmissionService(store)

	_, err := svc.Register(context.Background(), "Alice", "a@x.com", 1)
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), "Alice", "a@x.com", 1)
	require.ErrorIs(t, err, ErrAlreadyRegistered)
	require.Equal(t, uint32(1), store.events[1].RegisteredUsers, "rejected attempt must not consume a seat")
}

func TestRegisterDuplicateIgnoresEmailCase(t *testing.T) {
	store := newFakeStore(futureEvent(1, 10))
	svc := NewAdmissionService(store)

	_, err := svc.Register(context.Background(), "Alice", "a@x.com", 1)
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), "Alice", "  A@X.COM ", 1)
	require.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestRegisterClosedEvent(t *testing.T) {
	store := newFakeStore(&model.Event{ID: 1, Name: "Retro", Date: "2000-01-01", SeatLimit: 5})
	svc := NewAdmissionService(store)

	_, err := svc.Register(context.Background(), "Alice", "a@x.com", 1)
	require.ErrorIs(t, err, ErrRegistrationClosed,
		"past events reject registration regardless of remaining capacity")
	require.Empty(t, store.admitted)
}

func TestRegisterSameDayAllowed(t *testing.T) {
	today := time.Now().UTC().Format("2006-01-02")
	store := newFakeStore(&model.Event{ID: 1, Name: "Today", Date: today, SeatLimit: 5})
	svc := NewAdmissionService(store)

	_, err := svc.Register(context.Background(), "Alice", "a@x.com", 1)
	require.NoError(t, err, "registration stays open on the event day itself")
}

func TestRegisterFullyBooked(t *testing.T) {
	store := newFakeStore(futureEvent(1, 1))
	svc := NewAdmissionService(store)

	_, err := svc.Register(context.Background(), "Alice", "a@x.com", 1)
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), "Bob", "b@x.com", 1)
	require.ErrorIs(t, err, ErrEventFull)
	require.Equal(t, uint32(1), store.events[1].RegisteredUsers)
}

func TestRegisterMissingFields(t *testing.T) {
	svc := NewAdmissionService(newFakeStore(futureEvent(1, 1)))
	for _, tc := range []struct {
		name, regName, email string
		eventID              uint64
	}{
		{"no name", "", "a@x.com", 1},
		{"no email", "Alice", "", 1},
		{"no event", "Alice", "a@x.com", 0},
		{"blank name", "   ", "a@x.com", 1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tc.regName, tc.email, tc.eventID)
			require.ErrorIs(t, err, ErrMissingFields)
		})
	}
}

// TestRegisterConcurrentLastSeat races many goroutines for a handful
// of remaining seats: exactly seatLimit admissions may succeed and the
// counter must never exceed the limit.
func TestRegisterConcurrentLastSeat(t *testing.T) {
	const seats = 5
	const attempts = 100
	store := newFakeStore(futureEvent(1, seats))
	svc := NewAdmissionService(store)

	var wg sync.WaitGroup
	var mu sync.Mutex
	successes, fulls := 0, 0
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := svc.Register(context.Background(), fmt.Sprintf("User %d", n), fmt.Sprintf("user%d@x.com", n), 1)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrEventFull):
				fulls++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	require.Equal(t, seats, successes, "exactly seatLimit admissions may succeed")
	require.Equal(t, attempts-seats, fulls)
	require.Equal(t, uint32(seats), store.events[1].RegisteredUsers)
	require.Len(t, store.admitted, seats)
}

func TestRegistrationClosed(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	for _, tc := range []struct {
		date   string
		closed bool
	}{
		{"2026-08-28", true},  // yesterday
		{"2026-08-29", false}, // event day, still open
		{"2026-08-30", false}, // tomorrow
		{"2000-01-01", true},
		{"2099-12-31", false},
		{"not-a-date", false}, // malformed dates never close registration
		{"", false},
	} {
		require.Equal(t, tc.closed, registrationClosed(tc.date, now), "date %q", tc.date)
	}
}
