package service

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-registration/internal/queue"
	"github.com/iliyamo/event-registration/internal/repository"
)

type fakeOutbox struct {
	pending  []repository.TicketNotification
	sent     []uint64
	failures []uint64
}

func (f *fakeOutbox) FetchPending(_ context.Context, limit int) ([]repository.TicketNotification, error) {
	if len(f.pending) > limit {
		return f.pending[:limit], nil
	}
	return f.pending, nil
}

func (f *fakeOutbox) MarkSent(_ context.Context, id uint64) error {
	f.sent = append(f.sent, id)
	return nil
}

func (f *fakeOutbox) RecordFailure(_ context.Context, id uint64) error {
	f.failures = append(f.failures, id)
	return nil
}

type fakePublisher struct {
	published []queue.TicketIssuedEvent
	err       error
}

func (f *fakePublisher) PublishTicketIssued(_ context.Context, ev queue.TicketIssuedEvent) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, ev)
	return nil
}

func pendingTicket(id uint64) repository.TicketNotification {
	return repository.TicketNotification{
		ID:             id,
		RegistrationID: id + 100,
		Name:           "Alice",
		Email:          "a@x.com",
		EventID:        1,
		EventName:      "GopherCon",
		EventDate:      "2099-01-01",
		Ticket:         []byte{0x89, 'P', 'N', 'G'},
	}
}

func TestDispatchPublishesAndMarksSent(t *testing.T) {
	outbox := &fakeOutbox{pending: []repository.TicketNotification{pendingTicket(1), pendingTicket(2)}}
	pub := &fakePublisher{}
	d := NewDispatcher(outbox, pub, time.Second)

	d.dispatch(context.Background())

	require.Len(t, pub.published, 2)
	require.Equal(t, []uint64{1, 2}, outbox.sent)
	require.Empty(t, outbox.failures)

	ev := pub.published[0]
	require.Equal(t, uint64(101), ev.RegistrationID)
	require.Equal(t, "a@x.com", ev.Email)
	png, err := base64.StdEncoding.DecodeString(ev.TicketPNG)
	require.NoError(t, err)
	require.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png, "ticket bytes must survive the base64 round trip")
}

func TestDispatchRecordsFailureAndKeepsPending(t *testing.T) {
	outbox := &fakeOutbox{pending: []repository.TicketNotification{pendingTicket(1)}}
	pub := &fakePublisher{err: errors.New("broker down")}
	d := NewDispatcher(outbox, pub, time.Second)

	d.dispatch(context.Background())

	require.Empty(t, outbox.sent, "nothing may be marked sent when the broker rejects")
	require.Equal(t, []uint64{1}, outbox.failures)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	d := NewDispatcher(&fakeOutbox{}, &fakePublisher{}, 10*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("dispatcher did not stop after context cancellation")
	}
}
