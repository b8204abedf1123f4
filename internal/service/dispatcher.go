package service

import (
	"context"
	"encoding/base64"
	"log"
	"time"

	"github.com/iliyamo/event-registration/internal/queue"
	"github.com/iliyamo/event-registration/internal/repository"
)

// Outbox is the slice of the notification outbox the dispatcher needs.
type Outbox interface {
	FetchPending(ctx context.Context, limit int) ([]repository.TicketNotification, error)
	MarkSent(ctx context.Context, id uint64) error
	RecordFailure(ctx context.Context, id uint64) error
}

// TicketPublisher publishes ticket events to the broker.
type TicketPublisher interface {
	PublishTicketIssued(ctx context.Context, event queue.TicketIssuedEvent) error
}

// Dispatcher drains the notification outbox: it periodically loads
// pending rows and publishes one TicketIssuedEvent per row.  A row is
// marked sent only after the broker accepted the message, so a crash
// between commit and publish re-publishes on the next tick rather than
// dropping the ticket.  Delivery is therefore at-least-once; the
// consumer side tolerates duplicates.
type Dispatcher struct {
	outbox   Outbox
	pub      TicketPublisher
	interval time.Duration
	batch    int
}

// NewDispatcher constructs a Dispatcher polling at the given interval.
func NewDispatcher(outbox Outbox, pub TicketPublisher, interval time.Duration) *Dispatcher {
	if outbox == nil || pub == nil {
		panic("nil dependency passed to NewDispatcher")
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Dispatcher{outbox: outbox, pub: pub, interval: interval, batch: 50}
}

// Run polls the outbox until the context is cancelled.  It is intended
// to run as a background goroutine for the lifetime of the server.
func (d *Dispatcher) Run(ctx context.Context) {
	t := time.NewTicker(d.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			d.dispatch(ctx)
		}
	}
}

// dispatch publishes one batch of pending notifications.
func (d *Dispatcher) dispatch(ctx context.Context) {
	pending, err := d.outbox.FetchPending(ctx, d.batch)
	if err != nil {
		log.Printf("outbox: fetch pending failed: %v", err)
		return
	}
	for _, n := range pending {
		event := queue.TicketIssuedEvent{
			NotificationID: n.ID,
			RegistrationID: n.RegistrationID,
			Name:           n.Name,
			Email:          n.Email,
			EventID:        n.EventID,
			EventName:      n.EventName,
			EventDate:      n.EventDate,
			TicketPNG:      base64.StdEncoding.EncodeToString(n.Ticket),
			IssuedAt:       time.Now().UTC().Format(time.RFC3339),
		}
		if err := d.pub.PublishTicketIssued(ctx, event); err != nil {
			log.Printf("outbox: publish failed for notification %d (attempt %d): %v", n.ID, n.Attempts+1, err)
			if err := d.outbox.RecordFailure(ctx, n.ID); err != nil {
				log.Printf("outbox: record failure for notification %d: %v", n.ID, err)
			}
			continue
		}
		if err := d.outbox.MarkSent(ctx, n.ID); err != nil {
			// Worst case the row stays pending and the ticket goes out
			// twice; at-least-once is the documented contract.
			log.Printf("outbox: mark sent for notification %d: %v", n.ID, err)
		}
	}
}
