package repository

import (
	"context"
	"database/sql"
)

// OutboxRepo manages the notifications table, the transactional
// outbox for ticket delivery.  A pending row is inserted in the same
// transaction as the registration it belongs to, so a committed
// registration always has a recorded intent to notify.  The dispatcher
// publishes pending rows to the broker and marks them sent only after
// a successful publish, which yields at-least-once delivery.
type OutboxRepo struct {
	db *sql.DB
}

// NewOutboxRepo returns an OutboxRepo bound to the given database.
func NewOutboxRepo(db *sql.DB) *OutboxRepo { return &OutboxRepo{db: db} }

// TicketNotification is a pending outbox row joined with the data the
// delivery consumer needs: the registrant, the ticket bytes and the
// event details for the email body.  Event fields fall back to empty
// strings when the event was deleted after registration (weak
// reference, no cascade).
type TicketNotification struct {
	ID             uint64 // notifications.id
	RegistrationID uint64 // notifications.registration_id
	Attempts       uint32 // notifications.attempts
	Name           string // registrations.name
	Email          string // registrations.email
	EventID        uint64 // registrations.event_id
	EventName      string // events.name ("" if the event is gone)
	EventDate      string // events.date ("" if the event is gone)
	Ticket         []byte // registrations.ticket
}

// EnqueueTx inserts a pending notification for a registration within
// the scope of an existing transaction.
func (r *OutboxRepo) EnqueueTx(ctx context.Context, tx *sql.Tx, registrationID uint64) error {
	const q = `INSERT INTO notifications (registration_id, status) VALUES (?, 'PENDING')`
	_, err := tx.ExecContext(ctx, q, registrationID)
	return err
}

// Enqueue inserts a pending notification outside a transaction.  It is
// used by the idempotent resend endpoint, keyed by registration ID.
func (r *OutboxRepo) Enqueue(ctx context.Context, registrationID uint64) error {
	const q = `INSERT INTO notifications (registration_id, status) VALUES (?, 'PENDING')`
	_, err := r.db.ExecContext(ctx, q, registrationID)
	return err
}

// FetchPending returns up to limit pending notifications, oldest
// first, joined with registration and event data.
func (r *OutboxRepo) FetchPending(ctx context.Context, limit int) ([]TicketNotification, error) {
	const q = `SELECT n.id, n.registration_id, n.attempts,
	                  r.name, r.email, r.event_id, r.ticket,
	                  COALESCE(e.name, ''), COALESCE(e.date, '')
	           FROM notifications n
	           JOIN registrations r ON r.id = n.registration_id
	           LEFT JOIN events e ON e.id = r.event_id
	           WHERE n.status = 'PENDING'
	           ORDER BY n.id ASC
	           LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var pending []TicketNotification
	for rows.Next() {
		var n TicketNotification
		if err := rows.Scan(
			&n.ID, &n.RegistrationID, &n.Attempts,
			&n.Name, &n.Email, &n.EventID, &n.Ticket,
			&n.EventName, &n.EventDate,
		); err != nil {
			return nil, err
		}
		pending = append(pending, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return pending, nil
}

// MarkSent transitions a notification to SENT after a successful
// publish to the broker.
func (r *OutboxRepo) MarkSent(ctx context.Context, id uint64) error {
	const q = `UPDATE notifications SET status = 'SENT', updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}

// RecordFailure increments the attempt counter for a notification that
// could not be published.  The row stays PENDING so the dispatcher
// picks it up again on the next tick.
func (r *OutboxRepo) RecordFailure(ctx context.Context, id uint64) error {
	const q = `UPDATE notifications SET attempts = attempts + 1, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}
