// Package repository contains data access logic for events and
// registrations. This file defines the EventRepo, which manages rows
// in the events table. The registered_users counter is only ever
// mutated through ClaimSeatTx, so the invariant
// 0 <= registered_users <= seat_limit holds at all times.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/event-registration/internal/model"
)

// EventRepo manages persistence for events.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo constructs an EventRepo with the given DB handle.
func NewEventRepo(db *sql.DB) *EventRepo {
	return &EventRepo{db: db}
}

// DB exposes the underlying sql.DB.  It allows callers to begin
// transactions spanning multiple repositories.
func (r *EventRepo) DB() *sql.DB {
	return r.db
}

// Create inserts a new event and assigns the generated ID back to the
// struct.  registered_users always starts at zero regardless of what
// the caller supplies.  Timestamps are populated from the DB defaults.
func (r *EventRepo) Create(ctx context.Context, e *model.Event) error {
	const q = `INSERT INTO events (name, date, description, seat_limit, registered_users) VALUES (?, ?, ?, ?, 0)`
	res, err := r.db.ExecContext(ctx, q, e.Name, e.Date, e.Description, e.SeatLimit)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	// Query the inserted row to obtain DB-default fields.
	const sel = `SELECT id, name, date, description, seat_limit, registered_users, created_at, updated_at
	             FROM events WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, e.ID).Scan(
		&e.ID, &e.Name, &e.Date, &e.Description, &e.SeatLimit, &e.RegisteredUsers, &e.CreatedAt, &e.UpdatedAt,
	)
}

// GetByID retrieves an event by its ID.  It returns ErrEventNotFound
// if there is no matching row.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (*model.Event, error) {
	const q = `SELECT id, name, date, description, seat_limit, registered_users, created_at, updated_at
	           FROM events WHERE id = ?`
	var e model.Event
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&e.ID, &e.Name, &e.Date, &e.Description, &e.SeatLimit, &e.RegisteredUsers, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &e, nil
}

// List returns all events ordered by their calendar date ascending.
// When no events exist it returns an empty slice and nil error.
func (r *EventRepo) List(ctx context.Context) ([]model.Event, error) {
	const q = `SELECT id, name, date, description, seat_limit, registered_users, created_at, updated_at
	           FROM events ORDER BY date ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]model.Event, 0)
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(
			&e.ID, &e.Name, &e.Date, &e.Description, &e.SeatLimit, &e.RegisteredUsers, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// Update overwrites the administrator-editable fields of an event
// (name, date, description, seat_limit) and reloads the row into the
// given struct.  registered_users is deliberately untouched.  It
// returns ErrEventNotFound when the event does not exist.
func (r *EventRepo) Update(ctx context.Context, e *model.Event) error {
	const q = `UPDATE events
	           SET name = ?, date = ?, description = ?, seat_limit = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, e.Name, e.Date, e.Description, e.SeatLimit, e.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Either the row is missing or nothing changed; a lookup
		// distinguishes the two.
		if _, err := r.GetByID(ctx, e.ID); err != nil {
			return err
		}
	}
	const sel = `SELECT id, name, date, description, seat_limit, registered_users, created_at, updated_at
	             FROM events WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, e.ID).Scan(
		&e.ID, &e.Name, &e.Date, &e.Description, &e.SeatLimit, &e.RegisteredUsers, &e.CreatedAt, &e.UpdatedAt,
	)
}

// Delete removes an event and returns the deleted row.  Registrations
// referencing the event are left in place (no cascading delete).  It
// returns ErrEventNotFound when the event does not exist.
func (r *EventRepo) Delete(ctx context.Context, id uint64) (*model.Event, error) {
	e, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	const q = `DELETE FROM events WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, q, id); err != nil {
		return nil, err
	}
	return e, nil
}

// ClaimSeatTx atomically increments registered_users for the event if
// and only if capacity remains.  It returns false when the event is
// fully booked (or was deleted concurrently).  Running the guard and
// the increment as a single UPDATE closes the read-check-then-write
// race between concurrent admissions.
func (r *EventRepo) ClaimSeatTx(ctx context.Context, tx *sql.Tx, id uint64) (bool, error) {
	const q = `UPDATE events
	           SET registered_users = registered_users + 1
	           WHERE id = ? AND registered_users < seat_limit`
	res, err := tx.ExecContext(ctx, q, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
