package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/event-registration/internal/model"
)

// RegistrationRepo provides persistence for registrations.  Rows are
// created exactly once per (email, event_id) pair by the admission
// workflow and are never deleted; the only mutation is the attended
// flag set by check-in.
type RegistrationRepo struct {
	db *sql.DB
}

// NewRegistrationRepo returns a RegistrationRepo bound to the given database.
func NewRegistrationRepo(db *sql.DB) *RegistrationRepo { return &RegistrationRepo{db: db} }

// CreateTx inserts a new registration within the scope of an existing
// transaction and populates the generated ID on the given struct.  The
// unique key on (email, event_id) turns concurrent duplicates into
// ErrDuplicateRegistration.  The caller must commit or roll back the
// transaction.
func (r *RegistrationRepo) CreateTx(ctx context.Context, tx *sql.Tx, reg *model.Registration) error {
	const q = `INSERT INTO registrations (name, email, event_id, ticket) VALUES (?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, reg.Name, reg.Email, reg.EventID, reg.Ticket)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") { // mysql duplicate entry
			return ErrDuplicateRegistration
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	reg.ID = uint64(id)
	return nil
}

// ExistsByEmailAndEvent reports whether a registration already exists
// for the given email and event.  Emails are normalized to lower case
// before comparison, matching the normalization applied on insert by
// the admission workflow.
func (r *RegistrationRepo) ExistsByEmailAndEvent(ctx context.Context, email string, eventID uint64) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	const q = `SELECT 1 FROM registrations WHERE email = ? AND event_id = ? LIMIT 1`
	var one int
	err := r.db.QueryRowContext(ctx, q, email, eventID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetByID retrieves a registration by its ID including the ticket
// bytes.  It returns ErrRegistrationNotFound when no row matches.
func (r *RegistrationRepo) GetByID(ctx context.Context, id uint64) (*model.Registration, error) {
	const q = `SELECT id, name, email, event_id, ticket, attended, created_at FROM registrations WHERE id = ?`
	var reg model.Registration
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&reg.ID, &reg.Name, &reg.Email, &reg.EventID, &reg.Ticket, &reg.Attended, &reg.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRegistrationNotFound
		}
		return nil, err
	}
	return &reg, nil
}

// ListByEvent returns all registrations for an event ordered by
// creation time ascending.  Ticket bytes are not loaded; listings are
// administrative and the ticket itself travels by email only.
func (r *RegistrationRepo) ListByEvent(ctx context.Context, eventID uint64) ([]model.Registration, error) {
	const q = `SELECT id, name, email, event_id, attended, created_at
	           FROM registrations WHERE event_id = ? ORDER BY created_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	regs := make([]model.Registration, 0)
	for rows.Next() {
		var reg model.Registration
		if err := rows.Scan(&reg.ID, &reg.Name, &reg.Email, &reg.EventID, &reg.Attended, &reg.CreatedAt); err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return regs, nil
}

// CountByEvent returns the number of registrations recorded for an
// event.  Together with Event.RegisteredUsers it allows verifying the
// ledger/counter invariant.
func (r *RegistrationRepo) CountByEvent(ctx context.Context, eventID uint64) (uint32, error) {
	const q = `SELECT COUNT(*) FROM registrations WHERE event_id = ?`
	var n uint32
	if err := r.db.QueryRowContext(ctx, q, eventID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// MarkAttended flips the attended flag for a registration.  It returns
// ErrRegistrationNotFound when the row does not exist and false when
// the registration was already checked in.
func (r *RegistrationRepo) MarkAttended(ctx context.Context, id uint64) (bool, error) {
	const q = `UPDATE registrations SET attended = TRUE WHERE id = ? AND attended = FALSE`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n > 0 {
		return true, nil
	}
	if _, err := r.GetByID(ctx, id); err != nil {
		return false, err
	}
	return false, nil // exists but already attended
}
