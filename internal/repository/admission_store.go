package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/event-registration/internal/model"
)

// AdmissionStore bundles the repositories touched by a registration
// admission and runs the state mutation as one transaction: insert the
// registration, claim a seat on the event counter and enqueue the
// ticket notification.  Either all three commit or none do, so a
// registration can never exist without its seat or its recorded intent
// to notify.
type AdmissionStore struct {
	db     *sql.DB
	events *EventRepo
	regs   *RegistrationRepo
	outbox *OutboxRepo
}

// NewAdmissionStore constructs an AdmissionStore.  All dependencies
// must be non-nil and bound to the same database.
func NewAdmissionStore(db *sql.DB, events *EventRepo, regs *RegistrationRepo, outbox *OutboxRepo) *AdmissionStore {
	if db == nil || events == nil || regs == nil || outbox == nil {
		panic("nil dependency passed to NewAdmissionStore")
	}
	return &AdmissionStore{db: db, events: events, regs: regs, outbox: outbox}
}

// GetEvent retrieves the event targeted by an admission.  It returns
// ErrEventNotFound when no such event exists.
func (s *AdmissionStore) GetEvent(ctx context.Context, id uint64) (*model.Event, error) {
	return s.events.GetByID(ctx, id)
}

// HasRegistration reports whether the (email, event) pair is already
// registered.
func (s *AdmissionStore) HasRegistration(ctx context.Context, email string, eventID uint64) (bool, error) {
	return s.regs.ExistsByEmailAndEvent(ctx, email, eventID)
}

// Admit persists an admitted registration.  It returns
// ErrDuplicateRegistration when the unique key rejects the insert,
// ErrEventFull when no seat could be claimed, and populates the
// generated ID on the given registration on success.
func (s *AdmissionStore) Admit(ctx context.Context, reg *model.Registration) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := s.regs.CreateTx(ctx, tx, reg); err != nil {
		return err
	}
	claimed, err := s.events.ClaimSeatTx(ctx, tx, reg.EventID)
	if err != nil {
		return err
	}
	if !claimed {
		return ErrEventFull
	}
	if err := s.outbox.EnqueueTx(ctx, tx, reg.ID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
