// Package service implements the registration admission workflow: the
// ordered checks that decide whether a registration attempt is
// accepted, and the resulting state changes (ticket issuance, seat
// claim, queued notification).
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/event-registration/internal/model"
	"github.com/iliyamo/event-registration/internal/repository"
	"github.com/iliyamo/event-registration/internal/ticket"
)

// Admission failure modes.  Repository sentinels are re-exported so
// handlers only need to import the service package.
var (
	ErrEventNotFound      = repository.ErrEventNotFound
	ErrAlreadyRegistered  = repository.ErrDuplicateRegistration
	ErrEventFull          = repository.ErrEventFull
	ErrRegistrationClosed = errors.New("registration closed")
	ErrMissingFields      = errors.New("missing required fields")
)

// Store is the persistence contract the admission workflow runs
// against.  Admit must perform the registration insert, the
// conditional seat claim and the notification enqueue as a single
// transaction, returning ErrDuplicateRegistration or ErrEventFull when
// the database-level guards reject the attempt.
type Store interface {
	GetEvent(ctx context.Context, id uint64) (*model.Event, error)
	HasRegistration(ctx context.Context, email string, eventID uint64) (bool, error)
	Admit(ctx context.Context, reg *model.Registration) error
}

// AdmissionService orchestrates registration admission.
type AdmissionService struct {
	store Store
}

// NewAdmissionService constructs an AdmissionService.
func NewAdmissionService(store Store) *AdmissionService {
	if store == nil {
		panic("nil store passed to NewAdmissionService")
	}
	return &AdmissionService{store: store}
}

// Register runs the admission workflow for one attempt.  Checks run in
// a fixed order, each short-circuiting with its own error: event
// existence, duplicate registration, temporal cutoff, capacity.  On
// success the registration, the incremented counter and the pending
// notification are committed together and a personalized confirmation
// message is returned.  The races the pre-checks cannot close (two
// concurrent duplicates, two claims on the last seat) are closed by
// the store's unique key and conditional increment, and surface as the
// same errors.
func (s *AdmissionService) Register(ctx context.Context, name, email string, eventID uint64) (string, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || eventID == 0 {
		return "", ErrMissingFields
	}

	ev, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return "", err
	}

	exists, err := s.store.HasRegistration(ctx, email, eventID)
	if err != nil {
		return "", err
	}
	if exists {
		return "", ErrAlreadyRegistered
	}

	if registrationClosed(ev.Date, time.Now().UTC()) {
		return "", ErrRegistrationClosed
	}

	png, err := ticket.Generate(ticket.Code(email, eventID))
	if err != nil {
		return "", err
	}

	reg := &model.Registration{
		Name:    name,
		Email:   email,
		EventID: eventID,
		Ticket:  png,
	}
	if err := s.store.Admit(ctx, reg); err != nil {
		return "", err
	}

	return fmt.Sprintf("%s, your ticket is on its way to %s!", name, email), nil
}

// registrationClosed reports whether the registration window for an
// event date has passed.  Dates are timezone-less calendar days
// ("YYYY-MM-DD") compared against the current UTC day; registration
// stays open on the event day itself and closes the day after.  A date
// that does not parse never closes registration, matching how the
// original system treated malformed dates.
func registrationClosed(date string, now time.Time) bool {
	d, err := time.Parse("2006-01-02", strings.TrimSpace(date))
	if err != nil {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return d.Before(today)
}
