package model

import "time"

// Registration records that a given email address holds a seat for an
// event.  The (Email, EventID) pair is unique; the uniqueness is
// enforced by the database so concurrent duplicate attempts cannot
// both succeed.  EventID is a weak reference: deleting an event does
// not delete its registrations.
//
// Ticket holds the PNG bytes of the QR code encoding the ticket code
// ("email-eventId").  It is never serialized in list responses; the
// attendee receives it by email.
type Registration struct {
	ID        uint64    `json:"id"`        // registrations.id
	Name      string    `json:"name"`      // registrations.name
	Email     string    `json:"email"`     // registrations.email
	EventID   uint64    `json:"eventId"`   // registrations.event_id
	Ticket    []byte    `json:"-"`         // registrations.ticket (QR PNG)
	Attended  bool      `json:"attended"`  // registrations.attended, set by check-in
	CreatedAt time.Time `json:"createdAt"` // registrations.created_at
}
