package model

import "time"

// Event represents a capacity-limited event that attendees can
// register for.  The registered-users counter is maintained by the
// admission workflow and never exceeds the seat limit.
//
// Fields:
//  ID              – primary key identifier.
//  Name            – display name of the event.
//  Date            – calendar date of the event ("YYYY-MM-DD", no
//                    time zone; compared against the current UTC day).
//  Description     – free-form description shown to attendees.
//  SeatLimit       – maximum number of registrations accepted.
//  RegisteredUsers – how many registrations exist; 0 on creation and
//                    incremented by each successful admission.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type Event struct {
	ID              uint64    `json:"id"`              // events.id
	Name            string    `json:"name"`            // events.name
	Date            string    `json:"date"`            // events.date ("YYYY-MM-DD")
	Description     string    `json:"description"`     // events.description
	SeatLimit       uint32    `json:"seatLimit"`       // events.seat_limit
	RegisteredUsers uint32    `json:"registeredUsers"` // events.registered_users
	CreatedAt       time.Time `json:"-"`               // events.created_at
	UpdatedAt       time.Time `json:"-"`               // events.updated_at
}
