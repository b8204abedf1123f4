// Package ticket generates the QR-coded ticket artifact issued to a
// registrant.  The ticket code is the deterministic concatenation of
// the registrant's email and the event ID; it is reproducible and not
// secret, which is acceptable because it is only delivered privately
// by email.
package ticket

import (
	"errors"
	"strconv"

	qrcode "github.com/skip2/go-qrcode"
)

// ErrEmptyCode is returned when an empty identifier is passed to
// Generate.  It is the generator's only failure mode besides encoder
// errors for oversized input.
var ErrEmptyCode = errors.New("ticket: empty code")

// pngSize is the edge length in pixels of the generated QR image.
const pngSize = 256

// Code derives the ticket identifier for a registration.
func Code(email string, eventID uint64) string {
	return email + "-" + strconv.FormatUint(eventID, 10)
}

// Generate encodes the given code into a PNG QR image.  It is pure and
// deterministic: the same code always yields the same bytes.
func Generate(code string) ([]byte, error) {
	if code == "" {
		return nil, ErrEmptyCode
	}
	return qrcode.Encode(code, qrcode.Medium, pngSize)
}
