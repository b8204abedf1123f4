// Package notify delivers ticket emails over SMTP.
package notify

import (
	"errors"
	"fmt"
	"io"
	"time"

	gomail "gopkg.in/gomail.v2"
)

// ErrDeliveryTimeout is returned when an SMTP send does not complete
// within the mailer's timeout.  It is distinct from permanent SMTP
// failures so callers can treat it as transient.
var ErrDeliveryTimeout = errors.New("notify: delivery timed out")

// Mailer sends ticket confirmation emails with the QR image attached.
type Mailer struct {
	dialer  *gomail.Dialer
	from    string
	timeout time.Duration
}

// NewMailer constructs a Mailer for the given SMTP endpoint.  Sends
// are bounded by a 15 second timeout.
func NewMailer(host string, port int, username, password, from string) *Mailer {
	return &Mailer{
		dialer:  gomail.NewDialer(host, port, username, password),
		from:    from,
		timeout: 15 * time.Second,
	}
}

// SendTicket emails the registrant their QR ticket as a ticket.png
// attachment.  A send exceeding the timeout returns ErrDeliveryTimeout;
// the SMTP connection is abandoned to its own devices in that case.
func (m *Mailer) SendTicket(to, name, eventName, eventDate string, png []byte) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Your Event Ticket")
	msg.SetBody("text/html", ticketBody(name, eventName, eventDate))
	msg.Attach("ticket.png", gomail.SetCopyFunc(func(w io.Writer) error {
		_, err := w.Write(png)
		return err
	}))

	done := make(chan error, 1)
	go func() { done <- m.dialer.DialAndSend(msg) }()
	select {
	case err := <-done:
		return err
	case <-time.After(m.timeout):
		return ErrDeliveryTimeout
	}
}

func ticketBody(name, eventName, eventDate string) string {
	if eventName == "" {
		eventName = "your event"
	}
	body := fmt.Sprintf("<p>Hi %s,</p><p>Your registration for <b>%s</b>", name, eventName)
	if eventDate != "" {
		body += fmt.Sprintf(" on %s", eventDate)
	}
	body += " is confirmed. Your ticket is attached &mdash; present the QR code at the entrance.</p>"
	return body
}
