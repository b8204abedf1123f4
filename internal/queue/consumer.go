// Package queue contains the background consumer that listens to the
// ticket.issued queue and emails the QR ticket to the registrant.
package queue

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// TicketMailer delivers a ticket email with the QR image attached.
// Implementations must bound the send with a timeout.
type TicketMailer interface {
	SendTicket(to, name, eventName, eventDate string, png []byte) error
}

// StartTicketConsumer connects to RabbitMQ, declares the ticket.issued
// queue (durable), and starts consuming messages.  Each message
// results in one email send.  The function runs a reconnect loop with
// exponential backoff and keeps running indefinitely; processing
// errors are logged and the message is requeued once before being
// dropped, since the outbox resend endpoint can always re-issue a
// lost notification.
func StartTicketConsumer(url string, mailer TicketMailer) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("ticket-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn, mailer); err != nil {
			log.Printf("ticket-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
			continue
		}
	}
}

func consumeLoop(conn *amqp.Connection, mailer TicketMailer) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(10, 0, false); err != nil {
		log.Printf("ticket-consumer: set QoS failed: %v", err)
	}

	_, err = ch.QueueDeclare(ticketQueueName, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(ticketQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleMessage(d.Body, mailer); err != nil {
			log.Printf("ticket-consumer: handle message failed: %v", err)
			// One redelivery, then drop; tight retry loops help nobody
			// and the resend endpoint covers the rest.
			_ = d.Nack(false, !d.Redelivered)
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func handleMessage(body []byte, mailer TicketMailer) error {
	var ev TicketIssuedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	png, err := base64.StdEncoding.DecodeString(ev.TicketPNG)
	if err != nil {
		return fmt.Errorf("decode ticket: %w", err)
	}
	if err := mailer.SendTicket(ev.Email, ev.Name, ev.EventName, ev.EventDate, png); err != nil {
		return fmt.Errorf("send ticket to %s: %w", ev.Email, err)
	}
	log.Printf("ticket-consumer: ticket delivered | registration_id=%d | email=%s | event=%q",
		ev.RegistrationID, ev.Email, ev.EventName)
	return nil
}
