package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// AssignmentCreatedEvent is the fire-and-forget payload published when a new
// assignment is created. Delivery is neither awaited nor verified.
type AssignmentCreatedEvent struct {
	AssignmentID uint      `json:"assignment_id"`
	Title        string    `json:"title"`
	ClassID      uint      `json:"class_id"`
	ClassName    string    `json:"class_name"`
	Recipients   []uint    `json:"recipients"`
	SentAt       time.Time `json:"sent_at"`
}

// Notifier delivers events to the notification collaborator.
type Notifier interface {
	AssignmentCreated(ctx context.Context, event AssignmentCreatedEvent) error
}

type natsNotifier struct {
	conn    *nats.Conn
	subject string
	logger  zerolog.Logger
}

// NewNATSNotifier publishes events onto a NATS subject. A nil connection
// yields a notifier that drops events, keeping local setups broker-free.
func NewNATSNotifier(conn *nats.Conn, subject string, logger zerolog.Logger) Notifier {
	return &natsNotifier{
		conn:    conn,
		subject: subject,
		logger:  logger.With().Str("component", "nats_notifier").Logger(),
	}
}

func (n *natsNotifier) AssignmentCreated(_ context.Context, event AssignmentCreatedEvent) error {
	if n.conn == nil || n.subject == "" {
		n.logger.Debug().Uint("assignment_id", event.AssignmentID).Msg("notifier disabled, dropping event")
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return n.conn.Publish(n.subject, payload)
}
