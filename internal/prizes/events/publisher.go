package events

import (
	"context"
	"time"

	"giveaway/pkg/kafka"
	"giveaway/pkg/logger"
	"giveaway/pkg/model"
)

const (
	TypeReserved  = "reservation.reserved"
	TypeConfirmed = "reservation.confirmed"
	TypeReleased  = "reservation.released"
)

// Event describes a reservation lifecycle change for downstream consumers
// (notification senders, analytics, the export pipeline).
type Event struct {
	Type          string    `json:"type"`
	ReservationID string    `json:"reservation_id"`
	IdentityToken string    `json:"identity_token"`
	PrizeID       string    `json:"prize_id"`
	Status        string    `json:"status"`
	Reason        string    `json:"reason,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func FromReservation(eventType string, reservation *model.Reservation, reason string) Event {
	return Event{
		Type:          eventType,
		ReservationID: reservation.ID,
		IdentityToken: reservation.IdentityToken,
		PrizeID:       reservation.PrizeID,
		Status:        reservation.Status,
		Reason:        reason,
		OccurredAt:    time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

type kafkaPublisher struct {
	producer *kafka.Producer
	source   string
	log      *logger.Logger
}

func NewKafkaPublisher(producer *kafka.Producer, source string, log *logger.Logger) Publisher {
	return &kafkaPublisher{
		producer: producer,
		source:   source,
		log:      log,
	}
}

func (p *kafkaPublisher) Publish(ctx context.Context, event Event) error {
	msg := kafka.NewMessage().
		WithKey(event.ReservationID).
		WithValue(event).
		WithEventType(event.Type).
		WithSource(p.source).
		Build()

	if err := p.producer.Publish(ctx, msg); err != nil {
		p.log.Error("Failed to publish reservation event",
			"type", event.Type,
			"reservation_id", event.ReservationID,
			"error", err,
		)
		return err
	}

	return nil
}

func (p *kafkaPublisher) Close() error {
	return p.producer.Close()
}

// NoopPublisher is used when Kafka is disabled and in tests.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, event Event) error { return nil }
func (NoopPublisher) Close() error                                   { return nil }
