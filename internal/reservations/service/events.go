package service

import (
	"context"
	"staybook/pkg/client"
	"staybook/pkg/kafka"
	"staybook/pkg/logger"
	"staybook/pkg/model"
)

// Event types carried in the message headers, shared with the notification
// service.
const (
	EventTypeReservationCreated   = "reservation.created"
	EventTypeReservationDecision  = "reservation.decision"
	EventTypeReservationCancelled = "reservation.cancelled"

	eventSource = "reservation-service"
)

// Decision outcomes as the notification service expects them.
const (
	DecisionApproved = "APPROVED"
	DecisionDeclined = "DECLINED"
)

// MessagePublisher is the slice of the Kafka producer the event publisher
// needs.
type MessagePublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
	Topic() string
}

// UserDirectory resolves user contact details for notifications.
type UserDirectory interface {
	Summary(ctx context.Context, userID string) (*client.UserSummary, error)
}

// EventPublisher notifies the outside world about reservation lifecycle
// changes. Publishing is best-effort: a reservation state change must never
// fail because a notification could not be sent, so none of these methods
// return an error.
type EventPublisher interface {
	ReservationCreated(ctx context.Context, reservation *model.Reservation, accommodationName string)
	ReservationDecision(ctx context.Context, reservation *model.Reservation, decision string)
	ReservationCancelled(ctx context.Context, reservation *model.Reservation, accommodationName string)
}

// ReservationCreatedEvent tells the host a new request awaits review.
type ReservationCreatedEvent struct {
	ReservationID     string  `json:"reservation_id"`
	AccommodationID   string  `json:"accommodation_id"`
	AccommodationName string  `json:"accommodation_name"`
	GuestID           string  `json:"guest_id"`
	GuestName         string  `json:"guest_name"`
	HostID            string  `json:"host_id"`
	HostEmail         string  `json:"host_email"`
	StartDate         string  `json:"start_date"`
	EndDate           string  `json:"end_date"`
	GuestCount        int     `json:"guest_count"`
	TotalPrice        float64 `json:"total_price"`
	Status            string  `json:"status"`
}

// ReservationDecisionEvent tells the guest their request was approved or
// declined.
type ReservationDecisionEvent struct {
	ReservationID   string `json:"reservation_id"`
	AccommodationID string `json:"accommodation_id"`
	GuestID         string `json:"guest_id"`
	GuestEmail      string `json:"guest_email"`
	GuestName       string `json:"guest_name"`
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date"`
	Status          string `json:"status"`
}

// ReservationCancelledEvent tells the host a confirmed stay was called off.
type ReservationCancelledEvent struct {
	ReservationID     string `json:"reservation_id"`
	AccommodationID   string `json:"accommodation_id"`
	AccommodationName string `json:"accommodation_name"`
	HostID            string `json:"host_id"`
	HostEmail         string `json:"host_email"`
	HostName          string `json:"host_name"`
	GuestName         string `json:"guest_name"`
	StartDate         string `json:"start_date"`
	EndDate           string `json:"end_date"`
}

type kafkaEventPublisher struct {
	created   MessagePublisher
	decision  MessagePublisher
	cancelled MessagePublisher
	users     UserDirectory
	log       *logger.Logger
}

func NewKafkaEventPublisher(
	created MessagePublisher,
	decision MessagePublisher,
	cancelled MessagePublisher,
	users UserDirectory,
	log *logger.Logger,
) EventPublisher {
	return &kafkaEventPublisher{
		created:   created,
		decision:  decision,
		cancelled: cancelled,
		users:     users,
		log:       log,
	}
}

func (p *kafkaEventPublisher) ReservationCreated(ctx context.Context, reservation *model.Reservation, accommodationName string) {
	host, ok := p.lookupUser(ctx, reservation, reservation.HostID, EventTypeReservationCreated)
	if !ok {
		return
	}
	guest, ok := p.lookupUser(ctx, reservation, reservation.GuestID, EventTypeReservationCreated)
	if !ok {
		return
	}

	event := ReservationCreatedEvent{
		ReservationID:     reservation.ID,
		AccommodationID:   reservation.AccommodationID,
		AccommodationName: accommodationName,
		GuestID:           reservation.GuestID,
		GuestName:         guest.FullName(),
		HostID:            reservation.HostID,
		HostEmail:         host.Email,
		StartDate:         reservation.StartDate.String(),
		EndDate:           reservation.EndDate.String(),
		GuestCount:        reservation.GuestCount,
		TotalPrice:        reservation.TotalPrice,
		Status:            reservation.Status,
	}

	p.publish(ctx, p.created, reservation.ID, EventTypeReservationCreated, event)
}

func (p *kafkaEventPublisher) ReservationDecision(ctx context.Context, reservation *model.Reservation, decision string) {
	guest, ok := p.lookupUser(ctx, reservation, reservation.GuestID, EventTypeReservationDecision)
	if !ok {
		return
	}

	event := ReservationDecisionEvent{
		ReservationID:   reservation.ID,
		AccommodationID: reservation.AccommodationID,
		GuestID:         reservation.GuestID,
		GuestEmail:      guest.Email,
		GuestName:       guest.FullName(),
		StartDate:       reservation.StartDate.String(),
		EndDate:         reservation.EndDate.String(),
		Status:          decision,
	}

	p.publish(ctx, p.decision, reservation.ID, EventTypeReservationDecision, event)
}

func (p *kafkaEventPublisher) ReservationCancelled(ctx context.Context, reservation *model.Reservation, accommodationName string) {
	host, ok := p.lookupUser(ctx, reservation, reservation.HostID, EventTypeReservationCancelled)
	if !ok {
		return
	}
	guest, ok := p.lookupUser(ctx, reservation, reservation.GuestID, EventTypeReservationCancelled)
	if !ok {
		return
	}

	event := ReservationCancelledEvent{
		ReservationID:     reservation.ID,
		AccommodationID:   reservation.AccommodationID,
		AccommodationName: accommodationName,
		HostID:            reservation.HostID,
		HostEmail:         host.Email,
		HostName:          host.FullName(),
		GuestName:         guest.FullName(),
		StartDate:         reservation.StartDate.String(),
		EndDate:           reservation.EndDate.String(),
	}

	p.publish(ctx, p.cancelled, reservation.ID, EventTypeReservationCancelled, event)
}

// lookupUser resolves a user summary, logging and skipping the notification
// when the user cannot be found.
func (p *kafkaEventPublisher) lookupUser(ctx context.Context, reservation *model.Reservation, userID, eventType string) (*client.UserSummary, bool) {
	summary, err := p.users.Summary(ctx, userID)
	if err != nil {
		p.log.Warn("Skipping notification, user lookup failed",
			"event_type", eventType,
			"reservation_id", reservation.ID,
			"user_id", userID,
			"error", err,
		)
		return nil, false
	}
	if !summary.Found {
		p.log.Warn("Skipping notification, user not found",
			"event_type", eventType,
			"reservation_id", reservation.ID,
			"user_id", userID,
		)
		return nil, false
	}
	return summary, true
}

func (p *kafkaEventPublisher) publish(ctx context.Context, producer MessagePublisher, key, eventType string, payload any) {
	msg := kafka.NewMessage().
		WithKey(key).
		WithValue(payload).
		WithEventType(eventType).
		WithSource(eventSource).
		Build()

	if err := producer.Publish(ctx, msg); err != nil {
		p.log.Error("Failed to publish reservation event",
			"event_type", eventType,
			"topic", producer.Topic(),
			"reservation_id", key,
			"error", err,
		)
		return
	}

	p.log.Debug("Reservation event published",
		"event_type", eventType,
		"topic", producer.Topic(),
		"reservation_id", key,
	)
}
