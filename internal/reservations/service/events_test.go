package service

import (
	"context"
	"errors"
	"testing"

	"staybook/pkg/client"
	"staybook/pkg/kafka"
	"staybook/pkg/logger"
	"staybook/pkg/model"
)

type mockProducer struct {
	topic      string
	published  []kafka.Message
	publishErr error
}

func (m *mockProducer) Publish(ctx context.Context, msg kafka.Message) error {
	if m.publishErr != nil {
		return m.publishErr
	}
	m.published = append(m.published, msg)
	return nil
}

func (m *mockProducer) Topic() string {
	return m.topic
}

type mockUserDirectory struct {
	summaries map[string]*client.UserSummary
	err       error
}

func (m *mockUserDirectory) Summary(ctx context.Context, userID string) (*client.UserSummary, error) {
	if m.err != nil {
		return nil, m.err
	}
	if summary, ok := m.summaries[userID]; ok {
		return summary, nil
	}
	return &client.UserSummary{Found: false, UserID: userID}, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
}

func knownUsers() *mockUserDirectory {
	return &mockUserDirectory{
		summaries: map[string]*client.UserSummary{
			"guest-1": {Found: true, UserID: "guest-1", Email: "ana@example.com", FirstName: "Ana", LastName: "Petrovic"},
			"host-1":  {Found: true, UserID: "host-1", Email: "marko@example.com", FirstName: "Marko", LastName: "Ilic"},
		},
	}
}

func sampleReservation() *model.Reservation {
	return &model.Reservation{
		ID:              "res-1",
		AccommodationID: "acc-1",
		GuestID:         "guest-1",
		HostID:          "host-1",
		StartDate:       model.Today().AddDays(7),
		EndDate:         model.Today().AddDays(10),
		GuestCount:      2,
		TotalPrice:      500,
		Status:          model.StatusPending,
	}
}

func TestReservationCreated_PublishesEvent(t *testing.T) {
	created := &mockProducer{topic: "reservation-created"}
	publisher := NewKafkaEventPublisher(created, &mockProducer{}, &mockProducer{}, knownUsers(), testLogger())

	publisher.ReservationCreated(context.Background(), sampleReservation(), "Seaside Cabin")

	if len(created.published) != 1 {
		t.Fatalf("expected 1 published message, got %d", len(created.published))
	}

	msg := created.published[0]
	if msg.Key != "res-1" {
		t.Errorf("expected key res-1, got %s", msg.Key)
	}
	if msg.GetEventType() != EventTypeReservationCreated {
		t.Errorf("expected event type %s, got %s", EventTypeReservationCreated, msg.GetEventType())
	}
	if msg.GetEventID() == "" {
		t.Error("expected a generated event id")
	}

	var event ReservationCreatedEvent
	if err := msg.DecodeValue(&event); err != nil {
		t.Fatalf("failed to decode event: %v", err)
	}
	if event.HostEmail != "marko@example.com" {
		t.Errorf("expected host email, got %s", event.HostEmail)
	}
	if event.GuestName != "Ana Petrovic" {
		t.Errorf("expected guest name, got %s", event.GuestName)
	}
	if event.AccommodationName != "Seaside Cabin" {
		t.Errorf("expected accommodation name, got %s", event.AccommodationName)
	}
}

func TestReservationCreated_SkipsWhenHostMissing(t *testing.T) {
	created := &mockProducer{topic: "reservation-created"}
	users := &mockUserDirectory{
		summaries: map[string]*client.UserSummary{
			"guest-1": {Found: true, UserID: "guest-1", Email: "ana@example.com"},
		},
	}
	publisher := NewKafkaEventPublisher(created, &mockProducer{}, &mockProducer{}, users, testLogger())

	publisher.ReservationCreated(context.Background(), sampleReservation(), "Seaside Cabin")

	if len(created.published) != 0 {
		t.Errorf("expected no message when host is unknown, got %d", len(created.published))
	}
}

func TestReservationDecision_PublishesEvent(t *testing.T) {
	decision := &mockProducer{topic: "reservation-decision"}
	publisher := NewKafkaEventPublisher(&mockProducer{}, decision, &mockProducer{}, knownUsers(), testLogger())

	publisher.ReservationDecision(context.Background(), sampleReservation(), DecisionDeclined)

	if len(decision.published) != 1 {
		t.Fatalf("expected 1 published message, got %d", len(decision.published))
	}

	var event ReservationDecisionEvent
	if err := decision.published[0].DecodeValue(&event); err != nil {
		t.Fatalf("failed to decode event: %v", err)
	}
	if event.Status != DecisionDeclined {
		t.Errorf("expected status DECLINED, got %s", event.Status)
	}
	if event.GuestEmail != "ana@example.com" {
		t.Errorf("expected guest email, got %s", event.GuestEmail)
	}
}

func TestReservationDecision_SkipsOnLookupFailure(t *testing.T) {
	decision := &mockProducer{topic: "reservation-decision"}
	users := &mockUserDirectory{err: errors.New("user service down")}
	publisher := NewKafkaEventPublisher(&mockProducer{}, decision, &mockProducer{}, users, testLogger())

	publisher.ReservationDecision(context.Background(), sampleReservation(), DecisionApproved)

	if len(decision.published) != 0 {
		t.Errorf("expected no message on lookup failure, got %d", len(decision.published))
	}
}

func TestReservationCancelled_PublishesEvent(t *testing.T) {
	cancelled := &mockProducer{topic: "reservation-cancelled"}
	publisher := NewKafkaEventPublisher(&mockProducer{}, &mockProducer{}, cancelled, knownUsers(), testLogger())

	publisher.ReservationCancelled(context.Background(), sampleReservation(), "Seaside Cabin")

	if len(cancelled.published) != 1 {
		t.Fatalf("expected 1 published message, got %d", len(cancelled.published))
	}

	var event ReservationCancelledEvent
	if err := cancelled.published[0].DecodeValue(&event); err != nil {
		t.Fatalf("failed to decode event: %v", err)
	}
	if event.HostEmail != "marko@example.com" {
		t.Errorf("expected host email, got %s", event.HostEmail)
	}
	if event.GuestName != "Ana Petrovic" {
		t.Errorf("expected guest name, got %s", event.GuestName)
	}
}

func TestPublish_BrokerFailureIsSwallowed(t *testing.T) {
	decision := &mockProducer{topic: "reservation-decision", publishErr: errors.New("broker unreachable")}
	publisher := NewKafkaEventPublisher(&mockProducer{}, decision, &mockProducer{}, knownUsers(), testLogger())

	// Must not panic or propagate the failure.
	publisher.ReservationDecision(context.Background(), sampleReservation(), DecisionApproved)
}
