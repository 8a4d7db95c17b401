package model

import (
	"time"
)

// Reservation statuses. PENDING reservations may overlap freely; at most one
// non-deleted APPROVED reservation can cover any given day of an accommodation.
const (
	StatusPending   = "PENDING"
	StatusApproved  = "APPROVED"
	StatusRejected  = "REJECTED"
	StatusCancelled = "CANCELLED"
)

type Reservation struct {
	ID              string    `json:"id,omitempty" bson:"_id,omitempty"`
	AccommodationID string    `json:"accommodation_id" bson:"accommodation_id"`
	GuestID         string    `json:"guest_id" bson:"guest_id"`
	HostID          string    `json:"host_id" bson:"host_id"`
	StartDate       Date      `json:"start_date" bson:"start_date"`
	EndDate         Date      `json:"end_date" bson:"end_date"`
	GuestCount      int       `json:"guest_count" bson:"guest_count"`
	TotalPrice      float64   `json:"total_price" bson:"total_price"`
	Status          string    `json:"status" bson:"status"`
	Deleted         bool      `json:"-" bson:"deleted"`
	CreatedAt       time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" bson:"updated_at"`
}

// OverlapsRange reports whether the reservation's stay shares at least one
// day with [start, end).
func (r *Reservation) OverlapsRange(start, end Date) bool {
	return Overlaps(r.StartDate, r.EndDate, start, end)
}

type CreateReservationRequest struct {
	AccommodationID string `json:"accommodation_id" validate:"required"`
	StartDate       Date   `json:"start_date" validate:"required"`
	EndDate         Date   `json:"end_date" validate:"required"`
	GuestCount      int    `json:"guest_count" validate:"required,min=1"`
}

// HostReservation is a reservation as seen by the host when reviewing
// requests, enriched with how often the guest has cancelled before.
type HostReservation struct {
	Reservation
	GuestCancellationCount int64 `json:"guest_cancellation_count"`
}

// UserContext identifies the authenticated caller of an operation.
type UserContext struct {
	UserID string
	Role   string
}

// DeletionCheck answers whether a user account can be removed given their
// outstanding reservations.
type DeletionCheck struct {
	CanBeDeleted           bool   `json:"can_be_deleted"`
	ActiveReservationCount int64  `json:"active_reservation_count"`
	Reason                 string `json:"reason,omitempty"`
}

// AvailabilityCheck reports whether any approved reservation overlaps a
// queried date range.
type AvailabilityCheck struct {
	HasReservations bool `json:"has_reservations"`
}
