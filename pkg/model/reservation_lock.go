package model

import "time"

// ReservationLock is an advisory lock document keyed per accommodation. It
// serializes the check-and-write sequence of reservation creation and
// approval so two concurrent requests cannot both pass the overlap check.
type ReservationLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
