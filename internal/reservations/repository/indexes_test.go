package repository

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestReservationLockIndexes_TTLOnExpiresAt(t *testing.T) {
	if len(ReservationLockIndexes) != 1 {
		t.Fatalf("expected 1 lock index, got %d", len(ReservationLockIndexes))
	}
	idx := ReservationLockIndexes[0]

	keys, ok := idx.Keys.(bson.D)
	if !ok || len(keys) != 1 || keys[0].Key != "expires_at" {
		t.Fatalf("expected single-key index on expires_at, got %v", idx.Keys)
	}
	if idx.Options == nil || idx.Options.ExpireAfterSeconds == nil {
		t.Fatal("expires_at index must carry a TTL option, or stale locks are never reclaimed")
	}
	if *idx.Options.ExpireAfterSeconds != 0 {
		t.Errorf("expected expireAfterSeconds 0, got %d", *idx.Options.ExpireAfterSeconds)
	}
}

func TestReservationIndexes_CoverOverlapQuery(t *testing.T) {
	want := []string{"accommodation_id", "status", "start_date", "end_date"}

	keys, ok := ReservationIndexes[0].Keys.(bson.D)
	if !ok || len(keys) != len(want) {
		t.Fatalf("expected compound index over %v, got %v", want, ReservationIndexes[0].Keys)
	}
	for i, field := range want {
		if keys[i].Key != field {
			t.Errorf("expected key %d to be %s, got %s", i, field, keys[i].Key)
		}
	}
}
