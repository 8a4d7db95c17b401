package repository

import (
	"context"
	"fmt"

	"staybook/pkg/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// The compound index serves FindOverlappingByStatus; the secondary ones
	// serve the per-guest and per-host listings.
	ReservationIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "accommodation_id", Value: 1},
			{Key: "status", Value: 1},
			{Key: "start_date", Value: 1},
			{Key: "end_date", Value: 1},
		}},
		{Keys: bson.D{
			{Key: "guest_id", Value: 1},
			{Key: "start_date", Value: 1},
		}},
		{Keys: bson.D{
			{Key: "host_id", Value: 1},
			{Key: "start_date", Value: 1},
		}},
	}

	// The TTL index reclaims advisory lock documents whose holder crashed
	// before deleting them. expireAfterSeconds of 0 expires each document at
	// its own expires_at.
	ReservationLockIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}
)

// EnsureIndexes provisions the indexes the repositories rely on. CreateMany
// is idempotent, so this runs on every startup.
func EnsureIndexes(ctx context.Context, cfg *config.Config) error {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)

	collections := map[string][]mongo.IndexModel{
		CollectionName:     ReservationIndexes,
		LockCollectionName: ReservationLockIndexes,
	}

	for name, models := range collections {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
		cfg.Log.Info("Ensured indexes", "collection", name, "indexes", len(models))
	}

	return nil
}
