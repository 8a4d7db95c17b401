package repository

import (
	"context"
	"errors"
	"fmt"
	reservationerrors "staybook/internal/reservations/errors"
	"staybook/pkg/config"
	mongotx "staybook/pkg/db/mongo"
	"staybook/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Reservations"
)

type mongoReservationRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type ReservationRepository interface {
	Create(ctx context.Context, reservation *model.Reservation) error
	FindByID(ctx context.Context, id string) (*model.Reservation, error)
	FindByGuest(ctx context.Context, guestID string) ([]*model.Reservation, error)
	FindByHost(ctx context.Context, hostID string) ([]*model.Reservation, error)
	FindOverlappingByStatus(ctx context.Context, accommodationID string, start, end model.Date, status string, excludeID string) ([]*model.Reservation, error)
	CountByGuestAndStatus(ctx context.Context, guestID string, status string) (int64, error)
	CountActiveForGuest(ctx context.Context, guestID string) (int64, error)
	CountActiveForHost(ctx context.Context, hostID string) (int64, error)
	UpdateStatus(ctx context.Context, id string, status string) error
	UpdateStatusMany(ctx context.Context, ids []string, status string) (int64, error)
	SoftDelete(ctx context.Context, id string) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoReservationRepository(cfg *config.Config) ReservationRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoReservationRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout if not already in a transaction.
// When inside a transaction (SessionContext), returns the original context
// unchanged with a no-op cancel function, as we cannot wrap SessionContext
// without breaking transaction semantics.
func (r *mongoReservationRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

// notDeleted excludes soft-deleted reservations from a filter.
func notDeleted(filter bson.M) bson.M {
	filter["deleted"] = bson.M{"$ne": true}
	return filter
}

func (r *mongoReservationRepository) Create(ctx context.Context, reservation *model.Reservation) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	reservation.CreatedAt = now
	reservation.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, reservation)
	if err != nil {
		return fmt.Errorf("failed to create reservation: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		reservation.ID = oid.Hex()
	}
	return nil
}

func (r *mongoReservationRepository) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", reservationerrors.ErrInvalidID, id)
	}

	filter := notDeleted(bson.M{"_id": objectID})

	var reservation model.Reservation
	err = r.collection.FindOne(ctx, filter).Decode(&reservation)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, reservationerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find reservation: %w", err)
	}

	return &reservation, nil
}

func (r *mongoReservationRepository) FindByGuest(ctx context.Context, guestID string) ([]*model.Reservation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := notDeleted(bson.M{"guest_id": guestID})
	return r.findSorted(ctx, filter)
}

func (r *mongoReservationRepository) FindByHost(ctx context.Context, hostID string) ([]*model.Reservation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := notDeleted(bson.M{"host_id": hostID})
	return r.findSorted(ctx, filter)
}

// FindOverlappingByStatus returns non-deleted reservations of the given
// status whose [start_date, end_date) range shares at least one day with
// [start, end). Pass excludeID to skip a reservation by its own ID.
func (r *mongoReservationRepository) FindOverlappingByStatus(
	ctx context.Context,
	accommodationID string,
	start, end model.Date,
	status string,
	excludeID string,
) ([]*model.Reservation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := notDeleted(bson.M{
		"accommodation_id": accommodationID,
		"status":           status,
		"start_date":       bson.M{"$lt": end},
		"end_date":         bson.M{"$gt": start},
	})

	if excludeID != "" {
		objectID, err := primitive.ObjectIDFromHex(excludeID)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", reservationerrors.ErrInvalidID, excludeID)
		}
		filter["_id"] = bson.M{"$ne": objectID}
	}

	return r.findSorted(ctx, filter)
}

func (r *mongoReservationRepository) CountByGuestAndStatus(ctx context.Context, guestID string, status string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := notDeleted(bson.M{
		"guest_id": guestID,
		"status":   status,
	})

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count reservations by guest and status: %w", err)
	}
	return count, nil
}

func (r *mongoReservationRepository) CountActiveForGuest(ctx context.Context, guestID string) (int64, error) {
	return r.countActive(ctx, bson.M{"guest_id": guestID})
}

func (r *mongoReservationRepository) CountActiveForHost(ctx context.Context, hostID string) (int64, error) {
	return r.countActive(ctx, bson.M{"host_id": hostID})
}

// countActive counts reservations that still block account deletion: those
// pending or approved whose stay has not yet ended.
func (r *mongoReservationRepository) countActive(ctx context.Context, filter bson.M) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter = notDeleted(filter)
	filter["status"] = bson.M{"$in": []string{model.StatusPending, model.StatusApproved}}
	filter["end_date"] = bson.M{"$gt": model.Today()}

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count active reservations: %w", err)
	}
	return count, nil
}

func (r *mongoReservationRepository) UpdateStatus(ctx context.Context, id string, status string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", reservationerrors.ErrInvalidID, id)
	}

	filter := notDeleted(bson.M{"_id": objectID})
	update := bson.M{
		"$set": bson.M{
			"status":     status,
			"updated_at": time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update reservation status: %w", err)
	}

	if result.MatchedCount == 0 {
		return reservationerrors.ErrNotFound
	}

	return nil
}

// UpdateStatusMany sets the status of every reservation in ids in one batch
// write. Returns the number of documents modified.
func (r *mongoReservationRepository) UpdateStatusMany(ctx context.Context, ids []string, status string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		objectID, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return 0, fmt.Errorf("%w: %s", reservationerrors.ErrInvalidID, id)
		}
		objectIDs = append(objectIDs, objectID)
	}

	filter := notDeleted(bson.M{"_id": bson.M{"$in": objectIDs}})
	update := bson.M{
		"$set": bson.M{
			"status":     status,
			"updated_at": time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to update reservation statuses: %w", err)
	}

	return result.ModifiedCount, nil
}

func (r *mongoReservationRepository) SoftDelete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", reservationerrors.ErrInvalidID, id)
	}

	filter := notDeleted(bson.M{"_id": objectID})
	update := bson.M{
		"$set": bson.M{
			"deleted":    true,
			"updated_at": time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to delete reservation: %w", err)
	}

	if result.MatchedCount == 0 {
		return reservationerrors.ErrNotFound
	}

	return nil
}

func (r *mongoReservationRepository) findSorted(ctx context.Context, filter bson.M) ([]*model.Reservation, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "start_date", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find reservations: %w", err)
	}
	defer cursor.Close(ctx)

	var reservations []*model.Reservation
	if err = cursor.All(ctx, &reservations); err != nil {
		return nil, fmt.Errorf("failed to decode reservations: %w", err)
	}

	return reservations, nil
}

func (r *mongoReservationRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
