package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	prizeserrors "giveaway/internal/prizes/errors"
	"giveaway/pkg/config"
	"giveaway/pkg/model"
)

const (
	ReservationCollectionName = "Reservations"
)

// ReservationStore holds the durable record of every claim. Records are never
// deleted; status moves reserved -> confirmed|released through a conditional
// update that only one concurrent caller can win.
type ReservationStore interface {
	Create(ctx context.Context, reservation *model.Reservation) error
	FindByID(ctx context.Context, id string) (*model.Reservation, error)
	FindLiveByIdentity(ctx context.Context, identityToken string) (*model.Reservation, error)
	Transition(ctx context.Context, id string, to string) (*model.Reservation, error)
	FindExpiredReserved(ctx context.Context, cutoff time.Time, limit int) ([]*model.Reservation, error)
	Search(ctx context.Context, identity string, status string, limit int, offset int64) ([]*model.Reservation, error)
	CountBySearch(ctx context.Context, identity string, status string) (int64, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
	DistributionByPrize(ctx context.Context) (map[string]int64, error)
}

type mongoReservationStore struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoReservationStore(cfg *config.Config) ReservationStore {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoReservationStore{
		cfg:        cfg,
		collection: db.Collection(ReservationCollectionName),
	}
}

func (r *mongoReservationStore) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			return context.WithTimeout(ctx, remaining)
		}
	}
	return context.WithTimeout(ctx, timeout)
}

// Create persists a fresh reservation. Status is forced to reserved: there is
// no other entry point into the state machine.
func (r *mongoReservationStore) Create(ctx context.Context, reservation *model.Reservation) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if reservation.ID == "" {
		reservation.ID = uuid.NewString()
	}
	reservation.Status = model.StatusReserved

	now := time.Now().UTC().Truncate(time.Millisecond)
	reservation.CreatedAt = now
	reservation.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, reservation); err != nil {
		return fmt.Errorf("failed to create reservation: %w", err)
	}

	return nil
}

func (r *mongoReservationStore) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var reservation model.Reservation
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&reservation)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, prizeserrors.ErrReservationNotFound
		}
		return nil, fmt.Errorf("failed to find reservation: %w", err)
	}

	return &reservation, nil
}

func (r *mongoReservationStore) FindLiveByIdentity(ctx context.Context, identityToken string) (*model.Reservation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"identity_token": identityToken,
		"status":         bson.M{"$in": model.LiveStatuses},
	}

	var reservation model.Reservation
	err := r.collection.FindOne(ctx, filter).Decode(&reservation)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, prizeserrors.ErrReservationNotFound
		}
		return nil, fmt.Errorf("failed to find live reservation: %w", err)
	}

	return &reservation, nil
}

// Transition moves a reservation from reserved to the given terminal status.
// The filter pins the current status, so of any number of concurrent callers
// exactly one matches the document; the rest get the already-terminal state
// back as a typed error and must not touch the ledger.
func (r *mongoReservationStore) Transition(ctx context.Context, id string, to string) (*model.Reservation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if to != model.StatusConfirmed && to != model.StatusReleased {
		return nil, fmt.Errorf("invalid transition target: %s", to)
	}

	filter := bson.M{"_id": id, "status": model.StatusReserved}
	update := bson.M{
		"$set": bson.M{
			"status":     to,
			"updated_at": time.Now().UTC().Truncate(time.Millisecond),
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var reservation model.Reservation
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&reservation)
	if err == nil {
		return &reservation, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to transition reservation: %w", err)
	}

	// No reserved document matched: either the id is unknown or the record
	// is already terminal. Re-read to classify.
	existing, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	switch existing.Status {
	case model.StatusConfirmed:
		return existing, prizeserrors.ErrAlreadyConfirmed
	case model.StatusReleased:
		return existing, prizeserrors.ErrAlreadyReleased
	default:
		return nil, fmt.Errorf("reservation %s in unexpected status %s after failed transition", id, existing.Status)
	}
}

func (r *mongoReservationStore) FindExpiredReserved(ctx context.Context, cutoff time.Time, limit int) ([]*model.Reservation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"status":     model.StatusReserved,
		"created_at": bson.M{"$lt": cutoff},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find expired reservations: %w", err)
	}
	defer cursor.Close(ctx)

	var reservations []*model.Reservation
	if err = cursor.All(ctx, &reservations); err != nil {
		return nil, fmt.Errorf("failed to decode expired reservations: %w", err)
	}

	return reservations, nil
}

func (r *mongoReservationStore) Search(ctx context.Context, identity string, status string, limit int, offset int64) ([]*model.Reservation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, buildSearchFilter(identity, status), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search reservations: %w", err)
	}
	defer cursor.Close(ctx)

	var reservations []*model.Reservation
	if err = cursor.All(ctx, &reservations); err != nil {
		return nil, fmt.Errorf("failed to decode reservations: %w", err)
	}

	return reservations, nil
}

func (r *mongoReservationStore) CountBySearch(ctx context.Context, identity string, status string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildSearchFilter(identity, status))
	if err != nil {
		return 0, fmt.Errorf("failed to count reservations by search: %w", err)
	}
	return count, nil
}

func buildSearchFilter(identity string, status string) bson.M {
	filter := bson.M{}
	if identity != "" {
		filter["identity_token"] = bson.M{
			"$regex":   regexp.QuoteMeta(identity),
			"$options": "i",
		}
	}
	if status != "" {
		filter["status"] = status
	}
	return filter
}

func (r *mongoReservationStore) CountByStatus(ctx context.Context, status string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"status": status})
	if err != nil {
		return 0, fmt.Errorf("failed to count reservations: %w", err)
	}
	return count, nil
}

// DistributionByPrize counts confirmed reservations grouped by prize. This is
// a direct query over the records, not a maintained counter.
func (r *mongoReservationStore) DistributionByPrize(ctx context.Context) (map[string]int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": model.StatusConfirmed}}},
		{{Key: "$group", Value: bson.M{"_id": "$prize_id", "count": bson.M{"$sum": 1}}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate distribution: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		PrizeID string `bson:"_id"`
		Count   int64  `bson:"count"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode distribution: %w", err)
	}

	distribution := make(map[string]int64, len(rows))
	for _, row := range rows {
		distribution[row.PrizeID] = row.Count
	}

	return distribution, nil
}
