package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	prizeserrors "giveaway/internal/prizes/errors"
	"giveaway/pkg/config"
	"giveaway/pkg/model"
)

const (
	PrizeCollectionName = "Prizes"
)

// PrizeLedger is the single source of truth for remaining counts. Remaining
// is only ever mutated through the conditional single-document updates below.
type PrizeLedger interface {
	ListEligible(ctx context.Context) ([]*model.Prize, error)
	FindAll(ctx context.Context) ([]*model.Prize, error)
	FindByID(ctx context.Context, id string) (*model.Prize, error)
	TryClaim(ctx context.Context, prizeID string) (*model.Prize, error)
	Release(ctx context.Context, prizeID string) error
	Reset(ctx context.Context, prize *model.Prize) error
	ResetAll(ctx context.Context, prizes []*model.Prize) error
	Seed(ctx context.Context, prizes []*model.Prize) error
}

type mongoPrizeLedger struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoPrizeLedger(cfg *config.Config) PrizeLedger {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoPrizeLedger{
		cfg:        cfg,
		collection: db.Collection(PrizeCollectionName),
	}
}

// withTimeout wraps the context with a timeout, honoring any tighter deadline
// already present.
func (r *mongoPrizeLedger) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			return context.WithTimeout(ctx, remaining)
		}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoPrizeLedger) ListEligible(ctx context.Context) ([]*model.Prize, error) {
	return r.find(ctx, bson.M{"remaining": bson.M{"$gt": 0}})
}

func (r *mongoPrizeLedger) FindAll(ctx context.Context) ([]*model.Prize, error) {
	return r.find(ctx, bson.M{})
}

func (r *mongoPrizeLedger) find(ctx context.Context, filter bson.M) ([]*model.Prize, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find prizes: %w", err)
	}
	defer cursor.Close(ctx)

	var prizes []*model.Prize
	if err = cursor.All(ctx, &prizes); err != nil {
		return nil, fmt.Errorf("failed to decode prizes: %w", err)
	}

	return prizes, nil
}

func (r *mongoPrizeLedger) FindByID(ctx context.Context, id string) (*model.Prize, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var prize model.Prize
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&prize)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, prizeserrors.ErrPrizeNotFound
		}
		return nil, fmt.Errorf("failed to find prize: %w", err)
	}

	return &prize, nil
}

// TryClaim checks remaining > 0 and decrements by one in a single conditional
// update. Remaining can never go negative: the precondition and the decrement
// are one indivisible write. Losing the race is reported as ErrNotAvailable.
func (r *mongoPrizeLedger) TryClaim(ctx context.Context, prizeID string) (*model.Prize, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{"_id": prizeID, "remaining": bson.M{"$gt": 0}}
	update := bson.M{
		"$inc": bson.M{"remaining": -1},
		"$set": bson.M{"updated_at": time.Now().UTC().Truncate(time.Millisecond)},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var prize model.Prize
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&prize)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, prizeserrors.ErrNotAvailable
		}
		return nil, fmt.Errorf("failed to claim prize: %w", err)
	}

	return &prize, nil
}

// Release credits one unit back. The filter caps remaining at the seeded
// total so a double credit can never push the pool past what was seeded;
// at-most-once invocation per reservation is the caller's responsibility.
func (r *mongoPrizeLedger) Release(ctx context.Context, prizeID string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{
		"_id":   prizeID,
		"$expr": bson.M{"$lt": bson.A{"$remaining", "$total"}},
	}
	update := bson.M{
		"$inc": bson.M{"remaining": 1},
		"$set": bson.M{"updated_at": time.Now().UTC().Truncate(time.Millisecond)},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to release prize unit: %w", err)
	}

	if result.MatchedCount == 0 {
		if _, err := r.FindByID(ctx, prizeID); err != nil {
			return err
		}
		return fmt.Errorf("release would exceed seeded total for prize %s", prizeID)
	}

	return nil
}

// Reset overwrites a prize's count and metadata. Last-writer-wins is fine
// here; this is an administrative operation.
func (r *mongoPrizeLedger) Reset(ctx context.Context, prize *model.Prize) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	prize.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)

	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"_id": prize.ID}, prize, opts); err != nil {
		return fmt.Errorf("failed to reset prize: %w", err)
	}

	return nil
}

func (r *mongoPrizeLedger) ResetAll(ctx context.Context, prizes []*model.Prize) error {
	for _, prize := range prizes {
		if err := r.Reset(ctx, prize); err != nil {
			return err
		}
	}
	return nil
}

// Seed inserts the default pool only when the collection is empty, so a
// restart never clobbers live counts.
func (r *mongoPrizeLedger) Seed(ctx context.Context, prizes []*model.Prize) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("failed to count prizes: %w", err)
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	docs := make([]any, 0, len(prizes))
	for _, prize := range prizes {
		prize.UpdatedAt = now
		docs = append(docs, prize)
	}

	if _, err := r.collection.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to seed prizes: %w", err)
	}

	return nil
}
