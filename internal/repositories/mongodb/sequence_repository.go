package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/trailsbuddy/trailsbuddy-backend/internal/metrics"
	"github.com/trailsbuddy/trailsbuddy-backend/internal/models"
	"github.com/trailsbuddy/trailsbuddy-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// SequencesCollection holds one document per named sequence
const SequencesCollection = "sequences"

// Compile-time check to ensure SequenceRepository implements the interface
var _ repositories.SequenceRepository = (*SequenceRepository)(nil)

// findOneAndUpdater is the part of *mongo.Collection the allocator needs
type findOneAndUpdater interface {
	FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}, opts ...*options.FindOneAndUpdateOptions) *mongo.SingleResult
}

// SequenceRepository allocates sequence values with a single atomic
// find-and-modify per call. It keeps no in-process state; concurrent callers
// on the same sequence are serialized by MongoDB's per-document atomicity.
type SequenceRepository struct {
	collection findOneAndUpdater
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// NewSequenceRepository creates a new SequenceRepository. m may be nil.
func NewSequenceRepository(db *mongo.Database, m *metrics.Metrics, logger *zap.Logger) *SequenceRepository {
	return &SequenceRepository{
		collection: db.Collection(SequencesCollection),
		metrics:    m,
		logger:     logger.Named("SequenceRepository"),
	}
}

// NextValue increments the sequence document, creating it on first use, and
// returns the post-update value.
//
// Any datastore or decode failure yields ErrSequenceUnavailable. Nothing is
// retried: the store may have advanced the counter even when the caller sees
// an error, which leaves a gap in the sequence.
func (r *SequenceRepository) NextValue(ctx context.Context, sequenceID string) (uint64, error) {
	if sequenceID == "" {
		return 0, repositories.ErrEmptySequenceID
	}

	filter := bson.M{"_id": sequenceID}
	update := bson.M{"$inc": bson.M{"val": int64(1)}}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var seq models.Sequence
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&seq)
	if err == nil && seq.Val == 0 {
		err = errors.New("sequence document has no val")
	}
	if err != nil {
		r.metrics.ObserveAllocation(sequenceID, false)
		r.logger.Error("Failed to allocate sequence value", zap.String("sequence", sequenceID), zap.Error(err))
		return 0, fmt.Errorf("%w: %s: %w", repositories.ErrSequenceUnavailable, sequenceID, err)
	}

	r.metrics.ObserveAllocation(sequenceID, true)
	r.logger.Debug("Allocated sequence value", zap.String("sequence", sequenceID), zap.Uint64("val", seq.Val))
	return seq.Val, nil
}
