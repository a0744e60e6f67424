package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/trailsbuddy/trailsbuddy-backend/internal/models"
	"github.com/trailsbuddy/trailsbuddy-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// UsersCollection holds user documents keyed by their numeric id
const UsersCollection = "users"

// Compile-time check to ensure UserRepository implements the interface
var _ repositories.UserRepository = (*UserRepository)(nil)

// userCollection is the part of *mongo.Collection the user store needs
type userCollection interface {
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
}

// UserRepository handles MongoDB operations for User
type UserRepository struct {
	collection userCollection
	indexes    mongo.IndexView
	logger     *zap.Logger
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *mongo.Database, logger *zap.Logger) *UserRepository {
	collection := db.Collection(UsersCollection)
	return &UserRepository{
		collection: collection,
		indexes:    collection.Indexes(),
		logger:     logger.Named("UserRepository"),
	}
}

// EnsureIndexes creates the unique index on the numeric user id
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	model := mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("id_unique"),
	}
	if _, err := r.indexes.CreateOne(ctx, model); err != nil {
		return fmt.Errorf("create users id index: %w", err)
	}
	r.logger.Info("Ensured indexes for users collection")
	return nil
}

// Create inserts a new user document
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if _, err := r.collection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			r.logger.Warn("Duplicate user id on insert", zap.Int64("id", user.ID), zap.Error(err))
			return fmt.Errorf("%w: id %d", repositories.ErrDuplicateUser, user.ID)
		}
		r.logger.Error("Failed to insert user", zap.Int64("id", user.ID), zap.Error(err))
		return fmt.Errorf("insert user %d: %w", user.ID, err)
	}
	return nil
}

// FindByID finds a user by its numeric id
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user %d: %w", id, err)
	}
	return &user, nil
}
