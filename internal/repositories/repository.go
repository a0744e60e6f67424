package repositories

import (
	"context"
	"errors"

	"github.com/trailsbuddy/trailsbuddy-backend/internal/models"
)

var (
	// ErrEmptySequenceID is returned when a sequence is requested without a name
	ErrEmptySequenceID = errors.New("sequence id must not be empty")
	// ErrSequenceUnavailable is returned when the store could not produce the next sequence value
	ErrSequenceUnavailable = errors.New("sequence value unavailable")
	// ErrUserNotFound is returned when no user matches the lookup
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateUser is returned when a user with the same id already exists
	ErrDuplicateUser = errors.New("user already exists")
)

// SequenceRepository allocates values from named monotonic counters
type SequenceRepository interface {
	// NextValue returns a value strictly greater than every value previously
	// returned for sequenceID. The first value of a new sequence is 1.
	NextValue(ctx context.Context, sequenceID string) (uint64, error)
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id int64) (*models.User, error)
}
