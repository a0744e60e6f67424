package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/trailsbuddy/trailsbuddy-backend/internal/cache"
	"github.com/trailsbuddy/trailsbuddy-backend/internal/metrics"
	"github.com/trailsbuddy/trailsbuddy-backend/internal/models"
	"github.com/trailsbuddy/trailsbuddy-backend/internal/repositories"
	"go.uber.org/zap"
)

var (
	// ErrAllocation is returned when no user id could be allocated
	ErrAllocation = errors.New("could not allocate user id")
	// ErrPersist is returned when the user document could not be stored
	ErrPersist = errors.New("could not store user")
)

// UserService defines the user operations exposed over HTTP
type UserService interface {
	CreateUser(ctx context.Context, payload *models.CreateUserPayload) (*models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
}

// UserCache is an optional read-through cache for users
type UserCache interface {
	Get(ctx context.Context, id int64) (*models.User, error)
	Set(ctx context.Context, user *models.User) error
}

// UserEventPublisher is notified after a user is stored
type UserEventPublisher interface {
	PublishUserCreated(ctx context.Context, user *models.User) error
}

// Option configures optional collaborators of the user service
type Option func(*userService)

// WithCache enables the read-through user cache
func WithCache(c UserCache) Option {
	return func(s *userService) { s.cache = c }
}

// WithPublisher enables user.created events
func WithPublisher(p UserEventPublisher) Option {
	return func(s *userService) { s.publisher = p }
}

// WithMetrics enables the users_created_total counter
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *userService) { s.metrics = m }
}

// userService handles user-related business logic
type userService struct {
	sequences repositories.SequenceRepository
	users     repositories.UserRepository
	cache     UserCache
	publisher UserEventPublisher
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewUserService creates a new UserService
func NewUserService(sequences repositories.SequenceRepository, users repositories.UserRepository, logger *zap.Logger, opts ...Option) UserService {
	s := &userService{
		sequences: sequences,
		users:     users,
		logger:    logger.Named("UserService"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateUser allocates an id from USER_ID_SEQ and inserts the user with every
// optional field defaulted. The id is consumed even when the insert fails.
func (s *userService) CreateUser(ctx context.Context, payload *models.CreateUserPayload) (*models.User, error) {
	next, err := s.sequences.NextValue(ctx, models.UserIDSequence)
	if err != nil {
		s.logger.Error("User id allocation failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrAllocation, err)
	}
	if next > math.MaxInt64 {
		return nil, fmt.Errorf("%w: value %d does not fit a user id", ErrAllocation, next)
	}

	user := payload.WithDefaults(int64(next))
	if err := s.users.Create(ctx, user); err != nil {
		s.logger.Error("User insert failed", zap.Int64("id", user.ID), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrPersist, err)
	}
	s.metrics.ObserveUserCreated()
	s.logger.Info("User created", zap.Int64("id", user.ID))

	if s.cache != nil {
		if err := s.cache.Set(ctx, user); err != nil {
			s.logger.Warn("Failed to cache new user", zap.Int64("id", user.ID), zap.Error(err))
		}
	}
	if s.publisher != nil {
		if err := s.publisher.PublishUserCreated(ctx, user); err != nil {
			s.logger.Warn("Failed to publish user.created", zap.Int64("id", user.ID), zap.Error(err))
		}
	}
	return user, nil
}

// GetUser returns the user with the given numeric id
func (s *userService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	if s.cache != nil {
		user, err := s.cache.Get(ctx, id)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, cache.ErrNotFound) {
			s.logger.Warn("User cache read failed", zap.Int64("id", id), zap.Error(err))
		}
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, user); err != nil {
			s.logger.Warn("Failed to cache user", zap.Int64("id", id), zap.Error(err))
		}
	}
	return user, nil
}
