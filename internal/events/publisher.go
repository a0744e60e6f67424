// Package events publishes user lifecycle events to NATS.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/trailsbuddy/trailsbuddy-backend/internal/models"
	"go.uber.org/zap"
)

// UserCreated is the payload published after a user is persisted
type UserCreated struct {
	Type       string       `json:"type"`
	OccurredAt int64        `json:"occurredAt"`
	User       *models.User `json:"user"`
}

// EventUserCreated is the value of UserCreated.Type
const EventUserCreated = "user.created"

// NewUserCreated builds the event for user at the given time
func NewUserCreated(user *models.User, at time.Time) UserCreated {
	return UserCreated{
		Type:       EventUserCreated,
		OccurredAt: at.UnixMilli(),
		User:       user,
	}
}

// msgPublisher is satisfied by *nats.Conn
type msgPublisher interface {
	PublishMsg(m *nats.Msg) error
}

// Publisher sends events to a single NATS subject
type Publisher struct {
	conn    msgPublisher
	subject string
	logger  *zap.Logger
}

// Connect opens a NATS connection for publishing
func Connect(url string, logger *zap.Logger) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.Name("trailsbuddy user publisher"),
		nats.Timeout(10*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS at %s: %w", url, err)
	}
	logger.Info("Connected to NATS", zap.String("url", conn.ConnectedUrl()))
	return conn, nil
}

// NewPublisher creates a Publisher for subject
func NewPublisher(conn msgPublisher, subject string, logger *zap.Logger) *Publisher {
	return &Publisher{
		conn:    conn,
		subject: subject,
		logger:  logger.Named("EventPublisher"),
	}
}

// PublishUserCreated publishes a user.created event
func (p *Publisher) PublishUserCreated(ctx context.Context, user *models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(NewUserCreated(user, time.Now()))
	if err != nil {
		return fmt.Errorf("encode user.created for %d: %w", user.ID, err)
	}

	msg := nats.NewMsg(p.subject)
	msg.Data = data
	msg.Header.Set("Event-Type", EventUserCreated)
	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish to %s: %w", p.subject, err)
	}
	p.logger.Debug("Published event", zap.String("subject", p.subject), zap.Int64("user_id", user.ID))
	return nil
}
