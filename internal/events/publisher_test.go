package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trailsbuddy/trailsbuddy-backend/internal/models"
	"go.uber.org/zap"
)

type recordingConn struct {
	msgs []*nats.Msg
	err  error
}

func (r *recordingConn) PublishMsg(m *nats.Msg) error {
	if r.err != nil {
		return r.err
	}
	r.msgs = append(r.msgs, m)
	return nil
}

func TestPublishUserCreated(t *testing.T) {
	conn := &recordingConn{}
	p := NewPublisher(conn, "users.created", zap.NewNop())
	user := &models.User{ID: 7, Name: "Alice", IsActive: true}

	require.NoError(t, p.PublishUserCreated(context.Background(), user))
	require.Len(t, conn.msgs, 1)

	msg := conn.msgs[0]
	assert.Equal(t, "users.created", msg.Subject)
	assert.Equal(t, EventUserCreated, msg.Header.Get("Event-Type"))

	var event UserCreated
	require.NoError(t, json.Unmarshal(msg.Data, &event))
	assert.Equal(t, EventUserCreated, event.Type)
	assert.Equal(t, user, event.User)
	assert.NotZero(t, event.OccurredAt)
}

func TestPublishUserCreatedErrors(t *testing.T) {
	cause := errors.New("nats: connection closed")
	p := NewPublisher(&recordingConn{err: cause}, "users.created", zap.NewNop())

	err := p.PublishUserCreated(context.Background(), &models.User{ID: 1})
	assert.ErrorIs(t, err, cause)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = p.PublishUserCreated(ctx, &models.User{ID: 1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewUserCreatedTimestamp(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	event := NewUserCreated(&models.User{ID: 1}, at)
	assert.Equal(t, at.UnixMilli(), event.OccurredAt)
}
