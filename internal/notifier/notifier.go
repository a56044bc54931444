package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Event names broadcast to connected clients. Consumers treat these as
// hints to refetch, not as the source of truth.
const (
	EventStatusUpdated     = "project-status-updated"
	EventExpirationUpdated = "project-expiration-updated"
	EventFileUpdated       = "project-file-updated"
	EventProjectDeleted    = "project-deleted"
)

// Notifier is the process-wide notification sink. Emission is
// fire-and-forget: implementations must never fail the caller.
type Notifier interface {
	Emit(ctx context.Context, projectID uuid.UUID, event string, payload interface{})
}

// Message is the wire format published on a project channel
type Message struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

// ChannelFor returns the redis channel for a project's events
func ChannelFor(projectID uuid.UUID) string {
	return fmt.Sprintf("project:%s:events", projectID)
}

// RedisNotifier publishes events to per-project redis channels
type RedisNotifier struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisNotifier creates a redis-backed notifier
func NewRedisNotifier(client *redis.Client, logger *zap.Logger) *RedisNotifier {
	return &RedisNotifier{client: client, logger: logger}
}

// Emit publishes the event. Failures are logged and swallowed; the
// notification channel is not part of the transactional state.
func (n *RedisNotifier) Emit(ctx context.Context, projectID uuid.UUID, event string, payload interface{}) {
	data, err := json.Marshal(Message{Event: event, Payload: payload})
	if err != nil {
		n.logger.Warn("Failed to marshal notification",
			zap.String("event", event),
			zap.String("project_id", projectID.String()),
			zap.Error(err),
		)
		return
	}
	if err := n.client.Publish(ctx, ChannelFor(projectID), data).Err(); err != nil {
		n.logger.Warn("Failed to publish notification",
			zap.String("event", event),
			zap.String("project_id", projectID.String()),
			zap.Error(err),
		)
	}
}

// Subscribe subscribes to a project's event channel
func (n *RedisNotifier) Subscribe(ctx context.Context, projectID uuid.UUID) *redis.PubSub {
	return n.client.Subscribe(ctx, ChannelFor(projectID))
}

// NoopNotifier discards all events. Used when redis is not configured.
type NoopNotifier struct{}

// Emit discards the event
func (NoopNotifier) Emit(ctx context.Context, projectID uuid.UUID, event string, payload interface{}) {
}

var (
	_ Notifier = (*RedisNotifier)(nil)
	_ Notifier = NoopNotifier{}
)
