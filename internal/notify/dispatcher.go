package notify

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/sgsgita/moderation-backend/internal/domain"
	"github.com/sgsgita/moderation-backend/pkg/logger"
)

const redisIntentList = "moderation:notifications"

// Dispatcher hands notification intents to the external delivery system.
// Delivery is fire-and-forget: the engine never awaits confirmation, and a
// failed send must not disturb the committed transition.
type Dispatcher interface {
	Send(ctx context.Context, intent *domain.NotificationIntent) error
}

// RedisDispatcher pushes intents onto a Redis outbox list consumed by the
// notification worker fleet.
type RedisDispatcher struct {
	client *redis.Client
	key    string
}

// NewRedisDispatcher creates a Redis-backed dispatcher
func NewRedisDispatcher(client *redis.Client) *RedisDispatcher {
	return &RedisDispatcher{client: client, key: redisIntentList}
}

// Send enqueues one intent
func (d *RedisDispatcher) Send(ctx context.Context, intent *domain.NotificationIntent) error {
	data, err := json.Marshal(intent)
	if err != nil {
		return err
	}
	return d.client.RPush(ctx, d.key, data).Err()
}

// LogDispatcher records intents in the log when no broker is configured.
// Used in local development and as the fallback when Redis is absent.
type LogDispatcher struct{}

// NewLogDispatcher creates a log-only dispatcher
func NewLogDispatcher() *LogDispatcher {
	return &LogDispatcher{}
}

// Send logs one intent
func (d *LogDispatcher) Send(_ context.Context, intent *domain.NotificationIntent) error {
	logger.GetLogger().Info().
		Str("intent_id", intent.ID).
		Str("recipient_role", intent.RecipientRole).
		Str("recipient_id", intent.RecipientID).
		Str("template", intent.TemplateKind).
		Str("subject", intent.Subject).
		Msg("notification intent (no dispatcher configured)")
	return nil
}
