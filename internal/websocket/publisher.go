package websocket

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/stemsi/sei-backend/internal/config"
)

// RedisPublisher fans risk events out over Redis Pub/Sub: once on the global
// channel and once on the student's own channel.
type RedisPublisher struct {
	rdb *redis.Client
}

func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

// PublishRiskChange encodes ev and publishes it in a single pipeline round-trip.
func (p *RedisPublisher) PublishRiskChange(ctx context.Context, ev RiskChangedEvent) error {
	ev.Event = EventRiskChanged
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal risk event: %w", err)
	}

	pipe := p.rdb.Pipeline()
	pipe.Publish(ctx, config.CacheKey.RiskUpdatesChannel(), payload)
	pipe.Publish(ctx, config.CacheKey.StudentRiskChannel(ev.StudentID), payload)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish risk event: %w", err)
	}
	return nil
}
