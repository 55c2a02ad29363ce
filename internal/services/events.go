package services

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"

	"classpulse-backend/internal/models"
)

// EventQueue is the Redis list the worker pool drains for dashboard fan-out.
const EventQueue = "queue:monitor-events"

// EventPublisher is the injected observability collaborator: the pipeline
// hands it sample/alert events and never depends on who is listening.
type EventPublisher interface {
	Publish(ctx context.Context, ev models.MonitorEvent)
}

// RedisEventPublisher enqueues events for the fan-out workers. Publish
// failures are logged and swallowed; live updates are best-effort and must
// never fail an ingest.
type RedisEventPublisher struct {
	redis *redis.Client
}

func NewRedisEventPublisher(client *redis.Client) *RedisEventPublisher {
	return &RedisEventPublisher{redis: client}
}

func (p *RedisEventPublisher) Publish(ctx context.Context, ev models.MonitorEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("event publish: marshal failed: %v", err)
		return
	}
	if err := p.redis.RPush(ctx, EventQueue, data).Err(); err != nil {
		log.Printf("event publish: enqueue failed: %v", err)
	}
}

// NopEventPublisher discards events; used in tests.
type NopEventPublisher struct{}

func (NopEventPublisher) Publish(context.Context, models.MonitorEvent) {}
