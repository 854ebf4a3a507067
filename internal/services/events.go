package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"aiguard-backend/internal/models"
)

// EventsChannel is the Redis pub/sub channel carrying activity events.
const EventsChannel = "aiguard:events"

const publishTimeout = 2 * time.Second

// EventPublisher receives mediation events. Implementations must not fail
// or block the request that produced the event.
type EventPublisher interface {
	Publish(ctx context.Context, evt models.Event)
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, models.Event) {}

// RedisPublisher fans events out to every instance subscribed to
// EventsChannel.
type RedisPublisher struct {
	redis *redis.Client
}

func NewRedisPublisher(redisClient *redis.Client) *RedisPublisher {
	return &RedisPublisher{redis: redisClient}
}

func (p *RedisPublisher) Publish(ctx context.Context, evt models.Event) {
	data, err := json.Marshal(evt)
	if err != nil {
		log.Printf("event encode failed: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := p.redis.Publish(ctx, EventsChannel, data).Err(); err != nil {
		log.Printf("event publish failed: %v", err)
	}
}
