package cache

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient creates and returns a new Redis client.
// It will panic if it cannot connect to the Redis server.
func NewRedisClient(redisURL string) *redis.Client {
	if redisURL == "" {
		log.Fatal("❌ REDIS_URL environment variable is not set")
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Fatalf("❌ Could not parse Redis URL: %v", err)
	}

	client := redis.NewClient(opts)

	// Ping the Redis server to ensure a connection is established.
	if _, err := client.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("❌ Could not connect to Redis: %v", err)
	}

	log.Println("✅ Successfully connected to Redis")
	return client
}

// Throttle is a once-per-TTL guard backed by Redis SET NX.
// It is used to keep opportunistic work (purchase reconciliation) off the hot path.
type Throttle struct {
	client *redis.Client
	ttl    time.Duration
}

// NewThrottle creates a throttle with the given window.
func NewThrottle(client *redis.Client, ttl time.Duration) *Throttle {
	return &Throttle{client: client, ttl: ttl}
}

// Acquire reports whether the caller won the window for key. A Redis failure
// is treated as "not acquired" so degraded cache never multiplies work.
func (t *Throttle) Acquire(ctx context.Context, key string) bool {
	ok, err := t.client.SetNX(ctx, key, 1, t.ttl).Result()
	if err != nil {
		return false
	}
	return ok
}
