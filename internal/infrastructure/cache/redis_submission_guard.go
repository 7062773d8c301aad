package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultGuardPrefix = "submission:"
	defaultGuardTTL    = 10 * time.Minute
)

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// RedisSubmissionGuard holds a short lived Redis key per submission so that
// concurrent runs on several hosts never send the same order twice
type RedisSubmissionGuard struct {
	client     *redis.Client
	ownsClient bool
	keyPrefix  string
	ttl        time.Duration
}

// NewRedisSubmissionGuard connects to Redis and returns a guard holding keys
// for ttl
func NewRedisSubmissionGuard(ctx context.Context, cfg RedisConfig, ttl time.Duration) (*RedisSubmissionGuard, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	g := NewRedisSubmissionGuardWithClient(client, "", ttl)
	g.ownsClient = true
	return g, nil
}

// NewRedisSubmissionGuardWithClient creates a guard on an existing client.
// The caller keeps ownership of the client.
func NewRedisSubmissionGuardWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisSubmissionGuard {
	if keyPrefix == "" {
		keyPrefix = defaultGuardPrefix
	}
	if ttl <= 0 {
		ttl = defaultGuardTTL
	}
	return &RedisSubmissionGuard{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

// Acquire takes the key. It returns false when another submission holds it.
// SETNX with TTL keeps a crashed holder from blocking the key forever.
func (g *RedisSubmissionGuard) Acquire(ctx context.Context, key string) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.keyPrefix+key, "1", g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire submission key: %w", err)
	}
	return ok, nil
}

// Release frees the key so the submission can be retried
func (g *RedisSubmissionGuard) Release(ctx context.Context, key string) error {
	if err := g.client.Del(ctx, g.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to release submission key: %w", err)
	}
	return nil
}

// Close closes the Redis client when the guard created it
func (g *RedisSubmissionGuard) Close() error {
	if !g.ownsClient {
		return nil
	}
	return g.client.Close()
}
