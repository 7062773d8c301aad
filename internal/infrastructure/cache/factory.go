package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/yellowcube/internal/application/fulfillment"
	"go.uber.org/zap"
)

// Guard is a submission guard that owns resources
type Guard interface {
	fulfillment.SubmissionGuard
	Close() error
}

var (
	_ Guard = (*RedisSubmissionGuard)(nil)
	_ Guard = (*InMemorySubmissionGuard)(nil)
)

// GuardFactory creates submission guards based on configuration
type GuardFactory struct {
	redisConfig           RedisConfig
	ttl                   time.Duration
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// GuardFactoryOption is a functional option for configuring the factory
type GuardFactoryOption func(*GuardFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) GuardFactoryOption {
	return func(f *GuardFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory guard
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) GuardFactoryOption {
	return func(f *GuardFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewGuardFactory creates a new factory
func NewGuardFactory(cfg RedisConfig, ttl time.Duration, opts ...GuardFactoryOption) *GuardFactory {
	f := &GuardFactory{
		redisConfig:           cfg,
		ttl:                   ttl,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateGuard returns a Redis guard when Redis is configured and reachable.
// An empty host, or an unreachable server with fallback allowed, yields the
// in-memory guard.
func (f *GuardFactory) CreateGuard(ctx context.Context) (Guard, error) {
	if f.redisConfig.Host == "" {
		f.logger.Info("Redis not configured, using in-memory submission guard")
		return NewInMemorySubmissionGuard(f.ttl), nil
	}

	guard, err := NewRedisSubmissionGuard(ctx, f.redisConfig, f.ttl)
	if err == nil {
		f.logger.Info("Using Redis submission guard",
			zap.String("host", f.redisConfig.Host),
			zap.Duration("ttl", f.ttl),
		)
		return guard, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for submission guard but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory submission guard. "+
		"Concurrent runs on other hosts are not guarded.",
		zap.Error(err),
	)
	return NewInMemorySubmissionGuard(f.ttl), nil
}
