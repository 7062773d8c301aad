package cache

import (
	"context"
	"sync"
	"time"
)

// entry represents a held key with expiration
type entry struct {
	expiresAt time.Time
}

// InMemorySubmissionGuard holds submission keys in a map.
// This is suitable for single-instance deployments and testing.
type InMemorySubmissionGuard struct {
	mu        sync.Mutex
	entries   map[string]entry
	ttl       time.Duration
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemorySubmissionGuard creates a guard holding keys for ttl.
// It starts a background goroutine to clean up expired entries.
func NewInMemorySubmissionGuard(ttl time.Duration) *InMemorySubmissionGuard {
	if ttl <= 0 {
		ttl = defaultGuardTTL
	}
	g := &InMemorySubmissionGuard{
		entries:  make(map[string]entry),
		ttl:      ttl,
		now:      time.Now,
		stopChan: make(chan struct{}),
	}

	g.wg.Add(1)
	go g.cleanupLoop()

	return g
}

// Acquire takes the key unless an unexpired holder exists
func (g *InMemorySubmissionGuard) Acquire(_ context.Context, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if e, exists := g.entries[key]; exists && now.Before(e.expiresAt) {
		return false, nil
	}
	g.entries[key] = entry{expiresAt: now.Add(g.ttl)}
	return true, nil
}

// Release frees the key
func (g *InMemorySubmissionGuard) Release(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.entries, key)
	return nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (g *InMemorySubmissionGuard) Close() error {
	g.closeOnce.Do(func() {
		close(g.stopChan)
		g.wg.Wait()
	})
	return nil
}

func (g *InMemorySubmissionGuard) cleanupLoop() {
	defer g.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-g.stopChan:
			return
		case <-ticker.C:
			g.cleanup()
		}
	}
}

func (g *InMemorySubmissionGuard) cleanup() {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	for key, e := range g.entries {
		if now.After(e.expiresAt) {
			delete(g.entries, key)
		}
	}
}

// Size returns the number of held keys (for testing/monitoring)
func (g *InMemorySubmissionGuard) Size() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.entries)
}
