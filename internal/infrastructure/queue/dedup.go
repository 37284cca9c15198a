package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pms/backend/internal/domain/shared"
)

const dedupKeyPrefix = "sync:processed:"

// RedisDedupStore remembers processed request references in Redis so every
// instance draining the same tenant sees the same suppression state
type RedisDedupStore struct {
	client *redis.Client
}

// NewRedisDedupStore creates a Redis-backed dedup store and verifies the
// connection
func NewRedisDedupStore(addr, password string, db int) (*RedisDedupStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisDedupStore{client: client}, nil
}

// NewRedisDedupStoreWithClient creates a store over an existing client
func NewRedisDedupStoreWithClient(client *redis.Client) *RedisDedupStore {
	return &RedisDedupStore{client: client}
}

// MarkProcessed records a reference with a TTL. SETNX keeps the first write
// and its expiry when two passes race.
func (s *RedisDedupStore) MarkProcessed(ctx context.Context, tenantCode, requestRef string, ttl time.Duration) (bool, error) {
	set, err := s.client.SetNX(ctx, dedupKey(tenantCode, requestRef), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to record processed reference: %w", err)
	}
	return set, nil
}

// IsProcessed reports whether a reference was already recorded
func (s *RedisDedupStore) IsProcessed(ctx context.Context, tenantCode, requestRef string) (bool, error) {
	exists, err := s.client.Exists(ctx, dedupKey(tenantCode, requestRef)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check processed reference: %w", err)
	}
	return exists > 0, nil
}

// Close closes the Redis client
func (s *RedisDedupStore) Close() error {
	return s.client.Close()
}

func dedupKey(tenantCode, requestRef string) string {
	return dedupKeyPrefix + tenantCode + ":" + requestRef
}

var _ shared.DedupStore = (*RedisDedupStore)(nil)

// InMemoryDedupStore is a process-local dedup store for single-instance
// deployments and tests
type InMemoryDedupStore struct {
	mu      sync.RWMutex
	entries map[string]time.Time
}

// NewInMemoryDedupStore creates an empty in-memory dedup store
func NewInMemoryDedupStore() *InMemoryDedupStore {
	return &InMemoryDedupStore{entries: make(map[string]time.Time)}
}

// MarkProcessed records a reference with a TTL
func (s *InMemoryDedupStore) MarkProcessed(ctx context.Context, tenantCode, requestRef string, ttl time.Duration) (bool, error) {
	key := dedupKey(tenantCode, requestRef)

	s.mu.Lock()
	defer s.mu.Unlock()

	if expiry, ok := s.entries[key]; ok && time.Now().Before(expiry) {
		return false, nil
	}
	s.entries[key] = time.Now().Add(ttl)
	return true, nil
}

// IsProcessed reports whether a reference was already recorded
func (s *InMemoryDedupStore) IsProcessed(ctx context.Context, tenantCode, requestRef string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	expiry, ok := s.entries[dedupKey(tenantCode, requestRef)]
	return ok && time.Now().Before(expiry), nil
}

// Close releases resources
func (s *InMemoryDedupStore) Close() error {
	return nil
}

var _ shared.DedupStore = (*InMemoryDedupStore)(nil)
