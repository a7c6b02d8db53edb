package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationStore remembers sessions ended by logout until they would have
// expired anyway.
type RevocationStore interface {
	// Revoke marks the session ID as ended for ttl
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	// IsRevoked reports whether the session ID was ended
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// RedisRevocationStore implements RevocationStore using Redis
type RedisRevocationStore struct {
	client    redis.UniversalClient
	keyPrefix string
}

// NewRedisRevocationStore creates a store on an existing Redis client
func NewRedisRevocationStore(client redis.UniversalClient) *RedisRevocationStore {
	return &RedisRevocationStore{
		client:    client,
		keyPrefix: "session:revoked:",
	}
}

// Revoke stores the session ID with a TTL matching the token lifetime
func (s *RedisRevocationStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, s.keyPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// IsRevoked checks whether the session ID is stored
func (s *RedisRevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, s.keyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check session revocation: %w", err)
	}
	return n > 0, nil
}

var _ RevocationStore = (*RedisRevocationStore)(nil)

// InMemoryRevocationStore keeps revocations in process memory.
// Revocations are not shared between instances.
type InMemoryRevocationStore struct {
	mu      sync.Mutex
	entries map[string]time.Time // jti -> expiry
	now     func() time.Time
}

// NewInMemoryRevocationStore creates an empty in-memory store
func NewInMemoryRevocationStore() *InMemoryRevocationStore {
	return &InMemoryRevocationStore{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Revoke records the session ID until now+ttl
func (s *InMemoryRevocationStore) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[jti] = s.now().Add(ttl)
	return nil
}

// IsRevoked reports a live revocation and drops expired entries
func (s *InMemoryRevocationStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exp, ok := s.entries[jti]
	if !ok {
		return false, nil
	}
	if s.now().After(exp) {
		delete(s.entries, jti)
		return false, nil
	}
	return true, nil
}

var _ RevocationStore = (*InMemoryRevocationStore)(nil)
