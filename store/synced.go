package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Synced is the durable shared tier backed by Redis. Unlike the other tiers
// it may be unreachable for long stretches; errors are surfaced so the tiered
// store can count the tier out of a read rather than block on it.
type Synced struct {
	rdb *redis.Client
}

// NewSynced creates the Redis-backed synced tier.
func NewSynced(addr, password string, db int) *Synced {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Synced{rdb: rdb}
}

// NewSyncedClient wraps an existing Redis client.
func NewSyncedClient(rdb *redis.Client) *Synced {
	return &Synced{rdb: rdb}
}

// ID reports the tier identity.
func (s *Synced) ID() TierID { return TierSynced }

// Get retrieves the raw record bytes for key.
func (s *Synced) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	return val, true, nil
}

// Set stores raw record bytes under key with the given TTL. A zero TTL means
// the entry has no automatic expiration.
func (s *Synced) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, key, val, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Remove deletes the entry for key.
func (s *Synced) Remove(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Ping checks the Redis connection.
func (s *Synced) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Close closes the underlying Redis client.
func (s *Synced) Close() error {
	return s.rdb.Close()
}
