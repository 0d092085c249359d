// Package anonstore persists best-effort anonymous identities in Redis,
// keyed by an opaque device key supplied by the browser. Storage
// failures are never surfaced: reads degrade to "absent" and writes fail
// silently, logging only.
package anonstore

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"strangerlink/backend/internal/models"
)

const keyPrefix = "anon:"

// Commands is the slice of the Redis API the store needs. *redis.Client
// satisfies it; tests substitute a fake.
type Commands interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Store reads and writes a single AnonymousUser record per device key.
type Store struct {
	rdb Commands
	ttl time.Duration
}

// NewStore builds a store. ttl of zero keeps records until cleared.
func NewStore(rdb Commands, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

// GetOrCreate returns the existing active identity for the device key,
// or creates and persists a fresh one. It always returns a usable
// record, even when Redis is unavailable.
func (s *Store) GetOrCreate(ctx context.Context, deviceKey string) models.AnonymousUser {
	if existing, ok := s.get(ctx, deviceKey); ok && existing.SessionActive {
		return existing
	}
	return s.create(ctx, deviceKey)
}

// Clear removes the persisted identity. Called exactly once, on
// successful upgrade to a registered account.
func (s *Store) Clear(ctx context.Context, deviceKey string) {
	if err := s.rdb.Del(ctx, keyPrefix+deviceKey).Err(); err != nil {
		log.Printf("ERROR: Failed to clear anonymous user for key %s: %v", deviceKey, err)
	}
}

func (s *Store) get(ctx context.Context, deviceKey string) (models.AnonymousUser, bool) {
	raw, err := s.rdb.Get(ctx, keyPrefix+deviceKey).Result()
	if errors.Is(err, redis.Nil) {
		return models.AnonymousUser{}, false
	}
	if err != nil {
		// Treat storage failure as "absent"; a new identity gets created.
		log.Printf("ERROR: Failed to read anonymous user for key %s: %v", deviceKey, err)
		return models.AnonymousUser{}, false
	}

	var user models.AnonymousUser
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		log.Printf("ERROR: Corrupt anonymous user record for key %s: %v", deviceKey, err)
		return models.AnonymousUser{}, false
	}
	return user, true
}

func (s *Store) create(ctx context.Context, deviceKey string) models.AnonymousUser {
	user := models.AnonymousUser{
		ID:            uuid.New().String(),
		CreatedAt:     time.Now(),
		SessionActive: true,
	}

	raw, err := json.Marshal(user)
	if err != nil {
		log.Printf("ERROR: Failed to encode anonymous user: %v", err)
		return user
	}
	if err := s.rdb.Set(ctx, keyPrefix+deviceKey, raw, s.ttl).Err(); err != nil {
		// Best effort: the caller still gets an identity for this session.
		log.Printf("ERROR: Failed to store anonymous user for key %s: %v", deviceKey, err)
	}
	return user
}
