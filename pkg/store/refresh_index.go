package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// MemoryRefreshIndex keeps issued refresh tokens per user in memory.
type MemoryRefreshIndex struct {
	mu     sync.Mutex
	tokens map[string]map[string]time.Time // userID -> token -> expiry
}

// NewMemoryRefreshIndex constructs an in-memory refresh index.
func NewMemoryRefreshIndex() *MemoryRefreshIndex {
	return &MemoryRefreshIndex{
		tokens: make(map[string]map[string]time.Time),
	}
}

// Record remembers that token was issued to userID.
func (s *MemoryRefreshIndex) Record(userID, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	if s.tokens[userID] == nil {
		s.tokens[userID] = make(map[string]time.Time)
	}
	s.tokens[userID][token] = time.Now().Add(ttl)
	s.mu.Unlock()
	return nil
}

// Tokens returns the unexpired refresh tokens issued to userID.
func (s *MemoryRefreshIndex) Tokens(userID string) ([]string, error) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.tokens[userID]))
	for token, expiry := range s.tokens[userID] {
		if now.After(expiry) {
			delete(s.tokens[userID], token)
			continue
		}
		out = append(out, token)
	}
	return out, nil
}

// Clear forgets all tokens recorded for userID.
func (s *MemoryRefreshIndex) Clear(userID string) error {
	s.mu.Lock()
	delete(s.tokens, userID)
	s.mu.Unlock()
	return nil
}

// RedisRefreshIndex keeps issued refresh tokens per user in a Redis set.
// The set expires with the longest-lived token recorded into it.
type RedisRefreshIndex struct {
	client *redis.Client
}

// NewRedisRefreshIndex builds a Redis-backed refresh index.
func NewRedisRefreshIndex(addr, password string) *RedisRefreshIndex {
	return &RedisRefreshIndex{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
	}
}

// Record remembers that token was issued to userID.
func (s *RedisRefreshIndex) Record(userID, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	key := refreshIndexKey(userID)
	pipe := s.client.TxPipeline()
	pipe.SAdd(ctx, key, token)
	pipe.Expire(ctx, key, ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// Tokens returns the refresh tokens recorded for userID.
func (s *RedisRefreshIndex) Tokens(userID string) ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	tokens, err := s.client.SMembers(ctx, refreshIndexKey(userID)).Result()
	if err != nil && err != redis.Nil {
		return nil, err
	}
	return tokens, nil
}

// Clear forgets all tokens recorded for userID.
func (s *RedisRefreshIndex) Clear(userID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := s.client.Del(ctx, refreshIndexKey(userID)).Err(); err != nil && err != redis.Nil {
		return err
	}
	return nil
}

func refreshIndexKey(userID string) string {
	return fmt.Sprintf("refresh:user:%s", userID)
}
