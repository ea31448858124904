package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"tripagent/pkg/domain"
)

// MemorySearchCache keeps search records in memory (single instance only).
type MemorySearchCache struct {
	mu      sync.RWMutex
	records map[string]domain.SearchRecord
}

// NewMemorySearchCache constructs an empty in-memory search cache.
func NewMemorySearchCache() *MemorySearchCache {
	return &MemorySearchCache{
		records: make(map[string]domain.SearchRecord),
	}
}

// Put stores or replaces the record.
func (c *MemorySearchCache) Put(_ context.Context, rec domain.SearchRecord) error {
	c.mu.Lock()
	c.records[rec.SearchID] = rec
	c.mu.Unlock()
	return nil
}

// Get returns the record for searchID if present.
func (c *MemorySearchCache) Get(_ context.Context, searchID string) (domain.SearchRecord, bool, error) {
	c.mu.RLock()
	rec, ok := c.records[searchID]
	c.mu.RUnlock()
	return rec, ok, nil
}

// RedisSearchCache stores search records as Redis hashes with a per-record TTL,
// so multiple workers can serve polls for the same search.
type RedisSearchCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSearchCache builds a Redis-backed search cache. Records expire after
// ttl (24h when ttl <= 0).
func NewRedisSearchCache(addr, password string, ttl time.Duration) *RedisSearchCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisSearchCache{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
		ttl: ttl,
	}
}

// Put stores or replaces the record and refreshes its TTL.
func (c *RedisSearchCache) Put(ctx context.Context, rec domain.SearchRecord) error {
	payload := map[string]any{
		"searchId":  rec.SearchID,
		"userId":    rec.UserID,
		"status":    string(rec.Status),
		"error":     rec.Error,
		"createdAt": rec.CreatedAt.Format(time.RFC3339Nano),
	}
	if rec.Results != nil {
		raw, err := json.Marshal(rec.Results)
		if err != nil {
			return err
		}
		payload["results"] = string(raw)
	}
	key := searchKey(rec.SearchID)
	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, key, payload)
	pipe.Expire(ctx, key, c.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// Get returns the record for searchID if present.
func (c *RedisSearchCache) Get(ctx context.Context, searchID string) (domain.SearchRecord, bool, error) {
	searchID = strings.TrimSpace(searchID)
	if searchID == "" {
		return domain.SearchRecord{}, false, nil
	}
	data, err := c.client.HGetAll(ctx, searchKey(searchID)).Result()
	if err != nil {
		return domain.SearchRecord{}, false, err
	}
	if len(data) == 0 {
		return domain.SearchRecord{}, false, nil
	}
	rec := domain.SearchRecord{
		SearchID: searchID,
		UserID:   data["userId"],
		Status:   domain.SearchStatus(data["status"]),
		Error:    data["error"],
	}
	if v := data["createdAt"]; v != "" {
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			rec.CreatedAt = t
		}
	}
	if v := data["results"]; v != "" {
		var results domain.Recommendation
		if err := json.Unmarshal([]byte(v), &results); err == nil {
			rec.Results = &results
		}
	}
	return rec, true, nil
}

func searchKey(searchID string) string {
	return fmt.Sprintf("search:%s", searchID)
}
