package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"tripagent/pkg/domain"
)

func TestMemorySearchCachePutGet(t *testing.T) {
	c := NewMemorySearchCache()
	ctx := context.Background()

	rec := domain.SearchRecord{
		SearchID:  "id-1",
		UserID:    "user-1",
		Status:    domain.SearchProcessing,
		CreatedAt: time.Now().UTC(),
	}
	if err := c.Put(ctx, rec); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, ok, err := c.Get(ctx, "id-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok {
		t.Fatal("expected record present")
	}
	if got.Status != domain.SearchProcessing || got.UserID != "user-1" {
		t.Fatalf("unexpected record: %+v", got)
	}

	_, ok, err = c.Get(ctx, "missing")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if ok {
		t.Fatal("expected miss for unknown id")
	}
}

func TestRedisSearchCacheRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	c := NewRedisSearchCache(mr.Addr(), "", time.Hour)
	ctx := context.Background()

	created := time.Now().UTC().Truncate(time.Millisecond)
	rec := domain.SearchRecord{
		SearchID:  "id-1",
		UserID:    "user-1",
		Status:    domain.SearchCompleted,
		CreatedAt: created,
		Results: &domain.Recommendation{
			Title:       "Trip to LHR",
			Destination: "LHR",
			Budget:      2000,
			Body:        "Fly out Friday.",
			Source:      "template",
		},
	}
	if err := c.Put(ctx, rec); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, ok, err := c.Get(ctx, "id-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok {
		t.Fatal("expected record present")
	}
	if got.Status != domain.SearchCompleted {
		t.Fatalf("status = %q", got.Status)
	}
	if !got.CreatedAt.Equal(created) {
		t.Fatalf("createdAt = %v, want %v", got.CreatedAt, created)
	}
	if got.Results == nil || got.Results.Destination != "LHR" {
		t.Fatalf("unexpected results: %+v", got.Results)
	}
}

func TestRedisSearchCacheStatusOverwrite(t *testing.T) {
	mr := miniredis.RunT(t)
	c := NewRedisSearchCache(mr.Addr(), "", time.Hour)
	ctx := context.Background()

	rec := domain.SearchRecord{
		SearchID:  "id-2",
		UserID:    "user-1",
		Status:    domain.SearchProcessing,
		CreatedAt: time.Now().UTC(),
	}
	if err := c.Put(ctx, rec); err != nil {
		t.Fatalf("put processing: %v", err)
	}

	rec.Status = domain.SearchFailed
	rec.Error = "flight search failed"
	if err := c.Put(ctx, rec); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	got, ok, err := c.Get(ctx, "id-2")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok {
		t.Fatal("expected record present")
	}
	if got.Status != domain.SearchFailed || got.Error != "flight search failed" {
		t.Fatalf("unexpected record: %+v", got)
	}
}

func TestRedisSearchCacheExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	c := NewRedisSearchCache(mr.Addr(), "", time.Minute)
	ctx := context.Background()

	rec := domain.SearchRecord{
		SearchID:  "id-3",
		UserID:    "user-1",
		Status:    domain.SearchCompleted,
		CreatedAt: time.Now().UTC(),
	}
	if err := c.Put(ctx, rec); err != nil {
		t.Fatalf("put: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	_, ok, err := c.Get(ctx, "id-3")
	if err != nil {
		t.Fatalf("get after expiry: %v", err)
	}
	if ok {
		t.Fatal("expected record expired")
	}
}
