package store

import (
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestMemoryRefreshIndexRecordAndClear(t *testing.T) {
	idx := NewMemoryRefreshIndex()

	if err := idx.Record("user-1", "tok-a", time.Minute); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := idx.Record("user-1", "tok-b", time.Minute); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := idx.Record("user-2", "tok-c", time.Minute); err != nil {
		t.Fatalf("record: %v", err)
	}

	tokens, err := idx.Tokens("user-1")
	if err != nil {
		t.Fatalf("tokens: %v", err)
	}
	sort.Strings(tokens)
	if len(tokens) != 2 || tokens[0] != "tok-a" || tokens[1] != "tok-b" {
		t.Fatalf("unexpected tokens: %v", tokens)
	}

	if err := idx.Clear("user-1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	tokens, err = idx.Tokens("user-1")
	if err != nil {
		t.Fatalf("tokens after clear: %v", err)
	}
	if len(tokens) != 0 {
		t.Fatalf("expected no tokens, got %v", tokens)
	}

	// Other users are untouched.
	tokens, err = idx.Tokens("user-2")
	if err != nil {
		t.Fatalf("tokens user-2: %v", err)
	}
	if len(tokens) != 1 || tokens[0] != "tok-c" {
		t.Fatalf("unexpected tokens: %v", tokens)
	}
}

func TestMemoryRefreshIndexDropsExpired(t *testing.T) {
	idx := NewMemoryRefreshIndex()
	if err := idx.Record("user-1", "tok-a", -time.Minute); err != nil {
		t.Fatalf("record: %v", err)
	}
	tokens, err := idx.Tokens("user-1")
	if err != nil {
		t.Fatalf("tokens: %v", err)
	}
	if len(tokens) != 0 {
		t.Fatalf("expected expired token dropped, got %v", tokens)
	}
}

func TestRedisRefreshIndex(t *testing.T) {
	mr := miniredis.RunT(t)
	idx := NewRedisRefreshIndex(mr.Addr(), "")

	if err := idx.Record("user-1", "tok-a", time.Minute); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := idx.Record("user-1", "tok-b", time.Minute); err != nil {
		t.Fatalf("record: %v", err)
	}
	tokens, err := idx.Tokens("user-1")
	if err != nil {
		t.Fatalf("tokens: %v", err)
	}
	if len(tokens) != 2 {
		t.Fatalf("expected 2 tokens, got %v", tokens)
	}

	if err := idx.Clear("user-1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	tokens, err = idx.Tokens("user-1")
	if err != nil {
		t.Fatalf("tokens after clear: %v", err)
	}
	if len(tokens) != 0 {
		t.Fatalf("expected no tokens, got %v", tokens)
	}
}

func TestRedisRefreshIndexExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	idx := NewRedisRefreshIndex(mr.Addr(), "")

	if err := idx.Record("user-1", "tok-a", time.Minute); err != nil {
		t.Fatalf("record: %v", err)
	}
	mr.FastForward(2 * time.Minute)
	tokens, err := idx.Tokens("user-1")
	if err != nil {
		t.Fatalf("tokens after expiry: %v", err)
	}
	if len(tokens) != 0 {
		t.Fatalf("expected index expired, got %v", tokens)
	}
}
