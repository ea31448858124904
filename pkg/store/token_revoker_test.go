package store

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestMemoryTokenRevokerExpiry(t *testing.T) {
	r := NewMemoryTokenRevoker()

	if err := r.Revoke("tok-1", time.Minute); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	revoked, err := r.IsRevoked("tok-1")
	if err != nil {
		t.Fatalf("is revoked: %v", err)
	}
	if !revoked {
		t.Fatal("expected tok-1 revoked")
	}

	// Zero or negative TTL means the token is already expired; nothing to track.
	if err := r.Revoke("tok-2", 0); err != nil {
		t.Fatalf("revoke expired: %v", err)
	}
	revoked, err = r.IsRevoked("tok-2")
	if err != nil {
		t.Fatalf("is revoked: %v", err)
	}
	if revoked {
		t.Fatal("expected tok-2 not revoked")
	}
}

func TestRedisTokenRevoker(t *testing.T) {
	mr := miniredis.RunT(t)
	r := NewRedisTokenRevoker(mr.Addr(), "")

	if err := r.Revoke("tok-1", time.Minute); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	revoked, err := r.IsRevoked("tok-1")
	if err != nil {
		t.Fatalf("is revoked: %v", err)
	}
	if !revoked {
		t.Fatal("expected tok-1 revoked")
	}

	mr.FastForward(2 * time.Minute)
	revoked, err = r.IsRevoked("tok-1")
	if err != nil {
		t.Fatalf("is revoked after expiry: %v", err)
	}
	if revoked {
		t.Fatal("expected revocation entry expired")
	}
}
