package store

import (
	"context"
	"time"

	"tripagent/pkg/domain"
)

// Store defines persistence operations for users and finished searches.
type Store interface {
	// users
	SaveUser(domain.User) error
	HasUsername(username string) (bool, error)
	HasUserEmail(email string) (bool, error)
	GetUserByUsername(username string) (domain.User, bool, error)
	GetUserByID(id string) (domain.User, bool, error)
	DeleteUser(id string) error

	// searches
	SaveSearch(rec domain.SearchRecord, destination string) error
	ListSearchesByUser(userID string, skip, limit int) ([]domain.SearchSummary, error)
}

// SearchCache holds the live state of in-flight and recently finished searches.
// Poll reads go here, not to the relational store.
type SearchCache interface {
	Put(ctx context.Context, rec domain.SearchRecord) error
	Get(ctx context.Context, searchID string) (domain.SearchRecord, bool, error)
}

// RefreshIndex tracks which refresh tokens were issued to each user so that
// account deletion can revoke all of them at once.
type RefreshIndex interface {
	Record(userID, token string, ttl time.Duration) error
	Tokens(userID string) ([]string, error)
	Clear(userID string) error
}
