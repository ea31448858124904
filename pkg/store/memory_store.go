package store

import (
	"sort"
	"sync"

	"tripagent/pkg/domain"
)

type memorySearch struct {
	rec         domain.SearchRecord
	destination string
}

// MemoryStore keeps users and searches in memory (tests and demo runs only).
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[string]domain.User // id -> user
	searches map[string]memorySearch
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]domain.User),
		searches: make(map[string]memorySearch),
	}
}

func (s *MemoryStore) SaveUser(u domain.User) error {
	s.mu.Lock()
	s.users[u.ID] = u
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) HasUsername(username string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) HasUserEmail(email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) GetUserByUsername(username string) (domain.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, true, nil
		}
	}
	return domain.User{}, false, nil
}

func (s *MemoryStore) GetUserByID(id string) (domain.User, bool, error) {
	s.mu.RLock()
	u, ok := s.users[id]
	s.mu.RUnlock()
	return u, ok, nil
}

func (s *MemoryStore) DeleteUser(id string) error {
	s.mu.Lock()
	delete(s.users, id)
	for searchID, item := range s.searches {
		if item.rec.UserID == id {
			delete(s.searches, searchID)
		}
	}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) SaveSearch(rec domain.SearchRecord, destination string) error {
	s.mu.Lock()
	s.searches[rec.SearchID] = memorySearch{rec: rec, destination: destination}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) ListSearchesByUser(userID string, skip, limit int) ([]domain.SearchSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	if skip < 0 {
		skip = 0
	}
	s.mu.RLock()
	all := make([]domain.SearchSummary, 0)
	for _, item := range s.searches {
		if item.rec.UserID != userID {
			continue
		}
		all = append(all, domain.SearchSummary{
			SearchID:    item.rec.SearchID,
			UserID:      item.rec.UserID,
			Destination: item.destination,
			Status:      item.rec.Status,
			CreatedAt:   item.rec.CreatedAt,
		})
	}
	s.mu.RUnlock()
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	if skip >= len(all) {
		return []domain.SearchSummary{}, nil
	}
	all = all[skip:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}
