package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/alexdziarn/fool.fun/internal/domain"
	"github.com/alexdziarn/fool.fun/internal/storage"
)

// ActivityStore is an in-memory implementation of storage.ActivityStore.
type ActivityStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Activity // keyed by activity_id
}

// NewActivityStore creates a new in-memory activity store.
func NewActivityStore() *ActivityStore {
	return &ActivityStore{
		data: make(map[string]*domain.Activity),
	}
}

// Compile-time interface check.
var _ storage.ActivityStore = (*ActivityStore)(nil)

// Insert adds a history entry. Returns ErrAlreadyExists if the
// activity_id exists.
func (s *ActivityStore) Insert(_ context.Context, a *domain.Activity) error {
	if a == nil || a.ActivityID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[a.ActivityID]; exists {
		return storage.ErrAlreadyExists
	}

	activityCopy := *a
	s.data[a.ActivityID] = &activityCopy
	return nil
}

// GetByToken retrieves all entries for a token, ordered by timestamp ASC.
func (s *ActivityStore) GetByToken(_ context.Context, token string) ([]*domain.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Activity
	for _, a := range s.data {
		if a.Token == token {
			activityCopy := *a
			result = append(result, &activityCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Timestamp != result[j].Timestamp {
			return result[i].Timestamp < result[j].Timestamp
		}
		return result[i].ActivityID < result[j].ActivityID
	})

	return result, nil
}
