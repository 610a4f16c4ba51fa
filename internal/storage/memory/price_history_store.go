package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/alexdziarn/fool.fun/internal/domain"
	"github.com/alexdziarn/fool.fun/internal/storage"
)

// PriceHistoryStore is an in-memory implementation of
// storage.PriceHistoryStore.
type PriceHistoryStore struct {
	mu   sync.RWMutex
	data map[string][]*domain.PricePoint // keyed by token address
}

// NewPriceHistoryStore creates a new in-memory price history store.
func NewPriceHistoryStore() *PriceHistoryStore {
	return &PriceHistoryStore{
		data: make(map[string][]*domain.PricePoint),
	}
}

// Compile-time interface check.
var _ storage.PriceHistoryStore = (*PriceHistoryStore)(nil)

// Insert appends one price point.
func (s *PriceHistoryStore) Insert(_ context.Context, p *domain.PricePoint) error {
	if p == nil || p.Token == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pointCopy := *p
	s.data[p.Token] = append(s.data[p.Token], &pointCopy)
	return nil
}

// GetByToken retrieves all points for a token, ordered by timestamp ASC.
func (s *PriceHistoryStore) GetByToken(_ context.Context, token string) ([]*domain.PricePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	points := s.data[token]
	result := make([]*domain.PricePoint, 0, len(points))
	for _, p := range points {
		pointCopy := *p
		result = append(result, &pointCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].TimestampMs < result[j].TimestampMs
	})

	return result, nil
}
