package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/alexdziarn/fool.fun/internal/domain"
	"github.com/alexdziarn/fool.fun/internal/storage"
)

// TokenStore is an in-memory implementation of storage.TokenStore.
type TokenStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Token // keyed by address
}

// NewTokenStore creates a new in-memory token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{
		data: make(map[string]*domain.Token),
	}
}

// Compile-time interface check.
var _ storage.TokenStore = (*TokenStore)(nil)

// Insert adds a new token. Returns ErrAlreadyExists if the address is taken.
func (s *TokenStore) Insert(_ context.Context, t *domain.Token) error {
	if t == nil || t.Address == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[t.Address]; exists {
		return storage.ErrAlreadyExists
	}

	// Store a copy to prevent external mutation
	tokenCopy := *t
	s.data[t.Address] = &tokenCopy
	return nil
}

// Get retrieves a token by address. Returns ErrNotFound if not exists.
func (s *TokenStore) Get(_ context.Context, address string) (*domain.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, exists := s.data[address]
	if !exists {
		return nil, storage.ErrNotFound
	}

	tokenCopy := *t
	return &tokenCopy, nil
}

// Update persists the mutated state of an existing token.
func (s *TokenStore) Update(_ context.Context, t *domain.Token) error {
	if t == nil || t.Address == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[t.Address]; !exists {
		return storage.ErrNotFound
	}

	tokenCopy := *t
	s.data[t.Address] = &tokenCopy
	return nil
}

// List retrieves all tokens in the given order.
func (s *TokenStore) List(_ context.Context, order storage.TokenSort) ([]*domain.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Token, 0, len(s.data))
	for _, t := range s.data {
		tokenCopy := *t
		result = append(result, &tokenCopy)
	}

	sortTokens(result, order)
	return result, nil
}

// ListByHolder retrieves tokens currently held by an identity.
func (s *TokenStore) ListByHolder(_ context.Context, holder string) ([]*domain.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Token
	for _, t := range s.data {
		if t.CurrentHolder == holder {
			tokenCopy := *t
			result = append(result, &tokenCopy)
		}
	}

	sortTokens(result, storage.SortByPriceDesc)
	return result, nil
}

// ListByMinter retrieves tokens created by an identity.
func (s *TokenStore) ListByMinter(_ context.Context, minter string) ([]*domain.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Token
	for _, t := range s.data {
		if t.Minter == minter {
			tokenCopy := *t
			result = append(result, &tokenCopy)
		}
	}

	sortTokens(result, storage.SortByPriceDesc)
	return result, nil
}

// sortTokens orders tokens deterministically, breaking ties by address.
func sortTokens(tokens []*domain.Token, order storage.TokenSort) {
	sort.Slice(tokens, func(i, j int) bool {
		a, b := tokens[i], tokens[j]
		switch order {
		case storage.SortByPriceAsc:
			if a.CurrentPrice != b.CurrentPrice {
				return a.CurrentPrice < b.CurrentPrice
			}
		case storage.SortByCreatedDesc:
			if a.CreatedAt != b.CreatedAt {
				return a.CreatedAt > b.CreatedAt
			}
		default: // SortByPriceDesc
			if a.CurrentPrice != b.CurrentPrice {
				return a.CurrentPrice > b.CurrentPrice
			}
		}
		return a.Address < b.Address
	})
}
