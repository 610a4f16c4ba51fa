package storage

import (
	"context"

	"github.com/alexdziarn/fool.fun/internal/domain"
)

// TokenSort orders token listings.
type TokenSort string

const (
	SortByPriceDesc   TokenSort = "PRICE_DESC"
	SortByPriceAsc    TokenSort = "PRICE_ASC"
	SortByCreatedDesc TokenSort = "CREATED_DESC"
)

// TokenStore provides access to tokens storage.
type TokenStore interface {
	// Insert adds a new token. Returns ErrAlreadyExists if the address
	// is taken (one record per minter+name, enforced by derivation).
	Insert(ctx context.Context, t *domain.Token) error

	// Get retrieves a token by address. Returns ErrNotFound if not exists.
	Get(ctx context.Context, address string) (*domain.Token, error)

	// Update persists the mutated state of an existing token.
	// Returns ErrNotFound if the address does not exist.
	Update(ctx context.Context, t *domain.Token) error

	// List retrieves all tokens in the given order.
	List(ctx context.Context, sort TokenSort) ([]*domain.Token, error)

	// ListByHolder retrieves tokens currently held by an identity,
	// ordered by current price DESC.
	ListByHolder(ctx context.Context, holder string) ([]*domain.Token, error)

	// ListByMinter retrieves tokens created by an identity, ordered by
	// current price DESC.
	ListByMinter(ctx context.Context, minter string) ([]*domain.Token, error)
}

// ActivityStore provides access to the append-only token history.
type ActivityStore interface {
	// Insert adds a history entry. Returns ErrAlreadyExists if the
	// activity_id exists.
	Insert(ctx context.Context, a *domain.Activity) error

	// GetByToken retrieves all entries for a token, ordered by
	// timestamp ASC.
	GetByToken(ctx context.Context, token string) ([]*domain.Activity, error)
}

// PriceHistoryStore provides access to the price timeseries.
type PriceHistoryStore interface {
	// Insert appends one price point.
	Insert(ctx context.Context, p *domain.PricePoint) error

	// GetByToken retrieves all points for a token, ordered by
	// timestamp ASC.
	GetByToken(ctx context.Context, token string) ([]*domain.PricePoint, error)
}
