package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/alexdziarn/fool.fun/internal/domain"
	"github.com/alexdziarn/fool.fun/internal/storage"
)

// TokenStore implements storage.TokenStore using PostgreSQL.
type TokenStore struct {
	pool *Pool
}

// NewTokenStore creates a new TokenStore.
func NewTokenStore(pool *Pool) *TokenStore {
	return &TokenStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TokenStore = (*TokenStore)(nil)

const tokenColumns = `
	address, name, symbol, description, image,
	current_holder, minter, dev,
	current_price, next_price, previous_price,
	price_increment, fee_policy, first_steal_completed,
	created_at, updated_at
`

// Insert adds a new token. Returns ErrAlreadyExists if the address is taken.
func (s *TokenStore) Insert(ctx context.Context, t *domain.Token) error {
	query := `
		INSERT INTO tokens (` + tokenColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := s.pool.Exec(ctx, query,
		t.Address, t.Name, t.Symbol, t.Description, t.Image,
		t.CurrentHolder, t.Minter, t.Dev,
		int64(t.CurrentPrice), int64(t.NextPrice), int64(t.PreviousPrice),
		int64(t.PriceIncrement), string(t.FeePolicy), t.FirstStealCompleted,
		t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("insert token: %w", err)
	}
	return nil
}

// Get retrieves a token by address. Returns ErrNotFound if not exists.
func (s *TokenStore) Get(ctx context.Context, address string) (*domain.Token, error) {
	query := `SELECT ` + tokenColumns + ` FROM tokens WHERE address = $1`

	row := s.pool.QueryRow(ctx, query, address)
	t, err := scanToken(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get token: %w", err)
	}
	return t, nil
}

// Update persists the mutated state of an existing token.
func (s *TokenStore) Update(ctx context.Context, t *domain.Token) error {
	query := `
		UPDATE tokens SET
			current_holder = $2,
			current_price = $3,
			next_price = $4,
			previous_price = $5,
			first_steal_completed = $6,
			updated_at = $7
		WHERE address = $1
	`

	tag, err := s.pool.Exec(ctx, query,
		t.Address,
		t.CurrentHolder,
		int64(t.CurrentPrice), int64(t.NextPrice), int64(t.PreviousPrice),
		t.FirstStealCompleted,
		t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// List retrieves all tokens in the given order.
func (s *TokenStore) List(ctx context.Context, order storage.TokenSort) ([]*domain.Token, error) {
	orderBy := "current_price DESC, address ASC"
	switch order {
	case storage.SortByPriceAsc:
		orderBy = "current_price ASC, address ASC"
	case storage.SortByCreatedDesc:
		orderBy = "created_at DESC, address ASC"
	}

	query := `SELECT ` + tokenColumns + ` FROM tokens ORDER BY ` + orderBy

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list tokens: %w", err)
	}
	defer rows.Close()

	return scanTokens(rows)
}

// ListByHolder retrieves tokens currently held by an identity.
func (s *TokenStore) ListByHolder(ctx context.Context, holder string) ([]*domain.Token, error) {
	query := `
		SELECT ` + tokenColumns + `
		FROM tokens
		WHERE current_holder = $1
		ORDER BY current_price DESC, address ASC
	`

	rows, err := s.pool.Query(ctx, query, holder)
	if err != nil {
		return nil, fmt.Errorf("list tokens by holder: %w", err)
	}
	defer rows.Close()

	return scanTokens(rows)
}

// ListByMinter retrieves tokens created by an identity.
func (s *TokenStore) ListByMinter(ctx context.Context, minter string) ([]*domain.Token, error) {
	query := `
		SELECT ` + tokenColumns + `
		FROM tokens
		WHERE minter = $1
		ORDER BY current_price DESC, address ASC
	`

	rows, err := s.pool.Query(ctx, query, minter)
	if err != nil {
		return nil, fmt.Errorf("list tokens by minter: %w", err)
	}
	defer rows.Close()

	return scanTokens(rows)
}

// scanToken scans a single token row.
func scanToken(row pgx.Row) (*domain.Token, error) {
	var t domain.Token
	var currentPrice, nextPrice, previousPrice, priceIncrement int64
	var feePolicy string

	err := row.Scan(
		&t.Address, &t.Name, &t.Symbol, &t.Description, &t.Image,
		&t.CurrentHolder, &t.Minter, &t.Dev,
		&currentPrice, &nextPrice, &previousPrice,
		&priceIncrement, &feePolicy, &t.FirstStealCompleted,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.CurrentPrice = uint64(currentPrice)
	t.NextPrice = uint64(nextPrice)
	t.PreviousPrice = uint64(previousPrice)
	t.PriceIncrement = uint64(priceIncrement)
	t.FeePolicy = domain.FeePolicyKind(feePolicy)
	return &t, nil
}

// scanTokens scans all token rows.
func scanTokens(rows pgx.Rows) ([]*domain.Token, error) {
	var result []*domain.Token
	for rows.Next() {
		t, err := scanToken(rows)
		if err != nil {
			return nil, fmt.Errorf("scan token: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tokens: %w", err)
	}
	return result, nil
}
