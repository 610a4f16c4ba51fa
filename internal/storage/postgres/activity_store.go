package postgres

import (
	"context"
	"fmt"

	"github.com/alexdziarn/fool.fun/internal/domain"
	"github.com/alexdziarn/fool.fun/internal/storage"
)

// ActivityStore implements storage.ActivityStore using PostgreSQL.
type ActivityStore struct {
	pool *Pool
}

// NewActivityStore creates a new ActivityStore.
func NewActivityStore(pool *Pool) *ActivityStore {
	return &ActivityStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ActivityStore = (*ActivityStore)(nil)

// Insert adds a history entry. Returns ErrAlreadyExists if the
// activity_id exists.
func (s *ActivityStore) Insert(ctx context.Context, a *domain.Activity) error {
	query := `
		INSERT INTO token_activity (
			activity_id, token, activity_type, from_identity, to_identity, amount, activity_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.pool.Exec(ctx, query,
		a.ActivityID,
		a.Token,
		string(a.Type),
		a.From,
		a.To,
		int64(a.Amount),
		a.Timestamp,
		a.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// GetByToken retrieves all entries for a token, ordered by timestamp ASC.
func (s *ActivityStore) GetByToken(ctx context.Context, token string) ([]*domain.Activity, error) {
	query := `
		SELECT activity_id, token, activity_type, from_identity, to_identity, amount, activity_at, created_at
		FROM token_activity
		WHERE token = $1
		ORDER BY activity_at ASC, activity_id ASC
	`

	rows, err := s.pool.Query(ctx, query, token)
	if err != nil {
		return nil, fmt.Errorf("get activity by token: %w", err)
	}
	defer rows.Close()

	var result []*domain.Activity
	for rows.Next() {
		var a domain.Activity
		var activityType string
		var amount int64

		err := rows.Scan(
			&a.ActivityID, &a.Token, &activityType,
			&a.From, &a.To, &amount,
			&a.Timestamp, &a.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}

		a.Type = domain.ActivityType(activityType)
		a.Amount = uint64(amount)
		result = append(result, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activity: %w", err)
	}
	return result, nil
}
