package clickhouse

import (
	"context"
	"fmt"

	"github.com/alexdziarn/fool.fun/internal/domain"
	"github.com/alexdziarn/fool.fun/internal/storage"
)

// PriceHistoryStore implements storage.PriceHistoryStore using ClickHouse.
type PriceHistoryStore struct {
	conn *Conn
}

// NewPriceHistoryStore creates a new PriceHistoryStore.
func NewPriceHistoryStore(conn *Conn) *PriceHistoryStore {
	return &PriceHistoryStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PriceHistoryStore = (*PriceHistoryStore)(nil)

// Insert appends one price point.
func (s *PriceHistoryStore) Insert(ctx context.Context, p *domain.PricePoint) error {
	if p == nil || p.Token == "" {
		return storage.ErrInvalidInput
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO price_history (
			token, timestamp_ms, price, next_price, steal_count
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	err = batch.Append(
		p.Token, uint64(p.TimestampMs), p.Price, p.NextPrice, p.StealCount,
	)
	if err != nil {
		return fmt.Errorf("append to batch: %w", err)
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByToken retrieves all points for a token, ordered by timestamp ASC.
func (s *PriceHistoryStore) GetByToken(ctx context.Context, token string) ([]*domain.PricePoint, error) {
	query := `
		SELECT token, timestamp_ms, price, next_price, steal_count
		FROM price_history
		WHERE token = ?
		ORDER BY timestamp_ms ASC
	`

	rows, err := s.conn.Query(ctx, query, token)
	if err != nil {
		return nil, fmt.Errorf("get price history: %w", err)
	}
	defer rows.Close()

	var result []*domain.PricePoint
	for rows.Next() {
		var p domain.PricePoint
		var timestampMs uint64

		err := rows.Scan(&p.Token, &timestampMs, &p.Price, &p.NextPrice, &p.StealCount)
		if err != nil {
			return nil, fmt.Errorf("scan price point: %w", err)
		}

		p.TimestampMs = int64(timestampMs)
		result = append(result, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price points: %w", err)
	}
	return result, nil
}
