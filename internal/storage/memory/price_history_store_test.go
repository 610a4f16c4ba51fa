package memory

import (
	"context"
	"testing"

	"github.com/alexdziarn/fool.fun/internal/domain"
)

func TestPriceHistoryStore_InsertAndGet(t *testing.T) {
	store := NewPriceHistoryStore()
	ctx := context.Background()

	points := []*domain.PricePoint{
		{Token: "tok1", TimestampMs: 300, Price: 144_000_000, NextPrice: 172_800_000, StealCount: 2},
		{Token: "tok1", TimestampMs: 100, Price: 120_000_000, NextPrice: 144_000_000, StealCount: 1},
		{Token: "tok2", TimestampMs: 200, Price: 500_000_000, NextPrice: 600_000_000, StealCount: 1},
	}
	for _, p := range points {
		if err := store.Insert(ctx, p); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	got, err := store.GetByToken(ctx, "tok1")
	if err != nil {
		t.Fatalf("GetByToken failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 points, got %d", len(got))
	}
	if got[0].TimestampMs != 100 || got[1].TimestampMs != 300 {
		t.Errorf("points not ordered by timestamp ASC")
	}
	if got[0].Price != 120_000_000 {
		t.Errorf("Price = %d, want 120_000_000", got[0].Price)
	}
}

func TestPriceHistoryStore_EmptyToken(t *testing.T) {
	store := NewPriceHistoryStore()

	got, err := store.GetByToken(context.Background(), "nonexistent")
	if err != nil {
		t.Fatalf("GetByToken failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no points, got %d", len(got))
	}
}
