package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/alexdziarn/fool.fun/internal/domain"
	"github.com/alexdziarn/fool.fun/internal/storage"
)

func testToken(address string, price uint64) *domain.Token {
	return &domain.Token{
		Address:        address,
		Name:           "Fool Token",
		Symbol:         "FOOL",
		CurrentHolder:  "holder1",
		Minter:         "minter1",
		Dev:            "dev1",
		CurrentPrice:   price,
		NextPrice:      price * 12 / 10,
		PriceIncrement: 12000,
		FeePolicy:      domain.FeePolicyDirect,
		CreatedAt:      1704067200000,
		UpdatedAt:      1704067200000,
	}
}

func TestTokenStore_InsertAndGet(t *testing.T) {
	store := NewTokenStore()
	ctx := context.Background()

	tok := testToken("addr1", 100_000_000)
	if err := store.Insert(ctx, tok); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.Get(ctx, "addr1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Address != tok.Address || got.CurrentPrice != tok.CurrentPrice {
		t.Errorf("got %+v, want %+v", got, tok)
	}

	// Mutating the returned copy must not affect the store.
	got.CurrentPrice = 1
	again, _ := store.Get(ctx, "addr1")
	if again.CurrentPrice != 100_000_000 {
		t.Error("store returned a shared reference")
	}
}

func TestTokenStore_InsertDuplicate(t *testing.T) {
	store := NewTokenStore()
	ctx := context.Background()

	if err := store.Insert(ctx, testToken("addr1", 100_000_000)); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	err := store.Insert(ctx, testToken("addr1", 200_000_000))
	if !errors.Is(err, storage.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestTokenStore_Update(t *testing.T) {
	store := NewTokenStore()
	ctx := context.Background()

	tok := testToken("addr1", 100_000_000)
	if err := store.Insert(ctx, tok); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	tok.CurrentHolder = "holder2"
	tok.CurrentPrice = 120_000_000
	tok.FirstStealCompleted = true
	if err := store.Update(ctx, tok); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, _ := store.Get(ctx, "addr1")
	if got.CurrentHolder != "holder2" || !got.FirstStealCompleted {
		t.Errorf("update not persisted: %+v", got)
	}

	err := store.Update(ctx, testToken("missing", 100_000_000))
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing token, got %v", err)
	}
}

func TestTokenStore_ListSorting(t *testing.T) {
	store := NewTokenStore()
	ctx := context.Background()

	for _, tok := range []*domain.Token{
		testToken("a", 300_000_000),
		testToken("b", 100_000_000),
		testToken("c", 200_000_000),
	} {
		if err := store.Insert(ctx, tok); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	desc, err := store.List(ctx, storage.SortByPriceDesc)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(desc) != 3 || desc[0].Address != "a" || desc[2].Address != "b" {
		t.Errorf("unexpected PRICE_DESC order: %v", addresses(desc))
	}

	asc, err := store.List(ctx, storage.SortByPriceAsc)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if asc[0].Address != "b" || asc[2].Address != "a" {
		t.Errorf("unexpected PRICE_ASC order: %v", addresses(asc))
	}
}

func TestTokenStore_ListByHolderAndMinter(t *testing.T) {
	store := NewTokenStore()
	ctx := context.Background()

	t1 := testToken("a", 100_000_000)
	t2 := testToken("b", 200_000_000)
	t2.CurrentHolder = "holder2"
	t2.Minter = "minter2"
	for _, tok := range []*domain.Token{t1, t2} {
		if err := store.Insert(ctx, tok); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	held, err := store.ListByHolder(ctx, "holder2")
	if err != nil {
		t.Fatalf("ListByHolder failed: %v", err)
	}
	if len(held) != 1 || held[0].Address != "b" {
		t.Errorf("unexpected holder result: %v", addresses(held))
	}

	minted, err := store.ListByMinter(ctx, "minter1")
	if err != nil {
		t.Fatalf("ListByMinter failed: %v", err)
	}
	if len(minted) != 1 || minted[0].Address != "a" {
		t.Errorf("unexpected minter result: %v", addresses(minted))
	}
}

func TestTokenStore_NotFound(t *testing.T) {
	store := NewTokenStore()

	_, err := store.Get(context.Background(), "nonexistent")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func addresses(tokens []*domain.Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Address
	}
	return out
}
