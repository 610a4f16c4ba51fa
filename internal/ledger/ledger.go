// Package ledger defines the value-transfer primitive the steal engine
// settles through. The engine only produces (from, to, amount)
// instructions; executing them is this boundary's concern.
package ledger

import (
	"context"
	"errors"
	"sync"
)

// ErrInsufficientFunds is returned when the payer balance cannot cover
// a transfer.
var ErrInsufficientFunds = errors.New("insufficient funds")

// Payer moves lamports between identities. A transfer either fully
// succeeds or fails atomically; callers skip zero amounts.
type Payer interface {
	Pay(ctx context.Context, from, to string, amount uint64) error
}

// Memory is an in-memory lamport ledger used by tests, the simulator
// and memory mode. Accounts are created implicitly by funding.
type Memory struct {
	mu       sync.Mutex
	balances map[string]uint64
}

// NewMemory creates an empty in-memory ledger.
func NewMemory() *Memory {
	return &Memory{balances: make(map[string]uint64)}
}

// Compile-time interface check.
var _ Payer = (*Memory)(nil)

// Fund credits an account, creating it if needed.
func (m *Memory) Fund(account string, amount uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[account] += amount
}

// Balance returns the current balance of an account.
func (m *Memory) Balance(account string) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[account]
}

// Pay moves amount from one account to another. Self-transfers are
// valid no-ops. Returns ErrInsufficientFunds without mutation when the
// payer balance is short.
func (m *Memory) Pay(_ context.Context, from, to string, amount uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if amount == 0 || from == to {
		return nil
	}
	if m.balances[from] < amount {
		return ErrInsufficientFunds
	}

	m.balances[from] -= amount
	m.balances[to] += amount
	return nil
}
