// Package engine implements the perpetual reverse-auction state
// machine: price escalation, fee splits and holder transitions for a
// single token record. All operations are pure compute-then-commit —
// every check and every arithmetic step happens against staged values,
// and the record is mutated only after the whole operation has
// succeeded. A failed operation leaves the record untouched.
//
// The engine performs no I/O and holds no locks; callers guarantee
// mutual exclusion per record.
package engine

import (
	"github.com/alexdziarn/fool.fun/internal/domain"
)

// Engine validates and applies initialize, steal and transfer
// operations. The dev identity is injected configuration rather than a
// baked-in constant so the engine is testable with arbitrary operators.
type Engine struct {
	dev string
}

// New creates an Engine bound to the platform operator identity.
func New(dev string) (*Engine, error) {
	if dev == "" {
		return nil, ErrInvalidDevAddress
	}
	return &Engine{dev: dev}, nil
}

// Dev returns the configured platform operator identity.
func (e *Engine) Dev() string { return e.dev }

// InitializeParams carries the inputs of token creation. Identity
// verification of the minter happens at the boundary; the engine trusts
// the identities it is given.
type InitializeParams struct {
	Address     string
	Name        string
	Symbol      string
	Description string
	Image       string

	Minter string
	Dev    string

	InitialPrice   uint64
	PriceIncrement uint64 // 0 selects the policy default
	FeePolicy      domain.FeePolicyKind

	Now int64 // Unix ms
}

// Initialize validates params and produces a fresh token record with
// its creation event. No partial record is ever produced.
func (e *Engine) Initialize(p InitializeParams) (*domain.Token, *domain.InitializeEvent, error) {
	if len(p.Name) > domain.MaxNameLen {
		return nil, nil, ErrNameTooLong
	}
	if len(p.Symbol) > domain.MaxSymbolLen {
		return nil, nil, ErrSymbolTooLong
	}
	if len(p.Description) > domain.MaxDescriptionLen {
		return nil, nil, ErrDescriptionTooLong
	}
	if len(p.Image) > domain.MaxImageLen {
		return nil, nil, ErrImageTooLong
	}
	if p.InitialPrice < domain.MinInitialPrice || p.InitialPrice > domain.MaxInitialPrice {
		return nil, nil, ErrInvalidInitialPrice
	}
	if p.Dev != e.dev {
		return nil, nil, ErrInvalidDevAddress
	}

	policy, err := PolicyFor(p.FeePolicy)
	if err != nil {
		return nil, nil, err
	}
	increment, err := policy.ValidateIncrement(p.PriceIncrement)
	if err != nil {
		return nil, nil, err
	}

	nextPrice, err := nextPrice(p.InitialPrice, increment)
	if err != nil {
		return nil, nil, err
	}

	t := &domain.Token{
		Address:             p.Address,
		Name:                p.Name,
		Symbol:              p.Symbol,
		Description:         p.Description,
		Image:               p.Image,
		CurrentHolder:       p.Minter,
		Minter:              p.Minter,
		Dev:                 p.Dev,
		CurrentPrice:        p.InitialPrice,
		NextPrice:           nextPrice,
		PreviousPrice:       0,
		PriceIncrement:      increment,
		FeePolicy:           policy.Kind(),
		FirstStealCompleted: false,
		CreatedAt:           p.Now,
		UpdatedAt:           p.Now,
	}

	event := &domain.InitializeEvent{
		Token:            t.Address,
		Minter:           t.Minter,
		Dev:              t.Dev,
		InitialPrice:     t.CurrentPrice,
		InitialNextPrice: t.NextPrice,
		Timestamp:        p.Now,
	}

	return t, event, nil
}

// StealResult is everything a successful steal produced: the event to
// emit and the settlement instructions for the payment primitive.
type StealResult struct {
	Event      domain.StealEvent
	Settlement domain.Settlement
	Split      FeeSplit
	Refund     uint64
}

// Steal applies a forced ownership transfer: the stealer tenders at
// least the current price, the price escalates, and the tendered amount
// is divided between dev, minter and the previous holder. The token is
// mutated only after every check and every arithmetic step succeeds.
func (e *Engine) Steal(t *domain.Token, stealer string, amount uint64, now int64) (*StealResult, error) {
	if t.Dev != e.dev {
		return nil, ErrInvalidDevAddress
	}
	if amount < t.CurrentPrice {
		return nil, ErrInsufficientPayment
	}

	policy, err := PolicyFor(t.FeePolicy)
	if err != nil {
		return nil, err
	}

	// Stage everything against the pre-mutation snapshot.
	pre := *t

	split, err := policy.Split(&pre)
	if err != nil {
		return nil, err
	}
	refund, err := policy.Refund(amount, split, pre.CurrentPrice)
	if err != nil {
		return nil, err
	}

	newNext, err := nextPrice(pre.NextPrice, pre.PriceIncrement)
	if err != nil {
		return nil, err
	}

	// Commit. Order mirrors the original update sequence: previous ←
	// current ← next, then recompute next from the new current.
	t.PreviousPrice = pre.CurrentPrice
	t.CurrentPrice = pre.NextPrice
	t.NextPrice = newNext
	t.CurrentHolder = stealer
	t.FirstStealCompleted = true
	t.UpdatedAt = now

	settlement := domain.Settlement{Transfers: []domain.SettlementTransfer{
		{From: stealer, To: pre.Dev, Amount: split.DevFee, Role: domain.RoleDevFee},
		{From: stealer, To: pre.Minter, Amount: split.MinterFee, Role: domain.RoleMinterFee},
		{From: stealer, To: pre.CurrentHolder, Amount: split.HolderPayment, Role: domain.RoleHolderPayment},
		{From: stealer, To: stealer, Amount: refund, Role: domain.RoleRefund},
	}}

	event := domain.StealEvent{
		Token:          pre.Address,
		PreviousHolder: pre.CurrentHolder,
		NewHolder:      stealer,
		PricePaid:      pre.CurrentPrice,
		PriceIncrease:  pre.CurrentPrice - pre.PreviousPrice,
		DevFee:         split.DevFee,
		MinterFee:      split.MinterFee,
		HolderPayment:  split.HolderPayment,
		RefundAmount:   refund,
		NextPrice:      t.NextPrice,
		IsFirstSteal:   split.FirstSteal,

		// Historical payload values, preserved as observed on chain.
		ObservedIsFirstSteal:  false,
		ObservedPriceIncrease: policy.ObservedPriceIncrease(&pre, t),

		Timestamp: now,
	}

	return &StealResult{
		Event:      event,
		Settlement: settlement,
		Split:      split,
		Refund:     refund,
	}, nil
}

// Transfer reassigns custody without payment, outside the pricing
// curve. Only the current holder may do this; prices are untouched.
func (e *Engine) Transfer(t *domain.Token, caller, newHolder string, now int64) (*domain.TransferEvent, error) {
	if caller != t.CurrentHolder {
		return nil, ErrNotCurrentHolder
	}

	from := t.CurrentHolder
	t.CurrentHolder = newHolder
	t.UpdatedAt = now

	return &domain.TransferEvent{
		Token:     t.Address,
		From:      from,
		To:        newHolder,
		Price:     t.CurrentPrice,
		NextPrice: t.NextPrice,
		Timestamp: now,
	}, nil
}

// nextPrice applies one step of multiplicative growth:
// price * increment / 10000, floor division, checked.
func nextPrice(price, increment uint64) (uint64, error) {
	v, err := checkedMul(price, increment)
	if err != nil {
		return 0, err
	}
	return checkedDiv(v, domain.BasisPointDenominator)
}
