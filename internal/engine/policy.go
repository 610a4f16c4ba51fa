package engine

import (
	"github.com/alexdziarn/fool.fun/internal/domain"
)

// Fee percentages in basis points and whole-percent shares.
const (
	feeBasisPoints   uint64 = 1000 // 10% of the fee base
	devSharePercent  uint64 = 80
	mintSharePercent uint64 = 20
)

// FeeSplit is the staged outcome of a steal's fee computation, produced
// before any field of the token is mutated.
type FeeSplit struct {
	DevFee        uint64
	MinterFee     uint64
	HolderPayment uint64
	TotalFee      uint64
	FirstSteal    bool
}

// FeePolicy is the strategy selected at initialization. Both historical
// behaviors are preserved as named policies rather than forked code
// paths; they diverge in the fee base, refund handling and in the
// quirks of their event payloads.
type FeePolicy interface {
	Kind() domain.FeePolicyKind

	// ValidateIncrement checks a requested price increment, with 0
	// meaning "use the default".
	ValidateIncrement(increment uint64) (uint64, error)

	// Split computes the fee division for a steal of t at its current
	// state. It must not mutate t.
	Split(t *domain.Token) (FeeSplit, error)

	// Refund computes the overpayment returned to the stealer from the
	// tendered amount, given the staged split and the pre-mutation
	// current price.
	Refund(amount uint64, split FeeSplit, currentPrice uint64) (uint64, error)

	// ObservedPriceIncrease reproduces the price_increase value the
	// historical event payload carried, given pre- and post-mutation
	// snapshots of the token.
	ObservedPriceIncrease(pre, post *domain.Token) uint64
}

// PolicyFor returns the FeePolicy implementation for a kind.
func PolicyFor(kind domain.FeePolicyKind) (FeePolicy, error) {
	switch kind {
	case domain.FeePolicyEscrow:
		return escrowPolicy{}, nil
	case domain.FeePolicyDirect:
		return directPolicy{}, nil
	default:
		return nil, ErrInvalidFeePolicy
	}
}

// firstStealSplit is shared by both policies: the entire current price
// is split 50/50 between dev and minter, the holder (the minter itself)
// receives nothing.
func firstStealSplit(currentPrice uint64) (FeeSplit, error) {
	half, err := checkedDiv(currentPrice, 2)
	if err != nil {
		return FeeSplit{}, err
	}
	return FeeSplit{
		DevFee:     half,
		MinterFee:  half,
		TotalFee:   currentPrice,
		FirstSteal: true,
	}, nil
}

// splitFee divides a total fee 80/20 between dev and minter, flooring
// each share.
func splitFee(totalFee uint64) (devFee, minterFee uint64, err error) {
	v, err := checkedMul(totalFee, devSharePercent)
	if err != nil {
		return 0, 0, err
	}
	devFee, err = checkedDiv(v, 100)
	if err != nil {
		return 0, 0, err
	}
	v, err = checkedMul(totalFee, mintSharePercent)
	if err != nil {
		return 0, 0, err
	}
	minterFee, err = checkedDiv(v, 100)
	if err != nil {
		return 0, 0, err
	}
	return devFee, minterFee, nil
}

// escrowPolicy reproduces the original on-chain engine: the fee base is
// the price increase since the previous steal, payments are drawn from
// an escrowed vault, and the increment is fixed at 1.2x.
type escrowPolicy struct{}

func (escrowPolicy) Kind() domain.FeePolicyKind { return domain.FeePolicyEscrow }

func (escrowPolicy) ValidateIncrement(increment uint64) (uint64, error) {
	if increment == 0 {
		return domain.DefaultPriceIncrement, nil
	}
	if increment != domain.DefaultPriceIncrement {
		return 0, ErrInvalidPriceIncrement
	}
	return increment, nil
}

func (escrowPolicy) Split(t *domain.Token) (FeeSplit, error) {
	priceIncrease, err := checkedSub(t.CurrentPrice, t.PreviousPrice)
	if err != nil {
		return FeeSplit{}, err
	}

	if !t.FirstStealCompleted {
		return firstStealSplit(t.CurrentPrice)
	}

	v, err := checkedMul(priceIncrease, feeBasisPoints)
	if err != nil {
		return FeeSplit{}, err
	}
	totalFee, err := checkedDiv(v, domain.BasisPointDenominator)
	if err != nil {
		return FeeSplit{}, err
	}

	devFee, minterFee, err := splitFee(totalFee)
	if err != nil {
		return FeeSplit{}, err
	}

	// Holder recovers their purchase price plus the increase net of fee.
	net, err := checkedSub(priceIncrease, totalFee)
	if err != nil {
		return FeeSplit{}, err
	}
	holderPayment, err := checkedAdd(t.PreviousPrice, net)
	if err != nil {
		return FeeSplit{}, err
	}

	return FeeSplit{
		DevFee:        devFee,
		MinterFee:     minterFee,
		HolderPayment: holderPayment,
		TotalFee:      totalFee,
	}, nil
}

// Refund returns the escrow remainder above the asking price.
func (escrowPolicy) Refund(amount uint64, _ FeeSplit, currentPrice uint64) (uint64, error) {
	if amount <= currentPrice {
		return 0, nil
	}
	return amount - currentPrice, nil
}

// ObservedPriceIncrease: the on-chain program computed the increase
// before mutating, so the historical payload matches the pre-state.
func (escrowPolicy) ObservedPriceIncrease(pre, _ *domain.Token) uint64 {
	return pre.CurrentPrice - pre.PreviousPrice
}

// directPolicy takes its fee from the current price and settles
// directly from the stealer's tendered amount; the increment is
// configurable within [1.2x, 2.0x].
type directPolicy struct{}

func (directPolicy) Kind() domain.FeePolicyKind { return domain.FeePolicyDirect }

func (directPolicy) ValidateIncrement(increment uint64) (uint64, error) {
	if increment == 0 {
		return domain.DefaultPriceIncrement, nil
	}
	if increment < domain.MinPriceIncrement || increment > domain.MaxPriceIncrement {
		return 0, ErrInvalidPriceIncrement
	}
	return increment, nil
}

func (directPolicy) Split(t *domain.Token) (FeeSplit, error) {
	if !t.FirstStealCompleted {
		return firstStealSplit(t.CurrentPrice)
	}

	v, err := checkedMul(t.CurrentPrice, feeBasisPoints)
	if err != nil {
		return FeeSplit{}, err
	}
	totalFee, err := checkedDiv(v, domain.BasisPointDenominator)
	if err != nil {
		return FeeSplit{}, err
	}

	devFee, minterFee, err := splitFee(totalFee)
	if err != nil {
		return FeeSplit{}, err
	}

	holderPayment, err := checkedSub(t.CurrentPrice, totalFee)
	if err != nil {
		return FeeSplit{}, err
	}

	return FeeSplit{
		DevFee:        devFee,
		MinterFee:     minterFee,
		HolderPayment: holderPayment,
		TotalFee:      totalFee,
	}, nil
}

// Refund returns any overpayment above the total cost of the split.
func (directPolicy) Refund(amount uint64, split FeeSplit, _ uint64) (uint64, error) {
	cost, err := checkedAdd(split.HolderPayment, split.DevFee)
	if err != nil {
		return 0, err
	}
	cost, err = checkedAdd(cost, split.MinterFee)
	if err != nil {
		return 0, err
	}
	if amount <= cost {
		return 0, nil
	}
	return amount - cost, nil
}

// ObservedPriceIncrease: the historical payload computed the increase
// after the price update, so it reported the next increase rather than
// the one just paid.
func (directPolicy) ObservedPriceIncrease(_, post *domain.Token) uint64 {
	return post.CurrentPrice - post.PreviousPrice
}
