package engine

import "errors"

// Validation errors: rejected before any state is produced or mutated.
var (
	ErrNameTooLong           = errors.New("name must be 32 characters or less")
	ErrSymbolTooLong         = errors.New("symbol must be 8 characters or less")
	ErrDescriptionTooLong    = errors.New("description must be 200 characters or less")
	ErrImageTooLong          = errors.New("image URL must be 200 characters or less")
	ErrInvalidInitialPrice   = errors.New("initial price must be between 0.1 and 1 SOL")
	ErrInvalidPriceIncrement = errors.New("price increment must be between 12000 and 20000 basis points")
	ErrInvalidDevAddress     = errors.New("invalid dev address")
	ErrInvalidFeePolicy      = errors.New("unknown fee policy")
)

// Precondition errors: the operation is well-formed but not permitted in
// the record's current state. No mutation is performed.
var (
	ErrInsufficientPayment = errors.New("payment amount is less than current price")
	ErrNotCurrentHolder    = errors.New("only the current holder can transfer the token")
)

// ErrNumericalOverflow is returned when any price, fee or refund
// computation would overflow or underflow uint64. The whole operation
// aborts with the record unchanged; arithmetic never saturates or wraps.
var ErrNumericalOverflow = errors.New("numerical overflow")
