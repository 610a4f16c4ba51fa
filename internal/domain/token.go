package domain

// Metadata length limits, enforced at initialization.
const (
	MaxNameLen        = 32
	MaxSymbolLen      = 8
	MaxDescriptionLen = 200
	MaxImageLen       = 200
)

// Initial price bounds in lamports (0.1 SOL to 1 SOL).
const (
	MinInitialPrice uint64 = 100_000_000
	MaxInitialPrice uint64 = 1_000_000_000
)

// Price increment bounds in basis points. 10000 = 1.0x.
const (
	MinPriceIncrement uint64 = 12000
	MaxPriceIncrement uint64 = 20000

	// DefaultPriceIncrement is the fixed 1.2x multiplier used by the
	// escrow fee policy.
	DefaultPriceIncrement uint64 = 12000

	// BasisPointDenominator converts basis points to a ratio.
	BasisPointDenominator uint64 = 10000
)

// Token is the sole persistent entity of the steal engine.
// Corresponds to the tokens table in PostgreSQL.
type Token struct {
	Address     string // PRIMARY KEY, derived from (minter, name) seeds
	Name        string // immutable after creation, ≤32 chars
	Symbol      string // ≤8 chars
	Description string // ≤200 chars
	Image       string // image URL or IPFS reference, ≤200 chars

	CurrentHolder string // base58 pubkey of the present owner
	Minter        string // creator, fixed at creation, perpetual fee share
	Dev           string // platform operator, fixed at creation, perpetual fee share

	CurrentPrice  uint64 // lamports required to steal right now
	NextPrice     uint64 // price after the next successful steal, never stale
	PreviousPrice uint64 // price paid in the most recent steal, 0 before any steal

	PriceIncrement      uint64 // basis points, 10000 = 1.0x
	FeePolicy           FeePolicyKind
	FirstStealCompleted bool // monotone: false → true, never reverts

	CreatedAt int64 // Unix timestamp in milliseconds
	UpdatedAt int64 // last steal/transfer timestamp (ms)
}

// FeePolicyKind selects which historical fee computation a token uses.
type FeePolicyKind string

const (
	// FeePolicyEscrow takes 10% of the price increase since the previous
	// steal and settles out of an escrowed vault balance.
	FeePolicyEscrow FeePolicyKind = "ESCROW"

	// FeePolicyDirect takes 10% of the current price and settles directly
	// from the stealer's tendered amount.
	FeePolicyDirect FeePolicyKind = "DIRECT"
)

// Valid reports whether k is a known fee policy.
func (k FeePolicyKind) Valid() bool {
	return k == FeePolicyEscrow || k == FeePolicyDirect
}
