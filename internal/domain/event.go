package domain

// InitializeEvent is emitted once when a token is created.
type InitializeEvent struct {
	Token            string `json:"token"`
	Minter           string `json:"minter"`
	Dev              string `json:"dev"`
	InitialPrice     uint64 `json:"initial_price"`
	InitialNextPrice uint64 `json:"initial_next_price"`
	Timestamp        int64  `json:"timestamp_ms"`
}

// StealEvent is emitted after every successful steal.
//
// IsFirstSteal and PriceIncrease reproduce the historical on-chain
// payloads: under the escrow policy IsFirstSteal was read after the flag
// had already flipped (so it is always false), and under the direct
// policy PriceIncrease was computed after the price update (so it
// reports the next increase, not the one just paid). The Observed*
// fields carry those historical values; the plain fields carry the
// pre-mutation truth.
type StealEvent struct {
	Token          string `json:"token"`
	PreviousHolder string `json:"previous_holder"`
	NewHolder      string `json:"new_holder"`
	PricePaid      uint64 `json:"price_paid"`
	PriceIncrease  uint64 `json:"price_increase"`
	DevFee         uint64 `json:"dev_fee"`
	MinterFee      uint64 `json:"minter_fee"`
	HolderPayment  uint64 `json:"holder_payment"`
	RefundAmount   uint64 `json:"refund_amount"`
	NextPrice      uint64 `json:"next_price"`
	IsFirstSteal   bool   `json:"is_first_steal"`

	ObservedIsFirstSteal  bool   `json:"observed_is_first_steal"`
	ObservedPriceIncrease uint64 `json:"observed_price_increase"`

	Timestamp int64 `json:"timestamp_ms"`
}

// TransferEvent is emitted when the holder reassigns custody without
// payment. Price fields are included for auditability only.
type TransferEvent struct {
	Token     string `json:"token"`
	From      string `json:"from"`
	To        string `json:"to"`
	Price     uint64 `json:"price"`
	NextPrice uint64 `json:"next_price"`
	Timestamp int64  `json:"timestamp_ms"`
}
