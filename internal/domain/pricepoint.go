package domain

// PricePoint is one sample of a token's price curve, appended after
// every steal. Stored in ClickHouse for chart queries.
type PricePoint struct {
	Token       string // token address
	TimestampMs int64  // sample time (ms)
	Price       uint64 // current_price after the steal (lamports)
	NextPrice   uint64 // next_price after the steal (lamports)
	StealCount  uint32 // completed steals at sample time
}
