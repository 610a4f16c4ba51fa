package domain

// ActivityType classifies a token history entry.
type ActivityType string

const (
	ActivityCreate   ActivityType = "CREATE"
	ActivitySteal    ActivityType = "STEAL"
	ActivityTransfer ActivityType = "TRANSFER"
)

// Activity is one row of a token's history: a create, steal or
// transfer. Corresponds to the token_activity table in PostgreSQL.
type Activity struct {
	ActivityID string       // PRIMARY KEY, deterministic hash
	Token      string       // token address
	Type       ActivityType // CREATE | STEAL | TRANSFER
	From       string       // previous holder ("" for CREATE)
	To         string       // new holder
	Amount     uint64       // lamports paid (0 for CREATE and TRANSFER)
	Timestamp  int64        // Unix timestamp in milliseconds
	CreatedAt  int64        // record creation timestamp (ms)
}
