package domain

// TransferRole identifies why a settlement transfer is owed.
type TransferRole string

const (
	RoleDevFee        TransferRole = "DEV_FEE"
	RoleMinterFee     TransferRole = "MINTER_FEE"
	RoleHolderPayment TransferRole = "HOLDER_PAYMENT"
	RoleRefund        TransferRole = "REFUND"
)

// SettlementTransfer is one (from, to, amount) instruction produced by a
// steal. Zero-amount transfers are skipped by the executor.
type SettlementTransfer struct {
	From   string
	To     string
	Amount uint64 // lamports
	Role   TransferRole
}

// Settlement is the ordered set of transfers a single steal owes. The
// record mutation is authoritative; executing the settlement is
// retryable against idempotent pay semantics.
type Settlement struct {
	Transfers []SettlementTransfer
}

// Total returns the sum of all transfer amounts. Amounts are bounded by
// the tendered payment, so the sum cannot overflow uint64 in practice.
func (s Settlement) Total() uint64 {
	var total uint64
	for _, t := range s.Transfers {
		total += t.Amount
	}
	return total
}
