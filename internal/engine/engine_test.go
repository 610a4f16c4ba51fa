package engine

import (
	"errors"
	"math"
	"testing"

	"github.com/alexdziarn/fool.fun/internal/domain"
)

const (
	testDev    = "DevWa11et1111111111111111111111111111111111"
	testMinter = "Minter111111111111111111111111111111111111"
	testThief  = "Stea1er111111111111111111111111111111111111"
	testThief2 = "Stea1er222222222222222222222222222222222222"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(testDev)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return e
}

func initParams(policy domain.FeePolicyKind) InitializeParams {
	return InitializeParams{
		Address:      "token-addr",
		Name:         "Fool Token",
		Symbol:       "FOOL",
		Description:  "a token anyone can steal",
		Image:        "https://example.com/fool.png",
		Minter:       testMinter,
		Dev:          testDev,
		InitialPrice: 100_000_000,
		FeePolicy:    policy,
		Now:          1704067200000,
	}
}

func mustInitialize(t *testing.T, e *Engine, p InitializeParams) *domain.Token {
	t.Helper()
	tok, _, err := e.Initialize(p)
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	return tok
}

func TestInitialize_PopulatesRecord(t *testing.T) {
	e := newTestEngine(t)

	tok, event, err := e.Initialize(initParams(domain.FeePolicyDirect))
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	if tok.CurrentHolder != testMinter {
		t.Errorf("CurrentHolder = %s, want minter", tok.CurrentHolder)
	}
	if tok.CurrentPrice != 100_000_000 {
		t.Errorf("CurrentPrice = %d, want 100_000_000", tok.CurrentPrice)
	}
	// next_price = initial_price * increment / 10000
	if tok.NextPrice != 120_000_000 {
		t.Errorf("NextPrice = %d, want 120_000_000", tok.NextPrice)
	}
	if tok.PreviousPrice != 0 {
		t.Errorf("PreviousPrice = %d, want 0", tok.PreviousPrice)
	}
	if tok.FirstStealCompleted {
		t.Error("FirstStealCompleted should start false")
	}
	if tok.PriceIncrement != domain.DefaultPriceIncrement {
		t.Errorf("PriceIncrement = %d, want default %d", tok.PriceIncrement, domain.DefaultPriceIncrement)
	}

	if event.InitialPrice != 100_000_000 || event.InitialNextPrice != 120_000_000 {
		t.Errorf("event prices = %d/%d, want 100_000_000/120_000_000",
			event.InitialPrice, event.InitialNextPrice)
	}
}

func TestInitialize_NextPriceFormula(t *testing.T) {
	e := newTestEngine(t)

	cases := []struct {
		initial   uint64
		increment uint64
	}{
		{100_000_000, 12000},
		{250_000_000, 15000},
		{999_999_999, 12000},
		{1_000_000_000, 20000},
	}

	for _, tc := range cases {
		p := initParams(domain.FeePolicyDirect)
		p.InitialPrice = tc.initial
		p.PriceIncrement = tc.increment

		tok := mustInitialize(t, e, p)

		want := tc.initial * tc.increment / 10000
		if tok.NextPrice != want {
			t.Errorf("initial=%d increment=%d: NextPrice = %d, want %d",
				tc.initial, tc.increment, tok.NextPrice, want)
		}
	}
}

func TestInitialize_PriceBounds(t *testing.T) {
	e := newTestEngine(t)

	cases := []struct {
		price uint64
		ok    bool
	}{
		{99_999_999, false},
		{100_000_000, true},
		{1_000_000_000, true},
		{1_000_000_001, false},
	}

	for _, tc := range cases {
		p := initParams(domain.FeePolicyDirect)
		p.InitialPrice = tc.price

		_, _, err := e.Initialize(p)
		if tc.ok && err != nil {
			t.Errorf("price %d: unexpected error %v", tc.price, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidInitialPrice) {
			t.Errorf("price %d: expected ErrInvalidInitialPrice, got %v", tc.price, err)
		}
	}
}

func TestInitialize_IncrementBounds(t *testing.T) {
	e := newTestEngine(t)

	cases := []struct {
		policy    domain.FeePolicyKind
		increment uint64
		ok        bool
	}{
		{domain.FeePolicyDirect, 0, true}, // default
		{domain.FeePolicyDirect, 11999, false},
		{domain.FeePolicyDirect, 12000, true},
		{domain.FeePolicyDirect, 20000, true},
		{domain.FeePolicyDirect, 20001, false},
		{domain.FeePolicyEscrow, 0, true},
		{domain.FeePolicyEscrow, 12000, true},
		{domain.FeePolicyEscrow, 15000, false}, // escrow increment is fixed
	}

	for _, tc := range cases {
		p := initParams(tc.policy)
		p.PriceIncrement = tc.increment

		_, _, err := e.Initialize(p)
		if tc.ok && err != nil {
			t.Errorf("%s increment %d: unexpected error %v", tc.policy, tc.increment, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidPriceIncrement) {
			t.Errorf("%s increment %d: expected ErrInvalidPriceIncrement, got %v",
				tc.policy, tc.increment, err)
		}
	}
}

func TestInitialize_MetadataLimits(t *testing.T) {
	e := newTestEngine(t)

	long := func(n int) string {
		b := make([]byte, n)
		for i := range b {
			b[i] = 'x'
		}
		return string(b)
	}

	cases := []struct {
		mutate func(*InitializeParams)
		want   error
	}{
		{func(p *InitializeParams) { p.Name = long(33) }, ErrNameTooLong},
		{func(p *InitializeParams) { p.Symbol = long(9) }, ErrSymbolTooLong},
		{func(p *InitializeParams) { p.Description = long(201) }, ErrDescriptionTooLong},
		{func(p *InitializeParams) { p.Image = long(201) }, ErrImageTooLong},
	}

	for _, tc := range cases {
		p := initParams(domain.FeePolicyDirect)
		tc.mutate(&p)

		_, _, err := e.Initialize(p)
		if !errors.Is(err, tc.want) {
			t.Errorf("expected %v, got %v", tc.want, err)
		}
	}
}

func TestInitialize_DevMismatch(t *testing.T) {
	e := newTestEngine(t)

	p := initParams(domain.FeePolicyDirect)
	p.Dev = "SomeOtherDev1111111111111111111111111111111"

	_, _, err := e.Initialize(p)
	if !errors.Is(err, ErrInvalidDevAddress) {
		t.Errorf("expected ErrInvalidDevAddress, got %v", err)
	}
}

func TestSteal_FirstSteal_FiftyFiftySplit(t *testing.T) {
	for _, policy := range []domain.FeePolicyKind{domain.FeePolicyEscrow, domain.FeePolicyDirect} {
		e := newTestEngine(t)
		tok := mustInitialize(t, e, initParams(policy))

		res, err := e.Steal(tok, testThief, 100_000_000, 1704067300000)
		if err != nil {
			t.Fatalf("%s: Steal failed: %v", policy, err)
		}

		if res.Split.DevFee != 50_000_000 || res.Split.MinterFee != 50_000_000 {
			t.Errorf("%s: fees = %d/%d, want 50_000_000 each",
				policy, res.Split.DevFee, res.Split.MinterFee)
		}
		if res.Split.HolderPayment != 0 {
			t.Errorf("%s: HolderPayment = %d, want 0", policy, res.Split.HolderPayment)
		}
		if res.Refund != 0 {
			t.Errorf("%s: Refund = %d, want 0", policy, res.Refund)
		}
		if !tok.FirstStealCompleted {
			t.Errorf("%s: FirstStealCompleted not flipped", policy)
		}
		if tok.CurrentHolder != testThief {
			t.Errorf("%s: CurrentHolder = %s, want stealer", policy, tok.CurrentHolder)
		}
		if tok.CurrentPrice != 120_000_000 {
			t.Errorf("%s: CurrentPrice = %d, want 120_000_000", policy, tok.CurrentPrice)
		}
		// next_price recomputed from the updated current_price
		if tok.NextPrice != 144_000_000 {
			t.Errorf("%s: NextPrice = %d, want 144_000_000", policy, tok.NextPrice)
		}
	}
}

func TestSteal_SecondSteal_DirectPolicy(t *testing.T) {
	e := newTestEngine(t)
	tok := mustInitialize(t, e, initParams(domain.FeePolicyDirect))

	if _, err := e.Steal(tok, testThief, 100_000_000, 1); err != nil {
		t.Fatalf("first steal failed: %v", err)
	}

	// Worked example: current_price 120_000_000, amount 120_000_000.
	res, err := e.Steal(tok, testThief2, 120_000_000, 2)
	if err != nil {
		t.Fatalf("second steal failed: %v", err)
	}

	if res.Split.TotalFee != 12_000_000 {
		t.Errorf("TotalFee = %d, want 12_000_000", res.Split.TotalFee)
	}
	if res.Split.DevFee != 9_600_000 {
		t.Errorf("DevFee = %d, want 9_600_000", res.Split.DevFee)
	}
	if res.Split.MinterFee != 2_400_000 {
		t.Errorf("MinterFee = %d, want 2_400_000", res.Split.MinterFee)
	}
	if res.Split.HolderPayment != 108_000_000 {
		t.Errorf("HolderPayment = %d, want 108_000_000", res.Split.HolderPayment)
	}
	if res.Refund != 0 {
		t.Errorf("Refund = %d, want 0", res.Refund)
	}
}

func TestSteal_SecondSteal_EscrowPolicy(t *testing.T) {
	e := newTestEngine(t)
	tok := mustInitialize(t, e, initParams(domain.FeePolicyEscrow))

	if _, err := e.Steal(tok, testThief, 100_000_000, 1); err != nil {
		t.Fatalf("first steal failed: %v", err)
	}

	// State: previous=100M, current=120M, next=144M.
	// price_increase = 20M, fee = 2M (80/20 → 1.6M/0.4M),
	// holder_payment = previous + (increase − fee) = 100M + 18M = 118M.
	res, err := e.Steal(tok, testThief2, 120_000_000, 2)
	if err != nil {
		t.Fatalf("second steal failed: %v", err)
	}

	if res.Split.TotalFee != 2_000_000 {
		t.Errorf("TotalFee = %d, want 2_000_000", res.Split.TotalFee)
	}
	if res.Split.DevFee != 1_600_000 {
		t.Errorf("DevFee = %d, want 1_600_000", res.Split.DevFee)
	}
	if res.Split.MinterFee != 400_000 {
		t.Errorf("MinterFee = %d, want 400_000", res.Split.MinterFee)
	}
	if res.Split.HolderPayment != 118_000_000 {
		t.Errorf("HolderPayment = %d, want 118_000_000", res.Split.HolderPayment)
	}
}

func TestSteal_FeeRatioIsEightyTwenty(t *testing.T) {
	e := newTestEngine(t)
	tok := mustInitialize(t, e, initParams(domain.FeePolicyDirect))

	if _, err := e.Steal(tok, testThief, 100_000_000, 1); err != nil {
		t.Fatalf("first steal failed: %v", err)
	}

	stealers := []string{testThief2, testThief, testThief2, testThief}
	for i, s := range stealers {
		res, err := e.Steal(tok, s, tok.CurrentPrice, int64(i+2))
		if err != nil {
			t.Fatalf("steal %d failed: %v", i+2, err)
		}

		wantDev := res.Split.TotalFee * 80 / 100
		wantMinter := res.Split.TotalFee * 20 / 100
		if res.Split.DevFee != wantDev || res.Split.MinterFee != wantMinter {
			t.Errorf("steal %d: fees = %d/%d, want %d/%d",
				i+2, res.Split.DevFee, res.Split.MinterFee, wantDev, wantMinter)
		}
		if res.Split.DevFee+res.Split.MinterFee > res.Split.TotalFee {
			t.Errorf("steal %d: fee shares exceed total fee", i+2)
		}
	}
}

func TestSteal_PriceStrictlyIncreasing(t *testing.T) {
	for _, policy := range []domain.FeePolicyKind{domain.FeePolicyEscrow, domain.FeePolicyDirect} {
		e := newTestEngine(t)
		tok := mustInitialize(t, e, initParams(policy))

		prev := tok.CurrentPrice
		for i := 0; i < 10; i++ {
			if _, err := e.Steal(tok, testThief, tok.CurrentPrice, int64(i)); err != nil {
				t.Fatalf("%s: steal %d failed: %v", policy, i, err)
			}
			if tok.CurrentPrice <= prev {
				t.Fatalf("%s: price not strictly increasing at steal %d: %d → %d",
					policy, i, prev, tok.CurrentPrice)
			}
			prev = tok.CurrentPrice
		}
	}
}

func TestSteal_Overpayment_Refunded(t *testing.T) {
	e := newTestEngine(t)
	tok := mustInitialize(t, e, initParams(domain.FeePolicyEscrow))

	res, err := e.Steal(tok, testThief, 150_000_000, 1)
	if err != nil {
		t.Fatalf("Steal failed: %v", err)
	}
	if res.Refund != 50_000_000 {
		t.Errorf("Refund = %d, want 50_000_000", res.Refund)
	}

	var refundTo string
	for _, tr := range res.Settlement.Transfers {
		if tr.Role == domain.RoleRefund {
			refundTo = tr.To
		}
	}
	if refundTo != testThief {
		t.Errorf("refund recipient = %s, want stealer", refundTo)
	}
}

func TestSteal_Underpayment_RejectedNoMutation(t *testing.T) {
	e := newTestEngine(t)
	tok := mustInitialize(t, e, initParams(domain.FeePolicyDirect))
	before := *tok

	_, err := e.Steal(tok, testThief, 99_999_999, 1)
	if !errors.Is(err, ErrInsufficientPayment) {
		t.Fatalf("expected ErrInsufficientPayment, got %v", err)
	}
	if *tok != before {
		t.Error("record mutated by failed steal")
	}
}

func TestSteal_Overflow_AbortsWithoutMutation(t *testing.T) {
	e := newTestEngine(t)
	tok := mustInitialize(t, e, initParams(domain.FeePolicyDirect))

	// Force the next-price recomputation to overflow.
	tok.CurrentPrice = math.MaxUint64 / 2
	tok.NextPrice = math.MaxUint64 - 1
	tok.PreviousPrice = math.MaxUint64 / 3
	tok.FirstStealCompleted = true
	before := *tok

	_, err := e.Steal(tok, testThief, math.MaxUint64, 1)
	if !errors.Is(err, ErrNumericalOverflow) {
		t.Fatalf("expected ErrNumericalOverflow, got %v", err)
	}
	if *tok != before {
		t.Error("record mutated by failed steal")
	}
}

func TestSteal_SettlementTotalNeverExceedsTendered(t *testing.T) {
	for _, policy := range []domain.FeePolicyKind{domain.FeePolicyEscrow, domain.FeePolicyDirect} {
		e := newTestEngine(t)
		tok := mustInitialize(t, e, initParams(policy))

		for i := 0; i < 8; i++ {
			amount := tok.CurrentPrice + uint64(i)*1_000_003
			res, err := e.Steal(tok, testThief, amount, int64(i))
			if err != nil {
				t.Fatalf("%s: steal %d failed: %v", policy, i, err)
			}
			if total := res.Settlement.Total(); total > amount {
				t.Errorf("%s: steal %d settlement total %d exceeds tendered %d",
					policy, i, total, amount)
			}
		}
	}
}

func TestSteal_NextPriceNeverStale(t *testing.T) {
	e := newTestEngine(t)
	tok := mustInitialize(t, e, initParams(domain.FeePolicyDirect))

	for i := 0; i < 6; i++ {
		if _, err := e.Steal(tok, testThief, tok.CurrentPrice, int64(i)); err != nil {
			t.Fatalf("steal %d failed: %v", i, err)
		}
		want := tok.CurrentPrice * tok.PriceIncrement / 10000
		if tok.NextPrice != want {
			t.Errorf("steal %d: NextPrice = %d, want %d", i, tok.NextPrice, want)
		}
	}
}

// The historical escrow payload read is_first_steal after the flag had
// already flipped, so it is always false — even on the first steal.
// Preserved as observed behavior; the intended value is IsFirstSteal.
func TestSteal_ObservedFirstStealFlag(t *testing.T) {
	e := newTestEngine(t)
	tok := mustInitialize(t, e, initParams(domain.FeePolicyEscrow))

	res, err := e.Steal(tok, testThief, 100_000_000, 1)
	if err != nil {
		t.Fatalf("Steal failed: %v", err)
	}

	if !res.Event.IsFirstSteal {
		t.Error("intended IsFirstSteal should be true on first steal")
	}
	if res.Event.ObservedIsFirstSteal {
		t.Error("observed is_first_steal was always false in the historical payload")
	}
}

// The historical direct payload computed price_increase after the price
// update, reporting the *next* increase rather than the one just paid.
func TestSteal_ObservedPriceIncrease(t *testing.T) {
	e := newTestEngine(t)
	tok := mustInitialize(t, e, initParams(domain.FeePolicyDirect))

	if _, err := e.Steal(tok, testThief, 100_000_000, 1); err != nil {
		t.Fatalf("first steal failed: %v", err)
	}

	// previous=100M, current=120M → increase paid = 20M; post-update
	// current=144M, previous=120M → observed = 24M.
	res, err := e.Steal(tok, testThief2, 120_000_000, 2)
	if err != nil {
		t.Fatalf("second steal failed: %v", err)
	}

	if res.Event.PriceIncrease != 20_000_000 {
		t.Errorf("PriceIncrease = %d, want 20_000_000", res.Event.PriceIncrease)
	}
	if res.Event.ObservedPriceIncrease != 24_000_000 {
		t.Errorf("ObservedPriceIncrease = %d, want 24_000_000", res.Event.ObservedPriceIncrease)
	}
}

func TestTransfer_HolderOnly(t *testing.T) {
	e := newTestEngine(t)
	tok := mustInitialize(t, e, initParams(domain.FeePolicyDirect))
	before := *tok

	// Non-holder cannot transfer.
	_, err := e.Transfer(tok, testThief, testThief2, 1)
	if !errors.Is(err, ErrNotCurrentHolder) {
		t.Fatalf("expected ErrNotCurrentHolder, got %v", err)
	}
	if *tok != before {
		t.Error("record mutated by failed transfer")
	}

	// Holder can.
	event, err := e.Transfer(tok, testMinter, testThief2, 2)
	if err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}
	if tok.CurrentHolder != testThief2 {
		t.Errorf("CurrentHolder = %s, want new holder", tok.CurrentHolder)
	}
	if tok.CurrentPrice != before.CurrentPrice || tok.NextPrice != before.NextPrice {
		t.Error("transfer must not touch prices")
	}
	if event.From != testMinter || event.To != testThief2 {
		t.Errorf("event from/to = %s/%s", event.From, event.To)
	}
	if event.Price != tok.CurrentPrice || event.NextPrice != tok.NextPrice {
		t.Error("transfer event should carry current prices for auditability")
	}
}

func TestSteal_WrongDevOnRecord(t *testing.T) {
	e := newTestEngine(t)
	tok := mustInitialize(t, e, initParams(domain.FeePolicyDirect))
	tok.Dev = "SomeOtherDev1111111111111111111111111111111"
	before := *tok

	_, err := e.Steal(tok, testThief, tok.CurrentPrice, 1)
	if !errors.Is(err, ErrInvalidDevAddress) {
		t.Fatalf("expected ErrInvalidDevAddress, got %v", err)
	}
	if *tok != before {
		t.Error("record mutated by failed steal")
	}
}
