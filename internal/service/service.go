// Package service wires the pure steal engine to its collaborators:
// record storage, the payment primitive, the activity log, the price
// timeseries and the event sinks. The engine computes; this layer
// persists and settles.
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/alexdziarn/fool.fun/internal/domain"
	"github.com/alexdziarn/fool.fun/internal/engine"
	"github.com/alexdziarn/fool.fun/internal/events"
	"github.com/alexdziarn/fool.fun/internal/ledger"
	"github.com/alexdziarn/fool.fun/internal/observability"
	"github.com/alexdziarn/fool.fun/internal/storage"
	"github.com/alexdziarn/fool.fun/internal/tokenaddr"
)

// Service executes token operations end to end. The record mutation is
// authoritative; settlement transfers are executed afterwards and are
// retryable against the payer's idempotent semantics.
type Service struct {
	engine    *engine.Engine
	programID string

	tokens   storage.TokenStore
	activity storage.ActivityStore
	prices   storage.PriceHistoryStore
	payer    ledger.Payer
	sink     events.Sink

	metrics *observability.Metrics
	logger  *log.Logger
	now     func() int64

	// Per-token mutual exclusion: operations on the same record run
	// one at a time, so the engine itself stays lock-free.
	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// Config assembles a Service. Metrics may be nil.
type Config struct {
	Engine    *engine.Engine
	ProgramID string

	Tokens   storage.TokenStore
	Activity storage.ActivityStore
	Prices   storage.PriceHistoryStore
	Payer    ledger.Payer
	Sink     events.Sink

	Metrics *observability.Metrics
	Logger  *log.Logger
	Now     func() int64
}

// New creates a Service.
func New(cfg Config) (*Service, error) {
	if cfg.Engine == nil || cfg.Tokens == nil || cfg.Activity == nil ||
		cfg.Prices == nil || cfg.Payer == nil || cfg.Sink == nil {
		return nil, fmt.Errorf("service: missing required dependency")
	}
	if !tokenaddr.Valid(cfg.ProgramID) {
		return nil, fmt.Errorf("service: invalid program id %q", cfg.ProgramID)
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Now == nil {
		cfg.Now = func() int64 { return time.Now().UnixMilli() }
	}

	return &Service{
		engine:    cfg.Engine,
		programID: cfg.ProgramID,
		tokens:    cfg.Tokens,
		activity:  cfg.Activity,
		prices:    cfg.Prices,
		payer:     cfg.Payer,
		sink:      cfg.Sink,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
		now:       cfg.Now,
		locks:     make(map[string]*sync.Mutex),
	}, nil
}

// lockToken returns the mutex guarding one token record.
func (s *Service) lockToken(address string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	mu, ok := s.locks[address]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[address] = mu
	}
	return mu
}

// CreateTokenParams carries the caller inputs of token creation.
type CreateTokenParams struct {
	Name        string
	Symbol      string
	Description string
	Image       string

	Minter string
	Dev    string

	InitialPrice   uint64
	PriceIncrement uint64
	FeePolicy      domain.FeePolicyKind
}

// CreateToken derives the token address, initializes the record and
// persists it. Returns storage.ErrAlreadyExists when the (minter,
// name) pair is already taken.
func (s *Service) CreateToken(ctx context.Context, p CreateTokenParams) (*domain.Token, error) {
	start := time.Now()

	if !tokenaddr.Valid(p.Minter) {
		s.countFailure("initialize", "invalid_identity")
		return nil, tokenaddr.ErrInvalidIdentity
	}

	address, err := tokenaddr.Derive(s.programID, p.Minter, p.Name)
	if err != nil {
		s.countFailure("initialize", "derive_address")
		return nil, err
	}

	now := s.now()
	token, event, err := s.engine.Initialize(engine.InitializeParams{
		Address:        address,
		Name:           p.Name,
		Symbol:         p.Symbol,
		Description:    p.Description,
		Image:          p.Image,
		Minter:         p.Minter,
		Dev:            p.Dev,
		InitialPrice:   p.InitialPrice,
		PriceIncrement: p.PriceIncrement,
		FeePolicy:      p.FeePolicy,
		Now:            now,
	})
	if err != nil {
		s.countFailure("initialize", reason(err))
		return nil, err
	}

	if err := s.tokens.Insert(ctx, token); err != nil {
		s.countFailure("initialize", reason(err))
		return nil, err
	}

	s.recordActivity(ctx, &domain.Activity{
		Token:     token.Address,
		Type:      domain.ActivityCreate,
		To:        token.Minter,
		Timestamp: now,
	})

	s.sink.EmitInitialize(*event)
	if s.metrics != nil {
		s.metrics.TokensCreated.Inc()
		s.metrics.OperationDuration.WithLabelValues("initialize").Observe(time.Since(start).Seconds())
	}

	return token, nil
}

// Steal pays the current asking price to forcibly acquire the token.
// The tendered amount is divided between dev, minter and the previous
// holder per the token's fee policy, with any overpayment refunded.
func (s *Service) Steal(ctx context.Context, address, stealer string, amount uint64) (*domain.Token, *engine.StealResult, error) {
	start := time.Now()

	if !tokenaddr.Valid(stealer) {
		s.countFailure("steal", "invalid_identity")
		return nil, nil, tokenaddr.ErrInvalidIdentity
	}

	mu := s.lockToken(address)
	mu.Lock()
	defer mu.Unlock()

	token, err := s.tokens.Get(ctx, address)
	if err != nil {
		s.countFailure("steal", reason(err))
		return nil, nil, err
	}

	now := s.now()
	result, err := s.engine.Steal(token, stealer, amount, now)
	if err != nil {
		s.countFailure("steal", reason(err))
		return nil, nil, err
	}

	// The persisted mutation is the authoritative outcome.
	if err := s.tokens.Update(ctx, token); err != nil {
		s.countFailure("steal", reason(err))
		return nil, nil, err
	}

	s.executeSettlement(ctx, token.Address, result.Settlement)

	s.recordActivity(ctx, &domain.Activity{
		Token:     token.Address,
		Type:      domain.ActivitySteal,
		From:      result.Event.PreviousHolder,
		To:        stealer,
		Amount:    result.Event.PricePaid,
		Timestamp: now,
	})
	s.recordPricePoint(ctx, token, now)

	s.sink.EmitSteal(result.Event)
	if s.metrics != nil {
		s.metrics.StealsProcessed.Inc()
		s.metrics.FeesDistributed.WithLabelValues(string(domain.RoleDevFee)).Add(float64(result.Split.DevFee))
		s.metrics.FeesDistributed.WithLabelValues(string(domain.RoleMinterFee)).Add(float64(result.Split.MinterFee))
		s.metrics.FeesDistributed.WithLabelValues(string(domain.RoleHolderPayment)).Add(float64(result.Split.HolderPayment))
		s.metrics.RefundsIssued.Add(float64(result.Refund))
		s.metrics.OperationDuration.WithLabelValues("steal").Observe(time.Since(start).Seconds())
	}

	return token, result, nil
}

// Transfer reassigns custody without payment. Only the current holder
// may do this.
func (s *Service) Transfer(ctx context.Context, address, caller, newHolder string) (*domain.Token, error) {
	start := time.Now()

	if !tokenaddr.Valid(newHolder) {
		s.countFailure("transfer", "invalid_identity")
		return nil, tokenaddr.ErrInvalidIdentity
	}

	mu := s.lockToken(address)
	mu.Lock()
	defer mu.Unlock()

	token, err := s.tokens.Get(ctx, address)
	if err != nil {
		s.countFailure("transfer", reason(err))
		return nil, err
	}

	now := s.now()
	event, err := s.engine.Transfer(token, caller, newHolder, now)
	if err != nil {
		s.countFailure("transfer", reason(err))
		return nil, err
	}

	if err := s.tokens.Update(ctx, token); err != nil {
		s.countFailure("transfer", reason(err))
		return nil, err
	}

	s.recordActivity(ctx, &domain.Activity{
		Token:     token.Address,
		Type:      domain.ActivityTransfer,
		From:      event.From,
		To:        event.To,
		Timestamp: now,
	})

	s.sink.EmitTransfer(*event)
	if s.metrics != nil {
		s.metrics.Transfers.Inc()
		s.metrics.OperationDuration.WithLabelValues("transfer").Observe(time.Since(start).Seconds())
	}

	return token, nil
}

// Dev returns the platform operator identity tokens are bound to.
func (s *Service) Dev() string {
	return s.engine.Dev()
}

// GetToken retrieves one token record.
func (s *Service) GetToken(ctx context.Context, address string) (*domain.Token, error) {
	return s.tokens.Get(ctx, address)
}

// ListTokens retrieves all tokens in the given order.
func (s *Service) ListTokens(ctx context.Context, order storage.TokenSort) ([]*domain.Token, error) {
	return s.tokens.List(ctx, order)
}

// ListTokensByHolder retrieves tokens currently held by an identity.
func (s *Service) ListTokensByHolder(ctx context.Context, holder string) ([]*domain.Token, error) {
	return s.tokens.ListByHolder(ctx, holder)
}

// ListTokensByMinter retrieves tokens created by an identity.
func (s *Service) ListTokensByMinter(ctx context.Context, minter string) ([]*domain.Token, error) {
	return s.tokens.ListByMinter(ctx, minter)
}

// TokenActivity retrieves a token's history, oldest first.
func (s *Service) TokenActivity(ctx context.Context, address string) ([]*domain.Activity, error) {
	return s.activity.GetByToken(ctx, address)
}

// TokenPriceHistory retrieves a token's price curve, oldest first.
func (s *Service) TokenPriceHistory(ctx context.Context, address string) ([]*domain.PricePoint, error) {
	return s.prices.GetByToken(ctx, address)
}

// executeSettlement runs the transfer instructions against the payer.
// Zero amounts are skipped. Failures are logged, not propagated: the
// record mutation already committed, and the instructions can be
// replayed against the payer's idempotent semantics.
func (s *Service) executeSettlement(ctx context.Context, token string, settlement domain.Settlement) {
	for _, tr := range settlement.Transfers {
		if tr.Amount == 0 || tr.From == tr.To {
			continue
		}
		if err := s.payer.Pay(ctx, tr.From, tr.To, tr.Amount); err != nil {
			s.logger.Printf("settlement transfer failed token=%s role=%s to=%s amount=%d: %v",
				token, tr.Role, tr.To, tr.Amount, err)
		}
	}
}

// recordActivity appends one history entry. The activity log is an
// audit trail; failures are logged and do not fail the operation.
func (s *Service) recordActivity(ctx context.Context, a *domain.Activity) {
	a.ActivityID = activityID(a)
	a.CreatedAt = s.now()
	if err := s.activity.Insert(ctx, a); err != nil {
		s.logger.Printf("record activity failed token=%s type=%s: %v", a.Token, a.Type, err)
	}
}

// recordPricePoint appends one sample of the token's price curve.
func (s *Service) recordPricePoint(ctx context.Context, token *domain.Token, now int64) {
	// One point is appended per steal, so the history length is the
	// completed-steal count.
	var stealCount uint32 = 1
	if history, err := s.prices.GetByToken(ctx, token.Address); err == nil {
		stealCount = uint32(len(history)) + 1
	}

	p := &domain.PricePoint{
		Token:       token.Address,
		TimestampMs: now,
		Price:       token.CurrentPrice,
		NextPrice:   token.NextPrice,
		StealCount:  stealCount,
	}
	if err := s.prices.Insert(ctx, p); err != nil {
		s.logger.Printf("record price point failed token=%s: %v", token.Address, err)
	}
}

// activityID computes a deterministic activity_id using SHA256.
// Formula: SHA256(token|type|from|to|amount|timestamp), hex-encoded.
func activityID(a *domain.Activity) string {
	data := fmt.Sprintf("%s|%s|%s|%s|%d|%d",
		a.Token, a.Type, a.From, a.To, a.Amount, a.Timestamp)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// countFailure increments the failed-operation counter when metrics
// are enabled.
func (s *Service) countFailure(operation, why string) {
	if s.metrics != nil {
		s.metrics.FailedOps.WithLabelValues(operation, why).Inc()
	}
}

// reason maps an error to a stable metric label.
func reason(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, engine.ErrInsufficientPayment):
		return "insufficient_payment"
	case errors.Is(err, engine.ErrNotCurrentHolder):
		return "not_current_holder"
	case errors.Is(err, engine.ErrNumericalOverflow):
		return "numerical_overflow"
	case errors.Is(err, engine.ErrInvalidInitialPrice),
		errors.Is(err, engine.ErrInvalidPriceIncrement):
		return "invalid_price"
	case errors.Is(err, engine.ErrInvalidDevAddress):
		return "invalid_dev"
	case errors.Is(err, engine.ErrNameTooLong),
		errors.Is(err, engine.ErrSymbolTooLong),
		errors.Is(err, engine.ErrDescriptionTooLong),
		errors.Is(err, engine.ErrImageTooLong):
		return "metadata_too_long"
	case errors.Is(err, storage.ErrNotFound):
		return "not_found"
	case errors.Is(err, storage.ErrAlreadyExists):
		return "already_exists"
	default:
		return "internal"
	}
}
