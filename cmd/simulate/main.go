// Package main simulates steal sequences against an in-memory stack and
// prints the resulting price curve and cumulative fee distribution. Useful
// for eyeballing how the two fee policies diverge over a run.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/mr-tron/base58"

	"github.com/alexdziarn/fool.fun/internal/domain"
	"github.com/alexdziarn/fool.fun/internal/engine"
	"github.com/alexdziarn/fool.fun/internal/events"
	"github.com/alexdziarn/fool.fun/internal/ledger"
	"github.com/alexdziarn/fool.fun/internal/service"
	"github.com/alexdziarn/fool.fun/internal/storage/memory"
)

// StepResult is one row of the simulated price curve.
type StepResult struct {
	Step          uint32 `json:"step"`
	Stealer       string `json:"stealer"`
	PricePaid     uint64 `json:"price_paid"`
	DevFee        uint64 `json:"dev_fee"`
	MinterFee     uint64 `json:"minter_fee"`
	HolderPayment uint64 `json:"holder_payment"`
	NextPrice     uint64 `json:"next_price"`
}

// RunSummary aggregates a full simulated run.
type RunSummary struct {
	Policy       string       `json:"policy"`
	InitialPrice uint64       `json:"initial_price"`
	Increment    uint64       `json:"price_increment"`
	Steps        []StepResult `json:"steps"`
	FinalPrice   uint64       `json:"final_price"`
	DevTotal     uint64       `json:"dev_total"`
	MinterTotal  uint64       `json:"minter_total"`
}

func main() {
	// Parse flags
	policyFlag := flag.String("policy", "ESCROW", "Fee policy to simulate (ESCROW or DIRECT)")
	steals := flag.Uint("steals", 10, "Number of steals to simulate")
	initialPrice := flag.Uint64("initial-price", domain.MinInitialPrice, "Initial token price")
	increment := flag.Uint64("increment", 0, "Price increment in basis points (0 = policy default)")
	stealers := flag.Uint("stealers", 4, "Number of distinct stealer identities to rotate through")
	outputJSON := flag.Bool("json", false, "Output as JSON")

	flag.Parse()

	logger := log.New(os.Stderr, "[simulate] ", log.LstdFlags)

	policy := domain.FeePolicyKind(*policyFlag)
	if !policy.Valid() {
		logger.Fatalf("unknown fee policy %q (want ESCROW or DIRECT)", *policyFlag)
	}
	if *stealers == 0 {
		logger.Fatal("--stealers must be at least 1")
	}

	summary, err := run(policy, *steals, *initialPrice, *increment, *stealers, !*outputJSON, logger)
	if err != nil {
		logger.Fatalf("simulation failed: %v", err)
	}

	if *outputJSON {
		output, _ := json.MarshalIndent(summary, "", "  ")
		fmt.Println(string(output))
		return
	}

	fmt.Printf("\n=== Simulation Summary ===\n")
	fmt.Printf("Policy:         %s\n", summary.Policy)
	fmt.Printf("Initial Price:  %d\n", summary.InitialPrice)
	fmt.Printf("Increment:      %d bps\n", summary.Increment)
	fmt.Printf("Steals:         %d\n", len(summary.Steps))
	fmt.Printf("Final Price:    %d\n", summary.FinalPrice)
	fmt.Printf("Dev Total:      %d\n", summary.DevTotal)
	fmt.Printf("Minter Total:   %d\n", summary.MinterTotal)
}

func identity(b byte) string {
	raw := make([]byte, 32)
	raw[31] = b
	return base58.Encode(raw)
}

func run(policy domain.FeePolicyKind, steals uint, initialPrice, increment uint64, stealerCount uint, printSteps bool, logger *log.Logger) (*RunSummary, error) {
	ctx := context.Background()

	programID := identity(0)
	dev := identity(1)
	minter := identity(2)

	eng, err := engine.New(dev)
	if err != nil {
		return nil, err
	}

	bank := ledger.NewMemory()
	svc, err := service.New(service.Config{
		Engine:    eng,
		ProgramID: programID,
		Tokens:    memory.NewTokenStore(),
		Activity:  memory.NewActivityStore(),
		Prices:    memory.NewPriceHistoryStore(),
		Payer:     bank,
		Sink:      events.NewLogSink(logger),
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}

	token, err := svc.CreateToken(ctx, service.CreateTokenParams{
		Name:           "Simulated Token",
		Symbol:         "SIM",
		Minter:         minter,
		Dev:            dev,
		InitialPrice:   initialPrice,
		PriceIncrement: increment,
		FeePolicy:      policy,
	})
	if err != nil {
		return nil, fmt.Errorf("create token: %w", err)
	}

	summary := &RunSummary{
		Policy:       string(policy),
		InitialPrice: initialPrice,
		Increment:    token.PriceIncrement,
	}

	for i := uint(0); i < steals; i++ {
		stealer := identity(byte(10 + i%stealerCount))

		current, err := svc.GetToken(ctx, token.Address)
		if err != nil {
			return nil, err
		}

		// Fund exactly the asking price so every payout is visible in
		// the bank balances afterwards.
		bank.Fund(stealer, current.CurrentPrice)

		_, result, err := svc.Steal(ctx, token.Address, stealer, current.CurrentPrice)
		if err != nil {
			return nil, fmt.Errorf("steal %d: %w", i+1, err)
		}

		step := StepResult{
			Step:          uint32(i + 1),
			Stealer:       stealer,
			PricePaid:     result.Event.PricePaid,
			DevFee:        result.Event.DevFee,
			MinterFee:     result.Event.MinterFee,
			HolderPayment: result.Event.HolderPayment,
			NextPrice:     result.Event.NextPrice,
		}
		summary.Steps = append(summary.Steps, step)

		if printSteps {
			fmt.Printf("steal %3d  paid=%-14d dev=%-12d minter=%-12d holder=%-14d next=%d\n",
				step.Step, step.PricePaid, step.DevFee, step.MinterFee, step.HolderPayment, step.NextPrice)
		}
	}

	final, err := svc.GetToken(ctx, token.Address)
	if err != nil {
		return nil, err
	}
	summary.FinalPrice = final.CurrentPrice
	summary.DevTotal = bank.Balance(dev)
	summary.MinterTotal = bank.Balance(minter)

	return summary, nil
}
