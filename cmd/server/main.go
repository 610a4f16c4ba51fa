// Package main runs the fool.fun token server: the steal/transfer
// engine behind a JSON API, with a WebSocket event feed, Prometheus
// metrics, and PostgreSQL/ClickHouse-backed storage.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alexdziarn/fool.fun/internal/api"
	"github.com/alexdziarn/fool.fun/internal/engine"
	"github.com/alexdziarn/fool.fun/internal/events"
	"github.com/alexdziarn/fool.fun/internal/ledger"
	"github.com/alexdziarn/fool.fun/internal/observability"
	"github.com/alexdziarn/fool.fun/internal/service"
	"github.com/alexdziarn/fool.fun/internal/storage"
	chstore "github.com/alexdziarn/fool.fun/internal/storage/clickhouse"
	"github.com/alexdziarn/fool.fun/internal/storage/memory"
	"github.com/alexdziarn/fool.fun/internal/storage/migrations"
	pgstore "github.com/alexdziarn/fool.fun/internal/storage/postgres"
)

// allStores holds the storage implementations behind the service.
type allStores struct {
	tokens   storage.TokenStore
	activity storage.ActivityStore
	prices   storage.PriceHistoryStore
}

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars as defaults)
	listenAddr := flag.String("listen-addr", envOr("LISTEN_ADDR", ":8080"), "HTTP listen address")
	devAddress := flag.String("dev-address", os.Getenv("DEV_ADDRESS"), "Platform operator identity (base58)")
	programID := flag.String("program-id", os.Getenv("PROGRAM_ID"), "Program identity used for address derivation (base58)")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")
	migrate := flag.Bool("migrate", true, "Run schema migrations on startup")
	shutdownTimeout := flag.Duration("shutdown-timeout", 15*time.Second, "Graceful shutdown timeout")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	// Validate required flags
	if *devAddress == "" {
		logger.Fatal("--dev-address is required")
	}
	if *programID == "" {
		logger.Fatal("--program-id is required")
	}
	if !*useMemory && (*postgresDSN == "" || *clickhouseDSN == "") {
		logger.Fatal("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create stores
	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory, *migrate)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	// Create engine bound to the operator identity
	eng, err := engine.New(*devAddress)
	if err != nil {
		logger.Fatalf("Failed to create engine: %v", err)
	}

	metrics := observability.NewMetrics("")

	// Event fan-out: log sink plus WebSocket hub
	eventLogger := log.New(os.Stdout, "[events] ", log.LstdFlags)
	hubConfig := events.DefaultHubConfig()
	hubConfig.Gauge = metrics.EventSubscribers
	hub := events.NewHub(hubConfig, eventLogger)
	sink := events.MultiSink{events.NewLogSink(eventLogger), hub}

	// The in-process ledger executes settlement instructions. A real
	// deployment swaps in a Payer backed by an actual payment rail.
	payer := ledger.NewMemory()

	svc, err := service.New(service.Config{
		Engine:    eng,
		ProgramID: *programID,
		Tokens:    stores.tokens,
		Activity:  stores.activity,
		Prices:    stores.prices,
		Payer:     payer,
		Sink:      sink,
		Metrics:   metrics,
		Logger:    log.New(os.Stdout, "[service] ", log.LstdFlags|log.Lshortfile),
	})
	if err != nil {
		logger.Fatalf("Failed to create service: %v", err)
	}

	srv := &http.Server{
		Addr:    *listenAddr,
		Handler: api.NewServer(svc, hub, log.New(os.Stdout, "[api] ", log.LstdFlags)).Handler(),
	}

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("Listening on %s", *listenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case sig := <-sigCh:
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
	case err := <-errCh:
		logger.Fatalf("Server error: %v", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), *shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("Shutdown error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// createStores creates all required stores, running migrations when asked.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory, migrate bool) (*allStores, func(), error) {
	if useMemory {
		stores := &allStores{
			tokens:   memory.NewTokenStore(),
			activity: memory.NewActivityStore(),
			prices:   memory.NewPriceHistoryStore(),
		}
		return stores, func() {}, nil
	}

	// PostgreSQL
	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}

	// ClickHouse
	chConn, err := chstore.NewConn(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
	}

	if migrate {
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			chConn.Close()
			pool.Close()
			return nil, nil, fmt.Errorf("run postgres migrations: %w", err)
		}
		if err := migrations.RunClickhouseMigrations(ctx, chConn); err != nil {
			chConn.Close()
			pool.Close()
			return nil, nil, fmt.Errorf("run clickhouse migrations: %w", err)
		}
	}

	stores := &allStores{
		// PostgreSQL stores (token records + activity)
		tokens:   pgstore.NewTokenStore(pool),
		activity: pgstore.NewActivityStore(pool),

		// ClickHouse store (price timeseries)
		prices: chstore.NewPriceHistoryStore(chConn),
	}

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}

	return stores, cleanup, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
