package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/votechain/server/aggregator"
	"github.com/votechain/server/cache"
	"github.com/votechain/server/chain"
	"github.com/votechain/server/cliparse"
	"github.com/votechain/server/db"
	"github.com/votechain/server/event"
	"github.com/votechain/server/middleware"
	"github.com/votechain/server/results"
	"github.com/votechain/server/router"
	"github.com/votechain/server/store"
)

func main() {
	var err error

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	// Connect to the database
	driver := "sqlite"
	if cfg.DatabaseType == "postgres" {
		driver = "postgres"
	}
	dbConn, err := sql.Open(driver, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Verify connection; the database container may still be starting
	if err := waitForDatabase(dbConn, 10, 2*time.Second); err != nil {
		slog.Error("database ping failed", "error", err)
		os.Exit(1)
	}

	// Create schema (tables)
	if err := db.CreateSchema(dbConn, cfg.DatabaseType); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready")

	ctx := context.Background()

	// Chain client is optional: without it the server is database-only
	var chainClient *chain.Client
	chainClient, err = chain.New(ctx, cfg)
	if err != nil {
		if err == chain.ErrUnavailable {
			slog.Info("Blockchain not configured, running database-only")
		} else {
			slog.Error("chain client setup failed", "error", err)
			os.Exit(1)
		}
		chainClient = nil
	} else {
		slog.Info("Chain client ready", "contract", cfg.ContractAddress, "writable", chainClient.CanWrite())
	}

	// Cache store: redis when configured, in-process otherwise
	var backend cache.Backend
	if cfg.RedisURL != "" {
		backend, err = cache.NewRedisBackend(ctx, cfg.RedisURL)
		if err != nil {
			slog.Error("redis connection failed", "error", err)
			os.Exit(1)
		}
	} else {
		backend = cache.NewMemoryBackend()
	}
	defer backend.Close()
	cacheStore := cache.NewStore(backend)

	// Vote event publishing
	var publisher event.VotePublisher = event.NopPublisher{}
	if cfg.KafkaBrokers != "" {
		publisher = event.NewKafkaPublisher(strings.Split(cfg.KafkaBrokers, ","), cfg.KafkaTopic)
		slog.Info("Kafka vote publishing enabled", "topic", cfg.KafkaTopic)
	}
	defer publisher.Close()

	// Result plumbing: provider over store+chain, aggregator on top
	electionStore := store.NewElectionStore(dbConn)
	var reader results.ChainReader
	if chainClient != nil {
		reader = chainClient
	}
	provider := results.NewService(electionStore, reader)
	agg := aggregator.New(provider, cacheStore, aggregator.Config{
		DBTTL:        cfg.DBResultTTL,
		ChainTTL:     cfg.ChainResultTTL,
		ChainEnabled: chainClient != nil,
	})

	// Create router
	mux := router.NewRouter(router.Deps{
		Store:     electionStore,
		Chain:     chainClient,
		Cache:     cacheStore,
		Agg:       agg,
		Publisher: publisher,
	}, cfg)

	// Create server
	server := http.Server{
		Handler: middleware.CORS(mux),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}

func waitForDatabase(dbConn *sql.DB, attempts int, interval time.Duration) error {
	var err error
	for i := 1; i <= attempts; i++ {
		if err = dbConn.Ping(); err == nil {
			return nil
		}
		slog.Warn("database unavailable", "attempt", i, "of", attempts, "error", err)
		time.Sleep(interval)
	}
	return err
}
