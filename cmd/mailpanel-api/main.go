package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/edvin/mailpanel/internal/api"
	"github.com/edvin/mailpanel/internal/config"
	"github.com/edvin/mailpanel/internal/core"
	"github.com/edvin/mailpanel/internal/db"
	"github.com/edvin/mailpanel/internal/dkim"
	"github.com/edvin/mailpanel/internal/logging"
	"github.com/edvin/mailpanel/internal/metrics"
	"github.com/edvin/mailpanel/internal/passwd"
)

func main() {
	if len(os.Args) >= 2 && os.Args[1] == "create-operator" {
		createOperator(os.Args[2:])
		return
	}

	migrateFlag := flag.Bool("migrate", false, "Run database migrations before starting")
	migrateDirFlag := flag.String("migrate-dir", "", "Migration files directory (default: embedded migrations)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(config.RoleAPI); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg)

	if *migrateFlag {
		logger.Info().Str("dir", *migrateDirFlag).Msg("running database migrations")
		if err := db.RunMigrations(cfg.DatabaseURL, *migrateDirFlag); err != nil {
			logger.Fatal().Err(err).Msg("migration failed")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	metrics.RegisterPgxPoolMetrics(prometheus.DefaultRegisterer, pool)

	resolver := dkim.NewResolver(dkim.ResolverConfig{
		Nameservers: cfg.DNSNameservers,
		Timeout:     cfg.DNSTimeout,
	})
	logger.Info().Strs("nameservers", resolver.Nameservers()).Msg("dkim resolver configured")
	verifier := dkim.NewVerifier(resolver, cfg.DNSTimeout)

	codec := passwd.NewCodec(cfg.Scheme())
	services := core.NewServices(pool, codec, verifier, core.DKIMRefreshConfig{
		Concurrency:      cfg.DKIMRefreshConcurrency,
		LookupsPerSecond: cfg.DKIMLookupsPerSecond,
	})

	srv := api.NewServer(logger, pool, services, codec)
	defer srv.Close()

	httpServer := &http.Server{
		Addr:         cfg.HTTPListenAddr,
		Handler:      srv,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().
			Str("addr", cfg.HTTPListenAddr).
			Str("password_scheme", codec.Scheme().String()).
			Msg("starting mailpanel API server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func createOperator(args []string) {
	fs := flag.NewFlagSet("create-operator", flag.ExitOnError)
	name := fs.String("name", "", "Name of the operator (required)")
	fs.Parse(args)

	if *name == "" {
		fmt.Fprintln(os.Stderr, "error: --name is required")
		fmt.Fprintln(os.Stderr, "usage: mailpanel-api create-operator --name <name>")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(config.RoleAPI); err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid config: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	svc := core.NewOperatorService(pool)
	op, key, rawKey, err := svc.Create(ctx, *name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to create operator: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Operator created successfully.\n\n")
	fmt.Printf("  Operator: %s (%s)\n", op.Name, op.ID)
	fmt.Printf("  Key ID:   %s\n", key.ID)
	fmt.Printf("  Key:      %s\n\n", rawKey)
	fmt.Printf("Save this key, it will not be shown again.\n")
}
