package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"finance-ledger/internal/config"
	"finance-ledger/internal/database"
	"finance-ledger/internal/server"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const usage = `Usage: ledger <command> [flags]

Commands:
  serve        run the HTTP API (default)
  migrate      apply SQL migrations and seeds, or print the schema version
  seed         generate sample categories, rules and transactions
  token        issue an API bearer token
  credential   set, delete or check a stored provider credential
`

func main() {
	// .env is optional; real environment variables take precedence
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	command := "serve"
	args := os.Args[1:]
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		command, args = args[0], args[1:]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch command {
	case "serve":
		err = runServe(ctx, cfg, logger, args)
	case "migrate":
		err = runMigrate(cfg, args)
	case "seed":
		err = runSeed(ctx, cfg, logger, args)
	case "token":
		err = runToken(cfg, args)
	case "credential":
		err = runCredential(ctx, cfg, logger, args)
	case "help", "-h", "--help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", command, usage)
		os.Exit(2)
	}

	if err != nil {
		logger.Error("command failed", slog.String("command", command), slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// app is the wired ledger behind every command that touches the store
type app struct {
	db       *database.DB
	services *server.Services
	registry *prometheus.Registry
}

func openApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	db, err := database.Initialize(cfg)
	if err != nil {
		return nil, err
	}

	store, err := server.NewSecretStore(cfg.Secrets, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	svc, err := server.NewServices(db.DB, cfg, store, registry, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &app{db: db, services: svc, registry: registry}, nil
}

func runServe(ctx context.Context, cfg *config.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	port := fs.String("port", cfg.Server.Port, "HTTP server port")
	host := fs.String("host", cfg.Server.Host, "HTTP listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := openApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.db.Close()

	e := server.New(server.Options{
		Config:   cfg,
		Services: a.services,
		DB:       a.db,
		Registry: a.registry,
		Logger:   logger,
	})

	srv := &http.Server{
		Addr:         net.JoinHostPort(*host, *port),
		Handler:      e,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting server",
			slog.String("addr", srv.Addr),
			slog.String("environment", cfg.Server.Environment),
			slog.String("database", a.db.Driver()),
			slog.String("suggestion_provider", a.services.Suggestions.ProviderName()),
			slog.Bool("auth", cfg.Auth.Enabled),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server", slog.Duration("timeout", cfg.Server.ShutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
