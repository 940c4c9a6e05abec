package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"finance-ledger/internal/config"
	"finance-ledger/internal/database"
	"finance-ledger/internal/secrets"
	"finance-ledger/internal/server"
	"finance-ledger/internal/services"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
)

// runMigrate applies the SQL migrations for the configured driver. Postgres
// goes through lib/pq so the schema can be managed without the gorm pool.
func runMigrate(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	status := fs.Bool("status", false, "print the current schema version and exit")
	seed := fs.Bool("seed", cfg.Database.SeedDatabase, "load db/seeds after migrating")
	if err := fs.Parse(args); err != nil {
		return err
	}

	sqlDB, closeDB, err := openSQL(&cfg.Database)
	if err != nil {
		return err
	}
	defer closeDB()

	dbCfg := cfg.Database
	dbCfg.SeedDatabase = *seed
	runner := database.NewMigrationRunner(sqlDB, &dbCfg)

	if *status {
		version, dirty, err := runner.GetMigrationStatus()
		if err != nil {
			return err
		}
		fmt.Printf("version=%d dirty=%t\n", version, dirty)
		return nil
	}

	if err := runner.WaitForDatabase(); err != nil {
		return err
	}
	if err := runner.RunMigrations(); err != nil {
		return err
	}
	return runner.LoadSeeds()
}

func openSQL(cfg *config.DatabaseConfig) (*sql.DB, func(), error) {
	if cfg.Driver == config.DriverPostgres {
		sqlDB, err := sql.Open("postgres", cfg.URL())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open postgres: %w", err)
		}
		return sqlDB, func() { sqlDB.Close() }, nil
	}

	db, err := database.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.DB.DB()
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB, func() { db.Close() }, nil
}

func runSeed(ctx context.Context, cfg *config.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	count := fs.Int("transactions", 0, "number of sample transactions (default 50)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if cfg.IsProduction() {
		return errors.New("refusing to seed sample data in production")
	}

	a, err := openApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.db.Close()

	summary, err := a.services.SampleData.Seed(ctx, *count)
	if err != nil {
		return err
	}

	fmt.Printf("categories=%d rules=%d transactions=%d categorized=%d\n",
		summary.CategoriesCreated, summary.RulesCreated, summary.TransactionsCreated, summary.Categorized)
	return nil
}

func runToken(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("token", flag.ExitOnError)
	subject := fs.String("subject", "cli", "client name recorded in the token")
	duration := fs.Duration("duration", cfg.Auth.TokenDuration, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}

	authCfg := cfg.Auth
	authCfg.TokenDuration = *duration
	if len(authCfg.Secret) < config.MinAuthSecretLength {
		return fmt.Errorf("AUTH_SECRET must be at least %d characters", config.MinAuthSecretLength)
	}

	token, expiresAt, err := services.NewTokenService(&authCfg).GenerateToken(*subject)
	if err != nil {
		return err
	}

	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "expires %s\n", expiresAt.UTC().Format(time.RFC3339))
	return nil
}

// runCredential manages provider credentials without going through the API.
// The value for "set" is read from -value or, when omitted, from stdin.
func runCredential(ctx context.Context, cfg *config.Config, logger *slog.Logger, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: ledger credential set|delete|exists <%s>", strings.Join(credentialNames(), "|"))
	}
	action := args[0]

	credential, err := secrets.ParseCredentialType(args[1])
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("credential", flag.ExitOnError)
	value := fs.String("value", "", "credential value (read from stdin when empty)")
	if err := fs.Parse(args[2:]); err != nil {
		return err
	}

	store, err := server.NewSecretStore(cfg.Secrets, logger)
	if err != nil {
		return err
	}
	credentialService := services.NewCredentialService(store, services.NewAuditLogger(logger), services.NewPrometheusMetrics(prometheus.NewRegistry()))

	switch action {
	case "set":
		v := *value
		if v == "" {
			if v, err = readLine(os.Stdin); err != nil {
				return err
			}
		}
		if err := credentialService.StoreCredential(ctx, credential, v); err != nil {
			return err
		}
		fmt.Printf("%s stored\n", credential)
	case "delete":
		if err := credentialService.DeleteCredential(ctx, credential); err != nil {
			return err
		}
		fmt.Printf("%s deleted\n", credential)
	case "exists":
		exists, err := credentialService.CredentialExists(ctx, credential)
		if err != nil {
			return err
		}
		fmt.Println(exists)
	default:
		return fmt.Errorf("unknown credential action %q", action)
	}
	return nil
}

func credentialNames() []string {
	types := secrets.AllCredentialTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	return names
}

func readLine(f *os.File) (string, error) {
	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read credential value: %w", err)
	}
	return strings.TrimSpace(line), nil
}
