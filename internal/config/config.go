package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Supported database drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// MinAuthSecretLength is the shortest HMAC secret accepted for bearer tokens
const MinAuthSecretLength = 32

// Supported suggestion providers
const (
	ProviderGemini    = "gemini"
	ProviderHeuristic = "heuristic"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Security   SecurityConfig
	Auth       AuthConfig
	Suggestion SuggestionConfig
	Secrets    SecretsConfig
	Metrics    MetricsConfig
}

type ServerConfig struct {
	Port             string
	Host             string
	Environment      string
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	ShutdownTimeout  time.Duration
	CORSAllowOrigins []string
}

type DatabaseConfig struct {
	Driver          string
	Path            string
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxConnections  int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
	SeedDatabase    bool
	MigrationsPath  string
	SeedsPath       string
	LogQueries      bool
}

type SecurityConfig struct {
	RateLimitPerSecond int
	RateLimitBurst     int
}

// AuthConfig controls the bearer token required on API routes
type AuthConfig struct {
	Enabled       bool
	Secret        string
	Issuer        string
	TokenDuration time.Duration
}

// SuggestionConfig controls the AI suggestion collaborator
type SuggestionConfig struct {
	Provider         string
	Model            string
	BatchSize        int
	BatchDelay       time.Duration
	RequestTimeout   time.Duration
	MinConfidence    float64
	MaxSuggestions   int
	FailureThreshold int
	ResetTimeout     time.Duration
}

type SecretsConfig struct {
	Path       string
	Passphrase string
}

type MetricsConfig struct {
	Enabled bool
	Path    string
}

// Load reads configuration from the environment and, when LEDGER_CONFIG
// points at a file, from that file. Environment variables win.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.AutomaticEnv()

	if path := os.Getenv("LEDGER_CONFIG"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		log.Printf("Loaded configuration file: %s", v.ConfigFileUsed())
	}

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	dataDir := defaultDataDir()

	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_HOST", "localhost")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("SERVER_READ_TIMEOUT", 15*time.Second)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 60*time.Second)
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second)
	v.SetDefault("CORS_ALLOW_ORIGINS", "")

	v.SetDefault("DB_DRIVER", DriverSQLite)
	v.SetDefault("DB_PATH", filepath.Join(dataDir, "ledger.db"))
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "ledger")
	v.SetDefault("DB_PASSWORD", "ledger")
	v.SetDefault("DB_NAME", "ledger")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_CONNECTIONS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", time.Hour)
	v.SetDefault("AUTO_MIGRATE", true)
	v.SetDefault("SEED_DATABASE", false)
	v.SetDefault("MIGRATIONS_PATH", "db/migrations")
	v.SetDefault("SEEDS_PATH", "db/seeds")
	v.SetDefault("DB_LOG_QUERIES", false)

	v.SetDefault("RATE_LIMIT_PER_SECOND", 20)
	v.SetDefault("RATE_LIMIT_BURST", 40)

	v.SetDefault("AUTH_ENABLED", false)
	v.SetDefault("AUTH_SECRET", "")
	v.SetDefault("AUTH_ISSUER", "finance-ledger")
	v.SetDefault("AUTH_TOKEN_DURATION", 30*24*time.Hour)

	v.SetDefault("AI_PROVIDER", ProviderHeuristic)
	v.SetDefault("AI_MODEL", "gemini-2.5-flash")
	v.SetDefault("AI_BATCH_SIZE", 5)
	v.SetDefault("AI_BATCH_DELAY", time.Second)
	v.SetDefault("AI_REQUEST_TIMEOUT", 30*time.Second)
	v.SetDefault("AI_MIN_CONFIDENCE", 0.0)
	v.SetDefault("AI_MAX_SUGGESTIONS", 3)
	v.SetDefault("AI_FAILURE_THRESHOLD", 5)
	v.SetDefault("AI_RESET_TIMEOUT", 60*time.Second)

	v.SetDefault("SECRETS_PATH", filepath.Join(dataDir, "credentials.json"))
	v.SetDefault("SECRETS_PASSPHRASE", "")

	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("METRICS_PATH", "/metrics")
}

func fromViper(v *viper.Viper) (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port:            v.GetString("SERVER_PORT"),
			Host:            v.GetString("SERVER_HOST"),
			Environment:     v.GetString("APP_ENV"),
			ReadTimeout:     v.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout:    v.GetDuration("SERVER_WRITE_TIMEOUT"),
			ShutdownTimeout: v.GetDuration("SERVER_SHUTDOWN_TIMEOUT"),
		},
		Database: DatabaseConfig{
			Driver:          strings.ToLower(v.GetString("DB_DRIVER")),
			Path:            v.GetString("DB_PATH"),
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetString("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			Name:            v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSL_MODE"),
			MaxConnections:  v.GetInt("DB_MAX_CONNECTIONS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
			AutoMigrate:     v.GetBool("AUTO_MIGRATE"),
			SeedDatabase:    v.GetBool("SEED_DATABASE"),
			MigrationsPath:  v.GetString("MIGRATIONS_PATH"),
			SeedsPath:       v.GetString("SEEDS_PATH"),
			LogQueries:      v.GetBool("DB_LOG_QUERIES"),
		},
		Security: SecurityConfig{
			RateLimitPerSecond: v.GetInt("RATE_LIMIT_PER_SECOND"),
			RateLimitBurst:     v.GetInt("RATE_LIMIT_BURST"),
		},
		Auth: AuthConfig{
			Enabled:       v.GetBool("AUTH_ENABLED"),
			Secret:        v.GetString("AUTH_SECRET"),
			Issuer:        v.GetString("AUTH_ISSUER"),
			TokenDuration: v.GetDuration("AUTH_TOKEN_DURATION"),
		},
		Suggestion: SuggestionConfig{
			Provider:         strings.ToLower(v.GetString("AI_PROVIDER")),
			Model:            v.GetString("AI_MODEL"),
			BatchSize:        v.GetInt("AI_BATCH_SIZE"),
			BatchDelay:       v.GetDuration("AI_BATCH_DELAY"),
			RequestTimeout:   v.GetDuration("AI_REQUEST_TIMEOUT"),
			MinConfidence:    v.GetFloat64("AI_MIN_CONFIDENCE"),
			MaxSuggestions:   v.GetInt("AI_MAX_SUGGESTIONS"),
			FailureThreshold: v.GetInt("AI_FAILURE_THRESHOLD"),
			ResetTimeout:     v.GetDuration("AI_RESET_TIMEOUT"),
		},
		Secrets: SecretsConfig{
			Path:       v.GetString("SECRETS_PATH"),
			Passphrase: v.GetString("SECRETS_PASSPHRASE"),
		},
		Metrics: MetricsConfig{
			Enabled: v.GetBool("METRICS_ENABLED"),
			Path:    v.GetString("METRICS_PATH"),
		},
	}

	config.Server.CORSAllowOrigins = config.loadCORSAllowOrigins(v.GetString("CORS_ALLOW_ORIGINS"))

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate rejects configurations the service cannot start with
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres, DriverMySQL:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}

	switch c.Suggestion.Provider {
	case ProviderGemini, ProviderHeuristic:
	default:
		return fmt.Errorf("unsupported AI_PROVIDER %q", c.Suggestion.Provider)
	}

	if c.Suggestion.BatchSize < 1 {
		return errors.New("AI_BATCH_SIZE must be at least 1")
	}
	if c.Suggestion.BatchDelay < 0 {
		return errors.New("AI_BATCH_DELAY must not be negative")
	}
	if c.Suggestion.MinConfidence < 0 || c.Suggestion.MinConfidence > 1 {
		return errors.New("AI_MIN_CONFIDENCE must be between 0 and 1")
	}

	if c.Auth.Enabled && len(c.Auth.Secret) < MinAuthSecretLength {
		return fmt.Errorf("AUTH_SECRET must be at least %d characters when AUTH_ENABLED is true", MinAuthSecretLength)
	}

	return nil
}

// DSN returns the connection string for the configured driver
func (c *DatabaseConfig) DSN() string {
	switch c.Driver {
	case DriverPostgres:
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
	case DriverMySQL:
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			c.User, c.Password, c.Host, c.Port, c.Name)
	default:
		return c.Path + "?_foreign_keys=on&_busy_timeout=5000"
	}
}

// URL returns the golang-migrate database URL for the configured driver
func (c *DatabaseConfig) URL() string {
	switch c.Driver {
	case DriverPostgres:
		return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
			c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
	case DriverMySQL:
		return fmt.Sprintf("mysql://%s:%s@tcp(%s:%s)/%s", c.User, c.Password, c.Host, c.Port, c.Name)
	default:
		return "sqlite3://" + c.Path
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func (c *Config) IsTesting() bool {
	return c.Server.Environment == "testing"
}

// loadCORSAllowOrigins splits the configured origins or returns the default
func (c *Config) loadCORSAllowOrigins(corsOrigins string) []string {
	if corsOrigins == "" {
		if c.IsProduction() {
			log.Println("WARNING: CORS_ALLOW_ORIGINS not set in production environment, defaulting to '*' (all origins). Consider setting specific origins for security.")
		}
		return []string{"*"}
	}

	origins := strings.Split(corsOrigins, ",")
	for i, origin := range origins {
		origins[i] = strings.TrimSpace(origin)
	}

	log.Printf("CORS allowed origins configured: %v", origins)
	return origins
}

func defaultDataDir() string {
	if dir := os.Getenv("LEDGER_DATA_DIR"); dir != "" {
		return dir
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", "finance-ledger")
	}
	return "."
}
