package infra

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration parsed from environment variables.
type Config struct {
	// Database
	DatabaseURL string `env:"DATABASE_URL"`
	PGHost      string `env:"PGHOST" envDefault:"localhost"`
	PGPort      int    `env:"PGPORT" envDefault:"5436"`
	PGUser      string `env:"PGUSER" envDefault:"xpump"`
	PGPassword  string `env:"PGPASSWORD" envDefault:"xpump"`
	PGDatabase  string `env:"PGDATABASE" envDefault:"xpump"`

	// Pool
	DBMaxConns        int32         `env:"DB_MAX_CONNS" envDefault:"20"`
	DBMinConns        int32         `env:"DB_MIN_CONNS" envDefault:"2"`
	DBMaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"30m"`
	DBMaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"5m"`

	// JWT
	JWTSecret      string        `env:"JWT_SECRET" envDefault:"change-me-in-production"`
	JWTUserExpiry  time.Duration `env:"JWT_USER_EXPIRY" envDefault:"24h"`
	JWTAdminExpiry time.Duration `env:"JWT_ADMIN_EXPIRY" envDefault:"8h"`

	// Server
	APIPort  int    `env:"API_PORT" envDefault:"3100"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Kafka
	KafkaBrokers string `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`
	KafkaEnabled bool   `env:"KAFKA_ENABLED" envDefault:"false"`

	// Outbox
	OutboxPollInterval time.Duration `env:"OUTBOX_POLL_INTERVAL" envDefault:"2s"`
	OutboxBatchSize    int           `env:"OUTBOX_BATCH_SIZE" envDefault:"100"`

	// Guards
	CheckinRateLimit      int           `env:"CHECKIN_RATE_LIMIT" envDefault:"30"`
	CheckinRateWindow     time.Duration `env:"CHECKIN_RATE_WINDOW" envDefault:"1m"`
	OutboxBreakerFailures int           `env:"OUTBOX_BREAKER_FAILURES" envDefault:"5"`
	OutboxBreakerReset    time.Duration `env:"OUTBOX_BREAKER_RESET" envDefault:"30s"`

	// CORS
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`

	// Gamification
	AppTimezone                    string        `env:"APP_TIMEZONE" envDefault:"UTC"`
	WorkoutStreakMultiplierEnabled bool          `env:"WORKOUT_STREAK_MULTIPLIER_ENABLED" envDefault:"false"`
	SeasonCacheSize                int           `env:"SEASON_CACHE_SIZE" envDefault:"1024"`
	SeasonCacheTTL                 time.Duration `env:"SEASON_CACHE_TTL" envDefault:"5m"`
	DefaultWorkoutFrequency        int           `env:"DEFAULT_WORKOUT_FREQUENCY" envDefault:"3"`

	// Dev
	AllowInsecureDefaults bool `env:"ALLOW_INSECURE_DEFAULTS" envDefault:"false"`
}

// LoadConfig parses environment variables into a Config struct.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks for configuration that must not run in production.
// Set ALLOW_INSECURE_DEFAULTS=true to bypass the secret checks (local dev only).
func (c *Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.DefaultWorkoutFrequency < 1 || c.DefaultWorkoutFrequency > 7 {
		return fmt.Errorf("DEFAULT_WORKOUT_FREQUENCY must be between 1 and 7, got %d", c.DefaultWorkoutFrequency)
	}
	if c.CheckinRateWindow <= 0 {
		return fmt.Errorf("CHECKIN_RATE_WINDOW must be positive, got %s", c.CheckinRateWindow)
	}
	if c.SeasonCacheSize <= 0 {
		return fmt.Errorf("SEASON_CACHE_SIZE must be positive, got %d", c.SeasonCacheSize)
	}
	if c.SeasonCacheTTL < 0 {
		return fmt.Errorf("SEASON_CACHE_TTL must not be negative, got %s", c.SeasonCacheTTL)
	}
	if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) and DB_MAX_CONNS (%d) must satisfy 0 <= min <= max, max > 0", c.DBMinConns, c.DBMaxConns)
	}
	if c.AllowInsecureDefaults {
		return nil
	}
	if c.JWTSecret == "change-me-in-production" {
		return fmt.Errorf("JWT_SECRET is set to the insecure default; set a strong secret or set ALLOW_INSECURE_DEFAULTS=true for local dev")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET is too short (%d chars); minimum 32 characters required", len(c.JWTSecret))
	}
	return nil
}

// DSN returns the PostgreSQL connection string, preferring DATABASE_URL if set.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.PGUser, c.PGPassword, c.PGHost, c.PGPort, c.PGDatabase)
}

// Location resolves APP_TIMEZONE. Calendar days for the daily cap and streaks are read in it.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.AppTimezone)
	if err != nil {
		return nil, fmt.Errorf("APP_TIMEZONE %q: %w", c.AppTimezone, err)
	}
	return loc, nil
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
