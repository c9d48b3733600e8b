package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string        `env:"DATABASE_URL,required"`
	JWTSecret   string        `env:"JWT_SECRET,required"`
	Port        int           `env:"PORT" envDefault:"8080"`
	LogLevel    string        `env:"LOG_LEVEL" envDefault:"info"`
	AppEnv      string        `env:"APP_ENV" envDefault:"production"`
	TokenTTL    time.Duration `env:"TOKEN_TTL" envDefault:"24h"`

	MigrateOnStart bool `env:"MIGRATE_ON_START" envDefault:"true"`

	// OTelEndpoint is an OTLP/HTTP traces URL; empty disables export.
	OTelEndpoint string `env:"OTEL_EXPORTER_OTLP_TRACES_ENDPOINT"`

	// AllowInactivePosting lets drafts reference inactive accounts by default,
	// for loading historical corrections.
	AllowInactivePosting bool `env:"ALLOW_INACTIVE_POSTING" envDefault:"false"`

	// IdempotencyPurgeInterval is how often the API deletes expired cached
	// responses; zero disables the sweep.
	IdempotencyPurgeInterval time.Duration `env:"IDEMPOTENCY_PURGE_INTERVAL" envDefault:"1h"`

	SequenceMaxRetries     uint64 `env:"SEQUENCE_MAX_RETRIES" envDefault:"5"`
	SequenceRetryInitialMS int    `env:"SEQUENCE_RETRY_INITIAL_MS" envDefault:"10"`

	DBMaxOpenConns     int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns     int           `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	DBConnMaxLifetimeS int           `env:"DB_CONN_MAX_LIFETIME_S" envDefault:"300"`
	DBConnMaxIdleTimeS int           `env:"DB_CONN_MAX_IDLE_TIME_S" envDefault:"60"`
	DBConnectTimeout   time.Duration `env:"DB_CONNECT_TIMEOUT" envDefault:"30s"`
}

// Load reads an optional .env file from the working directory, then parses
// the environment. Variables already set take precedence over the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config.Load: .env: %w", err)
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

func (c *Config) SequenceRetryInitial() time.Duration {
	return time.Duration(c.SequenceRetryInitialMS) * time.Millisecond
}
