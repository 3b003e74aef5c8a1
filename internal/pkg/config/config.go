package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

const minSecretLength = 32

type Config struct {
	Port      string        `env:"PORT,      default=8080"`
	Env       string        `env:"ENV,       default=development"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`
	LogFile   string        `env:"LOG_FILE"`
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL, default=24h"`

	PasswordScheme string `env:"PASSWORD_SCHEME, default=bcrypt"`

	SeedFile               string `env:"SEED_FILE"`
	BootstrapAdminPassword string `env:"BOOTSTRAP_ADMIN_PASSWORD"`

	Store StoreConfig
	Mongo MongoConfig
	Redis RedisConfig
}

type StoreConfig struct {
	Driver  string        `env:"STORE_DRIVER,  default=sqlite"`
	DSN     string        `env:"DATABASE_DSN,  default=file:records.db?_pragma=foreign_keys(1)"`
	Timeout time.Duration `env:"STORE_TIMEOUT, default=5s"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=records"`
}

// RedisConfig enables the idempotency store when Addr is set.
type RedisConfig struct {
	Addr string `env:"REDIS_ADDR"`
	DB   int    `env:"REDIS_DB, default=0"`
}

// Load reads configuration from environment variables using go-envconfig and
// validates it.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsDevelopment reports whether pretty console logs should be used.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) Validate() error {
	switch {
	case len(c.JWTSecret) < minSecretLength:
		return fmt.Errorf("%w: JWT_SECRET must be at least %d bytes", ErrInvalidConfig, minSecretLength)
	case c.TokenTTL <= 0:
		return fmt.Errorf("%w: TOKEN_TTL must be positive", ErrInvalidConfig)
	case c.Store.Timeout <= 0:
		return fmt.Errorf("%w: STORE_TIMEOUT must be positive", ErrInvalidConfig)
	}

	switch c.PasswordScheme {
	case "bcrypt", "argon2id":
	default:
		return fmt.Errorf("%w: unknown PASSWORD_SCHEME %q", ErrInvalidConfig, c.PasswordScheme)
	}

	switch c.Store.Driver {
	case "sqlite", "postgres", "mysql":
		if c.Store.DSN == "" {
			return fmt.Errorf("%w: DATABASE_DSN is required for %s", ErrInvalidConfig, c.Store.Driver)
		}
	case "mongo":
		if c.Mongo.URI == "" || c.Mongo.Database == "" {
			return fmt.Errorf("%w: MONGO_URI and MONGO_DB are required", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown STORE_DRIVER %q", ErrInvalidConfig, c.Store.Driver)
	}
	return nil
}
