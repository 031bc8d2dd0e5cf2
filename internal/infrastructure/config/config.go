package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"

	BackendPostgres = "postgres"
	BackendMongo    = "mongo"

	devAccessSecret  = "dev-insecure-access-secret"
	devRefreshSecret = "dev-insecure-refresh-secret"
)

type Config struct {
	Port            string        `env:"PORT,             default=8080"`
	Env             string        `env:"NODE_ENV,         default=development"`
	LogLevel        string        `env:"LOG_LEVEL,        default=info"`
	LogPretty       bool          `env:"LOG_PRETTY,       default=false"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, default=10s"`

	Database  DatabaseConfig
	Auth      AuthConfig
	Redis     RedisConfig
	Scheduler SchedulerConfig

	// DevSecrets is set when one or both JWT secrets fell back to the
	// built-in development values.
	DevSecrets bool
}

type DatabaseConfig struct {
	URL      string `env:"DATABASE_URL, required"`
	MongoDB  string `env:"MONGO_DB,     default=task_management"`
	MaxConns int32  `env:"DB_MAX_CONNS, default=10"`
}

type AuthConfig struct {
	AccessSecret       string `env:"JWT_ACCESS_SECRET"`
	RefreshSecret      string `env:"JWT_REFRESH_SECRET"`
	BcryptCost         int    `env:"BCRYPT_COST,           default=10"`
	MaxSessionsPerUser int    `env:"MAX_SESSIONS_PER_USER, default=10"`
}

// RedisConfig is optional; an empty Addr disables Redis.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

type SchedulerConfig struct {
	SessionSweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL, default=1h"`
}

// Load reads configuration from the process environment.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration from l and validates it.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Backend reports which store DATABASE_URL selects.
func (c *Config) Backend() (string, error) {
	return BackendFor(c.Database.URL)
}

// BackendFor maps a connection URL to a store backend by scheme.
func BackendFor(url string) (string, error) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return BackendPostgres, nil
	case strings.HasPrefix(url, "mongodb://"), strings.HasPrefix(url, "mongodb+srv://"):
		return BackendMongo, nil
	}
	scheme, _, _ := strings.Cut(url, "://")
	return "", fmt.Errorf("unsupported DATABASE_URL scheme %q", scheme)
}

func (c *Config) validate() error {
	var errs []error

	if _, err := c.Backend(); err != nil {
		errs = append(errs, err)
	}

	if c.IsProduction() {
		if c.Auth.AccessSecret == "" {
			errs = append(errs, errors.New("JWT_ACCESS_SECRET is required in production"))
		}
		if c.Auth.RefreshSecret == "" {
			errs = append(errs, errors.New("JWT_REFRESH_SECRET is required in production"))
		}
		if c.Auth.AccessSecret != "" && c.Auth.AccessSecret == c.Auth.RefreshSecret {
			errs = append(errs, errors.New("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ"))
		}
	} else {
		if c.Auth.AccessSecret == "" {
			c.Auth.AccessSecret = devAccessSecret
			c.DevSecrets = true
		}
		if c.Auth.RefreshSecret == "" {
			c.Auth.RefreshSecret = devRefreshSecret
			c.DevSecrets = true
		}
	}

	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.Auth.BcryptCost))
	}
	if c.Auth.MaxSessionsPerUser < 0 {
		errs = append(errs, errors.New("MAX_SESSIONS_PER_USER must not be negative"))
	}
	if c.Database.MaxConns < 1 {
		errs = append(errs, errors.New("DB_MAX_CONNS must be at least 1"))
	}
	if c.Scheduler.SessionSweepInterval < 0 {
		errs = append(errs, errors.New("SESSION_SWEEP_INTERVAL must not be negative"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
