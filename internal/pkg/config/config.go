package config

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Store drivers.
const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

type Config struct {
	Port     string `env:"PORT,      default=5000"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`
	// StoreDriver selects the persistence backend: "mongo" (with Redis for
	// throttling and revocation) or "memory" for local runs without either.
	StoreDriver string `env:"STORE_DRIVER, default=mongo"`
	// CORSOrigins lists the browser origins allowed to call the API with
	// credentials (the refresh cookie).
	CORSOrigins []string `env:"CORS_ORIGINS, default=http://localhost:5173"`

	Auth  AuthConfig
	Login LoginConfig
	Mongo MongoConfig
	Redis RedisConfig
}

// AuthConfig holds the token and hashing settings. It is loaded once and
// shared read-only for the lifetime of the process.
type AuthConfig struct {
	AccessSecret  string   `env:"JWT_ACCESS_SECRET,    required"`
	RefreshSecret string   `env:"JWT_REFRESH_SECRET,   required"`
	Issuer        string   `env:"JWT_ISSUER,           default=task-manager"`
	AccessTTL     Duration `env:"ACCESS_TOKEN_EXPIRY,  default=15m"`
	RefreshTTL    Duration `env:"REFRESH_TOKEN_EXPIRY, default=7d"`
	ClockSkew     Duration `env:"TOKEN_CLOCK_SKEW,     default=0s"`
	BcryptCost    int      `env:"BCRYPT_COST,          default=10"`
	HashWorkers   int      `env:"HASH_WORKERS,         default=4"`
	// RefreshRevocation enables the Redis denylist consulted on refresh.
	// Off by default: logout only clears the cookie.
	RefreshRevocation bool `env:"REFRESH_REVOCATION, default=false"`
}

type LoginConfig struct {
	MaxAttempts   int      `env:"LOGIN_MAX_ATTEMPTS,   default=5"`
	LockoutWindow Duration `env:"LOGIN_LOCKOUT_WINDOW, default=15m"`
	RateLimit     float64  `env:"AUTH_RATE_LIMIT,      default=5"`
	RateBurst     int      `env:"AUTH_RATE_BURST,      default=10"`
}

type MongoConfig struct {
	URI      string   `env:"MONGO_URI,     default=mongodb://localhost:27017"`
	Database string   `env:"MONGO_DB,      default=task_manager"`
	Timeout  Duration `env:"MONGO_TIMEOUT, default=5s"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// IsProduction reports whether cookies must be marked Secure.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Validate rejects settings that would weaken token handling.
func (c *Config) Validate() error {
	if c.StoreDriver != StoreMongo && c.StoreDriver != StoreMemory {
		return fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}
	a := c.Auth
	if a.AccessSecret == "" || a.RefreshSecret == "" {
		return errors.New("access and refresh secrets are required")
	}
	if a.AccessSecret == a.RefreshSecret {
		return errors.New("access and refresh secrets must differ")
	}
	if a.AccessTTL <= 0 || a.RefreshTTL <= 0 {
		return errors.New("token lifetimes must be positive")
	}
	if a.ClockSkew < 0 {
		return errors.New("token clock skew must not be negative")
	}
	if a.HashWorkers <= 0 {
		return errors.New("hash workers must be positive")
	}
	return nil
}

// Load reads configuration from environment variables using go-envconfig.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// Duration is a time.Duration that also accepts a whole-day suffix ("7d").
type Duration time.Duration

// EnvDecode satisfies envconfig.Decoder.
func (d *Duration) EnvDecode(val string) error {
	parsed, err := ParseDuration(val)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// ParseDuration parses Go durations plus an integer day form such as "7d".
func ParseDuration(val string) (time.Duration, error) {
	val = strings.TrimSpace(val)
	if days, ok := strings.CutSuffix(val, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", val)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	parsed, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", val, err)
	}
	return parsed, nil
}
