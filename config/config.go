package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"

	"salonbook-backend/utils"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type AppConfig struct {
	Name     string `env:"APP_NAME" envDefault:"salonbook"`
	Env      string `env:"APP_ENV" envDefault:"local"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

type HTTPConfig struct {
	Port           string        `env:"PORT" envDefault:"8080"`
	AllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:8080,http://127.0.0.1:8080"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`
	SlowRequest    time.Duration `env:"SLOW_REQUEST_THRESHOLD" envDefault:"200ms"`
}

type DatabaseConfig struct {
	// postgres, or sqlite for the embedded single-node mode.
	Driver          string        `env:"DB_DRIVER" envDefault:"postgres"`
	URL             string        `env:"DB_URL"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`
	SeedDefaults    bool          `env:"SEED_DEFAULTS" envDefault:"false"`
}

type AuthConfig struct {
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"JWT_EXPIRY" envDefault:"24h"`
}

type BusinessConfig struct {
	TimeZoneName   string `env:"BUSINESS_TZ_NAME" envDefault:"IST"`
	TimeZoneOffset string `env:"BUSINESS_TZ_OFFSET" envDefault:"+05:30"`
}

type SearchConfig struct {
	Granularity time.Duration `env:"SEARCH_GRANULARITY" envDefault:"15m"`
	Horizon     time.Duration `env:"SEARCH_HORIZON" envDefault:"168h"`
	MaxProbes   int           `env:"SEARCH_MAX_PROBES" envDefault:"0"`
}

type RedisConfig struct {
	Addr      string        `env:"REDIS_ADDR"`
	Password  string        `env:"REDIS_PASSWORD"`
	DB        int           `env:"REDIS_DB" envDefault:"0"`
	RateLimit int           `env:"RATE_LIMIT_PER_WINDOW" envDefault:"60"`
	Window    time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
	FailOpen  bool          `env:"RATE_LIMIT_FAIL_OPEN" envDefault:"true"`
}

type SweeperConfig struct {
	Enabled  bool   `env:"SWEEPER_ENABLED" envDefault:"true"`
	Schedule string `env:"SWEEPER_SCHEDULE" envDefault:"*/15 * * * *"`
}

type Config struct {
	App      AppConfig
	HTTP     HTTPConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Business BusinessConfig
	Search   SearchConfig
	Redis    RedisConfig
	Sweeper  SweeperConfig
}

// Load reads the configuration from the environment
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.App.Env = strings.ToLower(cfg.App.Env)
	cfg.Database.Driver = strings.ToLower(strings.TrimSpace(cfg.Database.Driver))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate performs the checks env tags cannot express
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("invalid config: DB_URL is required for driver %q", DriverPostgres)
		}
	case DriverSQLite:
		// An empty URL means a private in-memory database.
	default:
		return fmt.Errorf("invalid config: unknown DB_DRIVER %q", c.Database.Driver)
	}
	if _, err := utils.ParseUTCOffset(c.Business.TimeZoneOffset); err != nil {
		return fmt.Errorf("invalid config: BUSINESS_TZ_OFFSET: %w", err)
	}
	if c.Search.Granularity <= 0 {
		return fmt.Errorf("invalid config: SEARCH_GRANULARITY must be positive")
	}
	if c.Search.Horizon <= 0 {
		return fmt.Errorf("invalid config: SEARCH_HORIZON must be positive")
	}
	if c.Search.MaxProbes < 0 {
		return fmt.Errorf("invalid config: SEARCH_MAX_PROBES must not be negative")
	}
	return nil
}

func (c *Config) IsLocal() bool {
	return c.App.Env == "local"
}
