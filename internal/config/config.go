package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/newthinker/finratio/internal/collector"
	"github.com/newthinker/finratio/internal/core"
	"github.com/newthinker/finratio/internal/dcf"
	"github.com/newthinker/finratio/internal/sector"
	"github.com/newthinker/finratio/internal/storage/archive"
)

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendLocalFS  = "localfs"
	BackendS3       = "s3"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

type Config struct {
	Server     ServerConfig               `mapstructure:"server"`
	Log        LogConfig                  `mapstructure:"log"`
	Storage    StorageConfig              `mapstructure:"storage"`
	Collectors map[string]CollectorConfig `mapstructure:"collectors"`
	Prices     PricesConfig               `mapstructure:"prices"`
	Valuation  dcf.Params                 `mapstructure:"valuation"`
	Sector     sector.Config              `mapstructure:"sector"`
	Metrics    MetricsConfig              `mapstructure:"metrics"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type LogConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// StorageConfig selects where company documents are read from.
type StorageConfig struct {
	Backend  string           `mapstructure:"backend"`
	Path     string           `mapstructure:"path"` // For localfs
	S3       archive.S3Config `mapstructure:"s3"`
	SQLite   SQLiteConfig     `mapstructure:"sqlite"`
	Postgres PostgresConfig   `mapstructure:"postgres"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

// CollectorConfig enables a price provider and carries its settings.
type CollectorConfig struct {
	Enabled          bool `mapstructure:"enabled"`
	collector.Config `mapstructure:",squash"`
}

// PricesConfig names the collector that serves closing prices and quotes.
type PricesConfig struct {
	Provider string `mapstructure:"provider"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from file over the defaults
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.SetEnvPrefix("FINRATIO")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
		Storage: StorageConfig{
			Backend: BackendLocalFS,
			Path:    "./data",
			SQLite: SQLiteConfig{
				Path: "./data/finratio.db",
			},
		},
		Collectors: map[string]CollectorConfig{
			"yahoo": {Enabled: true},
		},
		Prices: PricesConfig{
			Provider: "yahoo",
		},
		Valuation: dcf.DefaultParams(),
		Sector:    sector.DefaultConfig(),
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}

	switch c.Storage.Backend {
	case BackendMemory:
	case BackendLocalFS:
		if c.Storage.Path == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("storage path required when backend is localfs"))
		}
	case BackendS3:
		if c.Storage.S3.Bucket == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("s3 bucket required when backend is s3"))
		}
	case BackendSQLite:
		if c.Storage.SQLite.Path == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("sqlite path required when backend is sqlite"))
		}
	case BackendPostgres:
		if c.Storage.Postgres.DSN == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("postgres dsn required when backend is postgres"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown storage backend %q", c.Storage.Backend))
	}

	// The price provider must be a configured, enabled collector
	if c.Prices.Provider == "" {
		return core.WrapError(core.ErrConfigMissing, fmt.Errorf("prices.provider required"))
	}
	if cc, ok := c.Collectors[c.Prices.Provider]; !ok || !cc.Enabled {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("price provider %q is not an enabled collector", c.Prices.Provider))
	}
	for name, cc := range c.Collectors {
		if cc.RequestsPerSecond < 0 {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("collectors.%s.requests_per_second cannot be negative", name))
		}
	}

	if c.Valuation.BetaHorizon == "" {
		return core.WrapError(core.ErrConfigMissing, fmt.Errorf("valuation.beta_horizon required"))
	}
	if c.Valuation.MarketReturn <= c.Valuation.RiskFreeRate {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("valuation.market_return %.3f must exceed risk_free_rate %.3f",
				c.Valuation.MarketReturn, c.Valuation.RiskFreeRate))
	}

	if err := c.Sector.Validate(); err != nil {
		return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("sector: %w", err))
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("metrics path must start with /, got %q", c.Metrics.Path))
	}

	return nil
}
