package collector

import (
	"context"
	"time"

	"github.com/newthinker/finratio/internal/core"
)

// Config holds price provider configuration
type Config struct {
	BaseURL           string        `mapstructure:"base_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	UserAgent         string        `mapstructure:"user_agent"`
}

// PriceProvider supplies market prices for a symbol
type PriceProvider interface {
	Name() string

	// ClosingPrice returns the close on or just before date. It fails with
	// core.ErrPriceNotFound when no bar exists near the date.
	ClosingPrice(ctx context.Context, symbol string, date time.Time) (float64, error)

	// Quote returns the current quote.
	Quote(ctx context.Context, symbol string) (*core.Quote, error)
}
