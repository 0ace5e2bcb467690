// Package pe joins an EPS series with reference-date closing prices to
// produce a price-to-earnings series.
package pe

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/newthinker/finratio/internal/core"
)

// Places is the rounding precision of PE values.
const Places = 2

// ReferenceDate is the fiscal year-end trading day whose close prices a
// period labelled with Year.
type ReferenceDate struct {
	Year int
	Date time.Time
}

// ReferenceDates are the supported years, newest first. Labels matching
// none of them are left out of the result.
var ReferenceDates = []ReferenceDate{
	{2024, time.Date(2024, 3, 28, 0, 0, 0, 0, time.UTC)},
	{2023, time.Date(2023, 3, 28, 0, 0, 0, 0, time.UTC)},
	{2022, time.Date(2022, 3, 28, 0, 0, 0, 0, time.UTC)},
	{2021, time.Date(2021, 3, 31, 0, 0, 0, 0, time.UTC)},
}

// PriceSource is the part of a price provider the enricher needs.
type PriceSource interface {
	ClosingPrice(ctx context.Context, symbol string, date time.Time) (float64, error)
}

// Enricher computes PE series.
type Enricher struct {
	prices PriceSource
	logger *zap.Logger
}

// NewEnricher creates an enricher reading closes from prices.
func NewEnricher(prices PriceSource, logger *zap.Logger) *Enricher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Enricher{prices: prices, logger: logger}
}

// Enrich returns price/eps for every EPS label that contains a supported
// year, rounded to two decimals. A price the provider cannot find yields
// NaN for that period; any other provider error fails the call.
func (e *Enricher) Enrich(ctx context.Context, symbol string, eps *core.TimeSeries) (*core.TimeSeries, error) {
	prices := make([]float64, len(ReferenceDates))

	g, gctx := errgroup.WithContext(ctx)
	for i, ref := range ReferenceDates {
		g.Go(func() error {
			price, err := e.prices.ClosingPrice(gctx, symbol, ref.Date)
			switch {
			case errors.Is(err, core.ErrPriceNotFound):
				e.logger.Debug("no reference price",
					zap.String("symbol", symbol),
					zap.Int("year", ref.Year),
					zap.Error(err),
				)
				prices[i] = math.NaN()
			case err != nil:
				return err
			default:
				prices[i] = price
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := core.NewTimeSeries()
	for _, p := range eps.Points() {
		i := match(p.Label)
		if i < 0 {
			continue
		}
		out.Set(p.Label, core.Round(prices[i]/p.Value, Places))
	}
	return out, nil
}

// match returns the index of the first reference year contained in label.
func match(label string) int {
	for i, ref := range ReferenceDates {
		if strings.Contains(label, strconv.Itoa(ref.Year)) {
			return i
		}
	}
	return -1
}
