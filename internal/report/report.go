// Package report assembles a company's full analysis: ratios with growth,
// the composite score, the DuPont factors and the DCF valuation.
package report

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/newthinker/finratio/internal/core"
	"github.com/newthinker/finratio/internal/dcf"
	"github.com/newthinker/finratio/internal/dupont"
	"github.com/newthinker/finratio/internal/metrics"
	"github.com/newthinker/finratio/internal/pe"
	"github.com/newthinker/finratio/internal/ratio"
)

// Source is the data the assembler reads.
type Source interface {
	Statement(ctx context.Context, kind core.StatementKind, symbol string) (core.Statement, error)
	Beta(ctx context.Context, symbol string) (*core.BetaRecord, error)
	BasicInfo(ctx context.Context, symbol string) (*core.BasicInfo, error)
}

// CompanyReport is the per-request result for one company.
type CompanyReport struct {
	Symbol          string         `json:"symbol"`
	Ratios          *ratio.Set     `json:"companyData"`
	Growth          core.Float     `json:"growth"`
	DuPont          dupont.Factors `json:"dupontData"`
	BalanceSheet    core.Statement `json:"balanceSheet"`
	IncomeStatement core.Statement `json:"incomeStatement"`
	Cashflow        core.Statement `json:"cashflow"`
	BasicInfo       map[string]any `json:"basicInfo"`
	DCF             *dcf.Result    `json:"dcfData"`
}

// snapshot is everything fetched for one company before computing.
type snapshot struct {
	income   core.Statement
	balance  core.Statement
	cashflow core.Statement
	beta     *core.BetaRecord
	info     *core.BasicInfo
}

// Assembler builds company reports.
type Assembler struct {
	src      Source
	enricher *pe.Enricher
	params   dcf.Params
	logger   *zap.Logger
	metrics  *metrics.Registry
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(a *Assembler) { a.logger = logger }
}

// WithMetrics sets the metrics registry.
func WithMetrics(reg *metrics.Registry) Option {
	return func(a *Assembler) { a.metrics = reg }
}

// New creates an assembler reading documents from src and closing prices
// from prices.
func New(src Source, prices pe.PriceSource, params dcf.Params, opts ...Option) *Assembler {
	a := &Assembler{
		src:    src,
		params: params,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = zap.NewNop()
	}
	a.enricher = pe.NewEnricher(prices, a.logger)
	return a
}

// Build fetches the company's documents and computes its report.
func (a *Assembler) Build(ctx context.Context, symbol string) (*CompanyReport, error) {
	start := time.Now()
	report, err := a.build(ctx, symbol)

	duration := time.Since(start)
	status := "success"
	if err != nil {
		status = "error"
		a.logger.Warn("company report failed",
			zap.String("symbol", symbol),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
	} else {
		a.logger.Info("company report built",
			zap.String("symbol", symbol),
			zap.Duration("duration", duration),
		)
	}
	a.metrics.RecordReport("company", status, duration.Seconds())
	return report, err
}

func (a *Assembler) build(ctx context.Context, symbol string) (*CompanyReport, error) {
	if symbol == "" {
		return nil, core.ErrMissingSymbol
	}

	snap, err := a.fetch(ctx, symbol)
	if err != nil {
		return nil, err
	}

	set := ratio.BuildSet(ratio.Statements{Income: snap.income, Balance: snap.balance})
	peSeries, err := a.enricher.Enrich(ctx, symbol, snap.income.Item(ratio.ItemBasicEPS))
	if err != nil {
		return nil, fmt.Errorf("pe: %w", err)
	}
	set.Add(ratio.PriceToEarnings, ratio.Annotate(peSeries, ratio.Weight10))

	valuation, err := dcf.Valuate(dcf.Inputs{
		Beta:     snap.beta,
		Balance:  snap.balance,
		Income:   snap.income,
		Cashflow: snap.cashflow,
	}, a.params)
	if err != nil {
		return nil, err
	}
	if !valuation.Computable() {
		a.metrics.RecordDCFNotComputable()
		a.logger.Warn("dcf value not computable", zap.String("symbol", symbol))
	}

	return &CompanyReport{
		Symbol:          symbol,
		Ratios:          set,
		Growth:          core.Float(ratio.Score(set)),
		DuPont:          dupont.Decompose(snap.income, snap.balance),
		BalanceSheet:    snap.balance,
		IncomeStatement: snap.income,
		Cashflow:        snap.cashflow,
		BasicInfo:       snap.info.Passthrough(),
		DCF:             valuation,
	}, nil
}

// fetch loads the five documents concurrently. Every one is required.
func (a *Assembler) fetch(ctx context.Context, symbol string) (*snapshot, error) {
	var snap snapshot
	g, gctx := errgroup.WithContext(ctx)

	statement := func(kind core.StatementKind, dst *core.Statement) func() error {
		return func() error {
			st, err := a.src.Statement(gctx, kind, symbol)
			if err != nil {
				return fmt.Errorf("%s statement: %w", kind, err)
			}
			*dst = st
			return nil
		}
	}
	g.Go(statement(core.StatementIncome, &snap.income))
	g.Go(statement(core.StatementBalance, &snap.balance))
	g.Go(statement(core.StatementCashflow, &snap.cashflow))
	g.Go(func() error {
		beta, err := a.src.Beta(gctx, symbol)
		if err != nil {
			return fmt.Errorf("beta: %w", err)
		}
		snap.beta = beta
		return nil
	})
	g.Go(func() error {
		info, err := a.src.BasicInfo(gctx, symbol)
		if err != nil {
			return fmt.Errorf("basic info: %w", err)
		}
		snap.info = info
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &snap, nil
}
