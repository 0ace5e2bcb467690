// Package sector averages the ratio reports of every company that shares
// a target company's sector.
package sector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/newthinker/finratio/internal/core"
	"github.com/newthinker/finratio/internal/metrics"
	"github.com/newthinker/finratio/internal/ratio"
)

// Places is the rounding precision of averaged values.
const Places = 2

// Mode selects how peer values are averaged.
type Mode string

const (
	// ModeRunning folds peers pairwise into a running value: the first
	// value seeds a bucket and every later value is averaged with the
	// bucket. With three or more peers this is not the arithmetic mean.
	ModeRunning Mode = "running"

	// ModeMean takes the arithmetic mean of every peer reporting a value.
	ModeMean Mode = "mean"
)

// Config controls aggregation.
type Config struct {
	WindowYears     int  `mapstructure:"window_years"`
	Mode            Mode `mapstructure:"mode"`
	SkipFailedPeers bool `mapstructure:"skip_failed_peers"`
	Concurrency     int  `mapstructure:"concurrency"`
}

// DefaultConfig returns the historical behaviour: a four year window,
// running averages and all-or-nothing peer failure.
func DefaultConfig() Config {
	return Config{
		WindowYears: 4,
		Mode:        ModeRunning,
		Concurrency: 8,
	}
}

// Validate checks the config values.
func (c Config) Validate() error {
	if c.WindowYears <= 0 {
		return fmt.Errorf("window_years must be positive")
	}
	switch c.Mode {
	case ModeRunning, ModeMean:
	default:
		return fmt.Errorf("unknown mode: %q", c.Mode)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency cannot be negative")
	}
	return nil
}

// Source is the data the aggregator reads.
type Source interface {
	Statement(ctx context.Context, kind core.StatementKind, symbol string) (core.Statement, error)
	BasicInfo(ctx context.Context, symbol string) (*core.BasicInfo, error)
	Peers(ctx context.Context, sector string) ([]string, error)
}

// Report maps each averaged ratio to its windowed series.
type Report struct {
	Symbol  string
	Sector  string
	Peers   []string
	Skipped []string

	names  []string
	ratios map[string]*core.TimeSeries
}

// Ratio returns the averaged series for name.
func (r *Report) Ratio(name string) *core.TimeSeries {
	return r.ratios[name]
}

// Names returns the ratio names in report order.
func (r *Report) Names() []string {
	return append([]string(nil), r.names...)
}

// MarshalJSON writes the ratio series in report order.
func (r *Report) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range r.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		v, err := r.ratios[name].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Aggregator builds sector reports.
type Aggregator struct {
	src     Source
	cfg     Config
	now     func() time.Time
	logger  *zap.Logger
	metrics *metrics.Registry
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithClock replaces the wall clock used for the period window.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(a *Aggregator) { a.logger = logger }
}

// WithMetrics records peer counts in reg.
func WithMetrics(reg *metrics.Registry) Option {
	return func(a *Aggregator) { a.metrics = reg }
}

// New creates an aggregator.
func New(src Source, cfg Config, opts ...Option) *Aggregator {
	a := &Aggregator{
		src:    src,
		cfg:    cfg,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate computes every peer's ratios and averages them per period.
func (a *Aggregator) Aggregate(ctx context.Context, symbol string) (*Report, error) {
	start := time.Now()
	report, err := a.aggregate(ctx, symbol)
	status := "success"
	if err != nil {
		status = "error"
	}
	a.metrics.RecordReport("sector", status, time.Since(start).Seconds())
	return report, err
}

func (a *Aggregator) aggregate(ctx context.Context, symbol string) (*Report, error) {
	if symbol == "" {
		return nil, core.ErrMissingSymbol
	}

	info, err := a.src.BasicInfo(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if info.Sector == "" {
		return nil, core.ErrNoSector
	}

	peers, err := a.src.Peers(ctx, info.Sector)
	if err != nil {
		return nil, err
	}
	if len(peers) == 0 {
		return nil, core.ErrNoPeers
	}

	if err := a.checkPeriods(ctx, symbol); err != nil {
		return nil, err
	}

	sets, err := a.computePeers(ctx, peers)
	if err != nil {
		return nil, err
	}

	report := &Report{Symbol: symbol, Sector: info.Sector}
	var included []*ratio.Set
	for i, set := range sets {
		if set == nil {
			report.Skipped = append(report.Skipped, peers[i])
			continue
		}
		report.Peers = append(report.Peers, peers[i])
		included = append(included, set)
	}
	a.fold(report, included)
	a.metrics.ObserveSectorPeers(len(report.Peers))

	a.logger.Debug("sector aggregated",
		zap.String("symbol", symbol),
		zap.String("sector", info.Sector),
		zap.Int("peers", len(report.Peers)),
		zap.Int("skipped", len(report.Skipped)),
	)
	return report, nil
}

// checkPeriods fails with core.ErrNoData unless the target has period
// labels on its share count.
func (a *Aggregator) checkPeriods(ctx context.Context, symbol string) error {
	balance, err := a.src.Statement(ctx, core.StatementBalance, symbol)
	if errors.Is(err, core.ErrStatementNotFound) {
		return core.WrapError(core.ErrNoData, err)
	}
	if err != nil {
		return err
	}
	if balance.Item(ratio.ItemOrdinarySharesCount).Len() == 0 {
		return core.ErrNoData
	}
	return nil
}

// computePeers returns one ratio set per peer, in peer order. With
// SkipFailedPeers a failed peer leaves a nil entry.
func (a *Aggregator) computePeers(ctx context.Context, peers []string) ([]*ratio.Set, error) {
	sets := make([]*ratio.Set, len(peers))
	errs := make([]error, len(peers))

	g, gctx := errgroup.WithContext(ctx)
	if a.cfg.Concurrency > 0 {
		g.SetLimit(a.cfg.Concurrency)
	}
	for i, peer := range peers {
		g.Go(func() error {
			set, err := a.peerRatios(gctx, peer)
			if err == nil {
				sets[i] = set
				return nil
			}
			if !a.cfg.SkipFailedPeers {
				return fmt.Errorf("peer %s: %w", peer, err)
			}
			a.logger.Warn("skipping peer", zap.String("peer", peer), zap.Error(err))
			errs[i] = err
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if a.cfg.SkipFailedPeers {
		var failed int
		for _, err := range errs {
			if err != nil {
				failed++
			}
		}
		if failed == len(peers) {
			return nil, core.WrapError(core.ErrComputationFailed, errors.Join(errs...))
		}
	}
	return sets, nil
}

func (a *Aggregator) peerRatios(ctx context.Context, symbol string) (*ratio.Set, error) {
	g, gctx := errgroup.WithContext(ctx)
	var st ratio.Statements
	g.Go(func() error {
		var err error
		st.Income, err = a.src.Statement(gctx, core.StatementIncome, symbol)
		return err
	})
	g.Go(func() error {
		var err error
		st.Balance, err = a.src.Statement(gctx, core.StatementBalance, symbol)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ratio.BuildSet(st), nil
}

// fold averages sets into report over the period window.
func (a *Aggregator) fold(report *Report, sets []*ratio.Set) {
	year := a.now().Year()
	report.names = append([]string(nil), ratio.SectorRatios...)
	report.ratios = make(map[string]*core.TimeSeries, len(report.names))

	for _, name := range report.names {
		var values []*core.TimeSeries
		for _, set := range sets {
			if s, ok := set.Get(name); ok {
				values = append(values, s.Values)
			}
		}
		if a.cfg.Mode == ModeMean {
			report.ratios[name] = mean(values, year, a.cfg.WindowYears)
		} else {
			report.ratios[name] = running(values, year, a.cfg.WindowYears)
		}
	}
}

func running(peers []*core.TimeSeries, year, window int) *core.TimeSeries {
	out := core.NewTimeSeries()
	for _, s := range peers {
		for _, p := range s.Points() {
			if !InWindow(p.Label, year, window) {
				continue
			}
			bucket, _ := out.Get(p.Label)
			if core.Truthy(bucket) {
				out.Set(p.Label, core.Round((bucket+p.Value)/2, Places))
			} else {
				out.Set(p.Label, core.Round(p.Value, Places))
			}
		}
	}
	return out
}

func mean(peers []*core.TimeSeries, year, window int) *core.TimeSeries {
	type acc struct {
		sum float64
		n   int
	}
	sums := make(map[string]*acc)
	out := core.NewTimeSeries()
	for _, s := range peers {
		for _, p := range s.Points() {
			if !InWindow(p.Label, year, window) {
				continue
			}
			a, ok := sums[p.Label]
			if !ok {
				a = &acc{}
				sums[p.Label] = a
				out.Set(p.Label, math.NaN())
			}
			if math.IsNaN(p.Value) {
				continue
			}
			a.sum += p.Value
			a.n++
		}
	}
	for _, label := range out.Labels() {
		if a := sums[label]; a.n > 0 {
			out.Set(label, core.Round(a.sum/float64(a.n), Places))
		}
	}
	return out
}

var labelLayouts = []string{time.RFC3339, time.DateOnly, "2006"}

// LabelYear reads the calendar year of a period label.
func LabelYear(label string) (int, bool) {
	for _, layout := range labelLayouts {
		if t, err := time.Parse(layout, label); err == nil {
			return t.UTC().Year(), true
		}
	}
	return 0, false
}

// InWindow reports whether label's year is less than window years before
// year. Labels that are not dates are never in the window.
func InWindow(label string, year, window int) bool {
	y, ok := LabelYear(label)
	return ok && year-y < window
}
