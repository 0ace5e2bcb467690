package sector

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newthinker/finratio/internal/core"
	"github.com/newthinker/finratio/internal/ratio"
)

const (
	fy24 = "2024-03-31T00:00:00+00:00"
	fy23 = "2023-03-31T00:00:00+00:00"
	fy20 = "2020-03-31T00:00:00+00:00"
)

type fakeSource struct {
	info    map[string]*core.BasicInfo
	income  map[string]core.Statement
	balance map[string]core.Statement
	calls   atomic.Int32
}

func (f *fakeSource) Statement(ctx context.Context, kind core.StatementKind, symbol string) (core.Statement, error) {
	f.calls.Add(1)
	var st core.Statement
	switch kind {
	case core.StatementIncome:
		st = f.income[symbol]
	case core.StatementBalance:
		st = f.balance[symbol]
	}
	if st == nil {
		return nil, core.WrapError(core.ErrStatementNotFound, errors.New(symbol))
	}
	return st, nil
}

func (f *fakeSource) BasicInfo(ctx context.Context, symbol string) (*core.BasicInfo, error) {
	info, ok := f.info[symbol]
	if !ok {
		return nil, core.WrapError(core.ErrStatementNotFound, errors.New(symbol))
	}
	return info, nil
}

func (f *fakeSource) Peers(ctx context.Context, sector string) ([]string, error) {
	var out []string
	for _, sym := range []string{"AAA.NS", "BBB.NS", "CCC.NS"} {
		if info, ok := f.info[sym]; ok && info.Sector == sector {
			out = append(out, sym)
		}
	}
	return out, nil
}

func series(values map[string]float64) *core.TimeSeries {
	s := core.NewTimeSeries()
	for _, l := range []string{fy24, fy23, fy20} {
		if v, ok := values[l]; ok {
			s.Set(l, v)
		}
	}
	return s
}

// addCompany registers a company whose production efficiency is pe for
// every period and whose EPS is eps.
func (f *fakeSource) addCompany(symbol, sectorName string, pe, eps float64) {
	if f.info == nil {
		f.info = map[string]*core.BasicInfo{}
		f.income = map[string]core.Statement{}
		f.balance = map[string]core.Statement{}
	}
	all := func(v float64) *core.TimeSeries {
		return series(map[string]float64{fy24: v, fy23: v, fy20: v})
	}
	f.info[symbol] = &core.BasicInfo{Symbol: symbol, Sector: sectorName}
	f.income[symbol] = core.Statement{
		ratio.ItemTotalRevenue:    all(1000),
		ratio.ItemOperatingIncome: all(1000 * pe),
		ratio.ItemPretaxIncome:    all(1000 * pe),
		ratio.ItemNetIncome:       all(500 * pe),
		ratio.ItemBasicEPS:        all(eps),
	}
	f.balance[symbol] = core.Statement{
		ratio.ItemNetPPE:              all(500),
		ratio.ItemInventory:           all(250),
		ratio.ItemTotalAssets:         all(2000),
		ratio.ItemStockholdersEquity:  all(1000),
		ratio.ItemOrdinarySharesCount: all(100),
	}
}

func fixedClock() time.Time {
	return time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
}

func newAggregator(src Source, mutate func(*Config)) *Aggregator {
	cfg := DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	return New(src, cfg, WithClock(fixedClock))
}

func value(t *testing.T, r *Report, name, label string) float64 {
	t.Helper()
	s := r.Ratio(name)
	require.NotNil(t, s, name)
	v, ok := s.Get(label)
	require.True(t, ok, "%s %s", name, label)
	return v
}

func TestAggregate_SinglePeerEqualsOwnValues(t *testing.T) {
	src := &fakeSource{}
	src.addCompany("AAA.NS", "Technology", 0.2, 12.5)

	r, err := newAggregator(src, nil).Aggregate(context.Background(), "AAA.NS")
	require.NoError(t, err)

	own := ratio.BuildSet(ratio.Statements{Income: src.income["AAA.NS"], Balance: src.balance["AAA.NS"]})
	assert.Equal(t, ratio.SectorRatios, r.Names())
	for _, name := range ratio.SectorRatios {
		s, _ := own.Get(name)
		want := core.NewTimeSeries()
		for _, p := range s.Values.Points() {
			if InWindow(p.Label, 2026, 4) {
				want.Set(p.Label, p.Value)
			}
		}
		assert.Equal(t, want.Points(), r.Ratio(name).Points(), name)
	}
	assert.Equal(t, []string{"AAA.NS"}, r.Peers)
}

func TestAggregate_WindowExcludesOldPeriods(t *testing.T) {
	src := &fakeSource{}
	src.addCompany("AAA.NS", "Technology", 0.25, 10)

	r, err := newAggregator(src, nil).Aggregate(context.Background(), "AAA.NS")
	require.NoError(t, err)

	assert.Equal(t, []string{fy24, fy23}, r.Ratio(ratio.EPS).Labels())
	assert.False(t, r.Ratio(ratio.EPS).Has(fy20))
}

func TestAggregate_RunningAverage(t *testing.T) {
	src := &fakeSource{}
	src.addCompany("AAA.NS", "Technology", 0.2, 10)
	src.addCompany("BBB.NS", "Technology", 0.4, 20)
	src.addCompany("CCC.NS", "Technology", 0.8, 40)

	r, err := newAggregator(src, nil).Aggregate(context.Background(), "BBB.NS")
	require.NoError(t, err)

	// ((10+20)/2 + 40)/2
	assert.Equal(t, 27.5, value(t, r, ratio.EPS, fy24))
	// ((0.2+0.4)/2 + 0.8)/2
	assert.Equal(t, 0.55, value(t, r, ratio.ProductionEfficiency, fy24))
}

func TestAggregate_MeanMode(t *testing.T) {
	src := &fakeSource{}
	src.addCompany("AAA.NS", "Technology", 0.2, 10)
	src.addCompany("BBB.NS", "Technology", 0.4, 20)
	src.addCompany("CCC.NS", "Technology", 0.8, 40)

	r, err := newAggregator(src, func(c *Config) { c.Mode = ModeMean }).Aggregate(context.Background(), "AAA.NS")
	require.NoError(t, err)

	assert.Equal(t, 23.33, value(t, r, ratio.EPS, fy24))
	assert.Equal(t, 0.47, value(t, r, ratio.ProductionEfficiency, fy24))
}

func TestAggregate_ZeroBucketIsReseeded(t *testing.T) {
	src := &fakeSource{}
	src.addCompany("AAA.NS", "Technology", 0.2, 0)
	src.addCompany("BBB.NS", "Technology", 0.2, 8)

	r, err := newAggregator(src, nil).Aggregate(context.Background(), "AAA.NS")
	require.NoError(t, err)
	assert.Equal(t, 8.0, value(t, r, ratio.EPS, fy24))
}

func TestAggregate_PreconditionErrors(t *testing.T) {
	src := &fakeSource{}
	src.addCompany("AAA.NS", "", 0.2, 10)
	src.addCompany("BBB.NS", "Energy", 0.2, 10)
	src.info["CCC.NS"] = &core.BasicInfo{Symbol: "CCC.NS", Sector: "Technology"}
	src.info["ZZZ.NS"] = &core.BasicInfo{Symbol: "ZZZ.NS", Sector: "Utilities"}

	tests := []struct {
		name   string
		symbol string
		want   error
	}{
		{"missing symbol", "", core.ErrMissingSymbol},
		{"unknown company", "NOPE.NS", core.ErrStatementNotFound},
		{"no sector", "AAA.NS", core.ErrNoSector},
		{"no peers", "ZZZ.NS", core.ErrNoPeers},
		{"no periods", "CCC.NS", core.ErrNoData},
	}
	agg := newAggregator(src, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := agg.Aggregate(context.Background(), tt.symbol)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestAggregate_FailedPeerFailsAll(t *testing.T) {
	src := &fakeSource{}
	src.addCompany("AAA.NS", "Technology", 0.2, 10)
	src.addCompany("BBB.NS", "Technology", 0.4, 20)
	delete(src.income, "BBB.NS")

	_, err := newAggregator(src, nil).Aggregate(context.Background(), "AAA.NS")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrStatementNotFound))
	assert.Contains(t, err.Error(), "BBB.NS")
}

func TestAggregate_SkipFailedPeers(t *testing.T) {
	src := &fakeSource{}
	src.addCompany("AAA.NS", "Technology", 0.2, 10)
	src.addCompany("BBB.NS", "Technology", 0.4, 20)
	delete(src.income, "BBB.NS")

	agg := newAggregator(src, func(c *Config) { c.SkipFailedPeers = true })
	r, err := agg.Aggregate(context.Background(), "AAA.NS")
	require.NoError(t, err)

	assert.Equal(t, []string{"AAA.NS"}, r.Peers)
	assert.Equal(t, []string{"BBB.NS"}, r.Skipped)
	assert.Equal(t, 10.0, value(t, r, ratio.EPS, fy24))
}

func TestAggregate_SkipFailedPeersAllFail(t *testing.T) {
	src := &fakeSource{}
	src.addCompany("AAA.NS", "Technology", 0.2, 10)
	delete(src.income, "AAA.NS")

	agg := newAggregator(src, func(c *Config) { c.SkipFailedPeers = true })
	_, err := agg.Aggregate(context.Background(), "AAA.NS")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrComputationFailed))
}

func TestReport_MarshalJSON(t *testing.T) {
	src := &fakeSource{}
	src.addCompany("AAA.NS", "Technology", 0.25, 10)

	r, err := newAggregator(src, nil).Aggregate(context.Background(), "AAA.NS")
	require.NoError(t, err)

	out, err := json.Marshal(r)
	require.NoError(t, err)

	var decoded map[string]map[string]float64
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Len(t, decoded, len(ratio.SectorRatios))
	assert.Equal(t, 10.0, decoded[ratio.EPS][fy24])
}

func TestInWindow(t *testing.T) {
	assert.True(t, InWindow("2023-03-31T00:00:00+00:00", 2026, 4))
	assert.False(t, InWindow("2022-03-31T00:00:00+00:00", 2026, 4))
	assert.True(t, InWindow("2024-03-31", 2026, 4))
	assert.True(t, InWindow("2025", 2026, 4))
	assert.False(t, InWindow("CAGR", 2026, 4))
	assert.False(t, InWindow("Weightage", 2026, 4))
}

func TestRunning_NaNSeedIsReplaced(t *testing.T) {
	a := series(map[string]float64{fy24: math.NaN()})
	b := series(map[string]float64{fy24: 0.3})

	out := running([]*core.TimeSeries{a, b}, 2026, 4)
	v, _ := out.Get(fy24)
	assert.Equal(t, 0.3, v)
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.Mode = "median"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.WindowYears = 0
	assert.Error(t, cfg.Validate())
}
