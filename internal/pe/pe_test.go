package pe

import (
	"context"
	"errors"
	"math"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/newthinker/finratio/internal/core"
)

type stubPrices struct {
	mu     sync.Mutex
	prices map[string]float64
	err    error
	calls  []time.Time
}

func (s *stubPrices) ClosingPrice(ctx context.Context, symbol string, date time.Time) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, date)
	if s.err != nil {
		return 0, s.err
	}
	p, ok := s.prices[date.Format(time.DateOnly)]
	if !ok {
		return 0, core.WrapError(core.ErrPriceNotFound, errors.New(date.Format(time.DateOnly)))
	}
	return p, nil
}

func TestEnrich(t *testing.T) {
	prices := &stubPrices{prices: map[string]float64{
		"2024-03-28": 3000,
		"2023-03-28": 2500,
		"2022-03-28": 2000,
	}}
	eps := core.NewTimeSeries(
		core.Point{Label: "2024-03-31T00:00:00+00:00", Value: 120},
		core.Point{Label: "2023-03-31T00:00:00+00:00", Value: 75},
		core.Point{Label: "2022-03-31T00:00:00+00:00", Value: 60},
		core.Point{Label: "2021-03-31T00:00:00+00:00", Value: 50},
		core.Point{Label: "2020-03-31T00:00:00+00:00", Value: 40},
	)

	out, err := NewEnricher(prices, nil).Enrich(context.Background(), "TCS.NS", eps)
	if err != nil {
		t.Fatalf("enrich failed: %v", err)
	}

	// Years outside the reference dates are left unset.
	wantLabels := []string{
		"2024-03-31T00:00:00+00:00",
		"2023-03-31T00:00:00+00:00",
		"2022-03-31T00:00:00+00:00",
		"2021-03-31T00:00:00+00:00",
	}
	if got := out.Labels(); !reflect.DeepEqual(got, wantLabels) {
		t.Errorf("expected labels %v, got %v", wantLabels, got)
	}

	if v, _ := out.Get("2024-03-31T00:00:00+00:00"); v != 25 {
		t.Errorf("expected PE 25 for FY24, got %v", v)
	}
	if v, _ := out.Get("2023-03-31T00:00:00+00:00"); v != 33.33 {
		t.Errorf("expected PE 33.33 for FY23, got %v", v)
	}
	if v, _ := out.Get("2021-03-31T00:00:00+00:00"); !math.IsNaN(v) {
		t.Errorf("expected NaN for a missing price, got %v", v)
	}

	if len(prices.calls) != len(ReferenceDates) {
		t.Errorf("expected %d price lookups, got %d", len(ReferenceDates), len(prices.calls))
	}
}

func TestEnrich_ProviderFailure(t *testing.T) {
	prices := &stubPrices{err: core.WrapError(core.ErrProviderFailed, errors.New("boom"))}
	eps := core.NewTimeSeries(core.Point{Label: "2024-03-31T00:00:00+00:00", Value: 1})

	_, err := NewEnricher(prices, nil).Enrich(context.Background(), "TCS.NS", eps)
	if !errors.Is(err, core.ErrProviderFailed) {
		t.Errorf("expected ErrProviderFailed, got %v", err)
	}
}

func TestEnrich_EmptyEPS(t *testing.T) {
	out, err := NewEnricher(&stubPrices{}, nil).Enrich(context.Background(), "TCS.NS", nil)
	if err != nil {
		t.Fatalf("enrich failed: %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("expected empty series, got %d points", out.Len())
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		label string
		want  int
	}{
		{"2024", 0},
		{"FY2021", 3},
		{"2019-03-31", -1},
		// newest year wins
		{"2023-2024", 0},
	}
	for _, tt := range tests {
		if got := match(tt.label); got != tt.want {
			t.Errorf("match(%q) = %d, want %d", tt.label, got, tt.want)
		}
	}
}
