package ratio

import (
	"math"
	"reflect"
	"testing"

	"github.com/newthinker/finratio/internal/core"
)

const (
	fy24 = "2024-03-31T00:00:00+00:00"
	fy23 = "2023-03-31T00:00:00+00:00"
	fy22 = "2022-03-31T00:00:00+00:00"
)

func series(points ...core.Point) *core.TimeSeries {
	return core.NewTimeSeries(points...)
}

// valueAt fails the test when label is absent.
func valueAt(t *testing.T, s *core.TimeSeries, label string) float64 {
	t.Helper()
	v, ok := s.Get(label)
	if !ok {
		t.Fatalf("label %s missing from %v", label, s.Labels())
	}
	return v
}

func TestCompute_RoundsToThreePlaces(t *testing.T) {
	num := series(core.Point{Label: fy24, Value: 1}, core.Point{Label: fy23, Value: 2})
	den := series(core.Point{Label: fy24, Value: 3}, core.Point{Label: fy23, Value: 8})

	out := Compute(num, den)

	if got := out.Labels(); !reflect.DeepEqual(got, []string{fy24, fy23}) {
		t.Errorf("expected numerator label order, got %v", got)
	}
	if v := valueAt(t, out, fy24); v != 0.333 {
		t.Errorf("expected 0.333, got %v", v)
	}
	if v := valueAt(t, out, fy23); v != 0.25 {
		t.Errorf("expected 0.25, got %v", v)
	}
}

func TestCompute_ZeroOrMissingOperandYieldsZero(t *testing.T) {
	tests := []struct {
		name string
		num  float64
		den  *core.TimeSeries
	}{
		{"zero numerator", 0, series(core.Point{Label: fy24, Value: 5})},
		{"null numerator", math.NaN(), series(core.Point{Label: fy24, Value: 5})},
		{"zero denominator", 5, series(core.Point{Label: fy24, Value: 0})},
		{"null denominator", 5, series(core.Point{Label: fy24, Value: math.NaN()})},
		{"label absent from denominator", 5, series(core.Point{Label: fy23, Value: 5})},
		{"denominator series missing", 5, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Compute(series(core.Point{Label: fy24, Value: tt.num}), tt.den)
			if v := valueAt(t, out, fy24); v != 0 {
				t.Errorf("expected 0, got %v", v)
			}
		})
	}
}

func TestCompute_NegativeValuesAreKept(t *testing.T) {
	out := Compute(series(core.Point{Label: fy24, Value: -50}), series(core.Point{Label: fy24, Value: 200}))
	if v := valueAt(t, out, fy24); v != -0.25 {
		t.Errorf("expected -0.25, got %v", v)
	}
}

func TestMultiply(t *testing.T) {
	a := series(core.Point{Label: fy24, Value: 0.2}, core.Point{Label: fy23, Value: 0})
	b := series(core.Point{Label: fy24, Value: 0.9}, core.Point{Label: fy23, Value: 0.5})

	out := Multiply(a, b)
	if v := valueAt(t, out, fy24); v != 0.18 {
		t.Errorf("expected 0.18, got %v", v)
	}
	if v := valueAt(t, out, fy23); v != 0 {
		t.Errorf("expected 0, got %v", v)
	}
}

func TestDegenerate(t *testing.T) {
	out := Degenerate()
	if !reflect.DeepEqual(out.Labels(), FallbackLabels) {
		t.Errorf("expected fallback labels, got %v", out.Labels())
	}
	for _, p := range out.Points() {
		if !math.IsNaN(p.Value) {
			t.Errorf("expected NaN at %s, got %v", p.Label, p.Value)
		}
	}
}
