// Package ratio derives named ratio series from statement line items,
// annotates them with compound growth and weights, and scores them.
package ratio

import (
	"math"

	"github.com/newthinker/finratio/internal/core"
)

// Places is the rounding precision of every derived ratio value.
const Places = 3

// FallbackLabels are the periods of the stub returned when an operand
// series is missing altogether.
var FallbackLabels = []string{
	"2023-03-31T00:00:00+00:00",
	"2022-03-31T00:00:00+00:00",
	"2021-03-31T00:00:00+00:00",
}

// Compute divides numerator by denominator for every numerator label.
// A zero, null or absent operand yields 0 for that label.
func Compute(numerator, denominator *core.TimeSeries) *core.TimeSeries {
	return combine(numerator, denominator, func(a, b float64) float64 { return a / b })
}

// Multiply is Compute with a product instead of a quotient.
func Multiply(a, b *core.TimeSeries) *core.TimeSeries {
	return combine(a, b, func(x, y float64) float64 { return x * y })
}

func combine(a, b *core.TimeSeries, op func(x, y float64) float64) *core.TimeSeries {
	out := core.NewTimeSeries()
	for _, p := range a.Points() {
		other, _ := b.Get(p.Label)
		if !core.Truthy(p.Value) || !core.Truthy(other) {
			out.Set(p.Label, 0)
			continue
		}
		out.Set(p.Label, core.Round(op(p.Value, other), Places))
	}
	return out
}

// Degenerate returns the NaN stub over FallbackLabels.
func Degenerate() *core.TimeSeries {
	out := core.NewTimeSeries()
	for _, l := range FallbackLabels {
		out.Set(l, math.NaN())
	}
	return out
}
