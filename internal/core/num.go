package core

import (
	"encoding/json"
	"math"

	"github.com/shopspring/decimal"
)

// IsDegenerate reports whether v is NaN or infinite. Such values are never
// errors; callers treat them as "not computable".
func IsDegenerate(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}

// Truthy reports whether v counts as present: zero and NaN do not.
func Truthy(v float64) bool {
	return v != 0 && !math.IsNaN(v)
}

// Round rounds v to the given decimal places, half away from zero.
// Rounding works on the shortest decimal that reads back as v, so
// 2.001/2 (printed 1.0005) rounds up to 1.001 even though its binary
// value sits just below the tie. Non-finite values pass through unchanged.
func Round(v float64, places int32) float64 {
	if IsDegenerate(v) {
		return v
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// FormatFixed renders v rounded to places with trailing zeros dropped, so
// 25.000 prints as "25". Non-finite values print as NaN, Infinity or
// -Infinity.
func FormatFixed(v float64, places int32) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	}
	return decimal.NewFromFloat(v).Round(places).String()
}

// Pow is math.Pow except that a NaN exponent, or an infinite exponent on a
// base of magnitude one, yields NaN. A one-period growth series raises its
// ratio to 1/0 and must come out as NaN rather than 1.
func Pow(x, y float64) float64 {
	if math.IsNaN(y) {
		return math.NaN()
	}
	if math.IsInf(y, 0) && math.Abs(x) == 1 {
		return math.NaN()
	}
	return math.Pow(x, y)
}

// Float is a float64 that encodes NaN and ±Inf as JSON null.
type Float float64

// MarshalJSON implements json.Marshaler.
func (f Float) MarshalJSON() ([]byte, error) {
	if IsDegenerate(float64(f)) {
		return []byte("null"), nil
	}
	return json.Marshal(float64(f))
}
