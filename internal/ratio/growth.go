package ratio

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/newthinker/finratio/internal/core"
)

// DegenerateCAGR is the growth string attached to a stub series.
const DegenerateCAGR = "NAN %"

// Series is a ratio time series decorated with its growth and weight.
type Series struct {
	Values    *core.TimeSeries
	CAGR      string
	Weightage string
}

// MarshalJSON writes the period values followed by CAGR and Weightage.
func (s Series) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for _, p := range s.Values.Points() {
		if err := core.WriteField(&buf, p.Label, p.Value); err != nil {
			return nil, err
		}
		buf.WriteByte(',')
	}
	cagr, _ := json.Marshal(s.CAGR)
	weight, _ := json.Marshal(s.Weightage)
	buf.WriteString(`"CAGR":`)
	buf.Write(cagr)
	buf.WriteString(`,"Weightage":`)
	buf.Write(weight)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Annotate attaches the compound growth rate and weight to values.
func Annotate(values *core.TimeSeries, weight string) Series {
	if values == nil {
		values = core.NewTimeSeries()
	}
	return Series{
		Values:    values,
		CAGR:      FormatCAGR(CAGR(values)),
		Weightage: weight,
	}
}

// DegenerateSeries is the stub used when an operand is missing entirely.
func DegenerateSeries(weight string) Series {
	return Series{Values: Degenerate(), CAGR: DegenerateCAGR, Weightage: weight}
}

// CAGR returns the compound annual growth, in percent, between the first
// and last labels after SortLabels. A single-period series yields NaN or
// ±Inf.
func CAGR(values *core.TimeSeries) float64 {
	labels := SortLabels(values.Labels())
	n := len(labels)
	if n == 0 {
		return math.NaN()
	}
	latest, _ := values.Get(labels[0])
	first, _ := values.Get(labels[n-1])
	return (core.Pow(latest/first, 1/float64(n-1)) - 1) * 100
}

// FormatCAGR renders a growth percentage with three decimals and a % sign.
func FormatCAGR(v float64) string {
	return core.FormatFixed(v, Places) + "%"
}

// SortLabels orders labels by numeric coercion, higher values first. Labels
// that do not read as plain numbers (ISO timestamps among them) compare as
// equal, so they keep the producer's most-recent-first order. This is not a
// calendar sort.
func SortLabels(labels []string) []string {
	out := make([]string, len(labels))
	copy(out, labels)
	sort.SliceStable(out, func(i, j int) bool {
		a, okA := coerce(out[i])
		b, okB := coerce(out[j])
		if !okA || !okB {
			return false
		}
		return a > b
	})
	return out
}

func coerce(label string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(label), 64)
	if err != nil || core.IsDegenerate(v) {
		return 0, false
	}
	return v, true
}
