package ratio

import (
	"math"
	"strconv"
	"strings"

	"github.com/newthinker/finratio/internal/core"
)

// Score combines every ratio's growth and weight into one percentage:
// the sum of (CAGR/100)*(Weightage/100), times 100. A ratio whose CAGR or
// weight reads as zero or not-a-number contributes nothing, so zero growth
// and missing data are treated alike.
func Score(set *Set) float64 {
	var sum float64
	for _, name := range set.Names() {
		s, _ := set.Get(name)
		cagr := parsePercent(s.CAGR)
		weight := parsePercent(s.Weightage)
		if !core.Truthy(cagr) || !core.Truthy(weight) {
			continue
		}
		sum += (cagr / 100) * (weight / 100)
	}
	return sum * 100
}

// parsePercent reads the numeric prefix before the first '%'. An empty
// prefix reads as 0 and anything unparseable as NaN.
func parsePercent(s string) float64 {
	prefix, _, _ := strings.Cut(s, "%")
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return 0
	}
	v, err := strconv.ParseFloat(prefix, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
