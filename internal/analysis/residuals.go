package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"ts-objective/internal/objective"
)

// Residuals summarizes the observed/simulated pairs behind one metric value.
// Residuals are simulated minus observed.
type Residuals struct {
	Count int

	MeanObserved  float64
	MeanSimulated float64
	Bias          float64

	MinResidual float64
	MaxResidual float64
	P05Residual float64
	P95Residual float64

	// Correlation is the Pearson correlation of the pairs; NaN with fewer
	// than two pairs or a constant side.
	Correlation float64
}

func Summarize(s objective.Samples) Residuals {
	r := Residuals{Count: s.Len(), Correlation: math.NaN()}
	if r.Count == 0 {
		return r
	}

	res := make([]float64, r.Count)
	for i := range res {
		res[i] = s.Simulated[i] - s.Observed[i]
	}
	r.MeanObserved = stat.Mean(s.Observed, nil)
	r.MeanSimulated = stat.Mean(s.Simulated, nil)
	r.Bias = stat.Mean(res, nil)

	sort.Float64s(res)
	r.MinResidual = res[0]
	r.MaxResidual = res[len(res)-1]
	r.P05Residual = percentileSorted(res, 0.05)
	r.P95Residual = percentileSorted(res, 0.95)

	if r.Count > 1 {
		r.Correlation = stat.Correlation(s.Observed, s.Simulated, nil)
	}
	return r
}

func percentileSorted(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	// Linear interpolation between order stats.
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
