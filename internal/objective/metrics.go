package objective

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"ts-objective/internal/model"
)

// WorstScore replaces any NaN or infinite metric.
const WorstScore = math.MaxFloat64

// Reduce computes alg over paired observed and simulated samples.
// obs and sim must have equal length.
func Reduce(alg model.Algorithm, obs, sim []float64) (float64, error) {
	if len(obs) != len(sim) {
		return 0, fmt.Errorf("sample length mismatch: %d observed, %d simulated", len(obs), len(sim))
	}
	switch alg {
	case model.AlgorithmNashSutcliff:
		return NashSutcliff(obs, sim), nil
	case model.AlgorithmRMSE:
		return RMSE(obs, sim), nil
	case model.AlgorithmMAE:
		return MAE(obs, sim), nil
	default:
		return 0, fmt.Errorf("unknown algorithm %q", alg)
	}
}

// NashSutcliff returns Σ(o-s)² / Σ(o-ō)², i.e. one minus the Nash-Sutcliffe
// efficiency, so that lower is better like the other metrics.
func NashSutcliff(obs, sim []float64) float64 {
	mean := stat.Mean(obs, nil)
	var numer, denom float64
	for i := range obs {
		d := obs[i] - sim[i]
		m := obs[i] - mean
		numer += d * d
		denom += m * m
	}
	return clamp(numer / denom)
}

// RMSE returns sqrt(Σ(o-s)² / n).
func RMSE(obs, sim []float64) float64 {
	n := float64(len(obs))
	sumSq := squaredDistance(obs, sim)
	return clamp(math.Sqrt(sumSq / n))
}

// MAE returns sqrt(Σ|o-s| / n). Note the square root.
func MAE(obs, sim []float64) float64 {
	n := float64(len(obs))
	sumAbs := 0.0
	if len(obs) > 0 {
		sumAbs = floats.Distance(obs, sim, 1)
	}
	return clamp(math.Sqrt(sumAbs / n))
}

func squaredDistance(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return s
}

func clamp(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return WorstScore
	}
	return x
}
