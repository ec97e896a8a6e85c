package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Run is the set of metric values one evaluation produced, one per matched
// geometry.
type Run struct {
	Name   string
	Values []float64
}

type RankedRun struct {
	Rank    int
	Name    string
	Score   float64
	Columns int
}

// RankRuns orders runs by their mean metric value, lowest first. Every
// supported metric is an error measure, so lower is better. Runs without
// values score math.MaxFloat64.
func RankRuns(runs []Run) []RankedRun {
	out := make([]RankedRun, 0, len(runs))
	for _, r := range runs {
		score := math.MaxFloat64
		if len(r.Values) > 0 {
			score = stat.Mean(r.Values, nil)
			if math.IsNaN(score) || math.IsInf(score, 0) {
				score = math.MaxFloat64
			}
		}
		out = append(out, RankedRun{Name: r.Name, Score: score, Columns: len(r.Values)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score < out[j].Score
		}
		return out[i].Name < out[j].Name
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}
