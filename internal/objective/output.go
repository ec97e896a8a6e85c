package objective

import (
	"ts-objective/internal/model"
)

// Samples holds the observed/simulated pairs collected for one geometry.
type Samples struct {
	Times     []float64
	Observed  []float64
	Simulated []float64
}

func (s Samples) Len() int { return len(s.Observed) }

// Result is the final metric for one geometry.
type Result struct {
	GeometryIndex int
	// Matched is false when the geometry had no provider counterpart; Value
	// is then meaningless.
	Matched bool
	Value   float64
	Samples int
}

// Output is the metric side of an objective. Its results are computed once,
// the first time UpdateValues runs after the cursor completes the horizon.
type Output struct {
	algorithm model.Algorithm
	input     *Input
	horizon   model.Horizon

	done    bool
	samples []Samples
	results []Result
}

func NewOutput(alg model.Algorithm, in *Input) *Output {
	return &Output{algorithm: alg, input: in}
}

// Reset clears previous results and remembers the horizon used as the guard.
func (o *Output) Reset(h model.Horizon) {
	o.horizon = h
	o.done = false
	o.samples = nil
	o.results = nil
}

// UpdateValues reduces the recorded samples once the horizon is complete.
// It reports whether results were produced by this call.
func (o *Output) UpdateValues() (bool, error) {
	if o.done || !o.horizon.Complete(o.input.Cursor().CurrentDateTime()) {
		return false, nil
	}

	n := len(o.input.Geometries())
	samples := make([]Samples, n)
	results := make([]Result, n)
	mapping := o.input.Mapping()

	for g := 0; g < n; g++ {
		results[g] = Result{GeometryIndex: g}
		if !mapping.Has(g) {
			continue
		}
		samples[g] = o.collect(g)
		v, err := Reduce(o.algorithm, samples[g].Observed, samples[g].Simulated)
		if err != nil {
			return false, err
		}
		results[g].Matched = true
		results[g].Value = v
		results[g].Samples = samples[g].Len()
	}

	o.samples = samples
	o.results = results
	o.done = true
	return true, nil
}

// collect walks the recorded simulated timestamps alongside the observed
// records from the cursor start and keeps the exact-time matches.
func (o *Output) collect(g int) Samples {
	in := o.input
	series := in.Series()
	start := in.Cursor().StartIndex()

	var s Samples
	for i := 0; i < in.TimeCount(); i++ {
		idx := start + i
		if idx >= series.NumRows() {
			break
		}
		obsTime := series.DateTime(idx)
		if obsTime != in.Time(i) {
			continue
		}
		s.Times = append(s.Times, obsTime)
		s.Observed = append(s.Observed, series.Value(idx, g))
		s.Simulated = append(s.Simulated, in.Value(i, g))
	}
	return s
}

func (o *Output) Algorithm() model.Algorithm { return o.algorithm }

func (o *Output) Done() bool { return o.done }

// Results returns nil until the horizon has completed.
func (o *Output) Results() []Result { return o.results }

// Samples returns the pairs behind result g.
func (o *Output) Samples(g int) Samples {
	if g < 0 || g >= len(o.samples) {
		return Samples{}
	}
	return o.samples[g]
}
