// Package objective compares an observed time series with the values a
// simulation publishes for the same features.
//
// An Objective pairs an Input, which follows the observed timestamps and
// samples the provider at each of them, with an Output, which reduces the
// collected pairs to one score per geometry when the horizon ends.
package objective

import (
	"fmt"

	"ts-objective/internal/geometry"
	"ts-objective/internal/model"
	"ts-objective/internal/provider"
)

type Objective struct {
	Name      string
	Algorithm model.Algorithm

	Input  *Input
	Output *Output
}

// New checks that the series has one value column per geometry.
func New(name string, alg model.Algorithm, series *model.TimeSeries, geometries []geometry.Geometry) (*Objective, error) {
	if len(geometries) == 0 {
		return nil, fmt.Errorf("objective %q has no geometries", name)
	}
	if series.NumColumns() < len(geometries) {
		return nil, fmt.Errorf("objective %q: series has %d value columns for %d geometries",
			name, series.NumColumns(), len(geometries))
	}
	in := NewInput(series, geometries)
	return &Objective{
		Name:      name,
		Algorithm: alg,
		Input:     in,
		Output:    NewOutput(alg, in),
	}, nil
}

// Initialize seeds the cursor for h and clears earlier results.
func (o *Objective) Initialize(h model.Horizon) error {
	o.Output.Reset(h)
	if err := o.Input.Initialize(h); err != nil {
		return fmt.Errorf("objective %q: %w", o.Name, err)
	}
	return nil
}

func (o *Objective) SetProvider(p provider.Provider) { o.Input.SetProvider(p) }

func (o *Objective) CurrentDateTime() float64 { return o.Input.Cursor().CurrentDateTime() }
