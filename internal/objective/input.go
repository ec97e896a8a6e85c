package objective

import (
	"ts-objective/internal/geometry"
	"ts-objective/internal/model"
	"ts-objective/internal/provider"
)

// Input is the observed side of an objective: it owns the cursor and the
// simulated values sampled at each observed timestamp.
type Input struct {
	geometries []geometry.Geometry
	series     *model.TimeSeries
	cursor     *Cursor

	provider provider.Provider
	mapping  geometry.Mapping

	// times[i] is the i-th recorded timestamp; values[i][g] the simulated
	// value for local geometry g at that time.
	times  []float64
	values [][]float64
}

func NewInput(series *model.TimeSeries, geometries []geometry.Geometry) *Input {
	return &Input{
		geometries: geometries,
		series:     series,
		cursor:     NewCursor(series),
		mapping:    geometry.Mapping{},
	}
}

// Initialize seeds the cursor and records the first observed timestamp.
func (in *Input) Initialize(h model.Horizon) error {
	in.times = nil
	in.values = nil
	if err := in.cursor.Seed(h); err != nil {
		return err
	}
	in.addTime(in.cursor.CurrentDateTime())
	return nil
}

// SetProvider binds p and rebuilds the geometry mapping. A nil provider
// unbinds.
func (in *Input) SetProvider(p provider.Provider) {
	in.provider = p
	in.mapping = geometry.Mapping{}
	if p == nil {
		return
	}
	in.mapping = geometry.Match(in.geometries, p.Geometries())
}

// RetrieveValuesFromProvider asks the provider for values at the cursor time
// and samples them. It does nothing once the cursor is exhausted or while the
// provider is not in a successfully updated state.
func (in *Input) RetrieveValuesFromProvider() {
	if in.provider == nil || in.cursor.Exhausted() {
		return
	}
	if in.provider.Status() != model.StatusUpdated {
		return
	}
	if t := in.cursor.CurrentDateTime(); t != in.times[len(in.times)-1] {
		in.addTime(t)
	}
	in.provider.UpdateValues(in.cursor.CurrentDateTime())
	in.ApplyData()
}

// ApplyData writes the provider's values, interpolated to the cursor time
// where possible, into the last recorded timestamp.
func (in *Input) ApplyData() {
	p := in.provider
	if p == nil || p.TimeCount() == 0 || len(in.times) == 0 {
		return
	}
	cur := p.TimeCount() - 1
	prev := cur - 1
	if prev < 0 {
		prev = 0
	}
	t := in.cursor.CurrentDateTime()
	row := in.values[len(in.values)-1]

	for _, local := range in.mapping.Local() {
		remote := in.mapping[local]
		row[local] = Sample(
			p.Time(prev), p.Value(prev, remote),
			p.Time(cur), p.Value(cur, remote),
			t,
		)
	}
}

// Sample returns the value at t between a previous and a current snapshot.
// Inside [prevTime, curTime] it interpolates linearly (falling back to the
// previous value when no time elapsed); outside it returns the current value.
func Sample(prevTime, prevValue, curTime, curValue, t float64) float64 {
	if t < prevTime || t > curTime {
		return curValue
	}
	factor := 0.0
	if curTime > prevTime {
		factor = (t - prevTime) / (curTime - prevTime)
	}
	return prevValue + factor*(curValue-prevValue)
}

// MoveToNextDateTime advances the cursor using the provider's last status.
func (in *Input) MoveToNextDateTime() {
	status := model.StatusFailed
	if in.provider != nil {
		status = in.provider.Status()
	}
	in.cursor.Advance(status)
}

func (in *Input) addTime(t float64) {
	in.times = append(in.times, t)
	in.values = append(in.values, make([]float64, len(in.geometries)))
}

func (in *Input) Cursor() *Cursor { return in.cursor }

func (in *Input) Series() *model.TimeSeries { return in.series }

func (in *Input) Geometries() []geometry.Geometry { return in.geometries }

func (in *Input) Mapping() geometry.Mapping { return in.mapping }

func (in *Input) Provider() provider.Provider { return in.provider }

// TimeCount is the number of recorded simulated timestamps.
func (in *Input) TimeCount() int { return len(in.times) }

func (in *Input) Time(i int) float64 { return in.times[i] }

func (in *Input) Value(i, g int) float64 { return in.values[i][g] }
