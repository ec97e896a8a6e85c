package provider

import (
	"fmt"

	"ts-objective/internal/data"
	"ts-objective/internal/geometry"
	"ts-objective/internal/model"
)

// Replay publishes the rows of a pre-computed simulated series one snapshot
// at a time, as if a simulation were stepping through them. Column i of the
// series belongs to geometry i.
type Replay struct {
	geometries []geometry.Geometry
	series     *model.TimeSeries
	published  int
	status     model.Status
}

// NewReplay publishes the first row immediately.
func NewReplay(geometries []geometry.Geometry, series *model.TimeSeries) (*Replay, error) {
	if series == nil || series.NumRows() == 0 {
		return nil, fmt.Errorf("replay series is empty")
	}
	if series.NumColumns() != len(geometries) {
		return nil, fmt.Errorf("replay series has %d columns for %d geometries", series.NumColumns(), len(geometries))
	}
	return &Replay{
		geometries: geometries,
		series:     series,
		published:  1,
		status:     model.StatusUpdated,
	}, nil
}

func (r *Replay) Status() model.Status { return r.status }

func (r *Replay) Geometries() []geometry.Geometry { return r.geometries }

func (r *Replay) TimeCount() int { return r.published }

func (r *Replay) Time(i int) float64 { return r.series.DateTime(i) }

func (r *Replay) Value(timeIndex, geometryIndex int) float64 {
	return r.series.Value(timeIndex, geometryIndex)
}

// UpdateValues publishes rows until the current snapshot reaches queryTime.
// A query past the final row moves the replay to StatusDone.
func (r *Replay) UpdateValues(queryTime float64) {
	if r.status != model.StatusUpdated {
		return
	}
	for r.Time(r.published-1) < queryTime {
		if r.published == r.series.NumRows() {
			r.status = model.StatusDone
			return
		}
		r.published++
	}
}

// Fail stops the replay as a failed simulation would.
func (r *Replay) Fail() { r.status = model.StatusFailed }

// LoadReplay builds a replay from a simulated series file and the geometry
// file describing its columns in order.
func LoadReplay(seriesPath, geometryPath string) (*Replay, error) {
	series, err := data.LoadTimeSeries("simulation", seriesPath)
	if err != nil {
		return nil, fmt.Errorf("load simulated series: %w", err)
	}
	geoms, err := geometry.LoadFile(geometryPath)
	if err != nil {
		return nil, fmt.Errorf("load simulated geometries: %w", err)
	}
	return NewReplay(geoms, series)
}
