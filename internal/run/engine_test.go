package run

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ts-objective/internal/config"
	"ts-objective/internal/geometry"
	"ts-objective/internal/model"
	"ts-objective/internal/objective"
	"ts-objective/internal/provider"
)

const fixtureInput = `[OPTIONS]
START_DATETIME 2015-06-01 00:00:00
END_DATETIME   2015-06-03 00:00:00

[OBJECTIVES]
flow RMSE flow.csv

[OBJECTIVE_GEOMETRIES]
;; the second reach is not simulated
flow WKT LINESTRING (0 0, 1 0)
flow WKT LINESTRING (9 9, 8 8)
`

const fixtureSeries = `DateTime,reach,other
2015-06-01 00:00:00,1,10
2015-06-02 00:00:00,2,20
2015-06-03 00:00:00,3,30
`

var simReach = geometry.FromLineString(orb.LineString{{0, 0}, {1, 0}})

func writeFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "run.inp"), []byte(fixtureInput), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "flow.csv"), []byte(fixtureSeries), 0o644))
	return dir
}

func julian(t *testing.T, s string) float64 {
	t.Helper()
	tm, err := model.ParseDateTime(s)
	require.NoError(t, err)
	return model.ToJulianDay(tm)
}

// simulated returns a replay over simReach with values 1, 2, 4.
func simulated(t *testing.T) *provider.Replay {
	t.Helper()
	records := []model.Record{
		{DateTime: julian(t, "2015-06-01 00:00:00"), Values: []float64{1}},
		{DateTime: julian(t, "2015-06-02 00:00:00"), Values: []float64{2}},
		{DateTime: julian(t, "2015-06-03 00:00:00"), Values: []float64{4}},
	}
	series, err := model.NewTimeSeries("sim", []string{"reach"}, records)
	require.NoError(t, err)
	r, err := provider.NewReplay([]geometry.Geometry{simReach}, series)
	require.NoError(t, err)
	return r
}

func TestEngineRunWritesReport(t *testing.T) {
	t.Parallel()

	dir := writeFixture(t)
	out := filepath.Join(dir, "metrics.csv")

	e := New(Options{InputFile: filepath.Join(dir, "run.inp"), OutputCSV: out})
	require.NoError(t, e.Initialize())
	assert.Equal(t, model.StatusInitialized, e.Status())
	require.NoError(t, e.BindAll(simulated(t)))

	require.NoError(t, e.Run(context.Background()))
	assert.Equal(t, model.StatusDone, e.Status())
	assert.Equal(t, "Simulation finished successfully", e.Message())
	assert.Equal(t, 100.0, e.Progress())
	assert.Equal(t, 3, e.Steps())

	report := e.Report()
	require.Len(t, report, 1)
	assert.Equal(t, "flow", report[0].Objective)
	assert.Equal(t, 0, report[0].GeometryIndex)
	assert.Equal(t, 3, report[0].Samples)
	assert.InDelta(t, 0.5774, report[0].Value, 1e-4)

	cols, err := ReadReportCSV(out)
	require.NoError(t, err)
	require.Len(t, cols, 1)
	assert.Equal(t, "flow", cols[0].Objective)
	assert.InDelta(t, 0.5774, cols[0].Value, 1e-4)

	results := e.Objective("flow").Output.Results()
	require.Len(t, results, 2)
	assert.False(t, results[1].Matched)
}

func TestEngineStepByStep(t *testing.T) {
	t.Parallel()

	dir := writeFixture(t)
	e := New(Options{InputFile: filepath.Join(dir, "run.inp")})
	require.NoError(t, e.Initialize())
	require.NoError(t, e.BindAll(simulated(t)))
	require.NoError(t, e.Prepare())

	status, _, progress := e.Update()
	assert.Equal(t, model.StatusUpdated, status)
	assert.Equal(t, 0.0, progress)
	assert.Equal(t, julian(t, "2015-06-01 00:00:00"), e.Clock())

	status, msg, progress := e.Update()
	assert.Equal(t, model.StatusUpdated, status)
	assert.Equal(t, 50.0, progress)
	assert.Contains(t, msg, "Simulation performed time-step")

	status, _, progress = e.Update()
	assert.Equal(t, model.StatusDone, status)
	assert.Equal(t, 100.0, progress)

	// Further updates are no-ops.
	status, _, _ = e.Update()
	assert.Equal(t, model.StatusDone, status)
	assert.Equal(t, 3, e.Steps())

	e.Finish()
	assert.Equal(t, model.StatusCreated, e.Status())
	assert.Nil(t, e.Objective("flow").Input.Provider())
}

func TestEngineHorizonCompleteAtSeed(t *testing.T) {
	t.Parallel()

	observed, err := model.NewTimeSeries("obs", []string{"reach"}, []model.Record{
		{DateTime: 1, Values: []float64{5}},
	})
	require.NoError(t, err)
	o, err := objective.New("flow", model.AlgorithmRMSE, observed, []geometry.Geometry{simReach})
	require.NoError(t, err)

	sim, err := model.NewTimeSeries("sim", []string{"reach"}, []model.Record{
		{DateTime: 0, Values: []float64{5}},
		{DateTime: 1, Values: []float64{5}},
	})
	require.NoError(t, err)
	replay, err := provider.NewReplay([]geometry.Geometry{simReach}, sim)
	require.NoError(t, err)

	e := New(Options{})
	require.NoError(t, e.InitializeObjectives(model.Horizon{Start: 0, Duration: 1}, []*objective.Objective{o}))
	require.NoError(t, e.BindAll(replay))
	require.NoError(t, e.Prepare())
	assert.Nil(t, o.Output.Results())

	status, _, _ := e.Update()
	require.Equal(t, model.StatusDone, status)

	report := e.Report()
	require.Len(t, report, 1)
	assert.Equal(t, 1, report[0].Samples)
	assert.Equal(t, 0.0, report[0].Value)
}

func TestEngineInitializeErrors(t *testing.T) {
	t.Parallel()

	t.Run("missing output directory", func(t *testing.T) {
		dir := writeFixture(t)
		e := New(Options{
			InputFile: filepath.Join(dir, "run.inp"),
			OutputCSV: filepath.Join(dir, "missing", "metrics.csv"),
		})
		err := e.Initialize()
		require.Error(t, err)
		assert.True(t, errors.Is(err, config.ErrConfiguration))
		assert.Equal(t, model.StatusFailed, e.Status())
		assert.Contains(t, e.Message(), "output directory does not exist")
	})

	t.Run("missing input file", func(t *testing.T) {
		e := New(Options{InputFile: filepath.Join(t.TempDir(), "nope.inp")})
		err := e.Initialize()
		assert.True(t, errors.Is(err, config.ErrConfiguration))
		assert.Equal(t, model.StatusFailed, e.Status())
	})

	t.Run("empty horizon", func(t *testing.T) {
		series, err := model.NewTimeSeries("obs", []string{"reach"}, []model.Record{
			{DateTime: 1, Values: []float64{1}},
			{DateTime: 2, Values: []float64{2}},
		})
		require.NoError(t, err)
		o, err := objective.New("flow", model.AlgorithmMAE, series, []geometry.Geometry{simReach})
		require.NoError(t, err)

		e := New(Options{})
		err = e.InitializeObjectives(model.Horizon{Start: 5, Duration: 1}, []*objective.Objective{o})
		assert.True(t, errors.Is(err, config.ErrConfiguration))
		assert.True(t, errors.Is(err, objective.ErrEmptyHorizon))
	})
}

func TestEngineBindRejectsPoints(t *testing.T) {
	t.Parallel()

	dir := writeFixture(t)
	e := New(Options{InputFile: filepath.Join(dir, "run.inp")})
	require.NoError(t, e.Initialize())

	series, err := model.NewTimeSeries("sim", []string{"gauge"}, []model.Record{{DateTime: 0, Values: []float64{1}}})
	require.NoError(t, err)
	points, err := provider.NewReplay([]geometry.Geometry{geometry.FromPoint(orb.Point{0, 0})}, series)
	require.NoError(t, err)

	err = e.Bind("flow", points)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Provider must be a LineString")

	assert.Error(t, e.Bind("stage", simulated(t)))
}

func TestEngineUnboundObjective(t *testing.T) {
	t.Parallel()

	dir := writeFixture(t)
	e := New(Options{InputFile: filepath.Join(dir, "run.inp")})
	require.NoError(t, e.Initialize())

	require.NoError(t, e.Run(context.Background()))
	assert.Equal(t, model.StatusDone, e.Status())
	assert.Empty(t, e.Report())
	assert.True(t, e.Objective("flow").Input.Cursor().Exhausted())
}

func TestEngineRunGuards(t *testing.T) {
	t.Parallel()

	t.Run("not initialized", func(t *testing.T) {
		e := New(Options{})
		assert.ErrorIs(t, e.Prepare(), ErrNotInitialized)
		assert.ErrorIs(t, e.Run(context.Background()), ErrNotInitialized)
	})

	t.Run("cancelled", func(t *testing.T) {
		dir := writeFixture(t)
		e := New(Options{InputFile: filepath.Join(dir, "run.inp")})
		require.NoError(t, e.Initialize())
		require.NoError(t, e.BindAll(simulated(t)))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.ErrorIs(t, e.Run(ctx), context.Canceled)
		assert.Equal(t, 0, e.Steps())
	})

	t.Run("max steps", func(t *testing.T) {
		dir := writeFixture(t)
		e := New(Options{InputFile: filepath.Join(dir, "run.inp"), MaxSteps: 1})
		require.NoError(t, e.Initialize())
		require.NoError(t, e.BindAll(simulated(t)))

		err := e.Run(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exceeded 1 steps")
		assert.Equal(t, model.StatusFailed, e.Status())
	})
}
