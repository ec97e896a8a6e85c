package config

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ts-objective/internal/geometry"
	"ts-objective/internal/model"
)

const validInput = `
;; horizon
[OPTIONS]
START_DATETIME 2015-06-01 00:00:00
END_DATETIME, 2015-06-03 00:00:00

[OBJECTIVES]
;; name  algorithm  series
flow     rmse       flow.csv
stage    NASH_SUTCLIFF stage.csv

[OBJECTIVE_GEOMETRIES]
flow, WKT, LINESTRING (0 0, 1 1)
flow  WKT  LINESTRING (2 2, 3 3)
stage SHAPEFILE reaches.shp
`

func TestParseInputFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "flow.csv", "")
	writeFile(t, dir, "stage.csv", "")

	in, err := ParseInputFile(strings.NewReader(validInput), dir)
	require.NoError(t, err)

	start, err := model.ParseDateTime("2015-06-01 00:00:00")
	require.NoError(t, err)
	assert.Equal(t, model.ToJulianDay(start), in.Start)
	assert.InDelta(t, 2.0, in.Horizon().Duration, 1e-9)

	require.Len(t, in.Objectives, 2)
	assert.Equal(t, ObjectiveSpec{Name: "flow", Algorithm: model.AlgorithmRMSE, SeriesPath: filepath.Join(dir, "flow.csv")}, in.Objectives[0])
	assert.Equal(t, model.AlgorithmNashSutcliff, in.Objectives[1].Algorithm)

	flow := in.GeometriesFor("flow")
	require.Len(t, flow, 2)
	assert.Equal(t, geometry.SourceWKT, flow[0].Kind)
	assert.Equal(t, "LINESTRING (0 0, 1 1)", flow[0].Source)

	stage := in.GeometriesFor("stage")
	require.Len(t, stage, 1)
	assert.Equal(t, filepath.Join(dir, "reaches.shp"), stage[0].Source)
}

func TestParseInputFileErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "flow.csv", "")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "bad date time",
			input: "[OPTIONS]\nSTART_DATETIME 2015-13-45 00:00:00\n",
			want:  "error reading date time",
		},
		{
			name: "unknown algorithm",
			input: "[OPTIONS]\nSTART_DATETIME 2015-06-01 00:00:00\nEND_DATETIME 2015-06-02 00:00:00\n" +
				"[OBJECTIVES]\nflow KGE flow.csv\n",
			want: "wrong algorithm specification",
		},
		{
			name: "missing series",
			input: "[OPTIONS]\nSTART_DATETIME 2015-06-01 00:00:00\nEND_DATETIME 2015-06-02 00:00:00\n" +
				"[OBJECTIVES]\nflow RMSE nope.csv\n",
			want: "time series file does not exist",
		},
		{
			name: "missing geometry source",
			input: "[OPTIONS]\nSTART_DATETIME 2015-06-01 00:00:00\nEND_DATETIME 2015-06-02 00:00:00\n" +
				"[OBJECTIVES]\nflow RMSE flow.csv\n",
			want: "has no geometry source",
		},
		{
			name: "geometry row too short",
			input: "[OPTIONS]\nSTART_DATETIME 2015-06-01 00:00:00\nEND_DATETIME 2015-06-02 00:00:00\n" +
				"[OBJECTIVES]\nflow RMSE flow.csv\n[OBJECTIVE_GEOMETRIES]\nflow WKT\n",
			want: "expected 3 arguments",
		},
		{
			name:  "start after end",
			input: "[OPTIONS]\nSTART_DATETIME 2015-06-05 00:00:00\nEND_DATETIME 2015-06-02 00:00:00\n",
			want:  "start date time is after end date time",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseInputFile(strings.NewReader(tt.input), dir)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfiguration)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadInputFileMissing(t *testing.T) {
	t.Parallel()

	_, err := LoadInputFile(filepath.Join(t.TempDir(), "missing.inp"))
	assert.ErrorIs(t, err, ErrConfiguration)
}
