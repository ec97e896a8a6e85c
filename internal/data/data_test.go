package data

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadTimeSeriesCSV(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
	}{
		{
			name: "comma with dates",
			text: "DateTime, upper, lower\n# comment\n2015-06-01 06:00:00, 1.5, 2\n2015-06-01 00:00:00, 1, 3\n",
		},
		{
			name: "tab with julian days",
			text: "DateTime\tupper\tlower\n2457174.75\t1.5\t2\n2457174.5\t1\t3\n",
		},
		{
			name: "semicolon",
			text: "DateTime;upper;lower\n2015-06-01 06:00:00;1.5;2\n\n2015-06-01 00:00:00;1;3\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, err := ReadTimeSeriesCSV("obs", strings.NewReader(tt.text))
			require.NoError(t, err)
			assert.Equal(t, []string{"upper", "lower"}, ts.Columns)
			require.Equal(t, 2, ts.NumRows())
			assert.Equal(t, 2457174.5, ts.DateTime(0))
			assert.Equal(t, 2457174.75, ts.DateTime(1))
			assert.Equal(t, 3.0, ts.Value(0, 1))
			assert.Equal(t, 1.5, ts.Value(1, 0))
		})
	}
}

func TestReadTimeSeriesCSVErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want string
	}{
		{"empty", "", "is empty"},
		{"no value column", "DateTime\n2457174.5\n", "at least one value column"},
		{"short row", "DateTime,a,b\n2457174.5,1\n", "line 2: got 2 fields, want 3"},
		{"bad value", "DateTime,a\n2457174.5,abc\n", `column "a"`},
		{"bad time", "DateTime,a\nsoon,1\n", "unrecognized date time"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadTimeSeriesCSV("obs", strings.NewReader(tt.text))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadTimeSeriesByExtension(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "obs.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{
		"columns": ["reach"],
		"records": [
			{"date_time": "2015-06-02 00:00:00", "values": [2]},
			{"date_time": "2457174.5", "values": [1]}
		]
	}`), 0o644))

	ts, err := LoadTimeSeries("obs", jsonPath)
	require.NoError(t, err)
	require.Equal(t, 2, ts.NumRows())
	assert.Equal(t, 2457174.5, ts.DateTime(0))
	assert.Equal(t, 2.0, ts.Value(1, 0))

	csvPath := filepath.Join(dir, "obs.txt")
	require.NoError(t, os.WriteFile(csvPath, []byte("DateTime,reach\n2457174.5,1\n"), 0o644))
	ts, err = LoadTimeSeries("obs", csvPath)
	require.NoError(t, err)
	assert.Equal(t, 1, ts.NumRows())

	_, err = LoadTimeSeries("obs", filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}
