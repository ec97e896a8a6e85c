package model

import (
	"errors"
	"fmt"
	"sort"
)

// TimeSeries is an immutable table of julian-day timestamps with one value
// column per geometry. Rows are kept in non-decreasing time order.
type TimeSeries struct {
	Name    string
	Columns []string

	times  []float64
	values [][]float64
}

// Record is one row used to build a TimeSeries.
type Record struct {
	DateTime float64
	Values   []float64
}

// NewTimeSeries validates the records and stable-sorts them by time, so
// series written out of order are accepted.
func NewTimeSeries(name string, columns []string, records []Record) (*TimeSeries, error) {
	if len(columns) == 0 {
		return nil, errors.New("time series has no value columns")
	}
	sorted := make([]Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].DateTime < sorted[j].DateTime
	})

	ts := &TimeSeries{
		Name:    name,
		Columns: append([]string(nil), columns...),
		times:   make([]float64, len(sorted)),
		values:  make([][]float64, len(sorted)),
	}
	for i, r := range sorted {
		if len(r.Values) != len(columns) {
			return nil, fmt.Errorf("row %d has %d values, want %d", i, len(r.Values), len(columns))
		}
		ts.times[i] = r.DateTime
		ts.values[i] = append([]float64(nil), r.Values...)
	}
	return ts, nil
}

func (ts *TimeSeries) NumRows() int { return len(ts.times) }

func (ts *TimeSeries) NumColumns() int { return len(ts.Columns) }

// DateTime returns the julian day of row i.
func (ts *TimeSeries) DateTime(i int) float64 { return ts.times[i] }

// Value returns the value of row i, column col.
func (ts *TimeSeries) Value(i, col int) float64 { return ts.values[i][col] }
