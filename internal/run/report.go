package run

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"ts-objective/internal/objective"
)

// ReportColumn is one matched geometry of one objective in the final report.
type ReportColumn struct {
	Objective     string
	Algorithm     string
	GeometryIndex int
	Samples       int
	Value         float64
}

// BuildReport lists matched results in objective order, then geometry
// order. Unmatched geometries are left out.
func BuildReport(objs []*objective.Objective) []ReportColumn {
	var cols []ReportColumn
	for _, o := range objs {
		for _, r := range o.Output.Results() {
			if !r.Matched {
				continue
			}
			cols = append(cols, ReportColumn{
				Objective:     o.Name,
				Algorithm:     string(o.Algorithm),
				GeometryIndex: r.GeometryIndex,
				Samples:       r.Samples,
				Value:         r.Value,
			})
		}
	}
	return cols
}

// WriteReportCSV writes a header with the objective name of every column and
// a single row with the metric values.
func WriteReportCSV(path string, cols []ReportColumn) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encodeReport(f, cols); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func encodeReport(w io.Writer, cols []ReportColumn) error {
	if len(cols) == 0 {
		return nil
	}

	header := make([]string, len(cols))
	row := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.Objective
		row[i] = fmtFloat(c.Value)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.Write(row); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// ReadReportCSV reads back a report written by WriteReportCSV. Objective
// and Value are the only fields populated.
func ReadReportCSV(path string) ([]ReportColumn, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	if len(rows) != 2 {
		return nil, fmt.Errorf("report %s: expected header and one row, got %d rows", path, len(rows))
	}

	cols := make([]ReportColumn, len(rows[0]))
	for i, name := range rows[0] {
		v, err := strconv.ParseFloat(rows[1][i], 64)
		if err != nil {
			return nil, fmt.Errorf("report %s column %d: %w", path, i, err)
		}
		cols[i] = ReportColumn{Objective: name, Value: v}
	}
	return cols, nil
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'g', 10, 64)
}
