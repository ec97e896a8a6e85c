package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"ts-objective/internal/model"
)

// LoadTimeSeries reads a time series file, choosing the decoder by extension:
// ".json" uses LoadTimeSeriesJSON, everything else is read as delimited text.
func LoadTimeSeries(name, path string) (*model.TimeSeries, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return LoadTimeSeriesJSON(name, path)
	}
	return LoadTimeSeriesCSV(name, path)
}

// LoadTimeSeriesCSV reads a delimited time series. The first row is a header
// ("DateTime, col1, col2, ..."); each following row holds a date time (or a
// julian day number) and one value per column. Tab and semicolon delimited
// files are detected from the header.
func LoadTimeSeriesCSV(name, path string) (*model.TimeSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadTimeSeriesCSV(name, f)
}

// ReadTimeSeriesCSV is LoadTimeSeriesCSV over an arbitrary reader.
func ReadTimeSeriesCSV(name string, r io.Reader) (*model.TimeSeries, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	text := string(raw)

	cr := csv.NewReader(strings.NewReader(text))
	cr.Comma = detectDelimiter(text)
	cr.Comment = '#'
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("time series %q is empty", name)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) < 2 {
		return nil, fmt.Errorf("time series %q needs a date time column and at least one value column", name)
	}
	columns := make([]string, 0, len(header)-1)
	for _, h := range header[1:] {
		columns = append(columns, strings.TrimSpace(h))
	}

	var records []model.Record
	line := 1
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(row) == 1 && strings.TrimSpace(row[0]) == "" {
			continue
		}
		if len(row) != len(header) {
			return nil, fmt.Errorf("line %d: got %d fields, want %d", line, len(row), len(header))
		}
		jd, err := model.ParseJulianDay(row[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		values := make([]float64, len(columns))
		for i, cell := range row[1:] {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d column %q: %w", line, columns[i], err)
			}
			values[i] = v
		}
		records = append(records, model.Record{DateTime: jd, Values: values})
	}

	return model.NewTimeSeries(name, columns, records)
}

func detectDelimiter(text string) rune {
	first := text
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		first = text[:i]
	}
	switch {
	case strings.Contains(first, "\t"):
		return '\t'
	case strings.Contains(first, ";"):
		return ';'
	default:
		return ','
	}
}
