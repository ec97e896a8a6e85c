package data

import (
	"encoding/json"
	"fmt"
	"os"

	"ts-objective/internal/model"
)

// timeSeriesJSON matches the on-disk JSON shape:
//
//	{
//	  "columns": ["reach_1", "reach_2"],
//	  "records": [{"date_time": "2015-06-01 00:00:00", "values": [1.2, 3.4]}]
//	}
type timeSeriesJSON struct {
	Columns []string `json:"columns"`
	Records []struct {
		DateTime string    `json:"date_time"`
		Values   []float64 `json:"values"`
	} `json:"records"`
}

func LoadTimeSeriesJSON(name, path string) (*model.TimeSeries, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc timeSeriesJSON
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	records := make([]model.Record, 0, len(doc.Records))
	for i, r := range doc.Records {
		jd, err := model.ParseJulianDay(r.DateTime)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		records = append(records, model.Record{DateTime: jd, Values: r.Values})
	}
	return model.NewTimeSeries(name, doc.Columns, records)
}
