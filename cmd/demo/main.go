package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/paulmach/orb"
	"github.com/rs/zerolog"

	"ts-objective/internal/analysis"
	"ts-objective/internal/geometry"
	"ts-objective/internal/logging"
	"ts-objective/internal/model"
	"ts-objective/internal/objective"
	"ts-objective/internal/provider"
	"ts-objective/internal/run"
)

// Demo:
// - Build an hourly observed hydrograph for two river reaches
// - Replay a lagged, noisy simulation of the same reaches
// - Score it with every algorithm and print the results
func main() {
	hours := flag.Int("hours", 48, "Number of hourly observations")
	lag := flag.Float64("lag", 2, "Simulation lag in hours")
	outCSV := flag.String("out", "", "Optional path to write the report CSV (e.g. results/demo.csv)")
	verbose := flag.Bool("v", false, "Log every step")
	flag.Parse()

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log := logging.NewWithWriter(os.Stderr, "console", level)

	reaches := []geometry.Geometry{
		geometry.FromLineString(orb.LineString{{0, 0}, {1, 0}, {2, 1}}),
		geometry.FromLineString(orb.LineString{{2, 1}, {3, 3}}),
	}

	start := model.ToJulianDay(mustTime("2015-06-01 00:00:00"))
	observed := hydrograph(start, *hours, 1, 0)
	// The simulation is sampled every 90 minutes so most observations are
	// interpolated.
	simulated := hydrograph(start, *hours*2/3+2, 1.5, *lag)

	var objs []*objective.Objective
	for _, alg := range model.Algorithms() {
		o, err := objective.New(string(alg), alg, observed, reaches)
		if err != nil {
			panic(err)
		}
		objs = append(objs, o)
	}

	engine := run.New(run.Options{OutputCSV: *outCSV, Logger: log})
	h := model.NewHorizon(start, start+float64(*hours-1)/24)
	if err := engine.InitializeObjectives(h, objs); err != nil {
		panic(err)
	}

	replay, err := provider.NewReplay(reaches, simulated)
	if err != nil {
		panic(err)
	}
	if err := engine.BindAll(replay); err != nil {
		panic(err)
	}
	if err := engine.Run(context.Background()); err != nil {
		panic(err)
	}

	fmt.Printf("%-14s %-8s %-8s %-12s %-10s %-10s\n", "algorithm", "geometry", "samples", "value", "bias", "corr")
	for _, o := range engine.Objectives() {
		for _, r := range o.Output.Results() {
			s := analysis.Summarize(o.Output.Samples(r.GeometryIndex))
			fmt.Printf("%-14s %-8d %-8d %-12.6g %-10.4f %-10.4f\n",
				o.Algorithm, r.GeometryIndex, r.Samples, r.Value, s.Bias, s.Correlation)
		}
	}
	if *outCSV != "" {
		fmt.Printf("Wrote report to %s\n", *outCSV)
	}
}

// hydrograph builds n records spaced step hours apart: a single flood wave
// per column, delayed by lag hours.
func hydrograph(start float64, n int, step, lag float64) *model.TimeSeries {
	records := make([]model.Record, n)
	for i := range records {
		hour := float64(i) * step
		records[i] = model.Record{
			DateTime: start + hour/24,
			Values: []float64{
				wave(hour-lag, 12, 6, 40),
				wave(hour-lag, 20, 9, 25),
			},
		}
	}
	ts, err := model.NewTimeSeries("hydrograph", []string{"upper", "lower"}, records)
	if err != nil {
		panic(err)
	}
	return ts
}

func wave(hour, peak, width, height float64) float64 {
	d := (hour - peak) / width
	return 5 + height*math.Exp(-d*d)
}

func mustTime(s string) time.Time {
	v, err := model.ParseDateTime(s)
	if err != nil {
		panic(err)
	}
	return v
}
