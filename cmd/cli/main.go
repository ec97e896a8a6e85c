package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"ts-objective/internal/analysis"
	"ts-objective/internal/config"
	"ts-objective/internal/logging"
	"ts-objective/internal/model"
	"ts-objective/internal/provider"
	"ts-objective/internal/report"
	"ts-objective/internal/run"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch os.Args[1] {
	case "evaluate":
		err = cmdEvaluate(ctx, os.Args[2:])
	case "clone":
		err = cmdClone(ctx, os.Args[2:])
	case "rank":
		err = cmdRank(ctx, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli evaluate --config examples/run.yaml [--out results/metrics.csv] [--plots results/plots]")
	fmt.Println("  cli evaluate --input examples/run.inp --series sim.csv --geometries sim.wkt")
	fmt.Println("  cli clone --config examples/run.yaml --series a.csv,b.csv,c.csv")
	fmt.Println("  cli rank --configs a.yaml,b.yaml")
	fmt.Println("  cli rank --reports results/a.csv,results/b.csv")
	fmt.Println("")
	fmt.Println("notes:")
	fmt.Println("  - the simulation series is replayed as the provider for every objective")
	fmt.Println("  - the output CSV has one column per matched geometry, named after its objective")
}

// runFlags are shared by evaluate and clone; non-empty values override the
// config file.
type runFlags struct {
	config     *string
	input      *string
	series     *string
	geometries *string
	out        *string
	plots      *string
	logLevel   *string
}

func addRunFlags(fs *flag.FlagSet) runFlags {
	return runFlags{
		config:     fs.String("config", "", "Path to YAML run config"),
		input:      fs.String("input", "", "Objective input file (.inp)"),
		series:     fs.String("series", "", "Simulated series file (CSV or JSON)"),
		geometries: fs.String("geometries", "", "Geometry file for the simulated series columns"),
		out:        fs.String("out", "", "Output CSV path"),
		plots:      fs.String("plots", "", "Directory for observed vs simulated PNGs"),
		logLevel:   fs.String("log-level", "", "Log level override"),
	}
}

func (f runFlags) load() (*config.Config, error) {
	var base config.Config
	if *f.config != "" {
		c, err := config.LoadUnchecked(*f.config)
		if err != nil {
			return nil, err
		}
		base = *c
	}
	cfg := config.Merge(base, config.Config{
		InputFile:  *f.input,
		OutputCSV:  *f.out,
		PlotDir:    *f.plots,
		Simulation: config.SimulationConfig{SeriesFile: *f.series, GeometryFile: *f.geometries},
	})
	if *f.logLevel != "" {
		cfg.Log.Level = *f.logLevel
	}
	if err := cfg.ApplyDefaults(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func newLogger(cfg *config.Config) (zerolog.Logger, error) {
	return logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

func cmdEvaluate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("evaluate", flag.ExitOnError)
	flags := addRunFlags(fs)
	_ = fs.Parse(args)

	cfg, err := flags.load()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}

	// ensure output dirs exist
	if cfg.OutputCSV != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.OutputCSV), 0o755); err != nil {
			return err
		}
	}

	engine, err := evaluate(ctx, cfg, cfg.Simulation.SeriesFile, log)
	if err != nil {
		return err
	}

	printReport(engine.Report())
	if cfg.OutputCSV != "" {
		fmt.Printf("Wrote %d columns to %s\n", len(engine.Report()), cfg.OutputCSV)
	}
	return plot(cfg, engine)
}

func cmdClone(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("clone", flag.ExitOnError)
	flags := addRunFlags(fs)
	_ = fs.Parse(args)

	series := splitPaths(*flags.series)
	if len(series) > 0 {
		*flags.series = series[0]
	}
	cfg, err := flags.load()
	if err != nil {
		return err
	}
	if len(series) == 0 {
		series = []string{cfg.Simulation.SeriesFile}
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}

	base := run.New(run.Options{
		InputFile: cfg.InputFile,
		OutputCSV: cfg.OutputCSV,
		MaxSteps:  cfg.MaxSteps,
		Logger:    log,
	})
	if err := base.Initialize(); err != nil {
		return err
	}

	reg := run.NewRegistry()
	root := reg.Add(base)
	defer reg.Remove(root)

	var runs []analysis.Run
	for _, s := range series {
		h, err := reg.Clone(root)
		if err != nil {
			return err
		}
		clone, _ := reg.Engine(h)
		if err := runEngine(ctx, clone, s, cfg.Simulation.GeometryFile); err != nil {
			return fmt.Errorf("clone for %s: %w", s, err)
		}
		runs = append(runs, analysis.Run{Name: s, Values: values(clone.Report())})
		if out := clone.Options().OutputCSV; out != "" {
			fmt.Printf("%s -> %s\n", s, out)
		}
	}

	printRanking(analysis.RankRuns(runs))
	return nil
}

func cmdRank(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("rank", flag.ExitOnError)
	configs := fs.String("configs", "", "Comma-separated YAML run configs")
	reports := fs.String("reports", "", "Comma-separated metric CSVs from earlier runs")
	_ = fs.Parse(args)

	var runs []analysis.Run
	for _, p := range splitPaths(*reports) {
		cols, err := run.ReadReportCSV(p)
		if err != nil {
			return err
		}
		runs = append(runs, analysis.Run{Name: p, Values: values(cols)})
	}

	paths := splitPaths(*configs)
	if len(paths) == 0 && len(runs) == 0 {
		return fmt.Errorf("--configs or --reports is required")
	}

	for _, p := range paths {
		cfg, err := config.Load(p)
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		log, err := newLogger(cfg)
		if err != nil {
			return err
		}
		engine, err := evaluate(ctx, cfg, cfg.Simulation.SeriesFile, log)
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		runs = append(runs, analysis.Run{Name: p, Values: values(engine.Report())})
	}

	printRanking(analysis.RankRuns(runs))
	return nil
}

func evaluate(ctx context.Context, cfg *config.Config, series string, log zerolog.Logger) (*run.Engine, error) {
	engine := run.New(run.Options{
		InputFile: cfg.InputFile,
		OutputCSV: cfg.OutputCSV,
		MaxSteps:  cfg.MaxSteps,
		Logger:    log,
	})
	if err := engine.Initialize(); err != nil {
		return nil, err
	}
	if err := runEngine(ctx, engine, series, cfg.Simulation.GeometryFile); err != nil {
		return nil, err
	}
	return engine, nil
}

func runEngine(ctx context.Context, e *run.Engine, series, geometries string) error {
	if e.Status() == model.StatusFailed {
		return errors.New(e.Message())
	}
	replay, err := provider.LoadReplay(series, geometries)
	if err != nil {
		return err
	}
	if err := e.BindAll(replay); err != nil {
		return err
	}
	defer e.Finish()
	return e.Run(ctx)
}

func plot(cfg *config.Config, e *run.Engine) error {
	if cfg.PlotDir == "" {
		return nil
	}
	if err := os.MkdirAll(cfg.PlotDir, 0o755); err != nil {
		return err
	}
	paths, err := report.PlotAll(e.Objectives(), cfg.PlotDir)
	if err != nil {
		return err
	}
	fmt.Printf("Wrote %d plots to %s\n", len(paths), cfg.PlotDir)
	return nil
}

func values(cols []run.ReportColumn) []float64 {
	out := make([]float64, len(cols))
	for i, c := range cols {
		out[i] = c.Value
	}
	return out
}

func printReport(cols []run.ReportColumn) {
	fmt.Printf("%-20s %-14s %-8s %-8s %-14s\n", "objective", "algorithm", "geometry", "samples", "value")
	for _, c := range cols {
		fmt.Printf("%-20s %-14s %-8d %-8d %-14.6g\n", c.Objective, c.Algorithm, c.GeometryIndex, c.Samples, c.Value)
	}
}

func printRanking(ranked []analysis.RankedRun) {
	fmt.Printf("%-4s %-40s %-8s %-14s\n", "rank", "run", "columns", "score")
	for _, r := range ranked {
		fmt.Printf("%-4d %-40s %-8d %-14.6g\n", r.Rank, r.Name, r.Columns, r.Score)
	}
}

func splitPaths(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
