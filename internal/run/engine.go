// Package run hosts objectives as a steppable component: it loads the
// objective definition, binds providers, drives every cursor through the
// horizon and writes the final report.
package run

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog"

	"ts-objective/internal/config"
	"ts-objective/internal/data"
	"ts-objective/internal/geometry"
	"ts-objective/internal/logging"
	"ts-objective/internal/model"
	"ts-objective/internal/objective"
	"ts-objective/internal/provider"
)

var ErrNotInitialized = errors.New("engine is not initialized")

// DefaultMaxSteps bounds Run when Options.MaxSteps is zero.
const DefaultMaxSteps = 1_000_000

// Recorder receives step and result notifications. *metrics.Recorder
// implements it.
type Recorder interface {
	RecordStep()
	RecordResult(objective, algorithm, geometry string, value float64)
}

type nopRecorder struct{}

func (nopRecorder) RecordStep()                                  {}
func (nopRecorder) RecordResult(string, string, string, float64) {}

type Options struct {
	// InputFile is the objective definition read by Initialize.
	InputFile string
	// OutputCSV is optional. Its directory must exist.
	OutputCSV string
	MaxSteps  int

	Logger   zerolog.Logger
	Recorder Recorder
}

// Engine is a single run. It is not safe for concurrent use.
type Engine struct {
	opts Options
	log  zerolog.Logger
	rec  Recorder

	horizon    model.Horizon
	objectives []*objective.Objective
	progress   Progress
	clock      float64
	steps      int

	status   model.Status
	message  string
	prepared bool
	report   []ReportColumn
}

func New(opts Options) *Engine {
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = DefaultMaxSteps
	}
	if opts.Recorder == nil {
		opts.Recorder = nopRecorder{}
	}
	return &Engine{
		opts:   opts,
		log:    logging.Component(opts.Logger, "engine"),
		rec:    opts.Recorder,
		status: model.StatusCreated,
	}
}

// Initialize parses the input file, loads every objective's observed series
// and geometries and seeds the cursors. On error the engine is Failed and
// Message explains why.
func (e *Engine) Initialize() error {
	if err := e.checkOutputDir(); err != nil {
		return e.fail(err)
	}
	in, err := config.LoadInputFile(e.opts.InputFile)
	if err != nil {
		return e.fail(err)
	}

	objs := make([]*objective.Objective, 0, len(in.Objectives))
	for _, spec := range in.Objectives {
		series, err := data.LoadTimeSeries(spec.Name, spec.SeriesPath)
		if err != nil {
			return e.fail(fmt.Errorf("%w: objective %q: %v", config.ErrConfiguration, spec.Name, err))
		}
		var geoms []geometry.Geometry
		for _, g := range in.GeometriesFor(spec.Name) {
			loaded, err := geometry.Load(g.Kind, g.Source)
			if err != nil {
				return e.fail(fmt.Errorf("%w: objective %q: %v", config.ErrConfiguration, spec.Name, err))
			}
			geoms = append(geoms, loaded...)
		}
		o, err := objective.New(spec.Name, spec.Algorithm, series, geoms)
		if err != nil {
			return e.fail(fmt.Errorf("%w: %v", config.ErrConfiguration, err))
		}
		objs = append(objs, o)
	}
	return e.InitializeObjectives(in.Horizon(), objs)
}

// InitializeObjectives seeds already built objectives for h. It is the
// in-memory counterpart of Initialize.
func (e *Engine) InitializeObjectives(h model.Horizon, objs []*objective.Objective) error {
	if len(objs) == 0 {
		return e.fail(fmt.Errorf("%w: no objectives defined", config.ErrConfiguration))
	}
	for _, o := range objs {
		if err := o.Initialize(h); err != nil {
			return e.fail(fmt.Errorf("%w: %w", config.ErrConfiguration, err))
		}
	}

	e.horizon = h
	e.objectives = objs
	e.clock = h.Start
	e.steps = 0
	e.report = nil
	e.prepared = false
	e.setStatus(model.StatusInitialized, "Initialized successfully")
	e.log.Info().
		Int("objectives", len(objs)).
		Float64("start", h.Start).
		Float64("end", h.End()).
		Msg("engine initialized")
	return nil
}

// Bind attaches p to the objective called name after checking that the
// provider publishes line features.
func (e *Engine) Bind(name string, p provider.Provider) error {
	o := e.Objective(name)
	if o == nil {
		return fmt.Errorf("unknown objective %q", name)
	}
	return e.bind(o, p)
}

// BindAll attaches p to every objective.
func (e *Engine) BindAll(p provider.Provider) error {
	for _, o := range e.objectives {
		if err := e.bind(o, p); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) bind(o *objective.Objective, p provider.Provider) error {
	if ok, msg := provider.CanConsume(p); !ok {
		return fmt.Errorf("objective %q: %s", o.Name, msg)
	}
	o.SetProvider(p)
	mapping := o.Input.Mapping()
	if missing := len(o.Input.Geometries()) - len(mapping); missing > 0 {
		e.log.Warn().
			Str("objective", o.Name).
			Int("unmatched", missing).
			Msg("geometries without provider counterpart")
	}
	return nil
}

// Prepare makes an initialized engine ready to step.
func (e *Engine) Prepare() error {
	if e.status != model.StatusInitialized {
		return ErrNotInitialized
	}
	for _, o := range e.objectives {
		if o.Input.Provider() == nil {
			e.log.Warn().Str("objective", o.Name).Msg("no provider bound")
		}
	}
	// Outputs are only reduced from Update, once values have been sampled.
	e.progress.Reset(e.horizon.Start, e.horizon.End())
	e.prepared = true
	e.setStatus(model.StatusUpdated, "Finished preparing model")
	return nil
}

// Update performs one step. Retrieval and sampling run for every objective,
// outputs are refreshed, the clock moves to the earliest cursor and either
// the report is written or all cursors advance.
func (e *Engine) Update() (model.Status, string, float64) {
	if e.status != model.StatusUpdated {
		return e.status, e.message, e.progress.Percent()
	}
	e.status = model.StatusUpdating
	e.steps++
	e.rec.RecordStep()

	for _, o := range e.objectives {
		o.Input.RetrieveValuesFromProvider()
	}

	minDate := e.minDate()

	if err := e.refreshOutputs(); err != nil {
		e.setStatus(model.StatusFailed, err.Error())
		return e.status, e.message, e.progress.Percent()
	}

	e.clock = minDate

	if e.horizon.Complete(minDate) {
		if err := e.writeReport(); err != nil {
			e.setStatus(model.StatusFailed, err.Error())
			return e.status, e.message, e.progress.Percent()
		}
		e.progress.Complete()
		e.setStatus(model.StatusDone, "Simulation finished successfully")
		return e.status, e.message, e.progress.Percent()
	}

	for _, o := range e.objectives {
		o.Input.MoveToNextDateTime()
	}

	if e.progress.PerformStep(minDate) {
		e.setStatus(model.StatusUpdated, "Simulation performed time-step | DateTime: "+
			strconv.FormatFloat(minDate, 'f', -1, 64))
	} else {
		e.status = model.StatusUpdated
		e.log.Debug().Int("step", e.steps).Float64("date_time", minDate).Msg("step")
	}
	return e.status, e.message, e.progress.Percent()
}

// Finish releases the run and returns the engine to Created.
func (e *Engine) Finish() {
	if !e.prepared {
		return
	}
	e.setStatus(model.StatusFinishing, "Engine is being disposed")
	for _, o := range e.objectives {
		o.SetProvider(nil)
	}
	e.prepared = false
	e.setStatus(model.StatusFinished, "Engine has been disposed")
	e.setStatus(model.StatusCreated, "Engine ran successfully and has been re-created")
}

// Run prepares the engine if needed and steps it until Done or Failed.
// Cancellation is only observed between steps.
func (e *Engine) Run(ctx context.Context) error {
	if e.status == model.StatusInitialized {
		if err := e.Prepare(); err != nil {
			return err
		}
	}
	if e.status != model.StatusUpdated {
		return fmt.Errorf("%w: status %s", ErrNotInitialized, e.status)
	}

	for e.status == model.StatusUpdated {
		if err := ctx.Err(); err != nil {
			return err
		}
		if e.steps >= e.opts.MaxSteps {
			e.setStatus(model.StatusFailed, fmt.Sprintf("exceeded %d steps", e.opts.MaxSteps))
			break
		}
		e.Update()
	}

	if e.status == model.StatusFailed {
		return errors.New(e.message)
	}
	return nil
}

func (e *Engine) minDate() float64 {
	m := math.MaxFloat64
	for _, o := range e.objectives {
		m = math.Min(m, o.CurrentDateTime())
	}
	return m
}

func (e *Engine) refreshOutputs() error {
	for _, o := range e.objectives {
		produced, err := o.Output.UpdateValues()
		if err != nil {
			return fmt.Errorf("objective %q: %w", o.Name, err)
		}
		if !produced {
			continue
		}
		for _, r := range o.Output.Results() {
			if !r.Matched {
				continue
			}
			e.rec.RecordResult(o.Name, string(o.Algorithm), strconv.Itoa(r.GeometryIndex), r.Value)
			e.log.Info().
				Str("objective", o.Name).
				Str("algorithm", string(o.Algorithm)).
				Int("geometry", r.GeometryIndex).
				Int("samples", r.Samples).
				Float64("value", r.Value).
				Msg("objective computed")
		}
	}
	return nil
}

func (e *Engine) writeReport() error {
	e.report = BuildReport(e.objectives)
	if e.opts.OutputCSV == "" {
		return nil
	}
	if err := WriteReportCSV(e.opts.OutputCSV, e.report); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	e.log.Info().Str("path", e.opts.OutputCSV).Int("columns", len(e.report)).Msg("report written")
	return nil
}

func (e *Engine) checkOutputDir() error {
	if e.opts.OutputCSV == "" {
		return nil
	}
	dir := filepath.Dir(e.opts.OutputCSV)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return fmt.Errorf("%w: output directory does not exist: %s", config.ErrConfiguration, e.opts.OutputCSV)
	}
	return nil
}

func (e *Engine) fail(err error) error {
	e.setStatus(model.StatusFailed, err.Error())
	return err
}

func (e *Engine) setStatus(s model.Status, msg string) {
	e.status = s
	e.message = msg
	e.log.Info().Str("status", s.String()).Msg(msg)
}

func (e *Engine) Status() model.Status { return e.status }

func (e *Engine) Message() string { return e.message }

func (e *Engine) Progress() float64 { return e.progress.Percent() }

// Clock is the earliest cursor time seen by the last step.
func (e *Engine) Clock() float64 { return e.clock }

func (e *Engine) Steps() int { return e.steps }

func (e *Engine) Horizon() model.Horizon { return e.horizon }

func (e *Engine) Options() Options { return e.opts }

func (e *Engine) Objectives() []*objective.Objective { return e.objectives }

// Objective returns the objective called name or nil.
func (e *Engine) Objective(name string) *objective.Objective {
	for _, o := range e.objectives {
		if o.Name == name {
			return o
		}
	}
	return nil
}

// Report returns the matched metric columns once the run is Done.
func (e *Engine) Report() []ReportColumn { return e.report }
