package handlers

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"ts-objective/internal/analysis"
	"ts-objective/internal/api/models"
	"ts-objective/internal/config"
	"ts-objective/internal/logging"
	"ts-objective/internal/provider"
	"ts-objective/internal/run"
	"ts-objective/internal/store"
)

// EvaluationStore is the persistence the handler needs. *store.Cached
// implements it.
type EvaluationStore interface {
	SaveEvaluation(ctx context.Context, ev *store.Evaluation) error
	GetEvaluation(ctx context.Context, id string) (*store.Evaluation, error)
}

// Recorder is implemented by *metrics.Recorder.
type Recorder interface {
	run.Recorder
	RecordEvaluation(status string, d time.Duration)
}

// EvaluationHandler runs objective evaluations against replayed simulations.
type EvaluationHandler struct {
	dataDir  string
	maxSteps int
	store    EvaluationStore
	recorder Recorder
	log      zerolog.Logger
}

type nopRecorder struct{}

func (nopRecorder) RecordStep()                                  {}
func (nopRecorder) RecordResult(string, string, string, float64) {}
func (nopRecorder) RecordEvaluation(string, time.Duration)       {}

func NewEvaluationHandler(dataDir string, maxSteps int, s EvaluationStore, rec Recorder, log zerolog.Logger) *EvaluationHandler {
	if rec == nil {
		rec = nopRecorder{}
	}
	return &EvaluationHandler{
		dataDir:  dataDir,
		maxSteps: maxSteps,
		store:    s,
		recorder: rec,
		log:      logging.Component(log, "api"),
	}
}

// requestError carries the error code reported to the client.
type requestError struct {
	status int
	code   string
	err    error
}

func (e *requestError) Error() string { return e.err.Error() }

func (e *requestError) Unwrap() error { return e.err }

// RunEvaluation handles POST /api/v1/evaluations
func (h *EvaluationHandler) RunEvaluation(c *gin.Context) {
	var req models.EvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", err)
		return
	}

	ev, engine, err := h.evaluate(c.Request.Context(), req.Name, req.InputFile, req.Simulation, req.Options)
	if err != nil {
		writeRequestError(c, err)
		return
	}

	resp := toResponse(ev)
	if req.Options.IncludeSamples {
		resp.Samples = samples(engine)
	}
	c.JSON(http.StatusOK, resp)
}

// GetEvaluation handles GET /api/v1/evaluations/:id
func (h *EvaluationHandler) GetEvaluation(c *gin.Context) {
	ev, err := h.store.GetEvaluation(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(c, http.StatusNotFound, "NOT_FOUND", err)
		return
	}
	if err != nil {
		writeError(c, http.StatusInternalServerError, "STORE_ERROR", err)
		return
	}
	c.JSON(http.StatusOK, toResponse(ev))
}

// CompareEvaluations handles POST /api/v1/evaluations/compare
func (h *EvaluationHandler) CompareEvaluations(c *gin.Context) {
	var req models.CompareEvaluationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", err)
		return
	}

	var (
		runs  []analysis.Run
		resp  models.CompareEvaluationsResponse
		names = make(map[string]string, len(req.Variations))
	)
	for _, v := range req.Variations {
		ev, _, err := h.evaluate(c.Request.Context(), v.Name, req.InputFile, v.Simulation, req.Options)
		if err != nil {
			writeRequestError(c, err)
			return
		}
		values := make([]float64, len(ev.Metrics))
		for i, m := range ev.Metrics {
			values[i] = m.Value
		}
		runs = append(runs, analysis.Run{Name: v.Name, Values: values})
		names[v.Name] = ev.ID
		resp.Evaluations = append(resp.Evaluations, toResponse(ev))
	}

	for _, r := range analysis.RankRuns(runs) {
		resp.Rankings = append(resp.Rankings, models.RankedEvaluation{
			Rank:  r.Rank,
			Name:  r.Name,
			ID:    names[r.Name],
			Score: r.Score,
		})
	}
	c.JSON(http.StatusOK, resp)
}

// evaluate runs one evaluation to completion and stores it. A run that
// fails after initialization is still stored with its Failed status.
func (h *EvaluationHandler) evaluate(ctx context.Context, name, inputFile string, sim models.SimulationSource, opts models.EvaluationOptions) (*store.Evaluation, *run.Engine, error) {
	maxSteps := h.maxSteps
	if opts.MaxSteps > 0 {
		maxSteps = opts.MaxSteps
	}
	if name == "" {
		name = filepath.Base(inputFile)
	}

	started := time.Now()
	engine := run.New(run.Options{
		InputFile: h.resolve(inputFile),
		MaxSteps:  maxSteps,
		Logger:    h.log,
		Recorder:  h.recorder,
	})
	if err := engine.Initialize(); err != nil {
		code := "INITIALIZE_ERROR"
		if errors.Is(err, config.ErrConfiguration) {
			code = "INVALID_CONFIG"
		}
		return nil, nil, &requestError{status: http.StatusBadRequest, code: code, err: err}
	}

	replay, err := provider.LoadReplay(h.resolve(sim.SeriesFile), h.resolve(sim.GeometryFile))
	if err != nil {
		return nil, nil, &requestError{status: http.StatusBadRequest, code: "INVALID_SIMULATION", err: err}
	}
	if err := engine.BindAll(replay); err != nil {
		return nil, nil, &requestError{status: http.StatusBadRequest, code: "INCOMPATIBLE_PROVIDER", err: err}
	}

	if err := engine.Run(ctx); err != nil {
		if ctx.Err() != nil {
			return nil, nil, &requestError{status: http.StatusServiceUnavailable, code: "CANCELLED", err: err}
		}
		h.log.Warn().Err(err).Str("name", name).Msg("evaluation failed")
	}
	h.recorder.RecordEvaluation(engine.Status().String(), time.Since(started))

	ev := &store.Evaluation{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: started.UTC(),
		Status:    engine.Status().String(),
		Message:   engine.Message(),
		Steps:     engine.Steps(),
	}
	for _, col := range engine.Report() {
		ev.Metrics = append(ev.Metrics, store.Metric{
			Objective:     col.Objective,
			Algorithm:     col.Algorithm,
			GeometryIndex: col.GeometryIndex,
			Samples:       col.Samples,
			Value:         col.Value,
		})
	}
	engine.Finish()

	if err := h.store.SaveEvaluation(ctx, ev); err != nil {
		return nil, nil, &requestError{status: http.StatusInternalServerError, code: "STORE_ERROR", err: err}
	}
	h.log.Info().Str("id", ev.ID).Str("name", name).Str("status", ev.Status).Int("metrics", len(ev.Metrics)).Msg("evaluation stored")
	return ev, engine, nil
}

// resolve keeps client supplied paths inside the data directory.
func (h *EvaluationHandler) resolve(p string) string {
	return filepath.Join(h.dataDir, filepath.Clean("/"+p))
}

func samples(e *run.Engine) []models.SampleSeries {
	var out []models.SampleSeries
	for _, o := range e.Objectives() {
		for _, r := range o.Output.Results() {
			if !r.Matched {
				continue
			}
			s := o.Output.Samples(r.GeometryIndex)
			out = append(out, models.SampleSeries{
				Objective:     o.Name,
				GeometryIndex: r.GeometryIndex,
				Times:         s.Times,
				Observed:      s.Observed,
				Simulated:     s.Simulated,
			})
		}
	}
	return out
}

func toResponse(ev *store.Evaluation) models.EvaluationResponse {
	resp := models.EvaluationResponse{
		ID:        ev.ID,
		Name:      ev.Name,
		Status:    ev.Status,
		Message:   ev.Message,
		Steps:     ev.Steps,
		CreatedAt: ev.CreatedAt,
		Metrics:   make([]models.MetricResult, 0, len(ev.Metrics)),
	}
	for _, m := range ev.Metrics {
		resp.Metrics = append(resp.Metrics, models.MetricResult{
			Objective:     m.Objective,
			Algorithm:     m.Algorithm,
			GeometryIndex: m.GeometryIndex,
			Samples:       m.Samples,
			Value:         m.Value,
		})
	}
	return resp
}

func writeRequestError(c *gin.Context, err error) {
	var re *requestError
	if errors.As(err, &re) {
		writeError(c, re.status, re.code, re.err)
		return
	}
	writeError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err)
}

func writeError(c *gin.Context, status int, code string, err error) {
	c.JSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: err.Error(),
		},
	})
}
