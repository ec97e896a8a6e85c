package models

// EvaluationRequest is the body of POST /api/v1/evaluations. Paths are
// relative to the server's data directory.
type EvaluationRequest struct {
	Name       string            `json:"name"`
	InputFile  string            `json:"input_file" binding:"required"`
	Simulation SimulationSource  `json:"simulation" binding:"required"`
	Options    EvaluationOptions `json:"options,omitempty"`
}

// SimulationSource points at a pre-computed simulation that is replayed as
// the provider for every objective.
type SimulationSource struct {
	SeriesFile   string `json:"series_file" binding:"required"`
	GeometryFile string `json:"geometry_file" binding:"required"`
}

type EvaluationOptions struct {
	MaxSteps       int  `json:"max_steps,omitempty"`       // 0 = server default
	IncludeSamples bool `json:"include_samples,omitempty"` // default: false
}

// CompareEvaluationsRequest evaluates several simulations against one
// objective definition and ranks them.
type CompareEvaluationsRequest struct {
	InputFile  string                `json:"input_file" binding:"required"`
	Variations []SimulationVariation `json:"variations" binding:"required,min=1,dive"`
	Options    EvaluationOptions     `json:"options,omitempty"`
}

type SimulationVariation struct {
	Name       string           `json:"name" binding:"required"`
	Simulation SimulationSource `json:"simulation" binding:"required"`
}
