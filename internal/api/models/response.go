package models

import "time"

// EvaluationResponse is a stored or freshly computed evaluation.
type EvaluationResponse struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Status    string         `json:"status"`
	Message   string         `json:"message"`
	Steps     int            `json:"steps"`
	CreatedAt time.Time      `json:"created_at"`
	Metrics   []MetricResult `json:"metrics"`
	Samples   []SampleSeries `json:"samples,omitempty"`
}

// MetricResult is the final value for one matched geometry.
type MetricResult struct {
	Objective     string  `json:"objective"`
	Algorithm     string  `json:"algorithm"`
	GeometryIndex int     `json:"geometry_index"`
	Samples       int     `json:"samples"`
	Value         float64 `json:"value"`
}

// SampleSeries holds the pairs a metric was computed from.
type SampleSeries struct {
	Objective     string    `json:"objective"`
	GeometryIndex int       `json:"geometry_index"`
	Times         []float64 `json:"times"`
	Observed      []float64 `json:"observed"`
	Simulated     []float64 `json:"simulated"`
}

type CompareEvaluationsResponse struct {
	Rankings    []RankedEvaluation   `json:"rankings"`
	Evaluations []EvaluationResponse `json:"evaluations"`
}

// RankedEvaluation orders variations by mean metric value, lowest first.
type RankedEvaluation struct {
	Rank  int     `json:"rank"`
	Name  string  `json:"name"`
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

type AlgorithmInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	LowerBetter bool   `json:"lower_is_better"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
