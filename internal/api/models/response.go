package models

import (
	"battery-swap-sim/internal/analysis"
	"battery-swap-sim/internal/model"
	"battery-swap-sim/internal/store"
)

// SimulateResponse is the result of one run, optionally with its trace.
type SimulateResponse struct {
	Result *model.SimulationResult `json:"result"`
	Events []model.Event           `json:"events,omitempty"`
}

// CompareResponse pairs a baseline run with its scenario run. The scenario
// result carries the baseline_comparison block.
type CompareResponse struct {
	Baseline *model.SimulationResult `json:"baseline"`
	Scenario *model.SimulationResult `json:"scenario"`
	Rankings []analysis.StationRanking `json:"rankings,omitempty"`
}

// ListRunsResponse lists persisted runs, newest first.
type ListRunsResponse struct {
	Runs []store.RunSummary `json:"runs"`
}

// EventsResponse is one page of a persisted event trace.
type EventsResponse struct {
	RunID  string        `json:"run_id"`
	Events []store.Event `json:"events"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

// StationsResponse lists the configured station fleet.
type StationsResponse struct {
	Stations []model.StationConfig `json:"stations"`
}

// OptimizeResponse proposes station placements for the given demand cloud.
// MeanDistance is the average point-to-nearest-station distance in degrees.
type OptimizeResponse struct {
	Locations    []model.Location `json:"locations"`
	MeanDistance float64          `json:"mean_distance"`
}

// StatsResponse summarizes the run database.
type StatsResponse struct {
	Stats store.Stats `json:"stats"`
}

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a machine-readable code and a human message.
type ErrorDetail struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
