package models

import "battery-swap-sim/internal/model"

// SimulateRequest is the body of POST /api/v1/simulations. Options control
// persistence and response shape; the embedded config is the run input.
type SimulateRequest struct {
	Config  model.SimulationConfig `json:"config"`
	Options SimulateOptions        `json:"options,omitempty"`
}

// SimulateOptions contains optional per-call behavior.
type SimulateOptions struct {
	// PersistEvents stores the full event trace, not just the result.
	PersistEvents bool `json:"persist_events,omitempty"`
	// IncludeEvents returns the trace inline. Large for multi-day runs.
	IncludeEvents bool `json:"include_events,omitempty"`
}

// CompareRequest is the body of POST /api/v1/simulations/compare. The
// scenario's seed is forced to the baseline's before running.
type CompareRequest struct {
	Baseline model.SimulationConfig `json:"baseline"`
	Scenario model.SimulationConfig `json:"scenario"`
	Options  SimulateOptions        `json:"options,omitempty"`
}

// OptimizeRequest is the body of POST /api/v1/optimize.
type OptimizeRequest struct {
	DemandPoints []model.Location `json:"demand_points" binding:"required"`
	StationCount int              `json:"station_count" binding:"required"`
	RandomSeed   int64            `json:"random_seed,omitempty"`
}
