package model

import "time"

// RunStatus is the lifecycle state of a simulation run.
type RunStatus string

const (
	StatusPending   RunStatus = "PENDING"
	StatusRunning   RunStatus = "RUNNING"
	StatusCompleted RunStatus = "COMPLETED"
	StatusFailed    RunStatus = "FAILED"
	StatusCancelled RunStatus = "CANCELLED"
)

// StationKPI is the per-station breakdown reported at the end of a run.
type StationKPI struct {
	StationID          string  `json:"station_id"`
	TotalSwaps         int     `json:"total_swaps"`
	LostSwaps          int     `json:"lost_swaps"`
	AvgWaitTimeSeconds float64 `json:"avg_wait_time_seconds"`
	MaxWaitTimeSeconds float64 `json:"max_wait_time_seconds"`
	ChargerUtilization float64 `json:"charger_utilization"`
	IdleInventoryPct   float64 `json:"idle_inventory_pct"`
	TotalEnergyKWh     float64 `json:"total_energy_kwh"`
	PeakQueueLength    int     `json:"peak_queue_length"`
}

// BaselineComparison holds signed deltas of a scenario run against its
// baseline. Percentage deltas use the baseline as denominator and are 0 when
// the baseline value is 0.
type BaselineComparison struct {
	WaitTimeDeltaPct    float64 `json:"wait_time_delta_pct"`
	LostSwapsDelta      int     `json:"lost_swaps_delta"`
	ThroughputDeltaPct  float64 `json:"throughput_delta_pct"`
	OpexDelta           float64 `json:"opex_delta"`
	UtilizationDeltaPct float64 `json:"utilization_delta_pct"`
}

// OpexBreakdown itemizes the deterministic operational cost model.
type OpexBreakdown struct {
	EnergyCost       float64 `json:"energy_cost"`
	DepreciationCost float64 `json:"depreciation_cost"`
	LogisticsCost    float64 `json:"logistics_cost"`
	Total            float64 `json:"total"`
}

// SimulationResult is the complete output of one run.
type SimulationResult struct {
	RunID         string    `json:"run_id"`
	ScenarioName  string    `json:"scenario_name"`
	Status        RunStatus `json:"status"`
	DurationDays  int       `json:"duration_days"`
	ComputeTimeMs int       `json:"compute_time_ms"`

	CityTotalSwaps        int     `json:"city_total_swaps"`
	CityLostSwaps         int     `json:"city_lost_swaps"`
	CityAvgWaitTime       float64 `json:"city_avg_wait_time"`
	CityThroughputPerHour float64 `json:"city_throughput_per_hour"`

	TotalEnergyKWh        float64 `json:"total_energy_kwh"`
	EstimatedOpexCost     float64 `json:"estimated_opex_cost"`
	AvgChargerUtilization float64 `json:"avg_charger_utilization"`
	AvgIdleInventoryPct   float64 `json:"avg_idle_inventory_pct"`

	StationKPIs        []StationKPI        `json:"station_kpis"`
	BaselineComparison *BaselineComparison `json:"baseline_comparison,omitempty"`
	OpexBreakdown      *OpexBreakdown      `json:"opex_breakdown,omitempty"`

	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
}
