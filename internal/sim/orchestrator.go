package sim

import (
	"errors"
	"fmt"
	"math"
	"time"

	"battery-swap-sim/internal/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrInvariant marks a post-run audit failure: the station bookkeeping ended
// in a state the model forbids, so the result cannot be trusted.
var ErrInvariant = errors.New("simulation invariant violated")

// Operational cost model, in internal currency units.
const (
	energyCostPerKWh       = 8.0
	depreciationPerSwap    = 25.0
	logisticsPerStationDay = 500.0
)

// defaultPatienceSeconds is how long a vehicle is willing to queue. Vehicles
// currently never renege, so patience is carried on the vehicle but not acted
// on; it exists so traces stay comparable once reneging lands.
const defaultPatienceSeconds = 600.0

// Vehicle is one swap demand unit.
type Vehicle struct {
	ID              string
	Urgency         float64
	PatienceSeconds float64
}

// Orchestrator wires the scheduler, the stations, the arrival generators and
// the telemetry log into one run. It is single-use: build, Run once, read the
// result and the event trace.
type Orchestrator struct {
	cfg   model.SimulationConfig
	runID string
	log   *zap.Logger

	sched     *Scheduler
	rng       *RNG
	stations  []*Station
	telemetry *Telemetry

	// demandMult folds the config-level multiplier with any
	// DEMAND_MULTIPLIER interventions.
	demandMult float64

	// observedArrivalMin holds per-station mean inter-arrival minutes from
	// the real-network loader. Only consulted when cfg.UseRealNetwork.
	observedArrivalMin map[string]float64

	vehicleSeq int
}

// NewOrchestrator validates the configuration, applies scenario interventions
// and builds the station set. The returned orchestrator has not consumed any
// randomness yet.
func NewOrchestrator(cfg model.SimulationConfig, log *zap.Logger) (*Orchestrator, error) {
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	stations, scenarioMult, err := ApplyInterventions(cfg.Stations, cfg.Scenario)
	if err != nil {
		return nil, err
	}

	// Offline stations stay out of the run entirely; they receive no
	// arrivals and do not dilute the per-station demand split.
	active := stations[:0]
	for i := range stations {
		if stations[i].Status == "INACTIVE" {
			continue
		}
		active = append(active, stations[i])
	}
	stations = active

	if len(stations) == 0 {
		return nil, fmt.Errorf("%w: no active station remains after interventions", model.ErrInvalidConfig)
	}
	for i := range stations {
		stations[i].ApplyDefaults()
		if err := stations[i].Validate(); err != nil {
			return nil, err
		}
	}

	o := &Orchestrator{
		cfg:        cfg,
		runID:      uuid.NewString(),
		log:        log,
		sched:      NewScheduler(),
		rng:        NewRNG(cfg.RandomSeed),
		telemetry:  NewTelemetry(),
		demandMult: cfg.DemandMultiplier * scenarioMult,
	}
	for i := range stations {
		o.stations = append(o.stations, NewStation(o.sched, stations[i], o.telemetry, log))
	}
	return o, nil
}

// RunID returns the generated run identifier.
func (o *Orchestrator) RunID() string { return o.runID }

// SetObservedArrivalRates installs per-station mean inter-arrival intervals
// (minutes) measured from real swap logs. Used with UseRealNetwork.
func (o *Orchestrator) SetObservedArrivalRates(meanMinutes map[string]float64) {
	o.observedArrivalMin = meanMinutes
}

// Events returns the full event trace of the completed run.
func (o *Orchestrator) Events() []model.Event { return o.telemetry.Events() }

// Run executes the simulation to its horizon and aggregates KPIs. It never
// fails once construction succeeded; the configuration was fully validated
// up front.
func (o *Orchestrator) Run() *model.SimulationResult {
	started := time.Now()
	horizon := o.cfg.HorizonSeconds()

	o.log.Info("simulation_started",
		zap.String("run_id", o.runID),
		zap.Int("stations", len(o.stations)),
		zap.Int("duration_days", o.cfg.DurationDays),
		zap.Int64("seed", o.cfg.RandomSeed),
		zap.Float64("demand_multiplier", o.demandMult),
	)

	for _, st := range o.stations {
		o.startArrivals(st)
	}
	o.sched.RunUntil(horizon)

	res := o.aggregate(started)
	o.log.Info("simulation_completed",
		zap.String("run_id", o.runID),
		zap.Int("total_swaps", res.CityTotalSwaps),
		zap.Int("lost_swaps", res.CityLostSwaps),
		zap.Int("events", o.telemetry.Len()),
		zap.Int("compute_time_ms", res.ComputeTimeMs),
	)
	return res
}

// startArrivals installs the self-rescheduling arrival generator for one
// station. Demand is a non-homogeneous Poisson process: the rate is re-read
// from the hourly curve before every draw, so rate changes take effect at the
// next arrival rather than mid-gap.
func (o *Orchestrator) startArrivals(st *Station) {
	var next func()
	next = func() {
		rate := o.arrivalRate(st)
		if rate <= 0 {
			// Dead hour. Check again when the rate can have changed.
			o.sched.Schedule(3600, next)
			return
		}
		gap := o.rng.Exp(3600.0 / rate)
		if std := o.cfg.Calibration.ArrivalJitterStd; std > 0 {
			jitter := o.rng.Normal(1.0, std)
			if jitter < 0.5 {
				jitter = 0.5
			}
			gap *= jitter
		}
		o.sched.Schedule(gap, func() {
			v := o.newVehicle()
			st.HandleVehicleArrival(v.ID, nil)
			next()
		})
	}
	next()
}

// arrivalRate returns the current arrivals/hour for one station. The shared
// demand curve is split evenly across stations; observed per-station rates
// from real logs are used as-is.
func (o *Orchestrator) arrivalRate(st *Station) float64 {
	if o.cfg.UseRealNetwork {
		if m, ok := o.observedArrivalMin[st.ID]; ok && m > 0 {
			return 60.0 / m * o.demandMult
		}
	}
	hour := int(o.sched.Now() / 3600)
	rate := o.cfg.DemandCurve.Rate(hour) * o.demandMult
	if o.cfg.Scenario != nil {
		if adj, ok := o.cfg.Scenario.DemandAdjustments[((hour%24)+24)%24]; ok {
			rate *= adj
		}
	}
	return rate / float64(len(o.stations))
}

// newVehicle mints a vehicle with a sequential ID. IDs are derived from a
// per-run counter rather than random UUIDs so the RNG sequence, and with it
// the whole trace, stays identical across replays of the same seed.
func (o *Orchestrator) newVehicle() Vehicle {
	o.vehicleSeq++
	return Vehicle{
		ID:              fmt.Sprintf("veh_%06d", o.vehicleSeq),
		Urgency:         o.rng.Uniform(0.8, 1.2),
		PatienceSeconds: defaultPatienceSeconds,
	}
}

func (o *Orchestrator) aggregate(started time.Time) *model.SimulationResult {
	horizon := o.cfg.HorizonSeconds()

	res := &model.SimulationResult{
		RunID:         o.runID,
		ScenarioName:  "baseline",
		Status:        model.StatusCompleted,
		DurationDays:  o.cfg.DurationDays,
		StartedAt:     started,
		CompletedAt:   time.Now(),
		ComputeTimeMs: int(time.Since(started).Milliseconds()),
	}
	if o.cfg.Scenario != nil && o.cfg.Scenario.Name != "" {
		res.ScenarioName = o.cfg.Scenario.Name
	}

	var totalWait, utilSum, idleSum float64
	for _, st := range o.stations {
		cfg := st.Config()

		util := st.Stats.ChargerBusyTime / (horizon * float64(cfg.ChargerCount))
		util = math.Min(util, 1.0)

		// Idle inventory is the end-of-run snapshot of swappable stock.
		idle := float64(st.AvailableBatteryCount()) / float64(cfg.TotalBatteries) * 100

		res.StationKPIs = append(res.StationKPIs, model.StationKPI{
			StationID:          st.ID,
			TotalSwaps:         st.Stats.TotalSwaps,
			LostSwaps:          st.Stats.LostSwaps,
			AvgWaitTimeSeconds: st.Stats.AvgWaitTime(),
			MaxWaitTimeSeconds: st.Stats.MaxWaitTime,
			ChargerUtilization: util,
			IdleInventoryPct:   idle,
			TotalEnergyKWh:     st.Stats.TotalEnergyKWh,
			PeakQueueLength:    st.Stats.PeakQueueLength,
		})

		res.CityTotalSwaps += st.Stats.TotalSwaps
		res.CityLostSwaps += st.Stats.LostSwaps
		res.TotalEnergyKWh += st.Stats.TotalEnergyKWh
		totalWait += st.Stats.TotalWaitTime
		utilSum += util
		idleSum += idle
	}

	n := float64(len(o.stations))
	if res.CityTotalSwaps > 0 {
		res.CityAvgWaitTime = totalWait / float64(res.CityTotalSwaps)
	}
	res.CityThroughputPerHour = float64(res.CityTotalSwaps) / (float64(o.cfg.DurationDays) * 24)
	res.AvgChargerUtilization = utilSum / n
	res.AvgIdleInventoryPct = idleSum / n

	opex := &model.OpexBreakdown{
		EnergyCost:       res.TotalEnergyKWh * energyCostPerKWh,
		DepreciationCost: float64(res.CityTotalSwaps) * depreciationPerSwap,
		LogisticsCost:    n * float64(o.cfg.DurationDays) * logisticsPerStationDay,
	}
	opex.Total = opex.EnergyCost + opex.DepreciationCost + opex.LogisticsCost
	res.OpexBreakdown = opex
	res.EstimatedOpexCost = opex.Total

	return res
}

// Audit checks the end-of-run bookkeeping: no station may track more
// batteries than it owns, hold more chargers than it has, or report a
// negative queue. Call after Run.
func (o *Orchestrator) Audit() error {
	for _, st := range o.stations {
		cfg := st.Config()
		tracked := st.AvailableBatteryCount() + st.ChargingBatteryCount()
		if tracked > cfg.TotalBatteries {
			return fmt.Errorf("%w: station %s tracks %d batteries, owns %d",
				ErrInvariant, st.ID, tracked, cfg.TotalBatteries)
		}
		if n := st.ActiveChargers(); n < 0 || n > cfg.ChargerCount {
			return fmt.Errorf("%w: station %s has %d active chargers of %d",
				ErrInvariant, st.ID, n, cfg.ChargerCount)
		}
		if st.QueueLength() < 0 {
			return fmt.Errorf("%w: station %s queue length is negative", ErrInvariant, st.ID)
		}
	}
	return nil
}

// Run is the one-call entry point: validate, simulate, audit, aggregate. It
// returns the result together with the full event trace.
func Run(cfg model.SimulationConfig, log *zap.Logger) (*model.SimulationResult, []model.Event, error) {
	o, err := NewOrchestrator(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	res := o.Run()
	if err := o.Audit(); err != nil {
		return nil, nil, err
	}
	return res, o.Events(), nil
}

// Compare runs a baseline and a scenario back to back on the same seed and
// attaches the delta block to the scenario result. The scenario's seed is
// forced to the baseline's so the two runs differ only in configuration.
func Compare(baseline, scenario model.SimulationConfig, log *zap.Logger) (*model.SimulationResult, *model.SimulationResult, error) {
	scenario.RandomSeed = baseline.RandomSeed

	baseRes, _, err := Run(baseline, log)
	if err != nil {
		return nil, nil, fmt.Errorf("baseline run: %w", err)
	}
	scenRes, _, err := Run(scenario, log)
	if err != nil {
		return nil, nil, fmt.Errorf("scenario run: %w", err)
	}
	scenRes.BaselineComparison = CompareResults(baseRes, scenRes)
	return baseRes, scenRes, nil
}

// CompareResults computes signed deltas of scenario against baseline.
// Percentage deltas use the baseline as denominator and are 0 when the
// baseline value is 0.
func CompareResults(base, scen *model.SimulationResult) *model.BaselineComparison {
	return &model.BaselineComparison{
		WaitTimeDeltaPct:    pctDelta(base.CityAvgWaitTime, scen.CityAvgWaitTime),
		LostSwapsDelta:      scen.CityLostSwaps - base.CityLostSwaps,
		ThroughputDeltaPct:  pctDelta(base.CityThroughputPerHour, scen.CityThroughputPerHour),
		OpexDelta:           scen.EstimatedOpexCost - base.EstimatedOpexCost,
		UtilizationDeltaPct: pctDelta(base.AvgChargerUtilization, scen.AvgChargerUtilization),
	}
}

func pctDelta(base, scen float64) float64 {
	if base == 0 {
		return 0
	}
	return (scen - base) / base * 100
}
