package model

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig marks configuration errors raised before a run starts.
// Wrap with fmt.Errorf("...: %w", ErrInvalidConfig) and test with errors.Is.
var ErrInvalidConfig = errors.New("invalid config")

// Location is a geographic coordinate pair.
type Location struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
}

// BatteryConfig defines the per-unit battery parameters of a station.
type BatteryConfig struct {
	CapacityKWh       float64 `json:"capacity_kwh" yaml:"capacity_kwh"`
	MinSwapSoC        float64 `json:"min_swap_soc" yaml:"min_swap_soc"`
	MaxSoC            float64 `json:"max_soc" yaml:"max_soc"`
	DegradationFactor float64 `json:"degradation_factor" yaml:"degradation_factor"`
}

// StationConfig is the immutable description of one swap station.
type StationConfig struct {
	ID               string        `json:"id" yaml:"id"`
	Name             string        `json:"name" yaml:"name"`
	Location         Location      `json:"location" yaml:"location"`
	TotalBatteries   int           `json:"total_batteries" yaml:"total_batteries"`
	ChargerCount     int           `json:"charger_count" yaml:"charger_count"`
	ChargePowerKW    float64       `json:"charge_power_kw" yaml:"charge_power_kw"`
	SwapTimeSeconds  int           `json:"swap_time_seconds" yaml:"swap_time_seconds"`
	GridPowerLimitKW *float64      `json:"grid_power_limit_kw,omitempty" yaml:"grid_power_limit_kw,omitempty"`
	CooldownSeconds  int           `json:"cooldown_seconds" yaml:"cooldown_seconds"`
	Battery          BatteryConfig `json:"battery_config" yaml:"battery_config"`
	Type             string        `json:"type" yaml:"type"`     // CORE or SCENARIO
	Status           string        `json:"status" yaml:"status"` // ACTIVE, INACTIVE, MAINTENANCE
}

// CalibrationParams tune the simulation toward observed behavior.
type CalibrationParams struct {
	ParkingDelayRange      [2]float64 `json:"parking_delay_range" yaml:"parking_delay_range"`
	ChargeEfficiencyFactor float64    `json:"charge_efficiency_factor" yaml:"charge_efficiency_factor"`
	ArrivalJitterStd       float64    `json:"arrival_jitter_std" yaml:"arrival_jitter_std"`
}

// DemandCurve maps hour-of-day to a base arrival rate, with optional sparse
// per-hour multiplier overrides.
type DemandCurve struct {
	BaseArrivalsPerHour []float64       `json:"base_arrivals_per_hour" yaml:"base_arrivals_per_hour"`
	Multipliers         map[int]float64 `json:"multipliers,omitempty" yaml:"multipliers,omitempty"`
}

// Rate returns arrivals/hour for the given simulated hour. Both the base
// curve and the multiplier overrides are keyed by hour-of-day.
func (d *DemandCurve) Rate(hour int) float64 {
	if len(d.BaseArrivalsPerHour) == 0 {
		return 0
	}
	h := ((hour % 24) + 24) % 24
	base := d.BaseArrivalsPerHour[h]
	if m, ok := d.Multipliers[h]; ok {
		return base * m
	}
	return base
}

// InterventionType enumerates scenario interventions.
type InterventionType string

const (
	AddStation       InterventionType = "ADD_STATION"
	RemoveStation    InterventionType = "REMOVE_STATION"
	ModifyChargers   InterventionType = "MODIFY_CHARGERS"
	ModifyInventory  InterventionType = "MODIFY_INVENTORY"
	DemandMultiplier InterventionType = "DEMAND_MULTIPLIER"
	PolicyChange     InterventionType = "POLICY_CHANGE"
	InjectFault      InterventionType = "INJECT_FAULT"
)

// Intervention is one declarative mutation applied before a run.
type Intervention struct {
	Type            InterventionType `json:"type" yaml:"type"`
	TargetStationID string           `json:"target_station_id,omitempty" yaml:"target_station_id,omitempty"`
	Parameters      map[string]any   `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// requiredParams lists the parameter keys each intervention type must carry.
var requiredParams = map[InterventionType][]string{
	AddStation:       {"id", "location", "charger_count", "total_batteries"},
	RemoveStation:    {},
	ModifyChargers:   {"new_count"},
	ModifyInventory:  {"delta"},
	DemandMultiplier: {"multiplier"},
	PolicyChange:     {"policy_name", "new_value"},
	InjectFault:      {"fault_type", "duration_seconds"},
}

// needsTarget lists intervention types that require target_station_id.
var needsTarget = map[InterventionType]bool{
	RemoveStation:   true,
	ModifyChargers:  true,
	ModifyInventory: true,
	InjectFault:     true,
}

// Validate checks the intervention shape without applying it.
func (iv *Intervention) Validate() error {
	req, ok := requiredParams[iv.Type]
	if !ok {
		return fmt.Errorf("%w: unknown intervention type %q", ErrInvalidConfig, iv.Type)
	}
	if needsTarget[iv.Type] && iv.TargetStationID == "" {
		return fmt.Errorf("%w: %s requires target_station_id", ErrInvalidConfig, iv.Type)
	}
	for _, p := range req {
		if _, ok := iv.Parameters[p]; !ok {
			return fmt.Errorf("%w: %s requires parameter %q", ErrInvalidConfig, iv.Type, p)
		}
	}
	if iv.Type == ModifyChargers {
		if n, ok := NumParam(iv.Parameters, "new_count"); ok && n < 1 {
			return fmt.Errorf("%w: MODIFY_CHARGERS new_count must be >= 1", ErrInvalidConfig)
		}
	}
	return nil
}

// ScenarioConfig describes a what-if experiment.
type ScenarioConfig struct {
	Name              string          `json:"name" yaml:"name"`
	Description       string          `json:"description,omitempty" yaml:"description,omitempty"`
	BaseScenarioID    string          `json:"base_scenario_id,omitempty" yaml:"base_scenario_id,omitempty"`
	Interventions     []Intervention  `json:"interventions,omitempty" yaml:"interventions,omitempty"`
	DemandAdjustments map[int]float64 `json:"demand_adjustments,omitempty" yaml:"demand_adjustments,omitempty"`
}

// SimulationConfig is the full input to one run.
type SimulationConfig struct {
	DurationDays     int               `json:"duration_days" yaml:"duration_days"`
	RandomSeed       int64             `json:"random_seed" yaml:"random_seed"`
	DemandMultiplier float64           `json:"demand_multiplier" yaml:"demand_multiplier"`
	Stations         []StationConfig   `json:"stations" yaml:"stations"`
	DemandCurve      DemandCurve       `json:"demand_curve" yaml:"demand_curve"`
	Calibration      CalibrationParams `json:"calibration" yaml:"calibration"`
	Scenario         *ScenarioConfig   `json:"scenario,omitempty" yaml:"scenario,omitempty"`
	// UseRealNetwork swaps the configured stations for the ones returned by
	// the real-network loader (when the server has one configured).
	UseRealNetwork bool `json:"use_real_network,omitempty" yaml:"use_real_network,omitempty"`
}

// HorizonSeconds is the simulated duration in seconds.
func (c *SimulationConfig) HorizonSeconds() float64 {
	return float64(c.DurationDays) * 86400
}

// Normalize fills defaults for omitted fields. Call before Validate.
func (c *SimulationConfig) Normalize() {
	if c.DurationDays == 0 {
		c.DurationDays = 1
	}
	if c.DemandMultiplier == 0 {
		c.DemandMultiplier = 1.0
	}
	if len(c.DemandCurve.BaseArrivalsPerHour) == 0 {
		flat := make([]float64, 24)
		for i := range flat {
			flat[i] = 10.0
		}
		c.DemandCurve.BaseArrivalsPerHour = flat
	}
	for i := range c.Stations {
		c.Stations[i].ApplyDefaults()
	}
}

// ApplyDefaults fills zero-valued station fields. Also used on stations
// introduced by ADD_STATION interventions.
func (s *StationConfig) ApplyDefaults() {
	if s.Name == "" && s.ID != "" {
		s.Name = "Station " + s.ID
	}
	if s.TotalBatteries == 0 {
		s.TotalBatteries = 20
	}
	if s.ChargerCount == 0 {
		s.ChargerCount = 4
	}
	if s.ChargePowerKW == 0 {
		s.ChargePowerKW = 60.0
	}
	if s.SwapTimeSeconds == 0 {
		s.SwapTimeSeconds = 90
	}
	if s.Battery.CapacityKWh == 0 {
		s.Battery.CapacityKWh = 5.0
	}
	if s.Battery.MinSwapSoC == 0 {
		s.Battery.MinSwapSoC = 95.0
	}
	if s.Battery.MaxSoC == 0 {
		s.Battery.MaxSoC = 100.0
	}
	if s.Type == "" {
		s.Type = "SCENARIO"
	}
	if s.Status == "" {
		s.Status = "ACTIVE"
	}
}

// Validate checks the whole configuration. All violations return errors
// wrapping ErrInvalidConfig; nothing is scheduled before this passes.
func (c *SimulationConfig) Validate() error {
	if c.DurationDays < 1 || c.DurationDays > 30 {
		return fmt.Errorf("%w: duration_days must be in [1,30], got %d", ErrInvalidConfig, c.DurationDays)
	}
	if c.RandomSeed < 0 {
		return fmt.Errorf("%w: random_seed must be >= 0", ErrInvalidConfig)
	}
	if c.DemandMultiplier <= 0 || c.DemandMultiplier > 10 {
		return fmt.Errorf("%w: demand_multiplier must be in (0,10], got %g", ErrInvalidConfig, c.DemandMultiplier)
	}
	if len(c.Stations) == 0 {
		return fmt.Errorf("%w: at least one station is required", ErrInvalidConfig)
	}
	seen := make(map[string]bool, len(c.Stations))
	for i := range c.Stations {
		s := &c.Stations[i]
		if err := s.Validate(); err != nil {
			return err
		}
		if seen[s.ID] {
			return fmt.Errorf("%w: duplicate station id %q", ErrInvalidConfig, s.ID)
		}
		seen[s.ID] = true
	}
	if len(c.DemandCurve.BaseArrivalsPerHour) != 24 {
		return fmt.Errorf("%w: demand_curve needs exactly 24 hourly rates, got %d",
			ErrInvalidConfig, len(c.DemandCurve.BaseArrivalsPerHour))
	}
	for h, r := range c.DemandCurve.BaseArrivalsPerHour {
		if r < 0 {
			return fmt.Errorf("%w: demand_curve rate for hour %d is negative", ErrInvalidConfig, h)
		}
	}
	if c.Scenario != nil {
		for i := range c.Scenario.Interventions {
			if err := c.Scenario.Interventions[i].Validate(); err != nil {
				return err
			}
		}
	}
	return nil
}

// Validate checks a single station's parameters.
func (s *StationConfig) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("%w: station id is required", ErrInvalidConfig)
	}
	if s.TotalBatteries < 1 {
		return fmt.Errorf("%w: station %s: total_batteries must be >= 1", ErrInvalidConfig, s.ID)
	}
	if s.ChargerCount < 1 {
		return fmt.Errorf("%w: station %s: charger_count must be >= 1", ErrInvalidConfig, s.ID)
	}
	if s.ChargePowerKW <= 0 {
		return fmt.Errorf("%w: station %s: charge_power_kw must be > 0", ErrInvalidConfig, s.ID)
	}
	if s.SwapTimeSeconds < 30 {
		return fmt.Errorf("%w: station %s: swap_time_seconds must be >= 30", ErrInvalidConfig, s.ID)
	}
	if s.CooldownSeconds < 0 {
		return fmt.Errorf("%w: station %s: cooldown_seconds must be >= 0", ErrInvalidConfig, s.ID)
	}
	if s.GridPowerLimitKW != nil && *s.GridPowerLimitKW <= 0 {
		return fmt.Errorf("%w: station %s: grid_power_limit_kw must be > 0", ErrInvalidConfig, s.ID)
	}
	if s.Battery.CapacityKWh <= 0 {
		return fmt.Errorf("%w: station %s: battery capacity_kwh must be > 0", ErrInvalidConfig, s.ID)
	}
	if s.Battery.MinSwapSoC < 80 || s.Battery.MinSwapSoC > 100 {
		return fmt.Errorf("%w: station %s: min_swap_soc must be in [80,100]", ErrInvalidConfig, s.ID)
	}
	if s.Location.Lat < -90 || s.Location.Lat > 90 || s.Location.Lon < -180 || s.Location.Lon > 180 {
		return fmt.Errorf("%w: station %s: location out of range", ErrInvalidConfig, s.ID)
	}
	return nil
}

// NumParam reads a numeric intervention parameter. JSON decoding yields
// float64, YAML yields int or float64.
func NumParam(m map[string]any, key string) (float64, bool) {
	v, ok := m[key]
	if !ok || v == nil {
		return 0, false
	}
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint64:
		return float64(x), true
	default:
		return 0, false
	}
}

// StrParam reads a string intervention parameter.
func StrParam(m map[string]any, key string) (string, bool) {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s, true
		}
	}
	return "", false
}

// LocParam reads a [lat, lon] pair from an intervention parameter.
func LocParam(m map[string]any, key string) (Location, bool) {
	v, ok := m[key]
	if !ok {
		return Location{}, false
	}
	pair, ok := v.([]any)
	if !ok || len(pair) != 2 {
		return Location{}, false
	}
	lat, ok1 := toFloat(pair[0])
	lon, ok2 := toFloat(pair[1])
	if !ok1 || !ok2 {
		return Location{}, false
	}
	return Location{Lat: lat, Lon: lon}, true
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	default:
		return 0, false
	}
}
