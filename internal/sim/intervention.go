package sim

import (
	"fmt"

	"battery-swap-sim/internal/model"
)

// ApplyInterventions maps the base station set plus a scenario to the
// effective station set, applying interventions in order. It is pure: the
// input slice is never mutated. The second return value is the folded
// DEMAND_MULTIPLIER product, applied by the arrival generator at run time.
// POLICY_CHANGE and INJECT_FAULT are validated but intentionally inert.
func ApplyInterventions(base []model.StationConfig, scenario *model.ScenarioConfig) ([]model.StationConfig, float64, error) {
	stations := make([]model.StationConfig, len(base))
	copy(stations, base)
	demandMult := 1.0

	if scenario == nil {
		return stations, demandMult, nil
	}

	for i := range scenario.Interventions {
		iv := &scenario.Interventions[i]
		if err := iv.Validate(); err != nil {
			return nil, 0, err
		}

		switch iv.Type {
		case model.AddStation:
			id, _ := model.StrParam(iv.Parameters, "id")
			if id == "" {
				return nil, 0, fmt.Errorf("%w: ADD_STATION id must be a non-empty string", model.ErrInvalidConfig)
			}
			loc, ok := model.LocParam(iv.Parameters, "location")
			if !ok {
				return nil, 0, fmt.Errorf("%w: ADD_STATION location must be [lat, lon]", model.ErrInvalidConfig)
			}
			batteries, _ := model.NumParam(iv.Parameters, "total_batteries")
			chargers, _ := model.NumParam(iv.Parameters, "charger_count")
			cfg := model.StationConfig{
				ID:             id,
				Location:       loc,
				TotalBatteries: int(batteries),
				ChargerCount:   int(chargers),
			}
			if p, ok := model.NumParam(iv.Parameters, "charge_power_kw"); ok {
				cfg.ChargePowerKW = p
			}
			if t, ok := model.NumParam(iv.Parameters, "swap_time_seconds"); ok {
				cfg.SwapTimeSeconds = int(t)
			}
			if idx := indexOf(stations, id); idx >= 0 {
				stations[idx] = cfg
			} else {
				stations = append(stations, cfg)
			}

		case model.RemoveStation:
			// Silent no-op when the target does not exist.
			if idx := indexOf(stations, iv.TargetStationID); idx >= 0 {
				stations = append(stations[:idx], stations[idx+1:]...)
			}

		case model.ModifyChargers:
			n, _ := model.NumParam(iv.Parameters, "new_count")
			if idx := indexOf(stations, iv.TargetStationID); idx >= 0 {
				stations[idx].ChargerCount = int(n)
			}

		case model.ModifyInventory:
			delta, _ := model.NumParam(iv.Parameters, "delta")
			if idx := indexOf(stations, iv.TargetStationID); idx >= 0 {
				stations[idx].TotalBatteries += int(delta)
				if stations[idx].TotalBatteries < 1 {
					stations[idx].TotalBatteries = 1
				}
			}

		case model.DemandMultiplier:
			m, _ := model.NumParam(iv.Parameters, "multiplier")
			if m <= 0 {
				return nil, 0, fmt.Errorf("%w: DEMAND_MULTIPLIER multiplier must be > 0", model.ErrInvalidConfig)
			}
			demandMult *= m

		case model.PolicyChange, model.InjectFault:
			// Recognized but not applied.
		}
	}

	return stations, demandMult, nil
}

func indexOf(stations []model.StationConfig, id string) int {
	for i := range stations {
		if stations[i].ID == id {
			return i
		}
	}
	return -1
}
