package analysis

import (
	"sort"

	"battery-swap-sim/internal/model"
)

// StationRanking is one row of the bottleneck report.
type StationRanking struct {
	Rank               int     `json:"rank"`
	StationID          string  `json:"station_id"`
	LostSwaps          int     `json:"lost_swaps"`
	LostSwapRate       float64 `json:"lost_swap_rate"`
	AvgWaitTimeSeconds float64 `json:"avg_wait_time_seconds"`
	ChargerUtilization float64 `json:"charger_utilization"`
}

// RankByLostSwaps orders stations by how much demand they turned away,
// worst first. Ties break on average wait time.
func RankByLostSwaps(kpis []model.StationKPI) []StationRanking {
	out := make([]StationRanking, 0, len(kpis))
	for _, k := range kpis {
		rate := 0.0
		if total := k.TotalSwaps + k.LostSwaps; total > 0 {
			rate = float64(k.LostSwaps) / float64(total)
		}
		out = append(out, StationRanking{
			StationID:          k.StationID,
			LostSwaps:          k.LostSwaps,
			LostSwapRate:       rate,
			AvgWaitTimeSeconds: k.AvgWaitTimeSeconds,
			ChargerUtilization: k.ChargerUtilization,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LostSwaps != out[j].LostSwaps {
			return out[i].LostSwaps > out[j].LostSwaps
		}
		return out[i].AvgWaitTimeSeconds > out[j].AvgWaitTimeSeconds
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}
