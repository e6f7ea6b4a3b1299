package sim

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"strconv"

	"battery-swap-sim/internal/model"
)

// WriteEventsCSV dumps an event trace to a CSV file. Event metadata is
// serialized as a JSON column so all event types fit one schema.
func WriteEventsCSV(path string, events []model.Event) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"sim_time",
		"event_type",
		"entity_id",
		"meta",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, e := range events {
		meta := ""
		if e.Meta != nil {
			raw, err := json.Marshal(e.Meta)
			if err != nil {
				return err
			}
			meta = string(raw)
		}
		row := []string{
			fmtFloat(e.SimTime),
			string(e.Type),
			e.EntityID,
			meta,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

// WriteStationKPIsCSV dumps per-station KPIs to a CSV file.
func WriteStationKPIsCSV(path string, kpis []model.StationKPI) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"station_id",
		"total_swaps",
		"lost_swaps",
		"avg_wait_time_seconds",
		"max_wait_time_seconds",
		"charger_utilization",
		"idle_inventory_pct",
		"total_energy_kwh",
		"peak_queue_length",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, k := range kpis {
		row := []string{
			k.StationID,
			strconv.Itoa(k.TotalSwaps),
			strconv.Itoa(k.LostSwaps),
			fmtFloat(k.AvgWaitTimeSeconds),
			fmtFloat(k.MaxWaitTimeSeconds),
			fmtFloat(k.ChargerUtilization),
			fmtFloat(k.IdleInventoryPct),
			fmtFloat(k.TotalEnergyKWh),
			strconv.Itoa(k.PeakQueueLength),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
