package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"battery-swap-sim/internal/model"

	"go.uber.org/zap"
)

// defaultMeanArrivalMin is assumed for stations with no usable swap history.
const defaultMeanArrivalMin = 10.0

// Network is the real station fleet reconstructed from operational CSV
// exports: the partner list plus whatever swap and charging history exists.
type Network struct {
	Stations []model.StationConfig

	// MeanArrivalMinutes maps station id to the observed mean interval
	// between swaps, in minutes.
	MeanArrivalMinutes map[string]float64
}

// MeanArrival returns the observed mean inter-arrival interval for a station,
// falling back to the network-wide default.
func (n *Network) MeanArrival(stationID string) float64 {
	if m, ok := n.MeanArrivalMinutes[stationID]; ok && m > 0 {
		return m
	}
	return defaultMeanArrivalMin
}

// LoadNetwork reads partners.csv, battery_logs.csv and charging_events.csv
// from dir. Only partners.csv is required; history files refine the result
// when present. A missing partners.csv yields an empty network rather than
// an error so the server can start without data.
func LoadNetwork(dir string, log *zap.Logger) (*Network, error) {
	net := &Network{MeanArrivalMinutes: map[string]float64{}}

	stations, err := loadPartners(filepath.Join(dir, "partners.csv"))
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn("partners_file_missing", zap.String("dir", dir))
			return net, nil
		}
		return nil, err
	}
	net.Stations = stations

	if arrivals, err := loadSwapIntervals(filepath.Join(dir, "battery_logs.csv")); err == nil {
		net.MeanArrivalMinutes = arrivals
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	if power, err := loadChargePower(filepath.Join(dir, "charging_events.csv")); err == nil {
		for i := range net.Stations {
			if p, ok := power[net.Stations[i].ID]; ok && p > 0 {
				net.Stations[i].ChargePowerKW = p
			}
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	log.Info("network_loaded",
		zap.Int("stations", len(net.Stations)),
		zap.Int("stations_with_history", len(net.MeanArrivalMinutes)),
	)
	return net, nil
}

// loadPartners parses the partner station export:
// id,name,lat,lon,total_batteries,charger_count
func loadPartners(path string) ([]model.StationConfig, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	var stations []model.StationConfig
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		if len(row) < 6 {
			return nil, fmt.Errorf("%s row %d: want 6 columns, got %d", path, i+1, len(row))
		}
		lat, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: lat: %w", path, i+1, err)
		}
		lon, err := strconv.ParseFloat(row[3], 64)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: lon: %w", path, i+1, err)
		}
		batteries, err := strconv.Atoi(row[4])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: total_batteries: %w", path, i+1, err)
		}
		chargers, err := strconv.Atoi(row[5])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: charger_count: %w", path, i+1, err)
		}

		s := model.StationConfig{
			ID:             row[0],
			Name:           row[1],
			Location:       model.Location{Lat: lat, Lon: lon},
			TotalBatteries: batteries,
			ChargerCount:   chargers,
			Type:           "CORE",
			Status:         stationStatus(batteries),
		}
		s.ApplyDefaults()
		stations = append(stations, s)
	}
	return stations, nil
}

// stationStatus derives an operational status from the inventory count: an
// empty rack means the partner is offline, a thin one means it is being
// serviced.
func stationStatus(batteries int) string {
	switch {
	case batteries == 0:
		return "INACTIVE"
	case batteries < 5:
		return "MAINTENANCE"
	default:
		return "ACTIVE"
	}
}

// loadSwapIntervals parses the swap history (station_id,swapped_at) and
// returns per-station mean inter-arrival minutes. Stations with fewer than
// two records are skipped.
func loadSwapIntervals(path string) (map[string]float64, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	times := map[string][]time.Time{}
	for i, row := range rows {
		if i == 0 || len(row) < 2 {
			continue
		}
		t, err := time.Parse(time.RFC3339, row[1])
		if err != nil {
			// Operational exports mix formats; tolerate the common one.
			t, err = time.Parse("2006-01-02 15:04:05", row[1])
			if err != nil {
				continue
			}
		}
		times[row[0]] = append(times[row[0]], t)
	}

	out := map[string]float64{}
	for id, ts := range times {
		if len(ts) < 2 {
			continue
		}
		sort.Slice(ts, func(i, j int) bool { return ts[i].Before(ts[j]) })
		total := ts[len(ts)-1].Sub(ts[0]).Minutes()
		if total <= 0 {
			continue
		}
		out[id] = total / float64(len(ts)-1)
	}
	return out, nil
}

// loadChargePower parses the charging history (station_id,power_kw,...) and
// returns the mean observed charge power per station.
func loadChargePower(path string) (map[string]float64, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	sums := map[string]float64{}
	counts := map[string]int{}
	for i, row := range rows {
		if i == 0 || len(row) < 2 {
			continue
		}
		p, err := strconv.ParseFloat(row[1], 64)
		if err != nil || p <= 0 {
			continue
		}
		sums[row[0]] += p
		counts[row[0]]++
	}

	out := map[string]float64{}
	for id, sum := range sums {
		out[id] = sum / float64(counts[id])
	}
	return out, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var rows [][]string
	for {
		row, err := r.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		rows = append(rows, row)
	}
}
