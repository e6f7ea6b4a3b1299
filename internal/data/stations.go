package data

import (
	"encoding/json"
	"os"

	"battery-swap-sim/internal/model"
)

// LoadStations reads a station list from a JSON file.
func LoadStations(path string) ([]model.StationConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var stations []model.StationConfig
	if err := json.Unmarshal(raw, &stations); err != nil {
		return nil, err
	}
	for i := range stations {
		stations[i].ApplyDefaults()
	}
	return stations, nil
}

// SaveStations writes a station list as pretty-printed JSON.
func SaveStations(path string, stations []model.StationConfig) error {
	raw, err := json.MarshalIndent(stations, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}
