package config

import (
	"fmt"
	"os"
	"strconv"

	"battery-swap-sim/internal/model"

	"gopkg.in/yaml.v3"
)

// Server is the process-level configuration, read from the environment.
type Server struct {
	Port            string
	Env             string
	DBPath          string
	StationsFile    string
	DataDir         string
	MaxDurationDays int
}

// FromEnv reads server settings with sensible defaults.
func FromEnv() Server {
	s := Server{
		Port:            getenv("API_PORT", "8080"),
		Env:             getenv("APP_ENV", "development"),
		DBPath:          getenv("DB_PATH", "simulations.db"),
		StationsFile:    getenv("STATIONS_FILE", "stations.json"),
		DataDir:         getenv("DATA_DIR", "data"),
		MaxDurationDays: 30,
	}
	if v := os.Getenv("MAX_DURATION_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			s.MaxDurationDays = n
		}
	}
	return s
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// LoadScenario reads a simulation configuration from a YAML file, fills
// defaults and validates it.
func LoadScenario(path string) (*model.SimulationConfig, error) {
	c, err := LoadScenarioUnchecked(path)
	if err != nil {
		return nil, err
	}
	c.Normalize()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadScenarioUnchecked loads the YAML without normalizing or validating.
// Useful for printing partial configs while authoring scenarios.
func LoadScenarioUnchecked(path string) (*model.SimulationConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c model.SimulationConfig
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &c, nil
}

// ExampleSimulation returns a ready-to-run configuration that exercises the
// main knobs. Served by the API so clients can discover the request shape.
func ExampleSimulation() model.SimulationConfig {
	curve := make([]float64, 24)
	for h := range curve {
		switch {
		case h >= 7 && h <= 9:
			curve[h] = 25.0 // morning peak
		case h >= 17 && h <= 19:
			curve[h] = 30.0 // evening peak
		case h >= 0 && h <= 5:
			curve[h] = 3.0
		default:
			curve[h] = 12.0
		}
	}
	cfg := model.SimulationConfig{
		DurationDays:     1,
		RandomSeed:       42,
		DemandMultiplier: 1.0,
		Stations: []model.StationConfig{
			{
				ID:             "station_001",
				Name:           "Downtown Hub",
				Location:       model.Location{Lat: 31.2304, Lon: 121.4737},
				TotalBatteries: 24,
				ChargerCount:   6,
			},
			{
				ID:             "station_002",
				Name:           "Riverside",
				Location:       model.Location{Lat: 31.2397, Lon: 121.4990},
				TotalBatteries: 16,
				ChargerCount:   4,
			},
		},
		DemandCurve: model.DemandCurve{BaseArrivalsPerHour: curve},
	}
	cfg.Normalize()
	return cfg
}
