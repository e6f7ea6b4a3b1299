package main

import (
	"battery-swap-sim/internal/api"
	"battery-swap-sim/internal/config"
	"battery-swap-sim/internal/data"
	"battery-swap-sim/internal/logging"
	"battery-swap-sim/internal/store"

	"go.uber.org/zap"
)

func main() {
	cfg := config.FromEnv()
	log := logging.New(cfg.Env)
	defer log.Sync()

	st, err := store.New(cfg.DBPath, log)
	if err != nil {
		log.Warn("store_unavailable", zap.String("path", cfg.DBPath), zap.Error(err))
		st = nil
	}

	net, err := data.LoadNetwork(cfg.DataDir, log)
	if err != nil {
		log.Warn("network_data_unavailable", zap.String("dir", cfg.DataDir), zap.Error(err))
		net = nil
	}
	// Fall back to a stations.json fleet when no CSV exports are present.
	if net == nil || len(net.Stations) == 0 {
		if stations, err := data.LoadStations(cfg.StationsFile); err == nil {
			if net == nil {
				net = &data.Network{MeanArrivalMinutes: map[string]float64{}}
			}
			net.Stations = stations
			log.Info("stations_loaded_from_file",
				zap.String("path", cfg.StationsFile),
				zap.Int("stations", len(stations)),
			)
		}
	}

	router := api.NewRouter(cfg, st, net, log)

	addr := ":" + cfg.Port
	log.Info("server_starting", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := router.Run(addr); err != nil {
		log.Fatal("server_failed", zap.Error(err))
	}
}
