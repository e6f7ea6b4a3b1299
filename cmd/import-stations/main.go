package main

import (
	"flag"
	"fmt"
	"os"

	"battery-swap-sim/internal/data"
	"battery-swap-sim/internal/logging"
)

// Converts partner CSV exports into the stations.json fleet file the server
// falls back to when no CSV data directory is configured.
func main() {
	var (
		dataDir    = flag.String("data", "data", "Directory with partners.csv and history exports")
		outputPath = flag.String("output", "stations.json", "Output stations file")
	)
	flag.Parse()

	log := logging.New("development")
	net, err := data.LoadNetwork(*dataDir, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	if len(net.Stations) == 0 {
		fmt.Fprintf(os.Stderr, "no stations found in %s\n", *dataDir)
		os.Exit(1)
	}

	if err := data.SaveStations(*outputPath, net.Stations); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	fmt.Printf("Wrote %d stations to %s\n", len(net.Stations), *outputPath)
	for _, s := range net.Stations {
		fmt.Printf("  %-16s %-24s batteries=%-3d chargers=%-2d status=%s mean_arrival=%.1fmin\n",
			s.ID, s.Name, s.TotalBatteries, s.ChargerCount, s.Status, net.MeanArrival(s.ID))
	}
}
