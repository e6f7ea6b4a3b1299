package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"battery-swap-sim/internal/analysis"
	"battery-swap-sim/internal/config"
	"battery-swap-sim/internal/logging"
	"battery-swap-sim/internal/sim"

	"go.uber.org/zap"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "run":
		cmdRun(os.Args[2:])
	case "compare":
		cmdCompare(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli run --config examples/scenario.yaml --out results/")
	fmt.Println("  cli compare --baseline examples/baseline.yaml --scenario examples/scenario.yaml")
	fmt.Println("")
	fmt.Println("notes:")
	fmt.Println("  - run writes station KPIs and the event trace as CSV under --out")
	fmt.Println("  - compare runs both configs on the baseline's seed and prints deltas")
}

func cmdRun(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Path to YAML simulation config")
	outDir := fs.String("out", "results", "Output directory for CSV files")
	quiet := fs.Bool("quiet", false, "Suppress structured logs")
	_ = fs.Parse(args)

	if *cfgPath == "" {
		fmt.Println("--config is required")
		os.Exit(2)
	}

	log := logging.New("development")
	if *quiet {
		log = zap.NewNop()
	}

	cfg, err := config.LoadScenario(*cfgPath)
	if err != nil {
		fatal(err)
	}

	res, events, err := sim.Run(*cfg, log)
	if err != nil {
		fatal(err)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fatal(err)
	}
	kpiPath := filepath.Join(*outDir, "station_kpis.csv")
	if err := sim.WriteStationKPIsCSV(kpiPath, res.StationKPIs); err != nil {
		fatal(err)
	}
	eventsPath := filepath.Join(*outDir, "events.csv")
	if err := sim.WriteEventsCSV(eventsPath, events); err != nil {
		fatal(err)
	}

	fmt.Printf("Run %s (%s) complete in %d ms\n", res.RunID, res.ScenarioName, res.ComputeTimeMs)
	fmt.Printf("  swaps=%d lost=%d avg_wait=%.1fs throughput=%.1f/h\n",
		res.CityTotalSwaps, res.CityLostSwaps, res.CityAvgWaitTime, res.CityThroughputPerHour)
	fmt.Printf("  energy=%.1f kWh opex=%.0f\n", res.TotalEnergyKWh, res.EstimatedOpexCost)
	fmt.Printf("Wrote %s and %s (%d events)\n", kpiPath, eventsPath, len(events))
}

func cmdCompare(args []string) {
	fs := flag.NewFlagSet("compare", flag.ExitOnError)
	basePath := fs.String("baseline", "", "Path to baseline YAML config")
	scenPath := fs.String("scenario", "", "Path to scenario YAML config")
	_ = fs.Parse(args)

	if *basePath == "" || *scenPath == "" {
		fmt.Println("--baseline and --scenario are required")
		os.Exit(2)
	}

	baseCfg, err := config.LoadScenario(*basePath)
	if err != nil {
		fatal(err)
	}
	scenCfg, err := config.LoadScenario(*scenPath)
	if err != nil {
		fatal(err)
	}

	baseRes, scenRes, err := sim.Compare(*baseCfg, *scenCfg, zap.NewNop())
	if err != nil {
		fatal(err)
	}

	fmt.Printf("baseline %-24s swaps=%d lost=%d wait=%.1fs opex=%.0f\n",
		baseRes.ScenarioName, baseRes.CityTotalSwaps, baseRes.CityLostSwaps,
		baseRes.CityAvgWaitTime, baseRes.EstimatedOpexCost)
	fmt.Printf("scenario %-24s swaps=%d lost=%d wait=%.1fs opex=%.0f\n",
		scenRes.ScenarioName, scenRes.CityTotalSwaps, scenRes.CityLostSwaps,
		scenRes.CityAvgWaitTime, scenRes.EstimatedOpexCost)

	bc := scenRes.BaselineComparison
	fmt.Printf("deltas: wait %+.1f%% lost %+d throughput %+.1f%% opex %+.0f utilization %+.1f%%\n",
		bc.WaitTimeDeltaPct, bc.LostSwapsDelta, bc.ThroughputDeltaPct, bc.OpexDelta, bc.UtilizationDeltaPct)

	fmt.Println("\nbottlenecks (scenario):")
	for _, r := range analysis.RankByLostSwaps(scenRes.StationKPIs) {
		fmt.Printf("  #%d %-16s lost=%d (%.1f%%) wait=%.1fs util=%.0f%%\n",
			r.Rank, r.StationID, r.LostSwaps, r.LostSwapRate*100,
			r.AvgWaitTimeSeconds, r.ChargerUtilization*100)
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
