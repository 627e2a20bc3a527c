// Command hydronet-run is the headless quick-test path: run one
// simulation against an existing INP file and export pressure and
// flowrate CSVs, no web UI or database involved.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"hydronet/internal/results"
	"hydronet/internal/sim"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, finding env vars from system")
	}

	inpPath := flag.String("inp", "sample_network.inp", "EPANET input file to simulate")
	prefix := flag.String("prefix", "test_", "prefix for exported CSV files")
	outDir := flag.String("out", ".", "directory for exported CSV files")
	flag.Parse()

	if _, err := os.Stat(*inpPath); err != nil {
		log.Fatalf("Input file '%s' not found. Please generate or provide it before running.", *inpPath)
	}

	log.Printf("Running EPANET simulation for %s...", *inpPath)

	runner := sim.NewRunner()
	info := &sim.RunInfo{Dir: filepath.Dir(*inpPath), InpPath: *inpPath}
	rs, err := runner.RunFile(context.Background(), info)
	if err != nil {
		log.Fatalf("Simulation failed: %v", err)
	}

	fmt.Println("\n--- Pressure Summary (m) ---")
	printSummary(rs.Pressure)
	fmt.Println("\n--- Flowrate Summary (m3/s) ---")
	printSummary(rs.Flow)

	pressurePath, flowPath, err := results.ExportCSV(rs, *outDir, *prefix)
	if err != nil {
		log.Fatalf("Export failed: %v", err)
	}

	fmt.Println("\nResults exported successfully:")
	fmt.Printf("Pressure data -> %s\n", pressurePath)
	fmt.Printf("Flowrate data -> %s\n", flowPath)

	for _, w := range info.Warnings {
		fmt.Printf("warning: %s\n", w)
	}
}

func printSummary(ts *results.TimeSeries) {
	fmt.Printf("%-12s %10s %10s %10s\n", "id", "min", "max", "mean")
	for _, id := range ts.IDs {
		st, ok := ts.ColumnStats(id)
		if !ok {
			continue
		}
		fmt.Printf("%-12s %10.3f %10.3f %10.3f\n", id, st.Min, st.Max, st.Mean)
	}
}
