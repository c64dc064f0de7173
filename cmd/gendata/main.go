// Command gendata writes a synthetic labeled site dataset as CSV, suitable as
// input to the train command. Targets are linear in the site attributes with a
// small amount of noise so fitted models recover a known signal.
//
// Usage:
//
//	go run ./cmd/gendata -out data/sites.csv -rows 500 -seed 1
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "data/sites.csv", "output CSV path")
	rows := flag.Int("rows", 500, "number of rows to generate")
	seed := flag.Int64("seed", 1, "random seed")
	flag.Parse()

	if *rows < 2 {
		return fmt.Errorf("-rows must be at least 2, got %d", *rows)
	}

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	f, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"renewable_proximity", "demand_proximity", "transport_score",
		"subsidy_score", "land_cost", "energy_cost",
		"efficiency_score", "cost_per_kg",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(*seed))
	for i := 0; i < *rows; i++ {
		renewable := rng.Float64()
		demand := rng.Float64()
		transport := rng.Float64()
		subsidy := rng.Float64()
		land := 500_000 + rng.Float64()*2_500_000
		energy := 0.05 + rng.Float64()*0.20

		efficiency := clamp01(0.15 + 0.35*renewable + 0.20*demand + 0.15*transport +
			0.10*subsidy + rng.NormFloat64()*0.02)
		cost := 1.0 + land/2_000_000 + energy*8 - 0.8*subsidy + rng.NormFloat64()*0.05
		if cost < 0.5 {
			cost = 0.5
		}

		rec := []string{
			formatFloat(renewable),
			formatFloat(demand),
			formatFloat(transport),
			formatFloat(subsidy),
			formatFloat(land),
			formatFloat(energy),
			formatFloat(efficiency),
			formatFloat(cost),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write dataset: %w", err)
	}

	fmt.Printf("wrote %d rows to %s\n", *rows, *out)
	return nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
