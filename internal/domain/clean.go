package domain

import (
	"log/slog"
	"math"
)

// CleanRows drops rows with missing (NaN) values or attribute values outside
// the stated range invariants, logging how many rows were removed and why.
// The returned slice preserves the input order of the surviving rows.
func CleanRows(rows []TrainingRow, logger *slog.Logger) []TrainingRow {
	kept := make([]TrainingRow, 0, len(rows))
	var missing, outOfRange int

	for _, row := range rows {
		switch {
		case hasMissing(row):
			missing++
		case !inRange(row):
			outOfRange++
		default:
			kept = append(kept, row)
		}
	}

	if missing > 0 || outOfRange > 0 {
		logger.Warn("dropped invalid training rows",
			"total", len(rows),
			"missing_values", missing,
			"out_of_range", outOfRange,
			"kept", len(kept),
		)
	}
	return kept
}

func hasMissing(r TrainingRow) bool {
	for _, v := range []float64{
		r.RenewableProximity, r.DemandProximity, r.TransportScore,
		r.SubsidyScore, r.LandCost, r.EnergyCost,
		r.EfficiencyScore, r.CostPerKg,
	} {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

func inRange(r TrainingRow) bool {
	ratios := []float64{r.RenewableProximity, r.DemandProximity, r.TransportScore, r.SubsidyScore}
	for _, v := range ratios {
		if v < 0 || v > 1 {
			return false
		}
	}
	return r.LandCost > 0 && r.EnergyCost > 0 && r.CostPerKg > 0
}
