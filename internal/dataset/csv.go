// Package dataset provides training-row sources: a named-column CSV file and
// a Postgres table. Unknown extra columns are ignored by both; values that
// fail to parse become NaN so the cleaning stage drops them with a count.
package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/greencell/hydrozone/internal/domain"
)

// requiredColumns are the seven raw attribute columns plus the two targets.
var requiredColumns = []string{
	"renewable_proximity",
	"demand_proximity",
	"transport_score",
	"subsidy_score",
	"land_cost",
	"energy_cost",
	"efficiency_score",
	"cost_per_kg",
}

// CSVSource reads training rows from a CSV file with a header row.
type CSVSource struct {
	Path string
}

// Rows loads and parses every data row. A missing required column is
// domain.ErrInsufficientData.
func (s CSVSource) Rows(_ context.Context) ([]domain.TrainingRow, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%w: %s has no data rows", domain.ErrInsufficientData, s.Path)
	}

	colIdx := make(map[string]int, len(records[0]))
	for i, h := range records[0] {
		colIdx[h] = i
	}
	for _, col := range requiredColumns {
		if _, ok := colIdx[col]; !ok {
			return nil, fmt.Errorf("%w: column %q absent from %s", domain.ErrInsufficientData, col, s.Path)
		}
	}

	rows := make([]domain.TrainingRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		field := func(col string) float64 {
			return parseFloatOrNaN(rec[colIdx[col]])
		}
		rows = append(rows, domain.TrainingRow{
			SiteAttributes: domain.SiteAttributes{
				RenewableProximity: field("renewable_proximity"),
				DemandProximity:    field("demand_proximity"),
				TransportScore:     field("transport_score"),
				SubsidyScore:       field("subsidy_score"),
				LandCost:           field("land_cost"),
				EnergyCost:         field("energy_cost"),
			},
			EfficiencyScore: field("efficiency_score"),
			CostPerKg:       field("cost_per_kg"),
		})
	}
	return rows, nil
}

// parseFloatOrNaN parses a float, returning NaN for empty or malformed
// values so the row is later dropped as missing rather than aborting the run.
func parseFloatOrNaN(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
