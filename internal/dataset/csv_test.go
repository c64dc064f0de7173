package dataset

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greencell/hydrozone/internal/domain"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dataset.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const header = "renewable_proximity,demand_proximity,transport_score,subsidy_score,land_cost,energy_cost,efficiency_score,cost_per_kg"

func TestCSVSource_Rows(t *testing.T) {
	path := writeCSV(t, header+"\n"+
		"0.8,0.6,0.7,0.5,1200000,0.12,0.75,2.4\n"+
		"0.3,0.9,0.4,0.2,900000,0.08,0.55,3.1\n")

	rows, err := CSVSource{Path: path}.Rows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 0.8, rows[0].RenewableProximity)
	assert.Equal(t, 0.12, rows[0].EnergyCost)
	assert.Equal(t, 0.75, rows[0].EfficiencyScore)
	assert.Equal(t, 3.1, rows[1].CostPerKg)
}

func TestCSVSource_ExtraColumnsIgnored(t *testing.T) {
	path := writeCSV(t, "site_id,"+header+",notes\n"+
		"s-1,0.8,0.6,0.7,0.5,1200000,0.12,0.75,2.4,coastal\n")

	rows, err := CSVSource{Path: path}.Rows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 0.8, rows[0].RenewableProximity)
	assert.Equal(t, 2.4, rows[0].CostPerKg)
}

func TestCSVSource_MissingRequiredColumn(t *testing.T) {
	path := writeCSV(t, "renewable_proximity,demand_proximity\n0.8,0.6\n")

	_, err := CSVSource{Path: path}.Rows(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientData)
	assert.Contains(t, err.Error(), "transport_score")
}

func TestCSVSource_MalformedValueBecomesNaN(t *testing.T) {
	path := writeCSV(t, header+"\n"+
		"0.8,oops,0.7,0.5,1200000,0.12,0.75,2.4\n")

	rows, err := CSVSource{Path: path}.Rows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, math.IsNaN(rows[0].DemandProximity))

	// The cleaning stage treats NaN as a missing value and drops the row.
	kept := domain.CleanRows(rows, discardLogger())
	assert.Empty(t, kept)
}

func TestCSVSource_NoDataRows(t *testing.T) {
	path := writeCSV(t, header+"\n")

	_, err := CSVSource{Path: path}.Rows(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientData)
}

func TestCSVSource_FileNotFound(t *testing.T) {
	_, err := CSVSource{Path: filepath.Join(t.TempDir(), "nope.csv")}.Rows(context.Background())

	require.Error(t, err)
}
