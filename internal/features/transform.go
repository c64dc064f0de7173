// Package features holds the fitted scaling transform shared between the
// training and prediction pipelines. The transform is fitted exactly once,
// on the training distribution, and then held immutably: serving reloads the
// persisted parameters and never refits. Refitting on serving data would
// silently corrupt predictions, so there is no exported mutable fitting
// state; Fit returns an already-fitted Transform.
package features

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/greencell/hydrozone/internal/domain"
)

// EfficiencyFeatures names the ordered inputs of the efficiency model:
// the four ratio attributes, min-max scaled.
var EfficiencyFeatures = []string{
	"renewable_proximity",
	"demand_proximity",
	"transport_score",
	"subsidy_score",
}

// CostFeatures names the ordered inputs of the cost model: the two cost
// attributes standardized, then two raw ratio attributes passed through
// unscaled. The scaled/raw mix is part of the trained model's input
// contract and must not be "fixed".
var CostFeatures = []string{
	"land_cost_scaled",
	"energy_cost_scaled",
	"demand_proximity",
	"subsidy_score",
}

// State holds the serializable scaler parameters: min-max bounds for the four
// ratio columns (in EfficiencyFeatures order) and mean/std for the two cost
// columns (land_cost, energy_cost).
type State struct {
	RatioMin [4]float64 `json:"ratio_min"`
	RatioMax [4]float64 `json:"ratio_max"`
	CostMean [2]float64 `json:"cost_mean"`
	CostStd  [2]float64 `json:"cost_std"`
}

// Transform applies the fitted scalers to site attributes. A non-nil
// Transform is always fitted; the zero value is never exposed.
type Transform struct {
	state State
}

// Fit computes scaler parameters over the full row set: min-max over the four
// ratio columns and zero-mean/unit-variance over the two cost columns,
// independently. Population standard deviation matches the semantics the
// original artifacts were trained with.
func Fit(rows []domain.TrainingRow) (*Transform, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows to fit transform", domain.ErrInsufficientData)
	}

	var s State
	for i, col := range ratioColumns(rows) {
		s.RatioMin[i], s.RatioMax[i] = minMax(col)
	}
	for i, col := range costColumns(rows) {
		mean := stat.Mean(col, nil)
		s.CostMean[i] = mean
		// Population (biased) variance, via the second central moment.
		s.CostStd[i] = math.Sqrt(stat.MomentAbout(2, col, mean, nil))
	}
	return &Transform{state: s}, nil
}

// FromState rebuilds a fitted Transform from persisted parameters.
func FromState(s State) *Transform {
	return &Transform{state: s}
}

// State returns the fitted parameters for persistence.
func (t *Transform) State() State {
	return t.state
}

// ForEfficiency produces the efficiency model's input vector: the four ratio
// attributes in EfficiencyFeatures order, min-max scaled.
func (t *Transform) ForEfficiency(a domain.SiteAttributes) ([]float64, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: feature transform", domain.ErrNotFitted)
	}
	raw := [4]float64{a.RenewableProximity, a.DemandProximity, a.TransportScore, a.SubsidyScore}
	out := make([]float64, len(raw))
	for i, v := range raw {
		out[i] = t.scaleRatio(i, v)
	}
	return out, nil
}

// ForCost produces the cost model's input vector: standardized land and
// energy cost followed by raw demand_proximity and subsidy_score, in that
// exact order.
func (t *Transform) ForCost(a domain.SiteAttributes) ([]float64, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: feature transform", domain.ErrNotFitted)
	}
	return []float64{
		t.scaleCost(0, a.LandCost),
		t.scaleCost(1, a.EnergyCost),
		a.DemandProximity,
		a.SubsidyScore,
	}, nil
}

// scaleRatio applies min-max scaling. A zero-range column maps to 0.
func (t *Transform) scaleRatio(i int, v float64) float64 {
	span := t.state.RatioMax[i] - t.state.RatioMin[i]
	if span == 0 {
		return 0
	}
	return (v - t.state.RatioMin[i]) / span
}

// scaleCost applies standardization. A zero-variance column is centered only.
func (t *Transform) scaleCost(i int, v float64) float64 {
	centered := v - t.state.CostMean[i]
	if t.state.CostStd[i] == 0 {
		return centered
	}
	return centered / t.state.CostStd[i]
}

func ratioColumns(rows []domain.TrainingRow) [4][]float64 {
	var cols [4][]float64
	for i := range cols {
		cols[i] = make([]float64, len(rows))
	}
	for j, r := range rows {
		cols[0][j] = r.RenewableProximity
		cols[1][j] = r.DemandProximity
		cols[2][j] = r.TransportScore
		cols[3][j] = r.SubsidyScore
	}
	return cols
}

func costColumns(rows []domain.TrainingRow) [2][]float64 {
	var cols [2][]float64
	for i := range cols {
		cols[i] = make([]float64, len(rows))
	}
	for j, r := range rows {
		cols[0][j] = r.LandCost
		cols[1][j] = r.EnergyCost
	}
	return cols
}

func minMax(col []float64) (lo, hi float64) {
	lo, hi = col[0], col[0]
	for _, v := range col[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}
