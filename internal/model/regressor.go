// Package model wraps the opaque regressors behind fit/predict. The concrete
// algorithm is ordinary least squares with an intercept, solved on gonum
// matrices; any sufficiently accurate regressor satisfies the same contract.
package model

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/greencell/hydrozone/internal/domain"
)

// State is the serializable trained-model snapshot: the declared ordered
// input-feature list and the learned coefficients. The feature order at
// predict time must exactly match the order used during fit; persisting the
// list alongside the weights makes the contract checkable after reload.
type State struct {
	Features  []string  `json:"features"`
	Weights   []float64 `json:"weights"`
	Intercept float64   `json:"intercept"`
}

// Regressor is a trained linear model. A non-nil Regressor is always fitted.
type Regressor struct {
	state State
}

// Fit solves the least-squares problem for the given design matrix and
// targets. Requires more rows than features (plus intercept); anything less
// is ErrInsufficientData.
func Fit(featureNames []string, X [][]float64, y []float64) (*Regressor, error) {
	n, k := len(X), len(featureNames)
	if n != len(y) {
		return nil, fmt.Errorf("%w: %d rows but %d targets", domain.ErrInsufficientData, n, len(y))
	}
	if n <= k+1 {
		return nil, fmt.Errorf("%w: %d rows for %d features", domain.ErrInsufficientData, n, k)
	}

	// Design matrix with a trailing intercept column of ones.
	a := mat.NewDense(n, k+1, nil)
	for i, row := range X {
		if len(row) != k {
			return nil, fmt.Errorf("%w: row %d has %d features, want %d", domain.ErrInsufficientData, i, len(row), k)
		}
		for j, v := range row {
			a.Set(i, j, v)
		}
		a.Set(i, k, 1)
	}

	b := mat.NewVecDense(n, append([]float64(nil), y...))
	var sol mat.VecDense
	if err := sol.SolveVec(a, b); err != nil {
		return nil, fmt.Errorf("solve least squares: %w", err)
	}

	weights := make([]float64, k)
	for j := range weights {
		weights[j] = sol.AtVec(j)
	}
	return &Regressor{state: State{
		Features:  append([]string(nil), featureNames...),
		Weights:   weights,
		Intercept: sol.AtVec(k),
	}}, nil
}

// FromState rebuilds a trained regressor from a persisted snapshot.
func FromState(s State) (*Regressor, error) {
	if len(s.Weights) == 0 || len(s.Weights) != len(s.Features) {
		return nil, fmt.Errorf("%w: model state has %d weights for %d features",
			domain.ErrNotFitted, len(s.Weights), len(s.Features))
	}
	return &Regressor{state: s}, nil
}

// State returns the trained snapshot for persistence.
func (r *Regressor) State() State {
	return r.state
}

// Predict evaluates the model on one feature vector, which must match the
// declared feature list in length and order.
func (r *Regressor) Predict(x []float64) (float64, error) {
	if r == nil {
		return 0, fmt.Errorf("%w: regressor", domain.ErrNotFitted)
	}
	if len(x) != len(r.state.Weights) {
		return 0, fmt.Errorf("%w: got %d features, model expects %d",
			domain.ErrPrediction, len(x), len(r.state.Weights))
	}
	v := r.state.Intercept
	for j, w := range r.state.Weights {
		v += w * x[j]
	}
	return v, nil
}

// ClampEfficiency bounds a raw efficiency prediction to [0,1].
func ClampEfficiency(v float64) float64 {
	return clamp(v, 0, 1)
}

// ClampCost bounds a raw cost prediction to the plausible $/kg range.
func ClampCost(v float64) float64 {
	return clamp(v, 0.5, 10)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
