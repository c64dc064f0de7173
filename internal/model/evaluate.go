package model

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat"
)

// Metrics holds held-out evaluation results for one model.
type Metrics struct {
	MAE  float64 `json:"mae"`
	RMSE float64 `json:"rmse"`
	R2   float64 `json:"r2"`
}

// Split shuffles row indices with the given seed and partitions them into
// train and test sets. The partition is fully determined by (n, testFrac,
// seed), so repeated training runs evaluate on the same held-out rows.
func Split(n int, testFrac float64, seed int64) (train, test []int) {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	rand.New(rand.NewSource(seed)).Shuffle(n, func(i, j int) {
		idx[i], idx[j] = idx[j], idx[i]
	})

	testSize := int(math.Round(float64(n) * testFrac))
	if testSize < 1 && n > 1 {
		testSize = 1
	}
	return idx[testSize:], idx[:testSize]
}

// Evaluate computes MAE, RMSE, and R² of predictions against targets.
func Evaluate(predicted, actual []float64) Metrics {
	var absSum, sqSum float64
	for i := range predicted {
		diff := predicted[i] - actual[i]
		absSum += math.Abs(diff)
		sqSum += diff * diff
	}
	n := float64(len(predicted))
	return Metrics{
		MAE:  absSum / n,
		RMSE: math.Sqrt(sqSum / n),
		R2:   stat.RSquaredFrom(predicted, actual, nil),
	}
}
