// Package training composes the offline pipeline: load labeled rows, clean
// them, engineer derived features, fit the feature transform once, train the
// efficiency and cost models on their respective feature views, evaluate on a
// held-out split, and persist everything as one artifact bundle.
package training

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/greencell/hydrozone/internal/artifact"
	"github.com/greencell/hydrozone/internal/domain"
	"github.com/greencell/hydrozone/internal/features"
	"github.com/greencell/hydrozone/internal/model"
)

// RowSource provides labeled site records for training.
type RowSource interface {
	Rows(ctx context.Context) ([]domain.TrainingRow, error)
}

// Options configure one training run.
type Options struct {
	ArtifactsDir string
	TestFraction float64 // held-out share, e.g. 0.2
	Seed         int64   // partition seed; fixed so reruns evaluate identically

	// ProcessedPath, when set, receives the cleaned and engineered dataset
	// with scaled feature columns, for inspection.
	ProcessedPath string
}

// Trainer runs the training pipeline against a row source.
type Trainer struct {
	source RowSource
	logger *slog.Logger
	opts   Options
}

// New creates a Trainer.
func New(source RowSource, logger *slog.Logger, opts Options) *Trainer {
	return &Trainer{source: source, logger: logger, opts: opts}
}

// Run executes the full pipeline and persists the bundle. The returned
// metrics are the same ones saved in the artifact directory.
func (t *Trainer) Run(ctx context.Context) (artifact.TrainingMetrics, error) {
	rows, err := t.source.Rows(ctx)
	if err != nil {
		return artifact.TrainingMetrics{}, fmt.Errorf("load rows: %w", err)
	}
	t.logger.Info("dataset loaded", "rows", len(rows))

	kept := domain.CleanRows(rows, t.logger)
	if len(kept) == 0 {
		return artifact.TrainingMetrics{}, fmt.Errorf("%w: no valid rows after cleaning", domain.ErrInsufficientData)
	}
	domain.EngineerFeatures(kept)

	// The transform is fitted here, once, on the training distribution.
	// Serving reloads this exact state and never refits.
	tf, err := features.Fit(kept)
	if err != nil {
		return artifact.TrainingMetrics{}, fmt.Errorf("fit transform: %w", err)
	}

	effX, costX, err := featureMatrices(tf, kept)
	if err != nil {
		return artifact.TrainingMetrics{}, err
	}
	effY := make([]float64, len(kept))
	costY := make([]float64, len(kept))
	for i, r := range kept {
		effY[i] = r.EfficiencyScore
		costY[i] = r.CostPerKg
	}

	trainIdx, testIdx := model.Split(len(kept), t.opts.TestFraction, t.opts.Seed)

	effModel, effMetrics, err := t.fitModel(ctx, "efficiency", features.EfficiencyFeatures, effX, effY, trainIdx, testIdx)
	if err != nil {
		return artifact.TrainingMetrics{}, err
	}
	costModel, costMetrics, err := t.fitModel(ctx, "cost", features.CostFeatures, costX, costY, trainIdx, testIdx)
	if err != nil {
		return artifact.TrainingMetrics{}, err
	}

	metrics := artifact.TrainingMetrics{
		Efficiency: effMetrics,
		Cost:       costMetrics,
		RowsTotal:  len(rows),
		RowsKept:   len(kept),
		TrainedAt:  time.Now().UTC(),
	}

	bundle := artifact.Bundle{
		Transform:       tf.State(),
		EfficiencyModel: effModel.State(),
		CostModel:       costModel.State(),
		Metrics:         metrics,
	}
	if err := artifact.Save(t.opts.ArtifactsDir, bundle); err != nil {
		return artifact.TrainingMetrics{}, fmt.Errorf("persist artifacts: %w", err)
	}
	t.logger.Info("artifacts saved", "dir", t.opts.ArtifactsDir)

	if t.opts.ProcessedPath != "" {
		if err := writeProcessed(t.opts.ProcessedPath, kept, effX, costX); err != nil {
			return artifact.TrainingMetrics{}, fmt.Errorf("write processed dataset: %w", err)
		}
		t.logger.Info("processed dataset written", "path", t.opts.ProcessedPath)
	}

	return metrics, nil
}

// fitModel trains one regressor on the train partition and evaluates it on
// the held-out partition.
func (t *Trainer) fitModel(
	ctx context.Context,
	name string,
	featureNames []string,
	X [][]float64,
	y []float64,
	trainIdx, testIdx []int,
) (*model.Regressor, model.Metrics, error) {
	if err := ctx.Err(); err != nil {
		return nil, model.Metrics{}, err
	}
	t.logger.Info("training model", "model", name, "train_rows", len(trainIdx), "test_rows", len(testIdx))

	reg, err := model.Fit(featureNames, subsetRows(X, trainIdx), subsetVals(y, trainIdx))
	if err != nil {
		return nil, model.Metrics{}, fmt.Errorf("fit %s model: %w", name, err)
	}

	predicted := make([]float64, len(testIdx))
	for i, idx := range testIdx {
		p, err := reg.Predict(X[idx])
		if err != nil {
			return nil, model.Metrics{}, fmt.Errorf("evaluate %s model: %w", name, err)
		}
		predicted[i] = p
	}
	m := model.Evaluate(predicted, subsetVals(y, testIdx))
	t.logger.Info("model evaluated", "model", name, "mae", m.MAE, "rmse", m.RMSE, "r2", m.R2)
	return reg, m, nil
}

// featureMatrices builds both models' design matrices through the fitted transform.
func featureMatrices(tf *features.Transform, rows []domain.TrainingRow) (effX, costX [][]float64, err error) {
	effX = make([][]float64, len(rows))
	costX = make([][]float64, len(rows))
	for i, r := range rows {
		if effX[i], err = tf.ForEfficiency(r.SiteAttributes); err != nil {
			return nil, nil, err
		}
		if costX[i], err = tf.ForCost(r.SiteAttributes); err != nil {
			return nil, nil, err
		}
	}
	return effX, costX, nil
}

func subsetRows(X [][]float64, idx []int) [][]float64 {
	out := make([][]float64, len(idx))
	for i, j := range idx {
		out[i] = X[j]
	}
	return out
}

func subsetVals(y []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = y[j]
	}
	return out
}

// writeProcessed exports the cleaned dataset with scaled features, targets,
// and derived features.
func writeProcessed(path string, rows []domain.TrainingRow, effX, costX [][]float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"renewable_proximity", "demand_proximity", "transport_score", "subsidy_score",
		"land_cost_scaled", "energy_cost_scaled",
		"efficiency_score", "cost_per_kg",
		"infrastructure_score", "cost_factor",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for i, r := range rows {
		rec := []string{
			ftoa(effX[i][0]), ftoa(effX[i][1]), ftoa(effX[i][2]), ftoa(effX[i][3]),
			ftoa(costX[i][0]), ftoa(costX[i][1]),
			ftoa(r.EfficiencyScore), ftoa(r.CostPerKg),
			ftoa(r.InfrastructureScore), ftoa(r.CostFactor),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
