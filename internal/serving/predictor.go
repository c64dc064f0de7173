// Package serving composes the request-time inference path: synthesize
// attributes, apply the reloaded feature transform, run both models, clamp,
// and classify. Artifacts are loaded once at construction and held immutably;
// concurrent requests share them without locking.
package serving

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/greencell/hydrozone/internal/artifact"
	"github.com/greencell/hydrozone/internal/domain"
	"github.com/greencell/hydrozone/internal/features"
	"github.com/greencell/hydrozone/internal/model"
	"github.com/greencell/hydrozone/internal/observability"
)

// Inference stage names, reported in errors and metrics.
const (
	StageValidate   = "validate"
	StageSynthesize = "synthesize"
	StageTransform  = "transform"
	StageInfer      = "infer"
	StageClassify   = "classify"
)

// StageError reports which inference stage failed without exposing internal
// state. It wraps domain.ErrPrediction unless the cause is a validation error.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Publisher forwards prediction records to a downstream sink. Publishing is
// best-effort: a failure is logged and counted, never surfaced to the caller.
type Publisher interface {
	PublishBatch(ctx context.Context, predictions []domain.Prediction) error
}

// Options configure a Predictor.
type Options struct {
	ArtifactsDir string
	CacheSize    int       // 0 disables the result cache
	Publisher    Publisher // optional
}

// Predictor holds the reloaded transform and model pair. All fields are set
// at construction and never mutated afterwards.
type Predictor struct {
	transform  *features.Transform
	efficiency *model.Regressor
	cost       *model.Regressor
	cache      *resultCache
	publisher  Publisher
	metrics    *observability.Metrics
	logger     *slog.Logger
	loadedAt   time.Time
}

// New loads the persisted artifact bundle and builds a ready Predictor.
// A missing or corrupt bundle is fatal: callers must refuse to serve.
func New(opts Options, metrics *observability.Metrics, logger *slog.Logger) (*Predictor, error) {
	bundle, err := artifact.Load(opts.ArtifactsDir)
	if err != nil {
		return nil, fmt.Errorf("load artifacts: %w", err)
	}

	eff, err := model.FromState(bundle.EfficiencyModel)
	if err != nil {
		return nil, fmt.Errorf("restore efficiency model: %w", err)
	}
	cost, err := model.FromState(bundle.CostModel)
	if err != nil {
		return nil, fmt.Errorf("restore cost model: %w", err)
	}

	p := &Predictor{
		transform:  features.FromState(bundle.Transform),
		efficiency: eff,
		cost:       cost,
		publisher:  opts.Publisher,
		metrics:    metrics,
		logger:     logger,
		loadedAt:   domain.Now(),
	}
	if opts.CacheSize > 0 {
		p.cache = newResultCache(opts.CacheSize)
	}

	logger.Info("artifacts loaded",
		"dir", opts.ArtifactsDir,
		"efficiency_features", bundle.EfficiencyModel.Features,
		"cost_features", bundle.CostModel.Features,
		"trained_at", bundle.Metrics.TrainedAt,
	)
	return p, nil
}

// Predict runs the full inference path for one coordinate.
func (p *Predictor) Predict(ctx context.Context, lat, lng float64) (domain.Prediction, error) {
	start := time.Now()
	out, err := p.predict(ctx, lat, lng)
	if err != nil {
		var se *StageError
		if errors.As(err, &se) {
			p.metrics.PredictionErrors.WithLabelValues(se.Stage).Inc()
		}
		return domain.Prediction{}, err
	}

	p.metrics.PredictionsTotal.WithLabelValues(string(out.Zone)).Inc()
	p.metrics.PredictionDuration.Observe(time.Since(start).Seconds())

	if p.publisher != nil {
		if err := p.publisher.PublishBatch(ctx, []domain.Prediction{out}); err != nil {
			p.logger.Warn("publishing prediction failed", "lat", lat, "lng", lng, "error", err)
			p.metrics.PublishErrors.Inc()
		} else {
			p.metrics.PublishedPredictions.Inc()
		}
	}
	return out, nil
}

func (p *Predictor) predict(_ context.Context, lat, lng float64) (domain.Prediction, error) {
	if err := domain.ValidateCoordinate(lat, lng); err != nil {
		return domain.Prediction{}, &StageError{Stage: StageValidate, Err: err}
	}

	if p.cache != nil {
		if r, ok := p.cache.get(lat, lng); ok {
			p.metrics.CacheLookups.WithLabelValues("hit").Inc()
			return domain.NewPrediction(lat, lng, r.efficiency, r.cost, r.zone), nil
		}
		p.metrics.CacheLookups.WithLabelValues("miss").Inc()
	}

	attrs := domain.Synthesize(lat, lng)

	effVec, err := p.transform.ForEfficiency(attrs)
	if err != nil {
		return domain.Prediction{}, &StageError{Stage: StageTransform, Err: wrapPrediction(err)}
	}
	costVec, err := p.transform.ForCost(attrs)
	if err != nil {
		return domain.Prediction{}, &StageError{Stage: StageTransform, Err: wrapPrediction(err)}
	}

	effRaw, err := p.efficiency.Predict(effVec)
	if err != nil {
		return domain.Prediction{}, &StageError{Stage: StageInfer, Err: wrapPrediction(err)}
	}
	costRaw, err := p.cost.Predict(costVec)
	if err != nil {
		return domain.Prediction{}, &StageError{Stage: StageInfer, Err: wrapPrediction(err)}
	}

	// The models may extrapolate outside physically meaningful ranges; the
	// clamp enforces the documented output contract regardless.
	efficiency := model.ClampEfficiency(effRaw)
	cost := model.ClampCost(costRaw)
	zone := domain.ClassifyZone(efficiency, cost)

	if p.cache != nil {
		p.cache.put(lat, lng, cachedResult{efficiency: efficiency, cost: cost, zone: zone})
	}
	return domain.NewPrediction(lat, lng, efficiency, cost, zone), nil
}

// PredictBatch runs Predict for each coordinate, preserving input order.
// The batch is all-or-nothing: the first failing coordinate aborts the whole
// request, identified by its position. Partial results are never returned.
func (p *Predictor) PredictBatch(ctx context.Context, coords []domain.Coordinate) ([]domain.Prediction, error) {
	p.metrics.BatchSize.Observe(float64(len(coords)))

	out := make([]domain.Prediction, 0, len(coords))
	for i, c := range coords {
		pred, err := p.Predict(ctx, c.Lat, c.Lng)
		if err != nil {
			return nil, fmt.Errorf("coordinate %d (%v,%v): %w", i, c.Lat, c.Lng, err)
		}
		out = append(out, pred)
	}
	return out, nil
}

// CheckReadiness reports whether the service can serve predictions. The
// predictor only exists once artifacts are loaded, so a constructed Predictor
// is always ready.
func (p *Predictor) CheckReadiness(_ context.Context) error {
	if p.transform == nil || p.efficiency == nil || p.cost == nil {
		return domain.ErrNotFitted
	}
	return nil
}

// ModelsLoaded reports the health-surface indicator.
func (p *Predictor) ModelsLoaded() bool {
	return p.CheckReadiness(context.Background()) == nil
}

// LoadedAt reports when the artifacts were loaded.
func (p *Predictor) LoadedAt() time.Time {
	return p.loadedAt
}

func wrapPrediction(err error) error {
	if errors.Is(err, domain.ErrPrediction) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrPrediction, err)
}
