package domain

import "errors"

// Sentinel errors for the training and prediction pipelines. Callers match
// with errors.Is; wrapping sites add context with fmt.Errorf("%w: ...").
var (
	// ErrDataValidation marks a row or coordinate outside its stated range.
	// Training drops the offending row; serving rejects the request.
	ErrDataValidation = errors.New("data validation failed")

	// ErrInsufficientData marks a fit attempted on an empty or unusable
	// row set. Fatal to the training run.
	ErrInsufficientData = errors.New("insufficient training data")

	// ErrNotFitted marks use of a transform or model before it was fitted
	// or loaded. Indicates a startup-ordering bug.
	ErrNotFitted = errors.New("not fitted")

	// ErrArtifactMissing marks an absent model bundle at serving startup.
	// The process must refuse to serve rather than degrade silently.
	ErrArtifactMissing = errors.New("model artifacts missing")

	// ErrPrediction marks a failure on the per-coordinate inference path.
	// Request-scoped, never process-fatal.
	ErrPrediction = errors.New("prediction failed")
)
