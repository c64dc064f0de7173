// Package artifact persists the trained transform, the two models, and the
// training metrics as a single unit. All four blobs plus a checksummed
// manifest live in one directory; loading fails closed if any piece is
// missing, which prevents serving with a skewed transform/model pair.
package artifact

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/greencell/hydrozone/internal/domain"
	"github.com/greencell/hydrozone/internal/features"
	"github.com/greencell/hydrozone/internal/model"
)

const (
	manifestFile        = "manifest.json"
	transformFile       = "transform.json"
	efficiencyModelFile = "efficiency_model.json"
	costModelFile       = "cost_model.json"
	metricsFile         = "metrics.json"
)

// TrainingMetrics summarizes one training run.
type TrainingMetrics struct {
	Efficiency model.Metrics `json:"efficiency"`
	Cost       model.Metrics `json:"cost"`
	RowsTotal  int           `json:"rows_total"`
	RowsKept   int           `json:"rows_kept"`
	TrainedAt  time.Time     `json:"trained_at"`
}

// Bundle groups everything produced by one training run. Transform and
// models are versioned together: they are only ever saved and loaded as a set.
type Bundle struct {
	Transform       features.State
	EfficiencyModel model.State
	CostModel       model.State
	Metrics         TrainingMetrics
}

// manifest records per-file checksums so a partially written or tampered
// bundle is detected at load time.
type manifest struct {
	CreatedAt time.Time         `json:"created_at"`
	Checksums map[string]string `json:"checksums"`
}

// Save writes the bundle into dir. Files are staged in a sibling temp
// directory and moved into place with a single rename, replacing any
// previous bundle.
func Save(dir string, b Bundle) error {
	parent := filepath.Dir(filepath.Clean(dir))
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return fmt.Errorf("create artifacts parent: %w", err)
	}
	staging, err := os.MkdirTemp(parent, ".artifacts-*")
	if err != nil {
		return fmt.Errorf("create staging dir: %w", err)
	}
	defer os.RemoveAll(staging)

	files := map[string]any{
		transformFile:       b.Transform,
		efficiencyModelFile: b.EfficiencyModel,
		costModelFile:       b.CostModel,
		metricsFile:         b.Metrics,
	}

	m := manifest{CreatedAt: time.Now().UTC(), Checksums: make(map[string]string, len(files))}
	for name, v := range files {
		payload, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal %s: %w", name, err)
		}
		if err := os.WriteFile(filepath.Join(staging, name), payload, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		sum := sha256.Sum256(payload)
		m.Checksums[name] = hex.EncodeToString(sum[:])
	}

	manifestPayload, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(staging, manifestFile), manifestPayload, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove previous bundle: %w", err)
	}
	if err := os.Rename(staging, dir); err != nil {
		return fmt.Errorf("move bundle into place: %w", err)
	}
	return nil
}

// Load reads a complete bundle from dir. A missing manifest or blob is
// domain.ErrArtifactMissing; a checksum mismatch is a corruption error.
func Load(dir string) (Bundle, error) {
	manifestPayload, err := readBlob(dir, manifestFile)
	if err != nil {
		return Bundle{}, err
	}
	var m manifest
	if err := json.Unmarshal(manifestPayload, &m); err != nil {
		return Bundle{}, fmt.Errorf("parse manifest: %w", err)
	}

	var b Bundle
	targets := map[string]any{
		transformFile:       &b.Transform,
		efficiencyModelFile: &b.EfficiencyModel,
		costModelFile:       &b.CostModel,
		metricsFile:         &b.Metrics,
	}
	for _, name := range []string{transformFile, efficiencyModelFile, costModelFile, metricsFile} {
		payload, err := readBlob(dir, name)
		if err != nil {
			return Bundle{}, err
		}
		sum := sha256.Sum256(payload)
		if got := hex.EncodeToString(sum[:]); got != m.Checksums[name] {
			return Bundle{}, fmt.Errorf("artifact %s checksum mismatch", name)
		}
		if err := json.Unmarshal(payload, targets[name]); err != nil {
			return Bundle{}, fmt.Errorf("parse %s: %w", name, err)
		}
	}
	return b, nil
}

func readBlob(dir, name string) ([]byte, error) {
	payload, err := os.ReadFile(filepath.Join(dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", domain.ErrArtifactMissing, name)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return payload, nil
}
