package predict

import (
	"context"
	"log/slog"
	"sync"
)

// Adapter loads the model artifact on first use and keeps it. A failed load
// is not cached, so a later call retries once the artifact is in place.
type Adapter struct {
	path   string
	logger *slog.Logger

	mu    sync.Mutex
	model *LinearModel
}

// NewAdapter creates an adapter for the artifact at path.
func NewAdapter(path string, logger *slog.Logger) *Adapter {
	if path == "" {
		path = DefaultPath
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{path: path, logger: logger}
}

// Path returns the artifact location.
func (a *Adapter) Path() string { return a.path }

// Model returns the loaded model, loading it if needed.
func (a *Adapter) Model() (*LinearModel, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.model != nil {
		return a.model, nil
	}
	m, err := LoadModel(a.path)
	if err != nil {
		a.logger.Warn("Model load failed", "path", a.path, "error", err)
		return nil, err
	}
	a.logger.Info("Model loaded", "path", a.path, "target", m.Target, "features", m.Features)
	a.model = m
	return m, nil
}

// Predict runs the model on row. On any error no prediction is returned.
func (a *Adapter) Predict(ctx context.Context, row FeatureRow) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m, err := a.Model()
	if err != nil {
		return 0, err
	}
	return m.Predict(row)
}
