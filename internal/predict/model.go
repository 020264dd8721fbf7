// Package predict wraps the pre-trained player-potential regression model.
//
// The model is an opaque artifact trained elsewhere. This package only
// reads it, assembles feature rows in the order the model expects and
// returns its prediction. Any problem locating or decoding the artifact is
// reported as ErrModelUnavailable.
package predict

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
)

// DefaultPath is the well-known location of the model artifact.
const DefaultPath = "assets/model_fifa.json"

// ErrModelUnavailable is returned when the model artifact is missing or
// cannot be decoded.
var ErrModelUnavailable = errors.New("model unavailable")

// LinearModel is an ordinary linear regression: intercept plus one
// coefficient per feature.
type LinearModel struct {
	Target       string    `json:"target"`
	Features     []string  `json:"features"`
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
}

// LoadModel reads and validates the artifact at path.
func LoadModel(path string) (*LinearModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrModelUnavailable, path, err)
	}

	var m LinearModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", ErrModelUnavailable, path, err)
	}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrModelUnavailable, path, err)
	}
	return &m, nil
}

func (m *LinearModel) validate() error {
	if len(m.Features) == 0 {
		return errors.New("model has no features")
	}
	if len(m.Features) != len(m.Coefficients) {
		return fmt.Errorf("%d features but %d coefficients", len(m.Features), len(m.Coefficients))
	}
	seen := make(map[string]struct{}, len(m.Features))
	for _, f := range m.Features {
		if _, ok := featureIndex[f]; !ok {
			return fmt.Errorf("unknown feature %q", f)
		}
		if _, dup := seen[f]; dup {
			return fmt.Errorf("duplicate feature %q", f)
		}
		seen[f] = struct{}{}
	}
	if !finite(m.Intercept) {
		return errors.New("intercept is not finite")
	}
	for i, c := range m.Coefficients {
		if !finite(c) {
			return fmt.Errorf("coefficient for %q is not finite", m.Features[i])
		}
	}
	return nil
}

// Predict returns intercept + sum(coefficient * feature).
func (m *LinearModel) Predict(row FeatureRow) (float64, error) {
	x, err := row.Vector(m.Features)
	if err != nil {
		return 0, err
	}
	y := m.Intercept
	for i, v := range x {
		y += m.Coefficients[i] * v
	}
	return y, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
