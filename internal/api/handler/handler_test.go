package handler

import (
	"context"
	"errors"
	"fmt"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/fifa-analytics/internal/api/respond"
	"github.com/albapepper/fifa-analytics/internal/assets"
	"github.com/albapepper/fifa-analytics/internal/config"
	"github.com/albapepper/fifa-analytics/internal/dataset"
	"github.com/albapepper/fifa-analytics/internal/predict"
	"github.com/albapepper/fifa-analytics/internal/source"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{name: "source unavailable", err: fmt.Errorf("load: %w", source.ErrSourceUnavailable), status: http.StatusServiceUnavailable, code: respond.CodeSourceUnavailable},
		{name: "parse error", err: fmt.Errorf("load: %w", source.ErrParse), status: http.StatusUnprocessableEntity, code: respond.CodeParseError},
		{name: "duplicate column", err: fmt.Errorf("clean: %w", dataset.ErrDuplicateColumn), status: http.StatusUnprocessableEntity, code: respond.CodeParseError},
		{name: "model unavailable", err: fmt.Errorf("%w: read", predict.ErrModelUnavailable), status: http.StatusServiceUnavailable, code: respond.CodeModelUnavailable},
		{name: "column missing", err: &dataset.ColumnMissingError{Column: "overall"}, status: http.StatusNotFound, code: respond.CodeColumnMissing},
		{name: "column kind", err: fmt.Errorf("%w: nationality", dataset.ErrColumnKind), status: http.StatusBadRequest, code: respond.CodeInvalidColumn},
		{name: "asset missing", err: assets.ErrAssetMissing, status: http.StatusNotFound, code: respond.CodeNotFound},
		{name: "deadline", err: context.DeadlineExceeded, status: http.StatusGatewayTimeout, code: respond.CodeSourceUnavailable},
		{name: "anything else", err: errors.New("boom"), status: http.StatusInternalServerError, code: respond.CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code, message := classify(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
			assert.NotEmpty(t, message)
		})
	}
}

func TestFilterRequest_Spec(t *testing.T) {
	req := FilterRequest{
		Categories: map[string][]string{"nationality": {"France"}},
		Ranges:     map[string]RangeRequest{"age": {Min: 18, Max: 35}},
	}
	spec := req.Spec()
	assert.Equal(t, []string{"France"}, spec.Categories["nationality"])
	assert.Equal(t, dataset.Range{Min: 18, Max: 35}, spec.Ranges["age"])
}

func TestValidator(t *testing.T) {
	v := newValidator()

	require.NoError(t, v.Struct(FilterRequest{Ranges: map[string]RangeRequest{"age": {Min: 18, Max: 18}}}))

	err := v.Struct(FilterRequest{Ranges: map[string]RangeRequest{"age": {Min: 30, Max: 20}}})
	require.Error(t, err)
	assert.Contains(t, validationDetail(err), "max")

	limit := 5000
	assert.Error(t, v.Struct(FilterRequest{Limit: &limit}))

	assert.Error(t, v.Struct(predict.FeatureRow{Age: 50, HeightCM: 180, Overall: 70, Potential: 70}))
	assert.NoError(t, v.Struct(predict.FeatureRow{Age: 25, HeightCM: 180, Overall: 70, Potential: 70}))
}

func TestWriteError_Detail(t *testing.T) {
	internal := errors.New("pool exhausted: dial tcp 10.0.0.5:5432")
	columnErr := &dataset.ColumnMissingError{Column: "overall"}

	tests := []struct {
		name        string
		environment string
		debug       bool
		err         error
		wantDetail  bool
	}{
		{name: "client error always has detail", environment: "production", err: columnErr, wantDetail: true},
		{name: "server error hidden by default", environment: "development", err: internal},
		{name: "server error shown with debug", environment: "development", debug: true, err: internal, wantDetail: true},
		{name: "production hides server error even with debug", environment: "production", debug: true, err: internal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New(Deps{
				Config: &config.Config{Environment: tt.environment, Debug: tt.debug},
				Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
			})
			rec := httptest.NewRecorder()
			h.writeError(rec, httptest.NewRequest(http.MethodGet, "/api/v1/dataset", nil), tt.err)

			var body respond.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			if tt.wantDetail {
				assert.Equal(t, tt.err.Error(), body.Error.Detail)
			} else {
				assert.Empty(t, body.Error.Detail)
			}
		})
	}
}
