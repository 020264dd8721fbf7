// Package handler provides HTTP handlers for all API endpoints.
// Dataset handlers read the clean dataset from the store; rendered JSON for
// read-only views is cached per dataset load and served with ETags.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/albapepper/fifa-analytics/internal/api/respond"
	"github.com/albapepper/fifa-analytics/internal/assets"
	"github.com/albapepper/fifa-analytics/internal/cache"
	"github.com/albapepper/fifa-analytics/internal/config"
	"github.com/albapepper/fifa-analytics/internal/dataset"
	"github.com/albapepper/fifa-analytics/internal/db"
	"github.com/albapepper/fifa-analytics/internal/metrics"
	"github.com/albapepper/fifa-analytics/internal/predict"
	"github.com/albapepper/fifa-analytics/internal/source"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// Deps are the shared dependencies of all handlers. Pool may be nil when no
// database is configured.
type Deps struct {
	Config    *config.Config
	Store     *cache.Store
	Responses *cache.Cache
	Predictor *predict.Adapter
	Pool      *db.Pool
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
}

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	cfg       *config.Config
	store     *cache.Store
	responses *cache.Cache
	predictor *predict.Adapter
	pool      *db.Pool
	metrics   *metrics.Metrics
	logger    *slog.Logger
	validate  *validator.Validate
}

// New creates a Handler with shared dependencies.
func New(d Deps) *Handler {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	m := d.Metrics
	if m == nil {
		m = metrics.New()
	}
	return &Handler{
		cfg:       d.Config,
		store:     d.Store,
		responses: d.Responses,
		predictor: d.Predictor,
		pool:      d.Pool,
		metrics:   m,
		logger:    logger,
		validate:  newValidator(),
	}
}

func newValidator() *validator.Validate {
	v := validator.New()
	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Root serves API info at /.
// @Summary API root info
// @Description Returns API name, version, status, and the configured dataset source.
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"name":    "FIFA Player Analytics API",
		"version": "1.0.0",
		"status":  "running",
		"docs":    "/docs",
		"source":  source.Redact(h.cfg.DataSource),
		"features": []string{
			"dataset_cleaning",
			"categorical_and_range_filters",
			"descriptive_statistics",
			"potential_prediction",
			"in_memory_cache",
			"etag_support",
		},
	})
}

// HealthCheck returns basic health status.
// @Summary Health check
// @Description Returns basic health status and timestamp.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB verifies database connectivity.
// @Summary Database health check
// @Description Verifies Postgres connectivity when DATABASE_URL is configured.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/db [get]
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	if h.pool == nil {
		respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
			"status":    "healthy",
			"database":  "not_configured",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	if err := h.pool.HealthCheck(r.Context()); err != nil {
		h.logger.Warn("Database health check failed", "error", err)
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "unhealthy",
			"database":  "disconnected",
			"error":     "Database connection check failed",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckCache returns cache statistics.
// @Summary Cache health check
// @Description Returns dataset store and response cache statistics.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health/cache [get]
func (h *Handler) HealthCheckCache(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"datasets":  h.store.Stats(),
		"responses": h.responses.Stats(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// --------------------------------------------------------------------------
// Shared helpers
// --------------------------------------------------------------------------

// snapshot returns the dataset for the configured source, writing the error
// response itself when loading fails.
func (h *Handler) snapshot(w http.ResponseWriter, r *http.Request) (*cache.Snapshot, bool) {
	snap, err := h.store.Get(r.Context(), h.cfg.DataSource)
	if err != nil {
		h.writeError(w, r, err)
		return nil, false
	}
	return snap, true
}

// serveCached writes the JSON rendering of build(), caching it under key for
// ttl and answering If-None-Match with 304.
func (h *Handler) serveCached(w http.ResponseWriter, r *http.Request, key string, ttl time.Duration, build func() (interface{}, error)) {
	if data, etag, ok := h.responses.Get(key); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, ttl, true)
		return
	}

	v, err := build()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		h.writeError(w, r, fmt.Errorf("encode response: %w", err))
		return
	}

	etag := h.responses.Set(key, data, ttl)
	if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
		respond.WriteNotModified(w, etag)
		return
	}
	respond.WriteJSON(w, data, etag, ttl, false)
}

// decode reads a JSON body into dst and validates it.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := render.DecodeJSON(r.Body, dst); err != nil {
		respond.WriteErrorDetail(w, http.StatusBadRequest, respond.CodeInvalidRequest,
			"Request body is not valid JSON", err.Error())
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		respond.WriteErrorDetail(w, http.StatusBadRequest, respond.CodeInvalidRequest,
			"Request failed validation", validationDetail(err))
		return false
	}
	return true
}

func validationDetail(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s: must satisfy %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s: %s", fe.Namespace(), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}

// writeError maps a domain error to its HTTP status and error code. Only the
// request fails; the process keeps serving. Server-side error detail is only
// exposed with DEBUG outside production.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message := classify(err)
	detail := ""
	if status < http.StatusInternalServerError || (h.cfg.Debug && !h.cfg.IsProduction()) {
		detail = err.Error()
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed",
			"request_id", middleware.GetReqID(r.Context()),
			"path", r.URL.Path,
			"code", code,
			"error", err)
	}
	respond.WriteErrorDetail(w, status, code, message, detail)
}

func classify(err error) (status int, code, message string) {
	var missing *dataset.ColumnMissingError
	switch {
	case errors.Is(err, source.ErrSourceUnavailable):
		return http.StatusServiceUnavailable, respond.CodeSourceUnavailable, "Dataset source is unavailable"
	case errors.Is(err, source.ErrParse),
		errors.Is(err, dataset.ErrDuplicateColumn),
		errors.Is(err, dataset.ErrRaggedRow):
		return http.StatusUnprocessableEntity, respond.CodeParseError, "Dataset source could not be parsed"
	case errors.Is(err, predict.ErrModelUnavailable):
		return http.StatusServiceUnavailable, respond.CodeModelUnavailable, "Prediction model is unavailable"
	case errors.As(err, &missing):
		return http.StatusNotFound, respond.CodeColumnMissing, missing.Error()
	case errors.Is(err, dataset.ErrColumnKind):
		return http.StatusBadRequest, respond.CodeInvalidColumn, "Column does not support this operation"
	case errors.Is(err, assets.ErrAssetMissing):
		return http.StatusNotFound, respond.CodeNotFound, "Asset not found"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, respond.CodeSourceUnavailable, "Request timed out"
	default:
		return http.StatusInternalServerError, respond.CodeInternal, "Internal server error"
	}
}
