package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/albapepper/fifa-analytics/internal/api/respond"
	"github.com/albapepper/fifa-analytics/internal/cache"
	"github.com/albapepper/fifa-analytics/internal/dataset"
	"github.com/albapepper/fifa-analytics/internal/source"
)

const (
	defaultPreviewRows = 10
	maxPreviewRows     = 1000
)

// DatasetInfo is the response of GET /dataset.
type DatasetInfo struct {
	LoadID   string              `json:"load_id"`
	Source   string              `json:"source"`
	LoadedAt time.Time           `json:"loaded_at"`
	Info     dataset.Info        `json:"info"`
	Report   dataset.CleanReport `json:"clean_report"`
}

// GetDataset returns the shape of the clean dataset and what cleaning changed.
// @Summary Dataset info
// @Description Returns row and column counts, the first column names, categorical columns and the cleaning report.
// @Tags dataset
// @Produce json
// @Success 200 {object} DatasetInfo
// @Failure 503 {object} respond.ErrorResponse
// @Router /dataset [get]
func (h *Handler) GetDataset(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	h.serveCached(w, r, "info:"+snap.ID, cache.TTLDatasetView, func() (interface{}, error) {
		return DatasetInfo{
			LoadID:   snap.ID,
			Source:   source.Redact(snap.Source),
			LoadedAt: snap.LoadedAt.UTC(),
			Info:     snap.Dataset.Info(),
			Report:   snap.Report,
		}, nil
	})
}

// GetPreview returns the first rows of the clean dataset.
// @Summary Dataset preview
// @Description Returns the first n rows (default 10) in column order.
// @Tags dataset
// @Produce json
// @Param n query int false "Number of rows" minimum(1) maximum(1000)
// @Success 200 {object} dataset.Table
// @Failure 400 {object} respond.ErrorResponse
// @Router /dataset/preview [get]
func (h *Handler) GetPreview(w http.ResponseWriter, r *http.Request) {
	n := defaultPreviewRows
	if raw := r.URL.Query().Get("n"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > maxPreviewRows {
			respond.WriteError(w, http.StatusBadRequest, respond.CodeInvalidRequest,
				fmt.Sprintf("n must be an integer between 1 and %d", maxPreviewRows))
			return
		}
		n = v
	}

	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	key := fmt.Sprintf("preview:%s:%d", snap.ID, n)
	h.serveCached(w, r, key, cache.TTLPreview, func() (interface{}, error) {
		return snap.Dataset.Head(n), nil
	})
}

// GetDescribe returns descriptive statistics for every column.
// @Summary Descriptive statistics
// @Description Count, mean, std, min, quartiles and max for numeric columns; unique, top and freq for text columns; min and max for dates.
// @Tags dataset
// @Produce json
// @Success 200 {array} dataset.ColumnSummary
// @Router /dataset/describe [get]
func (h *Handler) GetDescribe(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	h.serveCached(w, r, "describe:"+snap.ID, cache.TTLDatasetView, func() (interface{}, error) {
		return snap.Dataset.Describe(), nil
	})
}

// GetOptions returns the sorted distinct values of a column.
// @Summary Filter options
// @Description Returns the sorted unique values of a column, used to build categorical filters.
// @Tags dataset
// @Produce json
// @Param column path string true "Column name" example(nationality)
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} respond.ErrorResponse
// @Router /dataset/options/{column} [get]
func (h *Handler) GetOptions(w http.ResponseWriter, r *http.Request) {
	column := dataset.NormalizeName(chi.URLParam(r, "column"))
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	h.serveCached(w, r, "options:"+snap.ID+":"+column, cache.TTLDatasetView, func() (interface{}, error) {
		values, err := snap.Dataset.Unique(column)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"column": column,
			"count":  len(values),
			"values": values,
		}, nil
	})
}

// GetBounds returns slider bounds and default selections for range filters.
// @Summary Range filter bounds
// @Description Integer min and max of age, overall, potential and value_eur with their default selections.
// @Tags dataset
// @Produce json
// @Success 200 {array} dataset.Bounds
// @Failure 404 {object} respond.ErrorResponse
// @Router /dataset/bounds [get]
func (h *Handler) GetBounds(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	h.serveCached(w, r, "bounds:"+snap.ID, cache.TTLDatasetView, func() (interface{}, error) {
		bounds, err := snap.Dataset.RangeBounds()
		if err != nil {
			return nil, err
		}
		return bounds, nil
	})
}

// ReloadDataset drops the cached dataset and loads the source again.
// @Summary Reload dataset
// @Description Invalidates the dataset store entry for the configured source and reloads it.
// @Tags dataset
// @Produce json
// @Success 200 {object} DatasetInfo
// @Failure 503 {object} respond.ErrorResponse
// @Router /dataset/reload [post]
func (h *Handler) ReloadDataset(w http.ResponseWriter, r *http.Request) {
	h.store.Invalidate(h.cfg.DataSource)
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, DatasetInfo{
		LoadID:   snap.ID,
		Source:   source.Redact(snap.Source),
		LoadedAt: snap.LoadedAt.UTC(),
		Info:     snap.Dataset.Info(),
		Report:   snap.Report,
	})
}
