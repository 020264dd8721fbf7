package handler

import (
	"net/http"

	"github.com/albapepper/fifa-analytics/internal/api/respond"
	"github.com/albapepper/fifa-analytics/internal/dataset"
	"github.com/albapepper/fifa-analytics/internal/metrics"
)

const (
	defaultFilterRows = 10
	maxFilterRows     = 1000
)

// RangeRequest is an inclusive numeric range.
type RangeRequest struct {
	Min float64 `json:"min"`
	Max float64 `json:"max" validate:"gtefield=Min"`
}

// FilterRequest is the body of POST /filter. An empty value list leaves its
// column unrestricted; constraints on unknown columns are ignored.
type FilterRequest struct {
	Categories map[string][]string     `json:"categories" validate:"omitempty,dive,keys,required,endkeys"`
	Ranges     map[string]RangeRequest `json:"ranges" validate:"omitempty,dive,keys,required,endkeys"`
	Limit      *int                    `json:"limit" validate:"omitempty,gte=0,lte=1000"`
}

// Spec converts the request into a filter spec.
func (req FilterRequest) Spec() dataset.FilterSpec {
	spec := dataset.FilterSpec{
		Categories: req.Categories,
		Ranges:     make(map[string]dataset.Range, len(req.Ranges)),
	}
	for col, rg := range req.Ranges {
		spec.Ranges[col] = dataset.Range{Min: rg.Min, Max: rg.Max}
	}
	return spec
}

// FilterResponse is the match count plus the first matching rows.
type FilterResponse struct {
	LoadID  string        `json:"load_id"`
	Total   int           `json:"total"`
	Matches int           `json:"matches"`
	Rows    dataset.Table `json:"rows"`
}

// PostFilter applies categorical and range filters to the dataset.
// @Summary Filter players
// @Description Keeps rows whose categorical cells are in the given lists and whose numeric cells fall in the inclusive ranges. All constraints combine with AND.
// @Tags filter
// @Accept json
// @Produce json
// @Param request body FilterRequest true "Filter constraints"
// @Success 200 {object} FilterResponse
// @Failure 400 {object} respond.ErrorResponse
// @Failure 503 {object} respond.ErrorResponse
// @Router /filter [post]
func (h *Handler) PostFilter(w http.ResponseWriter, r *http.Request) {
	var req FilterRequest
	if !h.decode(w, r, &req) {
		h.metrics.RecordFilter(metrics.OutcomeInvalid, 0)
		return
	}
	limit := defaultFilterRows
	if req.Limit != nil {
		limit = *req.Limit
	}

	snap, ok := h.snapshot(w, r)
	if !ok {
		h.metrics.RecordFilter(metrics.OutcomeUnavailable, 0)
		return
	}
	view, err := dataset.Apply(snap.Dataset, req.Spec())
	if err != nil {
		h.metrics.RecordFilter(metrics.OutcomeInvalid, 0)
		h.writeError(w, r, err)
		return
	}
	h.metrics.RecordFilter(metrics.OutcomeOK, view.Len())

	respond.WriteJSONObject(w, http.StatusOK, FilterResponse{
		LoadID:  snap.ID,
		Total:   snap.Dataset.Len(),
		Matches: view.Len(),
		Rows:    view.Head(limit),
	})
}
