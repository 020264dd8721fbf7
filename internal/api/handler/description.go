package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/albapepper/fifa-analytics/internal/api/respond"
	"github.com/albapepper/fifa-analytics/internal/assets"
)

const descriptionTTL = 1 * time.Hour

// GetDescription serves the dataset description page. A missing page is an
// informational notice, not an error.
// @Summary Dataset description
// @Description Returns the HTML description of the dataset, or a JSON notice when the document is not installed.
// @Tags meta
// @Produce html
// @Produce json
// @Success 200 {string} string "HTML document"
// @Router /description [get]
func (h *Handler) GetDescription(w http.ResponseWriter, r *http.Request) {
	html, err := assets.LoadDescription(h.cfg.DescriptionPath)
	if errors.Is(err, assets.ErrAssetMissing) {
		respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
			"available": false,
			"notice":    "Dataset description is not available.",
		})
		return
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respond.WriteHTML(w, html, descriptionTTL)
}
