package handler

import (
	"net/http"

	"github.com/albapepper/fifa-analytics/internal/api/respond"
	"github.com/albapepper/fifa-analytics/internal/metrics"
	"github.com/albapepper/fifa-analytics/internal/predict"
)

// PredictResponse carries one model prediction.
type PredictResponse struct {
	Target     string             `json:"target"`
	Prediction float64            `json:"prediction"`
	Input      predict.FeatureRow `json:"input"`
}

// PostPredict runs the potential model on one feature row.
// @Summary Predict potential
// @Description Runs the pre-trained regression model on age, height, overall, potential, value and wage.
// @Tags predict
// @Accept json
// @Produce json
// @Param request body predict.FeatureRow true "Model input"
// @Success 200 {object} PredictResponse
// @Failure 400 {object} respond.ErrorResponse
// @Failure 503 {object} respond.ErrorResponse
// @Router /predict [post]
func (h *Handler) PostPredict(w http.ResponseWriter, r *http.Request) {
	var row predict.FeatureRow
	if !h.decode(w, r, &row) {
		h.metrics.RecordPrediction(metrics.OutcomeInvalid)
		return
	}

	model, err := h.predictor.Model()
	if err != nil {
		h.metrics.RecordPrediction(metrics.OutcomeUnavailable)
		h.writeError(w, r, err)
		return
	}
	y, err := h.predictor.Predict(r.Context(), row)
	if err != nil {
		h.metrics.RecordPrediction(metrics.OutcomeError)
		h.writeError(w, r, err)
		return
	}
	h.metrics.RecordPrediction(metrics.OutcomeOK)

	respond.WriteJSONObject(w, http.StatusOK, PredictResponse{
		Target:     model.Target,
		Prediction: y,
		Input:      row,
	})
}
