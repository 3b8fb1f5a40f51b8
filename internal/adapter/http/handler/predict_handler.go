package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orbitml/exoserve/internal/usecase"
)

// PredictHandler handles prediction requests
type PredictHandler struct {
	predictUC usecase.PredictUsecase
}

// NewPredictHandler creates a new predict handler
func NewPredictHandler(predictUC usecase.PredictUsecase) *PredictHandler {
	return &PredictHandler{predictUC: predictUC}
}

// Predict handles POST /predict
func (h *PredictHandler) Predict(c *gin.Context) {
	var input usecase.PredictInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "MALFORMED_INPUT", err.Error())
		return
	}

	output, err := h.predictUC.Predict(c.Request.Context(), &input)
	if err != nil {
		HandlePredictError(c, err)
		return
	}

	c.JSON(http.StatusOK, output)
}
