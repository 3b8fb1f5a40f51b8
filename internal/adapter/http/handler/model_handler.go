package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orbitml/exoserve/internal/usecase"
)

// ModelHandler handles model introspection requests
type ModelHandler struct {
	predictUC usecase.PredictUsecase
}

// NewModelHandler creates a new model handler
func NewModelHandler(predictUC usecase.PredictUsecase) *ModelHandler {
	return &ModelHandler{predictUC: predictUC}
}

// List handles GET /models. It reports artifact presence and cache state per
// dataset type without loading anything.
func (h *ModelHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.predictUC.ListModels(c.Request.Context()))
}
