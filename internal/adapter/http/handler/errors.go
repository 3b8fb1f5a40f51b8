package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orbitml/exoserve/internal/domain/repository"
	"github.com/orbitml/exoserve/internal/usecase"
)

// ErrorResponse represents a structured error response
type ErrorResponse struct {
	StatusCode int
	Code       string
	Message    string
}

// MapPredictError maps prediction pipeline errors to HTTP error responses.
// Client errors (fix your request) map to 400; infrastructure and invariant
// failures (retry later / contact operator) map to 500.
func MapPredictError(err error) ErrorResponse {
	switch {
	case errors.Is(err, usecase.ErrMalformedInput):
		return ErrorResponse{
			StatusCode: http.StatusBadRequest,
			Code:       "MALFORMED_INPUT",
			Message:    err.Error(),
		}
	case errors.Is(err, repository.ErrUnknownDatasetType):
		return ErrorResponse{
			StatusCode: http.StatusBadRequest,
			Code:       "UNKNOWN_DATASET_TYPE",
			Message:    err.Error(),
		}
	case errors.Is(err, usecase.ErrFeatureMismatch):
		return ErrorResponse{
			StatusCode: http.StatusBadRequest,
			Code:       "FEATURE_MISMATCH",
			Message:    err.Error(),
		}
	case errors.Is(err, repository.ErrArtifactLoad):
		return ErrorResponse{
			StatusCode: http.StatusInternalServerError,
			Code:       "ARTIFACT_LOAD_ERROR",
			Message:    err.Error(),
		}
	default:
		return ErrorResponse{
			StatusCode: http.StatusInternalServerError,
			Code:       "INTERNAL_ERROR",
			Message:    "internal server error",
		}
	}
}

// HandlePredictError handles a prediction pipeline error by sending the
// mapped HTTP response.
func HandlePredictError(c *gin.Context, err error) {
	errResp := MapPredictError(err)
	respondError(c, errResp.StatusCode, errResp.Code, errResp.Message)
}
