package handler

import "github.com/gin-gonic/gin"

// ErrorInfo represents error details
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorBody is the wire shape of every error response.
type ErrorBody struct {
	Error ErrorInfo `json:"error"`
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, ErrorBody{
		Error: ErrorInfo{
			Code:    code,
			Message: message,
		},
	})
}
