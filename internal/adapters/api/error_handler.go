package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kevindenney/regattaflow-weather/pkg/errors"
)

// ErrorResponse is the uniform error payload
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError maps domain error types onto HTTP status codes
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.IsNotFoundError(err):
		status = http.StatusNotFound
	case errors.IsValidationError(err):
		status = http.StatusBadRequest
	case errors.IsProviderError(err):
		status = http.StatusBadGateway
	}
	c.JSON(status, ErrorResponse{Error: err.Error()})
}
