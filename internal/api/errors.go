package api

import (
	"errors"
	"net/http"

	"fitcoach/internal/service"

	"github.com/gin-gonic/gin"
)

// respondServiceError maps service sentinels to HTTP statuses. Anything
// unrecognized is a 500 with a generic message; the cause is attached to the
// gin context for the request logger.
func respondServiceError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidSchedule):
		abortWithError(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrConflict):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidCompletion):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrExportUnavailable):
		abortWithError(c, http.StatusServiceUnavailable, err.Error())
	default:
		_ = c.Error(err)
		abortWithError(c, http.StatusInternalServerError, fallback)
	}
}
