package handler

import (
	"errors"
	"net/http"
	"strconv"

	"stocktrack/internal/service"

	"github.com/gin-gonic/gin"
)

// statusForError maps service sentinels onto HTTP status codes. Anything
// unrecognized is treated as a validation failure; handlers use 500 for
// read-path database errors explicitly.
func statusForError(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrAccountSuspended):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrUsernameTaken),
		errors.Is(err, service.ErrItemReferenced),
		errors.Is(err, service.ErrLastActiveAdmin),
		errors.Is(err, service.ErrSelfDelete):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

// parseIDParam reads a numeric :id path parameter.
func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}
