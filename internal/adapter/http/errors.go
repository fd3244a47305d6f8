package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"purchase-approval/internal/domain/apperror"
)

// StatusFor maps an error kind to its HTTP status.
func StatusFor(err error) int {
	switch apperror.KindOf(err) {
	case apperror.KindInvalidInput:
		return http.StatusBadRequest
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindInvalidState:
		return http.StatusConflict
	case apperror.KindInfrastructure:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders usecase errors. Storage details stay in the logs.
func writeError(c echo.Context, err error) error {
	status := StatusFor(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		msg = http.StatusText(status)
	}
	return c.JSON(status, ErrorResponse{Error: msg})
}

// bindAndValidate: 400 on malformed JSON, 422 with field details on rule violations.
// ok=false means the response was already written.
func bindAndValidate(c echo.Context, req any) (ok bool, err error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	return true, nil
}
