package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/opskernel/admin-api/internal/api/response"
	"github.com/opskernel/admin-api/internal/core/domain"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Renders StatusError values as their business envelope (HTTP 200; the
//     envelope code carries the outcome).
//   - Maps echo's own errors (bind failures, 404 from the router) onto the
//     envelope, keeping their HTTP status.
//   - Logs unexpected errors internally without leaking details to the client.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var se *domain.StatusError
		if errors.As(err, &se) {
			_ = response.WithCode(c, se.Code, se.Message)
			return
		}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			_ = c.JSON(he.Code, response.Envelope{
				Code:    businessCodeFor(he.Code),
				Message: fmt.Sprintf("%v", he.Message),
			})
			return
		}

		// Unexpected error: log the real cause, return the generic failure.
		log.Error().
			Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("unhandled error")

		_ = c.JSON(http.StatusInternalServerError, response.Envelope{
			Code:    domain.CodeFail,
			Message: domain.CodeFail.DefaultMessage(),
		})
	}
}

func businessCodeFor(httpStatus int) domain.BusinessCode {
	switch httpStatus {
	case http.StatusUnauthorized:
		return domain.CodeUnauthorized
	case http.StatusForbidden:
		return domain.CodeForbidden
	default:
		return domain.CodeFail
	}
}
