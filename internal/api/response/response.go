// Package response renders the uniform envelope consumed by every HTTP
// client of the service: {code, message, data?} with the reserved business
// codes 10200/10500/10401/10403. Business failures still travel as HTTP 200;
// the envelope code is the contract.
package response

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/opskernel/admin-api/internal/core/domain"
)

// Envelope is the uniform response body.
type Envelope struct {
	Code    domain.BusinessCode `json:"code"`
	Message string              `json:"message"`
	Data    any                 `json:"data,omitempty"`
}

// OK renders a 10200 envelope with data.
func OK(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, Envelope{
		Code:    domain.CodeSuccess,
		Message: domain.CodeSuccess.DefaultMessage(),
		Data:    data,
	})
}

// OKEmpty renders a 10200 envelope without data.
func OKEmpty(c echo.Context) error {
	return OK(c, nil)
}

// Fail renders a 10500 envelope. An empty message falls back to the code's
// default.
func Fail(c echo.Context, message string) error {
	return WithCode(c, domain.CodeFail, message)
}

// WithCode renders an envelope for an arbitrary business code.
func WithCode(c echo.Context, code domain.BusinessCode, message string) error {
	if message == "" {
		message = code.DefaultMessage()
	}
	return c.JSON(http.StatusOK, Envelope{Code: code, Message: message})
}
