// Package handlers implements the HTTP endpoints. Every failure leaves as an
// ErrorResponse envelope with a stable code; see failErr for how service,
// store and model errors map onto it.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-companion-backend/internal/http/middleware"
	"github.com/tbourn/go-companion-backend/internal/llm"
	"github.com/tbourn/go-companion-backend/internal/repo"
	"github.com/tbourn/go-companion-backend/internal/services"
)

// ErrorResponse is the error envelope returned by every endpoint.
type ErrorResponse struct {
	// Echo of X-Request-ID, for matching a client report to server logs.
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go).
	Code string `json:"code" example:"not_found"`
	// Safe to show to users; never carries the underlying cause.
	Message string `json:"message" example:"Conversation not found"`
}

// fail aborts with an ErrorResponse. 503s are logged at warn since they track
// a dependency outage rather than a bug; other 5xx are errors.
func fail(c *gin.Context, status int, code, msg string) {
	resp := ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
	}

	if status >= http.StatusInternalServerError {
		lg := middleware.LoggerFrom(c)
		ev := lg.Error()
		if status == http.StatusServiceUnavailable {
			ev = lg.Warn()
		}
		ev = ev.Int("status", status).Str("code", code)
		if last := c.Errors.Last(); last != nil {
			ev = ev.Err(last.Err)
		}
		ev.Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail lets the router's NoRoute and NoMethod handlers share the envelope.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// failErr translates an error from the service layer into the error envelope.
//
// Mapping:
//   - services.ErrConversationNotFound → 404 not_found
//   - services.ErrInvalidInput (and wrappers) → 400 bad_request
//   - repo.ErrStoreUnavailable → 503 store_unavailable
//   - llm.ErrModelUnavailable → 503 model_unavailable
//   - anything else → 500 internal_error
//
// The cause goes to c.Errors for the access log, never to the client.
func failErr(c *gin.Context, err error) {
	_ = c.Error(err)
	status, code, msg := classifyError(err)
	fail(c, status, code, msg)
}

// classifyError returns the HTTP status, code, and client message for err.
func classifyError(err error) (int, string, string) {
	switch {
	case errors.Is(err, services.ErrConversationNotFound):
		return http.StatusNotFound, ErrCodeNotFound, "Conversation not found"
	case errors.Is(err, services.ErrInvalidInput):
		return http.StatusBadRequest, ErrCodeBadRequest, invalidInputMessage(err)
	case errors.Is(err, repo.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, ErrCodeStoreUnavailable, "storage is temporarily unavailable"
	case errors.Is(err, llm.ErrModelUnavailable):
		return http.StatusServiceUnavailable, ErrCodeModelUnavailable, "the assistant is temporarily unavailable"
	default:
		return http.StatusInternalServerError, ErrCodeInternal, "internal server error"
	}
}

func invalidInputMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrInvalidDate):
		return "Invalid date format. Use YYYY-MM-DD."
	case errors.Is(err, services.ErrDateOrder):
		return "Start date must be before end date."
	case errors.Is(err, services.ErrTooLong):
		return "content too long"
	default:
		return "message is empty"
	}
}
