package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/taskmanager/task-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status and a stable code.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>", "code": "<code>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, errorResponse{Error: msg, Code: code})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string, string) {
	// Echo's own errors (404 from router, 405, rate limiter, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Internal != nil && errors.Is(he.Internal, domain.ErrTooManyAttempts) {
			return http.StatusTooManyRequests, "TooManyAttempts", domain.ErrTooManyAttempts.Error()
		}
		return he.Code, statusCode(he.Code), fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors → deterministic HTTP codes. Refresh rejection wraps
	// the token error that caused it, so it is matched first.
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, "ValidationError", err.Error()
	case errors.Is(err, domain.ErrRefreshRejected):
		return http.StatusForbidden, "RefreshRejected", domain.ErrRefreshRejected.Error()
	case errors.Is(err, domain.ErrRefreshMissing):
		return http.StatusUnauthorized, "TokenMissing", domain.ErrRefreshMissing.Error()
	case errors.Is(err, domain.ErrTokenMissing):
		return http.StatusUnauthorized, "TokenMissing", domain.ErrTokenMissing.Error()
	case errors.Is(err, domain.ErrTokenExpired):
		return http.StatusUnauthorized, "TokenExpired", domain.ErrTokenExpired.Error()
	case errors.Is(err, domain.ErrTokenMalformed):
		return http.StatusForbidden, "TokenMalformed", domain.ErrTokenMalformed.Error()
	case errors.Is(err, domain.ErrTokenSignatureInvalid):
		return http.StatusForbidden, "TokenSignatureInvalid", domain.ErrTokenSignatureInvalid.Error()
	case errors.Is(err, domain.ErrIdentityUnresolved):
		return http.StatusUnauthorized, "IdentityUnresolved", domain.ErrIdentityUnresolved.Error()
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "CredentialMismatch", domain.ErrInvalidCredentials.Error()
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "Forbidden", domain.ErrForbidden.Error()
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "NotFound", domain.ErrUserNotFound.Error()
	case errors.Is(err, domain.ErrTaskNotFound):
		return http.StatusNotFound, "NotFound", domain.ErrTaskNotFound.Error()
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, "Conflict", domain.ErrUserExists.Error()
	case errors.Is(err, domain.ErrTooManyAttempts):
		return http.StatusTooManyRequests, "TooManyAttempts", domain.ErrTooManyAttempts.Error()
	case errors.Is(err, domain.ErrStoreUnavailable):
		log.Error().
			Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("store unavailable")
		return http.StatusServiceUnavailable, "StoreUnavailable", domain.ErrStoreUnavailable.Error()
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "Internal", "internal server error"
}

func statusCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "ValidationError"
	case http.StatusUnauthorized:
		return "Unauthorized"
	case http.StatusForbidden:
		return "Forbidden"
	case http.StatusNotFound:
		return "NotFound"
	case http.StatusMethodNotAllowed:
		return "MethodNotAllowed"
	case http.StatusRequestEntityTooLarge:
		return "PayloadTooLarge"
	case http.StatusTooManyRequests:
		return "TooManyAttempts"
	case http.StatusServiceUnavailable:
		return "StoreUnavailable"
	default:
		if status >= http.StatusInternalServerError {
			return "Internal"
		}
		return http.StatusText(status)
	}
}
