package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/taskmanager/task-api/internal/core/domain"
)

func TestHTTPErrorHandler_MapsTaxonomy(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("%w: title is required", domain.ErrValidation), http.StatusBadRequest, "ValidationError"},
		{domain.ErrUserNotFound, http.StatusNotFound, "NotFound"},
		{domain.ErrTaskNotFound, http.StatusNotFound, "NotFound"},
		{domain.ErrUserExists, http.StatusConflict, "Conflict"},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized, "CredentialMismatch"},
		{domain.ErrTokenMissing, http.StatusUnauthorized, "TokenMissing"},
		{domain.ErrRefreshMissing, http.StatusUnauthorized, "TokenMissing"},
		{fmt.Errorf("%w: exp", domain.ErrTokenExpired), http.StatusUnauthorized, "TokenExpired"},
		{domain.ErrTokenMalformed, http.StatusForbidden, "TokenMalformed"},
		{domain.ErrTokenSignatureInvalid, http.StatusForbidden, "TokenSignatureInvalid"},
		{fmt.Errorf("%w: %w", domain.ErrRefreshRejected, domain.ErrTokenExpired), http.StatusForbidden, "RefreshRejected"},
		{domain.ErrIdentityUnresolved, http.StatusUnauthorized, "IdentityUnresolved"},
		{domain.ErrForbidden, http.StatusForbidden, "Forbidden"},
		{domain.ErrTooManyAttempts, http.StatusTooManyRequests, "TooManyAttempts"},
		{fmt.Errorf("find user: %w", domain.ErrStoreUnavailable), http.StatusServiceUnavailable, "StoreUnavailable"},
		{echo.ErrNotFound, http.StatusNotFound, "NotFound"},
		{errors.New("secret=hunter2 exploded"), http.StatusInternalServerError, "Internal"},
	}

	e := echo.New()
	handle := NewHTTPErrorHandler(zerolog.Nop())
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		handle(tc.err, c)

		if rec.Code != tc.status {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.status, rec.Code)
		}
		var resp errorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("invalid json: %v", err)
		}
		if resp.Code != tc.code {
			t.Fatalf("%v: expected code %s, got %s", tc.err, tc.code, resp.Code)
		}
	}
}

func TestHTTPErrorHandler_HidesInternalDetail(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	NewHTTPErrorHandler(zerolog.Nop())(errors.New("signing key abc123 rejected"), c)

	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Error != "internal server error" {
		t.Fatalf("internal detail leaked: %q", resp.Error)
	}
}
