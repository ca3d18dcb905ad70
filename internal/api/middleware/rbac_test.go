package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

func runRequireRoles(t *testing.T, caller *ports.Caller, roles ...domain.Role) (bool, error) {
	t.Helper()
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if caller != nil {
		c.Set(callerKey, *caller)
	}

	called := false
	err := RequireRoles(roles...)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})(c)
	return called, err
}

func TestRequireRoles_Allows(t *testing.T) {
	for _, roles := range [][]string{{"admin"}, {"editor", "viewer"}} {
		called, err := runRequireRoles(t, &ports.Caller{ID: "u1", Roles: roles}, domain.RoleAdmin)
		if err != nil {
			t.Fatalf("roles %v: handler error: %v", roles, err)
		}
		if !called {
			t.Fatalf("roles %v: next handler not called", roles)
		}
	}
}

func TestRequireRoles_Forbids(t *testing.T) {
	for _, roles := range [][]string{{"editor"}, {"user"}, {"superuser"}} {
		called, err := runRequireRoles(t, &ports.Caller{ID: "u1", Roles: roles}, domain.RoleAdmin)
		if called {
			t.Fatalf("roles %v: should not reach next handler", roles)
		}
		if !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("roles %v: expected ErrForbidden, got %v", roles, err)
		}
	}
}

func TestRequireRoles_NoCaller(t *testing.T) {
	called, err := runRequireRoles(t, nil, domain.RoleAdmin)
	if called || !errors.Is(err, domain.ErrIdentityUnresolved) {
		t.Fatalf("expected ErrIdentityUnresolved, got called=%v err=%v", called, err)
	}
}
