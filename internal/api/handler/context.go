package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/taskmanager/task-api/internal/api/middleware"
	"github.com/taskmanager/task-api/internal/core/ports"
)

// ctxCaller extracts the caller injected by the Auth middleware and fails
// fast with ErrIdentityUnresolved before any service call when the token
// carried no usable identity.
func ctxCaller(c echo.Context) (ports.Caller, error) {
	return middleware.CallerFrom(c)
}
