package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/taskmanager/task-api/internal/api/metrics"
	"github.com/taskmanager/task-api/internal/core/domain"
)

// RequireRoles is the route-level role gate. The caller's stored labels are
// resolved into effective roles first, so editor+viewer passes an admin gate.
// Ownership checks happen later in the services.
func RequireRoles(roles ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller, err := CallerFrom(c)
			if err != nil {
				metrics.AuthorizationDecisionsTotal.WithLabelValues("deny", string(domain.ReasonIdentityUnresolved)).Inc()
				return err
			}
			if !caller.Effective().HasAny(roles...) {
				metrics.AuthorizationDecisionsTotal.WithLabelValues("deny", string(domain.ReasonInsufficientRole)).Inc()
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
