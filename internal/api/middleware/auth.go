package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

const callerKey = "caller"

// Auth verifies the bearer access token and stores the resolved caller in
// the request context. A missing token is ErrTokenMissing; verification
// errors pass through unchanged so the error handler can tell an expired
// token from a forged one.
func Auth(tokens ports.TokenService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return domain.ErrTokenMissing
			}

			claims, err := tokens.VerifyAccess(raw)
			if err != nil {
				return err
			}

			c.Set(callerKey, claims.Caller())
			return next(c)
		}
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// CallerFrom returns the caller stored by Auth. An absent or anonymous caller
// is ErrIdentityUnresolved.
func CallerFrom(c echo.Context) (ports.Caller, error) {
	caller, ok := c.Get(callerKey).(ports.Caller)
	if !ok || caller.ID == "" {
		return ports.Caller{}, domain.ErrIdentityUnresolved
	}
	return caller, nil
}
