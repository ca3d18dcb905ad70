package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

// RefreshCookieName is the only channel the refresh token travels on.
const RefreshCookieName = "refreshToken"

// CookieConfig controls the refresh-token cookie. The cookie is always
// HttpOnly and SameSite=Strict; Secure is set in production.
type CookieConfig struct {
	Path   string
	Secure bool
	MaxAge time.Duration
}

type AuthHandler struct {
	authService ports.AuthService
	cookie      CookieConfig
}

func NewAuthHandler(authService ports.AuthService, cookie CookieConfig) *AuthHandler {
	if cookie.Path == "" {
		cookie.Path = "/"
	}
	return &AuthHandler{authService: authService, cookie: cookie}
}

// Signup creates a new user account.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signupRequest  true  "User registration details"
// @Success      201   {object}  signupResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /users/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.authService.Signup(c.Request().Context(), toSignupInput(req))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, signupResponse{
		Message: "user registered successfully",
		User:    toUserResponse(user),
	})
}

// Login authenticates a user, returns an access token and sets the refresh
// token cookie.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /users/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	h.setRefreshCookie(c, res.RefreshToken, res.RefreshExpiresAt)
	return c.JSON(http.StatusOK, loginResponse{
		Message:     "login successful",
		AccessToken: res.AccessToken,
		ExpiresAt:   res.AccessExpiresAt,
		User:        toUserResponse(res.User),
		TaskStats:   res.TaskStats,
	})
}

// RefreshToken rotates the refresh cookie into a new access token.
//
// @Summary      Refresh the access token
// @Tags         auth
// @Produce      json
// @Success      200  {object}  tokenResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /users/refresh-token [post]
func (h *AuthHandler) RefreshToken(c echo.Context) error {
	session, err := h.authService.Refresh(c.Request().Context(), h.readRefreshCookie(c))
	if err != nil {
		if errors.Is(err, domain.ErrRefreshRejected) {
			h.clearRefreshCookie(c)
		}
		return err
	}

	h.setRefreshCookie(c, session.RefreshToken, session.RefreshExpiresAt)
	return c.JSON(http.StatusOK, tokenResponse{
		AccessToken: session.AccessToken,
		ExpiresAt:   session.AccessExpiresAt,
	})
}

// Logout clears the refresh cookie. It always succeeds.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  messageResponse
// @Router       /users/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	_ = h.authService.Logout(c.Request().Context(), h.readRefreshCookie(c))
	h.clearRefreshCookie(c)
	return c.JSON(http.StatusOK, messageResponse{Message: "logged out successfully"})
}

func (h *AuthHandler) readRefreshCookie(c echo.Context) string {
	cookie, err := c.Cookie(RefreshCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (h *AuthHandler) setRefreshCookie(c echo.Context, token string, expires time.Time) {
	maxAge := int(h.cookie.MaxAge.Seconds())
	if maxAge <= 0 {
		maxAge = int(time.Until(expires).Seconds())
	}
	c.SetCookie(&http.Cookie{
		Name:     RefreshCookieName,
		Value:    token,
		Path:     h.cookie.Path,
		MaxAge:   maxAge,
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		Path:     h.cookie.Path,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// bindAndValidate decodes the request into req and runs the validator.
// Decoding failures are validation errors.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return fmt.Errorf("%w: invalid payload", domain.ErrValidation)
	}
	return c.Validate(req)
}
