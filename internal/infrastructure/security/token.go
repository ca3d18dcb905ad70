package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/taskmanager/task-api/internal/api/metrics"
	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

// TokenClass distinguishes access tokens from refresh tokens. Each class is
// signed with its own secret and carries its class in the "typ" claim.
type TokenClass string

const (
	ClassAccess  TokenClass = "access"
	ClassRefresh TokenClass = "refresh"
)

// Claims is the payload of both token classes. Refresh tokens carry no roles.
type Claims struct {
	jwt.RegisteredClaims
	// UserID mirrors the subject for clients that still read the older
	// nested user-id shape.
	UserID string     `json:"uid,omitempty"`
	Roles  []string   `json:"roles,omitempty"`
	Class  TokenClass `json:"typ"`
}

// Identity resolves the caller id from either claim shape.
func (c *Claims) Identity() (string, error) {
	switch {
	case c == nil:
		return "", domain.ErrIdentityUnresolved
	case c.Subject != "":
		return c.Subject, nil
	case c.UserID != "":
		return c.UserID, nil
	default:
		return "", domain.ErrIdentityUnresolved
	}
}

// TokenConfig carries the immutable signing settings.
type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Leeway        time.Duration
	Issuer        string
}

// TokenManager issues and verifies signed tokens. It is safe for concurrent
// use; nothing in it changes after construction.
type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
	now           func() time.Time
	parser        *jwt.Parser
}

// Option customises a TokenManager.
type Option func(*TokenManager)

// WithClock overrides the time source used for issuing and verifying.
func WithClock(now func() time.Time) Option {
	return func(m *TokenManager) { m.now = now }
}

// NewTokenManager builds a TokenManager. Lifetimes default to 15 minutes and
// 7 days when unset.
func NewTokenManager(cfg TokenConfig, opts ...Option) *TokenManager {
	m := &TokenManager{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		issuer:        cfg.Issuer,
		now:           time.Now,
	}
	if m.accessTTL <= 0 {
		m.accessTTL = 15 * time.Minute
	}
	if m.refreshTTL <= 0 {
		m.refreshTTL = 7 * 24 * time.Hour
	}
	for _, opt := range opts {
		opt(m)
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithLeeway(cfg.Leeway),
		jwt.WithTimeFunc(m.now),
	}
	if m.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(m.issuer))
	}
	m.parser = jwt.NewParser(parserOpts...)
	return m
}

// RefreshTTL is the refresh-token lifetime, used for cookie Max-Age.
func (m *TokenManager) RefreshTTL() time.Duration { return m.refreshTTL }

// IssueAccessToken mints a short-lived token carrying the roles snapshot.
func (m *TokenManager) IssueAccessToken(userID string, roles []string) (string, time.Time, error) {
	return m.issue(userID, roles, ClassAccess)
}

// IssueRefreshToken mints a long-lived token carrying only the subject.
func (m *TokenManager) IssueRefreshToken(userID string) (string, time.Time, error) {
	return m.issue(userID, nil, ClassRefresh)
}

func (m *TokenManager) issue(userID string, roles []string, class TokenClass) (string, time.Time, error) {
	if userID == "" {
		return "", time.Time{}, domain.ErrIdentityUnresolved
	}
	secret, ttl := m.settingsFor(class)

	now := m.now()
	expiresAt := now.Add(ttl).Truncate(time.Second)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
		UserID: userID,
		Roles:  roles,
		Class:  class,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing %s token: %w", class, err)
	}
	return signed, expiresAt, nil
}

// Verify checks, in order, that raw is well formed, that its signature and
// class match the expected class, and that it has not expired. The returned
// error wraps exactly one of domain.ErrTokenMalformed,
// domain.ErrTokenSignatureInvalid or domain.ErrTokenExpired.
func (m *TokenManager) Verify(raw string, class TokenClass) (*Claims, error) {
	claims, err := m.verify(raw, class)
	metrics.TokenVerificationsTotal.WithLabelValues(string(class), verifyResult(err)).Inc()
	return claims, err
}

// VerifyAccess verifies an access token and resolves its caller identity.
func (m *TokenManager) VerifyAccess(raw string) (*ports.TokenClaims, error) {
	return m.resolve(raw, ClassAccess)
}

// VerifyRefresh verifies a refresh token and resolves its subject.
func (m *TokenManager) VerifyRefresh(raw string) (*ports.TokenClaims, error) {
	return m.resolve(raw, ClassRefresh)
}

func (m *TokenManager) resolve(raw string, class TokenClass) (*ports.TokenClaims, error) {
	claims, err := m.Verify(raw, class)
	if err != nil {
		return nil, err
	}
	subject, err := claims.Identity()
	if err != nil {
		return nil, err
	}
	out := &ports.TokenClaims{
		Subject: subject,
		TokenID: claims.ID,
		Roles:   claims.Roles,
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

func (m *TokenManager) verify(raw string, class TokenClass) (*Claims, error) {
	if class != ClassAccess && class != ClassRefresh {
		return nil, fmt.Errorf("%w: unknown token class %q", domain.ErrTokenSignatureInvalid, class)
	}
	secret, _ := m.settingsFor(class)

	// Structure is judged on header and payload only; the signature segment
	// is decoded by ParseWithClaims so any damage there is a signature failure.
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: token must have three segments", domain.ErrTokenMalformed)
	}
	if _, _, err := m.parser.ParseUnverified(parts[0]+"."+parts[1]+".", &Claims{}); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTokenMalformed, err)
	}

	claims := &Claims{}
	_, err := m.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	})
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, fmt.Errorf("%w: %w", domain.ErrTokenExpired, err)
	default:
		// Header and payload parsed above, so anything left (bad signature
		// bytes, wrong algorithm, foreign issuer) is a signature failure.
		return nil, fmt.Errorf("%w: %w", domain.ErrTokenSignatureInvalid, err)
	}

	if claims.Class != class {
		return nil, fmt.Errorf("%w: expected %s token", domain.ErrTokenSignatureInvalid, class)
	}
	return claims, nil
}

func (m *TokenManager) settingsFor(class TokenClass) ([]byte, time.Duration) {
	if class == ClassRefresh {
		return m.refreshSecret, m.refreshTTL
	}
	return m.accessSecret, m.accessTTL
}

func verifyResult(err error) string {
	switch {
	case err == nil:
		return "valid"
	case errors.Is(err, domain.ErrTokenExpired):
		return "expired"
	case errors.Is(err, domain.ErrTokenMalformed):
		return "malformed"
	default:
		return "signature_invalid"
	}
}
