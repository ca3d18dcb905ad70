package ports

import (
	"context"
	"time"
)

// PasswordHasher is the one-way salted hash primitive.
type PasswordHasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	// Compare reports a malformed stored hash as a mismatch.
	Compare(ctx context.Context, plaintext, hash string) (bool, error)
}

// TokenClaims is the verified content of a token with the caller identity
// already resolved.
type TokenClaims struct {
	Subject   string
	TokenID   string
	Roles     []string
	ExpiresAt time.Time
}

// Caller converts access-token claims into a request identity.
func (c *TokenClaims) Caller() Caller {
	return Caller{ID: c.Subject, Roles: c.Roles}
}

// TokenService issues and verifies both token classes. Verification errors
// wrap domain.ErrTokenMalformed, domain.ErrTokenSignatureInvalid,
// domain.ErrTokenExpired or domain.ErrIdentityUnresolved.
type TokenService interface {
	IssueAccessToken(userID string, roles []string) (string, time.Time, error)
	IssueRefreshToken(userID string) (string, time.Time, error)
	VerifyAccess(raw string) (*TokenClaims, error)
	VerifyRefresh(raw string) (*TokenClaims, error)
}
