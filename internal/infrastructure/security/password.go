package security

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/taskmanager/task-api/internal/api/metrics"
)

// Submitter schedules CPU-bound work; *queue.Pool satisfies it.
type Submitter interface {
	Submit(ctx context.Context, fn func()) error
}

// PasswordHasher hashes and verifies passwords with bcrypt on a bounded pool.
// The salt is generated per call and embedded in the encoded hash.
type PasswordHasher struct {
	pool Submitter
	cost int
}

// NewPasswordHasher returns a hasher using cost, falling back to
// bcrypt.DefaultCost when cost is out of range.
func NewPasswordHasher(pool Submitter, cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{pool: pool, cost: cost}
}

// Hash returns the bcrypt encoding of plaintext.
func (h *PasswordHasher) Hash(ctx context.Context, plaintext string) (string, error) {
	var (
		hash []byte
		err  error
	)
	start := time.Now()
	if serr := h.pool.Submit(ctx, func() {
		hash, err = bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	}); serr != nil {
		return "", fmt.Errorf("hash password: %w", serr)
	}
	metrics.PasswordHashDuration.WithLabelValues("hash").Observe(time.Since(start).Seconds())
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Compare reports whether plaintext matches hash. A malformed or corrupted
// hash is a mismatch, not an error; errors only come from scheduling.
func (h *PasswordHasher) Compare(ctx context.Context, plaintext, hash string) (bool, error) {
	var match bool
	start := time.Now()
	if err := h.pool.Submit(ctx, func() {
		match = bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
	}); err != nil {
		return false, fmt.Errorf("compare password: %w", err)
	}
	metrics.PasswordHashDuration.WithLabelValues("compare").Observe(time.Since(start).Seconds())
	return match, nil
}
