package security

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskmanager/task-api/internal/infrastructure/queue"
)

func newTestHasher(t *testing.T) *PasswordHasher {
	t.Helper()
	pool := queue.NewPool(2, zerolog.Nop())
	t.Cleanup(pool.Stop)
	return NewPasswordHasher(pool, bcrypt.MinCost)
}

func TestPasswordHasher_RoundTrip(t *testing.T) {
	h := newTestHasher(t)
	ctx := context.Background()

	hash, err := h.Hash(ctx, "secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)

	ok, err := h.Compare(ctx, "secret1", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Compare(ctx, "secret2", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPasswordHasher_FreshSaltPerCall(t *testing.T) {
	h := newTestHasher(t)

	a, err := h.Hash(context.Background(), "secret1")
	require.NoError(t, err)
	b, err := h.Hash(context.Background(), "secret1")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestPasswordHasher_BitFlipInDigestFails(t *testing.T) {
	h := newTestHasher(t)
	ctx := context.Background()

	hash, err := h.Hash(ctx, "secret1")
	require.NoError(t, err)

	// "$2a$04$" + 22 salt chars + 31 digest chars; flip bits inside the
	// salt and digest bodies, away from the partially used final chars.
	for i := 8; i < len(hash)-2; i++ {
		if i == 28 {
			continue
		}
		mutated := []byte(hash)
		mutated[i] ^= 0x01

		ok, err := h.Compare(ctx, "secret1", string(mutated))
		require.NoError(t, err)
		assert.False(t, ok, "flip at %d still matched", i)
	}
}

func TestPasswordHasher_MalformedHashIsMismatch(t *testing.T) {
	h := newTestHasher(t)

	for _, stored := range []string{"", "plaintext", "$2a$10$short", strings.Repeat("x", 60)} {
		ok, err := h.Compare(context.Background(), "secret1", stored)
		require.NoError(t, err)
		assert.False(t, ok, "stored %q", stored)
	}
}

func TestPasswordHasher_InvalidCostFallsBack(t *testing.T) {
	h := NewPasswordHasher(nil, 99)
	assert.Equal(t, bcrypt.DefaultCost, h.cost)
}

type failingPool struct{ err error }

func (p failingPool) Submit(context.Context, func()) error { return p.err }

func TestPasswordHasher_SchedulingErrorPropagates(t *testing.T) {
	h := NewPasswordHasher(failingPool{err: context.Canceled}, bcrypt.MinCost)

	_, err := h.Hash(context.Background(), "secret1")
	assert.True(t, errors.Is(err, context.Canceled))

	_, err = h.Compare(context.Background(), "secret1", "$2a$04$x")
	assert.True(t, errors.Is(err, context.Canceled))
}
