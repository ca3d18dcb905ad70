package memory

import (
	"context"
	"sync"
	"time"

	"github.com/taskmanager/task-api/internal/core/ports"
)

var (
	_ ports.LoginThrottle   = (*LoginThrottle)(nil)
	_ ports.RefreshDenylist = (*RefreshDenylist)(nil)
)

// Option customises the clock of the time-bound stores.
type Option func(*clock)

type clock struct{ now func() time.Time }

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *clock) { c.now = now }
}

func newClock(opts []Option) clock {
	c := clock{now: time.Now}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// LoginThrottle counts failures per email inside a fixed window that starts
// at the first failure.
type LoginThrottle struct {
	mu          sync.Mutex
	clock
	maxAttempts int
	window      time.Duration
	entries     map[string]attempts
}

type attempts struct {
	count   int
	expires time.Time
}

func NewLoginThrottle(maxAttempts int, window time.Duration, opts ...Option) *LoginThrottle {
	return &LoginThrottle{
		clock:       newClock(opts),
		maxAttempts: maxAttempts,
		window:      window,
		entries:     make(map[string]attempts),
	}
}

func (t *LoginThrottle) Blocked(_ context.Context, email string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.live(email)
	return ok && e.count >= t.maxAttempts, nil
}

func (t *LoginThrottle) RecordFailure(_ context.Context, email string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.live(email)
	if !ok {
		e = attempts{expires: t.now().Add(t.window)}
	}
	e.count++
	t.entries[email] = e
	return nil
}

func (t *LoginThrottle) Reset(_ context.Context, email string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, email)
	return nil
}

func (t *LoginThrottle) live(email string) (attempts, bool) {
	e, ok := t.entries[email]
	if !ok {
		return attempts{}, false
	}
	if !t.now().Before(e.expires) {
		delete(t.entries, email)
		return attempts{}, false
	}
	return e, true
}

// RefreshDenylist keeps revoked token ids until their expiry.
type RefreshDenylist struct {
	mu sync.Mutex
	clock
	revoked map[string]time.Time
}

func NewRefreshDenylist(opts ...Option) *RefreshDenylist {
	return &RefreshDenylist{clock: newClock(opts), revoked: make(map[string]time.Time)}
}

func (d *RefreshDenylist) Revoke(_ context.Context, tokenID string, until time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.revoked[tokenID] = until
	return nil
}

func (d *RefreshDenylist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	until, ok := d.revoked[tokenID]
	if !ok {
		return false, nil
	}
	if !d.now().Before(until) {
		delete(d.revoked, tokenID)
		return false, nil
	}
	return true, nil
}
