package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taskmanager/task-api/internal/core/ports"
)

var _ ports.LoginThrottle = (*LoginThrottle)(nil)

// LoginThrottle counts failed logins per email in Redis.
// Key format: login:fail:<email>. The window starts at the first failure.
type LoginThrottle struct {
	client      redis.Cmdable
	maxAttempts int64
	window      time.Duration
}

// NewLoginThrottle creates a LoginThrottle wrapping the given Redis client.
func NewLoginThrottle(client redis.Cmdable, maxAttempts int, window time.Duration) *LoginThrottle {
	return &LoginThrottle{client: client, maxAttempts: int64(maxAttempts), window: window}
}

// Blocked reports whether the email has used up its attempts in the window.
func (t *LoginThrottle) Blocked(ctx context.Context, email string) (bool, error) {
	n, err := t.client.Get(ctx, t.key(email)).Int64()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, storeErr("login throttle check", err)
	}
	return n >= t.maxAttempts, nil
}

// RecordFailure increments the counter, setting the expiry on the first hit.
func (t *LoginThrottle) RecordFailure(ctx context.Context, email string) error {
	key := t.key(email)
	pipe := t.client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, t.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return storeErr("login throttle record", err)
	}
	return nil
}

// Reset clears the counter after a successful login.
func (t *LoginThrottle) Reset(ctx context.Context, email string) error {
	if err := t.client.Del(ctx, t.key(email)).Err(); err != nil {
		return storeErr("login throttle reset", err)
	}
	return nil
}

func (t *LoginThrottle) key(email string) string {
	return fmt.Sprintf("login:fail:%s", email)
}
