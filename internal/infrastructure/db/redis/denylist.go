package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taskmanager/task-api/internal/core/ports"
)

var _ ports.RefreshDenylist = (*RefreshDenylist)(nil)

// RefreshDenylist records revoked refresh-token ids until they would have
// expired anyway. Key format: refresh:revoked:<jti>
type RefreshDenylist struct {
	client redis.Cmdable
	now    func() time.Time
}

func NewRefreshDenylist(client redis.Cmdable) *RefreshDenylist {
	return &RefreshDenylist{client: client, now: time.Now}
}

// Revoke stores tokenID until the given expiry. Already expired tokens are
// skipped.
func (d *RefreshDenylist) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := until.Sub(d.now())
	if ttl <= 0 {
		return nil
	}
	if err := d.client.Set(ctx, d.key(tokenID), "1", ttl).Err(); err != nil {
		return storeErr("revoke refresh token", err)
	}
	return nil
}

func (d *RefreshDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(tokenID)).Result()
	if err != nil {
		return false, storeErr("refresh denylist check", err)
	}
	return n > 0, nil
}

func (d *RefreshDenylist) key(tokenID string) string {
	return fmt.Sprintf("refresh:revoked:%s", tokenID)
}
