package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

func TestUserRepository_EmailIsUniqueAndCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	created, err := repo.Create(ctx, &domain.User{Name: "A", Email: "A@X.com"})
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", created.Email)

	_, err = repo.Create(ctx, &domain.User{Name: "B", Email: "a@x.com"})
	assert.ErrorIs(t, err, domain.ErrUserExists)

	found, err := repo.FindByEmail(ctx, "a@X.COM")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	require.NoError(t, repo.Delete(ctx, created.ID))
	_, err = repo.FindByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestTaskRepository_ListFilters(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	for i, tc := range []struct {
		title string
		owner string
		done  bool
	}{
		{"write report", "u1", false},
		{"Review report", "u1", true},
		{"plan sprint", "u2", false},
	} {
		_, err := repo.Create(ctx, &domain.Task{
			Title:     tc.title,
			OwnerID:   tc.owner,
			Status:    tc.done,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	tasks, total, err := repo.List(ctx, ports.ListTasksFilter{OwnerID: "u1", Search: "REPORT", Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, tasks, 2)

	done := true
	tasks, total, err = repo.List(ctx, ports.ListTasksFilter{Status: &done, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Review report", tasks[0].Title)

	tasks, _, err = repo.List(ctx, ports.ListTasksFilter{SortBy: "created_at", SortDesc: true, Page: 1, Limit: 2})
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "plan sprint", tasks[0].Title)

	tasks, total, err = repo.List(ctx, ports.ListTasksFilter{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, tasks, 1)

	stats, err := repo.Stats(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStats{TotalTasks: 2, CompletedTasks: 1, PendingTasks: 1}, stats)
}

func TestLoginThrottle_BlocksWithinWindow(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	throttle := NewLoginThrottle(2, time.Minute, WithClock(func() time.Time { return now }))

	require.NoError(t, throttle.RecordFailure(ctx, "a@x.com"))
	blocked, _ := throttle.Blocked(ctx, "a@x.com")
	assert.False(t, blocked)

	require.NoError(t, throttle.RecordFailure(ctx, "a@x.com"))
	blocked, _ = throttle.Blocked(ctx, "a@x.com")
	assert.True(t, blocked)

	now = now.Add(time.Minute)
	blocked, _ = throttle.Blocked(ctx, "a@x.com")
	assert.False(t, blocked, "window elapsed")
}

func TestRefreshDenylist_ExpiresEntries(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	list := NewRefreshDenylist(WithClock(func() time.Time { return now }))

	require.NoError(t, list.Revoke(ctx, "jti-1", now.Add(time.Hour)))
	revoked, _ := list.IsRevoked(ctx, "jti-1")
	assert.True(t, revoked)

	now = now.Add(time.Hour)
	revoked, _ = list.IsRevoked(ctx, "jti-1")
	assert.False(t, revoked)
}
