package service

import (
	"github.com/rs/zerolog"

	"github.com/taskmanager/task-api/internal/api/metrics"
	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

const (
	defaultPage  = 1
	maxPageLimit = 100
	// maxPage keeps (page-1)*limit well inside int64 skip values.
	maxPage = 1_000_000
)

// authorize runs the role and ownership gates for caller against a resource
// owned by ownerID and records the decision.
func authorize(logger zerolog.Logger, caller ports.Caller, required []domain.Role, ownerID string) error {
	decision := domain.Authorize(caller.Effective(), required, ownerID, caller.ID)
	if decision.Allowed {
		metrics.AuthorizationDecisionsTotal.WithLabelValues("allow", "").Inc()
		return nil
	}
	metrics.AuthorizationDecisionsTotal.WithLabelValues("deny", string(decision.Reason)).Inc()
	logger.Info().
		Str("caller_id", caller.ID).
		Str("owner_id", ownerID).
		Str("reason", string(decision.Reason)).
		Msg("authorization denied")
	return decision.Err()
}

// statsOwner scopes task statistics: elevated roles see every task, other
// callers only their own.
func statsOwner(userID string, effective domain.RoleSet) string {
	if effective.HasAny(domain.RoleAdmin, domain.RoleEditor, domain.RoleViewer) {
		return ""
	}
	return userID
}

func normalizePaging(page, limit, defaultLimit int) (int, int) {
	if page < 1 {
		page = defaultPage
	}
	if page > maxPage {
		page = maxPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

func newPage[T any](items []T, total int64, page, limit int) *ports.Page[T] {
	pages := int((total + int64(limit) - 1) / int64(limit))
	if items == nil {
		items = []T{}
	}
	return &ports.Page[T]{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: pages,
	}
}
