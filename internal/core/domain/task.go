package domain

import "time"

// Task is the owned resource consulted by the authorization guard.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Status      bool       `json:"status"`
	OwnerID     string     `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TaskStats summarises completion counts for a set of tasks.
type TaskStats struct {
	TotalTasks     int64 `json:"totalTasks"`
	CompletedTasks int64 `json:"completedTasks"`
	PendingTasks   int64 `json:"pendingTasks"`
}

// DateRange names the supported created-at windows for task listings.
type DateRange string

const (
	RangeWeekly  DateRange = "weekly"
	RangeMonthly DateRange = "monthly"
)

// Bounds returns the [start, end) window for the range relative to now.
// Weekly covers the last seven days including today, monthly starts on the
// first of the current month. ok is false for unknown ranges.
func (r DateRange) Bounds(now time.Time) (start, end time.Time, ok bool) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end = day.AddDate(0, 0, 1)
	switch r {
	case RangeWeekly:
		return day.AddDate(0, 0, -6), end, true
	case RangeMonthly:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), end, true
	default:
		return time.Time{}, time.Time{}, false
	}
}
