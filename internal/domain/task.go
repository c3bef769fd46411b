package domain

import (
	"sort"
	"strings"
	"time"
)

const (
	DefaultTaskStatus = "Not Started"

	// DefaultTaskOrder places new tasks after manually sequenced ones.
	DefaultTaskOrder = 999
)

type Task struct {
	ID          string
	PlanID      string
	Title       string
	Description string
	Status      string
	Progress    int
	Order       int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate checks the fields every stored task must carry.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return Validationf("task title is required")
	}
	if t.PlanID == "" {
		return Validationf("task plan is required")
	}
	if t.Progress < 0 || t.Progress > 100 {
		return Validationf("progress %d must be between 0 and 100", t.Progress)
	}
	return nil
}

// SortTasks orders tasks ascending by Order, then creation time, then ID.
func SortTasks(tasks []*Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}
