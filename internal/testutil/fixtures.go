package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/alexanderramin/tplans/internal/domain"
	"github.com/google/uuid"
)

var fixtureCounter atomic.Int64

// fixtureTime hands out strictly increasing timestamps so ordering by
// created_at is deterministic within a test.
func fixtureTime() time.Time {
	n := fixtureCounter.Add(1)
	return time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC).Add(time.Duration(n) * time.Millisecond)
}

// User options
type UserOption func(*domain.User)

func WithEmail(email string) UserOption {
	return func(u *domain.User) {
		u.Email = email
	}
}

func NewTestUser(name string, opts ...UserOption) *domain.User {
	n := fixtureCounter.Load() + 1
	u := &domain.User{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     fmt.Sprintf("user%d@example.com", n),
		CreatedAt: fixtureTime(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Plan options
type PlanOption func(*domain.Plan)

func WithMember(userID string, role domain.Role) PlanOption {
	return func(p *domain.Plan) {
		p.Members[userID] = role
	}
}

func NewTestPlan(ownerID, name string, opts ...PlanOption) *domain.Plan {
	p := &domain.Plan{
		ID:        uuid.New().String(),
		Name:      name,
		OwnerID:   ownerID,
		Members:   map[string]domain.Role{ownerID: domain.RoleOwner},
		CreatedAt: fixtureTime(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Task options
type TaskOption func(*domain.Task)

func WithOrder(order int) TaskOption {
	return func(t *domain.Task) {
		t.Order = order
	}
}

func WithProgress(progress int) TaskOption {
	return func(t *domain.Task) {
		t.Progress = progress
	}
}

func WithStatus(status string) TaskOption {
	return func(t *domain.Task) {
		t.Status = status
	}
}

func NewTestTask(planID, title string, opts ...TaskOption) *domain.Task {
	now := fixtureTime()
	t := &domain.Task{
		ID:        uuid.New().String(),
		PlanID:    planID,
		Title:     title,
		Status:    domain.DefaultTaskStatus,
		Order:     domain.DefaultTaskOrder,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// NewTestChangeRequest builds a Pending request. It panics on an invalid
// payload since fixtures are expected to be well-formed.
func NewTestChangeRequest(planID, requestedBy string, typ domain.ChangeRequestType, payload domain.TaskPayload) *domain.ChangeRequest {
	cr, err := domain.NewChangeRequest(uuid.New().String(), planID, typ, payload, requestedBy, fixtureTime())
	if err != nil {
		panic(fmt.Sprintf("testutil: invalid change request fixture: %v", err))
	}
	return cr
}

func Ptr[T any](v T) *T {
	return &v
}
