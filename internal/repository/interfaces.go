package repository

import (
	"context"
	"time"

	"github.com/alexanderramin/tplans/internal/domain"
)

type AccountRepo interface {
	Create(ctx context.Context, a *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetByProviderSubject(ctx context.Context, provider domain.AuthProvider, subject string) (*domain.Account, error)
}

type UserRepo interface {
	Upsert(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	ListByIDs(ctx context.Context, ids []string) ([]*domain.User, error)
}

type PlanRepo interface {
	Create(ctx context.Context, p *domain.Plan) error
	GetByID(ctx context.Context, id string) (*domain.Plan, error)
	ListByMember(ctx context.Context, userID string) ([]*domain.Plan, error)
	SetMemberRole(ctx context.Context, planID, userID string, role domain.Role) error
}

type TaskRepo interface {
	Create(ctx context.Context, t *domain.Task) error
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	ListByPlan(ctx context.Context, planID string) ([]*domain.Task, error)
	Update(ctx context.Context, t *domain.Task) error
	Delete(ctx context.Context, id string) error
}

type ChangeRequestRepo interface {
	Create(ctx context.Context, r *domain.ChangeRequest) error
	GetByID(ctx context.Context, id string) (*domain.ChangeRequest, error)
	ListPending(ctx context.Context, planID string) ([]*domain.ChangeRequest, error)
	ListByPlan(ctx context.Context, planID string) ([]*domain.ChangeRequest, error)
	MarkApproved(ctx context.Context, id, approverID string, at time.Time) error
}
