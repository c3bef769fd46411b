package service

import (
	"context"

	"github.com/alexanderramin/tplans/internal/domain"
	"github.com/alexanderramin/tplans/internal/identity"
	"github.com/alexanderramin/tplans/internal/importer"
	"github.com/alexanderramin/tplans/internal/realtime"
)

// IdentityProvider is the credential store the identity service drives.
// *identity.Provider implements it.
type IdentityProvider interface {
	SignUp(ctx context.Context, email, password string) (*identity.Session, error)
	SignIn(ctx context.Context, email, password string) (*identity.Session, error)
	SignInWithFederatedProvider(ctx context.Context, fp identity.FederatedProvider) (*identity.Session, bool, error)
	SignOut(ctx context.Context) error
	CurrentUser(ctx context.Context) (*domain.SessionUser, error)
	OnSessionChange(ctx context.Context, fn func(*domain.SessionUser)) (realtime.CancelFunc, error)
}

type IdentityService interface {
	SignUp(ctx context.Context, name, email, password string) (*identity.Session, error)
	SignIn(ctx context.Context, email, password string) (*identity.Session, error)
	SignInWithFederatedProvider(ctx context.Context, fp identity.FederatedProvider) (*identity.Session, bool, error)
	SignOut(ctx context.Context) error
	CurrentUser(ctx context.Context) (*domain.SessionUser, error)
	OnSessionChange(ctx context.Context, fn func(*domain.SessionUser)) (realtime.CancelFunc, error)
}

type DirectoryService interface {
	CreateProfile(ctx context.Context, handle, name, email string) error
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, handle string) (*domain.User, error)
	ListByIDs(ctx context.Context, handles []string) ([]*domain.User, error)
}

// PlanInput carries the fields a user supplies when creating a plan.
type PlanInput struct {
	Name string
}

// MemberView is a plan member joined with their directory profile, if any.
type MemberView struct {
	UserID string
	Role   domain.Role
	Name   string
	Email  string
}

type PlanService interface {
	Create(ctx context.Context, ownerID string, in PlanInput) (string, error)
	Get(ctx context.Context, actorID, planID string) (*domain.Plan, error)
	ListForUser(ctx context.Context, userID string) ([]*domain.Plan, error)
	SubscribeUserPlans(ctx context.Context, userID string, fn func([]*domain.Plan)) (realtime.CancelFunc, error)
	Share(ctx context.Context, actorID, planID, granteeID string, role domain.Role) error
	ShareByEmail(ctx context.Context, actorID, planID, email string, role domain.Role) (*domain.User, error)
	Members(ctx context.Context, actorID, planID string) ([]MemberView, error)
}

type TaskService interface {
	List(ctx context.Context, actorID, planID string) ([]*domain.Task, error)
	SubscribeTasks(ctx context.Context, actorID, planID string, fn func([]*domain.Task)) (realtime.CancelFunc, error)
}

type WorkflowService interface {
	Submit(ctx context.Context, planID string, typ domain.ChangeRequestType, payload domain.TaskPayload, requesterID string) (string, error)
	SubscribePending(ctx context.Context, actorID, planID string, fn func([]*domain.ChangeRequest)) (realtime.CancelFunc, error)
	Approve(ctx context.Context, requestID, approverID string) error
	ListHistory(ctx context.Context, actorID, planID string) ([]*domain.ChangeRequest, error)
	Get(ctx context.Context, actorID, requestID string) (*domain.ChangeRequest, error)
}

// ImportResult reports what an import created.
type ImportResult struct {
	PlanID     string
	Shared     []string
	RequestIDs []string
	Approved   int
}

type ImportService interface {
	ImportPlan(ctx context.Context, ownerID string, schema *importer.ImportSchema, autoApprove bool) (*ImportResult, error)
}
