package service

import (
	"context"
	"time"

	"github.com/alexanderramin/tplans/internal/authz"
	"github.com/alexanderramin/tplans/internal/domain"
	"github.com/alexanderramin/tplans/internal/realtime"
	"github.com/alexanderramin/tplans/internal/repository"
	"github.com/google/uuid"
)

type planService struct {
	plans     repository.PlanRepo
	directory DirectoryService
	authz     authz.Authorizer
	hub       *realtime.Hub
	observer  UseCaseObserver
}

func NewPlanService(
	plans repository.PlanRepo,
	directory DirectoryService,
	authorizer authz.Authorizer,
	hub *realtime.Hub,
	observers ...UseCaseObserver,
) PlanService {
	return &planService{
		plans:     plans,
		directory: directory,
		authz:     authorizer,
		hub:       hub,
		observer:  useCaseObserverOrNoop(observers),
	}
}

func (s *planService) Create(ctx context.Context, ownerID string, in PlanInput) (id string, err error) {
	startedAt := time.Now()
	fields := map[string]any{"owner": ownerID}
	defer func() { observe(ctx, s.observer, "create-plan", startedAt, fields, err) }()

	plan, err := domain.NewPlan(uuid.New().String(), ownerID, in.Name, time.Now().UTC())
	if err != nil {
		return "", err
	}
	if err = s.plans.Create(ctx, plan); err != nil {
		return "", err
	}
	fields["plan"] = plan.ID
	s.hub.Publish(realtime.CollectionPlans)
	return plan.ID, nil
}

// Get returns the plan if actorID is a member of it.
func (s *planService) Get(ctx context.Context, actorID, planID string) (*domain.Plan, error) {
	plan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(plan, actorID, authz.ResourcePlan, authz.ActionRead); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *planService) ListForUser(ctx context.Context, userID string) ([]*domain.Plan, error) {
	if userID == "" {
		return nil, domain.ErrNotSignedIn
	}
	return s.plans.ListByMember(ctx, userID)
}

// SubscribeUserPlans delivers the full list of plans visible to userID now
// and after every plan change.
func (s *planService) SubscribeUserPlans(ctx context.Context, userID string, fn func([]*domain.Plan)) (realtime.CancelFunc, error) {
	return realtime.Subscribe(ctx, s.hub, "plans:"+userID,
		[]realtime.Collection{realtime.CollectionPlans},
		func(ctx context.Context) ([]*domain.Plan, error) {
			return s.ListForUser(ctx, userID)
		},
		fn,
	)
}

// Share sets members[granteeID] = role. Only the owner may share; sharing the
// same role twice is a no-op and a different role overwrites the old one.
func (s *planService) Share(ctx context.Context, actorID, planID, granteeID string, role domain.Role) (err error) {
	startedAt := time.Now()
	fields := map[string]any{"plan": planID, "grantee": granteeID, "role": string(role)}
	defer func() { observe(ctx, s.observer, "share-plan", startedAt, fields, err) }()

	plan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		return err
	}
	if err = s.authz.Authorize(plan, actorID, authz.ResourcePlan, authz.ActionShare); err != nil {
		return err
	}
	if granteeID == actorID {
		return domain.Validationf("cannot share a plan with yourself")
	}
	if err = plan.ValidateGrant(granteeID, role); err != nil {
		return err
	}
	if err = s.plans.SetMemberRole(ctx, planID, granteeID, role); err != nil {
		return err
	}
	s.hub.Publish(realtime.CollectionPlans)
	return nil
}

// ShareByEmail resolves email through the directory and shares with that user.
func (s *planService) ShareByEmail(ctx context.Context, actorID, planID, email string, role domain.Role) (*domain.User, error) {
	user, err := s.directory.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := s.Share(ctx, actorID, planID, user.ID, role); err != nil {
		return nil, err
	}
	return user, nil
}

// Members lists the plan's members, owner first, with profile details where
// the directory has them.
func (s *planService) Members(ctx context.Context, actorID, planID string) ([]MemberView, error) {
	plan, err := s.Get(ctx, actorID, planID)
	if err != nil {
		return nil, err
	}
	members := plan.SortedMembers()
	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.UserID
	}
	users, err := s.directory.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*domain.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	views := make([]MemberView, len(members))
	for i, m := range members {
		views[i] = MemberView{UserID: m.UserID, Role: m.Role}
		if u, ok := byID[m.UserID]; ok {
			views[i].Name = u.Name
			views[i].Email = u.Email
		}
	}
	return views, nil
}
