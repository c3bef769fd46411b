package service

import (
	"context"
	"time"

	"github.com/alexanderramin/tplans/internal/authz"
	"github.com/alexanderramin/tplans/internal/db"
	"github.com/alexanderramin/tplans/internal/domain"
	"github.com/alexanderramin/tplans/internal/realtime"
	"github.com/alexanderramin/tplans/internal/repository"
	"github.com/google/uuid"
)

type workflowService struct {
	plans    repository.PlanRepo
	tasks    repository.TaskRepo
	requests repository.ChangeRequestRepo
	uow      db.UnitOfWork
	authz    authz.Authorizer
	hub      *realtime.Hub
	observer UseCaseObserver
}

func NewWorkflowService(
	plans repository.PlanRepo,
	tasks repository.TaskRepo,
	requests repository.ChangeRequestRepo,
	uow db.UnitOfWork,
	authorizer authz.Authorizer,
	hub *realtime.Hub,
	observers ...UseCaseObserver,
) WorkflowService {
	return &workflowService{
		plans:    plans,
		tasks:    tasks,
		requests: requests,
		uow:      uow,
		authz:    authorizer,
		hub:      hub,
		observer: useCaseObserverOrNoop(observers),
	}
}

// Submit records a Pending request against planID. Any member may submit.
func (s *workflowService) Submit(ctx context.Context, planID string, typ domain.ChangeRequestType, payload domain.TaskPayload, requesterID string) (id string, err error) {
	startedAt := time.Now()
	fields := map[string]any{"plan": planID, "type": string(typ), "requester": requesterID}
	defer func() { observe(ctx, s.observer, "submit-request", startedAt, fields, err) }()

	plan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		return "", err
	}
	if err = s.authz.Authorize(plan, requesterID, authz.ResourceRequest, authz.ActionSubmit); err != nil {
		return "", err
	}
	cr, err := domain.NewChangeRequest(uuid.New().String(), planID, typ, payload, requesterID, time.Now().UTC())
	if err != nil {
		return "", err
	}
	if payload.TaskID != "" {
		if _, err = planTask(ctx, s.tasks, planID, payload.TaskID); err != nil {
			return "", err
		}
	}
	if err = s.requests.Create(ctx, cr); err != nil {
		return "", err
	}
	fields["request"] = cr.ID
	s.hub.Publish(realtime.CollectionChangeRequests)
	return cr.ID, nil
}

// SubscribePending delivers the plan's Pending requests, oldest first.
func (s *workflowService) SubscribePending(ctx context.Context, actorID, planID string, fn func([]*domain.ChangeRequest)) (realtime.CancelFunc, error) {
	return realtime.Subscribe(ctx, s.hub, "requests:"+planID,
		[]realtime.Collection{realtime.CollectionChangeRequests, realtime.CollectionPlans},
		func(ctx context.Context) ([]*domain.ChangeRequest, error) {
			if _, err := s.readablePlan(ctx, actorID, planID); err != nil {
				return nil, err
			}
			return s.requests.ListPending(ctx, planID)
		},
		fn,
	)
}

// Approve flips the request to Approved and applies its task mutation in one
// transaction. Any failure leaves both the request and the tasks untouched.
func (s *workflowService) Approve(ctx context.Context, requestID, approverID string) (err error) {
	startedAt := time.Now()
	fields := map[string]any{"request": requestID, "approver": approverID}
	defer func() { observe(ctx, s.observer, "approve-request", startedAt, fields, err) }()

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.Tx) error {
		txRequests := repository.NewSQLiteChangeRequestRepo(tx)
		txPlans := repository.NewSQLitePlanRepo(tx)
		txTasks := repository.NewSQLiteTaskRepo(tx)

		cr, err := txRequests.GetByID(ctx, requestID)
		if err != nil {
			return err
		}
		fields["plan"] = cr.PlanID
		fields["type"] = string(cr.Type)

		plan, err := txPlans.GetByID(ctx, cr.PlanID)
		if err != nil {
			return err
		}
		if err := s.authz.Authorize(plan, approverID, authz.ResourceRequest, authz.ActionApprove); err != nil {
			return err
		}

		now := time.Now().UTC()
		if err := cr.Approve(approverID, now); err != nil {
			return err
		}
		if err := applyChange(ctx, txTasks, cr, now); err != nil {
			return err
		}
		if err := txRequests.MarkApproved(ctx, cr.ID, approverID, now); err != nil {
			return err
		}

		tx.AfterCommit(func() {
			s.hub.Publish(realtime.CollectionTasks, realtime.CollectionChangeRequests)
		})
		return nil
	})
}

// ListHistory returns every request of the plan, newest first.
func (s *workflowService) ListHistory(ctx context.Context, actorID, planID string) ([]*domain.ChangeRequest, error) {
	if _, err := s.readablePlan(ctx, actorID, planID); err != nil {
		return nil, err
	}
	return s.requests.ListByPlan(ctx, planID)
}

func (s *workflowService) Get(ctx context.Context, actorID, requestID string) (*domain.ChangeRequest, error) {
	cr, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if _, err := s.readablePlan(ctx, actorID, cr.PlanID); err != nil {
		return nil, err
	}
	return cr, nil
}

func (s *workflowService) readablePlan(ctx context.Context, actorID, planID string) (*domain.Plan, error) {
	plan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(plan, actorID, authz.ResourceRequest, authz.ActionRead); err != nil {
		return nil, err
	}
	return plan, nil
}

// applyChange performs the task write a request describes.
func applyChange(ctx context.Context, tasks repository.TaskRepo, cr *domain.ChangeRequest, now time.Time) error {
	payload, err := cr.DecodePayload()
	if err != nil {
		return err
	}
	switch cr.Type {
	case domain.RequestCreateTask:
		task := payload.NewTask(uuid.New().String(), cr.PlanID, now)
		if err := task.Validate(); err != nil {
			return err
		}
		return tasks.Create(ctx, task)
	case domain.RequestUpdateTask:
		task, err := planTask(ctx, tasks, cr.PlanID, payload.TaskID)
		if err != nil {
			return err
		}
		payload.ApplyTo(task, now)
		if err := task.Validate(); err != nil {
			return err
		}
		return tasks.Update(ctx, task)
	case domain.RequestDeleteTask:
		if _, err := planTask(ctx, tasks, cr.PlanID, payload.TaskID); err != nil {
			return err
		}
		return tasks.Delete(ctx, payload.TaskID)
	}
	return domain.Validationf("unknown change request type %q", cr.Type)
}

// planTask loads taskID and reports NotFound when it belongs to another plan.
func planTask(ctx context.Context, tasks repository.TaskRepo, planID, taskID string) (*domain.Task, error) {
	task, err := tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.PlanID != planID {
		return nil, domain.NotFoundf("task %s in plan %s", taskID, planID)
	}
	return task, nil
}
