package service

import (
	"context"

	"github.com/alexanderramin/tplans/internal/authz"
	"github.com/alexanderramin/tplans/internal/domain"
	"github.com/alexanderramin/tplans/internal/realtime"
	"github.com/alexanderramin/tplans/internal/repository"
)

// taskService is read-only. Tasks change only when a request is approved.
type taskService struct {
	plans repository.PlanRepo
	tasks repository.TaskRepo
	authz authz.Authorizer
	hub   *realtime.Hub
}

func NewTaskService(plans repository.PlanRepo, tasks repository.TaskRepo, authorizer authz.Authorizer, hub *realtime.Hub) TaskService {
	return &taskService{plans: plans, tasks: tasks, authz: authorizer, hub: hub}
}

// List returns the plan's tasks ordered by their order field.
func (s *taskService) List(ctx context.Context, actorID, planID string) ([]*domain.Task, error) {
	plan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(plan, actorID, authz.ResourceTask, authz.ActionRead); err != nil {
		return nil, err
	}
	tasks, err := s.tasks.ListByPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	domain.SortTasks(tasks)
	return tasks, nil
}

func (s *taskService) SubscribeTasks(ctx context.Context, actorID, planID string, fn func([]*domain.Task)) (realtime.CancelFunc, error) {
	return realtime.Subscribe(ctx, s.hub, "tasks:"+planID,
		[]realtime.Collection{realtime.CollectionTasks, realtime.CollectionPlans},
		func(ctx context.Context) ([]*domain.Task, error) {
			return s.List(ctx, actorID, planID)
		},
		fn,
	)
}
