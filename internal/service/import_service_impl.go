package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/tplans/internal/domain"
	"github.com/alexanderramin/tplans/internal/importer"
)

type importService struct {
	directory DirectoryService
	plans     PlanService
	workflow  WorkflowService
	observer  UseCaseObserver
}

func NewImportService(directory DirectoryService, plans PlanService, workflow WorkflowService, observers ...UseCaseObserver) ImportService {
	return &importService{
		directory: directory,
		plans:     plans,
		workflow:  workflow,
		observer:  useCaseObserverOrNoop(observers),
	}
}

// ImportPlan creates a plan owned by ownerID, shares it with the listed
// members and submits one CREATE_TASK request per task, in file order. With
// autoApprove the owner approves each request as it is submitted.
//
// The schema and every member email are checked before the plan is created.
// A later failure returns the partial result alongside the error.
func (s *importService) ImportPlan(ctx context.Context, ownerID string, schema *importer.ImportSchema, autoApprove bool) (res *ImportResult, err error) {
	startedAt := time.Now()
	fields := map[string]any{"owner": ownerID, "tasks": len(schema.Tasks), "auto_approve": autoApprove}
	defer func() { observe(ctx, s.observer, "import-plan", startedAt, fields, err) }()

	if err = importer.Validate(schema); err != nil {
		return nil, err
	}
	grants := schema.Grants()
	grantees := make([]*domain.User, len(grants))
	for i, g := range grants {
		if grantees[i], err = s.directory.FindByEmail(ctx, g.Email); err != nil {
			return nil, fmt.Errorf("members[%d]: %w", i, err)
		}
		if grantees[i].ID == ownerID {
			return nil, domain.Validationf("members[%d]: %s is the importing user", i, g.Email)
		}
	}

	res = &ImportResult{}
	if res.PlanID, err = s.plans.Create(ctx, ownerID, PlanInput{Name: schema.Plan.Name}); err != nil {
		return nil, err
	}
	fields["plan"] = res.PlanID

	for i, g := range grants {
		if err = s.plans.Share(ctx, ownerID, res.PlanID, grantees[i].ID, g.Role); err != nil {
			return res, fmt.Errorf("sharing with %s: %w", g.Email, err)
		}
		res.Shared = append(res.Shared, g.Email)
	}

	for i, payload := range schema.Payloads() {
		var id string
		if id, err = s.workflow.Submit(ctx, res.PlanID, domain.RequestCreateTask, payload, ownerID); err != nil {
			return res, fmt.Errorf("tasks[%d]: %w", i, err)
		}
		res.RequestIDs = append(res.RequestIDs, id)
		if !autoApprove {
			continue
		}
		if err = s.workflow.Approve(ctx, id, ownerID); err != nil {
			return res, fmt.Errorf("approving tasks[%d]: %w", i, err)
		}
		res.Approved++
	}
	return res, nil
}
