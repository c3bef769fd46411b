// Package authz decides what a plan member may do, based on the role the
// plan's membership map assigns them.
package authz

import (
	"embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alexanderramin/tplans/internal/domain"
	"github.com/casbin/casbin/v3"
)

//go:embed model.conf policy.csv
var embedFS embed.FS

type Resource string

const (
	ResourcePlan    Resource = "plan"
	ResourceTask    Resource = "task"
	ResourceRequest Resource = "request"
)

type Action string

const (
	ActionRead    Action = "read"
	ActionShare   Action = "share"
	ActionSubmit  Action = "submit"
	ActionApprove Action = "approve"
)

// Authorizer checks plan-scoped permissions.
type Authorizer interface {
	Authorize(plan *domain.Plan, userID string, res Resource, act Action) error
}

// Enforcer is a casbin-backed Authorizer. The policy subject is the member's
// role, so one static policy serves every plan.
type Enforcer struct {
	enforcer *casbin.Enforcer
	logger   *slog.Logger
}

// NewEnforcer loads the embedded model and policy.
func NewEnforcer(logger *slog.Logger) (*Enforcer, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	dir, err := os.MkdirTemp("", "tplans-casbin-*")
	if err != nil {
		return nil, fmt.Errorf("creating policy dir: %w", err)
	}
	defer os.RemoveAll(dir)

	if err := writeEmbedToDir(dir, "model.conf", "policy.csv"); err != nil {
		return nil, err
	}
	e, err := casbin.NewEnforcer(filepath.Join(dir, "model.conf"), filepath.Join(dir, "policy.csv"))
	if err != nil {
		return nil, fmt.Errorf("loading policy: %w", err)
	}
	return &Enforcer{enforcer: e, logger: logger}, nil
}

func writeEmbedToDir(dir string, names ...string) error {
	for _, name := range names {
		data, err := embedFS.ReadFile(name)
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(dir, name), data, 0600); err != nil {
			return err
		}
	}
	return nil
}

// Allowed reports whether role may perform act on res.
func (e *Enforcer) Allowed(role domain.Role, res Resource, act Action) (bool, error) {
	return e.enforcer.Enforce(string(role), string(res), string(act))
}

// Authorize returns ErrForbidden unless userID holds a role in plan that
// grants act on res.
func (e *Enforcer) Authorize(plan *domain.Plan, userID string, res Resource, act Action) error {
	role, ok := plan.RoleOf(userID)
	if !ok {
		e.logger.Debug("authz denied: not a member", "plan", planID(plan), "user", userID)
		return domain.Forbiddenf("not a member of plan %s", planID(plan))
	}
	allowed, err := e.Allowed(role, res, act)
	if err != nil {
		return fmt.Errorf("evaluating policy: %w", err)
	}
	if !allowed {
		e.logger.Debug("authz denied", "plan", planID(plan), "user", userID, "role", role, "resource", res, "action", act)
		return domain.Forbiddenf("%s cannot %s %s", role, act, res)
	}
	return nil
}

func planID(p *domain.Plan) string {
	if p == nil {
		return ""
	}
	return p.ID
}
