package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/tplans/internal/domain"
	"github.com/spf13/pflag"
)

// requireUser returns the signed-in user or ErrNotSignedIn.
func requireUser(ctx context.Context, app *App) (*domain.SessionUser, error) {
	u, err := app.Identity.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("%w (run `tplans auth signin`)", domain.ErrNotSignedIn)
	}
	return u, nil
}

// resolvePlanID resolves a plan reference, a full ID or a unique ID prefix,
// among the plans visible to userID.
func resolvePlanID(ctx context.Context, app *App, userID, input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("plan ID is required")
	}
	plans, err := app.Plans.ListForUser(ctx, userID)
	if err != nil {
		return "", err
	}
	ids := make([]string, len(plans))
	for i, p := range plans {
		ids[i] = p.ID
	}
	return matchID("plan", ids, input)
}

// resolveTaskID resolves a task reference within a plan.
func resolveTaskID(ctx context.Context, app *App, userID, planID, input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("task ID is required")
	}
	tasks, err := app.Tasks.List(ctx, userID, planID)
	if err != nil {
		return "", err
	}
	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	return matchID("task", ids, input)
}

// resolveRequestID resolves a change request reference across every plan
// the user belongs to.
func resolveRequestID(ctx context.Context, app *App, userID, input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("request ID is required")
	}
	plans, err := app.Plans.ListForUser(ctx, userID)
	if err != nil {
		return "", err
	}
	var ids []string
	for _, p := range plans {
		reqs, err := app.Workflow.ListHistory(ctx, userID, p.ID)
		if err != nil {
			return "", err
		}
		for _, r := range reqs {
			ids = append(ids, r.ID)
		}
	}
	return matchID("request", ids, input)
}

// matchID prefers an exact match, then a unique prefix.
func matchID(kind string, ids []string, input string) (string, error) {
	for _, id := range ids {
		if id == input {
			return id, nil
		}
	}

	var matches []string
	for _, id := range ids {
		if strings.HasPrefix(id, input) {
			matches = append(matches, id)
		}
	}

	switch len(matches) {
	case 0:
		return "", domain.NotFoundf("%s %q", kind, input)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%s ID prefix %q is ambiguous (%d matches)", kind, input, len(matches))
	}
}

// optionalString returns nil unless the flag was set on the command line.
func optionalString(flags *pflag.FlagSet, name string) (*string, error) {
	if !flags.Changed(name) {
		return nil, nil
	}
	v, err := flags.GetString(name)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// optionalInt returns nil unless the flag was set on the command line.
func optionalInt(flags *pflag.FlagSet, name string) (*int, error) {
	if !flags.Changed(name) {
		return nil, nil
	}
	v, err := flags.GetInt(name)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
