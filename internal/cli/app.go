package cli

import (
	"context"

	"github.com/alexanderramin/tplans/internal/service"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Identity  service.IdentityService
	Directory service.DirectoryService
	Plans     service.PlanService
	Tasks     service.TaskService
	Workflow  service.WorkflowService
	Import    service.ImportService

	// IsInteractive reports whether stdin is a terminal. Nil means never.
	IsInteractive func() bool

	// PromptPassword asks for a password on the terminal. Only called when
	// IsInteractive returns true; defaults to a huh password input.
	PromptPassword func(title string) (string, error)

	// StartWatcher begins cross-process change detection for live views and
	// returns when ctx is cancelled. Optional.
	StartWatcher func(ctx context.Context) error
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}
