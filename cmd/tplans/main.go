package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/alexanderramin/tplans/internal/authz"
	"github.com/alexanderramin/tplans/internal/cli"
	"github.com/alexanderramin/tplans/internal/config"
	"github.com/alexanderramin/tplans/internal/db"
	"github.com/alexanderramin/tplans/internal/identity"
	"github.com/alexanderramin/tplans/internal/logging"
	"github.com/alexanderramin/tplans/internal/realtime"
	"github.com/alexanderramin/tplans/internal/repository"
	"github.com/alexanderramin/tplans/internal/service"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.New(cfg, os.Stderr)

	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	secret, err := cfg.ResolveJWTSecret()
	if err != nil {
		return err
	}
	enforcer, err := authz.NewEnforcer(logger)
	if err != nil {
		return err
	}
	hub := realtime.NewHub(logger)

	// Wire repositories
	planRepo := repository.NewSQLitePlanRepo(database)
	taskRepo := repository.NewSQLiteTaskRepo(database)
	requestRepo := repository.NewSQLiteChangeRequestRepo(database)
	userRepo := repository.NewSQLiteUserRepo(database)
	accountRepo := repository.NewSQLiteAccountRepo(database)

	// Wire unit of work for transactional operations
	uow := db.NewSQLiteUnitOfWork(database)

	var observers []service.UseCaseObserver
	if cfg.LogUseCases {
		observers = append(observers, service.NewLogUseCaseObserver(logger))
	}

	provider := identity.NewProvider(
		accountRepo,
		identity.NewTokenIssuer(secret, cfg.TokenTTL),
		identity.NewFileSessionStore(cfg.SessionFile),
		hub,
		logger,
	)
	directory := service.NewDirectoryService(userRepo)
	planSvc := service.NewPlanService(planRepo, directory, enforcer, hub, observers...)
	workflowSvc := service.NewWorkflowService(planRepo, taskRepo, requestRepo, uow, enforcer, hub, observers...)

	app := &cli.App{
		Identity:  service.NewIdentityService(provider, directory, observers...),
		Directory: directory,
		Plans:     planSvc,
		Tasks:     service.NewTaskService(planRepo, taskRepo, enforcer, hub),
		Workflow:  workflowSvc,
		Import:    service.NewImportService(directory, planSvc, workflowSvc, observers...),
	}

	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	// Other tplans processes write to the same database and session file;
	// the live view learns about their commits by polling.
	app.StartWatcher = func(ctx context.Context) error {
		w := realtime.NewWatcher(database, hub, cfg.PollInterval)
		w.WatchFile(cfg.SessionFile, realtime.CollectionSession)
		return w.Run(ctx)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}
