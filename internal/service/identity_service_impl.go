package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/tplans/internal/domain"
	"github.com/alexanderramin/tplans/internal/identity"
	"github.com/alexanderramin/tplans/internal/realtime"
)

type identityService struct {
	provider  IdentityProvider
	directory DirectoryService
	observer  UseCaseObserver
}

// NewIdentityService pairs the credential provider with the directory so a
// new account always gets a profile.
func NewIdentityService(provider IdentityProvider, directory DirectoryService, observers ...UseCaseObserver) IdentityService {
	return &identityService{
		provider:  provider,
		directory: directory,
		observer:  useCaseObserverOrNoop(observers),
	}
}

func (s *identityService) SignUp(ctx context.Context, name, email, password string) (session *identity.Session, err error) {
	startedAt := time.Now()
	fields := map[string]any{"provider": string(domain.ProviderPassword)}
	defer func() { observe(ctx, s.observer, "sign-up", startedAt, fields, err) }()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.Validationf("name is required")
	}
	session, err = s.provider.SignUp(ctx, email, password)
	if err != nil {
		return nil, err
	}
	fields["user"] = session.User.ID
	if err = s.directory.CreateProfile(ctx, session.User.ID, name, session.User.Email); err != nil {
		return nil, s.abandonSession(ctx, err)
	}
	session.User.DisplayName = name
	return session, nil
}

func (s *identityService) SignIn(ctx context.Context, email, password string) (*identity.Session, error) {
	return s.provider.SignIn(ctx, email, password)
}

// SignInWithFederatedProvider provisions a directory profile the first time a
// federated identity signs in.
func (s *identityService) SignInWithFederatedProvider(ctx context.Context, fp identity.FederatedProvider) (session *identity.Session, isNewUser bool, err error) {
	startedAt := time.Now()
	fields := map[string]any{}
	defer func() { observe(ctx, s.observer, "federated-sign-in", startedAt, fields, err) }()

	session, isNewUser, err = s.provider.SignInWithFederatedProvider(ctx, fp)
	if err != nil {
		return nil, false, err
	}
	fields["user"] = session.User.ID
	fields["new_user"] = isNewUser
	if !isNewUser {
		return session, false, nil
	}

	name := session.User.DisplayName
	if name == "" {
		name, _, _ = strings.Cut(session.User.Email, "@")
	}
	if err = s.directory.CreateProfile(ctx, session.User.ID, name, session.User.Email); err != nil {
		return nil, false, s.abandonSession(ctx, err)
	}
	return session, true, nil
}

// abandonSession signs out a session whose profile could not be written.
func (s *identityService) abandonSession(ctx context.Context, cause error) error {
	if err := s.provider.SignOut(ctx); err != nil {
		return errors.Join(cause, fmt.Errorf("signing out: %w", err))
	}
	return cause
}

func (s *identityService) SignOut(ctx context.Context) error {
	return s.provider.SignOut(ctx)
}

func (s *identityService) CurrentUser(ctx context.Context) (*domain.SessionUser, error) {
	return s.provider.CurrentUser(ctx)
}

func (s *identityService) OnSessionChange(ctx context.Context, fn func(*domain.SessionUser)) (realtime.CancelFunc, error) {
	return s.provider.OnSessionChange(ctx, fn)
}
