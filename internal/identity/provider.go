// Package identity is the local identity provider: password and federated
// accounts, signed session tokens and session-change notifications.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alexanderramin/tplans/internal/domain"
	"github.com/alexanderramin/tplans/internal/realtime"
	"github.com/alexanderramin/tplans/internal/repository"
	"github.com/google/uuid"
)

// Session is the result of a successful sign-in.
type Session struct {
	User      domain.SessionUser
	Token     string
	ExpiresAt time.Time
}

// Provider implements sign-up, sign-in and sign-out against the accounts
// table. The current session is whatever token the store holds.
type Provider struct {
	accounts repository.AccountRepo
	tokens   *TokenIssuer
	store    SessionStore
	hub      *realtime.Hub
	logger   *slog.Logger
	now      func() time.Time
}

func NewProvider(accounts repository.AccountRepo, tokens *TokenIssuer, store SessionStore, hub *realtime.Hub, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Provider{
		accounts: accounts,
		tokens:   tokens,
		store:    store,
		hub:      hub,
		logger:   logger,
		now:      time.Now,
	}
}

// SignUp creates a password account and signs it in.
func (p *Provider) SignUp(ctx context.Context, email, password string) (*Session, error) {
	email = domain.NormalizeEmail(email)
	if !domain.ValidEmail(email) {
		return nil, fmt.Errorf("%q: %w", email, domain.ErrInvalidEmail)
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	acct := &domain.Account{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		Provider:     domain.ProviderPassword,
		CreatedAt:    p.now().UTC(),
	}
	if err := p.accounts.Create(ctx, acct); err != nil {
		return nil, err
	}
	p.logger.Info("account created", "user", acct.ID, "provider", acct.Provider)
	return p.startSession(domain.SessionUser{ID: acct.ID, Email: acct.Email})
}

// SignIn checks the password of an existing password account. Unknown emails
// and wrong passwords both report ErrInvalidCredential.
func (p *Provider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	acct, err := p.accounts.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrInvalidCredential
	}
	if err != nil {
		return nil, err
	}
	if acct.Provider != domain.ProviderPassword {
		return nil, fmt.Errorf("account uses %s sign-in: %w", acct.Provider, domain.ErrInvalidCredential)
	}
	if err := CheckPassword(acct.PasswordHash, password); err != nil {
		return nil, err
	}
	return p.startSession(domain.SessionUser{ID: acct.ID, Email: acct.Email})
}

// SignInWithFederatedProvider links or reuses the account for the provider's
// (provider, subject) pair. isNewUser is true when the account was created by
// this call.
func (p *Provider) SignInWithFederatedProvider(ctx context.Context, fp FederatedProvider) (*Session, bool, error) {
	fed, err := fp.Authenticate(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("federated sign-in: %w: %w", domain.ErrAuth, err)
	}
	if err := fed.validate(); err != nil {
		return nil, false, err
	}

	acct, err := p.accounts.GetByProviderSubject(ctx, fed.Provider, fed.Subject)
	switch {
	case err == nil:
		s, err := p.startSession(domain.SessionUser{ID: acct.ID, Email: acct.Email, DisplayName: fed.DisplayName})
		return s, false, err
	case !errors.Is(err, domain.ErrNotFound):
		return nil, false, err
	}

	acct = &domain.Account{
		ID:        uuid.New().String(),
		Email:     domain.NormalizeEmail(fed.Email),
		Provider:  fed.Provider,
		Subject:   fed.Subject,
		CreatedAt: p.now().UTC(),
	}
	if err := p.accounts.Create(ctx, acct); err != nil {
		return nil, false, err
	}
	p.logger.Info("account created", "user", acct.ID, "provider", acct.Provider)
	s, err := p.startSession(domain.SessionUser{ID: acct.ID, Email: acct.Email, DisplayName: fed.DisplayName})
	return s, true, err
}

// SignOut forgets the stored session. Signing out twice is not an error.
func (p *Provider) SignOut(ctx context.Context) error {
	if err := p.store.Clear(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrTransport, err)
	}
	p.publish()
	return nil
}

// CurrentUser resolves the stored token. A missing, expired or invalid token
// means nobody is signed in and yields nil without error.
func (p *Provider) CurrentUser(ctx context.Context) (*domain.SessionUser, error) {
	token, err := p.store.Load()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTransport, err)
	}
	if token == "" {
		return nil, nil
	}
	user, _, err := p.tokens.Parse(token)
	if err != nil {
		p.logger.Debug("ignoring stored session", "error", err)
		return nil, nil
	}
	return &user, nil
}

// OnSessionChange delivers the current user (nil when signed out) once at
// registration and again whenever the session changes.
func (p *Provider) OnSessionChange(ctx context.Context, fn func(*domain.SessionUser)) (realtime.CancelFunc, error) {
	return realtime.Subscribe(ctx, p.hub, "session",
		[]realtime.Collection{realtime.CollectionSession},
		p.CurrentUser,
		fn,
	)
}

func (p *Provider) startSession(user domain.SessionUser) (*Session, error) {
	token, exp, err := p.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	if err := p.store.Save(token); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTransport, err)
	}
	p.publish()
	return &Session{User: user, Token: token, ExpiresAt: exp}, nil
}

func (p *Provider) publish() {
	if p.hub != nil {
		p.hub.Publish(realtime.CollectionSession)
	}
}
