package identity

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/tplans/internal/domain"
)

// FederatedIdentity is what an external provider vouches for.
type FederatedIdentity struct {
	Provider    domain.AuthProvider
	Subject     string
	Email       string
	DisplayName string
}

func (f FederatedIdentity) validate() error {
	if !domain.ValidFederatedProviders[f.Provider] {
		return domain.Validationf("unsupported provider %q", f.Provider)
	}
	if strings.TrimSpace(f.Subject) == "" {
		return domain.Validationf("%s subject is required", f.Provider)
	}
	if !domain.ValidEmail(domain.NormalizeEmail(f.Email)) {
		return fmt.Errorf("%q: %w", f.Email, domain.ErrInvalidEmail)
	}
	return nil
}

// FederatedProvider authenticates a user with an external identity provider.
type FederatedProvider interface {
	Authenticate(ctx context.Context) (FederatedIdentity, error)
}

// AssertedProvider returns a fixed identity. It stands in for an interactive
// OAuth popup when the caller already holds a verified identity.
type AssertedProvider struct {
	Identity FederatedIdentity
}

func (p AssertedProvider) Authenticate(ctx context.Context) (FederatedIdentity, error) {
	if err := ctx.Err(); err != nil {
		return FederatedIdentity{}, err
	}
	return p.Identity, nil
}
