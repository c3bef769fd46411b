package service

import (
	"context"
	"strings"
	"time"

	"github.com/alexanderramin/tplans/internal/domain"
	"github.com/alexanderramin/tplans/internal/repository"
)

type directoryService struct {
	users repository.UserRepo
}

func NewDirectoryService(users repository.UserRepo) DirectoryService {
	return &directoryService{users: users}
}

// CreateProfile upserts the profile for handle. Calling it again with the same
// handle overwrites name and email.
func (s *directoryService) CreateProfile(ctx context.Context, handle, name, email string) error {
	handle = strings.TrimSpace(handle)
	name = strings.TrimSpace(name)
	email = domain.NormalizeEmail(email)
	switch {
	case handle == "":
		return domain.Validationf("profile handle is required")
	case name == "":
		return domain.Validationf("profile name is required")
	case email == "":
		return domain.Validationf("profile email is required")
	case !domain.ValidEmail(email):
		return domain.Validationf("profile email %q is not a valid address", email)
	}
	return s.users.Upsert(ctx, &domain.User{
		ID:        handle,
		Name:      name,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	})
}

func (s *directoryService) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return nil, domain.Validationf("email is required")
	}
	return s.users.FindByEmail(ctx, email)
}

func (s *directoryService) GetByID(ctx context.Context, handle string) (*domain.User, error) {
	return s.users.GetByID(ctx, handle)
}

func (s *directoryService) ListByIDs(ctx context.Context, handles []string) ([]*domain.User, error) {
	return s.users.ListByIDs(ctx, handles)
}
