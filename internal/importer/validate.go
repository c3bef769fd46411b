package importer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/tplans/internal/domain"
)

// ValidateImportSchema checks the schema before anything is written and
// returns every problem found, not just the first.
func ValidateImportSchema(schema *ImportSchema) []error {
	var errs []error

	if strings.TrimSpace(schema.Plan.Name) == "" {
		errs = append(errs, fmt.Errorf("plan.name is required"))
	}
	errs = append(errs, validateMembers(schema.Members)...)
	errs = append(errs, validateTasks(schema.Tasks)...)

	return errs
}

// Validate joins ValidateImportSchema's findings into one ErrValidation.
func Validate(schema *ImportSchema) error {
	errs := ValidateImportSchema(schema)
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: import file:\n%w", domain.ErrValidation, errors.Join(errs...))
}

func validateMembers(members []MemberImport) []error {
	var errs []error
	seen := make(map[string]bool)

	for i, m := range members {
		prefix := fmt.Sprintf("members[%d]", i)

		email := domain.NormalizeEmail(m.Email)
		switch {
		case email == "":
			errs = append(errs, fmt.Errorf("%s.email is required", prefix))
		case !domain.ValidEmail(email):
			errs = append(errs, fmt.Errorf("%s.email: invalid address %q", prefix, m.Email))
		case seen[email]:
			errs = append(errs, fmt.Errorf("%s.email: duplicate member %q", prefix, email))
		default:
			seen[email] = true
		}

		role := domain.Role(m.Role)
		switch {
		case m.Role == "":
			errs = append(errs, fmt.Errorf("%s.role is required", prefix))
		case !role.Valid():
			errs = append(errs, fmt.Errorf("%s.role: invalid value %q", prefix, m.Role))
		case role == domain.RoleOwner:
			errs = append(errs, fmt.Errorf("%s.role: the importing user is the owner", prefix))
		}
	}

	return errs
}

func validateTasks(tasks []TaskImport) []error {
	var errs []error

	for i, t := range tasks {
		prefix := fmt.Sprintf("tasks[%d]", i)
		if err := t.Payload().Validate(domain.RequestCreateTask); err != nil {
			errs = append(errs, fmt.Errorf("%s: %s", prefix, strings.TrimPrefix(err.Error(), domain.ErrValidation.Error()+": ")))
		}
	}

	return errs
}
