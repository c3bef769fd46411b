package importer

import "github.com/alexanderramin/tplans/internal/domain"

// Payload converts the task into a CREATE_TASK payload.
func (t TaskImport) Payload() domain.TaskPayload {
	title := t.Title
	return domain.TaskPayload{
		Title:       &title,
		Description: t.Description,
		Status:      t.Status,
		Progress:    t.Progress,
		Order:       t.Order,
	}
}

// Payloads converts every task in file order.
func (s *ImportSchema) Payloads() []domain.TaskPayload {
	out := make([]domain.TaskPayload, len(s.Tasks))
	for i, t := range s.Tasks {
		out[i] = t.Payload()
	}
	return out
}

// Grants returns the members with normalized emails and typed roles.
func (s *ImportSchema) Grants() []Grant {
	out := make([]Grant, len(s.Members))
	for i, m := range s.Members {
		out[i] = Grant{Email: domain.NormalizeEmail(m.Email), Role: domain.Role(m.Role)}
	}
	return out
}

// Grant is a validated member entry.
type Grant struct {
	Email string
	Role  domain.Role
}
