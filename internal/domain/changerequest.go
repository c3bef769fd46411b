package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ChangeRequest is a proposed mutation of a plan's tasks. It is created
// Pending and moves to Approved exactly once.
type ChangeRequest struct {
	ID          string
	PlanID      string
	Type        ChangeRequestType
	Payload     json.RawMessage
	RequestedBy string
	Status      ChangeRequestStatus
	CreatedAt   time.Time
	ApprovedAt  *time.Time
	ApprovedBy  string
}

// TaskPayload carries the task fields a request proposes. Pointer fields
// distinguish "leave unchanged" from zero values on updates.
type TaskPayload struct {
	TaskID      string  `json:"task_id,omitempty"`
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	Progress    *int    `json:"progress,omitempty"`
	Order       *int    `json:"order,omitempty"`
}

func (p TaskPayload) hasFields() bool {
	return p.Title != nil || p.Description != nil || p.Status != nil || p.Progress != nil || p.Order != nil
}

// Validate checks the payload shape required by the request type.
func (p TaskPayload) Validate(typ ChangeRequestType) error {
	if p.Progress != nil && (*p.Progress < 0 || *p.Progress > 100) {
		return Validationf("progress %d must be between 0 and 100", *p.Progress)
	}
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return Validationf("task title cannot be empty")
	}
	switch typ {
	case RequestCreateTask:
		if p.Title == nil {
			return Validationf("task title is required")
		}
		if p.TaskID != "" {
			return Validationf("%s must not reference an existing task", typ)
		}
	case RequestUpdateTask:
		if p.TaskID == "" {
			return Validationf("%s requires a task id", typ)
		}
		if !p.hasFields() {
			return Validationf("%s requires at least one field to change", typ)
		}
	case RequestDeleteTask:
		if p.TaskID == "" {
			return Validationf("%s requires a task id", typ)
		}
	default:
		return Validationf("unknown change request type %q", typ)
	}
	return nil
}

// NewTask materialises a CREATE_TASK payload with the task defaults applied.
func (p TaskPayload) NewTask(id, planID string, now time.Time) *Task {
	t := &Task{
		ID:        id,
		PlanID:    planID,
		Status:    DefaultTaskStatus,
		Order:     DefaultTaskOrder,
		CreatedAt: now,
		UpdatedAt: now,
	}
	p.ApplyTo(t, now)
	return t
}

// ApplyTo copies every set field onto t.
func (p TaskPayload) ApplyTo(t *Task, now time.Time) {
	if p.Title != nil {
		t.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil && strings.TrimSpace(*p.Status) != "" {
		t.Status = strings.TrimSpace(*p.Status)
	}
	if p.Progress != nil {
		t.Progress = *p.Progress
	}
	if p.Order != nil {
		t.Order = *p.Order
	}
	t.UpdatedAt = now
}

// NewChangeRequest validates the payload and builds a Pending request.
func NewChangeRequest(id, planID string, typ ChangeRequestType, payload TaskPayload, requestedBy string, now time.Time) (*ChangeRequest, error) {
	if planID == "" {
		return nil, Validationf("change request plan is required")
	}
	if requestedBy == "" {
		return nil, Validationf("change request requester is required")
	}
	if !typ.Valid() {
		return nil, Validationf("unknown change request type %q", typ)
	}
	if err := payload.Validate(typ); err != nil {
		return nil, err
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding payload: %w", err)
	}
	return &ChangeRequest{
		ID:          id,
		PlanID:      planID,
		Type:        typ,
		Payload:     raw,
		RequestedBy: requestedBy,
		Status:      RequestPending,
		CreatedAt:   now,
	}, nil
}

// DecodePayload parses the stored payload and re-checks it against Type.
func (r *ChangeRequest) DecodePayload() (TaskPayload, error) {
	var p TaskPayload
	if len(r.Payload) == 0 {
		return p, Validationf("change request %s has no payload", r.ID)
	}
	if err := json.Unmarshal(r.Payload, &p); err != nil {
		return p, Validationf("change request %s payload: %v", r.ID, err)
	}
	if err := p.Validate(r.Type); err != nil {
		return p, err
	}
	return p, nil
}

func (r *ChangeRequest) IsPending() bool {
	return r.Status == RequestPending
}

// Approve moves a Pending request to Approved. Approved is terminal.
func (r *ChangeRequest) Approve(approverID string, now time.Time) error {
	if r.Status != RequestPending {
		return ErrAlreadyApproved
	}
	r.Status = RequestApproved
	r.ApprovedAt = &now
	r.ApprovedBy = approverID
	return nil
}

// Summary is a one-line description used in approval queues.
func (r *ChangeRequest) Summary() string {
	p, err := r.DecodePayload()
	if err != nil {
		return string(r.Type)
	}
	switch {
	case p.Title != nil:
		return fmt.Sprintf("%s (%s)", r.Type, *p.Title)
	case p.TaskID != "":
		return fmt.Sprintf("%s (task %s)", r.Type, shortID(p.TaskID))
	}
	return string(r.Type)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
