package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/tplans/internal/db"
	"github.com/alexanderramin/tplans/internal/domain"
)

// SQLiteChangeRequestRepo implements ChangeRequestRepo using a SQLite database.
type SQLiteChangeRequestRepo struct {
	db db.DBTX
}

func NewSQLiteChangeRequestRepo(conn db.DBTX) *SQLiteChangeRequestRepo {
	return &SQLiteChangeRequestRepo{db: conn}
}

const changeRequestColumns = `id, plan_id, type, payload, requested_by, status, created_at, approved_at, approved_by`

func (r *SQLiteChangeRequestRepo) Create(ctx context.Context, cr *domain.ChangeRequest) error {
	query := `INSERT INTO change_requests (` + changeRequestColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		cr.ID,
		cr.PlanID,
		string(cr.Type),
		string(cr.Payload),
		cr.RequestedBy,
		string(cr.Status),
		formatTime(cr.CreatedAt),
		nullableTime(cr.ApprovedAt),
		cr.ApprovedBy,
	)
	return storeErr("inserting change request", err)
}

func (r *SQLiteChangeRequestRepo) GetByID(ctx context.Context, id string) (*domain.ChangeRequest, error) {
	query := `SELECT ` + changeRequestColumns + ` FROM change_requests WHERE id = ?`
	cr, err := scanChangeRequest(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("change request %s", id)
	}
	return cr, storeErr("loading change request", err)
}

// ListPending returns the plan's Pending requests, oldest first.
func (r *SQLiteChangeRequestRepo) ListPending(ctx context.Context, planID string) ([]*domain.ChangeRequest, error) {
	query := `SELECT ` + changeRequestColumns + ` FROM change_requests
		WHERE plan_id = ? AND status = ?
		ORDER BY created_at, id`
	return r.list(ctx, query, planID, string(domain.RequestPending))
}

// ListByPlan returns every request of the plan, newest first.
func (r *SQLiteChangeRequestRepo) ListByPlan(ctx context.Context, planID string) ([]*domain.ChangeRequest, error) {
	query := `SELECT ` + changeRequestColumns + ` FROM change_requests
		WHERE plan_id = ?
		ORDER BY created_at DESC, id DESC`
	return r.list(ctx, query, planID)
}

// MarkApproved flips a Pending request to Approved. The status guard in the
// WHERE clause makes a second approval of the same request fail.
func (r *SQLiteChangeRequestRepo) MarkApproved(ctx context.Context, id, approverID string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE change_requests SET status = ?, approved_at = ?, approved_by = ?
		 WHERE id = ? AND status = ?`,
		string(domain.RequestApproved), formatTime(at), approverID, id, string(domain.RequestPending))
	if err != nil {
		return storeErr("approving change request", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storeErr("approving change request", err)
	}
	if n > 0 {
		return nil
	}
	// Distinguish a missing request from one that is already approved.
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return fmt.Errorf("change request %s: %w", id, domain.ErrAlreadyApproved)
}

func (r *SQLiteChangeRequestRepo) list(ctx context.Context, query string, args ...any) ([]*domain.ChangeRequest, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr("listing change requests", err)
	}
	defer rows.Close()

	var out []*domain.ChangeRequest
	for rows.Next() {
		cr, err := scanChangeRequest(rows)
		if err != nil {
			return nil, storeErr("scanning change request row", err)
		}
		out = append(out, cr)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterating change requests", err)
	}
	return out, nil
}

func scanChangeRequest(row rowScanner) (*domain.ChangeRequest, error) {
	var cr domain.ChangeRequest
	var typ, payload, status, createdAt string
	var approvedAt sql.NullString
	err := row.Scan(&cr.ID, &cr.PlanID, &typ, &payload, &cr.RequestedBy, &status, &createdAt, &approvedAt, &cr.ApprovedBy)
	if err != nil {
		return nil, err
	}
	cr.Type = domain.ChangeRequestType(typ)
	cr.Status = domain.ChangeRequestStatus(status)
	cr.Payload = []byte(payload)
	if cr.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return nil, err
	}
	cr.ApprovedAt = parseNullableTime(approvedAt)
	return &cr, nil
}
