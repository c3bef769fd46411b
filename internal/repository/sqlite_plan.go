package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/alexanderramin/tplans/internal/db"
	"github.com/alexanderramin/tplans/internal/domain"
)

// SQLitePlanRepo implements PlanRepo. The membership map lives in the
// plans.members JSON column so a share is a single json_set merge.
type SQLitePlanRepo struct {
	db db.DBTX
}

func NewSQLitePlanRepo(conn db.DBTX) *SQLitePlanRepo {
	return &SQLitePlanRepo{db: conn}
}

const planColumns = `id, name, owner_id, members, created_at`

func (r *SQLitePlanRepo) Create(ctx context.Context, p *domain.Plan) error {
	members, err := json.Marshal(p.Members)
	if err != nil {
		return fmt.Errorf("encoding plan members: %w", err)
	}
	query := `INSERT INTO plans (` + planColumns + `) VALUES (?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query, p.ID, p.Name, p.OwnerID, string(members), formatTime(p.CreatedAt))
	return storeErr("inserting plan", err)
}

func (r *SQLitePlanRepo) GetByID(ctx context.Context, id string) (*domain.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans WHERE id = ?`
	p, err := scanPlan(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("plan %s", id)
	}
	return p, storeErr("loading plan", err)
}

// ListByMember returns plans whose members map holds userID with one of the
// member roles, oldest first.
func (r *SQLitePlanRepo) ListByMember(ctx context.Context, userID string) ([]*domain.Plan, error) {
	path, err := memberPath(userID)
	if err != nil {
		return nil, err
	}
	roles := make([]any, 0, len(domain.MemberRoles)+1)
	roles = append(roles, path)
	for _, role := range domain.MemberRoles {
		roles = append(roles, string(role))
	}
	query := `SELECT ` + planColumns + ` FROM plans
		WHERE json_extract(members, ?) IN (` + placeholders(len(domain.MemberRoles)) + `)
		ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query, roles...)
	if err != nil {
		return nil, storeErr("listing plans", err)
	}
	defer rows.Close()

	var plans []*domain.Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, storeErr("scanning plan row", err)
		}
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterating plans", err)
	}
	return plans, nil
}

// SetMemberRole merges members[userID] = role without touching other entries.
func (r *SQLitePlanRepo) SetMemberRole(ctx context.Context, planID, userID string, role domain.Role) error {
	path, err := memberPath(userID)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `UPDATE plans SET members = json_set(members, ?, ?) WHERE id = ?`,
		path, string(role), planID)
	if err != nil {
		return storeErr("updating plan members", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storeErr("updating plan members", err)
	}
	if n == 0 {
		return domain.NotFoundf("plan %s", planID)
	}
	return nil
}

func scanPlan(row rowScanner) (*domain.Plan, error) {
	var p domain.Plan
	var membersJSON, createdAt string
	if err := row.Scan(&p.ID, &p.Name, &p.OwnerID, &membersJSON, &createdAt); err != nil {
		return nil, err
	}
	raw := map[string]string{}
	if err := json.Unmarshal([]byte(membersJSON), &raw); err != nil {
		return nil, fmt.Errorf("decoding members of plan %s: %w", p.ID, err)
	}
	p.Members = make(map[string]domain.Role, len(raw))
	for id, role := range raw {
		p.Members[id] = domain.Role(role)
	}
	var err error
	if p.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return nil, err
	}
	return &p, nil
}
