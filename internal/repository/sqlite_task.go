package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/alexanderramin/tplans/internal/db"
	"github.com/alexanderramin/tplans/internal/domain"
)

// SQLiteTaskRepo implements TaskRepo using a SQLite database.
type SQLiteTaskRepo struct {
	db db.DBTX
}

func NewSQLiteTaskRepo(conn db.DBTX) *SQLiteTaskRepo {
	return &SQLiteTaskRepo{db: conn}
}

const taskColumns = `id, plan_id, title, description, status, progress, order_index, created_at, updated_at`

func (r *SQLiteTaskRepo) Create(ctx context.Context, t *domain.Task) error {
	query := `INSERT INTO tasks (` + taskColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		t.ID,
		t.PlanID,
		t.Title,
		t.Description,
		t.Status,
		t.Progress,
		t.Order,
		formatTime(t.CreatedAt),
		formatTime(t.UpdatedAt),
	)
	return storeErr("inserting task", err)
}

func (r *SQLiteTaskRepo) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`
	t, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("task %s", id)
	}
	return t, storeErr("loading task", err)
}

// ListByPlan returns the plan's tasks ascending by order, ties broken by
// creation time and then id.
func (r *SQLiteTaskRepo) ListByPlan(ctx context.Context, planID string) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE plan_id = ?
		ORDER BY order_index, created_at, id`
	rows, err := r.db.QueryContext(ctx, query, planID)
	if err != nil {
		return nil, storeErr("listing tasks", err)
	}
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, storeErr("scanning task row", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterating tasks", err)
	}
	return tasks, nil
}

func (r *SQLiteTaskRepo) Update(ctx context.Context, t *domain.Task) error {
	query := `UPDATE tasks SET title = ?, description = ?, status = ?, progress = ?, order_index = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		t.Title,
		t.Description,
		t.Status,
		t.Progress,
		t.Order,
		formatTime(t.UpdatedAt),
		t.ID,
	)
	if err != nil {
		return storeErr("updating task", err)
	}
	return requireRow(res, "task", t.ID)
}

func (r *SQLiteTaskRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return storeErr("deleting task", err)
	}
	return requireRow(res, "task", id)
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var t domain.Task
	var createdAt, updatedAt string
	err := row.Scan(&t.ID, &t.PlanID, &t.Title, &t.Description, &t.Status, &t.Progress, &t.Order, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if t.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if t.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
		return nil, err
	}
	return &t, nil
}
