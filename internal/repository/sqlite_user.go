package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/tplans/internal/db"
	"github.com/alexanderramin/tplans/internal/domain"
)

// SQLiteUserRepo implements UserRepo using a SQLite database.
type SQLiteUserRepo struct {
	db db.DBTX
}

func NewSQLiteUserRepo(conn db.DBTX) *SQLiteUserRepo {
	return &SQLiteUserRepo{db: conn}
}

const userColumns = `id, name, email, created_at`

// Upsert writes the profile, replacing name and email of an existing id.
// The original created_at is kept. An email held by another profile maps to
// ErrEmailInUse.
func (r *SQLiteUserRepo) Upsert(ctx context.Context, u *domain.User) error {
	query := `INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, email = excluded.email`
	_, err := r.db.ExecContext(ctx, query, u.ID, u.Name, domain.NormalizeEmail(u.Email), formatTime(u.CreatedAt))
	if isUniqueViolation(err) {
		return fmt.Errorf("profile %s: %w", u.Email, domain.ErrEmailInUse)
	}
	return storeErr("upserting user", err)
}

func (r *SQLiteUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("user %s", id)
	}
	return u, storeErr("loading user", err)
}

// FindByEmail returns the profile with the given email.
func (r *SQLiteUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ? ORDER BY created_at, id LIMIT 1`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, domain.NormalizeEmail(email)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("user with email %s", email)
	}
	return u, storeErr("finding user", err)
}

// ListByIDs returns the profiles that exist among ids. Unknown ids are skipped.
func (r *SQLiteUserRepo) ListByIDs(ctx context.Context, ids []string) ([]*domain.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE id IN (` + placeholders(len(ids)) + `) ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr("listing users", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, storeErr("scanning user row", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterating users", err)
	}
	return users, nil
}

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	var createdAt string
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &createdAt); err != nil {
		return nil, err
	}
	var err error
	if u.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return nil, err
	}
	return &u, nil
}
