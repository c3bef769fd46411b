package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/tplans/internal/db"
	"github.com/alexanderramin/tplans/internal/domain"
)

// SQLiteAccountRepo stores identity-provider credentials.
type SQLiteAccountRepo struct {
	db db.DBTX
}

func NewSQLiteAccountRepo(conn db.DBTX) *SQLiteAccountRepo {
	return &SQLiteAccountRepo{db: conn}
}

const accountColumns = `id, email, password_hash, provider, subject, created_at`

// Create inserts the account. A duplicate email maps to ErrEmailInUse.
func (r *SQLiteAccountRepo) Create(ctx context.Context, a *domain.Account) error {
	query := `INSERT INTO accounts (` + accountColumns + `) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		a.ID,
		domain.NormalizeEmail(a.Email),
		a.PasswordHash,
		string(a.Provider),
		a.Subject,
		formatTime(a.CreatedAt),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("account %s: %w", a.Email, domain.ErrEmailInUse)
	}
	return storeErr("inserting account", err)
}

func (r *SQLiteAccountRepo) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	return r.get(ctx, "account "+id, `id = ?`, id)
}

func (r *SQLiteAccountRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.get(ctx, "account "+email, `email = ?`, domain.NormalizeEmail(email))
}

func (r *SQLiteAccountRepo) GetByProviderSubject(ctx context.Context, provider domain.AuthProvider, subject string) (*domain.Account, error) {
	return r.get(ctx, fmt.Sprintf("%s account %s", provider, subject), `provider = ? AND subject = ?`, string(provider), subject)
}

func (r *SQLiteAccountRepo) get(ctx context.Context, label, where string, args ...any) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE ` + where
	var a domain.Account
	var provider, createdAt string
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&a.ID, &a.Email, &a.PasswordHash, &provider, &a.Subject, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("%s", label)
	}
	if err != nil {
		return nil, storeErr("loading account", err)
	}
	a.Provider = domain.AuthProvider(provider)
	if a.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return nil, err
	}
	return &a, nil
}
