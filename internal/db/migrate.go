package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id            TEXT PRIMARY KEY,
		email         TEXT NOT NULL,
		password_hash TEXT NOT NULL DEFAULT '',
		provider      TEXT NOT NULL DEFAULT 'password'
		              CHECK(provider IN ('password','google')),
		subject       TEXT NOT NULL DEFAULT '',
		created_at    TEXT NOT NULL
	)`,

	`CREATE UNIQUE INDEX IF NOT EXISTS idx_accounts_email ON accounts(email)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_accounts_federated
		ON accounts(provider, subject) WHERE provider != 'password'`,

	`CREATE TABLE IF NOT EXISTS users (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		email      TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,

	// members is a JSON object mapping user id to role.
	`CREATE TABLE IF NOT EXISTS plans (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL CHECK(name != ''),
		owner_id   TEXT NOT NULL,
		members    TEXT NOT NULL DEFAULT '{}' CHECK(json_valid(members)),
		created_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS tasks (
		id          TEXT PRIMARY KEY,
		plan_id     TEXT NOT NULL REFERENCES plans(id) ON DELETE CASCADE,
		title       TEXT NOT NULL CHECK(title != ''),
		description TEXT NOT NULL DEFAULT '',
		status      TEXT NOT NULL DEFAULT 'Not Started',
		progress    INTEGER NOT NULL DEFAULT 0 CHECK(progress BETWEEN 0 AND 100),
		order_index INTEGER NOT NULL DEFAULT 999,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_tasks_plan_order ON tasks(plan_id, order_index)`,

	`CREATE TABLE IF NOT EXISTS change_requests (
		id           TEXT PRIMARY KEY,
		plan_id      TEXT NOT NULL REFERENCES plans(id) ON DELETE CASCADE,
		type         TEXT NOT NULL
		             CHECK(type IN ('CREATE_TASK','UPDATE_TASK','DELETE_TASK')),
		payload      TEXT NOT NULL CHECK(json_valid(payload)),
		requested_by TEXT NOT NULL,
		status       TEXT NOT NULL DEFAULT 'Pending'
		             CHECK(status IN ('Pending','Approved')),
		created_at   TEXT NOT NULL,
		approved_at  TEXT,
		CHECK((status = 'Approved') = (approved_at IS NOT NULL))
	)`,

	`CREATE INDEX IF NOT EXISTS idx_change_requests_plan_status ON change_requests(plan_id, status)`,

	// Approver attribution, added after approve started applying payloads.
	`ALTER TABLE change_requests ADD COLUMN approved_by TEXT NOT NULL DEFAULT ''`,

	// Profile emails are unique, like account emails.
	`DROP INDEX IF EXISTS idx_users_email`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_unique ON users(email)`,
}
