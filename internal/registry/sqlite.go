package registry

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteRegistry implements Registry using modernc.org/sqlite.
type SQLiteRegistry struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL
// mode.
func NewSQLite(dsn string) (*SQLiteRegistry, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "registry: open sqlite")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "registry: exec %s", pragma)
		}
	}
	r := &SQLiteRegistry{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS invoices (
	number     TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	claim_id   TEXT,
	amount     REAL NOT NULL DEFAULT 0,
	status     TEXT NOT NULL DEFAULT 'pending',
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_invoices_user ON invoices(user_id);
`

func (r *SQLiteRegistry) migrate() error {
	if _, err := r.db.Exec(sqliteMigration); err != nil {
		return eris.Wrap(err, "registry: migrate sqlite")
	}
	return nil
}

func (r *SQLiteRegistry) Get(ctx context.Context, number string) (*Invoice, error) {
	var inv Invoice
	err := r.db.QueryRowContext(ctx,
		`SELECT number, user_id, COALESCE(claim_id, ''), amount, status, created_at, updated_at
		 FROM invoices WHERE number = ?`, number).
		Scan(&inv.Number, &inv.UserID, &inv.ClaimID, &inv.Amount, &inv.Status, &inv.CreatedAt, &inv.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "registry: get invoice")
	}
	return &inv, nil
}

func (r *SQLiteRegistry) Set(ctx context.Context, inv Invoice) error {
	if inv.Status == "" {
		inv.Status = PaymentPending
	}
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = now().UTC()
	}
	inv.UpdatedAt = now().UTC()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO invoices (number, user_id, claim_id, amount, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(number) DO UPDATE SET
			user_id = excluded.user_id,
			claim_id = excluded.claim_id,
			amount = excluded.amount,
			status = excluded.status,
			updated_at = excluded.updated_at`,
		inv.Number, inv.UserID, inv.ClaimID, inv.Amount, inv.Status, inv.CreatedAt, inv.UpdatedAt)
	if err != nil {
		return eris.Wrap(err, "registry: set invoice")
	}
	return nil
}

func (r *SQLiteRegistry) Merge(ctx context.Context, number string, patch Patch) (*Invoice, error) {
	inv, err := r.Get(ctx, number)
	if err != nil {
		return nil, err
	}
	applyPatch(inv, patch)
	if err := r.Set(ctx, *inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *SQLiteRegistry) ListByUser(ctx context.Context, userID string) ([]Invoice, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT number, user_id, COALESCE(claim_id, ''), amount, status, created_at, updated_at
		 FROM invoices WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, eris.Wrap(err, "registry: list invoices")
	}
	defer rows.Close()

	var out []Invoice
	for rows.Next() {
		var inv Invoice
		if err := rows.Scan(&inv.Number, &inv.UserID, &inv.ClaimID, &inv.Amount, &inv.Status, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "registry: scan invoice")
		}
		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "registry: iterate invoices")
	}
	return out, nil
}

func (r *SQLiteRegistry) Close() error {
	return r.db.Close()
}
