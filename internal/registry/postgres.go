package registry

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
)

// Pool is the subset of pgxpool.Pool the registry needs; pgxmock satisfies
// it for tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresRegistry implements Registry using pgxpool.
type PostgresRegistry struct {
	pool Pool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS invoices (
	number     TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	claim_id   TEXT,
	amount     DOUBLE PRECISION NOT NULL DEFAULT 0,
	status     TEXT NOT NULL DEFAULT 'pending',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_invoices_user ON invoices(user_id);
`

// NewPostgres creates a PostgresRegistry with a connection pool and runs
// the migration.
func NewPostgres(ctx context.Context, connString string) (*PostgresRegistry, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "registry: parse postgres config")
	}
	cfg.MaxConns = 5
	cfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "registry: connect postgres")
	}
	r := &PostgresRegistry{pool: pool}
	if _, err := pool.Exec(ctx, postgresMigration); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "registry: migrate postgres")
	}
	return r, nil
}

func (r *PostgresRegistry) Get(ctx context.Context, number string) (*Invoice, error) {
	var inv Invoice
	err := r.pool.QueryRow(ctx,
		`SELECT number, user_id, COALESCE(claim_id, ''), amount, status, created_at, updated_at
		 FROM invoices WHERE number = $1`, number).
		Scan(&inv.Number, &inv.UserID, &inv.ClaimID, &inv.Amount, &inv.Status, &inv.CreatedAt, &inv.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "registry: get invoice")
	}
	return &inv, nil
}

func (r *PostgresRegistry) Set(ctx context.Context, inv Invoice) error {
	if inv.Status == "" {
		inv.Status = PaymentPending
	}
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = now().UTC()
	}
	inv.UpdatedAt = now().UTC()

	_, err := r.pool.Exec(ctx,
		`INSERT INTO invoices (number, user_id, claim_id, amount, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (number) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			claim_id = EXCLUDED.claim_id,
			amount = EXCLUDED.amount,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at`,
		inv.Number, inv.UserID, inv.ClaimID, inv.Amount, inv.Status, inv.CreatedAt, inv.UpdatedAt)
	if err != nil {
		return eris.Wrap(err, "registry: set invoice")
	}
	return nil
}

func (r *PostgresRegistry) Merge(ctx context.Context, number string, patch Patch) (*Invoice, error) {
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

func (r *PostgresRegistry) ListByUser(ctx context.Context, userID string) ([]Invoice, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT number, user_id, COALESCE(claim_id, ''), amount, status, created_at, updated_at
		 FROM invoices WHERE user_id = $1 ORDER BY created_at DESC`, userID)
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

func (r *PostgresRegistry) Close() error {
	r.pool.Close()
	return nil
}
