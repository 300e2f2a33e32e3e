package journal

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresJournal persists transfer legs in PostgreSQL.
type PostgresJournal struct {
	db *pgxpool.Pool
}

// NewPostgres constructs a Postgres-backed journal.
func NewPostgres(db *pgxpool.Pool) *PostgresJournal {
	return &PostgresJournal{db: db}
}

// Record inserts all legs of a transfer in one transaction.
func (j *PostgresJournal) Record(ctx context.Context, entries ...Entry) error {
	tx, err := j.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	for _, e := range entries {
		if _, err := tx.Exec(ctx, `INSERT INTO journal_entries (id, transaction_id, account_id, amount, created_at)
            VALUES ($1, $2, $3, $4, $5)`, e.ID, e.TransactionID, e.AccountID, e.Amount, e.CreatedAt.UTC()); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// ByAccount fetches all legs touching the given account, oldest first.
func (j *PostgresJournal) ByAccount(ctx context.Context, accountID string) ([]Entry, error) {
	rows, err := j.db.Query(ctx, `SELECT id, transaction_id, account_id, amount, created_at
        FROM journal_entries WHERE account_id = $1 ORDER BY created_at`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var createdAt time.Time
		if err := rows.Scan(&e.ID, &e.TransactionID, &e.AccountID, &e.Amount, &createdAt); err != nil {
			return nil, err
		}
		e.CreatedAt = createdAt.UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
