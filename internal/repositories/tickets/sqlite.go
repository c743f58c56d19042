package tickets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/akovardin/securepass/internal/common"
	"github.com/akovardin/securepass/internal/dbx"
	"github.com/akovardin/securepass/internal/models"
)

// SQLiteRepository backs tickets with a local SQLite database. Timestamps
// are stored as unix seconds, booleans as integers.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository binds to an open database and ensures the schema.
func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	r := &SQLiteRepository{db: db}
	if err := r.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *SQLiteRepository) ensureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS tickets (
			id TEXT PRIMARY KEY,
			owner TEXT NOT NULL,
			encrypted_payload BLOB NOT NULL,
			created_at INTEGER NOT NULL,
			expires_at INTEGER NOT NULL,
			max_uses INTEGER NOT NULL,
			use_count INTEGER NOT NULL DEFAULT 0,
			valid INTEGER NOT NULL DEFAULT 1
		);
		CREATE INDEX IF NOT EXISTS idx_tickets_owner ON tickets(owner);
	`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("create tickets schema: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Create(ctx context.Context, t *models.ShareTicket) error {
	query := `
		INSERT INTO tickets (id, owner, encrypted_payload, created_at, expires_at, max_uses, use_count, valid)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.Owner, t.EncryptedPayload,
		t.CreatedAt.Unix(), t.ExpiresAt.Unix(),
		t.MaxUses, t.UseCount, boolToInt(t.Valid))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func scanTicket(row interface{ Scan(...any) error }) (*models.ShareTicket, error) {
	var (
		t                models.ShareTicket
		created, expires int64
		valid            int
	)
	err := row.Scan(&t.ID, &t.Owner, &t.EncryptedPayload,
		&created, &expires, &t.MaxUses, &t.UseCount, &valid)
	if err != nil {
		return nil, err
	}
	t.CreatedAt = time.Unix(created, 0)
	t.ExpiresAt = time.Unix(expires, 0)
	t.Valid = valid != 0
	return &t, nil
}

func (r *SQLiteRepository) get(ctx context.Context, db dbx.DBTX, id string) (*models.ShareTicket, error) {
	query := `
		SELECT id, owner, encrypted_payload, created_at, expires_at, max_uses, use_count, valid
		FROM tickets WHERE id = ?
	`
	t, err := scanTicket(db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*models.ShareTicket, error) {
	return r.get(ctx, r.db, id)
}

// Consume runs guard, increment and latch as one conditional UPDATE inside
// a transaction, then re-reads the row it changed.
func (r *SQLiteRepository) Consume(ctx context.Context, id string, now time.Time) (*models.ShareTicket, error) {
	var consumed *models.ShareTicket

	err := dbx.RunInTx(ctx, r.db, func(ctx context.Context, tx dbx.DBTX) error {
		query := `
			UPDATE tickets
			SET use_count = use_count + 1,
			    valid = CASE WHEN max_uses > 0 AND use_count + 1 >= max_uses THEN 0 ELSE valid END
			WHERE id = ?
			  AND valid = 1
			  AND expires_at >= ?
			  AND (max_uses = 0 OR use_count < max_uses)
		`
		res, err := tx.ExecContext(ctx, query, id, now.Unix())
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected error: %w", err)
		}
		if n == 0 {
			return common.ErrNotFound
		}

		consumed, err = r.get(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return consumed, nil
}

func (r *SQLiteRepository) Invalidate(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE tickets SET valid = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) ListByOwner(ctx context.Context, owner string) ([]*models.ShareTicket, error) {
	query := `
		SELECT id, owner, encrypted_payload, created_at, expires_at, max_uses, use_count, valid
		FROM tickets WHERE owner = ? ORDER BY created_at
	`
	rows, err := r.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.ShareTicket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
