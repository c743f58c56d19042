package tickets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/akovardin/securepass/internal/common"
	"github.com/akovardin/securepass/internal/models"
)

// PostgresRepository backs tickets with PostgreSQL. Consume relies on a
// single conditional UPDATE ... RETURNING, so concurrent consumers from
// any number of processes serialize on the row.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository constructs a repository over an open database.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, t *models.ShareTicket) error {
	query := `
		INSERT INTO tickets (id, owner, encrypted_payload, created_at, expires_at, max_uses, use_count, valid)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.Owner, t.EncryptedPayload,
		t.CreatedAt, t.ExpiresAt, t.MaxUses, t.UseCount, t.Valid)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.ShareTicket, error) {
	query := `
		SELECT id, owner, encrypted_payload, created_at, expires_at, max_uses, use_count, valid
		FROM tickets WHERE id = $1
	`
	var t models.ShareTicket
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.Owner, &t.EncryptedPayload,
		&t.CreatedAt, &t.ExpiresAt, &t.MaxUses, &t.UseCount, &t.Valid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &t, nil
}

// Consume spends one use and latches valid=false on the last one, all in
// one statement. Zero rows back means the guard failed; the caller
// re-reads the ticket to find out why.
func (r *PostgresRepository) Consume(ctx context.Context, id string, now time.Time) (*models.ShareTicket, error) {
	query := `
		UPDATE tickets
		SET use_count = use_count + 1,
		    valid = CASE WHEN max_uses > 0 AND use_count + 1 >= max_uses THEN FALSE ELSE valid END
		WHERE id = $1
		  AND valid
		  AND expires_at >= $2
		  AND (max_uses = 0 OR use_count < max_uses)
		RETURNING id, owner, encrypted_payload, created_at, expires_at, max_uses, use_count, valid
	`
	var t models.ShareTicket
	err := r.db.QueryRowContext(ctx, query, id, now).Scan(
		&t.ID, &t.Owner, &t.EncryptedPayload,
		&t.CreatedAt, &t.ExpiresAt, &t.MaxUses, &t.UseCount, &t.Valid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &t, nil
}

func (r *PostgresRepository) Invalidate(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE tickets SET valid = FALSE WHERE id = $1`, id)
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

func (r *PostgresRepository) ListByOwner(ctx context.Context, owner string) ([]*models.ShareTicket, error) {
	query := `
		SELECT id, owner, encrypted_payload, created_at, expires_at, max_uses, use_count, valid
		FROM tickets WHERE owner = $1 ORDER BY created_at
	`
	rows, err := r.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.ShareTicket
	for rows.Next() {
		var t models.ShareTicket
		if err := rows.Scan(
			&t.ID, &t.Owner, &t.EncryptedPayload,
			&t.CreatedAt, &t.ExpiresAt, &t.MaxUses, &t.UseCount, &t.Valid,
		); err != nil {
			return nil, err
		}
		result = append(result, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
