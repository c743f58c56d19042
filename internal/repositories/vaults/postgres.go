package vaults

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/akovardin/securepass/internal/common"
	"github.com/akovardin/securepass/internal/dbx"
)

// PostgresRepository stores vault blobs in a table keyed by owner. The
// single-row UPSERT makes each save atomic on its own.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Load(ctx context.Context, owner string) ([]byte, error) {
	query := `SELECT blob FROM vaults WHERE owner = $1`

	var blob []byte
	if err := r.db.QueryRowContext(ctx, query, owner).Scan(&blob); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return blob, nil
}

func (r *PostgresRepository) Save(ctx context.Context, owner string, blob []byte) error {
	query := `
		INSERT INTO vaults (owner, blob)
		VALUES ($1, $2)
		ON CONFLICT (owner)
		DO UPDATE SET blob = EXCLUDED.blob;
	`
	if _, err := r.db.ExecContext(ctx, query, owner, blob); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
