package masters

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/akovardin/securepass/internal/common"
	"github.com/akovardin/securepass/internal/dbx"
	"github.com/akovardin/securepass/internal/models"
)

// PostgresRepository implements master-credential storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Exists(ctx context.Context, owner string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM masters WHERE owner = $1)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, owner).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) Save(ctx context.Context, owner string, cred *models.MasterCredential) error {
	query := `
		INSERT INTO masters (owner, password_hash, password_salt, key_salt)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (owner)
		DO UPDATE SET
			password_hash = EXCLUDED.password_hash,
			password_salt = EXCLUDED.password_salt,
			key_salt = EXCLUDED.key_salt;
	`
	if _, err := r.db.ExecContext(ctx, query,
		owner, cred.PasswordHash, cred.PasswordSalt, cred.KeySalt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Load(ctx context.Context, owner string) (*models.MasterCredential, error) {
	query := `SELECT password_hash, password_salt, key_salt FROM masters WHERE owner = $1`

	var cred models.MasterCredential
	err := r.db.QueryRowContext(ctx, query, owner).
		Scan(&cred.PasswordHash, &cred.PasswordSalt, &cred.KeySalt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &cred, nil
}
