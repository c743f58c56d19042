package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/akovardin/securepass/internal/migrations"
	"github.com/akovardin/securepass/internal/repositories/masters"
	"github.com/akovardin/securepass/internal/repositories/tickets"
	"github.com/akovardin/securepass/internal/repositories/vaults"
)

// PostgresManager backs every repository with PostgreSQL. Used when a DSN
// is configured; the semantics stay single-owner-per-vault.
type PostgresManager struct {
	db      *sql.DB
	masters masters.Repository
	vaults  vaults.Repository
	tickets tickets.Repository
}

// NewPostgresManager opens the database, runs migrations and wires the
// repositories.
func NewPostgresManager(ctx context.Context, dsn string) (*PostgresManager, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	m := &PostgresManager{
		db:      db,
		masters: masters.NewPostgresRepository(db),
		vaults:  vaults.NewPostgresRepository(db),
		tickets: tickets.NewPostgresRepository(db),
	}

	if err := m.runMigrations(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return m, nil
}

func (m *PostgresManager) runMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, m.db, ".")
}

func (m *PostgresManager) Masters() masters.Repository { return m.masters }

func (m *PostgresManager) Vaults() vaults.Repository { return m.vaults }

func (m *PostgresManager) Tickets() tickets.Repository { return m.tickets }

func (m *PostgresManager) Close() error { return m.db.Close() }
