package repomanager

import (
	"database/sql"
	"fmt"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/akovardin/securepass/internal/repositories/masters"
	"github.com/akovardin/securepass/internal/repositories/tickets"
	"github.com/akovardin/securepass/internal/repositories/vaults"
)

// LocalManager keeps master records and vault blobs in files under the
// data directory and tickets in a SQLite database next to them. This is
// the default single-machine deployment.
type LocalManager struct {
	db      *sql.DB
	masters masters.Repository
	vaults  vaults.Repository
	tickets tickets.Repository
}

// NewLocalManager wires the file and SQLite repositories under dataDir.
func NewLocalManager(dataDir string) (*LocalManager, error) {
	masterRepo, err := masters.NewFileRepository(dataDir)
	if err != nil {
		return nil, fmt.Errorf("master repo creation error: %w", err)
	}

	vaultRepo, err := vaults.NewFileRepository(dataDir)
	if err != nil {
		return nil, fmt.Errorf("vault repo creation error: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dataDir, "shares.db"))
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	// modernc sqlite serializes writers; one connection avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)

	ticketRepo, err := tickets.NewSQLiteRepository(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("ticket repo creation error: %w", err)
	}

	return &LocalManager{
		db:      db,
		masters: masterRepo,
		vaults:  vaultRepo,
		tickets: ticketRepo,
	}, nil
}

func (m *LocalManager) Masters() masters.Repository { return m.masters }

func (m *LocalManager) Vaults() vaults.Repository { return m.vaults }

func (m *LocalManager) Tickets() tickets.Repository { return m.tickets }

func (m *LocalManager) Close() error { return m.db.Close() }
