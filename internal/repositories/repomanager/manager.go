// Package repomanager bundles the three repositories for one storage
// backend: a local manager (files + SQLite) and a PostgreSQL manager.
package repomanager

import (
	"github.com/akovardin/securepass/internal/repositories/masters"
	"github.com/akovardin/securepass/internal/repositories/tickets"
	"github.com/akovardin/securepass/internal/repositories/vaults"
)

// RepositoryManager exposes the repositories of a backend.
type RepositoryManager interface {
	Masters() masters.Repository
	Vaults() vaults.Repository
	Tickets() tickets.Repository
	Close() error
}
