// Package masters persists MasterCredential records, one per vault owner.
package masters

import (
	"context"

	"github.com/akovardin/securepass/internal/models"
)

// Repository stores master credential records. The record is trusted
// plaintext storage; its integrity is not cryptographically protected.
type Repository interface {
	// Exists reports whether a record for owner is present.
	Exists(ctx context.Context, owner string) (bool, error)

	// Save creates or replaces the record for owner.
	Save(ctx context.Context, owner string, cred *models.MasterCredential) error

	// Load returns the record for owner or common.ErrNotFound.
	Load(ctx context.Context, owner string) (*models.MasterCredential, error)
}
