// Package tickets persists sharing tickets. Implementations must make
// Consume atomic: two concurrent consumers of a ticket with one use left
// must not both succeed.
package tickets

import (
	"context"
	"time"

	"github.com/akovardin/securepass/internal/models"
)

// Repository stores one record per ticket id.
type Repository interface {
	// Create persists a new ticket.
	Create(ctx context.Context, t *models.ShareTicket) error

	// Get returns the ticket or common.ErrNotFound.
	Get(ctx context.Context, id string) (*models.ShareTicket, error)

	// Consume spends one use of the ticket in a single atomic update:
	// the guard (valid, unexpired at now, uses remaining), the increment
	// and the valid=false latch on the last use all happen in one
	// transaction. Returns the updated ticket, or common.ErrNotFound
	// when no consumable row matched; the caller re-reads to classify.
	Consume(ctx context.Context, id string, now time.Time) (*models.ShareTicket, error)

	// Invalidate latches valid=false. Idempotent; unknown ids return
	// common.ErrNotFound.
	Invalidate(ctx context.Context, id string) error

	// ListByOwner returns every ticket created by owner, any state.
	ListByOwner(ctx context.Context, owner string) ([]*models.ShareTicket, error)
}
