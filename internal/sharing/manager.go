// Package sharing implements the sharing-ticket lifecycle: creation,
// bounded consumption, expiration and revocation. A ticket wraps one
// decrypted entry snapshot re-encrypted under a key derived from a random
// access token; the owner's master key is never involved, so losing or
// rotating the master password does not affect outstanding tickets.
package sharing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/akovardin/securepass/internal/common"
	"github.com/akovardin/securepass/internal/cryptox"
	"github.com/akovardin/securepass/internal/logging"
	"github.com/akovardin/securepass/internal/models"
	"github.com/akovardin/securepass/internal/repositories/tickets"
)

// sharingKeySalt is the fixed salt for deriving per-ticket keys from
// access tokens. A constant salt is acceptable here only because every
// token is 32 random bytes and single-purpose, never a human-chosen
// password; the token's own entropy carries the derivation.
var sharingKeySalt = []byte("sharing_salt")

// accessTokenSize is the raw byte length of generated access tokens.
const accessTokenSize = 32

// Manager drives the ticket state machine: Active, then Expired or
// Exhausted, both collapsing into the terminal valid=false state that
// also serves as Revoked. There is no way out of the terminal state.
type Manager struct {
	repo  tickets.Repository
	log   logging.Logger
	locks *keyLock
	nowFn func() time.Time
}

// NewManager constructs a Manager over the given ticket repository.
func NewManager(repo tickets.Repository, log logging.Logger) *Manager {
	return &Manager{
		repo:  repo,
		log:   log,
		locks: newKeyLock(),
		nowFn: time.Now,
	}
}

func (m *Manager) deriveTicketKey(accessToken string) []byte {
	key, _ := cryptox.DeriveKey(accessToken, sharingKeySalt)
	return key
}

// Create persists a ticket wrapping the given plaintext snapshot and
// returns the ticket id together with the access token. The two are
// generated independently and should travel over different channels; the
// id alone identifies, the token alone decrypts nothing.
func (m *Manager) Create(ctx context.Context, entry models.SharedEntry, owner string, ttl time.Duration, maxUses int) (string, string, error) {
	accessToken, err := common.MakeURLSafeToken(accessTokenSize)
	if err != nil {
		return "", "", fmt.Errorf("generate access token: %w", err)
	}

	payload, err := cryptox.Encrypt(m.deriveTicketKey(accessToken), entry)
	if err != nil {
		return "", "", fmt.Errorf("encrypt shared entry: %w", err)
	}

	now := m.nowFn()
	t := &models.ShareTicket{
		ID:               uuid.NewString(),
		Owner:            owner,
		EncryptedPayload: payload,
		CreatedAt:        now,
		ExpiresAt:        now.Add(ttl),
		MaxUses:          maxUses,
		UseCount:         0,
		Valid:            true,
	}

	if err := m.repo.Create(ctx, t); err != nil {
		return "", "", err
	}

	m.log.Info(ctx, "ticket created",
		"ticket_id", t.ID, "owner", owner, "max_uses", maxUses, "expires_at", t.ExpiresAt)
	return t.ID, accessToken, nil
}

// Access spends one use of the ticket and decrypts its payload with the
// supplied token. The read-check-increment-persist sequence is serialized
// per ticket id, and the repository's Consume is a single atomic update,
// so two concurrent requests against a ticket with one use left cannot
// both succeed.
//
// Decryption happens only after the bookkeeping committed: presenting a
// bad token still burns a use, which discourages brute-forcing tokens
// against a known ticket id.
func (m *Manager) Access(ctx context.Context, ticketID, accessToken string) (*models.SharedEntry, error) {
	unlock := m.locks.lock(ticketID)
	defer unlock()

	t, err := m.repo.Get(ctx, ticketID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrTicketNotFound
		}
		return nil, err
	}

	now := m.nowFn()

	if !t.Valid {
		return nil, common.ErrTicketInvalid
	}
	if t.Expired(now) {
		if err := m.repo.Invalidate(ctx, ticketID); err != nil {
			return nil, err
		}
		m.log.Info(ctx, "ticket expired", "ticket_id", ticketID)
		return nil, common.ErrTicketExpired
	}
	if t.Exhausted() {
		if err := m.repo.Invalidate(ctx, ticketID); err != nil {
			return nil, err
		}
		return nil, common.ErrTicketExhausted
	}

	consumed, err := m.repo.Consume(ctx, ticketID, now)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			// Lost a race against a writer in another process; re-read
			// and classify.
			return nil, m.classify(ctx, ticketID, now)
		}
		return nil, err
	}
	if !consumed.Valid {
		m.log.Info(ctx, "ticket closed after final use", "ticket_id", ticketID, "use_count", consumed.UseCount)
	}

	var entry models.SharedEntry
	if err := cryptox.Decrypt(m.deriveTicketKey(accessToken), consumed.EncryptedPayload, &entry); err != nil {
		// The use was already spent when the read was attempted; it is
		// not refunded.
		return nil, common.ErrInvalidAccessKey
	}
	return &entry, nil
}

func (m *Manager) classify(ctx context.Context, ticketID string, now time.Time) error {
	t, err := m.repo.Get(ctx, ticketID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrTicketNotFound
		}
		return err
	}
	switch {
	case t.Expired(now):
		return common.ErrTicketExpired
	case t.Exhausted():
		return common.ErrTicketExhausted
	default:
		return common.ErrTicketInvalid
	}
}

// Revoke latches the ticket invalid. Only the owner may revoke; revoking
// an already-invalid ticket is a no-op success.
func (m *Manager) Revoke(ctx context.Context, ticketID, owner string) (bool, error) {
	unlock := m.locks.lock(ticketID)
	defer unlock()

	t, err := m.repo.Get(ctx, ticketID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return false, common.ErrTicketNotFound
		}
		return false, err
	}
	if t.Owner != owner {
		return false, common.ErrForbidden
	}
	if !t.Valid {
		return true, nil
	}

	if err := m.repo.Invalidate(ctx, ticketID); err != nil {
		return false, err
	}
	m.log.Info(ctx, "ticket revoked", "ticket_id", ticketID)
	return true, nil
}

// List returns every ticket created by owner, lazily latching any
// newly-expired ticket invalid. Expiration is detected on read; there is
// no background sweep.
func (m *Manager) List(ctx context.Context, owner string) ([]*models.ShareTicket, error) {
	all, err := m.repo.ListByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}

	now := m.nowFn()
	for _, t := range all {
		if t.Valid && t.Expired(now) {
			if err := m.repo.Invalidate(ctx, t.ID); err != nil {
				return nil, err
			}
			t.Valid = false
		}
	}
	return all, nil
}
