// Package service is the collaborator-facing surface of SecurePass: the
// operations a UI or HTTP layer binds to. Everything takes and returns
// plain structured data, no framework types. A session token stands in
// for the master password after authentication; the derived key never
// leaves the process.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/akovardin/securepass/internal/auth"
	"github.com/akovardin/securepass/internal/common"
	"github.com/akovardin/securepass/internal/config"
	"github.com/akovardin/securepass/internal/logging"
	"github.com/akovardin/securepass/internal/models"
	"github.com/akovardin/securepass/internal/repositories/repomanager"
	"github.com/akovardin/securepass/internal/sharing"
	"github.com/akovardin/securepass/internal/vault"
)

// Service wires the gateway, store and share manager behind one facade.
type Service struct {
	cfg      *config.Config
	gateway  *auth.Gateway
	store    *vault.Store
	shares   *sharing.Manager
	log      logging.Logger
	sessions *sessionTable
	limiter  *authLimiter
}

// New constructs a Service over the given repository manager.
func New(cfg *config.Config, repos repomanager.RepositoryManager, log logging.Logger) *Service {
	return &Service{
		cfg:      cfg,
		gateway:  auth.NewGateway(repos.Masters(), log),
		store:    vault.NewStore(repos.Vaults(), log),
		shares:   sharing.NewManager(repos.Tickets(), log),
		log:      log,
		sessions: newSessionTable(),
		limiter:  newAuthLimiter(cfg.AuthRatePerMinute, cfg.AuthBurst),
	}
}

// FirstRun reports whether owner has no master password yet.
func (s *Service) FirstRun(ctx context.Context, owner string) (bool, error) {
	return s.gateway.FirstRun(ctx, owner)
}

// Setup creates the master password for owner and opens a session.
func (s *Service) Setup(ctx context.Context, owner, password string) (string, error) {
	key, err := s.gateway.CreateMaster(ctx, owner, password)
	if err != nil {
		return "", err
	}
	return s.openSession(owner, key)
}

// Authenticate verifies the master password and returns a session token.
// Attempts are throttled per owner.
func (s *Service) Authenticate(ctx context.Context, owner, password string) (string, error) {
	if !s.limiter.allow(owner) {
		s.log.Warn(ctx, "authentication throttled", "owner", owner)
		return "", common.ErrRateLimited
	}

	key, err := s.gateway.Authenticate(ctx, owner, password)
	if err != nil {
		return "", err
	}
	return s.openSession(owner, key)
}

func (s *Service) openSession(owner string, key []byte) (string, error) {
	tokenID := uuid.NewString()
	token, err := auth.GenerateSessionToken(owner, tokenID, []byte(s.cfg.SessionSecret), s.cfg.SessionValidity)
	if err != nil {
		return "", fmt.Errorf("mint session token: %w", err)
	}
	s.sessions.put(tokenID, owner, key, s.cfg.SessionValidity)
	return token, nil
}

// Logout drops the session behind the token. Unknown tokens are ignored.
func (s *Service) Logout(token string) {
	claims, err := auth.ParseSessionToken(token, []byte(s.cfg.SessionSecret))
	if err != nil {
		return
	}
	s.sessions.drop(claims.ID)
}

func (s *Service) resolve(token string) (*session, error) {
	claims, err := auth.ParseSessionToken(token, []byte(s.cfg.SessionSecret))
	if err != nil {
		return nil, err
	}
	return s.sessions.get(claims.ID)
}

// ListEntries returns the vault's entries in insertion order. Secrets stay
// encrypted.
func (s *Service) ListEntries(ctx context.Context, token string) ([]models.CredentialEntry, error) {
	sess, err := s.resolve(token)
	if err != nil {
		return nil, err
	}
	v, err := s.store.Load(ctx, sess.owner, sess.key)
	if err != nil {
		return nil, err
	}
	return v.Entries, nil
}

// AddEntry appends an entry and persists the vault.
func (s *Service) AddEntry(ctx context.Context, token string, entry models.CredentialEntry) (models.CredentialEntry, error) {
	sess, err := s.resolve(token)
	if err != nil {
		return models.CredentialEntry{}, err
	}
	v, err := s.store.Load(ctx, sess.owner, sess.key)
	if err != nil {
		return models.CredentialEntry{}, err
	}
	stored, err := s.store.AddEntry(v, sess.key, entry)
	if err != nil {
		return models.CredentialEntry{}, err
	}
	if err := s.store.Save(ctx, sess.owner, sess.key, v); err != nil {
		return models.CredentialEntry{}, err
	}
	return stored, nil
}

// UpdateEntry replaces the entry with the given id and persists the vault.
func (s *Service) UpdateEntry(ctx context.Context, token, id string, upd models.CredentialEntry) error {
	sess, err := s.resolve(token)
	if err != nil {
		return err
	}
	v, err := s.store.Load(ctx, sess.owner, sess.key)
	if err != nil {
		return err
	}
	if err := s.store.UpdateEntry(v, sess.key, id, upd); err != nil {
		return err
	}
	return s.store.Save(ctx, sess.owner, sess.key, v)
}

// DeleteEntry removes the entry with the given id and persists the vault.
func (s *Service) DeleteEntry(ctx context.Context, token, id string) error {
	sess, err := s.resolve(token)
	if err != nil {
		return err
	}
	v, err := s.store.Load(ctx, sess.owner, sess.key)
	if err != nil {
		return err
	}
	if err := s.store.DeleteEntry(v, id); err != nil {
		return err
	}
	return s.store.Save(ctx, sess.owner, sess.key, v)
}

// DecryptSecret returns the plaintext secret of exactly one entry.
func (s *Service) DecryptSecret(ctx context.Context, token, id string) (string, error) {
	sess, err := s.resolve(token)
	if err != nil {
		return "", err
	}
	v, err := s.store.Load(ctx, sess.owner, sess.key)
	if err != nil {
		return "", err
	}
	return s.store.DecryptSecret(v, sess.key, id)
}

// Share creates a sharing ticket for one entry. The entry's secret is
// decrypted with the session key, and the snapshot is re-encrypted under
// a key derived from the fresh access token; the master key is not
// involved in the ticket. The caller should transmit id and token over
// different channels.
func (s *Service) Share(ctx context.Context, token, entryID string, ttl time.Duration, maxUses int) (string, string, error) {
	sess, err := s.resolve(token)
	if err != nil {
		return "", "", err
	}
	v, err := s.store.Load(ctx, sess.owner, sess.key)
	if err != nil {
		return "", "", err
	}

	i := v.IndexOf(entryID)
	if i < 0 {
		return "", "", common.ErrNotFound
	}
	entry := v.Entries[i]

	password, err := s.store.DecryptSecret(v, sess.key, entryID)
	if err != nil {
		return "", "", err
	}

	snapshot := models.SharedEntry{
		Title:    entry.Title,
		Username: entry.Username,
		Password: password,
		Website:  entry.Website,
		Notes:    entry.Notes,
		Category: entry.Category,
		SharedBy: sess.owner,
	}
	return s.shares.Create(ctx, snapshot, sess.owner, ttl, maxUses)
}

// AccessShare retrieves a shared entry. No session is required: holding
// the ticket id and the access token is the whole credential.
func (s *Service) AccessShare(ctx context.Context, ticketID, accessToken string) (*models.SharedEntry, error) {
	return s.shares.Access(ctx, ticketID, accessToken)
}

// RevokeShare invalidates one of the owner's tickets.
func (s *Service) RevokeShare(ctx context.Context, token, ticketID string) (bool, error) {
	sess, err := s.resolve(token)
	if err != nil {
		return false, err
	}
	return s.shares.Revoke(ctx, ticketID, sess.owner)
}

// ListShares returns the owner's tickets with validity lazily refreshed.
func (s *Service) ListShares(ctx context.Context, token string) ([]*models.ShareTicket, error) {
	sess, err := s.resolve(token)
	if err != nil {
		return nil, err
	}
	return s.shares.List(ctx, sess.owner)
}

// Owner returns the owner bound to a session token.
func (s *Service) Owner(token string) (string, error) {
	sess, err := s.resolve(token)
	if err != nil {
		return "", err
	}
	return sess.owner, nil
}
