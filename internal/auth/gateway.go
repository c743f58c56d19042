// Package auth implements master-password verification and session token
// handling. The gateway checks an entered password against the stored
// verification hash and, on success, reconstructs the derived key the
// store and sharing layers need. The derived key is never persisted.
package auth

import (
	"context"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/akovardin/securepass/internal/common"
	"github.com/akovardin/securepass/internal/cryptox"
	"github.com/akovardin/securepass/internal/logging"
	"github.com/akovardin/securepass/internal/models"
	"github.com/akovardin/securepass/internal/repositories/masters"
)

// Gateway verifies master passwords for vault owners.
type Gateway struct {
	repo masters.Repository
	log  logging.Logger
}

// NewGateway constructs a Gateway over the given master repository.
func NewGateway(repo masters.Repository, log logging.Logger) *Gateway {
	return &Gateway{repo: repo, log: log}
}

// FirstRun reports whether no master credential exists for owner yet.
func (g *Gateway) FirstRun(ctx context.Context, owner string) (bool, error) {
	exists, err := g.repo.Exists(ctx, owner)
	if err != nil {
		return false, err
	}
	return !exists, nil
}

// CreateMaster sets up a new master credential for owner: an independent
// verification salt plus hash, and a key-derivation salt that stays fixed
// for the vault's lifetime. Returns the derived key so the caller can open
// a session immediately.
func (g *Gateway) CreateMaster(ctx context.Context, owner, password string) ([]byte, error) {
	if len(password) == 0 {
		return nil, fmt.Errorf("%w: empty master password", common.ErrValidation)
	}

	hash, vSalt := cryptox.DeriveVerification(password, nil)
	key, kSalt := cryptox.DeriveKey(password, nil)

	cred := &models.MasterCredential{
		PasswordHash: hash,
		PasswordSalt: hex.EncodeToString(vSalt),
		KeySalt:      hex.EncodeToString(kSalt),
	}
	if err := g.repo.Save(ctx, owner, cred); err != nil {
		return nil, err
	}

	g.log.Info(ctx, "master credential created", "owner", owner)
	return key, nil
}

// Authenticate verifies password for owner and, on success, returns the
// derived key. An unknown owner and a wrong password are reported
// identically as ErrAuthenticationFailed.
func (g *Gateway) Authenticate(ctx context.Context, owner, password string) ([]byte, error) {
	cred, err := g.repo.Load(ctx, owner)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrAuthenticationFailed
		}
		return nil, err
	}

	vSalt, err := cred.VerificationSalt()
	if err != nil {
		return nil, fmt.Errorf("corrupt verification salt: %w", err)
	}

	computed, _ := cryptox.DeriveVerification(password, vSalt)
	if subtle.ConstantTimeCompare([]byte(computed), []byte(cred.PasswordHash)) != 1 {
		g.log.Warn(ctx, "authentication failed", "owner", owner)
		return nil, common.ErrAuthenticationFailed
	}

	kSalt, err := cred.KeyDerivationSalt()
	if err != nil {
		return nil, fmt.Errorf("corrupt key salt: %w", err)
	}

	key, _ := cryptox.DeriveKey(password, kSalt)
	return key, nil
}
