// Package vault implements the credential store: loading and saving the
// encrypted vault and manipulating its entries. Entry secrets are
// field-encrypted inside the vault, so the persisted blob is encryption of
// a structure that itself contains ciphertext; a single password can be
// re-encrypted without rewriting everything else.
package vault

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/akovardin/securepass/internal/common"
	"github.com/akovardin/securepass/internal/cryptox"
	"github.com/akovardin/securepass/internal/logging"
	"github.com/akovardin/securepass/internal/models"
	"github.com/akovardin/securepass/internal/repositories/vaults"
)

// Store owns the persisted vault of one or more owners. All methods are
// synchronous; concurrency control lives in the repository underneath.
type Store struct {
	repo  vaults.Repository
	log   logging.Logger
	nowFn func() time.Time
}

// NewStore constructs a Store over the given blob repository.
func NewStore(repo vaults.Repository, log logging.Logger) *Store {
	return &Store{repo: repo, log: log, nowFn: time.Now}
}

// Load decrypts the owner's vault with key. Missing or empty storage
// yields an empty version-1 vault: first use is not a failure. A decrypt
// failure is surfaced as-is; treating "bad key" as "no data" would mask
// authentication bugs.
func (s *Store) Load(ctx context.Context, owner string, key []byte) (*models.Vault, error) {
	blob, err := s.repo.Load(ctx, owner)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return models.NewVault(), nil
		}
		return nil, err
	}
	if len(blob) == 0 {
		return models.NewVault(), nil
	}

	v := &models.Vault{}
	if err := cryptox.Decrypt(key, blob, v); err != nil {
		return nil, err
	}
	return v, nil
}

// Save re-encrypts the whole vault under key and overwrites storage
// atomically.
func (s *Store) Save(ctx context.Context, owner string, key []byte, v *models.Vault) error {
	blob, err := cryptox.Encrypt(key, v)
	if err != nil {
		return fmt.Errorf("encrypt vault: %w", err)
	}
	if err := s.repo.Save(ctx, owner, blob); err != nil {
		return err
	}
	s.log.Debug(ctx, "vault saved", "entries", len(v.Entries))
	return nil
}

// AddEntry appends a new entry: assigns a stable id, stamps both
// timestamps and encrypts the secret field under key. Returns the entry
// as stored.
func (s *Store) AddEntry(v *models.Vault, key []byte, entry models.CredentialEntry) (models.CredentialEntry, error) {
	if strings.TrimSpace(entry.Title) == "" {
		return models.CredentialEntry{}, fmt.Errorf("%w: title is required", common.ErrValidation)
	}

	if !entry.SecretEncrypted && entry.Secret != "" {
		enc, err := cryptox.EncryptField(key, entry.Secret)
		if err != nil {
			return models.CredentialEntry{}, fmt.Errorf("encrypt secret: %w", err)
		}
		entry.Secret = enc
		entry.SecretEncrypted = true
	}

	now := s.nowFn()
	entry.ID = uuid.NewString()
	entry.CreatedAt = now
	entry.ModifiedAt = now

	v.Entries = append(v.Entries, entry)
	return entry, nil
}

// UpdateEntry replaces the entry with the given id. CreatedAt is
// preserved unless the caller supplies one; ModifiedAt always moves
// forward. When upd.SecretEncrypted is set the secret is taken as
// already-encrypted ciphertext and carried over unchanged, so callers can
// resubmit an entry without knowing the plaintext.
func (s *Store) UpdateEntry(v *models.Vault, key []byte, id string, upd models.CredentialEntry) error {
	i := v.IndexOf(id)
	if i < 0 {
		return common.ErrNotFound
	}
	if strings.TrimSpace(upd.Title) == "" {
		return fmt.Errorf("%w: title is required", common.ErrValidation)
	}

	if !upd.SecretEncrypted && upd.Secret != "" {
		enc, err := cryptox.EncryptField(key, upd.Secret)
		if err != nil {
			return fmt.Errorf("encrypt secret: %w", err)
		}
		upd.Secret = enc
		upd.SecretEncrypted = true
	}

	prev := v.Entries[i]
	upd.ID = prev.ID
	if upd.CreatedAt.IsZero() {
		upd.CreatedAt = prev.CreatedAt
	}
	upd.ModifiedAt = s.nowFn()

	v.Entries[i] = upd
	return nil
}

// DeleteEntry removes the entry with the given id. Deletion is immediate
// and irreversible from the vault's perspective; backups are the only
// recovery path.
func (s *Store) DeleteEntry(v *models.Vault, id string) error {
	i := v.IndexOf(id)
	if i < 0 {
		return common.ErrNotFound
	}
	v.Entries = append(v.Entries[:i], v.Entries[i+1:]...)
	return nil
}

// DecryptSecret decrypts exactly one entry's secret for display, copy or
// sharing. No other secret is decrypted as a side effect.
func (s *Store) DecryptSecret(v *models.Vault, key []byte, id string) (string, error) {
	i := v.IndexOf(id)
	if i < 0 {
		return "", common.ErrNotFound
	}
	e := v.Entries[i]
	if !e.SecretEncrypted {
		return e.Secret, nil
	}
	return cryptox.DecryptField(key, e.Secret)
}

// EntryAt resolves a display position to its entry. Positions shift on
// delete; callers must not cache them across mutations.
func (s *Store) EntryAt(v *models.Vault, pos int) (*models.CredentialEntry, error) {
	if pos < 0 || pos >= len(v.Entries) {
		return nil, common.ErrNotFound
	}
	return &v.Entries[pos], nil
}

// UpdateAt is the position-addressed form of UpdateEntry.
func (s *Store) UpdateAt(v *models.Vault, key []byte, pos int, upd models.CredentialEntry) error {
	e, err := s.EntryAt(v, pos)
	if err != nil {
		return err
	}
	return s.UpdateEntry(v, key, e.ID, upd)
}

// DeleteAt is the position-addressed form of DeleteEntry. Subsequent
// positions shift down by one.
func (s *Store) DeleteAt(v *models.Vault, pos int) error {
	e, err := s.EntryAt(v, pos)
	if err != nil {
		return err
	}
	return s.DeleteEntry(v, e.ID)
}

// DecryptSecretAt is the position-addressed form of DecryptSecret.
func (s *Store) DecryptSecretAt(v *models.Vault, key []byte, pos int) (string, error) {
	e, err := s.EntryAt(v, pos)
	if err != nil {
		return "", err
	}
	return s.DecryptSecret(v, key, e.ID)
}
