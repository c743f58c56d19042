// Package models defines the typed records persisted by SecurePass: vault
// entries, the master credential record, and sharing tickets.
package models

import "time"

// CredentialEntry is one stored secret. The Secret field is itself
// ciphertext whenever SecretEncrypted is true, so the record is
// self-describing: no runtime dictionary checks decide whether a field
// is encrypted.
type CredentialEntry struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Username        string    `json:"username"`
	Secret          string    `json:"secret"`
	SecretEncrypted bool      `json:"secret_encrypted"`
	Website         string    `json:"website"`
	Notes           string    `json:"notes"`
	Category        string    `json:"category"`
	CreatedAt       time.Time `json:"created_at"`
	ModifiedAt      time.Time `json:"modified_at"`
}

// VaultVersion is the current on-disk payload format version.
const VaultVersion = 1

// Vault is the decrypted in-memory form of the store: entries in insertion
// order plus a format version. Insertion order is a display concern;
// mutations address entries by ID.
type Vault struct {
	Version int               `json:"version"`
	Entries []CredentialEntry `json:"entries"`
}

// NewVault returns an empty vault at the current format version.
func NewVault() *Vault {
	return &Vault{Version: VaultVersion}
}

// IndexOf returns the position of the entry with the given id, or -1.
func (v *Vault) IndexOf(id string) int {
	for i := range v.Entries {
		if v.Entries[i].ID == id {
			return i
		}
	}
	return -1
}
