package models

import "encoding/hex"

// MasterCredential is the stored record that gates a vault. It is
// plaintext-readable trusted storage: the hash only answers "is this the
// right password" and the salts are not secret.
//
// PasswordSalt and KeySalt are independent by contract. KeySalt is fixed
// for the vault's lifetime; changing the master password means re-deriving
// the key and re-encrypting the whole vault.
type MasterCredential struct {
	PasswordHash string `json:"password_hash"`
	PasswordSalt string `json:"password_salt"`
	KeySalt      string `json:"key_salt"`
}

// VerificationSalt decodes the hex-encoded password salt.
func (m *MasterCredential) VerificationSalt() ([]byte, error) {
	return hex.DecodeString(m.PasswordSalt)
}

// KeyDerivationSalt decodes the hex-encoded key-derivation salt.
func (m *MasterCredential) KeyDerivationSalt() ([]byte, error) {
	return hex.DecodeString(m.KeySalt)
}
