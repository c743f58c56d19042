// Package cryptox implements the cryptographic core of SecurePass:
// password-based key derivation and authenticated encryption of vault
// payloads. It composes vetted primitives (PBKDF2-HMAC-SHA256, AES-GCM)
// and never implements its own.
package cryptox

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/pbkdf2"

	"github.com/akovardin/securepass/internal/common"
)

const (
	// SaltSize is the length of freshly generated salts.
	SaltSize = 16

	// KeySize is the length of derived symmetric keys (AES-256).
	KeySize = 32

	// kdfIterations is the PBKDF2 work factor. Changing it invalidates
	// every stored key derivation, so treat it as part of the vault format.
	kdfIterations = 100_000
)

// DeriveVerification hashes a password with a salt using a single fast
// one-way function. The result is stored and later compared to decide
// "is this the right password"; it is never used as key material.
// If salt is nil a fresh random salt is generated.
//
// The verification salt must be independent of the key-derivation salt:
// reusing one salt for both would hand an offline attacker who obtains
// the verification hash the encryption key's salt material for free.
func DeriveVerification(password string, salt []byte) (string, []byte) {
	if salt == nil {
		salt = common.GenerateRandByteArray(SaltSize)
	}
	buf := make([]byte, 0, len(password)+len(salt))
	buf = append(buf, password...)
	buf = append(buf, salt...)
	sum := sha256.Sum256(buf)
	return hex.EncodeToString(sum[:]), salt
}

// DeriveKey stretches a password into a KeySize symmetric key with
// PBKDF2-HMAC-SHA256 under a deliberately slow iteration count.
// If salt is nil a fresh random salt is generated. Deterministic for a
// fixed (password, salt) pair.
func DeriveKey(password string, salt []byte) ([]byte, []byte) {
	if salt == nil {
		salt = common.GenerateRandByteArray(SaltSize)
	}
	key := pbkdf2.Key([]byte(password), salt, kdfIterations, KeySize, sha256.New)
	return key, salt
}
