package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/akovardin/securepass/internal/common"
)

// gcmNonceSize is the standard 12-byte GCM nonce.
const gcmNonceSize = 12

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("new cipher: %w", err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("new gcm: %w", err)
	}
	return aesgcm, nil
}

// Encrypt serializes v to JSON and encrypts it with AES-GCM under key.
// The random nonce is prefixed to the ciphertext, so the returned blob is
// self-contained: decryption needs only the key and the blob.
func Encrypt(key []byte, v any) ([]byte, error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := common.GenerateRandByteArray(gcmNonceSize)
	return aesgcm.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt reverses Encrypt into v. A wrong key, tampered bytes, truncation
// or malformed plaintext all fail with common.ErrIntegrity; the causes are
// indistinguishable on purpose and must never yield partial data.
func Decrypt(key []byte, blob []byte, v any) error {
	if len(blob) < gcmNonceSize+1 {
		return fmt.Errorf("blob too short: %w", common.ErrIntegrity)
	}

	aesgcm, err := newGCM(key)
	if err != nil {
		return err
	}

	plaintext, err := aesgcm.Open(nil, blob[:gcmNonceSize], blob[gcmNonceSize:], nil)
	if err != nil {
		return fmt.Errorf("open ciphertext: %w", common.ErrIntegrity)
	}

	if err := json.Unmarshal(plaintext, v); err != nil {
		return fmt.Errorf("unmarshal payload: %w", common.ErrIntegrity)
	}
	return nil
}

// EncryptField encrypts a single string under key and returns it
// base64-encoded for textual transport. Used so an entry's password can be
// re-encrypted without touching the rest of the vault.
func EncryptField(key []byte, plaintext string) (string, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return "", err
	}
	nonce := common.GenerateRandByteArray(gcmNonceSize)
	blob := aesgcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(blob), nil
}

// DecryptField reverses EncryptField. Failure modes match Decrypt.
func DecryptField(key []byte, encoded string) (string, error) {
	blob, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decode field: %w", common.ErrIntegrity)
	}
	if len(blob) < gcmNonceSize+1 {
		return "", fmt.Errorf("field too short: %w", common.ErrIntegrity)
	}

	aesgcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	plaintext, err := aesgcm.Open(nil, blob[:gcmNonceSize], blob[gcmNonceSize:], nil)
	if err != nil {
		return "", fmt.Errorf("open field: %w", common.ErrIntegrity)
	}
	return string(plaintext), nil
}
