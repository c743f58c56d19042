package common

import (
	"crypto/rand"
	"encoding/base64"
)

// GenerateRandByteArray returns size cryptographically random bytes.
// It panics if the platform random source fails; callers treat that as
// fatal, not retriable.
func GenerateRandByteArray(size int) []byte {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		panic("random source exhausted: " + err.Error())
	}
	return b
}

// MakeURLSafeToken generates a random token of size bytes encoded with the
// URL-safe base64 alphabet, suitable for out-of-band delivery.
func MakeURLSafeToken(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// WipeByteArray overwrites the contents of the provided byte slice with
// zeros. Useful for passwords and derived keys once they are no longer
// needed. A nil slice is a no-op.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
