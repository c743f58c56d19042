// Package vaults persists the encrypted vault blob, one per owner. The
// blob is opaque authenticated ciphertext; this layer never sees keys or
// plaintext.
package vaults

import "context"

// Repository stores vault blobs.
type Repository interface {
	// Load returns the blob for owner or common.ErrNotFound when the
	// owner has never saved a vault. First use is not a failure; the
	// caller turns ErrNotFound into an empty vault.
	Load(ctx context.Context, owner string) ([]byte, error)

	// Save replaces the blob for owner. The replacement must be atomic
	// with respect to crashes: a reader never observes a torn write.
	Save(ctx context.Context, owner string, blob []byte) error
}
