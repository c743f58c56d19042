// Package common defines shared sentinel errors and small helpers used
// across SecurePass components. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound  = errors.New("not found")
	ErrStorageIO = errors.New("storage i/o error")

	// Authentication errors.
	ErrAuthenticationFailed = errors.New("invalid master password")
	ErrInvalidToken         = errors.New("invalid session token")
	ErrRateLimited          = errors.New("too many attempts")

	// Cryptographic errors. A wrong key and tampered ciphertext are
	// indistinguishable and must stay that way.
	ErrIntegrity = errors.New("ciphertext integrity check failed")

	// Validation errors.
	ErrValidation = errors.New("validation error")

	// Sharing-ticket lifecycle errors.
	ErrTicketNotFound   = errors.New("shared item not found")
	ErrTicketInvalid    = errors.New("shared item is no longer valid")
	ErrTicketExpired    = errors.New("shared item has expired")
	ErrTicketExhausted  = errors.New("shared item reached its access limit")
	ErrInvalidAccessKey = errors.New("invalid access key")
	ErrForbidden        = errors.New("not the owner of this shared item")
)
