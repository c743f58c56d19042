package service

import (
	"errors"

	"github.com/akovardin/securepass/internal/common"
)

// UserMessage maps a typed failure to the text shown to end users.
// Ticket-access failures deliberately collapse into one message: telling
// an anonymous caller whether a link is unknown, expired or exhausted
// would leak information useful for probing ids.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, common.ErrAuthenticationFailed):
		return "invalid master password"
	case errors.Is(err, common.ErrRateLimited):
		return "too many attempts, try again later"
	case errors.Is(err, common.ErrInvalidToken):
		return "session expired, unlock the vault again"
	case errors.Is(err, common.ErrTicketNotFound),
		errors.Is(err, common.ErrTicketInvalid),
		errors.Is(err, common.ErrTicketExpired),
		errors.Is(err, common.ErrTicketExhausted),
		errors.Is(err, common.ErrInvalidAccessKey):
		return "this share link is invalid or has expired"
	case errors.Is(err, common.ErrForbidden):
		return "you do not own this share"
	case errors.Is(err, common.ErrNotFound):
		return "no such entry"
	case errors.Is(err, common.ErrIntegrity):
		return "vault data could not be decrypted"
	case errors.Is(err, common.ErrValidation):
		return err.Error()
	default:
		return "internal error"
	}
}
