package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/akovardin/securepass/internal/common"
)

// Claims carries the vault owner and a token id on top of the registered
// claims. The token identifies a session; it never carries key material.
type Claims struct {
	jwt.RegisteredClaims
	Owner string `json:"owner"`
}

// GenerateSessionToken mints an HS256 session token for owner with the
// given id and validity.
func GenerateSessionToken(owner, tokenID string, secretKey []byte, validity time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validity)),
		},
		Owner: owner,
	})
	return token.SignedString(secretKey)
}

// ParseSessionToken validates the token signature and expiry and returns
// the claims. Any failure maps to common.ErrInvalidToken.
func ParseSessionToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil || !token.Valid {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}
