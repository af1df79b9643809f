// Package auth mints and verifies the two bearer credentials of the login
// state machine: the short-lived 2FA challenge token and the full session
// token. Both are HS256 JWTs; only the TwoFA claim distinguishes them.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/whispervault/whispervault/internal/common"
)

// Claims carries the registered claims plus the account subject and a flag
// marking the token as a pending-2FA challenge rather than a session.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"userId"`
	TwoFA  bool   `json:"twofa,omitempty"`
}

func generate(userID string, twofa bool, secretKey []byte, validity time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		UserID: userID,
		TwoFA:  twofa,
	})
	return token.SignedString(secretKey)
}

// GenerateChallengeToken mints a short-lived token proving a completed
// password (or email confirmation) step. It authorizes nothing except the
// second-factor endpoints.
func GenerateChallengeToken(userID string, secretKey []byte, validity time.Duration) (string, error) {
	return generate(userID, true, secretKey, validity)
}

// GenerateSessionToken mints a full session token. Only the second-factor
// flow calls this.
func GenerateSessionToken(userID string, secretKey []byte, validity time.Duration) (string, error) {
	return generate(userID, false, secretKey, validity)
}

// ParseToken verifies the signature and expiry of a token string and returns
// its claims. Invalid, expired or differently-signed tokens yield
// common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, common.ErrInvalidToken
	}
	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
