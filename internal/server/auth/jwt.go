// Package auth implements the credential primitives of the backend:
// HS256 bearer tokens carrying a per-user version, and bcrypt password
// hashing with the Stream254 complexity policy.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/stream254/backend/internal/common"
)

// Claims extends the registered claim set with the user identifier and the
// user's token version at issue time. A token whose version trails the
// stored one has been revoked by logout.
type Claims struct {
	jwt.RegisteredClaims
	UserID       string `json:"uid"`
	TokenVersion int64  `json:"ver"`
}

func GenerateToken(userID string, tokenVersion int64, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID:       userID,
		TokenVersion: tokenVersion,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken validates the signature and expiry of tokenString and returns
// the embedded user ID and token version. Expired tokens yield
// common.ErrTokenExpired, anything else invalid yields common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (string, int64, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, common.ErrInvalidToken
		}
		return secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", 0, common.ErrTokenExpired
		}
		return "", 0, common.ErrInvalidToken
	}

	if !token.Valid || claims.UserID == "" {
		return "", 0, common.ErrInvalidToken
	}

	return claims.UserID, claims.TokenVersion, nil
}
