// Package auth issues and verifies the HS256 tokens handed out at login.
// Tokens are self-contained: nothing is stored server side, and a token
// stops being accepted only when it expires.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/marketplace/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

// Claims carries the user id under the "userId" key the frontend already
// reads, plus the token type so a refresh token cannot be used as an
// access token.
type Claims struct {
	jwt.RegisteredClaims
	UserID    int64     `json:"userId"`
	TokenType TokenType `json:"token_type"`
}

// GenerateToken signs a token of the given type for userID, valid from now
// for validity. An empty secret yields common.ErrConfiguration.
func GenerateToken(userID int64, typ TokenType, secretKey []byte, validity time.Duration, now time.Time) (string, error) {
	if len(secretKey) == 0 {
		return "", fmt.Errorf("%w: empty signing secret", common.ErrConfiguration)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		UserID:    userID,
		TokenType: typ,
	})

	return token.SignedString(secretKey)
}

// ParseToken verifies signature, expiry (as of now) and type, and returns
// the user id. Expired tokens yield common.ErrTokenExpired; every other
// failure yields common.ErrInvalidToken.
func ParseToken(tokenString string, typ TokenType, secretKey []byte, now time.Time) (int64, error) {
	if len(secretKey) == 0 {
		return 0, fmt.Errorf("%w: empty signing secret", common.ErrConfiguration)
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)

	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, common.ErrTokenExpired
		}
		return 0, common.ErrInvalidToken
	}

	if !token.Valid || claims.TokenType != typ {
		return 0, common.ErrInvalidToken
	}

	return claims.UserID, nil
}
