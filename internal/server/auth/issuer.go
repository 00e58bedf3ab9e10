package auth

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/marketplace/internal/common"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Issuer signs and decodes token pairs with one process-wide secret.
// It holds no mutable state after construction and is safe for
// concurrent use.
type Issuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewIssuer fails with common.ErrConfiguration when secret is empty or a
// lifetime is not positive.
func NewIssuer(secret string, accessTTL, refreshTTL time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: token signing secret is not set", common.ErrConfiguration)
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, fmt.Errorf("%w: token validity must be positive", common.ErrConfiguration)
	}
	return &Issuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}, nil
}

// WithClock returns a copy of the issuer that reads time from now.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	c := *i
	c.now = now
	return &c
}

// IssuePair signs an access and a refresh token for userID.
func (i *Issuer) IssuePair(userID int64) (*TokenPair, error) {
	now := i.now()

	access, err := GenerateToken(userID, AccessToken, i.secret, i.accessTTL, now)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := GenerateToken(userID, RefreshToken, i.secret, i.refreshTTL, now)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// DecodeAccessToken returns the user id of a valid access token. Every
// failure wraps common.ErrorUnauthorized together with the cause.
func (i *Issuer) DecodeAccessToken(token string) (int64, error) {
	return i.decode(token, AccessToken)
}

// DecodeRefreshToken is DecodeAccessToken for refresh tokens.
func (i *Issuer) DecodeRefreshToken(token string) (int64, error) {
	return i.decode(token, RefreshToken)
}

func (i *Issuer) decode(token string, typ TokenType) (int64, error) {
	userID, err := ParseToken(token, typ, i.secret, i.now())
	if err != nil {
		return 0, fmt.Errorf("%w: %w", common.ErrorUnauthorized, err)
	}
	return userID, nil
}
