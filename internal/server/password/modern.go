package password

import (
	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordTooLong is returned by HashModern for passwords bcrypt would
// silently truncate.
var ErrPasswordTooLong = bcrypt.ErrPasswordTooLong

// HashModern returns a bcrypt hash of password at the given cost. Costs
// below bcrypt.MinCost are raised to bcrypt.DefaultCost by bcrypt itself.
func HashModern(password string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyModern reports whether password matches the bcrypt hash stored.
// A stored string that is not a bcrypt hash at all does not match.
func VerifyModern(password, stored string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
}
