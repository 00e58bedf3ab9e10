// Package password verifies plaintext passwords against the two stored
// formats in use and produces new stored hashes.
//
// Legacy hashes come from the previous backend and look like
// "pbkdf2_sha256$<iterations>$<salt>$<base64 key>". Modern hashes are
// bcrypt strings. A stored value is tried as legacy first whenever it
// splits into four "$"-separated fields (the tag is not checked), and as
// bcrypt whenever the legacy check did not match.
package password

import (
	"context"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Scheme names the format a password was verified against.
type Scheme string

const (
	SchemeNone   Scheme = "none"
	SchemeLegacy Scheme = "legacy"
	SchemeModern Scheme = "modern"
)

// Observer receives the duration of each hash computation. It may be nil.
type Observer func(scheme Scheme, elapsed time.Duration)

// Verifier runs hash computations on a bounded Pool.
type Verifier struct {
	pool    *Pool
	cost    int
	observe Observer

	absentOnce sync.Once
	absentHash string
}

func NewVerifier(pool *Pool, cost int, observe Observer) *Verifier {
	return &Verifier{pool: pool, cost: cost, observe: observe}
}

// Verify checks plaintext against stored. It returns the scheme that
// matched, or SchemeNone when neither did. The only error is the context's,
// when it ends before a worker slot frees up.
func (v *Verifier) Verify(ctx context.Context, plaintext, stored string) (Scheme, error) {
	scheme := SchemeNone

	err := v.pool.Do(ctx, func() {
		start := time.Now()
		legacy := VerifyLegacy(plaintext, stored)
		if legacy != LegacyMalformed {
			v.record(SchemeLegacy, time.Since(start))
		}
		if legacy == LegacyMatched {
			scheme = SchemeLegacy
			return
		}

		start = time.Now()
		ok := VerifyModern(plaintext, stored)
		v.record(SchemeModern, time.Since(start))
		if ok {
			scheme = SchemeModern
		}
	})
	if err != nil {
		return SchemeNone, err
	}
	return scheme, nil
}

// VerifyAbsent compares plaintext with a fixed bcrypt hash of the configured
// cost and discards the result. Callers use it when no stored hash exists,
// so a missing account costs as much as a wrong password.
func (v *Verifier) VerifyAbsent(ctx context.Context, plaintext string) error {
	return v.pool.Do(ctx, func() {
		stored := v.absent()
		start := time.Now()
		VerifyModern(plaintext, stored)
		v.record(SchemeModern, time.Since(start))
	})
}

func (v *Verifier) absent() string {
	v.absentOnce.Do(func() {
		h, err := HashModern("absent-account", v.cost)
		if err != nil {
			h, _ = HashModern("absent-account", bcrypt.DefaultCost)
		}
		v.absentHash = h
	})
	return v.absentHash
}

// Hash produces a modern stored hash for plaintext.
func (v *Verifier) Hash(ctx context.Context, plaintext string) (string, error) {
	var (
		hash    string
		hashErr error
	)

	err := v.pool.Do(ctx, func() {
		start := time.Now()
		hash, hashErr = HashModern(plaintext, v.cost)
		v.record(SchemeModern, time.Since(start))
	})
	if err != nil {
		return "", err
	}
	return hash, hashErr
}

func (v *Verifier) record(scheme Scheme, elapsed time.Duration) {
	if v.observe != nil {
		v.observe(scheme, elapsed)
	}
}
