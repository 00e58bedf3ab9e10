package password

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// LegacyAlgorithmTag is what the previous (Django) backend wrote in the
	// first field. Verification never checks it.
	LegacyAlgorithmTag = "pbkdf2_sha256"

	legacyDelimiter = "$"
	legacyFields    = 4
	legacyKeyLen    = 32

	// maxLegacyIterations bounds the work a single stored hash can demand.
	// Rows above it are reported as LegacyMalformed even though the previous
	// backend would have accepted them; such users fall through to bcrypt
	// and cannot log in until their hash is rewritten.
	maxLegacyIterations = 10_000_000
)

// LegacyResult is the outcome of checking a password against a legacy hash.
type LegacyResult int

const (
	LegacyNotMatched LegacyResult = iota
	LegacyMatched
	// LegacyMalformed means the stored string is not a usable legacy hash:
	// wrong field count, or an iteration count that is not a positive
	// integer or exceeds maxLegacyIterations.
	LegacyMalformed
)

func (r LegacyResult) String() string {
	switch r {
	case LegacyMatched:
		return "matched"
	case LegacyNotMatched:
		return "not_matched"
	case LegacyMalformed:
		return "malformed"
	default:
		return fmt.Sprintf("LegacyResult(%d)", int(r))
	}
}

type legacyHash struct {
	tag        string
	iterations int
	salt       string
	key        string
}

// parseLegacy splits stored on "$" into tag, iterations, salt and key. Any
// string with exactly four fields is a candidate whatever its tag says.
func parseLegacy(stored string) (legacyHash, bool) {
	fields := strings.Split(stored, legacyDelimiter)
	if len(fields) != legacyFields {
		return legacyHash{}, false
	}

	iterations, err := strconv.Atoi(fields[1])
	if err != nil || iterations <= 0 || iterations > maxLegacyIterations {
		return legacyHash{}, false
	}

	return legacyHash{tag: fields[0], iterations: iterations, salt: fields[2], key: fields[3]}, true
}

// VerifyLegacy derives PBKDF2-HMAC-SHA256(password, salt, iterations, 32)
// and compares its standard base64 encoding with the stored key.
func VerifyLegacy(password, stored string) LegacyResult {
	h, ok := parseLegacy(stored)
	if !ok {
		return LegacyMalformed
	}

	derived := deriveLegacyKey(password, h.salt, h.iterations)
	if subtle.ConstantTimeCompare([]byte(derived), []byte(h.key)) == 1 {
		return LegacyMatched
	}
	return LegacyNotMatched
}

// HashLegacy produces a stored hash in the legacy format. New passwords are
// never stored this way; it exists for migration tooling and tests.
func HashLegacy(password, salt string, iterations int) (string, error) {
	if iterations <= 0 || iterations > maxLegacyIterations {
		return "", fmt.Errorf("iterations out of range: %d", iterations)
	}
	if salt == "" || strings.Contains(salt, legacyDelimiter) {
		return "", fmt.Errorf("salt must be non-empty and must not contain %q", legacyDelimiter)
	}

	return strings.Join([]string{
		LegacyAlgorithmTag,
		strconv.Itoa(iterations),
		salt,
		deriveLegacyKey(password, salt, iterations),
	}, legacyDelimiter), nil
}

func deriveLegacyKey(password, salt string, iterations int) string {
	key := pbkdf2.Key([]byte(password), []byte(salt), iterations, legacyKeyLen, sha256.New)
	return base64.StdEncoding.EncodeToString(key)
}
