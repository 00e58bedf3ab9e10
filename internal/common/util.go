package common

import (
	"crypto/rand"
	"encoding/hex"
)

// MakeRandHexString returns size random bytes hex-encoded. The output only
// uses [0-9a-f], which makes it a safe legacy salt: it never contains the
// "$" field delimiter.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// WipeByteArray clears a plaintext password buffer once it has been hashed.
func WipeByteArray(b []byte) {
	clear(b)
}
