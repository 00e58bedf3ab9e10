package hashpw

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/dmitrijs2005/marketplace/internal/server/password"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubPasswords makes readPassword return inputs in order.
func stubPasswords(t *testing.T, inputs ...string) {
	t.Helper()
	old := readPassword
	t.Cleanup(func() { readPassword = old })

	i := 0
	readPassword = func(int) ([]byte, error) {
		if i >= len(inputs) {
			return nil, errors.New("no more input")
		}
		v := inputs[i]
		i++
		return []byte(v), nil
	}
}

func TestParseFlags(t *testing.T) {
	o, err := ParseFlags(nil, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, Options{Cost: 8, Iterations: 260000}, o)

	o, err = ParseFlags([]string{"-legacy", "-iterations", "1000", "-cost", "10"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, Options{Cost: 10, Legacy: true, Iterations: 1000}, o)

	_, err = ParseFlags([]string{"-nope"}, io.Discard)
	assert.Error(t, err)
}

func TestGetPassword(t *testing.T) {
	t.Run("match", func(t *testing.T) {
		stubPasswords(t, "wonderland", "wonderland")
		var out bytes.Buffer
		pw, err := GetPassword(&out)
		require.NoError(t, err)
		assert.Equal(t, "wonderland", string(pw))
		assert.Contains(t, out.String(), "Enter password: ")
		assert.Contains(t, out.String(), "Confirm password: ")
	})

	t.Run("mismatch", func(t *testing.T) {
		stubPasswords(t, "wonderland", "wonderlend")
		_, err := GetPassword(io.Discard)
		assert.ErrorIs(t, err, errMismatch)
	})

	t.Run("read error", func(t *testing.T) {
		stubPasswords(t)
		_, err := GetPassword(io.Discard)
		assert.EqualError(t, err, "no more input")
	})
}

func TestHash(t *testing.T) {
	modern, err := Hash("wonderland", Options{Cost: 4})
	require.NoError(t, err)
	assert.True(t, password.VerifyModern("wonderland", modern))

	legacy, err := Hash("wonderland", Options{Legacy: true, Iterations: 1000})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(legacy, "pbkdf2_sha256$1000$"))
	assert.Equal(t, password.LegacyMatched, password.VerifyLegacy("wonderland", legacy))

	_, err = Hash("wonderland", Options{Legacy: true, Iterations: 0})
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	t.Run("legacy", func(t *testing.T) {
		stubPasswords(t, "wonderland", "wonderland")
		var stdout, stderr bytes.Buffer

		code := Run([]string{"-legacy", "-iterations", "10"}, &stdout, &stderr)
		require.Equal(t, 0, code, stderr.String())

		stored := strings.TrimSpace(stdout.String())
		assert.Equal(t, password.LegacyMatched, password.VerifyLegacy("wonderland", stored))
	})

	t.Run("empty password", func(t *testing.T) {
		stubPasswords(t, "", "")
		var stdout, stderr bytes.Buffer
		assert.Equal(t, 1, Run(nil, &stdout, &stderr))
		assert.Empty(t, stdout.String())
		assert.Contains(t, stderr.String(), "empty password")
	})

	t.Run("bad flag", func(t *testing.T) {
		assert.Equal(t, 2, Run([]string{"-x"}, io.Discard, io.Discard))
	})
}
