package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Run("loads from json", func(t *testing.T) {
		path := writeTempJSON(t, map[string]any{
			"endpoint_addr_http":              ":9000",
			"database_dsn":                    "postgres://db",
			"database_connect_timeout":        "5s",
			"secret_key":                      "my_secret_key",
			"access_token_validity_duration":  "12h",
			"refresh_token_validity_duration": 3600000000000,
			"bcrypt_cost":                     12,
			"hash_workers":                    2,
			"login_rate_limit":                20,
			"log_backend":                     "zap",
			"trusted_proxies":                 []string{"10.0.0.1"},
			"s3_bucket":                       "images",
			"upload_url_validity":             "5m",
		})
		os.Args = []string{"testbin", "-config", path}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, ":9000", cfg.EndpointAddrHTTP)
		assert.Equal(t, "postgres://db", cfg.DatabaseDSN)
		assert.Equal(t, 5*time.Second, cfg.DatabaseConnectTimeout)
		assert.Equal(t, "my_secret_key", cfg.SecretKey)
		assert.Equal(t, 12*time.Hour, cfg.AccessTokenValidityDuration)
		assert.Equal(t, time.Hour, cfg.RefreshTokenValidityDuration)
		assert.Equal(t, 12, cfg.BcryptCost)
		assert.Equal(t, 2, cfg.HashWorkers)
		assert.Equal(t, 20, cfg.LoginRateLimit)
		assert.Equal(t, "zap", cfg.LogBackend)
		assert.Equal(t, []string{"10.0.0.1"}, cfg.TrustedProxies)
		assert.Equal(t, "images", cfg.S3Bucket)
		assert.Equal(t, 5*time.Minute, cfg.UploadURLValidity)
		// untouched by the file
		assert.Equal(t, "us-east-1", cfg.S3Region)
	})

	t.Run("no config flag leaves values alone", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{SecretKey: "key", EndpointAddrHTTP: ":1234"}
		parseJson(cfg)

		assert.Equal(t, "key", cfg.SecretKey)
		assert.Equal(t, ":1234", cfg.EndpointAddrHTTP)
	})

	t.Run("invalid JSON panics", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ not json`), 0o600))
		os.Args = []string{"testbin", "-c", bad}

		require.Panics(t, func() { parseJson(&Config{}) })
	})

	t.Run("missing file panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", filepath.Join(t.TempDir(), "absent.json")}

		require.Panics(t, func() { parseJson(&Config{}) })
	})
}
