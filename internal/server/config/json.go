package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/marketplace/internal/flagx"
	"github.com/dmitrijs2005/marketplace/internal/timex"
)

// JsonConfig mirrors Config for unmarshalling. Durations accept "24h" style
// strings or integer nanoseconds. Fields absent from the file keep the
// values already present in Config.
type JsonConfig struct {
	EndpointAddrHTTP             *string         `json:"endpoint_addr_http"`
	DatabaseDSN                  *string         `json:"database_dsn"`
	DatabaseConnectTimeout       *timex.Duration `json:"database_connect_timeout"`
	SecretKey                    *string         `json:"secret_key"`
	AccessTokenValidityDuration  *timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration *timex.Duration `json:"refresh_token_validity_duration"`
	BcryptCost                   *int            `json:"bcrypt_cost"`
	HashWorkers                  *int            `json:"hash_workers"`
	LoginRateLimit               *int            `json:"login_rate_limit"`
	LogBackend                   *string         `json:"log_backend"`
	TrustedProxies               []string        `json:"trusted_proxies"`
	S3RootUser                   *string         `json:"s3_root_user"`
	S3RootPassword               *string         `json:"s3_root_password"`
	S3Bucket                     *string         `json:"s3_bucket"`
	S3Region                     *string         `json:"s3_region"`
	S3BaseEndpoint               *string         `json:"s3_base_endpoint"`
	UploadURLValidity            *timex.Duration `json:"upload_url_validity"`
}

// parseJson overlays the file named by -c/-config. No flag means no file.
// An unreadable file or invalid JSON panics: the server must not start on a
// half-read configuration.
func parseJson(config *Config) {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.LogBackend, c.LogBackend)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)

	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration != nil {
		config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
	if c.DatabaseConnectTimeout != nil {
		config.DatabaseConnectTimeout = c.DatabaseConnectTimeout.Duration
	}
	if c.UploadURLValidity != nil {
		config.UploadURLValidity = c.UploadURLValidity.Duration
	}
	if c.BcryptCost != nil {
		config.BcryptCost = *c.BcryptCost
	}
	if c.HashWorkers != nil {
		config.HashWorkers = *c.HashWorkers
	}
	if c.LoginRateLimit != nil {
		config.LoginRateLimit = *c.LoginRateLimit
	}
	if c.TrustedProxies != nil {
		config.TrustedProxies = c.TrustedProxies
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
