package config

import "os"

// parseEnv overlays the deployment environment variables. Unset or empty
// variables leave the current value alone.
func parseEnv(config *Config) {
	if v, ok := lookupEnv("PORT"); ok {
		config.EndpointAddrHTTP = ":" + v
	}
	if v, ok := lookupEnv("DATABASE_DSN"); ok {
		config.DatabaseDSN = v
	}
	if v, ok := lookupEnv("JWT_SECRET_KEY"); ok {
		config.SecretKey = v
	}
	if v, ok := lookupEnv("AWS_S3_BUCKET"); ok {
		config.S3Bucket = v
	}
	if v, ok := lookupEnv("AWS_REGION"); ok {
		config.S3Region = v
	}
}

func lookupEnv(name string) (string, bool) {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
