package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays configuration from the environment, loading a local
// .env file first if one exists (development convenience; a missing file
// is not an error). Duration variables use time.ParseDuration syntax and
// are ignored when malformed.
func parseEnv(config *Config) {
	_ = godotenv.Load()

	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	setDuration := func(key string, dst *time.Duration) {
		if v, ok := os.LookupEnv(key); ok {
			if d, err := time.ParseDuration(v); err == nil {
				*dst = d
			}
		}
	}

	setString("ADDRESS", &config.EndpointAddr)
	setString("DATABASE_DSN", &config.DatabaseDSN)
	setString("SECRET_KEY", &config.SecretKey)
	setDuration("ACCESS_TOKEN_VALIDITY", &config.AccessTokenValidityDuration)
	setDuration("RESET_TOKEN_VALIDITY", &config.ResetTokenValidityDuration)
	setString("RESET_URL_BASE", &config.ResetURLBase)
	setString("MAIL_ENDPOINT", &config.MailEndpoint)
	setString("ELASTIC_EMAIL_API_KEY", &config.MailAPIKey)
	setString("MAIL_FROM", &config.MailFrom)
	setString("S3_ROOT_USER", &config.S3RootUser)
	setString("S3_ROOT_PASSWORD", &config.S3RootPassword)
	setString("S3_BUCKET", &config.S3Bucket)
	setString("S3_REGION", &config.S3Region)
	setString("S3_BASE_ENDPOINT", &config.S3BaseEndpoint)
}
