package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseEnv_Overrides(t *testing.T) {
	t.Setenv("ADDRESS", ":9999")
	t.Setenv("DATABASE_DSN", "postgres://env/dsn")
	t.Setenv("SECRET_KEY", "env-secret")
	t.Setenv("ACCESS_TOKEN_VALIDITY", "2h")
	t.Setenv("ELASTIC_EMAIL_API_KEY", "env-key")

	c := &Config{}
	c.LoadDefaults()
	parseEnv(c)

	assert.Equal(t, ":9999", c.EndpointAddr)
	assert.Equal(t, "postgres://env/dsn", c.DatabaseDSN)
	assert.Equal(t, "env-secret", c.SecretKey)
	assert.Equal(t, 2*time.Hour, c.AccessTokenValidityDuration)
	assert.Equal(t, "env-key", c.MailAPIKey)
}

func TestParseEnv_KeepsDefaultsWhenUnset(t *testing.T) {
	c := &Config{}
	c.LoadDefaults()
	before := *c

	parseEnv(c)

	// Only fields present in the environment may change; in a clean test
	// environment the config should still carry its defaults.
	assert.Equal(t, before.ResetURLBase, c.ResetURLBase)
	assert.Equal(t, before.S3Bucket, c.S3Bucket)
}

func TestParseEnv_IgnoresMalformedDuration(t *testing.T) {
	t.Setenv("RESET_TOKEN_VALIDITY", "soon")

	c := &Config{}
	c.LoadDefaults()
	parseEnv(c)

	assert.Equal(t, 1*time.Hour, c.ResetTokenValidityDuration)
}
