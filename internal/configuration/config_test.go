package configuration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("YTDLP_TIMEOUT", "")
	t.Setenv("MAX_FILE_SIZE", "")

	cfg := Load()

	assert.Equal(t, "5000", cfg.Server.Port)
	assert.Equal(t, 5*time.Minute, cfg.Downloads.Timeout)
	assert.Equal(t, int64(300*1024*1024), cfg.Downloads.MaxFileSize)
	assert.Equal(t, 24*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, 20, cfg.Database.MaxConns)
}

func TestValidateProductionRequiresSecret(t *testing.T) {
	t.Setenv("API_SECRET_KEY", "")
	t.Setenv("DEBUG", "false")
	t.Setenv("DB_PASSWORD", "pw")

	cfg := Load()
	err := cfg.Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "API_SECRET_KEY")
}

func TestValidateDebugGeneratesSecret(t *testing.T) {
	t.Setenv("API_SECRET_KEY", "")
	t.Setenv("DEBUG", "true")
	t.Setenv("DB_PASSWORD", "pw")

	cfg := Load()
	require.NoError(t, cfg.Validate())

	assert.Len(t, cfg.Auth.APISecretKey, 64)
	assert.False(t, cfg.Auth.SecretWasGiven)
}

func TestValidateReportsAllProblems(t *testing.T) {
	t.Setenv("API_SECRET_KEY", "s")
	t.Setenv("DB_PASSWORD", "")
	t.Setenv("PORT", "70000")

	cfg := Load()
	err := cfg.Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_PASSWORD is required")
	assert.Contains(t, err.Error(), "PORT must be between")
}

func TestConnectionString(t *testing.T) {
	c := DatabaseConfig{User: "u", Password: "p", Host: "h", Port: "5432", DBName: "d", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:5432/d?sslmode=disable", c.ConnectionString())
}
