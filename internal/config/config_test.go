package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"APP_ENV", "PORT", "LOG_LEVEL", "LOG_FORMAT", "WORDS_FILE", "DB_PATH",
	"JWT_SECRET", "CLIENT_ORIGIN", "DAILY_SALT", "WORKERS", "MAX_ROWS", "MAX_VOCABULARY", "TOKEN_TTL_HOURS",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "solver.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "5175", cfg.Port)
	assert.Equal(t, 6, cfg.MaxRows)
	assert.Equal(t, 15000, cfg.MaxVocabulary)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, devSecret, cfg.JWTSecret)
	assert.GreaterOrEqual(t, cfg.Workers, 1)
	assert.False(t, cfg.Production())
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "5175", cfg.Port)
}

func TestLoadYAMLThenEnv(t *testing.T) {
	clearEnv(t)
	path := writeYAML(t, `
port: "9000"
log_format: pretty
workers: 3
max_rows: 8
max_vocabulary: 2000
token_ttl: 2h
words_file: /tmp/pl.txt
`)
	t.Setenv("MAX_ROWS", "10")
	t.Setenv("TOKEN_TTL_HOURS", "5")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.True(t, cfg.Pretty())
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, 10, cfg.MaxRows, "env beats file")
	assert.Equal(t, 2000, cfg.MaxVocabulary)
	assert.Equal(t, 5*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "/tmp/pl.txt", cfg.WordsFile)
}

func TestLoadRejectsBadValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("WORKERS", "many")
	_, err := Load("")
	assert.ErrorContains(t, err, "WORKERS")

	clearEnv(t)
	_, err = Load(writeYAML(t, "workers: [1, 2"))
	assert.ErrorContains(t, err, "parse config")
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Empty(t, cfg.JWTSecret, "no dev fallback in production")
	assert.ErrorContains(t, cfg.Validate(), "JWT_SECRET")

	cfg = Default()
	cfg.JWTSecret = "s"
	cfg.Workers = 0
	cfg.MaxRows = -1
	cfg.MaxVocabulary = 0
	err = cfg.Validate()
	assert.ErrorContains(t, err, "max_vocabulary")
	assert.ErrorContains(t, err, "workers")
	assert.ErrorContains(t, err, "max_rows")
}
