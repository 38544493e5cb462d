package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "does-not-exist.toml")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "docuchat", cfg.App.Name)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTPAddr())
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes())
	assert.False(t, cfg.ChatEnabled(), "no API key means the chat surface is off")
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "does-not-exist.toml")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("LLM_API_KEY", "sk-test")
	t.Setenv("LLM_TEMPERATURE", "0.4")
	t.Setenv("UPLOAD_MAX_FILE_SIZE_MB", "2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.App.Port)
	assert.Equal(t, 0.4, cfg.LLM.Temperature)
	assert.Equal(t, int64(2<<20), cfg.MaxUploadBytes())
	assert.True(t, cfg.ChatEnabled())
}

func TestLoadBadEnvFallsBack(t *testing.T) {
	t.Setenv("CONFIG_FILE", "does-not-exist.toml")
	t.Setenv("APP_PORT", "not-a-number")
	t.Setenv("LLM_TEMPERATURE", "warm")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, 0.0, cfg.LLM.Temperature)
}

func TestMySQLDSN(t *testing.T) {
	t.Setenv("CONFIG_FILE", "does-not-exist.toml")
	t.Setenv("MYSQL_USER", "chat")
	t.Setenv("MYSQL_PASSWORD", "secret")
	t.Setenv("MYSQL_DB", "chatdb")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "chat:secret@tcp(127.0.0.1:3306)/chatdb?parseTime=true&loc=Local&charset=utf8mb4", cfg.MySQLDSN())
}
