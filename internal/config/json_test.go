package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSONFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestParseJSON_Success(t *testing.T) {
	// Arrange
	p := writeJSONFile(t, `{
		"server": {
			"address": "127.0.0.1:7000",
			"allow_list_file": "/etc/allow",
			"poll_interval": "200ms",
			"welcome_message": "hey",
			"max_login_attempts": 4
		},
		"storage": { "passwd_file": "/var/passwd" },
		"log": { "file": "/var/log/gk.log" }
	}`)

	// Act
	cfg, err := parseJSON(p)

	// Assert
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "127.0.0.1:7000", cfg.Server.Address)
	assert.Equal(t, "/etc/allow", cfg.Server.AllowListFile)
	assert.Equal(t, 200*time.Millisecond, cfg.Server.PollInterval)
	assert.Equal(t, "hey", cfg.Server.WelcomeMessage)
	assert.Equal(t, 4, cfg.Server.MaxLoginAttempts)
	assert.Equal(t, "/var/passwd", cfg.Storage.PasswdFile)
	assert.Equal(t, "/var/log/gk.log", cfg.Log.File)
	assert.Empty(t, cfg.JSONFilePath)
}

func TestParseJSON_NumericDuration(t *testing.T) {
	cfg, err := parseJSON(writeJSONFile(t, `{"server": {"poll_interval": 1000000}}`))
	require.NoError(t, err)
	assert.Equal(t, time.Millisecond, cfg.Server.PollInterval)
}

func TestParseJSON_FileNotFound(t *testing.T) {
	cfg, err := parseJSON(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "error reading a json file")
}

func TestParseJSON_InvalidJSON(t *testing.T) {
	cfg, err := parseJSON(writeJSONFile(t, `{"server": `))
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "error decoding json configs")
}

func TestParseJSON_InvalidDuration(t *testing.T) {
	for _, body := range []string{
		`{"server": {"poll_interval": "later"}}`,
		`{"server": {"poll_interval": true}}`,
	} {
		_, err := parseJSON(writeJSONFile(t, body))
		assert.Error(t, err, body)
	}
}

func TestParseJSON_EmptyObject(t *testing.T) {
	cfg, err := parseJSON(writeJSONFile(t, `{}`))
	require.NoError(t, err)
	assert.Equal(t, &StructuredConfig{}, cfg)
}

func TestDuration_MarshalJSON(t *testing.T) {
	b, err := Duration(150 * time.Millisecond).MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"150ms"`, string(b))
}
