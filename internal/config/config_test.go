package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal string
		expected   string
	}{
		{"uses env value", "REMINDCHAT_TEST_VAR_1", "hello", "default", "hello"},
		{"uses default when empty", "REMINDCHAT_TEST_VAR_2", "", "default", "default"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				t.Setenv(tc.key, tc.envValue)
			}
			assert.Equal(t, tc.expected, getEnv(tc.key, tc.defaultVal))
		})
	}
}

func TestGetEnvMillis(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		expected time.Duration
	}{
		{"parses milliseconds", "250", 250 * time.Millisecond},
		{"zero is kept", "0", 0},
		{"uses default for empty", "", time.Second},
		{"uses default for non-numeric", "abc", time.Second},
		{"uses default for negative", "-5", time.Second},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				t.Setenv("REMINDCHAT_TEST_MS", tc.envValue)
			}
			assert.Equal(t, tc.expected, getEnvMillis("REMINDCHAT_TEST_MS", time.Second))
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("REMINDCHAT_CONFIG", "")

	cfg, err := Load("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, DefaultServerURL, cfg.ServerURL)
	assert.Equal(t, []string{"websocket", "polling", "flashsocket"}, cfg.Transports)
	assert.Equal(t, 5000*time.Millisecond, cfg.BannerDuration)
	assert.Equal(t, BannerPolicyKeep, cfg.BannerPolicy)
	assert.Equal(t, DefaultRequestTimeout, cfg.RequestTimeout)
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "remindchat.yaml")
	content := `
server_url: ${REMINDCHAT_TEST_HOST}/
transports: [polling]
banner_duration: 2s
banner_policy: reset
request_timeout: 0s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("REMINDCHAT_TEST_HOST", "http://bot.example.com")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("BANNER_DURATION_MS", "1500")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "http://bot.example.com", cfg.ServerURL)
	assert.Equal(t, []string{"polling"}, cfg.Transports)
	assert.Equal(t, 1500*time.Millisecond, cfg.BannerDuration)
	assert.Equal(t, BannerPolicyReset, cfg.BannerPolicy)
	assert.Equal(t, time.Duration(0), cfg.RequestTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadTransportsFromEnv(t *testing.T) {
	t.Setenv("REMINDCHAT_CONFIG", "")
	t.Setenv("PUSH_TRANSPORTS", " polling , websocket,")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{"polling", "websocket"}, cfg.Transports)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad scheme", func(c *Config) { c.ServerURL = "ftp://example.com" }},
		{"missing host", func(c *Config) { c.ServerURL = "http://" }},
		{"negative timeout", func(c *Config) { c.RequestTimeout = -time.Second }},
		{"no transports", func(c *Config) { c.Transports = nil }},
		{"unknown transport", func(c *Config) { c.Transports = []string{"carrier-pigeon"} }},
		{"zero banner", func(c *Config) { c.BannerDuration = 0 }},
		{"bad policy", func(c *Config) { c.BannerPolicy = "sometimes" }},
		{"bad reconnect", func(c *Config) { c.ReconnectMaxDelay = time.Millisecond }},
		{"bad poll interval", func(c *Config) { c.PollInterval = 0 }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
	}

	require.NoError(t, Default().Validate())

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestPushEndpoint(t *testing.T) {
	cfg := Default()
	cfg.ServerURL = "https://bot.example.com/api"
	endpoint, err := cfg.PushEndpoint()
	require.NoError(t, err)
	assert.Equal(t, "wss://bot.example.com/api/push", endpoint)
	assert.Equal(t, "https://bot.example.com/api/push/poll", cfg.PollEndpoint())

	cfg.ServerURL = "http://localhost:5000"
	endpoint, err = cfg.PushEndpoint()
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:5000/push", endpoint)

	cfg.PushURL = "ws://push.example.com/socket"
	endpoint, err = cfg.PushEndpoint()
	require.NoError(t, err)
	assert.Equal(t, "ws://push.example.com/socket", endpoint)
}

func TestParseLogLevel(t *testing.T) {
	level, err := ParseLogLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	_, err = ParseLogLevel("verbose")
	assert.Error(t, err)
}
