package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "127.0.0.1", cfg.HTTP.Host)
	assert.Equal(t, "8470", cfg.HTTP.Port)
	assert.Equal(t, "127.0.0.1:8470", cfg.HTTPAddr())

	assert.Equal(t, "127.0.0.1:8471", cfg.GRPC.Address)
	assert.True(t, cfg.GRPC.Enabled)

	assert.Equal(t, DefaultPolicyFile, cfg.Policy.File)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	assert.Equal(t, 200, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 400, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.Enabled)

	assert.Equal(t, 256, cfg.Notify.QueueSize)
	assert.Empty(t, cfg.Notify.WebhookURL)
	assert.NoError(t, cfg.Validate())
}

func TestLoadMatchesDefault(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"MODEMANAGER_HTTP_HOST":          "0.0.0.0",
		"MODEMANAGER_HTTP_PORT":          "9000",
		"MODEMANAGER_GRPC_ADDR":          "unix:///run/modemanager.sock",
		"MODEMANAGER_GRPC_ENABLED":       "false",
		"MODEMANAGER_POLICY_FILE":        "/etc/mode/policy.yaml",
		"MODEMANAGER_LOG_LEVEL":          "debug",
		"MODEMANAGER_LOG_DEV":            "true",
		"MODEMANAGER_RATE_LIMIT_RPS":     "10",
		"MODEMANAGER_RATE_LIMIT_BURST":   "20",
		"MODEMANAGER_RATE_LIMIT_ENABLED": "false",
		"MODEMANAGER_NOTIFY_QUEUE":       "16",
		"MODEMANAGER_WEBHOOK_URL":        "http://hmi.local/notify",
		"MODEMANAGER_WEBHOOK_TIMEOUT":    "500ms",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", cfg.HTTPAddr())
	assert.Equal(t, "unix:///run/modemanager.sock", cfg.GRPC.Address)
	assert.False(t, cfg.GRPC.Enabled)
	assert.Equal(t, "/etc/mode/policy.yaml", cfg.Policy.File)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	assert.Equal(t, 10, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 20, cfg.RateLimit.Burst)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 16, cfg.Notify.QueueSize)
	assert.Equal(t, "http://hmi.local/notify", cfg.Notify.WebhookURL)
	assert.Equal(t, 500*time.Millisecond, cfg.Notify.WebhookTimeout)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("MODEMANAGER_NOTIFY_QUEUE", "0")

	_, err := Load()
	assert.Error(t, err)

	cfg := LoadOrDefault()
	assert.Equal(t, 256, cfg.Notify.QueueSize)
}

func TestLoadRejectsUnparsable(t *testing.T) {
	t.Setenv("MODEMANAGER_GRPC_ENABLED", "maybe")

	_, err := Load()
	assert.Error(t, err)
}
