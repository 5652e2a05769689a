package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
env: dev
api:
  base_url: "https://notes.example.com/api"
  timeout: 3s
  rate_limit: 2.5
  burst: 4
session:
  backend: redis
  key: "custom:key"
redis_connection:
  addressredis: "localhost:6380"
  password: "redis_pass"
  user: "redis_user"
  db: 1
  max_retries: 3
  dial_timeout: 5s
  timeoutredis: 10s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, EnvDev, cfg.Env)
	assert.Equal(t, "https://notes.example.com/api", cfg.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, 2.5, cfg.RateLimit)
	assert.Equal(t, 4, cfg.Burst)
	assert.Equal(t, SessionRedis, cfg.Backend)
	assert.Equal(t, "custom:key", cfg.Key)
	assert.Equal(t, "localhost:6380", cfg.AddressRedis)
	assert.Equal(t, "redis_pass", cfg.Password)
	assert.Equal(t, "redis_user", cfg.User)
	assert.Equal(t, 1, cfg.DB)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 5*time.Second, cfg.DialTimeout)
	assert.Equal(t, 10*time.Second, cfg.TimeoutRedis)
}

func TestLoad_DefaultValues(t *testing.T) {
	path := writeConfig(t, `
env: local
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5000/api", cfg.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, SessionFile, cfg.Backend)
	assert.Equal(t, "notes:session:token", cfg.Key)
	assert.Equal(t, "", cfg.FilePath)
}

func TestLoad_EnvOnly(t *testing.T) {
	t.Setenv("NOTES_API_URL", "http://api.test")
	t.Setenv("NOTES_SESSION_BACKEND", SessionMemory)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://api.test", cfg.BaseURL)
	assert.Equal(t, SessionMemory, cfg.Backend)
}

func TestLoad_UnknownBackend(t *testing.T) {
	path := writeConfig(t, `
session:
  backend: floppy
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_Checkout(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
		gateway string
	}{
		{name: "default terminal", content: "env: local\n", gateway: GatewayTerminal},
		{name: "simulated with secret", content: "checkout:\n  gateway: simulated\n  secret: s3cret\n", gateway: GatewaySimulated},
		{name: "simulated without secret", content: "checkout:\n  gateway: simulated\n", wantErr: true},
		{name: "unknown gateway", content: "checkout:\n  gateway: paypal\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.content))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.gateway, cfg.Gateway)
			assert.Equal(t, "127.0.0.1:5000", cfg.Addr)
		})
	}
}
