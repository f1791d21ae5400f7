package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
	require.Equal(t, "sqlite", cfg.Store.Driver)
	require.Equal(t, "learner-hours", cfg.Store.Key)
	require.Equal(t, 8080, cfg.Server.Port)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
server:
  port: 9000
store:
  driver: bbolt
  bolt_path: /tmp/hours.bolt
offline:
  version: v7
  manifest: ["/", "/app.js"]
auth:
  enabled: true
  token: from-file
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	t.Setenv("LEARNER_HOURS_CONFIG_PATH", path)
	t.Setenv("LEARNER_HOURS_SERVER_PORT", "9100")
	t.Setenv("LEARNER_HOURS_AUTH_TOKEN", "from-env")
	t.Setenv("LEARNER_HOURS_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 9100, cfg.Server.Port)
	require.Equal(t, "0.0.0.0", cfg.Server.Host)
	require.Equal(t, "bbolt", cfg.Store.Driver)
	require.Equal(t, "/tmp/hours.bolt", cfg.Store.BoltPath)
	require.Equal(t, "v7", cfg.Offline.Version)
	require.Equal(t, []string{"/", "/app.js"}, cfg.Offline.Manifest)
	require.True(t, cfg.Auth.Enabled)
	require.Equal(t, "from-env", cfg.Auth.Token)
	require.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_EnvManifestList(t *testing.T) {
	t.Setenv("LEARNER_HOURS_OFFLINE_MANIFEST", "/,/style.css")
	t.Setenv("LEARNER_HOURS_STORE_DRIVER", "memory")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, []string{"/", "/style.css"}, cfg.Offline.Manifest)
	require.Equal(t, "memory", cfg.Store.Driver)
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("LEARNER_HOURS_SERVER_PORT", "not-a-number")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("LEARNER_HOURS_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	require.ErrorContains(t, err, "read config file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"unknown driver", func(c *Config) { c.Store.Driver = "mongo" }, "unknown store driver"},
		{"unknown mode", func(c *Config) { c.Transport.Mode = "grpc" }, "unknown transport mode"},
		{"empty key", func(c *Config) { c.Store.Key = " " }, "store key is required"},
		{"auth without token", func(c *Config) { c.Auth.Enabled = true }, "auth token is required"},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }, "invalid server port"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			require.ErrorContains(t, cfg.Validate(), tt.errMsg)
		})
	}
	require.NoError(t, Default().Validate())
}
