package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks the override variables for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"DB_PATH", "STORE_DRIVER", "HTTP_ADDR", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "./data/giftwiser.db", cfg.Storage.Path)
	assert.Equal(t, "people", cfg.Storage.Key)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, 390.0, cfg.Ideas.ScreenWidth)
}

func TestLoad_YAML(t *testing.T) {
	clearEnv(t)
	t.Setenv("GIFTWISER_TEST_DIR", "/var/lib/giftwiser")

	path := writeFile(t, "config.yaml", `
storage:
  driver: file
  path: "${GIFTWISER_TEST_DIR}/data"
server:
  addr: "127.0.0.1:9090"
  shutdown_timeout: "3s"
logging:
  level: debug
ideas:
  screen_width: 428
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, DriverFile, cfg.Storage.Driver)
	assert.Equal(t, "/var/lib/giftwiser/data", cfg.Storage.Path)
	assert.Equal(t, "people", cfg.Storage.Key, "unset fields keep defaults")
	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Addr)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 428.0, cfg.Ideas.ScreenWidth)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoad_TOML(t *testing.T) {
	clearEnv(t)

	path := writeFile(t, "config.toml", `
[storage]
driver = "memory"
key = "gifts"

[metrics]
enabled = false
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, "gifts", cfg.Storage.Key)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_PATH", "/tmp/override.db")
	t.Setenv("HTTP_ADDR", ":7000")
	t.Setenv("LOG_LEVEL", "warn")

	path := writeFile(t, "config.yaml", `
storage:
  path: ./from-file.db
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/override.db", cfg.Storage.Path)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"unknown driver", "c.yaml", "storage:\n  driver: postgres\n"},
		{"missing path", "c.yaml", "storage:\n  driver: sqlite\n  path: \"\"\n"},
		{"empty key", "c.yaml", "storage:\n  key: \"\"\n"},
		{"bad level", "c.yaml", "logging:\n  level: loud\n"},
		{"bad duration", "c.yaml", "server:\n  shutdown_timeout: soon\n"},
		{"bad metrics path", "c.yaml", "metrics:\n  path: metrics\n"},
		{"zero screen width", "c.yaml", "ideas:\n  screen_width: 0\n"},
		{"invalid yaml", "c.yaml", "storage: [\n"},
		{"invalid toml", "c.toml", "[storage\n"},
		{"unknown extension", "c.json", "{}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.content))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("GW_A", "alpha")

	assert.Equal(t, "alpha/x", expandEnvVars("${GW_A}/x"))
	assert.Equal(t, "/x", expandEnvVars("${GW_UNSET_VARIABLE}/x"))
	assert.Equal(t, "$GW_A", expandEnvVars("$GW_A"))
}
