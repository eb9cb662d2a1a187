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

	path := filepath.Join(t.TempDir(), "tripflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: debug
  format: json
model:
  provider: anthropic
  id: claude-3-5-sonnet-20241022
engine:
  max_parallel_steps: 2
  run_timeout: 5m
store:
  driver: sqlite
  path: /tmp/runs.db
server:
  addr: ":9090"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "anthropic", cfg.Model.Provider)
	assert.Equal(t, "claude-3-5-sonnet-20241022", cfg.Model.ID)
	assert.Equal(t, 2, cfg.Engine.MaxParallelSteps)
	assert.Equal(t, 5*time.Minute, cfg.Engine.RunTimeout.Std())
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "/tmp/runs.db", cfg.Store.Path)
	assert.Equal(t, ":9090", cfg.Server.Addr)
}

func TestLoadKeepsDefaultsForOmittedFields(t *testing.T) {
	path := writeConfig(t, `
model:
  provider: openai
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.Engine.MaxParallelSteps, cfg.Engine.MaxParallelSteps)
	assert.Equal(t, def.Engine.RunTimeout, cfg.Engine.RunTimeout)
	assert.Equal(t, def.Store.Driver, cfg.Store.Driver)
	assert.Equal(t, def.Server.Addr, cfg.Server.Addr)
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("TRIPFLOW_TEST_KEY", "secret-from-env")

	path := writeConfig(t, `
model:
  provider: openai
  api_key: ${TRIPFLOW_TEST_KEY}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "secret-from-env", cfg.Model.APIKey)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	path := writeConfig(t, `
store:
  driver: redis
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown driver")
}

func TestLoadRejectsSqliteWithoutPath(t *testing.T) {
	path := writeConfig(t, `
store:
  driver: sqlite
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires a path")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
