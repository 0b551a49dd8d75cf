package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "anon", cfg.OwnerKey)
	assert.Empty(t, cfg.AgentBaseURL)
}

func TestLoadConfig_MissingFileIsNotAnError(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadConfig_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wayfare.yaml")
	content := `
logLevel: warn
agentBaseURL: https://agent.example.com
agentAPIKey: file-key
storeBaseURL: https://store.example.com
ownerKey: user-42
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "https://agent.example.com", cfg.AgentBaseURL)
	assert.Equal(t, "file-key", cfg.AgentAPIKey)
	assert.Equal(t, "https://store.example.com", cfg.StoreBaseURL)
	assert.Equal(t, "user-42", cfg.OwnerKey)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wayfare.yaml")
	require.NoError(t, os.WriteFile(path, []byte("agentAPIKey: file-key\n"), 0644))

	t.Setenv("AGENT_API_KEY", "env-key")
	t.Setenv("AGENT_BASE_URL", "https://env.example.com")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.AgentAPIKey)
	assert.Equal(t, "https://env.example.com", cfg.AgentBaseURL)
}

func TestLoadConfig_DebugFlagOverridesLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("DEBUG", "1")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wayfare.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logLevel: [unterminated"), 0644))

	_, err := LoadConfig(path)
	require.Error(t, err)

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "file", cfgErr.Field)
}
