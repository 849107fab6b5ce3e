package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withFlags(t *testing.T, config, env string) {
	t.Helper()
	prevCfg, prevEnv := cfgFile, envFile
	cfgFile, envFile = config, env
	t.Cleanup(func() { cfgFile, envFile = prevCfg, prevEnv })
}

func TestLoadConfig_ReadsDotenvOverrides(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("COMMENTFLOW_WEBHOOK__VERIFY_TOKEN=from-dotenv\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("COMMENTFLOW_WEBHOOK__VERIFY_TOKEN") })

	withFlags(t, filepath.Join(dir, "missing.json"), envPath)

	cfg, logger, err := loadConfig()
	require.NoError(t, err)
	assert.NotNil(t, logger)
	assert.Equal(t, "from-dotenv", cfg.Webhook.VerifyToken)
	assert.Equal(t, "8080", cfg.ApiPort)
}

func TestLoadConfig_MissingDotenvIsIgnored(t *testing.T) {
	dir := t.TempDir()
	withFlags(t, filepath.Join(dir, "missing.json"), filepath.Join(dir, "none.env"))

	_, _, err := loadConfig()
	assert.NoError(t, err)
}

func TestSubscribe_RequiresTenant(t *testing.T) {
	prev := subscribeTenant
	subscribeTenant = ""
	t.Cleanup(func() { subscribeTenant = prev })

	err := subscribeCmd.RunE(subscribeCmd, nil)
	assert.EqualError(t, err, "--tenant is required")
}

func TestRootCommand_RegistersSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["migrate"])
	assert.True(t, names["subscribe"])
}
