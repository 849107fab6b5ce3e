package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)

	assert.Equal(t, "8080", c.ApiPort)
	assert.Equal(t, "sqlite3", c.Database)
	assert.Equal(t, "instagram", c.Webhook.Object)
	assert.Equal(t, "v22.0", c.Graph.ApiVersion)
	assert.Equal(t, 10*time.Second, c.GraphTimeout())
	assert.Equal(t, 4096, c.Dedup.MaxEntries)
	assert.Equal(t, 2*time.Second, c.EnqueueWait())
}

func TestLoad_JSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{
		"api_port": "9000",
		"database": "postgres",
		"webhook": {"verify_token": "s3cret", "app_secret": "app"},
		"graph": {"api_version": "v21.0", "timeout_seconds": 3}
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9000", c.ApiPort)
	assert.Equal(t, "postgres", c.Database)
	assert.Equal(t, "s3cret", c.Webhook.VerifyToken)
	assert.Equal(t, "app", c.Webhook.AppSecret)
	assert.Equal(t, "v21.0", c.Graph.ApiVersion)
	assert.Equal(t, 3*time.Second, c.GraphTimeout())
	assert.NoError(t, c.Validate())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("webhook:\n  verify_token: from-file\n"), 0o644))

	t.Setenv("COMMENTFLOW_WEBHOOK__VERIFY_TOKEN", "from-env")
	t.Setenv("COMMENTFLOW_API_PORT", "7070")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", c.Webhook.VerifyToken)
	assert.Equal(t, "7070", c.ApiPort)
}

func TestValidate(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Error(t, c.Validate(), "verify token is required")

	c.Webhook.VerifyToken = "x"
	c.Database = "mysql"
	assert.Error(t, c.Validate())

	c.Database = "sqlite3"
	assert.NoError(t, c.Validate())
}
