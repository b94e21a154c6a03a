package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	config := NewDefaultConfig()

	assert.Equal(t, 8090, config.Server.Port)
	assert.Equal(t, "localhost", config.Server.Host)
	assert.Equal(t, "info", config.Logging.Level)
	assert.Equal(t, "read,write", config.OAuth.Scopes)
	assert.Equal(t, "http://127.0.0.1:8976/callback", config.OAuth.RedirectURL())
	assert.Equal(t, "127.0.0.1:8976", config.OAuth.CallbackAddr())
	assert.Equal(t, "https://api.linear.app/graphql", config.Tracker.GraphQLURL)
	assert.Equal(t, 30*time.Second, config.Extractor.RequestTimeout)
}

func TestLoadFromFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clipper.toml")
	content := `
[server]
port = 9000

[oauth]
client_id = "abc123"
callback_port = 9100

[extractor]
enable_javascript = true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	config, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, config.Server.Port)
	assert.Equal(t, "abc123", config.OAuth.ClientID)
	assert.Equal(t, "http://127.0.0.1:9100/callback", config.OAuth.RedirectURL())
	assert.True(t, config.Extractor.EnableJavaScript)
	// Untouched values keep their defaults
	assert.Equal(t, "localhost", config.Server.Host)
	assert.Equal(t, "https://linear.app/oauth/authorize", config.OAuth.AuthorizeURL)
}

func TestLoadFromFileMissingFile(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/clipper.toml")
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CLIPPER_SERVER_PORT", "9999")
	t.Setenv("CLIPPER_OAUTH_CLIENT_ID", "env-client")
	t.Setenv("CLIPPER_LOG_OUTPUT", "stdout, file")
	t.Setenv("CLIPPER_EXTRACTOR_REQUEST_TIMEOUT", "45s")

	config, err := LoadFromFiles()
	require.NoError(t, err)

	assert.Equal(t, 9999, config.Server.Port)
	assert.Equal(t, "env-client", config.OAuth.ClientID)
	assert.Equal(t, []string{"stdout", "file"}, config.Logging.Output)
	assert.Equal(t, 45*time.Second, config.Extractor.RequestTimeout)
}

func TestFlagOverridesWin(t *testing.T) {
	t.Setenv("CLIPPER_SERVER_PORT", "9999")

	config, err := LoadFromFiles()
	require.NoError(t, err)

	ApplyFlagOverrides(config, 7000, "0.0.0.0")
	assert.Equal(t, 7000, config.Server.Port)
	assert.Equal(t, "0.0.0.0", config.Server.Host)

	// Zero values leave the config untouched
	ApplyFlagOverrides(config, 0, "")
	assert.Equal(t, 7000, config.Server.Port)
	assert.Equal(t, "0.0.0.0", config.Server.Host)
}

func TestValidate(t *testing.T) {
	config := NewDefaultConfig()
	config.OAuth.ClientID = "abc123"
	assert.NoError(t, config.Validate())

	missing := NewDefaultConfig()
	assert.Error(t, missing.Validate())

	badPort := NewDefaultConfig()
	badPort.OAuth.ClientID = "abc123"
	badPort.Server.Port = -1
	assert.Error(t, badPort.Validate())

	noTracker := NewDefaultConfig()
	noTracker.OAuth.ClientID = "abc123"
	noTracker.Tracker.GraphQLURL = ""
	assert.Error(t, noTracker.Validate())
}
