package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_STATE_HOME", "")
	t.Setenv("MYBUDGET_CONFIG", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8080/api/v1", cfg.API.Endpoint())
	require.Equal(t, 50, cfg.API.PerPage)
	require.Equal(t, 15*time.Second, cfg.API.Timeout)
	require.Equal(t, time.Second, cfg.UI.FormCloseDelay)
	require.Equal(t, "02/01/2006", cfg.UI.DateFormat)
	require.Equal(t, filepath.Join(home, ".local", "state", "mybudget", "mybudget.log"), cfg.Log.Path)
	require.Equal(t, "mybudget.changes", cfg.AMQP.Exchange)
	require.Empty(t, cfg.AMQP.URL)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	path := filepath.Join(dir, "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[api]
base_url = "https://budget.example.com/api/"
per_page = 20
timeout = "3s"

[ui]
form_close_delay = "250ms"
`), 0o600))
	t.Setenv("MYBUDGET_CONFIG", path)
	t.Setenv("MYBUDGET_API_VERSION", "v2")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "https://budget.example.com/api/v2", cfg.API.Endpoint())
	require.Equal(t, 20, cfg.API.PerPage)
	require.Equal(t, 3*time.Second, cfg.API.Timeout)
	require.Equal(t, 250*time.Millisecond, cfg.UI.FormCloseDelay)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("MYBUDGET_CONFIG", filepath.Join(t.TempDir(), "nope.toml"))
	_, err := Load()
	require.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	path := filepath.Join(dir, "cfg", "config.toml")
	t.Setenv("MYBUDGET_CONFIG", path)

	_, err := Load()
	require.Error(t, err) // file does not exist yet and the path is explicit

	t.Setenv("MYBUDGET_CONFIG", "")
	cfg, err := Load()
	require.NoError(t, err)
	cfg.API.PerPage = 25
	cfg.UI.FormCloseDelay = 2 * time.Second

	t.Setenv("MYBUDGET_CONFIG", path)
	require.NoError(t, Save(cfg))

	got, err := Load()
	require.NoError(t, err)
	require.Equal(t, 25, got.API.PerPage)
	require.Equal(t, 2*time.Second, got.UI.FormCloseDelay)
}

func TestEndpointWithoutVersion(t *testing.T) {
	c := APIConfig{BaseURL: "http://x/api/"}
	require.Equal(t, "http://x/api", c.Endpoint())
}
