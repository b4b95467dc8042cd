package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "#main-content-area", cfg.Content.Region)
	assert.Equal(t, "XMLHttpRequest", cfg.Request.HeaderValue)
	assert.Equal(t, int64(5*1024*1024), cfg.Avatar.MaxBytes)
}

// TestParse_OverlaysDefaults verifies that raw YAML only replaces the keys it names.
func TestParse_OverlaysDefaults(t *testing.T) {
	raw := []byte(`
content:
  region: "#content"
request:
  timeout: 15s
`)
	cfg, err := Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, "#content", cfg.Content.Region)
	assert.Equal(t, 15*time.Second, cfg.Request.Timeout)
	assert.Equal(t, "a.ajax-link", cfg.Content.AjaxLink)
	assert.Equal(t, ".nav-item-dropdown", cfg.Dropdown.Container)
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestParse_RejectsBlankSelector(t *testing.T) {
	_, err := Parse([]byte("nav:\n  link: \"\"\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nav.link")
}

// TestLoad_FileAndEnv verifies file values are loaded and env overrides win.
func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "adminnav.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: \":9000\"\n  static_dir: web\n"), 0o644))

	t.Setenv("ADMINNAV_SERVER__ADDR", ":9100")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9100", cfg.Server.Addr)
	assert.Equal(t, "web", cfg.Server.StaticDir)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestValidate_NegativeTimeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Request.Timeout = -time.Second
	assert.Error(t, cfg.Validate())
}

// TestMarshal_RoundTrip verifies printed configuration parses back unchanged.
func TestMarshal_RoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Request.Timeout = 3 * time.Second
	cfg.Nav.Link = ".side-link"

	out, err := Marshal(cfg)
	require.NoError(t, err)

	back, err := Parse(out)
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}
