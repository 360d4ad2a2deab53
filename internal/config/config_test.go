package config

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 1280, cfg.Window.Width)
	assert.Equal(t, 720, cfg.Window.Height)
	assert.False(t, cfg.Render.Wireframe)
	assert.Equal(t, 4, cfg.Render.MSAA)
	assert.InDelta(t, 0.01, cfg.Camera.Sensitivity, 1e-9)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func TestParseFlags(t *testing.T) {
	f, err := ParseFlags([]string{"--wireframe", "--width", "800", "assets/box.glb"}, io.Discard)
	require.NoError(t, err)

	assert.True(t, f.Wireframe)
	assert.Equal(t, 800, f.Width)
	assert.Equal(t, "assets/box.glb", f.Path)
}

func TestParseFlagsLineAlias(t *testing.T) {
	f, err := ParseFlags([]string{"-line", "box.gltf"}, io.Discard)
	require.NoError(t, err)
	assert.True(t, f.Wireframe)
}

func TestParseFlagsRequiresPath(t *testing.T) {
	_, err := ParseFlags([]string{"--wireframe"}, io.Discard)
	assert.ErrorIs(t, err, ErrMissingPath)
}

func TestLoadPriority(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yamlContent := `
window:
  width: 1024
  height: 768
render:
  wireframe: false
  msaa: 1
logging:
  level: warn
`
	require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0o644))

	cfg, err := Load(&Flags{ConfigPath: path, Wireframe: true, Height: 600, Path: "box.glb"})
	require.NoError(t, err)

	// file overrides defaults
	assert.Equal(t, 1024, cfg.Window.Width)
	assert.Equal(t, 1, cfg.Render.MSAA)
	assert.Equal(t, "warn", cfg.Logging.Level)
	// flags override file
	assert.Equal(t, 600, cfg.Window.Height)
	assert.True(t, cfg.Render.Wireframe)
	assert.Equal(t, "box.glb", cfg.ModelPath)
	// untouched defaults survive
	assert.Equal(t, "oxy-viewer", cfg.Window.Title)
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("render:\n  msaa: 3\n"), 0o644))

	_, err := Load(&Flags{ConfigPath: path, Path: "x.glb"})
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(&Flags{ConfigPath: filepath.Join(t.TempDir(), "nope.yaml")})
	assert.Error(t, err)
}

func TestLoadWindowLimits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("window:\n  min_width: 640\n  max_width: 1920\n  max_height: 1080\n"), 0o644))

	cfg, err := Load(&Flags{ConfigPath: path, Path: "x.glb"})
	require.NoError(t, err)
	assert.Equal(t, 640, cfg.Window.MinWidth)
	assert.Equal(t, 240, cfg.Window.MinHeight)
	assert.Equal(t, 1920, cfg.Window.MaxWidth)
	assert.Equal(t, 1080, cfg.Window.MaxHeight)

	require.NoError(t, os.WriteFile(path, []byte("window:\n  min_width: 800\n  max_width: 400\n"), 0o644))
	_, err = Load(&Flags{ConfigPath: path, Path: "x.glb"})
	assert.Error(t, err)
}
