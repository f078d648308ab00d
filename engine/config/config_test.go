package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nucleo.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	require.Equal(t, "Nucleo App", c.AppName)
	require.Equal(t, uint32(1280), c.Window.Width)
	require.Equal(t, uint32(720), c.Window.Height)
	require.True(t, c.Renderer.Vsync)
	require.False(t, c.Renderer.Validation)
	require.Equal(t, [4]float32{0.1, 0.1, 0.12, 1.0}, c.Renderer.ClearColor)
	require.Equal(t, uint32(1024), c.Renderer.MaxDrawsPerFrame)
}

func TestLoadOverlaysFile(t *testing.T) {
	path := writeConfig(t, `
app_name = "Cube Spinner"

[window]
width = 800
height = 600

[renderer]
vsync = false
validation = true
clear_color = [0.0, 0.0, 0.0, 1.0]
max_draws_per_frame = 64
`)
	c, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "Cube Spinner", c.AppName)
	require.Equal(t, uint32(800), c.Window.Width)
	require.Equal(t, uint32(600), c.Window.Height)
	require.False(t, c.Renderer.Vsync)
	require.True(t, c.Renderer.Validation)
	require.Equal(t, [4]float32{0, 0, 0, 1}, c.Renderer.ClearColor)
	require.Equal(t, uint32(64), c.Renderer.MaxDrawsPerFrame)

	// Sections absent from the file keep their defaults.
	require.Equal(t, "assets", c.Assets.Dir)
}

func TestLoadRejectsBadTOML(t *testing.T) {
	path := writeConfig(t, `app_name = [broken`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsDegenerateWindow(t *testing.T) {
	path := writeConfig(t, `
[window]
width = 0
height = 720
`)
	_, err := Load(path)
	require.Error(t, err)
}
