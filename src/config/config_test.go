package config

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Ctrl+Alt+S", cfg.Hotkey)
	assert.True(t, cfg.EnableHotkey)
	assert.True(t, cfg.EnableTray)
	assert.Equal(t, 320, cfg.LauncherWidth)
	assert.Equal(t, 160, cfg.LauncherHeight)
	assert.Equal(t, 1.0, cfg.OutlineWidth)
	assert.Equal(t, color.RGBA{R: 255, A: 255}, cfg.Outline())
	assert.Equal(t, FormatJSON, cfg.OutputFormat)
	assert.Equal(t, []string{TargetStdout}, cfg.Targets)
	assert.Equal(t, 5, cfg.DeliveryDeadline)
	assert.False(t, cfg.StrictPressOrigin)
	assert.Empty(t, cfg.ConfigPath)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOTKEY", "Ctrl+Shift+T")
	t.Setenv("ENABLE_FILE_LOGGING", "true")
	t.Setenv("OUTLINE_COLOR", "#00ff00")
	t.Setenv("TARGETS", "stdout, Clipboard")
	t.Setenv("STRICT_PRESS_ORIGIN", "true")
	t.Setenv("WORKERS", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Ctrl+Shift+T", cfg.Hotkey)
	assert.True(t, cfg.EnableFileLogging)
	assert.Equal(t, color.RGBA{G: 255, A: 255}, cfg.Outline())
	assert.Equal(t, []string{TargetStdout, TargetClipboard}, cfg.Targets)
	assert.True(t, cfg.HasTarget(TargetClipboard))
	assert.False(t, cfg.HasTarget(TargetNATS))
	assert.True(t, cfg.StrictPressOrigin)
	assert.Equal(t, 3, cfg.Workers)
}

func TestLoadFromConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	yml := []byte("output_format: yaml\ntargets:\n  - nats\n  - stdout\nnats_url: nats://127.0.0.1:4222\nlauncher_width: 400\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), yml, 0600))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ConfigFileName, cfg.ConfigPath)
	assert.Equal(t, FormatYAML, cfg.OutputFormat)
	assert.Equal(t, []string{TargetNATS, TargetStdout}, cfg.Targets)
	assert.Equal(t, "nats://127.0.0.1:4222", cfg.NATSURL)
	assert.Equal(t, 400, cfg.LauncherWidth)
}

func TestLoadOptionsOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOTKEY", "Ctrl+Shift+T")

	cfg, err := LoadWithOptions(LoadOptions{
		HotkeyOverride:       "Alt+F1",
		OutputFormatOverride: "TEXT",
		DisableTray:          true,
	})
	require.NoError(t, err)

	assert.Equal(t, "Alt+F1", cfg.Hotkey)
	assert.Equal(t, FormatText, cfg.OutputFormat)
	assert.False(t, cfg.EnableTray)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Run("format", func(t *testing.T) {
		t.Setenv("OUTPUT_FORMAT", "xml")
		_, err := Load()
		assert.ErrorIs(t, err, ErrInvalidFormat)
	})
	t.Run("target", func(t *testing.T) {
		t.Setenv("TARGETS", "printer")
		_, err := Load()
		assert.ErrorIs(t, err, ErrInvalidTarget)
	})
	t.Run("color", func(t *testing.T) {
		t.Setenv("OUTLINE_COLOR", "reddish")
		_, err := Load()
		assert.ErrorIs(t, err, ErrInvalidColor)
	})
}

func TestDotenvFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	envFile := filepath.Join(dir, "custom.env")
	require.NoError(t, os.WriteFile(envFile, []byte("LAUNCHER_HEIGHT=222\n"), 0600))
	t.Setenv(EnvFileEnvVar, envFile)
	t.Cleanup(func() { os.Unsetenv("LAUNCHER_HEIGHT") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 222, cfg.LauncherHeight)
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("ff8800")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 255, G: 136, A: 255}, c)

	c, err = ParseColor("#fff")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, c)
}
