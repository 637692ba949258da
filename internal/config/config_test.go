package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func files(t *testing.T, settings string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	chart := filepath.Join(dir, "notes.chart")
	require.NoError(t, os.WriteFile(chart, []byte("[Song]\n{\n}\n"), 0644))
	cfg := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte(settings), 0644))
	return chart, cfg
}

func TestFileSeedsDefaults(t *testing.T) {
	chart, cfg := files(t, `
track: drums:hard
zoom: 48
delay: 1500ms
autosave_delay: 5s
database: /tmp/x.db
keys:
  k: add-note
`)
	c, err := Parse([]string{"--config", cfg, chart})
	require.NoError(t, err)
	assert.Equal(t, chart, c.Chart)
	assert.Equal(t, cfg, c.File)
	assert.Equal(t, "drums:hard", c.Track)
	assert.Equal(t, 48, c.Zoom)
	assert.Equal(t, 1500*time.Millisecond, c.Delay)
	assert.Equal(t, 5*time.Second, c.AutosaveDelay)
	assert.Equal(t, "/tmp/x.db", c.Database)
	assert.Equal(t, map[string]string{"k": "add-note"}, c.Keys)
	assert.Equal(t, Defaults.Snap, c.Snap)
	assert.Equal(t, Defaults.FramePeriod, c.FramePeriod)
	assert.Equal(t, 1.0, c.Rate)
}

func TestFlagsOverrideFile(t *testing.T) {
	chart, cfg := files(t, "zoom: 48\nrate: 0.5\n")
	c, err := Parse([]string{"-c", cfg, chart, "--zoom", "12", "--debug", "-a", "song.ogg"})
	require.NoError(t, err)
	assert.Equal(t, 12, c.Zoom)
	assert.Equal(t, 0.5, c.Rate)
	assert.True(t, c.Debug)
	assert.Equal(t, "song.ogg", c.Audio)
}

func TestParseErrors(t *testing.T) {
	chart, cfg := files(t, "zoom: [")
	_, err := Parse([]string{"--config=" + cfg, chart})
	assert.Error(t, err)

	chart, cfg = files(t, "")
	_, err = Parse([]string{"--config", cfg})
	assert.Error(t, err)
	_, err = Parse([]string{"--config", cfg, filepath.Join(t.TempDir(), "missing.chart")})
	assert.Error(t, err)
	_, err = Parse([]string{"--config", cfg, chart, "--rate", "0"})
	assert.Error(t, err)
}

func TestMissingFileKeepsDefaults(t *testing.T) {
	f, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults, f)
}

func TestConfigPath(t *testing.T) {
	assert.Equal(t, "a.yaml", configPath([]string{"x", "--config", "a.yaml"}))
	assert.Equal(t, "b.yaml", configPath([]string{"--config=b.yaml"}))
	assert.Equal(t, "c.yaml", configPath([]string{"-c", "c.yaml"}))
	assert.Equal(t, filepath.Join(Dir(), "config.yaml"), configPath([]string{"x"}))
}
