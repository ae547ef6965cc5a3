package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	c, err := Load(New())
	require.NoError(t, err)
	assert.Equal(t, Config{
		Pin:        10,
		BPM:        120,
		Volume:     128,
		SampleRate: 44100,
		LogLevel:   "info",
		Hz:         60,
	}, c)
	assert.Equal(t, zapcore.InfoLevel, c.Level())
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", t.TempDir())
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tonefirmata.yaml"), []byte("pin: 9\nbpm: 90\nsong: twinkle\nlog_level: debug\n"), 0o644))
	t.Setenv("TONEFIRMATA_BPM", "140")
	t.Setenv("TONEFIRMATA_SONGS_DIR", "/tmp/songs")

	c, err := Load(New())
	require.NoError(t, err)
	assert.Equal(t, 9, c.Pin)
	assert.Equal(t, 140, c.BPM)
	assert.Equal(t, "twinkle", c.Song)
	assert.Equal(t, "/tmp/songs", c.SongsDir)
	assert.Equal(t, zapcore.DebugLevel, c.Level())
}

func TestLoadExplicitFileMissing(t *testing.T) {
	v := New()
	v.SetConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
	_, err := Load(v)
	assert.ErrorContains(t, err, "read config")
}

func TestValidate(t *testing.T) {
	good := Config{Pin: 10, BPM: 120, Volume: 128, SampleRate: 44100, LogLevel: "info", Hz: 60}
	require.NoError(t, good.Validate())

	tests := []struct {
		name string
		mut  func(*Config)
		want string
	}{
		{"pin", func(c *Config) { c.Pin = 128 }, "pin"},
		{"bpm", func(c *Config) { c.BPM = 0 }, "bpm"},
		{"volume", func(c *Config) { c.Volume = 256 }, "volume"},
		{"rate", func(c *Config) { c.SampleRate = 0 }, "sample_rate"},
		{"hz", func(c *Config) { c.Hz = -1 }, "hz"},
		{"level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := good
			tt.mut(&c)
			assert.ErrorContains(t, c.Validate(), tt.want)
		})
	}
}
