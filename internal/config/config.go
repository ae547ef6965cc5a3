// Package config loads host settings from flags, environment and an optional
// tonefirmata.yaml file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

const (
	EnvPrefix = "TONEFIRMATA"
	FileName  = "tonefirmata"
)

// Config holds all host settings.
type Config struct {
	Pin        int    `mapstructure:"pin"`
	BPM        int    `mapstructure:"bpm"`
	Volume     int    `mapstructure:"volume"`
	SampleRate int    `mapstructure:"sample_rate"`
	LogLevel   string `mapstructure:"log_level"`
	Headless   bool   `mapstructure:"headless"`
	Hz         int    `mapstructure:"hz"`
	Ticks      uint64 `mapstructure:"ticks"`
	Song       string `mapstructure:"song"`
	SongsDir   string `mapstructure:"songs_dir"`
}

// New returns a viper instance with defaults, config search paths and
// environment binding set up.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("pin", 10)
	v.SetDefault("bpm", 120)
	v.SetDefault("volume", 128)
	v.SetDefault("sample_rate", 44100)
	v.SetDefault("log_level", "info")
	v.SetDefault("headless", false)
	v.SetDefault("hz", 60)
	v.SetDefault("ticks", 0)
	v.SetDefault("song", "")
	v.SetDefault("songs_dir", "")

	v.SetConfigName(FileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", FileName))
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file when one exists and decodes the merged settings.
// A missing file is not an error; an explicit file (SetConfigFile) must exist.
func Load(v *viper.Viper) (Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks value ranges. Pins are sent as one 7-bit sysex byte.
func (c Config) Validate() error {
	switch {
	case c.Pin < 0 || c.Pin > 0x7F:
		return fmt.Errorf("config: pin %d out of range 0..127", c.Pin)
	case c.BPM <= 0:
		return fmt.Errorf("config: bpm must be positive, got %d", c.BPM)
	case c.Volume < 0 || c.Volume > 255:
		return fmt.Errorf("config: volume %d out of range 0..255", c.Volume)
	case c.SampleRate <= 0:
		return fmt.Errorf("config: sample_rate must be positive, got %d", c.SampleRate)
	case c.Hz <= 0:
		return fmt.Errorf("config: hz must be positive, got %d", c.Hz)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: log_level: %w", err)
	}
	return nil
}

// Level returns the zap level for LogLevel, defaulting to info.
func (c Config) Level() zapcore.Level {
	lvl, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}
