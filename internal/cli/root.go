// Package cli implements the tonefirmata host command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"tonefirmata/app"
	"tonefirmata/hal"
	"tonefirmata/internal/config"
)

type env struct {
	v       *viper.Viper
	cfgFile string
	cfg     config.Config
	log     *zap.Logger
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	e := &env{v: config.New(), log: zap.NewNop()}

	root := &cobra.Command{
		Use:   "tonefirmata",
		Short: "Firmata tone command handler with a desktop buzzer",
		Long: `tonefirmata decodes Firmata sysex tone commands (0x7E) of the form
[pin, freqLSB, freqMSB, durLSB, durMSB] and drives a square-wave tone output.

On the desktop the buzzer is an ebiten audio voice per pin.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = e.log.Sync()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&e.cfgFile, "config", "", "config file (default ./tonefirmata.yaml)")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.Int("pin", 10, "buzzer pin")
	pf.Int("volume", 128, "output volume 0..255")
	pf.Int("sample-rate", 44100, "audio sample rate")
	pf.Int("hz", 60, "frame rate")
	pf.Uint64("ticks", 0, "stop after N frames (0 = run until done)")
	pf.String("song", "", "built-in song name or YAML file")
	pf.String("songs-dir", "", "directory searched for <song>.yaml")
	pf.Int("bpm", 120, "tempo in beats per minute")
	bind(e.v, pf.Lookup("log-level"), "log_level")
	bind(e.v, pf.Lookup("pin"), "pin")
	bind(e.v, pf.Lookup("volume"), "volume")
	bind(e.v, pf.Lookup("sample-rate"), "sample_rate")
	bind(e.v, pf.Lookup("hz"), "hz")
	bind(e.v, pf.Lookup("ticks"), "ticks")
	bind(e.v, pf.Lookup("song"), "song")
	bind(e.v, pf.Lookup("songs-dir"), "songs_dir")
	bind(e.v, pf.Lookup("bpm"), "bpm")

	root.AddCommand(
		newRunCmd(e),
		newPlayCmd(e),
		newStopCmd(e),
		newMelodyCmd(e),
		newRenderCmd(e),
		newDecodeCmd(),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := NewRootCmd().Execute(); err != nil {
		return 1
	}
	return 0
}

func (e *env) setup() error {
	if e.cfgFile != "" {
		e.v.SetConfigFile(e.cfgFile)
	}
	cfg, err := config.Load(e.v)
	if err != nil {
		return err
	}
	e.cfg = cfg

	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(cfg.Level())
	zc.DisableStacktrace = true
	log, err := zc.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	e.log = log.Named("tonefirmata")
	if used := e.v.ConfigFileUsed(); used != "" {
		e.log.Debug("config loaded", zap.String("file", used))
	}
	return nil
}

func (e *env) hostOptions() hal.HostOptions {
	return hal.HostOptions{
		Log:        e.log,
		SampleRate: uint32(e.cfg.SampleRate),
		Volume:     uint8(e.cfg.Volume),
	}
}

func (e *env) appConfig() app.Config {
	return app.Config{
		Pin:    uint8(e.cfg.Pin),
		BPM:    e.cfg.BPM,
		Volume: uint8(e.cfg.Volume),
	}
}

// boot runs the system headless or in a window until it finishes, the frame
// budget runs out, the window closes, or the process is interrupted.
func (e *env) boot(ctx context.Context, cfg app.Config, headless bool) error {
	newApp := func(h hal.HAL) func() error { return app.NewWithConfig(h, cfg) }

	mode := "window"
	if headless {
		mode = "headless"
	}
	e.log.Info("starting", zap.String("mode", mode), zap.Uint8("pin", cfg.Pin), zap.Int("bpm", cfg.BPM))

	var err error
	if headless {
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
		defer stop()
		err = hal.RunHeadless(ctx, newApp, hal.HeadlessConfig{
			Hz:    e.cfg.Hz,
			Ticks: e.cfg.Ticks,
			Host:  e.hostOptions(),
		})
	} else {
		err = hal.RunWindow(newApp, e.hostOptions())
	}

	switch {
	case err == nil, errors.Is(err, app.ErrFinished), errors.Is(err, context.Canceled):
		e.log.Info("shutdown")
		return nil
	default:
		return err
	}
}

func bind(v *viper.Viper, f *pflag.Flag, key string) {
	if f == nil {
		return
	}
	_ = v.BindPFlag(key, f)
}
