package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tonefirmata/hal"
	"tonefirmata/internal/wav"
	"tonefirmata/toneos/melody"
)

func newRenderCmd(e *env) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "render [name|file.yaml]",
		Short: "Render a song to a mono WAV file",
		Long: `Renders a song with the same square wave the desktop buzzer plays, so
melodies can be checked without audio hardware.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := e.cfg.Song
			if len(args) == 1 {
				ref = args[0]
			}
			if ref == "" {
				return errors.New("render: no song given")
			}
			if outPath == "" {
				return errors.New("render: --out is required")
			}
			song, err := melody.Resolve(ref, e.cfg.SongsDir)
			if err != nil {
				return err
			}

			rate := uint32(e.cfg.SampleRate)
			samples := RenderSong(song, rate)

			f, err := os.Create(outPath)
			if err != nil {
				return err
			}
			if err := wav.WriteMono16(f, rate, samples); err != nil {
				_ = f.Close()
				return fmt.Errorf("write %s: %w", outPath, err)
			}
			if err := f.Close(); err != nil {
				return err
			}
			wi, err := verifyWAV(outPath, rate, len(samples))
			if err != nil {
				return err
			}
			e.log.Info("rendered",
				zap.String("song", song.Name),
				zap.String("file", outPath),
				zap.Int("samples", wi.Samples()),
				zap.Duration("length", time.Duration(wi.Samples())*time.Second/time.Duration(wi.SampleRate)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output .wav path")
	return cmd
}

// RenderSong renders every step and gap of song at sampleRate.
func RenderSong(song melody.Song, sampleRate uint32) []int16 {
	var out []int16
	gap := time.Duration(song.GapMs) * time.Millisecond
	for _, st := range song.Notes {
		freq, _ := melody.Frequency(st.Note)
		d := time.Duration(melody.DurationMs(st.Beats, song.BPM)) * time.Millisecond
		out = hal.RenderTone(out, freq, d, sampleRate)
		if freq > 0 && gap > 0 {
			out = hal.RenderTone(out, 0, gap, sampleRate)
		}
	}
	return out
}

// verifyWAV reads back the header of a rendered file and checks it describes
// the samples that were written.
func verifyWAV(path string, rate uint32, samples int) (wav.Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return wav.Info{}, err
	}
	defer f.Close()

	wi, err := wav.Parse(f)
	if err != nil {
		return wav.Info{}, fmt.Errorf("verify %s: %w", path, err)
	}
	if wi.SampleRate != rate || wi.Channels != 1 || wi.Bits != 16 || wi.Samples() != samples {
		return wi, fmt.Errorf("verify %s: got %d Hz %d ch %d bit %d samples, want %d Hz mono 16 bit %d samples",
			path, wi.SampleRate, wi.Channels, wi.Bits, wi.Samples(), rate, samples)
	}
	return wi, nil
}
