package cli

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tonefirmata/internal/buildinfo"
	"tonefirmata/toneos/firmata"
	"tonefirmata/toneos/melody"
)

func newRunCmd(e *env) *cobra.Command {
	var (
		headless bool
		keypad   bool
		console  bool
		game     bool
		seed     uint64
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Boot the system and play the configured song",
		Long: `Boots the kernel, the tone service and the console. The configured song
(--song or the song setting) plays once; keys 1-8 play the note scale and
space silences the pin. Escape closes the window.

With --game the keys 1-4 play a memory game instead: listen to three notes,
repeat them, and the program exits when the round is over.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := e.appConfig()
			cfg.Keypad = keypad
			cfg.Console = console
			cfg.Game = game
			cfg.Seed = seed
			cfg.ExitWhenDone = game
			if e.cfg.Song != "" {
				song, err := melody.Resolve(e.cfg.Song, e.cfg.SongsDir)
				if err != nil {
					return err
				}
				cfg.Song = &song
			}
			return e.boot(cmd.Context(), cfg, headless || e.cfg.Headless)
		},
	}
	f := cmd.Flags()
	f.BoolVar(&headless, "headless", false, "run without a window")
	f.BoolVar(&keypad, "keypad", true, "play notes from number keys")
	f.BoolVar(&console, "console", true, "show tone events on screen")
	f.BoolVar(&game, "game", false, "play the memory game on keys 1-4")
	f.Uint64Var(&seed, "seed", 0, "fix the game sequence (0 picks a random one)")
	return cmd
}

func newPlayCmd(e *env) *cobra.Command {
	var (
		freq     uint16
		duration uint16
	)
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Send one tone command through the tone service",
		Example: `  tonefirmata play --pin 10 --freq 440 --duration 500
  tonefirmata play --freq 262 --duration 0 --ticks 120`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if freq > firmata.Max14 || duration > firmata.Max14 {
				return fmt.Errorf("freq and duration must fit 14 bits (max %d)", firmata.Max14)
			}
			req := firmata.ToneRequest{Pin: uint8(e.cfg.Pin), Frequency: freq, Duration: duration}
			return e.sendScript(cmd, req)
		},
	}
	cmd.Flags().Uint16Var(&freq, "freq", 440, "frequency in Hz (0 stops the tone)")
	cmd.Flags().Uint16Var(&duration, "duration", 500, "duration in ms (0 plays until stopped)")
	return cmd
}

func newStopCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Send a silent tone command for the pin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.sendScript(cmd, firmata.ToneRequest{Pin: uint8(e.cfg.Pin)})
		},
	}
}

func (e *env) sendScript(cmd *cobra.Command, req firmata.ToneRequest) error {
	argv := firmata.EncodeTone(req)
	fmt.Fprintf(cmd.OutOrStdout(), "sysex %#02x % x  (%s)\n", firmata.ToneCommand, argv, req)

	cfg := e.appConfig()
	cfg.Sysex = [][]byte{argv}
	cfg.ExitWhenDone = req.Duration > 0 || req.Silent()
	if !cfg.ExitWhenDone && e.cfg.Ticks == 0 {
		e.log.Warn("tone plays until interrupted; use --ticks to bound the run")
	}
	return e.boot(cmd.Context(), cfg, true)
}

func newMelodyCmd(e *env) *cobra.Command {
	var (
		list bool
		dump bool
	)
	cmd := &cobra.Command{
		Use:   "melody [name|file.yaml]",
		Short: "Play a built-in or YAML song headless",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if list {
				for _, name := range melody.Builtins() {
					s, _ := melody.Builtin(name)
					fmt.Fprintf(out, "%-10s %3d notes  %5.1fs\n", name, len(s.Notes), float64(s.TotalMs())/1000)
				}
				return nil
			}

			ref := e.cfg.Song
			if len(args) == 1 {
				ref = args[0]
			}
			if ref == "" {
				return errors.New("melody: no song given (try --list)")
			}
			song, err := melody.Resolve(ref, e.cfg.SongsDir)
			if err != nil {
				return err
			}
			if dump {
				return melody.Encode(out, song)
			}
			if cmd.Flags().Changed("bpm") {
				song.BPM = e.cfg.BPM
				if err := song.Validate(); err != nil {
					return err
				}
			}

			e.log.Info("melody", zap.String("song", song.Name), zap.Int("notes", len(song.Notes)), zap.Int("bpm", song.BPM))
			cfg := e.appConfig()
			cfg.Song = &song
			cfg.ExitWhenDone = true
			return e.boot(cmd.Context(), cfg, true)
		},
	}
	f := cmd.Flags()
	f.BoolVar(&list, "list", false, "list built-in songs")
	f.BoolVar(&dump, "dump", false, "print the song as YAML instead of playing it")
	return cmd
}

func newDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <bytes>...",
		Short: "Decode a tone argument vector",
		Long: `Decodes the argument bytes of a 0x7E sysex message. Bytes may be given
as separate arguments or as one hex string, with or without 0x prefixes.`,
		Example: `  tonefirmata decode 0a 38 03 74 03
  tonefirmata decode 0a3803 7403`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			argv, err := ParseBytes(args)
			if err != nil {
				return err
			}
			req, ok := firmata.DecodeTone(argv)
			if !ok {
				fmt.Fprintf(cmd.OutOrStdout(), "ignored: %d bytes, need %d\n", len(argv), firmata.ToneArgc)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), req.String())
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), buildinfo.String())
		},
	}
}

// ParseBytes accepts hex bytes as separate fields ("0a", "0x0A", "10") or
// runs of hex digits ("0a3803"). Fields may be separated by commas.
func ParseBytes(args []string) ([]byte, error) {
	var out []byte
	for _, arg := range args {
		for _, field := range strings.FieldsFunc(arg, func(r rune) bool { return r == ',' || r == ' ' }) {
			field = strings.TrimPrefix(strings.ToLower(field), "0x")
			if len(field) <= 2 {
				v, err := strconv.ParseUint(field, 16, 8)
				if err != nil {
					return nil, fmt.Errorf("bad byte %q: %w", field, err)
				}
				out = append(out, byte(v))
				continue
			}
			b, err := hex.DecodeString(field)
			if err != nil {
				return nil, fmt.Errorf("bad hex %q: %w", field, err)
			}
			out = append(out, b...)
		}
	}
	return out, nil
}
