package app

import (
	"errors"

	"tonefirmata/hal"
	logclient "tonefirmata/toneos/client/logger"
	toneclient "tonefirmata/toneos/client/tone"
	"tonefirmata/toneos/kernel"
	"tonefirmata/toneos/melody"
	"tonefirmata/toneos/services/console"
	"tonefirmata/toneos/services/logger"
	tonesvc "tonefirmata/toneos/services/tone"
	"tonefirmata/toneos/tasks/game"
	"tonefirmata/toneos/tasks/keypad"
)

// ErrFinished is returned by the step function once every boot task is done
// and Config.ExitWhenDone is set.
var ErrFinished = errors.New("app: finished")

const (
	DefaultPin    = 10
	DefaultBPM    = 120
	DefaultVolume = 128
)

// Config selects the tasks started at boot.
//
// Pin and Volume are used as given: pin 0 is a valid pin and volume 0 mutes.
// DefaultConfig fills both for callers without their own configuration.
type Config struct {
	// Pin is the buzzer pin used by the melody player, the keypad and the game.
	Pin uint8
	// BPM is the keypad and game tempo; zero or less selects DefaultBPM.
	BPM    int
	Volume uint8

	// Song is played once at boot when set.
	Song *melody.Song
	// Sysex holds raw tone argument vectors sent in order at boot.
	Sysex [][]byte

	Keypad  bool
	Console bool

	// Game starts the memory game on the keyboard. It takes the keyboard over
	// from the keypad.
	Game bool
	// Seed fixes the game sequence; zero picks a random one.
	Seed uint64

	// ExitWhenDone makes the step function return ErrFinished after the song,
	// the sysex script and the game complete.
	ExitWhenDone bool
}

// DefaultConfig returns the board defaults: buzzer on pin 10 at half volume.
func DefaultConfig() Config {
	return Config{Pin: DefaultPin, BPM: DefaultBPM, Volume: DefaultVolume}
}

func (c Config) withDefaults() Config {
	if c.BPM <= 0 {
		c.BPM = DefaultBPM
	}
	return c
}

type system struct {
	k    *kernel.Kernel
	log  hal.Logger
	tone *tonesvc.Service

	waits    []<-chan struct{}
	exitDone bool
}

// New initializes and starts the system with DefaultConfig.
func New(h hal.HAL) func() error {
	return NewWithConfig(h, DefaultConfig())
}

// Run starts the system and blocks forever (TinyGo entrypoint).
func Run(h hal.HAL) {
	RunWithConfig(h, DefaultConfig())
}

func NewWithConfig(h hal.HAL, cfg Config) func() error {
	return newSystem(h, cfg).step
}

func RunWithConfig(h hal.HAL, cfg Config) {
	_ = NewWithConfig(h, cfg)
	select {}
}

func newSystem(h hal.HAL, cfg Config) *system {
	cfg = cfg.withDefaults()
	installPanicHandler(h)

	k := kernel.New()
	s := &system{k: k, log: h.Logger(), exitDone: cfg.ExitWhenDone}

	logEP := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	toneEP := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	logCap := logEP.Restrict(kernel.RightSend)

	k.AddTask(logger.New(h.Logger(), logEP.Restrict(kernel.RightRecv)))
	s.tone = tonesvc.New(h.Tone(), toneEP.Restrict(kernel.RightRecv), logCap)
	k.AddTask(s.tone)

	client := toneclient.New(toneEP.Restrict(kernel.RightSend))
	boot := kernel.NewContext(k)
	if err := client.SetVolume(boot, cfg.Volume); err != nil {
		logclient.Logf(boot, logCap, "boot: volume: %v", err)
	}

	var conCap kernel.Capability
	if cfg.Console {
		conEP := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
		k.AddTask(console.New(h.Display(), conEP.Restrict(kernel.RightRecv)))
		conCap = conEP.Restrict(kernel.RightSend)
		if err := client.Subscribe(boot, conCap); err != nil {
			logclient.Logf(boot, logCap, "boot: console events: %v", err)
		}
	}

	if len(cfg.Sysex) > 0 {
		sx := newSysexTask(cfg.Sysex, client, logCap)
		k.AddTask(sx)
		s.waits = append(s.waits, sx.Done())
	}

	if cfg.Song != nil {
		p := melody.NewPlayer(*cfg.Song, cfg.Pin, client, h.LED(), logCap)
		k.AddTask(p)
		s.waits = append(s.waits, p.Done())
	}

	var kb hal.Keyboard
	if in := h.Input(); in != nil {
		kb = in.Keyboard()
	}
	switch {
	case cfg.Game:
		g := game.New(game.Config{
			Keyboard:   kb,
			Tone:       client,
			LED:        h.LED(),
			Pin:        cfg.Pin,
			BPM:        cfg.BPM,
			ConsoleCap: conCap,
			LogCap:     logCap,
			Seed:       cfg.Seed,
		})
		k.AddTask(g)
		s.waits = append(s.waits, g.Done())
	case cfg.Keypad && kb != nil:
		k.AddTask(keypad.New(kb, client, cfg.Pin, cfg.BPM, logCap))
	}

	if ht := h.Time(); ht != nil {
		if ch := ht.Ticks(); ch != nil {
			go func() {
				for {
					select {
					case <-k.Done():
						return
					case seq, ok := <-ch:
						if !ok {
							return
						}
						k.TickTo(seq)
					}
				}
			}()
		}
	}

	return s
}

func (s *system) step() error {
	if !s.exitDone {
		return nil
	}
	for _, w := range s.waits {
		select {
		case <-w:
		default:
			return nil
		}
	}
	s.k.Close()
	if s.log != nil {
		s.log.WriteLineString(s.tone.Stats().String())
	}
	return ErrFinished
}
