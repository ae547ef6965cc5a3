package melody

import (
	"errors"
	"fmt"

	"tonefirmata/hal"
	logclient "tonefirmata/toneos/client/logger"
	toneclient "tonefirmata/toneos/client/tone"
	"tonefirmata/toneos/kernel"
)

// Player is a kernel task that plays a song once on one pin.
type Player struct {
	song   Song
	pin    uint8
	tone   *toneclient.Client
	led    hal.LED
	logCap kernel.Capability
	done   chan struct{}
}

func NewPlayer(song Song, pin uint8, tone *toneclient.Client, led hal.LED, logCap kernel.Capability) *Player {
	return &Player{
		song:   song,
		pin:    pin,
		tone:   tone,
		led:    led,
		logCap: logCap,
		done:   make(chan struct{}),
	}
}

// Done is closed when the player returns, whether the song finished or the
// kernel shut down.
func (p *Player) Done() <-chan struct{} { return p.done }

func (p *Player) Run(ctx *kernel.Context) {
	defer close(p.done)

	if err := p.song.Validate(); err != nil {
		logclient.Logf(ctx, p.logCap, "melody: %v", err)
		return
	}
	logclient.Logf(ctx, p.logCap, "melody: %s, %d notes at %d bpm", p.song.Name, len(p.song.Notes), p.song.BPM)

	switch err := Perform(ctx, p.song, p.pin, p.tone, p.led); {
	case errors.Is(err, ErrInterrupted):
	case err != nil:
		logclient.Logf(ctx, p.logCap, "melody: %v", err)
	default:
		logclient.Logf(ctx, p.logCap, "melody: %s done", p.song.Name)
	}
}

// ErrInterrupted is returned by Perform when the kernel shuts down mid-song.
var ErrInterrupted = errors.New("melody: interrupted")

// Perform plays song on pin and returns after the last note has sounded.
//
// Kernel ticks are milliseconds: each note is sent with its duration and the
// caller sleeps for the same number of ticks. The LED, when set, is lit while a
// note sounds. Rests send a stop and wait their length. The song is not
// validated.
func Perform(ctx *kernel.Context, song Song, pin uint8, tone *toneclient.Client, led hal.LED) error {
	for i, st := range song.Notes {
		freq, _ := Frequency(st.Note)
		dur := DurationMs(st.Beats, song.BPM)

		if freq == 0 {
			if err := tone.Stop(ctx, pin); err != nil {
				return fmt.Errorf("step %d: %w", i+1, err)
			}
			if !ctx.SleepTicks(uint64(dur)) {
				return ErrInterrupted
			}
			continue
		}

		ledSet(led, true)
		if err := tone.Play(ctx, pin, freq, dur); err != nil {
			ledSet(led, false)
			return fmt.Errorf("step %d: %w", i+1, err)
		}
		ok := ctx.SleepTicks(uint64(dur))
		ledSet(led, false)
		if !ok {
			return ErrInterrupted
		}
		if song.GapMs > 0 && !ctx.SleepTicks(uint64(song.GapMs)) {
			return ErrInterrupted
		}
	}
	return nil
}

func ledSet(led hal.LED, on bool) {
	switch {
	case led == nil:
	case on:
		led.High()
	default:
		led.Low()
	}
}
