// Package game is a memory game for one buzzer and one LED.
//
// The game plays a random sequence of notes and the player repeats it on the
// number keys. A correct run is rewarded with a song; a wrong key blinks the
// LED and ends the game.
package game

import (
	"errors"
	"math/rand/v2"

	"tonefirmata/hal"
	conclient "tonefirmata/toneos/client/console"
	logclient "tonefirmata/toneos/client/logger"
	toneclient "tonefirmata/toneos/client/tone"
	"tonefirmata/toneos/kernel"
	"tonefirmata/toneos/melody"
)

const (
	// Buttons is the number of keys in play, '1' through '4'.
	Buttons = 4
	// SequenceLen is how many notes the player must repeat.
	SequenceLen = 3

	readyTicks  = 1000
	seqBeats    = 0.3
	pressBeats  = 0.1
	minGapTicks = 1500
	maxGapTicks = 2500
	failBlinks  = 3
	blinkTicks  = 500
)

// Result is the outcome of a round.
type Result uint8

const (
	Pending Result = iota
	Won
	Lost
)

func (r Result) String() string {
	switch r {
	case Won:
		return "won"
	case Lost:
		return "lost"
	default:
		return "pending"
	}
}

type Config struct {
	Keyboard hal.Keyboard
	Tone     *toneclient.Client
	LED      hal.LED
	Pin      uint8
	BPM      int

	// ConsoleCap receives status lines when valid.
	ConsoleCap kernel.Capability
	LogCap     kernel.Capability

	// Seed fixes the sequence; zero picks a random one.
	Seed uint64
}

// Game is a kernel task that plays one round.
type Game struct {
	cfg  Config
	seq  []int
	gaps []uint64

	result Result
	done   chan struct{}
}

func New(cfg Config) *Game {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, seed>>1|1))

	g := &Game{
		cfg:  cfg,
		seq:  make([]int, SequenceLen),
		gaps: make([]uint64, SequenceLen),
		done: make(chan struct{}),
	}
	for i := range g.seq {
		g.seq[i] = rng.IntN(Buttons)
		g.gaps[i] = uint64(minGapTicks + rng.IntN(maxGapTicks-minGapTicks+1))
	}
	return g
}

// Sequence returns the button indexes (0-based) the player must repeat.
func (g *Game) Sequence() []int {
	return append([]int(nil), g.seq...)
}

// Done is closed when the round is over or the kernel shut down.
func (g *Game) Done() <-chan struct{} { return g.done }

// Result is valid once Done is closed.
func (g *Game) Result() Result { return g.result }

func (g *Game) Run(ctx *kernel.Context) {
	defer close(g.done)

	var events <-chan hal.KeyEvent
	if g.cfg.Keyboard != nil {
		events = g.cfg.Keyboard.Events()
	}
	if events == nil || g.cfg.Tone == nil {
		logclient.Log(ctx, g.cfg.LogCap, "game: no keyboard or tone output")
		return
	}

	if err := g.opening(ctx); err != nil {
		g.fail(ctx, err)
		return
	}

	g.say(ctx, "your turn: keys 1-%d", Buttons)
	for matched := 0; matched < len(g.seq); {
		var ev hal.KeyEvent
		var ok bool
		select {
		case <-ctx.Done():
			return
		case ev, ok = <-events:
			if !ok {
				return
			}
		}
		b, ok := ButtonForKey(ev)
		if !ok {
			continue
		}
		if err := g.play(ctx, b, pressBeats, nil); err != nil {
			g.fail(ctx, err)
			return
		}
		if b != g.seq[matched] {
			g.lose(ctx)
			return
		}
		matched++
		g.say(ctx, "correct %d/%d", matched, len(g.seq))
	}
	g.win(ctx)
}

// opening runs the ready flash, the intro and the sequence to memorize.
func (g *Game) opening(ctx *kernel.Context) error {
	g.say(ctx, "get ready")
	g.led(true)
	ok := ctx.SleepTicks(readyTicks)
	g.led(false)
	if !ok {
		return melody.ErrInterrupted
	}

	intro, _ := melody.Builtin("intro")
	intro.BPM = g.bpm()
	if err := melody.Perform(ctx, intro, g.cfg.Pin, g.cfg.Tone, g.cfg.LED); err != nil {
		return err
	}

	g.say(ctx, "listen")
	for i, b := range g.seq {
		if err := g.play(ctx, b, seqBeats, g.cfg.LED); err != nil {
			return err
		}
		if !ctx.SleepTicks(g.gaps[i]) {
			return melody.ErrInterrupted
		}
	}
	return nil
}

func (g *Game) play(ctx *kernel.Context, button int, beats float64, led hal.LED) error {
	song := melody.Song{
		Name:  "button",
		BPM:   g.bpm(),
		Notes: []melody.Step{{Note: melody.Scale[button], Beats: beats}},
	}
	return melody.Perform(ctx, song, g.cfg.Pin, g.cfg.Tone, led)
}

func (g *Game) win(ctx *kernel.Context) {
	g.result = Won
	g.say(ctx, "you win")
	logclient.Log(ctx, g.cfg.LogCap, "game: won")

	twinkle, _ := melody.Builtin("twinkle")
	twinkle.BPM = g.bpm()
	if err := melody.Perform(ctx, twinkle, g.cfg.Pin, g.cfg.Tone, g.cfg.LED); err != nil && !errors.Is(err, melody.ErrInterrupted) {
		logclient.Logf(ctx, g.cfg.LogCap, "game: %v", err)
	}
}

func (g *Game) lose(ctx *kernel.Context) {
	g.result = Lost
	g.say(ctx, "wrong key, game over")
	logclient.Log(ctx, g.cfg.LogCap, "game: lost")

	for range failBlinks {
		g.led(true)
		ok := ctx.SleepTicks(blinkTicks)
		g.led(false)
		if !ok || !ctx.SleepTicks(blinkTicks) {
			return
		}
	}
}

func (g *Game) fail(ctx *kernel.Context, err error) {
	if errors.Is(err, melody.ErrInterrupted) {
		return
	}
	logclient.Logf(ctx, g.cfg.LogCap, "game: %v", err)
}

func (g *Game) say(ctx *kernel.Context, format string, args ...any) {
	if !g.cfg.ConsoleCap.Valid() {
		return
	}
	conclient.Linef(ctx, g.cfg.ConsoleCap, "game: "+format, args...)
}

func (g *Game) led(on bool) {
	switch {
	case g.cfg.LED == nil:
	case on:
		g.cfg.LED.High()
	default:
		g.cfg.LED.Low()
	}
}

func (g *Game) bpm() int {
	if g.cfg.BPM > 0 {
		return g.cfg.BPM
	}
	return 120
}

// ButtonForKey maps a key press on '1'-'4' to a button index.
func ButtonForKey(ev hal.KeyEvent) (int, bool) {
	if !ev.Press {
		return 0, false
	}
	b := int(ev.Rune - '1')
	if b < 0 || b >= Buttons {
		return 0, false
	}
	return b, true
}
