//go:build !tinygo

package hal

import (
	"fmt"
	"sync"
	"time"
)

// DefaultSampleRate is the host tone sample rate when none is configured.
const DefaultSampleRate = 44100

// squareVoice renders a square wave for one pin as 16-bit little-endian stereo.
//
// It never returns EOF: once the requested duration has elapsed it renders
// silence until retuned.
type squareVoice struct {
	mu sync.Mutex

	sampleRate uint32
	freq       uint32
	amp        int16

	phase     uint64 // sample index within the current tone
	remaining int64  // samples left, -1 = until stopped
}

func newSquareVoice(sampleRate uint32) *squareVoice {
	return &squareVoice{sampleRate: sampleRate, amp: 8192}
}

func (v *squareVoice) start(freqHz uint16, d time.Duration) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.freq = uint32(freqHz)
	v.phase = 0
	if d <= 0 {
		v.remaining = -1
		return
	}
	v.remaining = int64(d) * int64(v.sampleRate) / int64(time.Second)
	if v.remaining == 0 {
		v.remaining = 1
	}
}

func (v *squareVoice) stop() {
	v.mu.Lock()
	v.freq = 0
	v.remaining = 0
	v.mu.Unlock()
}

func (v *squareVoice) sounding() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.freq > 0 && v.remaining != 0
}

func (v *squareVoice) next() int16 {
	if v.freq == 0 || v.remaining == 0 {
		return 0
	}
	if v.remaining > 0 {
		v.remaining--
	}
	// Position within the period, in units of 1/sampleRate periods.
	pos := (v.phase * uint64(v.freq)) % uint64(v.sampleRate)
	v.phase++
	if pos < uint64(v.sampleRate)/2 {
		return v.amp
	}
	return -v.amp
}

func (v *squareVoice) Read(p []byte) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	n := len(p) &^ 3
	for i := 0; i < n; i += 4 {
		s := v.next()
		p[i+0] = byte(s)
		p[i+1] = byte(s >> 8)
		p[i+2] = byte(s)
		p[i+3] = byte(s >> 8)
	}
	return n, nil
}

// RenderTone appends d worth of the square wave a pin would play at freqHz to
// dst as mono samples. A zero frequency appends silence.
func RenderTone(dst []int16, freqHz uint16, d time.Duration, sampleRate uint32) []int16 {
	if sampleRate == 0 {
		sampleRate = DefaultSampleRate
	}
	n := int(int64(d) * int64(sampleRate) / int64(time.Second))
	if freqHz == 0 || n <= 0 {
		return append(dst, make([]int16, max(n, 0))...)
	}
	v := newSquareVoice(sampleRate)
	v.start(freqHz, d)
	for i := 0; i < n; i++ {
		dst = append(dst, v.next())
	}
	return dst
}

// tonePlayer is the part of an audio player the tone bank drives.
type tonePlayer interface {
	Play()
	SetVolume(v float64)
	Close() error
}

// hostToneBank keeps one voice per pin.
type hostToneBank struct {
	mu sync.Mutex

	sampleRate uint32
	volume     uint8
	logger     Logger

	voices    map[uint8]*squareVoice
	players   map[uint8]tonePlayer
	newPlayer func(v *squareVoice) (tonePlayer, error)
}

func newHostToneBank(sampleRate uint32, logger Logger) *hostToneBank {
	if sampleRate == 0 {
		sampleRate = DefaultSampleRate
	}
	b := &hostToneBank{
		sampleRate: sampleRate,
		volume:     128,
		logger:     logger,
		voices:     make(map[uint8]*squareVoice),
		players:    make(map[uint8]tonePlayer),
	}
	b.newPlayer = newHostTonePlayer(sampleRate)
	return b
}

func (b *hostToneBank) voice(pin uint8) (*squareVoice, error) {
	if v, ok := b.voices[pin]; ok {
		return v, nil
	}
	v := newSquareVoice(b.sampleRate)
	if b.newPlayer != nil {
		p, err := b.newPlayer(v)
		if err != nil {
			return nil, fmt.Errorf("tone: pin %d: %w", pin, err)
		}
		p.SetVolume(float64(b.volume) / 255.0)
		p.Play()
		b.players[pin] = p
	}
	b.voices[pin] = v
	return v, nil
}

func (b *hostToneBank) Tone(pin uint8, freqHz uint16, d time.Duration) error {
	if freqHz == 0 {
		return b.NoTone(pin)
	}

	b.mu.Lock()
	v, err := b.voice(pin)
	b.mu.Unlock()
	if err != nil {
		return err
	}
	v.start(freqHz, d)
	b.logf("tone: pin=%d freq=%dHz dur=%s", pin, freqHz, d)
	return nil
}

func (b *hostToneBank) NoTone(pin uint8) error {
	b.mu.Lock()
	v := b.voices[pin]
	b.mu.Unlock()
	if v != nil {
		v.stop()
	}
	b.logf("tone: pin=%d off", pin)
	return nil
}

func (b *hostToneBank) SetVolume(vol uint8) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.volume = vol
	for _, p := range b.players {
		p.SetVolume(float64(vol) / 255.0)
	}
}

// sounding reports whether pin currently produces a tone.
func (b *hostToneBank) sounding(pin uint8) bool {
	b.mu.Lock()
	v := b.voices[pin]
	b.mu.Unlock()
	return v != nil && v.sounding()
}

// Close releases all audio players.
func (b *hostToneBank) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	var first error
	for pin, p := range b.players {
		if err := p.Close(); err != nil && first == nil {
			first = err
		}
		delete(b.players, pin)
	}
	return first
}

func (b *hostToneBank) logf(format string, args ...any) {
	if b.logger == nil {
		return
	}
	b.logger.WriteLineString(fmt.Sprintf(format, args...))
}
