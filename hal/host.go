//go:build !tinygo

package hal

import (
	"sync"

	"go.uber.org/zap"
)

// HostOptions configures the host HAL.
type HostOptions struct {
	// Log receives HAL and kernel log lines. Nil uses a no-op logger.
	Log *zap.Logger
	// SampleRate of the tone bank; 0 uses DefaultSampleRate.
	SampleRate uint32
	// Volume of the tone bank (0..255).
	Volume uint8
	// Width and Height of the framebuffer; 0 uses 320x240.
	Width, Height int
}

type hostHAL struct {
	logger *hostLogger
	led    *hostLED
	fb     *hostFramebuffer
	kbd    *hostKeyboard
	t      *hostTime
	tone   *hostToneBank
}

// New returns a host HAL implementation with default options.
func New() HAL {
	return NewHost(HostOptions{Volume: 128})
}

// NewHost returns a host HAL implementation.
func NewHost(opts HostOptions) HAL {
	return newHostHAL(opts)
}

func newHostHAL(opts HostOptions) *hostHAL {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = 320, 240
	}
	logger := &hostLogger{log: opts.Log.Named("hal")}
	tone := newHostToneBank(opts.SampleRate, logger)
	tone.volume = opts.Volume
	return &hostHAL{
		logger: logger,
		led:    &hostLED{logger: logger},
		fb:     newHostFramebuffer(opts.Width, opts.Height),
		kbd:    newHostKeyboard(),
		t:      newHostTime(),
		tone:   tone,
	}
}

func (h *hostHAL) Logger() Logger   { return h.logger }
func (h *hostHAL) LED() LED         { return h.led }
func (h *hostHAL) Display() Display { return hostDisplay{fb: h.fb} }
func (h *hostHAL) Input() Input     { return hostInput{kbd: h.kbd} }
func (h *hostHAL) Time() Time       { return h.t }
func (h *hostHAL) Tone() ToneOutput { return h.tone }

func (h *hostHAL) close() {
	if h.tone != nil {
		if err := h.tone.Close(); err != nil {
			h.logger.log.Warn("closing tone bank", zap.Error(err))
		}
	}
	_ = h.logger.log.Sync()
}

type hostDisplay struct {
	fb *hostFramebuffer
}

func (d hostDisplay) Framebuffer() Framebuffer { return d.fb }

type hostInput struct {
	kbd *hostKeyboard
}

func (in hostInput) Keyboard() Keyboard { return in.kbd }

type hostLogger struct {
	log *zap.Logger
}

func (l *hostLogger) WriteLineString(s string) {
	l.log.Info(s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.log.Info(string(b))
}

type hostLED struct {
	mu     sync.Mutex
	on     bool
	logger *hostLogger
}

func (l *hostLED) High() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.on {
		return
	}
	l.on = true
	l.logger.log.Debug("led", zap.Bool("on", true))
}

func (l *hostLED) Low() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.on {
		return
	}
	l.on = false
	l.logger.log.Debug("led", zap.Bool("on", false))
}
