//go:build !tinygo && cgo

package hal

import (
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2/audio"
)

var (
	audioCtxMu sync.Mutex
	audioCtx   *audio.Context
)

// sharedAudioContext returns the process-wide Ebiten audio context.
//
// Ebiten allows exactly one context per process; later callers get the first
// context regardless of the requested rate.
func sharedAudioContext(sampleRate uint32) *audio.Context {
	audioCtxMu.Lock()
	defer audioCtxMu.Unlock()
	if audioCtx == nil {
		audioCtx = audio.NewContext(int(sampleRate))
	}
	return audioCtx
}

func newHostTonePlayer(sampleRate uint32) func(v *squareVoice) (tonePlayer, error) {
	return func(v *squareVoice) (tonePlayer, error) {
		ctx := sharedAudioContext(sampleRate)
		if uint32(ctx.SampleRate()) != v.sampleRate {
			v.sampleRate = uint32(ctx.SampleRate())
		}
		p, err := ctx.NewPlayer(v)
		if err != nil {
			return nil, err
		}
		p.SetBufferSize(50 * time.Millisecond)
		return p, nil
	}
}
