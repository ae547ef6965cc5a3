//go:build !tinygo && cgo

package hal

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

type hostKeyboard struct {
	ch chan KeyEvent
}

func newHostKeyboard() *hostKeyboard {
	return &hostKeyboard{ch: make(chan KeyEvent, 64)}
}

func (k *hostKeyboard) Events() <-chan KeyEvent { return k.ch }

// poll forwards this frame's key input and reports whether the window should
// close (Escape).
func (k *hostKeyboard) poll() (quit bool) {
	emit := func(ev KeyEvent) {
		select {
		case k.ch <- ev:
		default:
		}
	}

	for _, r := range ebiten.AppendInputChars(nil) {
		emit(KeyEvent{Press: true, Rune: r})
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		emit(KeyEvent{Code: KeyEnter, Press: true})
	}
	if inpututil.IsKeyJustReleased(ebiten.KeyEnter) {
		emit(KeyEvent{Code: KeyEnter, Press: false})
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		emit(KeyEvent{Code: KeySpace, Press: true})
	}
	return inpututil.IsKeyJustPressed(ebiten.KeyEscape)
}
