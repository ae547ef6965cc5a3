//go:build !tinygo && !cgo

package hal

// Without cgo there is no audio backend: voices still track state and the
// bank logs every command.
func newHostTonePlayer(uint32) func(v *squareVoice) (tonePlayer, error) {
	return nil
}
