// Package keypad plays a short note for each number key.
package keypad

import (
	"tonefirmata/hal"
	logclient "tonefirmata/toneos/client/logger"
	toneclient "tonefirmata/toneos/client/tone"
	"tonefirmata/toneos/kernel"
	"tonefirmata/toneos/melody"
)

// pressBeats is how long a key press sounds, in beats.
const pressBeats = 0.1

// Task maps keys '1'-'8' onto melody.Scale. Space silences the pin.
type Task struct {
	kb     hal.Keyboard
	tone   *toneclient.Client
	pin    uint8
	bpm    int
	logCap kernel.Capability
}

func New(kb hal.Keyboard, tone *toneclient.Client, pin uint8, bpm int, logCap kernel.Capability) *Task {
	return &Task{kb: kb, tone: tone, pin: pin, bpm: bpm, logCap: logCap}
}

func (t *Task) Run(ctx *kernel.Context) {
	if t.kb == nil || t.tone == nil {
		return
	}
	events := t.kb.Events()
	if events == nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			t.handle(ctx, ev)
		}
	}
}

func (t *Task) handle(ctx *kernel.Context, ev hal.KeyEvent) {
	if !ev.Press {
		return
	}
	if ev.Code == hal.KeySpace {
		if err := t.tone.Stop(ctx, t.pin); err != nil {
			logclient.Logf(ctx, t.logCap, "keypad: %v", err)
		}
		return
	}

	note, ok := NoteForKey(ev.Rune)
	if !ok {
		return
	}
	freq, err := melody.Frequency(note)
	if err != nil {
		return
	}
	if err := t.tone.Play(ctx, t.pin, freq, melody.DurationMs(pressBeats, t.bpm)); err != nil {
		logclient.Logf(ctx, t.logCap, "keypad: %s: %v", note, err)
	}
}

// NoteForKey returns the scale note bound to a number key.
func NoteForKey(r rune) (string, bool) {
	idx := int(r - '1')
	if idx < 0 || idx >= len(melody.Scale) {
		return "", false
	}
	return melody.Scale[idx], true
}
