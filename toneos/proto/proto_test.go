package proto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToneEventPayload(t *testing.T) {
	b := ToneEventPayload(ToneStarted, 10, 440, 500)
	require.Len(t, b, 6)

	action, pin, freq, dur, ok := DecodeToneEventPayload(b)
	require.True(t, ok)
	assert.Equal(t, ToneStarted, action)
	assert.Equal(t, uint8(10), pin)
	assert.Equal(t, uint16(440), freq)
	assert.Equal(t, uint16(500), dur)

	_, _, _, _, ok = DecodeToneEventPayload(b[:5])
	assert.False(t, ok)
}

func TestErrorPayloadTruncatesDetail(t *testing.T) {
	b := ErrorPayload(ErrInternal, MsgToneSysex, []byte("pwm channel unavailable"), 10)
	require.Len(t, b, 10)

	code, ref, detail, ok := DecodeErrorPayload(b)
	require.True(t, ok)
	assert.Equal(t, ErrInternal, code)
	assert.Equal(t, MsgToneSysex, ref)
	assert.Equal(t, "pwm ch", string(detail))
}

func TestToneSysexPayloadCopies(t *testing.T) {
	argv := []byte{10, 1, 2, 3, 4}
	b := ToneSysexPayload(argv)
	argv[0] = 99
	assert.Equal(t, byte(10), b[0])
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "tone_sysex", MsgToneSysex.String())
	assert.Equal(t, "unknown", Kind(999).String())
	assert.Equal(t, "stop", ToneStopped.String())
}
