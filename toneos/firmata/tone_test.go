package firmata

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	op   string
	pin  uint8
	freq uint16
	dur  time.Duration
}

type fakeDriver struct {
	calls []call
	err   error
}

func (d *fakeDriver) Tone(pin uint8, freqHz uint16, dur time.Duration) error {
	d.calls = append(d.calls, call{op: "tone", pin: pin, freq: freqHz, dur: dur})
	return d.err
}

func (d *fakeDriver) NoTone(pin uint8) error {
	d.calls = append(d.calls, call{op: "notone", pin: pin})
	return d.err
}

func TestDecode14(t *testing.T) {
	assert.Equal(t, uint16(255), Decode14(0x7F, 0x01))
	assert.Equal(t, uint16(128), Decode14(0x00, 0x01))
	assert.Equal(t, uint16(0), Decode14(0x00, 0x00))
	assert.Equal(t, uint16(Max14), Decode14(0x7F, 0x7F))
}

func TestDecode14KeepsHighBits(t *testing.T) {
	assert.Equal(t, uint16(0x80), Decode14(0x80, 0x00))
	assert.Equal(t, uint16(0x80|0x80<<7), Decode14(0x80, 0x80))
	assert.Equal(t, uint16(0xFF|0xFF<<7), Decode14(0xFF, 0xFF))
}

func TestHandleToneHighBitFrequencyStartsTone(t *testing.T) {
	d := &fakeDriver{}
	require.NoError(t, HandleTone(d, []byte{10, 0x80, 0x00, 0x00, 0x00}))
	assert.Equal(t, []call{{op: "tone", pin: 10, freq: 128, dur: 0}}, d.calls)
}

func TestEncode14(t *testing.T) {
	for _, v := range []uint16{0, 1, 127, 128, 255, 440, 1000, Max14} {
		lsb, msb := Encode14(v)
		require.Less(t, lsb, byte(0x80))
		require.Less(t, msb, byte(0x80))
		assert.Equal(t, v, Decode14(lsb, msb), "value %d", v)
	}

	lsb, msb := Encode14(0xFFFF)
	assert.Equal(t, uint16(Max14), Decode14(lsb, msb))
}

func TestHandleToneShortVectorIsIgnored(t *testing.T) {
	inputs := [][]byte{
		nil,
		{},
		{10},
		{10, 0x7F, 0x01},
		{10, 0x7F, 0x01, 0x74},
	}
	for _, argv := range inputs {
		d := &fakeDriver{err: errors.New("must not be called")}
		require.NoError(t, HandleTone(d, argv))
		assert.Empty(t, d.calls, "argv=%v", argv)
	}
}

func TestHandleToneZeroFrequencyStops(t *testing.T) {
	d := &fakeDriver{}
	require.NoError(t, HandleTone(d, []byte{10, 0, 0, 0x74, 0x03}))
	require.Len(t, d.calls, 1)
	assert.Equal(t, call{op: "notone", pin: 10}, d.calls[0])
}

func TestHandleToneStartsTone(t *testing.T) {
	d := &fakeDriver{}
	// 440 Hz = 0x38 | 0x03<<7, 500 ms = 0x74 | 0x03<<7.
	require.NoError(t, HandleTone(d, []byte{10, 0x38, 0x03, 0x74, 0x03}))
	require.Len(t, d.calls, 1)
	assert.Equal(t, call{op: "tone", pin: 10, freq: 440, dur: 500 * time.Millisecond}, d.calls[0])
}

func TestHandleToneExactDecoding(t *testing.T) {
	d := &fakeDriver{}
	require.NoError(t, HandleTone(d, []byte{3, 0x7F, 0x01, 0x00, 0x01}))
	require.Len(t, d.calls, 1)
	assert.Equal(t, uint16(255), d.calls[0].freq)
	assert.Equal(t, 128*time.Millisecond, d.calls[0].dur)
}

func TestHandleToneIgnoresTrailingBytes(t *testing.T) {
	d := &fakeDriver{}
	require.NoError(t, HandleTone(d, []byte{7, 0x01, 0x00, 0x00, 0x00, 0x55, 0x66}))
	require.Len(t, d.calls, 1)
	assert.Equal(t, call{op: "tone", pin: 7, freq: 1}, d.calls[0])
}

func TestHandleToneReturnsDriverError(t *testing.T) {
	boom := errors.New("pwm busy")
	d := &fakeDriver{err: boom}
	err := HandleTone(d, []byte{10, 0x38, 0x03, 0, 0})
	assert.ErrorIs(t, err, boom)
}

func TestHandleToneNilDriver(t *testing.T) {
	assert.NoError(t, HandleTone(nil, []byte{10, 0x38, 0x03, 0, 0}))
}

func TestEncodeToneRoundTrip(t *testing.T) {
	req := ToneRequest{Pin: 10, Frequency: 523, Duration: 1000}
	argv := EncodeTone(req)
	require.Len(t, argv, ToneArgc)

	got, ok := DecodeTone(argv)
	require.True(t, ok)
	assert.Equal(t, req, got)
	assert.False(t, got.Silent())
	assert.Equal(t, time.Second, got.DurationTime())
}

func TestToneRequestString(t *testing.T) {
	assert.Equal(t, "notone pin=4", ToneRequest{Pin: 4}.String())
	assert.Equal(t, "tone pin=4 freq=440Hz dur=250ms", ToneRequest{Pin: 4, Frequency: 440, Duration: 250}.String())
}
