// Package firmata implements the tone sysex command of a Firmata-style control
// protocol: decoding the argument vector and driving a tone output.
package firmata

import (
	"fmt"
	"time"
)

// ToneCommand is the sysex command byte the tone handler is registered under.
const ToneCommand byte = 0x7E

// ToneArgc is the minimum argument count of a tone command.
//
// Layout:
//   - u8: pin
//   - u7,u7: frequency in Hz (little-endian 7-bit pair)
//   - u7,u7: duration in ms (little-endian 7-bit pair, 0 = until stopped)
const ToneArgc = 5

// ToneDriver is the platform tone primitive the handler forwards to.
type ToneDriver interface {
	Tone(pin uint8, freqHz uint16, d time.Duration) error
	NoTone(pin uint8) error
}

// ToneRequest is a decoded tone command.
type ToneRequest struct {
	Pin       uint8
	Frequency uint16
	Duration  uint16
}

// Silent reports whether the request stops the tone instead of starting one.
func (r ToneRequest) Silent() bool { return r.Frequency == 0 }

// DurationTime returns the requested duration as a time.Duration.
func (r ToneRequest) DurationTime() time.Duration {
	return time.Duration(r.Duration) * time.Millisecond
}

func (r ToneRequest) String() string {
	if r.Silent() {
		return fmt.Sprintf("notone pin=%d", r.Pin)
	}
	return fmt.Sprintf("tone pin=%d freq=%dHz dur=%dms", r.Pin, r.Frequency, r.Duration)
}

// DecodeTone decodes a tone argument vector.
//
// It returns ok=false when argv holds fewer than ToneArgc bytes. Extra bytes are
// ignored.
func DecodeTone(argv []byte) (req ToneRequest, ok bool) {
	if len(argv) < ToneArgc {
		return ToneRequest{}, false
	}
	return ToneRequest{
		Pin:       argv[0],
		Frequency: Decode14(argv[1], argv[2]),
		Duration:  Decode14(argv[3], argv[4]),
	}, true
}

// EncodeTone builds the argument vector for req.
func EncodeTone(req ToneRequest) []byte {
	buf := make([]byte, ToneArgc)
	buf[0] = req.Pin
	buf[1], buf[2] = Encode14(req.Frequency)
	buf[3], buf[4] = Encode14(req.Duration)
	return buf
}

// Apply forwards a decoded request to drv: a positive frequency starts a tone,
// zero stops it.
func Apply(drv ToneDriver, req ToneRequest) error {
	if drv == nil {
		return nil
	}
	if req.Frequency > 0 {
		return drv.Tone(req.Pin, req.Frequency, req.DurationTime())
	}
	return drv.NoTone(req.Pin)
}

// HandleTone is the tone sysex handler.
//
// Truncated vectors are ignored without touching the driver. No range checks are
// made on pin or frequency; the only error returned is the driver's own.
func HandleTone(drv ToneDriver, argv []byte) error {
	req, ok := DecodeTone(argv)
	if !ok {
		return nil
	}
	return Apply(drv, req)
}
