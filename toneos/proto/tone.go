package proto

import "encoding/binary"

// ToneAction tells subscribers what a tone command did.
type ToneAction uint8

const (
	ToneStarted ToneAction = iota + 1
	ToneStopped
	ToneFailed
)

func (a ToneAction) String() string {
	switch a {
	case ToneStarted:
		return "start"
	case ToneStopped:
		return "stop"
	case ToneFailed:
		return "fail"
	default:
		return "unknown"
	}
}

// ToneSysexPayload wraps a tone argument vector for MsgToneSysex.
//
// The payload is the vector itself; the tone service applies the sysex length
// rule to it.
func ToneSysexPayload(argv []byte) []byte {
	buf := make([]byte, len(argv))
	copy(buf, argv)
	return buf
}

// ToneSubscribePayload encodes a subscription request.
//
// The request payload is empty; the sender provides an endpoint capability in
// msg.Cap to receive MsgToneEvent updates.
func ToneSubscribePayload() []byte { return nil }

// ToneEventPayload encodes a MsgToneEvent notification.
//
// Layout (little-endian):
//   - u8: action (ToneAction)
//   - u8: pin
//   - u16: frequency in Hz
//   - u16: duration in ms
func ToneEventPayload(action ToneAction, pin uint8, freqHz, durationMs uint16) []byte {
	buf := make([]byte, 6)
	buf[0] = uint8(action)
	buf[1] = pin
	binary.LittleEndian.PutUint16(buf[2:4], freqHz)
	binary.LittleEndian.PutUint16(buf[4:6], durationMs)
	return buf
}

func DecodeToneEventPayload(b []byte) (action ToneAction, pin uint8, freqHz, durationMs uint16, ok bool) {
	if len(b) != 6 {
		return 0, 0, 0, 0, false
	}
	return ToneAction(b[0]), b[1], binary.LittleEndian.Uint16(b[2:4]), binary.LittleEndian.Uint16(b[4:6]), true
}

// ToneSetVolumePayload encodes volume (0..255).
func ToneSetVolumePayload(vol uint8) []byte { return []byte{vol} }

func DecodeToneSetVolumePayload(b []byte) (vol uint8, ok bool) {
	if len(b) != 1 {
		return 0, false
	}
	return b[0], true
}
