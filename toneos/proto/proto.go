// Package proto defines the IPC message kinds and payload layouts shared by
// tonefirmata services and clients.
package proto

// Kind identifies the message type carried in kernel.Message.Kind.
type Kind uint16

const (
	MsgLogLine Kind = iota + 1
	MsgError
	MsgToneSysex
	MsgToneSubscribe
	MsgToneEvent
	MsgToneSetVolume
	MsgConsoleWrite
	MsgConsoleClear
)

// ErrCode is a generic error category for MsgError responses.
type ErrCode uint16

const (
	ErrUnknown ErrCode = iota
	ErrBadMessage
	ErrNotFound
	ErrBusy
	ErrUnsupported
	ErrInternal
)

func (c ErrCode) String() string {
	switch c {
	case ErrUnknown:
		return "unknown"
	case ErrBadMessage:
		return "bad_message"
	case ErrNotFound:
		return "not_found"
	case ErrBusy:
		return "busy"
	case ErrUnsupported:
		return "unsupported"
	case ErrInternal:
		return "internal"
	default:
		return "unknown"
	}
}

func (k Kind) String() string {
	switch k {
	case MsgLogLine:
		return "log_line"
	case MsgError:
		return "error"
	case MsgToneSysex:
		return "tone_sysex"
	case MsgToneSubscribe:
		return "tone_subscribe"
	case MsgToneEvent:
		return "tone_event"
	case MsgToneSetVolume:
		return "tone_set_volume"
	case MsgConsoleWrite:
		return "console_write"
	case MsgConsoleClear:
		return "console_clear"
	default:
		return "unknown"
	}
}
