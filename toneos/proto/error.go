package proto

import "encoding/binary"

// ErrorPayload encodes a generic error response payload.
//
// Layout (little-endian):
//   - u16: code
//   - u16: ref kind (the request kind that failed)
//   - bytes: optional detail (service-defined)
//
// Detail is truncated so the payload fits maxLen bytes when maxLen > 0.
func ErrorPayload(code ErrCode, ref Kind, detail []byte, maxLen int) []byte {
	if maxLen > 0 && 4+len(detail) > maxLen {
		if maxLen < 4 {
			maxLen = 4
		}
		detail = detail[:maxLen-4]
	}
	buf := make([]byte, 4+len(detail))
	binary.LittleEndian.PutUint16(buf[0:2], uint16(code))
	binary.LittleEndian.PutUint16(buf[2:4], uint16(ref))
	copy(buf[4:], detail)
	return buf
}

// DecodeErrorPayload decodes an ErrorPayload.
func DecodeErrorPayload(payload []byte) (code ErrCode, ref Kind, detail []byte, ok bool) {
	if len(payload) < 4 {
		return 0, 0, nil, false
	}
	code = ErrCode(binary.LittleEndian.Uint16(payload[0:2]))
	ref = Kind(binary.LittleEndian.Uint16(payload[2:4]))
	return code, ref, payload[4:], true
}
