package firmata

// Max14 is the largest value carried by a two-byte 7-bit pair.
const Max14 = 0x3FFF

// Decode14 combines a 7-bit little-endian byte pair into a 14-bit value.
//
// The low 7 bits come from lsb, bits 7-13 from msb. The bytes are combined as
// received; a set bit 7 is not stripped.
func Decode14(lsb, msb byte) uint16 {
	return uint16(lsb) | uint16(msb)<<7
}

// Encode14 splits v into a 7-bit little-endian byte pair.
//
// Values above Max14 are clamped so both bytes stay below 0x80.
func Encode14(v uint16) (lsb, msb byte) {
	if v > Max14 {
		v = Max14
	}
	return byte(v & 0x7F), byte((v >> 7) & 0x7F)
}
