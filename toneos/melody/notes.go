// Package melody turns note names and beat lengths into tone commands.
package melody

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Rest is the note name for silence.
const Rest = "REST"

// ErrUnknownNote is returned for note names that are not in scientific pitch
// notation.
var ErrUnknownNote = errors.New("unknown note")

// Scale is the eight-note table used by the keypad, in key order.
var Scale = []string{"C4", "D4", "E4", "F4", "G4", "A4", "B4", "C5"}

// table holds the frequencies the buzzer firmware was tuned against; they
// win over the equal-tempered values.
var table = map[string]uint16{
	"C4": 261, "D4": 294, "E4": 330, "F4": 349,
	"G4": 392, "A4": 440, "B4": 494, "C5": 523,
	Rest: 0,
}

var semitones = map[byte]int{'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11}

// Frequency returns the frequency in Hz for a note name such as "A4", "F#3"
// or "Bb5". Octaves 0-8 are accepted. REST is 0 Hz.
func Frequency(name string) (uint16, error) {
	n := strings.ToUpper(strings.TrimSpace(name))
	if f, ok := table[n]; ok {
		return f, nil
	}
	if len(n) < 2 || len(n) > 3 {
		return 0, fmt.Errorf("%w: %q", ErrUnknownNote, name)
	}

	semi, ok := semitones[n[0]]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownNote, name)
	}
	rest := n[1:]
	if len(rest) == 2 {
		switch rest[0] {
		case '#':
			semi++
		case 'B':
			semi--
		default:
			return 0, fmt.Errorf("%w: %q", ErrUnknownNote, name)
		}
		rest = rest[1:]
	}
	if rest[0] < '0' || rest[0] > '8' {
		return 0, fmt.Errorf("%w: %q", ErrUnknownNote, name)
	}
	octave := int(rest[0] - '0')

	midi := (octave+1)*12 + semi
	hz := 440 * math.Pow(2, float64(midi-69)/12)
	return uint16(math.Round(hz)), nil
}
