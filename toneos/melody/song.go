package melody

import (
	"fmt"

	"tonefirmata/toneos/firmata"
)

// Step is one note of a song. Beats may be fractional.
type Step struct {
	Note  string  `yaml:"note"`
	Beats float64 `yaml:"beats"`
}

// Song is a named sequence of steps played at a fixed tempo.
type Song struct {
	Name  string `yaml:"name"`
	BPM   int    `yaml:"bpm"`
	GapMs int    `yaml:"gap_ms"`
	Notes []Step `yaml:"notes"`
}

// BeatMs returns the length of one beat in milliseconds.
func BeatMs(bpm int) float64 {
	if bpm <= 0 {
		return 0
	}
	return 60000 / float64(bpm)
}

// DurationMs returns the length of beats at bpm, truncated to whole ms.
func DurationMs(beats float64, bpm int) uint16 {
	ms := beats * BeatMs(bpm)
	if ms <= 0 {
		return 0
	}
	if ms > firmata.Max14 {
		return firmata.Max14
	}
	return uint16(ms)
}

// Validate checks the tempo and every step.
func (s Song) Validate() error {
	if s.BPM <= 0 {
		return fmt.Errorf("song %q: bpm must be positive, got %d", s.Name, s.BPM)
	}
	if s.GapMs < 0 {
		return fmt.Errorf("song %q: negative gap_ms", s.Name)
	}
	if len(s.Notes) == 0 {
		return fmt.Errorf("song %q: no notes", s.Name)
	}
	for i, st := range s.Notes {
		if _, err := Frequency(st.Note); err != nil {
			return fmt.Errorf("song %q step %d: %w", s.Name, i+1, err)
		}
		if !(st.Beats > 0) {
			return fmt.Errorf("song %q step %d: beats must be positive", s.Name, i+1)
		}
		if st.Beats*BeatMs(s.BPM) > firmata.Max14 {
			return fmt.Errorf("song %q step %d: note longer than %d ms", s.Name, i+1, firmata.Max14)
		}
	}
	return nil
}

// TotalMs returns the playing time of the song including gaps.
func (s Song) TotalMs() int {
	total := 0
	for _, st := range s.Notes {
		total += int(DurationMs(st.Beats, s.BPM)) + s.GapMs
	}
	return total
}

func steps(beats float64, notes ...string) []Step {
	out := make([]Step, len(notes))
	for i, n := range notes {
		out[i] = Step{Note: n, Beats: beats}
	}
	return out
}

func phrase(notes ...string) []Step {
	out := steps(1, notes[:len(notes)-1]...)
	return append(out, Step{Note: notes[len(notes)-1], Beats: 2})
}

var builtins = map[string]Song{
	"twinkle": {
		Name: "twinkle",
		BPM:  120,
		Notes: concat(
			phrase("C4", "C4", "G4", "G4", "A4", "A4", "G4"),
			phrase("F4", "F4", "E4", "E4", "D4", "D4", "C4"),
			phrase("G4", "G4", "F4", "F4", "E4", "E4", "D4"),
			phrase("G4", "G4", "F4", "F4", "E4", "E4", "D4"),
			phrase("C4", "C4", "G4", "G4", "A4", "A4", "G4"),
			phrase("F4", "F4", "E4", "E4", "D4", "D4", "C4"),
		),
	},
	"intro": {
		Name:  "intro",
		BPM:   120,
		GapMs: 200,
		Notes: steps(0.5, "C4", "E4", "G4", "B4"),
	},
}

func concat(parts ...[]Step) []Step {
	var out []Step
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// Builtin returns a copy of a built-in song.
func Builtin(name string) (Song, bool) {
	s, ok := builtins[name]
	if !ok {
		return Song{}, false
	}
	s.Notes = append([]Step(nil), s.Notes...)
	return s, true
}

// Builtins lists the built-in song names in a stable order.
func Builtins() []string {
	return []string{"intro", "twinkle"}
}
