package melody

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrequency(t *testing.T) {
	tests := []struct {
		name string
		want uint16
	}{
		{"C4", 261},
		{"a4", 440},
		{"C5", 523},
		{"REST", 0},
		{"rest", 0},
		{"A5", 880},
		{"A0", 28},
		{"F#4", 370},
		{"Gb4", 370},
		{"C8", 4186},
		{" E4 ", 330},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Frequency(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFrequencyUnknown(t *testing.T) {
	for _, name := range []string{"", "H4", "C9", "C", "C#", "Cx4", "C44", "do"} {
		_, err := Frequency(name)
		assert.ErrorIs(t, err, ErrUnknownNote, name)
	}
}

func TestDurationMs(t *testing.T) {
	assert.Equal(t, uint16(500), DurationMs(1, 120))
	assert.Equal(t, uint16(250), DurationMs(0.5, 120))
	assert.Equal(t, uint16(50), DurationMs(0.1, 120))
	assert.Equal(t, uint16(0), DurationMs(1, 0))
	assert.Equal(t, uint16(0x3FFF), DurationMs(100, 60))
}

func TestBuiltins(t *testing.T) {
	for _, name := range Builtins() {
		s, ok := Builtin(name)
		require.True(t, ok, name)
		require.NoError(t, s.Validate(), name)
	}

	twinkle, _ := Builtin("twinkle")
	assert.Len(t, twinkle.Notes, 42)
	assert.Equal(t, Step{Note: "G4", Beats: 2}, twinkle.Notes[6])
	assert.Equal(t, 24000, twinkle.TotalMs())

	intro, _ := Builtin("intro")
	assert.Equal(t, []Step{{"C4", 0.5}, {"E4", 0.5}, {"G4", 0.5}, {"B4", 0.5}}, intro.Notes)
	assert.Equal(t, 4*(250+200), intro.TotalMs())

	// Builtin hands out copies.
	intro.Notes[0].Note = "D4"
	again, _ := Builtin("intro")
	assert.Equal(t, "C4", again.Notes[0].Note)

	_, ok := Builtin("nope")
	assert.False(t, ok)
}

func TestValidate(t *testing.T) {
	base := Song{Name: "s", BPM: 60, Notes: []Step{{"C4", 1}}}
	require.NoError(t, base.Validate())

	bad := base
	bad.BPM = 0
	assert.ErrorContains(t, bad.Validate(), "bpm")

	bad = base
	bad.Notes = nil
	assert.ErrorContains(t, bad.Validate(), "no notes")

	bad = base
	bad.Notes = []Step{{"C4", 1}, {"X4", 1}}
	err := bad.Validate()
	assert.ErrorIs(t, err, ErrUnknownNote)
	assert.ErrorContains(t, err, "step 2")

	bad = base
	bad.Notes = []Step{{"C4", 0}}
	assert.ErrorContains(t, bad.Validate(), "beats")

	bad = base
	bad.Notes = []Step{{"C4", 17}}
	assert.ErrorContains(t, bad.Validate(), "longer than")

	bad = base
	bad.Notes = []Step{{"C4", math.NaN()}}
	assert.ErrorContains(t, bad.Validate(), "beats")
}

func TestLoadRejectsNaNBeats(t *testing.T) {
	_, err := Load(strings.NewReader("bpm: 90\nnotes: [{note: C4, beats: .nan}]\n"))
	assert.ErrorContains(t, err, "beats must be positive")
}

const scaleYAML = `
name: scale
bpm: 90
gap_ms: 50
notes:
  - {note: C4, beats: 1}
  - {note: REST, beats: 0.5}
  - {note: C5, beats: 2}
`

func TestLoad(t *testing.T) {
	s, err := Load(strings.NewReader(scaleYAML))
	require.NoError(t, err)
	assert.Equal(t, Song{
		Name:  "scale",
		BPM:   90,
		GapMs: 50,
		Notes: []Step{{"C4", 1}, {"REST", 0.5}, {"C5", 2}},
	}, s)

	_, err = Load(strings.NewReader("bpm: 90\ntempo: 3\nnotes: [{note: C4, beats: 1}]\n"))
	assert.ErrorContains(t, err, "decode song")

	_, err = Load(strings.NewReader("bpm: 90\nnotes: [{note: Q4, beats: 1}]\n"))
	assert.ErrorIs(t, err, ErrUnknownNote)
}

func TestLoadFileAndResolve(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lullaby.yaml")
	require.NoError(t, os.WriteFile(path, []byte("bpm: 60\nnotes:\n  - {note: A4, beats: 1}\n"), 0o644))

	s, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "lullaby", s.Name)

	s, err = Resolve("lullaby", dir)
	require.NoError(t, err)
	assert.Equal(t, []Step{{"A4", 1}}, s.Notes)

	s, err = Resolve("twinkle", dir)
	require.NoError(t, err)
	assert.Equal(t, "twinkle", s.Name)

	_, err = Resolve("missing", dir)
	assert.ErrorContains(t, err, "read song")
}

func TestEncodeLoads(t *testing.T) {
	intro, _ := Builtin("intro")
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, intro))

	got, err := Load(&buf)
	require.NoError(t, err)
	assert.Equal(t, intro, got)
}
