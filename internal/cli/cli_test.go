package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tonefirmata/internal/wav"
	"tonefirmata/toneos/melody"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestDecodeCmd(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"start", []string{"decode", "0a", "38", "03", "74", "03"}, "tone pin=10 freq=440Hz dur=500ms\n"},
		{"packed", []string{"decode", "0x0a3803", "7403"}, "tone pin=10 freq=440Hz dur=500ms\n"},
		{"commas", []string{"decode", "0a,7f,01,00,01"}, "tone pin=10 freq=255Hz dur=128ms\n"},
		{"stop", []string{"decode", "0a", "00", "00", "74", "03"}, "notone pin=10\n"},
		{"short", []string{"decode", "0a", "38", "03"}, "ignored: 3 bytes, need 5\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestDecodeCmdBadInput(t *testing.T) {
	_, err := execute(t, "decode", "zz")
	assert.ErrorContains(t, err, "bad byte")
}

func TestParseBytes(t *testing.T) {
	b, err := ParseBytes([]string{"0A", "0x7f", "0102"})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x0a, 0x7f, 0x01, 0x02}, b)

	_, err = ParseBytes([]string{"123"})
	assert.ErrorContains(t, err, "bad hex")
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "tonefirmata dev")
}

func TestMelodyList(t *testing.T) {
	out, err := execute(t, "melody", "--list")
	require.NoError(t, err)
	assert.Contains(t, out, "intro")
	assert.Contains(t, out, "twinkle")
	assert.Contains(t, out, "42 notes")
}

func TestMelodyDump(t *testing.T) {
	out, err := execute(t, "melody", "intro", "--dump")
	require.NoError(t, err)
	assert.Contains(t, out, "name: intro")
	assert.Contains(t, out, "gap_ms: 200")
}

func TestMelodyRequiresSong(t *testing.T) {
	_, err := execute(t, "melody")
	assert.ErrorContains(t, err, "no song")
}

func TestPlayRejectsWideValues(t *testing.T) {
	_, err := execute(t, "play", "--freq", "20000")
	assert.ErrorContains(t, err, "14 bits")
}

func TestInvalidConfigFails(t *testing.T) {
	_, err := execute(t, "decode", "--pin", "200", "0a")
	assert.ErrorContains(t, err, "pin")
}

func TestRenderCmd(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "intro.wav")
	_, err := execute(t, "render", "intro", "--out", out, "--sample-rate", "8000")
	require.NoError(t, err)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	wi, err := wav.Parse(f)
	require.NoError(t, err)
	assert.Equal(t, uint32(8000), wi.SampleRate)
	// Four 250 ms notes, each followed by a 200 ms gap.
	assert.Equal(t, 4*(2000+1600), wi.Samples())
}

func TestRenderSongRest(t *testing.T) {
	song := melody.Song{Name: "r", BPM: 60, GapMs: 100, Notes: []melody.Step{{Note: "REST", Beats: 0.5}, {Note: "A4", Beats: 0.25}}}
	samples := RenderSong(song, 1000)
	require.Len(t, samples, 500+250+100)
	assert.Equal(t, make([]int16, 500), samples[:500])
}

func TestVerifyWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, wav.WriteMono16(f, 8000, make([]int16, 80)))
	require.NoError(t, f.Close())

	wi, err := verifyWAV(path, 8000, 80)
	require.NoError(t, err)
	assert.Equal(t, 80, wi.Samples())

	_, err = verifyWAV(path, 8000, 81)
	assert.ErrorContains(t, err, "want 8000 Hz mono 16 bit 81 samples")

	require.NoError(t, os.WriteFile(path, []byte("not a wav file"), 0o644))
	_, err = verifyWAV(path, 8000, 80)
	assert.ErrorContains(t, err, "verify")
}
