package melody

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load decodes and validates a YAML song:
//
//	name: scale
//	bpm: 90
//	gap_ms: 50
//	notes:
//	  - {note: C4, beats: 1}
//	  - {note: REST, beats: 0.5}
func Load(r io.Reader) (Song, error) {
	var s Song
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return Song{}, fmt.Errorf("decode song: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Song{}, err
	}
	return s, nil
}

// LoadFile reads a song from path. An empty name in the file defaults to the
// file's base name.
func LoadFile(path string) (Song, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Song{}, fmt.Errorf("read song: %w", err)
	}
	s, err := Load(bytes.NewReader(b))
	if err != nil {
		return Song{}, fmt.Errorf("%s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}

// Resolve returns a built-in song by name, or loads ref as a YAML file. A bare
// name is also looked up as <dir>/<name>.yaml when dir is set.
func Resolve(ref, dir string) (Song, error) {
	if s, ok := Builtin(ref); ok {
		return s, nil
	}
	if strings.HasSuffix(ref, ".yaml") || strings.HasSuffix(ref, ".yml") || dir == "" {
		return LoadFile(ref)
	}
	return LoadFile(filepath.Join(dir, ref+".yaml"))
}

// Encode writes s as YAML.
func Encode(w io.Writer, s Song) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return err
	}
	return enc.Close()
}
