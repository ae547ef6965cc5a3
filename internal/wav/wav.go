// Package wav reads and writes 16-bit PCM WAV files.
package wav

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Info describes the audio stream of a WAV file.
type Info struct {
	SampleRate uint32
	Channels   uint16
	Bits       uint16
	DataOff    int64
	DataSize   uint32
}

// Samples returns the number of sample frames in the data chunk.
func (wi Info) Samples() int {
	frame := int(wi.Channels) * int(wi.Bits/8)
	if frame == 0 {
		return 0
	}
	return int(wi.DataSize) / frame
}

// WriteMono16 writes a complete mono 16-bit PCM file.
func WriteMono16(w io.Writer, sampleRate uint32, samples []int16) error {
	dataBytes := uint32(len(samples) * 2)
	if err := WriteHeader(w, sampleRate, 1, 16, dataBytes); err != nil {
		return err
	}
	buf := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[2*i:], uint16(s))
	}
	_, err := w.Write(buf)
	return err
}

// WriteHeader writes a canonical 44-byte PCM header.
func WriteHeader(w io.Writer, sampleRate uint32, channels uint16, bits uint16, dataBytes uint32) error {
	blockAlign := channels * (bits / 8)
	byteRate := sampleRate * uint32(blockAlign)
	riffSize := 4 + (8 + 16) + (8 + dataBytes)

	var hdr [44]byte
	copy(hdr[0:4], "RIFF")
	binary.LittleEndian.PutUint32(hdr[4:8], riffSize)
	copy(hdr[8:12], "WAVE")

	copy(hdr[12:16], "fmt ")
	binary.LittleEndian.PutUint32(hdr[16:20], 16)
	binary.LittleEndian.PutUint16(hdr[20:22], 1)
	binary.LittleEndian.PutUint16(hdr[22:24], channels)
	binary.LittleEndian.PutUint32(hdr[24:28], sampleRate)
	binary.LittleEndian.PutUint32(hdr[28:32], byteRate)
	binary.LittleEndian.PutUint16(hdr[32:34], blockAlign)
	binary.LittleEndian.PutUint16(hdr[34:36], bits)

	copy(hdr[36:40], "data")
	binary.LittleEndian.PutUint32(hdr[40:44], dataBytes)

	_, err := w.Write(hdr[:])
	return err
}

// Parse walks the RIFF chunks of r and returns the PCM format and the data
// chunk location. Unknown chunks are skipped.
func Parse(r io.ReadSeeker) (Info, error) {
	var hdr [12]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return Info{}, err
	}
	if string(hdr[0:4]) != "RIFF" || string(hdr[8:12]) != "WAVE" {
		return Info{}, errors.New("wav: bad header")
	}

	var (
		wi        Info
		foundFmt  bool
		foundData bool
	)
	for {
		var ch [8]byte
		_, err := io.ReadFull(r, ch[:])
		if err == io.EOF {
			break
		}
		if err != nil {
			return Info{}, err
		}
		id := string(ch[0:4])
		sz := binary.LittleEndian.Uint32(ch[4:8])

		switch id {
		case "fmt ":
			if sz < 16 {
				return Info{}, errors.New("wav: short fmt chunk")
			}
			buf := make([]byte, sz)
			if _, err := io.ReadFull(r, buf); err != nil {
				return Info{}, err
			}
			if format := binary.LittleEndian.Uint16(buf[0:2]); format != 1 {
				return Info{}, fmt.Errorf("wav: only PCM is supported (format=%d)", format)
			}
			wi.Channels = binary.LittleEndian.Uint16(buf[2:4])
			wi.SampleRate = binary.LittleEndian.Uint32(buf[4:8])
			wi.Bits = binary.LittleEndian.Uint16(buf[14:16])
			foundFmt = true

		case "data":
			off, err := r.Seek(0, io.SeekCurrent)
			if err != nil {
				return Info{}, err
			}
			wi.DataOff = off
			wi.DataSize = sz
			if _, err := r.Seek(int64(sz), io.SeekCurrent); err != nil {
				return Info{}, err
			}
			foundData = true

		default:
			if _, err := r.Seek(int64(sz), io.SeekCurrent); err != nil {
				return Info{}, err
			}
		}

		if sz%2 == 1 {
			if _, err := r.Seek(1, io.SeekCurrent); err != nil {
				return Info{}, err
			}
		}
	}

	if !foundFmt || !foundData {
		return Info{}, errors.New("wav: missing fmt or data chunk")
	}
	return wi, nil
}
