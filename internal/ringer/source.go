package ringer

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// toneReader is an endless PCM stream: either a generated sine tone or
// a looped sample buffer. Signed 16-bit little-endian mono.
type toneReader struct {
	fill func(p []byte) int
}

func (r *toneReader) Read(p []byte) (int, error) {
	return r.fill(p), nil
}

func newSineReader(sampleRate int, freq float64) *toneReader {
	var phase float64
	step := 2 * math.Pi * freq / float64(sampleRate)
	const amp = 0.3 * math.MaxInt16

	return &toneReader{fill: func(p []byte) int {
		n := len(p) / 2 * 2
		for i := 0; i < n; i += 2 {
			sample := int16(amp * math.Sin(phase))
			binary.LittleEndian.PutUint16(p[i:], uint16(sample))
			phase += step
			if phase > 2*math.Pi {
				phase -= 2 * math.Pi
			}
		}
		return n
	}}
}

func newLoopReader(pcm []byte) *toneReader {
	var pos int
	return &toneReader{fill: func(p []byte) int {
		for i := range p {
			p[i] = pcm[pos]
			pos = (pos + 1) % len(pcm)
		}
		return len(p)
	}}
}

// pcmFromWAV extracts the sample data of a 16-bit mono WAV file. The
// container is only walked chunk by chunk, nothing is resampled: a rate
// mismatch with the audio context is rejected.
func pcmFromWAV(data []byte, wantRate int) ([]byte, error) {
	r := bytes.NewReader(data)

	header := make([]byte, 12)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("ringer - pcmFromWAV: %w", err)
	}
	if string(header[:4]) != "RIFF" || string(header[8:]) != "WAVE" {
		return nil, fmt.Errorf("ringer - pcmFromWAV: not a WAV file")
	}

	var sampleRate uint32
	var channels, bitDepth uint16

	for {
		chunk := make([]byte, 8)
		if _, err := io.ReadFull(r, chunk); err != nil {
			return nil, fmt.Errorf("ringer - pcmFromWAV: missing data chunk")
		}
		size := binary.LittleEndian.Uint32(chunk[4:])

		switch string(chunk[:4]) {
		case "fmt ":
			fmtChunk := make([]byte, size)
			if _, err := io.ReadFull(r, fmtChunk); err != nil {
				return nil, fmt.Errorf("ringer - pcmFromWAV: %w", err)
			}
			channels = binary.LittleEndian.Uint16(fmtChunk[2:])
			sampleRate = binary.LittleEndian.Uint32(fmtChunk[4:])
			bitDepth = binary.LittleEndian.Uint16(fmtChunk[14:])
		case "data":
			if channels != 1 || bitDepth != 16 {
				return nil, fmt.Errorf("ringer - pcmFromWAV: want 16-bit mono, got %d-bit %d-channel", bitDepth, channels)
			}
			if int(sampleRate) != wantRate {
				return nil, fmt.Errorf("ringer - pcmFromWAV: sample rate %d, context wants %d", sampleRate, wantRate)
			}
			pcm := make([]byte, size)
			if _, err := io.ReadFull(r, pcm); err != nil {
				return nil, fmt.Errorf("ringer - pcmFromWAV: %w", err)
			}
			if len(pcm) == 0 {
				return nil, fmt.Errorf("ringer - pcmFromWAV: empty data chunk")
			}
			return pcm, nil
		default:
			if _, err := r.Seek(int64(size), io.SeekCurrent); err != nil {
				return nil, fmt.Errorf("ringer - pcmFromWAV: %w", err)
			}
		}
	}
}
