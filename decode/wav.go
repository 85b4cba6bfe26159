// Package decode adapts third-party audio decoders to synthcore.Decoder.
package decode

import (
	"bytes"
	"fmt"

	"github.com/go-audio/wav"
)

// WAV decodes RIFF/WAVE files via github.com/go-audio/wav into interleaved
// float32 PCM in [-1, 1].
type WAV struct{}

func (WAV) Decode(data []byte) ([]float32, int, int, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return nil, 0, 0, fmt.Errorf("not a valid WAV file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, 0, fmt.Errorf("decode PCM: %w", err)
	}

	channels := buf.Format.NumChannels
	rate := buf.Format.SampleRate
	bitDepth := buf.SourceBitDepth
	if bitDepth == 0 {
		bitDepth = 16
	}
	scale := float32(int(1) << (bitDepth - 1))

	samples := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = float32(v) / scale
	}
	return samples, channels, rate, nil
}
