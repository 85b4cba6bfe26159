package decode

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// buildWAV assembles a minimal mono 16-bit PCM RIFF/WAVE file from samples.
func buildWAV(sampleRate int, samples []int16) []byte {
	var data bytes.Buffer
	for _, s := range samples {
		binary.Write(&data, binary.LittleEndian, s)
	}
	dataBytes := data.Bytes()

	const numChannels = 1
	const bitsPerSample = 16
	byteRate := sampleRate * numChannels * bitsPerSample / 8
	blockAlign := numChannels * bitsPerSample / 8

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(dataBytes)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(numChannels))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(bitsPerSample))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(dataBytes)))
	buf.Write(dataBytes)

	return buf.Bytes()
}

func TestWAV_DecodeValidFileRoundTripsPCMValues(t *testing.T) {
	raw := buildWAV(22050, []int16{16384, -16384, 0})
	samples, channels, rate, err := WAV{}.Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if channels != 1 || rate != 22050 {
		t.Fatalf("channels=%d rate=%d, want 1,22050", channels, rate)
	}
	if len(samples) != 3 {
		t.Fatalf("len(samples) = %d, want 3", len(samples))
	}
	if samples[0] <= 0.49 || samples[0] >= 0.51 {
		t.Errorf("samples[0] = %v, want ~0.5", samples[0])
	}
	if samples[1] >= -0.49 || samples[1] <= -0.51 {
		t.Errorf("samples[1] = %v, want ~-0.5", samples[1])
	}
	if samples[2] != 0 {
		t.Errorf("samples[2] = %v, want 0", samples[2])
	}
}

func TestWAV_DecodeRejectsNonWAVBytes(t *testing.T) {
	_, _, _, err := WAV{}.Decode([]byte("not a wav file at all"))
	if err == nil {
		t.Fatal("expected an error decoding non-WAV bytes")
	}
}

func TestWAV_DecodeRejectsTruncatedFile(t *testing.T) {
	raw := buildWAV(44100, []int16{1, 2, 3})
	truncated := raw[:20] // cuts off mid-"fmt " chunk
	_, _, _, err := WAV{}.Decode(truncated)
	if err == nil {
		t.Fatal("expected an error decoding a truncated WAV file")
	}
}
