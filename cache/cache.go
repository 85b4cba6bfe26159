// Package cache implements the on-disk sound cache file format: a
// per-asset record keyed by source path inside a /cache/local/sound
// directory, used to skip re-decoding unchanged assets across runs.
package cache

import (
	"encoding/binary"
	"fmt"
)

const (
	formatVersion      = 0
	maxBufferSize      = 10_000_000
	usedFlagBit        = 1 << 0
	headerSize         = 24
)

// Entry is one decoded cache record.
type Entry struct {
	ModTime        int64 // unix microseconds, or equivalent VFS timestamp
	Used           bool
	BytesPerSample int
	Channels       int
	SampleCount    int
	SampleRate     int
	PCM            []byte
}

// Encode serializes e into the on-disk cache record layout.
func Encode(e Entry) []byte {
	out := make([]byte, headerSize+len(e.PCM))
	binary.LittleEndian.PutUint64(out[0:], uint64(e.ModTime))
	out[8] = formatVersion
	if e.Used {
		out[9] = usedFlagBit
	}
	out[10] = byte(e.BytesPerSample)
	out[11] = byte(e.Channels)
	binary.LittleEndian.PutUint32(out[12:], uint32(e.SampleCount))
	binary.LittleEndian.PutUint32(out[16:], uint32(e.SampleRate))
	binary.LittleEndian.PutUint32(out[20:], uint32(len(e.PCM)))
	copy(out[headerSize:], e.PCM)
	return out
}

// Decode parses raw into an Entry, validating the fields a reader must
// check before trusting a cache file: format version, and a sane buffer
// size. Callers are additionally responsible for
// comparing ModTime/BytesPerSample/Channels/SampleRate against the live
// source file and decoder before accepting the entry (done by the caller,
// since only it knows those expected values).
func Decode(raw []byte) (Entry, error) {
	var e Entry
	if len(raw) < headerSize {
		return e, fmt.Errorf("cache: truncated header (%d bytes)", len(raw))
	}
	version := raw[8]
	if version != formatVersion {
		return e, fmt.Errorf("cache: unsupported version %d", version)
	}
	bufSize := int(binary.LittleEndian.Uint32(raw[20:]))
	if bufSize > maxBufferSize {
		return e, fmt.Errorf("cache: corrupt buffer size %d", bufSize)
	}
	if len(raw) < headerSize+bufSize {
		return e, fmt.Errorf("cache: truncated PCM payload")
	}

	e.ModTime = int64(binary.LittleEndian.Uint64(raw[0:]))
	e.Used = raw[9]&usedFlagBit != 0
	e.BytesPerSample = int(raw[10])
	e.Channels = int(raw[11])
	e.SampleCount = int(binary.LittleEndian.Uint32(raw[12:]))
	e.SampleRate = int(binary.LittleEndian.Uint32(raw[16:]))
	if bufSize > 0 {
		e.PCM = append([]byte(nil), raw[headerSize:headerSize+bufSize]...)
	}
	return e, nil
}

// Valid reports whether a decoded entry still matches the live source
// file's modification time and the decoder's reported parameters - the
// four invalidation conditions checked beyond format version and buffer
// size.
func Valid(e Entry, sourceModTime int64, bytesPerSample, channels, sampleRate int) bool {
	return e.ModTime == sourceModTime &&
		e.BytesPerSample == bytesPerSample &&
		e.Channels == channels &&
		e.SampleRate == sampleRate
}
