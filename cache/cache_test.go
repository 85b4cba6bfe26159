package cache

import "testing"

func TestEncodeDecode_RoundTripsAllFields(t *testing.T) {
	e := Entry{
		ModTime: 1_700_000_000_000_000,
		Used:    true,
		BytesPerSample: 2, Channels: 2, SampleCount: 4, SampleRate: 44100,
		PCM: []byte{1, 2, 3, 4, 5, 6, 7, 8},
	}
	got, err := Decode(Encode(e))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.ModTime != e.ModTime || got.Used != e.Used || got.BytesPerSample != e.BytesPerSample ||
		got.Channels != e.Channels || got.SampleCount != e.SampleCount || got.SampleRate != e.SampleRate {
		t.Fatalf("round-tripped scalar fields = %+v, want %+v", got, e)
	}
	if len(got.PCM) != len(e.PCM) {
		t.Fatalf("len(PCM) = %d, want %d", len(got.PCM), len(e.PCM))
	}
	for i := range e.PCM {
		if got.PCM[i] != e.PCM[i] {
			t.Fatalf("PCM[%d] = %d, want %d", i, got.PCM[i], e.PCM[i])
		}
	}
}

func TestEncodeDecode_UsedFlagFalseRoundTrips(t *testing.T) {
	e := Entry{ModTime: 1, Used: false, PCM: []byte{9}}
	got, err := Decode(Encode(e))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Used {
		t.Error("Used = true, want false")
	}
}

func TestDecode_RejectsTruncatedHeader(t *testing.T) {
	_, err := Decode(make([]byte, 10))
	if err == nil {
		t.Fatal("expected error for a header shorter than 24 bytes")
	}
}

func TestDecode_RejectsWrongVersion(t *testing.T) {
	raw := Encode(Entry{})
	raw[8] = 99
	if _, err := Decode(raw); err == nil {
		t.Fatal("expected error for an unsupported format version")
	}
}

func TestDecode_RejectsCorruptOversizedBufferLength(t *testing.T) {
	raw := Encode(Entry{PCM: []byte{1, 2, 3}})
	// Corrupt the declared PCM length field to something absurd.
	raw[20], raw[21], raw[22], raw[23] = 0xFF, 0xFF, 0xFF, 0x7F
	if _, err := Decode(raw); err == nil {
		t.Fatal("expected error for a corrupt oversized buffer-size field")
	}
}

func TestDecode_RejectsTruncatedPCMPayload(t *testing.T) {
	raw := Encode(Entry{PCM: []byte{1, 2, 3, 4}})
	truncated := raw[:len(raw)-2]
	if _, err := Decode(truncated); err == nil {
		t.Fatal("expected error when declared PCM length exceeds the remaining bytes")
	}
}

func TestValid_AllFourFieldsMustMatch(t *testing.T) {
	e := Entry{ModTime: 100, BytesPerSample: 2, Channels: 1, SampleRate: 44100}
	if !Valid(e, 100, 2, 1, 44100) {
		t.Error("Valid() = false for an exact match")
	}
	if Valid(e, 101, 2, 1, 44100) {
		t.Error("Valid() = true despite a ModTime mismatch")
	}
	if Valid(e, 100, 1, 1, 44100) {
		t.Error("Valid() = true despite a BytesPerSample mismatch")
	}
	if Valid(e, 100, 2, 2, 44100) {
		t.Error("Valid() = true despite a Channels mismatch")
	}
	if Valid(e, 100, 2, 1, 22050) {
		t.Error("Valid() = true despite a SampleRate mismatch")
	}
}
