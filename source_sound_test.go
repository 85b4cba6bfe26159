// source_sound_test.go - unit tests for the Sound play/loop primitive

package synthcore

import "testing"

// rampAsset returns an already-loaded mono SoundAsset holding a linear ramp
// from -1 to +1 across n frames, at the given sample rate - the S3 fixture.
func rampAsset(n, sampleRate int) *SoundAsset {
	a := NewSoundAsset("ramp", nil, nil)
	data := make([]float32, n)
	for i := 0; i < n; i++ {
		data[i] = -1 + 2*float32(i)/float32(n-1)
	}
	a.data = data
	a.channels = 1
	a.sampleRate = sampleRate
	a.loaded = true
	return a
}

// S3 - sound asset, looping, speed=1, no resample: splittability across a
// produce boundary mid-loop.
func TestSound_S3_LoopingRampSplittable(t *testing.T) {
	asset := rampAsset(100, 44100)
	synthA := NewSynthesizer()
	synthA.SetChannels(1)
	synthA.SetBytesPerSample(2)
	synthA.SourcesChanged([]SourceDef{fixedPlaySoundDef(asset, true)})

	instFull := NewSynthesizerInstance(NewSharedBufferPool())
	instFull.SetSynthesizer(synthA)
	full := make([]byte, 300*2)
	if err := instFull.Produce(full, 0, 300); err != nil {
		t.Fatalf("Produce full: %v", err)
	}

	synthB := NewSynthesizer()
	synthB.SetChannels(1)
	synthB.SetBytesPerSample(2)
	synthB.SourcesChanged([]SourceDef{fixedPlaySoundDef(asset, true)})
	instPart := NewSynthesizerInstance(NewSharedBufferPool())
	instPart.SetSynthesizer(synthB)

	pre := make([]byte, 100*2)
	if err := instPart.Produce(pre, 0, 100); err != nil {
		t.Fatalf("Produce pre: %v", err)
	}
	tail := make([]byte, 50*2)
	if err := instPart.Produce(tail, 100, 50); err != nil {
		t.Fatalf("Produce tail: %v", err)
	}
	for i := 0; i < 50*2; i++ {
		if full[200+i] != tail[i] {
			t.Fatalf("byte %d: full=%#x tail=%#x", i, full[200+i], tail[i])
		}
	}
}

// fixedPlaySoundDef builds a SoundDef whose play gate is permanently open.
// An inert link (ControllerIndex -1) would just echo the consumer's
// default (0, gate closed), so this uses a live controller index paired
// with a curve that maps any raw input to 1 - it holds "playing" open
// regardless of whether the instance actually declares that controller
// (an absent controller's raw value reads as 0, which this curve still
// maps to 1).
func fixedPlaySoundDef(asset *SoundAsset, looping bool) SoundDef {
	alwaysOne := NewConstantCurve([]CurvePoint{{X: -1e9, Y: 1}})
	return SoundDef{
		Asset: asset, Looping: looping,
		MaxVolume: 1, MinSpeed: 1, MaxSpeed: 1,
		MinPanning: -1, MaxPanning: 1,
		PlayLinks: []LinkDef{{ControllerIndex: 0, Curve: alwaysOne}},
	}
}

func TestSound_SilentWithNilAsset(t *testing.T) {
	def := SoundDef{MaxVolume: 1}
	s := def.build(nil)
	if !s.Silent {
		t.Error("Sound with nil asset should compile to Silent=true")
	}
}

func TestSound_MismatchedSampleRateEmitsSilence(t *testing.T) {
	asset := rampAsset(10, 22050)
	def := fixedPlaySoundDef(asset, false)
	src := def.build(nil)
	state := make([]byte, src.StateDataSize(0))
	inst := NewSynthesizerInstance(NewSharedBufferPool())
	inst.channelCount = 1
	inst.sampleRate = 44100 // mismatched against the 22050 Hz asset

	buf := make([]float32, 5)
	for i := range buf {
		buf[i] = 99
	}
	src.prim.generateSource(inst, src, state, buf, 5, FullWindow)
	for i, v := range buf {
		if v != 0 {
			t.Errorf("buf[%d] = %v, want 0 (sample-rate mismatch emits silence)", i, v)
		}
	}
}
