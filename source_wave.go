// source_wave.go - the Wave primitive: a bare oscillator

package synthcore

import "math"

type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
	WaveSawtooth
	WaveTriangle
)

// waveStateBytes: one float64 phase accumulator in [0,1).
const waveStateBytes = 8

type waveSource struct {
	offset int

	waveType                   WaveType
	minFrequency, maxFrequency float64
	frequencyTarget            *Target
}

// WaveDef is the declarative description of a Wave source.
type WaveDef struct {
	Silent                 bool
	MixMode                MixMode
	MinVolume, MaxVolume   float64
	VolumeLinks            []LinkDef
	MinPanning, MaxPanning float64
	PanningLinks           []LinkDef
	BlendLinks             []LinkDef
	Effects                []EffectDef

	WaveType                   WaveType
	MinFrequency, MaxFrequency float64
	FrequencyLinks             []LinkDef
}

func (d WaveDef) build(mapping []int) *Source {
	prim := &waveSource{
		waveType:        d.WaveType,
		minFrequency:    d.MinFrequency,
		maxFrequency:    d.MaxFrequency,
		frequencyTarget: buildTarget(d.FrequencyLinks, mapping),
	}
	s := newSource("Wave", prim)
	applyCommonDef(s, d.Silent, d.MixMode, d.MinVolume, d.MaxVolume, d.VolumeLinks,
		d.MinPanning, d.MaxPanning, d.PanningLinks, d.BlendLinks, d.Effects, mapping)
	return s
}

func (w *waveSource) ownStateSize() int   { return waveStateBytes }
func (w *waveSource) bindOffset(off int)  { w.offset = off }
func (w *waveSource) children() []*Source { return nil }

func (w *waveSource) initOwnState(state []byte) {
	putFloat64(state, w.offset, 0)
}

func (w *waveSource) generateSource(inst *SynthesizerInstance, source *Source, state []byte, buf []float32, samples int, win CurveWindow) {
	phase := getFloat64(state, w.offset)
	invRate := 1.0 / float64(inst.SampleRate())
	channels := channelsOf(inst)
	for i := 0; i < samples; i++ {
		v := float32(waveValue(w.waveType, phase))
		pos := win.EvalPos(i)
		if channels == 1 {
			buf[i] = v
		} else {
			pan := source.GetPanning(inst, pos)
			gl, gr := panGains(pan)
			buf[2*i] = v * gl
			buf[2*i+1] = v * gr
		}
		freq := w.minFrequency + (w.maxFrequency-w.minFrequency)*w.frequencyTarget.GetValue(inst, pos, 0)
		phase += freq * invRate
		phase -= math.Floor(phase)
	}
	putFloat64(state, w.offset, phase)
}

func (w *waveSource) skipSource(inst *SynthesizerInstance, source *Source, state []byte, samples int, win CurveWindow) {
	phase := getFloat64(state, w.offset)
	invRate := 1.0 / float64(inst.SampleRate())
	for i := 0; i < samples; i++ {
		pos := win.EvalPos(i)
		freq := w.minFrequency + (w.maxFrequency-w.minFrequency)*w.frequencyTarget.GetValue(inst, pos, 0)
		phase += freq * invRate
		phase -= math.Floor(phase)
	}
	putFloat64(state, w.offset, phase)
}

func waveValue(t WaveType, phase float64) float64 {
	switch t {
	case WaveSine:
		return math.Sin(2 * math.Pi * phase)
	case WaveSquare:
		if phase < 0.5 {
			return 1
		}
		return -1
	case WaveSawtooth:
		return 2*phase - 1
	case WaveTriangle:
		switch {
		case phase < 0.25:
			return phase / 0.25
		case phase < 0.75:
			return 1 - (phase-0.25)/0.25
		default:
			return -1 + (phase-0.75)/0.25
		}
	default:
		return 0
	}
}

// applyCommonDef copies the fields shared by every source-kind Def into the
// compiled Source envelope.
func applyCommonDef(s *Source, silent bool, mix MixMode, minVol, maxVol float64, volLinks []LinkDef,
	minPan, maxPan float64, panLinks []LinkDef, blendLinks []LinkDef, effects []EffectDef, mapping []int) {
	s.Silent = silent
	s.MixMode = mix
	s.MinVolume, s.MaxVolume = minVol, maxVol
	s.MinPanning, s.MaxPanning = minPan, maxPan
	s.VolumeTarget = buildTarget(volLinks, mapping)
	s.PanningTarget = buildTarget(panLinks, mapping)
	s.BlendTarget = buildTarget(blendLinks, mapping)
	s.Effects = make([]*Effect, len(effects))
	for i, ed := range effects {
		s.Effects[i] = ed.build(mapping)
	}
}

func getFloat64(state []byte, off int) float64 {
	bits := uint64(state[off]) | uint64(state[off+1])<<8 | uint64(state[off+2])<<16 | uint64(state[off+3])<<24 |
		uint64(state[off+4])<<32 | uint64(state[off+5])<<40 | uint64(state[off+6])<<48 | uint64(state[off+7])<<56
	return math.Float64frombits(bits)
}

func putFloat64(state []byte, off int, v float64) {
	bits := math.Float64bits(v)
	state[off] = byte(bits)
	state[off+1] = byte(bits >> 8)
	state[off+2] = byte(bits >> 16)
	state[off+3] = byte(bits >> 24)
	state[off+4] = byte(bits >> 32)
	state[off+5] = byte(bits >> 40)
	state[off+6] = byte(bits >> 48)
	state[off+7] = byte(bits >> 56)
}

func getUint32(state []byte, off int) uint32 {
	return uint32(state[off]) | uint32(state[off+1])<<8 | uint32(state[off+2])<<16 | uint32(state[off+3])<<24
}

func putUint32(state []byte, off int, v uint32) {
	state[off] = byte(v)
	state[off+1] = byte(v >> 8)
	state[off+2] = byte(v >> 16)
	state[off+3] = byte(v >> 24)
}

func getBool(state []byte, off int) bool { return state[off] != 0 }
func putBool(state []byte, off int, v bool) {
	if v {
		state[off] = 1
	} else {
		state[off] = 0
	}
}
