// source_sound.go - the Sound primitive: play/loop a single SoundAsset

package synthcore

import "math"

// soundStateBytes: position (uint32) + blend (float64) + playing flag (bool).
const soundStateBytes = 4 + 8 + 1

type soundSource struct {
	offset int

	asset   *SoundAsset
	looping bool

	minSpeed, maxSpeed float64
	speedTarget        *Target
	playTarget         *Target
}

// SoundDef is the declarative description of a Sound source.
type SoundDef struct {
	Silent                 bool
	MixMode                MixMode
	MinVolume, MaxVolume   float64
	VolumeLinks            []LinkDef
	MinPanning, MaxPanning float64
	PanningLinks           []LinkDef
	BlendLinks             []LinkDef
	Effects                []EffectDef

	Asset    *SoundAsset
	Looping  bool
	MinSpeed, MaxSpeed float64
	SpeedLinks         []LinkDef
	PlayLinks          []LinkDef
}

func (d SoundDef) build(mapping []int) *Source {
	prim := &soundSource{
		asset:         d.Asset,
		looping:       d.Looping,
		minSpeed:      d.MinSpeed,
		maxSpeed:      d.MaxSpeed,
		speedTarget: buildTarget(d.SpeedLinks, mapping),
		playTarget:  buildTarget(d.PlayLinks, mapping),
	}
	s := newSource("Sound", prim)
	applyCommonDef(s, d.Silent, d.MixMode, d.MinVolume, d.MaxVolume, d.VolumeLinks,
		d.MinPanning, d.MaxPanning, d.PanningLinks, d.BlendLinks, d.Effects, mapping)
	if d.Asset == nil {
		s.Silent = true
	}
	return s
}

func (s *soundSource) ownStateSize() int   { return soundStateBytes }
func (s *soundSource) bindOffset(off int)  { s.offset = off }
func (s *soundSource) children() []*Source { return nil }

func (s *soundSource) initOwnState(state []byte) {
	putUint32(state, s.offset, 0)
	putFloat64(state, s.offset+4, 0)
	putBool(state, s.offset+12, false)
}

func (s *soundSource) getPos(state []byte) uint32    { return getUint32(state, s.offset) }
func (s *soundSource) setPos(state []byte, v uint32) { putUint32(state, s.offset, v) }
func (s *soundSource) getBlend(state []byte) float64 { return getFloat64(state, s.offset+4) }
func (s *soundSource) setBlend(state []byte, v float64) { putFloat64(state, s.offset+4, v) }
func (s *soundSource) getPlaying(state []byte) bool  { return getBool(state, s.offset+12) }
func (s *soundSource) setPlaying(state []byte, v bool) { putBool(state, s.offset+12, v) }

// advance clamps at the last sample for non-looping assets, wrapping
// modulo sample_count for looping ones.
func (s *soundSource) advance(state []byte, sampleCount int, delta float64) {
	pos := s.getPos(state)
	blend := s.getBlend(state) + delta
	step := uint32(math.Floor(blend))
	blend -= float64(step)
	newPos := pos + step
	if s.looping {
		if sampleCount > 0 {
			newPos %= uint32(sampleCount)
		} else {
			newPos = 0
		}
	} else if int(newPos) >= sampleCount-1 {
		newPos = uint32(max(sampleCount-1, 0))
		blend = 0
	}
	s.setPos(state, newPos)
	s.setBlend(state, blend)
}

func (s *soundSource) generateSource(inst *SynthesizerInstance, source *Source, state []byte, buf []float32, samples int, win CurveWindow) {
	for i := range buf[:samples*channelsOf(inst)] {
		buf[i] = 0
	}
	if s.asset == nil {
		return
	}
	if s.asset.SampleRate() != inst.SampleRate() {
		return // mismatched native rate: emit silence for this call
	}

	sampleCount := s.asset.SampleCount()
	channels := channelsOf(inst)
	assetChannels := s.asset.Channels()

	for i := 0; i < samples; i++ {
		pos := win.EvalPos(i)
		playVal := s.playTarget.GetValue(inst, pos, 0)
		if playVal < 0.25 {
			s.setPos(state, 0)
			s.setBlend(state, 0)
			s.setPlaying(state, false)
		} else if playVal > 0.75 {
			s.setPlaying(state, true)
		}

		if !s.getPlaying(state) {
			writeSilenceFrame(buf, i, channels)
			continue
		}

		idx := int(s.getPos(state))
		blend := s.getBlend(state)
		nextIdx := idx + 1
		if s.looping && sampleCount > 0 {
			nextIdx %= sampleCount
		} else if nextIdx > sampleCount-1 {
			nextIdx = max(sampleCount-1, 0)
		}
		l0, r0 := s.asset.Frame(idx)
		l1, r1 := s.asset.Frame(nextIdx)
		l := l0 + (l1-l0)*float32(blend)
		r := r0 + (r1-r0)*float32(blend)

		pan := source.GetPanning(inst, pos)
		writeAssetFrame(buf, i, channels, assetChannels, l, r, pan)

		speed := s.minSpeed + (s.maxSpeed-s.minSpeed)*s.speedTarget.GetValue(inst, pos, 0)
		s.advance(state, sampleCount, speed)
	}
}

func (s *soundSource) skipSource(inst *SynthesizerInstance, source *Source, state []byte, samples int, win CurveWindow) {
	if s.asset == nil {
		return
	}
	sampleCount := s.asset.SampleCount()
	for i := 0; i < samples; i++ {
		pos := win.EvalPos(i)
		playVal := s.playTarget.GetValue(inst, pos, 0)
		if playVal < 0.25 {
			s.setPos(state, 0)
			s.setBlend(state, 0)
			s.setPlaying(state, false)
			continue
		} else if playVal > 0.75 {
			s.setPlaying(state, true)
		}
		if !s.getPlaying(state) {
			continue
		}
		speed := s.minSpeed + (s.maxSpeed-s.minSpeed)*s.speedTarget.GetValue(inst, pos, 0)
		s.advance(state, sampleCount, speed)
	}
}

func channelsOf(inst *SynthesizerInstance) int { return inst.ChannelCount() }

func writeSilenceFrame(buf []float32, i, channels int) {
	if channels == 1 {
		buf[i] = 0
		return
	}
	buf[2*i] = 0
	buf[2*i+1] = 0
}

// writeAssetFrame mixes a decoded (mono or stereo) asset frame into a
// mono or stereo output frame, applying panning only when the asset's
// channel layout does not already match the instance's.
func writeAssetFrame(buf []float32, i, outChannels, assetChannels int, l, r float32, pan float64) {
	if outChannels == assetChannels {
		if outChannels == 1 {
			buf[i] = l
		} else {
			buf[2*i] = l
			buf[2*i+1] = r
		}
		return
	}
	if outChannels == 1 {
		buf[i] = (l + r) / 2 // stereo asset into mono out: average
		return
	}
	// mono asset into stereo out: pan
	gl, gr := panGains(pan)
	buf[2*i] = l * gl
	buf[2*i+1] = l * gr
}
