// source.go - the Source common protocol shared by Wave/Sound/Chain/Group/SubSynth

package synthcore

import "math"

// MixMode selects how a source's output combines into the accumulating
// buffer it is mixed into.
type MixMode int

const (
	MixAdd MixMode = iota
	MixBlend
)

// CurveWindow is the (offset, factor) pair that lets an effect (notably
// Stretch) consume its source at a different, narrower rate than it
// produces. A source evaluating a target at output sample i evaluates the
// target at offset + factor*i.
type CurveWindow struct {
	Offset, Factor float64
}

// EvalPos returns the nearest curve/controller-vector index for output
// sample i under this window.
func (w CurveWindow) EvalPos(i int) int {
	return int(math.Round(w.Offset + w.Factor*float64(i)))
}

// FullWindow is the identity window: sample i maps to index i.
var FullWindow = CurveWindow{Offset: 0, Factor: 1}

// primitiveSource is implemented by the five source variants. A Source
// wraps exactly one primitiveSource plus the protocol fields common to all
// of them (silence, mix mode, volume/panning, effect chain).
type primitiveSource interface {
	ownStateSize() int
	bindOffset(offset int) // records this primitive's own state-data offset
	initOwnState(state []byte)
	children() []*Source // non-nil only for Group and SubSynth
	// source is the owning Source envelope, passed through so a primitive
	// can read its common-protocol panning/volume targets (Sound/Chain's
	// panning target is the same "inherited" one used generically here).
	generateSource(inst *SynthesizerInstance, source *Source, state []byte, buf []float32, samples int, w CurveWindow)
	skipSource(inst *SynthesizerInstance, source *Source, state []byte, samples int, w CurveWindow)
}

// Source is the common envelope around every primitive source variant.
type Source struct {
	Kind string // for diagnostics/debug commands only

	Silent      bool
	MixMode     MixMode
	MinVolume, MaxVolume   float64
	MinPanning, MaxPanning float64

	VolumeTarget  *Target
	PanningTarget *Target
	BlendTarget   *Target

	Effects []*Effect

	stateOffset int
	prim        primitiveSource
}

func newSource(kind string, prim primitiveSource) *Source {
	return &Source{
		Kind:        kind,
		MixMode:     MixAdd,
		MinVolume:   0, MaxVolume: 1,
		MinPanning:  -1, MaxPanning: 1,
		VolumeTarget:  NewTarget(nil),
		PanningTarget: NewTarget(nil),
		BlendTarget:   NewTarget(nil),
		prim:          prim,
	}
}

// StateDataSize assigns this source's own state-data offset, then its
// effects' offsets, then (for Group/SubSynth) its children's offsets,
// returning the total byte span consumed.
func (s *Source) StateDataSize(offset int) int {
	s.stateOffset = offset
	s.prim.bindOffset(offset)
	cursor := offset + s.prim.ownStateSize()
	for _, e := range s.Effects {
		cursor += e.StateDataSize(cursor)
	}
	for _, c := range s.prim.children() {
		cursor += c.StateDataSize(cursor)
	}
	return cursor - offset
}

func (s *Source) InitStateData(inst *SynthesizerInstance, state []byte) {
	s.prim.initOwnState(state)
	for _, e := range s.Effects {
		e.InitStateData(inst, state)
	}
	for _, c := range s.prim.children() {
		c.InitStateData(inst, state)
	}
}

// CleanupStateData tears down effects (which may own external DSP handles)
// before recursing into children; this source's own state never owns
// anything that needs explicit cleanup.
func (s *Source) CleanupStateData(inst *SynthesizerInstance, state []byte) {
	for _, e := range s.Effects {
		e.CleanupStateData(inst, state)
	}
	for _, c := range s.prim.children() {
		c.CleanupStateData(inst, state)
	}
}

// entryEffect returns the index of the last non-disabled effect, or -1 if
// there is none (generation falls through to the bare primitive).
func (s *Source) entryEffect() int {
	for i := len(s.Effects) - 1; i >= 0; i-- {
		if !s.Effects[i].Disabled {
			return i
		}
	}
	return -1
}

// generateChain runs the effect chain starting at entry idx (or the bare
// primitive if idx < 0) into buf. Effects recurse toward idx-1 via this
// same method.
func (s *Source) generateChain(idx int, inst *SynthesizerInstance, state []byte, buf []float32, samples int, w CurveWindow) {
	if idx < 0 {
		s.prim.generateSource(inst, s, state, buf, samples, w)
		return
	}
	s.Effects[idx].generate(inst, state, buf, samples, w, s, idx)
}

func (s *Source) skipChain(idx int, inst *SynthesizerInstance, state []byte, samples int, w CurveWindow) {
	if idx < 0 {
		s.prim.skipSource(inst, s, state, samples, w)
		return
	}
	s.Effects[idx].skip(inst, state, samples, w, s, idx)
}

// Generate is the full protocol entry point called by the Synthesizer (for
// top-level sources), by Group, and by SubSynth.
func (s *Source) Generate(inst *SynthesizerInstance, state []byte, out []float32, samples int, w CurveWindow) error {
	if s.Silent {
		s.applySilence(inst, out, samples, w)
		return nil
	}

	channels := inst.ChannelCount()
	scratch, err := inst.pool.Claim(samples * channels)
	if err != nil {
		return err
	}
	defer inst.pool.Release(scratch)
	scratch = scratch[:samples*channels]

	s.generateChain(s.entryEffect(), inst, state, scratch, samples, w)
	s.applyGenerated(inst, scratch, out, samples, w, channels)
	return nil
}

// SkipSound advances this source's (and its effects'/children's) state
// without writing samples - used by Group.Select/Solo for children not
// contributing to the current call.
func (s *Source) SkipSound(inst *SynthesizerInstance, state []byte, samples int, w CurveWindow) {
	if s.Silent {
		return
	}
	s.skipChain(s.entryEffect(), inst, state, samples, w)
}

func (s *Source) applySilence(inst *SynthesizerInstance, out []float32, samples int, w CurveWindow) {
	if s.MixMode != MixBlend {
		return // Add: silence contributes nothing
	}
	for i := 0; i < samples; i++ {
		pos := w.EvalPos(i)
		bf := s.GetBlendFactor(inst, pos)
		out[i] *= 1 - float32(bf)
	}
}

func (s *Source) applyGenerated(inst *SynthesizerInstance, scratch, out []float32, samples int, w CurveWindow, channels int) {
	for i := 0; i < samples; i++ {
		pos := w.EvalPos(i)
		vol := float32(s.GetVolume(inst, pos))
		if channels == 1 {
			v := scratch[i] * vol
			if s.MixMode == MixAdd {
				out[i] += v
			} else {
				bf := float32(s.GetBlendFactor(inst, pos))
				out[i] = out[i]*(1-bf) + v*bf
			}
			continue
		}
		l := scratch[2*i] * vol
		r := scratch[2*i+1] * vol
		if s.MixMode == MixAdd {
			out[2*i] += l
			out[2*i+1] += r
		} else {
			bf := float32(s.GetBlendFactor(inst, pos))
			out[2*i] = out[2*i]*(1-bf) + l*bf
			out[2*i+1] = out[2*i+1]*(1-bf) + r*bf
		}
	}
}

// GetVolume, GetPanning and GetBlendFactor apply the target's normalized
// [0,1] value against this source's declared [min,max] domain. Unconnected
// targets default to full volume, centered pan, and full blend
// respectively - matching an unconnected target behaving as "not driven".
func (s *Source) GetVolume(inst *SynthesizerInstance, sample int) float64 {
	v := s.VolumeTarget.GetValue(inst, sample, 1.0)
	return s.MinVolume + (s.MaxVolume-s.MinVolume)*v
}

func (s *Source) GetPanning(inst *SynthesizerInstance, sample int) float64 {
	v := s.PanningTarget.GetValue(inst, sample, 0.5)
	return s.MinPanning + (s.MaxPanning-s.MinPanning)*v
}

func (s *Source) GetBlendFactor(inst *SynthesizerInstance, sample int) float64 {
	return s.BlendTarget.GetValue(inst, sample, 1.0)
}

// panGains turns a panning value in [MinPanning,MaxPanning] (centered at 0)
// into (left, right) gains: min(1-pan,1) and min(1+pan,1).
func panGains(pan float64) (left, right float32) {
	l := 1 - pan
	if l > 1 {
		l = 1
	}
	r := 1 + pan
	if r > 1 {
		r = 1
	}
	return float32(l), float32(r)
}
