// source_subsynth.go - the SubSynth primitive: an inlined child synthesizer

package synthcore

type subSynthSource struct {
	offset       int
	childSources []*Source
}

// SubSynthDef is the declarative description of a SubSynth source. The
// child's links are remapped through ConnectionMap at compile time
// (ConnectionMap[childControllerIndex] = parent controller index, or -1 if
// that child controller is not driven from the parent) and its sources are
// then compiled as if they belonged to the parent.
type SubSynthDef struct {
	Silent                 bool
	MixMode                MixMode
	MinVolume, MaxVolume   float64
	VolumeLinks            []LinkDef
	MinPanning, MaxPanning float64
	PanningLinks           []LinkDef
	BlendLinks             []LinkDef
	Effects                []EffectDef

	ChildSources  []SourceDef
	ConnectionMap []int
}

func (d SubSynthDef) build(mapping []int) *Source {
	composed := make([]int, len(d.ConnectionMap))
	for i, parentIdx := range d.ConnectionMap {
		if parentIdx < 0 {
			composed[i] = -1
			continue
		}
		if mapping != nil {
			composed[i] = remapController(parentIdx, mapping)
		} else {
			composed[i] = parentIdx
		}
	}

	children := make([]*Source, len(d.ChildSources))
	for i, cd := range d.ChildSources {
		children[i] = cd.build(composed)
	}

	prim := &subSynthSource{childSources: children}
	s := newSource("SubSynth", prim)
	applyCommonDef(s, d.Silent, d.MixMode, d.MinVolume, d.MaxVolume, d.VolumeLinks,
		d.MinPanning, d.MaxPanning, d.PanningLinks, d.BlendLinks, d.Effects, mapping)
	if len(d.ChildSources) == 0 {
		s.Silent = true // missing/empty child synthesizer: silent
	}
	return s
}

func (ss *subSynthSource) ownStateSize() int   { return 0 }
func (ss *subSynthSource) bindOffset(off int)  { ss.offset = off }
func (ss *subSynthSource) initOwnState([]byte) {}
func (ss *subSynthSource) children() []*Source { return ss.childSources }

// generateSource behaves like Group.All: zero the buffer, then generate
// every child source into it in declaration order.
func (ss *subSynthSource) generateSource(inst *SynthesizerInstance, source *Source, state []byte, buf []float32, samples int, win CurveWindow) {
	channels := channelsOf(inst)
	for i := range buf[:samples*channels] {
		buf[i] = 0
	}
	for _, child := range ss.childSources {
		_ = child.Generate(inst, state, buf, samples, win)
	}
}

// skipSource unconditionally skips every child, regardless of any
// select/solo state a nested Group might otherwise apply.
func (ss *subSynthSource) skipSource(inst *SynthesizerInstance, source *Source, state []byte, samples int, win CurveWindow) {
	for _, child := range ss.childSources {
		child.SkipSound(inst, state, samples, win)
	}
}
