// synthesizer.go - immutable-after-prepare compiled graph definition

package synthcore

import "sync"

// ControllerDef is the declarative description of one controller slot; a
// SynthesizerInstance copies these into its own Controller objects.
type ControllerDef struct {
	Min, Max float64
	Clamp    bool
	Curve    *Curve
}

// SourceDef is implemented by each source variant's declarative
// description (WaveDef, SoundDef, ChainDef, GroupDef, SubSynthDef). build
// compiles it into a runtime *Source; mapping is non-nil only while
// compiling a SubSynth's child sources, remapping child controller indices
// into the parent's controller space (nil means "no remap, use indices
// as declared").
type SourceDef interface {
	build(mapping []int) *Source
}

// Synthesizer is the Definition-layer component: immutable after Prepare,
// shared (reference-counted in spirit - Go's GC plus the host holding one
// pointer) across every instance that plays it.
type Synthesizer struct {
	mu sync.Mutex

	channelCount   int
	sampleRate     int
	bytesPerSample int
	sampleCount    int

	controllerDefs []ControllerDef
	sourceDefs     []SourceDef

	sources        []*Source
	silentFlag     bool
	totalStateSize int

	version      int
	contentDirty bool
}

// NewSynthesizer returns an empty, mono, 44100 Hz, 16-bit synthesizer.
func NewSynthesizer() *Synthesizer {
	return &Synthesizer{
		channelCount:   1,
		sampleRate:     44100,
		bytesPerSample: 2,
		contentDirty:   true,
	}
}

func (s *Synthesizer) lockedBump() {
	s.version++
}

func (s *Synthesizer) SetChannels(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n < 1 {
		n = 1
	}
	if n > 2 {
		n = 2
	}
	s.channelCount = n
	s.lockedBump()
}

func (s *Synthesizer) SetSampleRate(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n < 1 {
		n = 1
	}
	s.sampleRate = n
	s.lockedBump()
}

func (s *Synthesizer) SetBytesPerSample(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n < 1 {
		n = 1
	}
	if n > 2 {
		n = 2
	}
	s.bytesPerSample = n
	s.lockedBump()
}

func (s *Synthesizer) SetSampleCount(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n < 0 {
		n = 0
	}
	s.sampleCount = n
	s.lockedBump()
}

// ControllersChanged notifies the synthesizer that the declared controller
// count/structure changed; instances rebuild their controller array on
// their next produce.
func (s *Synthesizer) ControllersChanged(defs []ControllerDef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.controllerDefs = defs
	s.lockedBump()
}

// SourcesChanged / LinksChanged (collapsed to one call: links are built
// directly inside each source's targets rather than via a shared
// synthesizer-wide link table) replaces the declared source tree and
// marks the compiled graph dirty.
func (s *Synthesizer) SourcesChanged(defs []SourceDef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sourceDefs = defs
	s.contentDirty = true
	s.lockedBump()
}

// Prepare rebuilds the compiled source graph if content is dirty. It is
// idempotent and safe to call on every produce.
func (s *Synthesizer) Prepare() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.contentDirty {
		return nil
	}

	sources := make([]*Source, len(s.sourceDefs))
	for i, def := range s.sourceDefs {
		sources[i] = def.build(nil)
	}

	offset := 0
	for _, src := range sources {
		offset += src.StateDataSize(offset)
	}

	silent := true
	for _, src := range sources {
		if !src.Silent {
			silent = false
			break
		}
	}

	s.sources = sources
	s.totalStateSize = offset
	s.silentFlag = silent
	s.contentDirty = false
	return nil
}

// Generate dispatches to every top-level source with the identity curve
// window.
func (s *Synthesizer) Generate(inst *SynthesizerInstance, state []byte, mixBuffer []float32, samples int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.silentFlag {
		return nil
	}
	for _, src := range s.sources {
		if err := src.Generate(inst, state, mixBuffer, samples, FullWindow); err != nil {
			return err
		}
	}
	return nil
}

func (s *Synthesizer) initAllStateData(inst *SynthesizerInstance, state []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, src := range s.sources {
		src.InitStateData(inst, state)
	}
}

func (s *Synthesizer) cleanupStateData(inst *SynthesizerInstance, state []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, src := range s.sources {
		src.CleanupStateData(inst, state)
	}
}

func (s *Synthesizer) Version() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

func (s *Synthesizer) ChannelCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.channelCount
}

func (s *Synthesizer) SampleRate() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sampleRate
}

func (s *Synthesizer) BytesPerSample() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bytesPerSample
}

func (s *Synthesizer) Silent() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.silentFlag
}

func (s *Synthesizer) StateDataSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalStateSize
}

func (s *Synthesizer) ControllerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.controllerDefs)
}

func (s *Synthesizer) controllerDef(i int) ControllerDef {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.controllerDefs[i]
}

// buildTarget compiles a target's declared links, applying mapping (if
// non-nil) to every link's controller index - used both for ordinary
// targets and for a SubSynth child's remapped targets.
func buildTarget(defs []LinkDef, mapping []int) *Target {
	links := make([]*Link, len(defs))
	for i, d := range defs {
		idx := d.ControllerIndex
		if mapping != nil {
			idx = remapController(idx, mapping)
		}
		links[i] = NewLink(idx, d.Repeat, d.Curve)
	}
	return NewTarget(links)
}

func remapController(childIndex int, mapping []int) int {
	if childIndex < 0 || childIndex >= len(mapping) {
		return -1
	}
	return mapping[childIndex]
}

// LinkDef is the declarative description of one link: which controller
// (as declared on the source's own synthesizer) drives it, its repeat
// factor, and its curve.
type LinkDef struct {
	ControllerIndex int
	Repeat          int
	Curve           *Curve
}
