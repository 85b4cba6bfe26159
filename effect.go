// effect.go - signal transformer attached to a Source's effect chain

package synthcore

// EffectDef is the declarative description of one effect-chain entry.
// StretchDef is currently the only implementation.
type EffectDef interface {
	build(mapping []int) *Effect
}

// effectImpl is implemented by each effect variant. Stretch is currently
// the only one.
type effectImpl interface {
	stateDataSize() int
	initState(inst *SynthesizerInstance, state []byte, offset int)
	cleanupState(inst *SynthesizerInstance, state []byte, offset int)
	generate(inst *SynthesizerInstance, state []byte, buf []float32, samples int, w CurveWindow, source *Source, idx int)
	skip(inst *SynthesizerInstance, state []byte, samples int, w CurveWindow, source *Source, idx int)
}

// Effect is the common envelope: a disabled flag, a state-data offset, and
// the previous-effect link, which is elided here in favor of the owning
// Source's flat effect slice plus this effect's own index (idx).
type Effect struct {
	Disabled    bool
	stateOffset int
	impl        effectImpl
}

func (e *Effect) StateDataSize(offset int) int {
	e.stateOffset = offset
	return e.impl.stateDataSize()
}

func (e *Effect) InitStateData(inst *SynthesizerInstance, state []byte) {
	e.impl.initState(inst, state, e.stateOffset)
}

func (e *Effect) CleanupStateData(inst *SynthesizerInstance, state []byte) {
	e.impl.cleanupState(inst, state, e.stateOffset)
}

func (e *Effect) generate(inst *SynthesizerInstance, state []byte, buf []float32, samples int, w CurveWindow, source *Source, idx int) {
	e.impl.generate(inst, state, buf, samples, w, source, idx)
}

func (e *Effect) skip(inst *SynthesizerInstance, state []byte, samples int, w CurveWindow, source *Source, idx int) {
	e.impl.skip(inst, state, samples, w, source, idx)
}

// previousStage calls the next-innermost stage of source's effect chain
// (the effect at idx-1, or the bare primitive if idx==0).
func previousStage(source *Source, idx int, inst *SynthesizerInstance, state []byte, buf []float32, samples int, w CurveWindow) {
	source.generateChain(idx-1, inst, state, buf, samples, w)
}

func previousSkip(source *Source, idx int, inst *SynthesizerInstance, state []byte, samples int, w CurveWindow) {
	source.skipChain(idx-1, inst, state, samples, w)
}
