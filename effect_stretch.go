// effect_stretch.go - time-stretch + pitch-shift, the only effect kind

package synthcore

import "github.com/cwbudde/algo-dsp/dsp/effects/pitch"

// stretchEffect is the Stretch variant. Time-stretch and pitch-shift are
// factored the way the underlying library exposes them: pitch.PitchShifter
// performs duration-preserving pitch shift (it takes semitones, with no
// independent tempo knob), so the tempo axis is realized here by resampling
// each pulled input block to a stretched frame count before handing it to
// the shifter.
type stretchEffect struct {
	minTime, maxTime   float64
	minPitch, maxPitch float64
	targetTime         *Target
	targetPitch        *Target
}

// stretchRuntime is the per-instance owned DSP state. It lives in a table
// on the SynthesizerInstance (keyed by this effect's state offset) rather
// than packed into the state-data byte buffer, since the handles
// pitch.PitchShifter owns can't be marshaled into a plain byte slice.
type stretchRuntime struct {
	shifters  []*pitch.PitchShifter // one per channel; library has no multi-channel API
	channels  int
	blockSize int
	inputBuf  []float32 // one pulled block, interleaved

	resampleBuf []float32 // scratch for resampleInterleaved, grown not shrunk
	pitchBuf    []float64 // scratch for applyPitchShift, grown not shrunk

	fifo []float32 // processed samples ready to be handed to the caller
}

// StretchDef is the declarative description of a Stretch effect.
type StretchDef struct {
	Disabled                     bool
	MinTime, MaxTime             float64
	TimeLinks                    []LinkDef
	MinPitch, MaxPitch           float64
	PitchLinks                   []LinkDef
}

func (d StretchDef) build(mapping []int) *Effect {
	e := NewStretchEffect(d.MinTime, d.MaxTime, d.MinPitch, d.MaxPitch,
		buildTarget(d.TimeLinks, mapping), buildTarget(d.PitchLinks, mapping))
	e.Disabled = d.Disabled
	return e
}

// NewStretchEffect builds a compiled Stretch effect. Ranges are clamped to
// the documented [-0.75, 1.5] domain for both time and pitch.
func NewStretchEffect(minTime, maxTime, minPitch, maxPitch float64, targetTime, targetPitch *Target) *Effect {
	clamp := func(v float64) float64 {
		if v < -0.75 {
			return -0.75
		}
		if v > 1.5 {
			return 1.5
		}
		return v
	}
	impl := &stretchEffect{
		minTime: clamp(minTime), maxTime: clamp(maxTime),
		minPitch: clamp(minPitch), maxPitch: clamp(maxPitch),
		targetTime: targetTime, targetPitch: targetPitch,
	}
	return &Effect{impl: impl}
}

func (e *stretchEffect) getTimeStretch(inst *SynthesizerInstance, sample int) float64 {
	return e.minTime + (e.maxTime-e.minTime)*e.targetTime.GetValue(inst, sample, 0)
}

func (e *stretchEffect) getPitchShift(inst *SynthesizerInstance, sample int) float64 {
	return e.minPitch + (e.maxPitch-e.minPitch)*e.targetPitch.GetValue(inst, sample, 0)
}

// stateDataSize: the opaque handle table costs nothing in the byte buffer
// itself; a single marker byte is reserved so the offset-accounting
// protocol still treats Stretch as owning state like every other node.
func (e *stretchEffect) stateDataSize() int { return 1 }

func (e *stretchEffect) initState(inst *SynthesizerInstance, state []byte, offset int) {
	channels := inst.ChannelCount()
	blockSamples := inst.SampleRate() / 100 // 10ms, matches the original
	if blockSamples < 1 {
		blockSamples = 1
	}
	shifters := make([]*pitch.PitchShifter, channels)
	for c := range shifters {
		fx, err := pitch.NewPitchShifter(inst.SampleRate())
		if err != nil {
			continue // degrade to bypass for this channel rather than fail generate()
		}
		_ = fx.SetSequence(40)
		_ = fx.SetOverlap(10)
		_ = fx.SetSearch(15)
		shifters[c] = fx
	}
	inst.setStretchRuntime(offset, &stretchRuntime{
		shifters:  shifters,
		channels:  channels,
		blockSize: blockSamples,
		inputBuf:  make([]float32, blockSamples*channels),
	})
}

func (e *stretchEffect) cleanupState(inst *SynthesizerInstance, state []byte, offset int) {
	inst.clearStretchRuntime(offset)
}

func (e *stretchEffect) generate(inst *SynthesizerInstance, state []byte, buf []float32, samples int, w CurveWindow, source *Source, idx int) {
	rt := inst.stretchRuntime(idx2offset(source, idx))
	if rt == nil {
		previousStage(source, idx, inst, state, buf, samples, w)
		return
	}

	channels := rt.channels
	defBlockCurveFactor := w.Factor * float64(rt.blockSize) / float64(samples)
	defBlockCurveLast := w.Offset + w.Factor*float64(samples-1)

	offset := 0
	for offset < samples {
		curveEvalPos := w.EvalPos(offset)
		pitchShift := e.getPitchShift(inst, curveEvalPos)
		timeStretch := e.getTimeStretch(inst, curveEvalPos)
		for _, sh := range rt.shifters {
			if sh != nil {
				_ = sh.SetPitchSemitones(clampSemitones(pitchShift * 12))
			}
		}

		remaining := min(samples-offset, rt.blockSize)
		for remaining > 0 {
			for len(rt.fifo) < remaining*channels {
				blockCurveOffset := float64(curveEvalPos)
				blockCurveFactor := min(defBlockCurveFactor, defBlockCurveLast-blockCurveOffset)
				subWindow := CurveWindow{Offset: blockCurveOffset, Factor: blockCurveFactor}

				previousStage(source, idx, inst, state, rt.inputBuf, rt.blockSize, subWindow)

				tempoRatio := 1 + timeStretch
				outFrames := rt.blockSize
				if tempoRatio > 0.01 {
					outFrames = int(float64(rt.blockSize) / tempoRatio)
				}
				if outFrames < 1 {
					outFrames = 1
				}
				block := resampleInterleaved(rt, rt.inputBuf, rt.blockSize, channels, outFrames)
				applyPitchShift(rt, block, channels)
				rt.fifo = append(rt.fifo, block...)
			}

			take := remaining
			if avail := len(rt.fifo) / channels; avail < take {
				take = avail
			}
			n := take * channels
			copy(buf[offset*channels:offset*channels+n], rt.fifo[:n])
			rt.fifo = append(rt.fifo[:0], rt.fifo[n:]...)

			offset += take
			remaining -= take
			if take == 0 {
				break // DSP produced nothing this round; avoid spinning
			}
		}
	}
}

// skip is a pass-through to the previous stage: a splittable Stretch skip
// would need to advance the DSP's internal buffer state exactly as
// generate does, which this port does not attempt.
func (e *stretchEffect) skip(inst *SynthesizerInstance, state []byte, samples int, w CurveWindow, source *Source, idx int) {
	previousSkip(source, idx, inst, state, samples, w)
}

func clampSemitones(v float64) float64 {
	if v < -24 {
		return -24
	}
	if v > 24 {
		return 24
	}
	return v
}

// applyPitchShift reuses rt.pitchBuf as deinterleaving scratch rather than
// allocating a fresh buffer per block; the slice grows in place and is
// never reallocated once it reaches its steady-state frame count.
func applyPitchShift(rt *stretchRuntime, block []float32, channels int) {
	frames := len(block) / channels
	if cap(rt.pitchBuf) < frames {
		rt.pitchBuf = make([]float64, frames)
	} else {
		rt.pitchBuf = rt.pitchBuf[:frames]
	}
	chanBuf := rt.pitchBuf
	for c := 0; c < channels; c++ {
		sh := rt.shifters[c]
		if sh == nil {
			continue
		}
		for i := 0; i < frames; i++ {
			chanBuf[i] = float64(block[i*channels+c])
		}
		sh.ProcessInPlace(chanBuf)
		for i := 0; i < frames; i++ {
			block[i*channels+c] = float32(chanBuf[i])
		}
	}
}

// resampleInterleaved linearly resamples an interleaved multi-channel
// buffer from inFrames to outFrames. This is the local stand-in for a
// dedicated tempo-axis library. The output lives in rt.resampleBuf, grown
// in place rather than allocated fresh per block.
func resampleInterleaved(rt *stretchRuntime, src []float32, inFrames, channels, outFrames int) []float32 {
	n := outFrames * channels
	if cap(rt.resampleBuf) < n {
		rt.resampleBuf = make([]float32, n)
	} else {
		rt.resampleBuf = rt.resampleBuf[:n]
	}
	out := rt.resampleBuf
	if inFrames <= 1 || outFrames == inFrames {
		copyN := min(len(src), len(out))
		copy(out, src[:copyN])
		return out
	}
	step := float64(inFrames-1) / float64(max(outFrames-1, 1))
	for i := 0; i < outFrames; i++ {
		pos := step * float64(i)
		i0 := int(pos)
		if i0 >= inFrames-1 {
			i0 = inFrames - 2
		}
		frac := float32(pos - float64(i0))
		for c := 0; c < channels; c++ {
			a := src[i0*channels+c]
			b := src[(i0+1)*channels+c]
			out[i*channels+c] = a + (b-a)*frac
		}
	}
	return out
}

// idx2offset recovers the state offset for the effect at position idx in
// source's effect slice - used because stretchEffect.generate only
// receives (source, idx), not the Effect pointer itself.
func idx2offset(source *Source, idx int) int {
	return source.Effects[idx].stateOffset
}
