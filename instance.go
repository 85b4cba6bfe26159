// instance.go - per-voice playback state bound to a shared Synthesizer

package synthcore

import (
	"encoding/binary"
	"math"
	"sync"
)

// SynthesizerInstance is the Runtime-layer component: one per playing
// voice. It owns the per-instance controller array, the opaque state-data
// buffer, and the stretch-runtime handle table, and serializes all of
// produce() under its own mutex, which is always acquired before the
// owning Synthesizer's internal mutex, never the reverse.
type SynthesizerInstance struct {
	mu sync.Mutex

	synth         *Synthesizer
	cachedVersion int

	controllers []*Controller

	channelCount   int
	sampleRate     int
	bytesPerSample int
	invSampleRate  float64
	frameSize      int
	silent         bool

	defDirty         bool
	controllersDirty bool
	formatDirty      bool

	stateData []byte

	pool *SharedBufferPool

	stretchRuntimes map[int]*stretchRuntime
	groupRuntimes   map[int]*groupRuntime
}

// NewSynthesizerInstance returns an instance with no synthesizer attached
// (silent until SetSynthesizer is called).
func NewSynthesizerInstance(pool *SharedBufferPool) *SynthesizerInstance {
	if pool == nil {
		pool = NewSharedBufferPool()
	}
	return &SynthesizerInstance{
		pool:           pool,
		channelCount:   1,
		bytesPerSample: 2,
		sampleRate:     44100,
		invSampleRate:  1.0 / 44100,
		silent:         true,
		defDirty:       true,
	}
}

// SetSynthesizer rebinds this instance to a (possibly nil) synthesizer.
// The previous synthesizer's compiled state is cleaned up before the new
// one takes over.
func (inst *SynthesizerInstance) SetSynthesizer(s *Synthesizer) {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	if inst.synth != nil && inst.stateData != nil {
		inst.synth.cleanupStateData(inst, inst.stateData)
	}
	inst.synth = s
	inst.stateData = nil
	inst.controllers = nil
	inst.defDirty = true
}

// ControllerChanged marks the instance's controllers dirty; the next produce
// re-copies every controller from the synthesizer's declarations. It takes
// no controller index and does not refresh a single controller on its own.
func (inst *SynthesizerInstance) ControllerChanged() {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	inst.controllersDirty = true
}

func (inst *SynthesizerInstance) ChannelCount() int { return inst.channelCount }
func (inst *SynthesizerInstance) SampleRate() int   { return inst.sampleRate }

func (inst *SynthesizerInstance) controllerValue(idx int, sample int) float64 {
	if idx < 0 || idx >= len(inst.controllers) {
		return 0
	}
	return inst.controllers[idx].Value(sample)
}

func (inst *SynthesizerInstance) setStretchRuntime(offset int, rt *stretchRuntime) {
	if inst.stretchRuntimes == nil {
		inst.stretchRuntimes = make(map[int]*stretchRuntime)
	}
	inst.stretchRuntimes[offset] = rt
}

func (inst *SynthesizerInstance) clearStretchRuntime(offset int) {
	delete(inst.stretchRuntimes, offset)
}

func (inst *SynthesizerInstance) stretchRuntime(offset int) *stretchRuntime {
	return inst.stretchRuntimes[offset]
}

// groupScratch returns the per-instance scratch state for the Group source
// at offset, sized for n children, allocating it once and reusing it on
// every later generateSelectOrSolo call instead of making fresh slices
// per produce.
func (inst *SynthesizerInstance) groupScratch(offset, n int) *groupRuntime {
	if inst.groupRuntimes == nil {
		inst.groupRuntimes = make(map[int]*groupRuntime)
	}
	rt := inst.groupRuntimes[offset]
	if rt == nil || len(rt.touched) != n {
		rt = &groupRuntime{
			scratch: make([][]float32, n),
			touched: make([]bool, n),
		}
		inst.groupRuntimes[offset] = rt
	}
	return rt
}

// rebuildLocked applies the prepare/controller/format rebuild steps; caller
// holds inst.mu.
func (inst *SynthesizerInstance) rebuildLocked() error {
	if inst.synth != nil && inst.synth.Version() != inst.cachedVersion {
		inst.defDirty = true
	}

	if inst.defDirty {
		if inst.synth != nil {
			if err := inst.synth.Prepare(); err != nil {
				return err
			}
			inst.stateData = make([]byte, inst.synth.StateDataSize())
			inst.synth.initAllStateData(inst, inst.stateData)

			n := inst.synth.ControllerCount()
			inst.controllers = make([]*Controller, n)
			for i := range inst.controllers {
				inst.controllers[i] = NewController()
			}
			inst.cachedVersion = inst.synth.Version()
			inst.controllersDirty = true
		} else {
			inst.stateData = nil
			inst.controllers = nil
		}
		inst.defDirty = false
		inst.formatDirty = true
	}

	if inst.controllersDirty && inst.synth != nil {
		for i, c := range inst.controllers {
			def := inst.synth.controllerDef(i)
			c.Min, c.Max, c.Clamp = def.Min, def.Max, def.Clamp
			if def.Curve != nil {
				c.Update(def.Curve)
			}
		}
		inst.controllersDirty = false
	}

	if inst.formatDirty {
		if inst.synth != nil {
			inst.channelCount = inst.synth.ChannelCount()
			inst.bytesPerSample = inst.synth.BytesPerSample()
			inst.sampleRate = inst.synth.SampleRate()
			inst.silent = inst.synth.Silent()
		} else {
			inst.channelCount = 1
			inst.bytesPerSample = 2
			inst.sampleRate = 44100
			inst.silent = true
		}
		if inst.sampleRate < 1 {
			inst.sampleRate = 1
		}
		inst.invSampleRate = 1.0 / float64(inst.sampleRate)
		inst.frameSize = inst.channelCount * inst.bytesPerSample
		inst.formatDirty = false
	}

	return nil
}

// Produce fills buffer (byteOffset in output-sample frames from playback
// start, at buffer[0:samples*frameSize]) with samples PCM frames. The
// silence path returns early rather than walking a graph known to
// contribute nothing.
func (inst *SynthesizerInstance) Produce(buffer []byte, byteOffset int, samples int) error {
	inst.mu.Lock()
	defer inst.mu.Unlock()

	if samples < 0 || byteOffset < 0 {
		return Errorf(KindInvalidArgument, "negative sample count or offset")
	}
	if err := inst.rebuildLocked(); err != nil {
		return err
	}
	if len(buffer) < samples*inst.frameSize {
		return Errorf(KindInvalidArgument, "buffer too small: need %d bytes, got %d", samples*inst.frameSize, len(buffer))
	}

	if samples == 0 {
		return nil
	}

	if inst.silent || inst.synth == nil {
		for i := range buffer[:samples*inst.frameSize] {
			buffer[i] = 0
		}
		return nil
	}

	mixBuf, err := inst.pool.Claim(samples * inst.channelCount)
	if err != nil {
		return err
	}
	defer inst.pool.Release(mixBuf)
	mixBuf = mixBuf[:samples*inst.channelCount]
	for i := range mixBuf {
		mixBuf[i] = 0
	}

	time := float64(byteOffset) * inst.invSampleRate
	for _, c := range inst.controllers {
		c.UpdateValues(samples, time, inst.invSampleRate)
	}

	if err := inst.synth.Generate(inst, inst.stateData, mixBuf, samples); err != nil {
		return err
	}

	downConvert(buffer, mixBuf, inst.bytesPerSample)
	return nil
}

// downConvert quantizes float32 samples in [-1,1] to little-endian 8- or
// 16-bit PCM, clamping out-of-range values rather than wrapping them.
func downConvert(dst []byte, src []float32, bytesPerSample int) {
	switch bytesPerSample {
	case 1:
		for i, v := range src {
			iv := int32(math.Round(float64(v) * 127))
			if iv > 127 {
				iv = 127
			}
			if iv < -128 {
				iv = -128
			}
			dst[i] = byte(int8(iv))
		}
	default:
		for i, v := range src {
			iv := int32(math.Round(float64(v) * 32767))
			if iv > 32767 {
				iv = 32767
			}
			if iv < -32768 {
				iv = -32768
			}
			binary.LittleEndian.PutUint16(dst[i*2:], uint16(int16(iv)))
		}
	}
}
