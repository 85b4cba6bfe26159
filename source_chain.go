// source_chain.go - the Chain primitive: a play/select state machine over
// several SoundAssets, with a Pause/Wait/Play transition ladder

package synthcore

import "math"

// chainState: position (uint32) + blend (float64) + state byte (0=Idle/
// Pause, 1=Wait, 2=Playing, 3=Ended) + selected asset index (uint32) +
// defunct flag.
const chainStateBytes = 4 + 8 + 1 + 4 + 1

const (
	chainStateIdle = iota
	chainStateWait
	chainStatePlaying
	chainStateEnded // last sample reached; silent until play drops below the pause threshold
)

type chainSource struct {
	offset int

	assets  []*SoundAsset
	looping bool

	minSpeed, maxSpeed float64
	speedTarget        *Target
	playTarget         *Target
	selectTarget       *Target

	pausePlayThreshold float64 // below: Pause/Idle
	waitPlayThreshold  float64 // below (and >= pause): Wait
}

// ChainDef is the declarative description of a Chain source.
type ChainDef struct {
	Silent                 bool
	MixMode                MixMode
	MinVolume, MaxVolume   float64
	VolumeLinks            []LinkDef
	MinPanning, MaxPanning float64
	PanningLinks           []LinkDef
	BlendLinks             []LinkDef
	Effects                []EffectDef

	Assets             []*SoundAsset
	Looping            bool
	MinSpeed, MaxSpeed float64
	SpeedLinks         []LinkDef
	PlayLinks          []LinkDef
	SelectLinks        []LinkDef
}

func (d ChainDef) build(mapping []int) *Source {
	prim := &chainSource{
		assets:             d.Assets,
		looping:            d.Looping,
		minSpeed:           d.MinSpeed,
		maxSpeed:           d.MaxSpeed,
		speedTarget:        buildTarget(d.SpeedLinks, mapping),
		playTarget:         buildTarget(d.PlayLinks, mapping),
		selectTarget:       buildTarget(d.SelectLinks, mapping),
		pausePlayThreshold: 0.25,
		waitPlayThreshold:  0.5,
	}
	s := newSource("Chain", prim)
	applyCommonDef(s, d.Silent, d.MixMode, d.MinVolume, d.MaxVolume, d.VolumeLinks,
		d.MinPanning, d.MaxPanning, d.PanningLinks, d.BlendLinks, d.Effects, mapping)
	if len(d.Assets) == 0 {
		s.Silent = true
	}
	return s
}

func (c *chainSource) ownStateSize() int   { return chainStateBytes }
func (c *chainSource) bindOffset(off int)  { c.offset = off }
func (c *chainSource) children() []*Source { return nil }

func (c *chainSource) initOwnState(state []byte) {
	putUint32(state, c.offset, 0)
	putFloat64(state, c.offset+4, 0)
	state[c.offset+12] = chainStateIdle
	putUint32(state, c.offset+13, 0)
	putBool(state, c.offset+17, false)
}

func (c *chainSource) getPos(state []byte) uint32      { return getUint32(state, c.offset) }
func (c *chainSource) setPos(state []byte, v uint32)    { putUint32(state, c.offset, v) }
func (c *chainSource) getBlend(state []byte) float64    { return getFloat64(state, c.offset+4) }
func (c *chainSource) setBlend(state []byte, v float64) { putFloat64(state, c.offset+4, v) }
func (c *chainSource) getPhase(state []byte) int        { return int(state[c.offset+12]) }
func (c *chainSource) setPhase(state []byte, v int)     { state[c.offset+12] = byte(v) }
func (c *chainSource) getSelected(state []byte) uint32  { return getUint32(state, c.offset+13) }
func (c *chainSource) setSelected(state []byte, v uint32) { putUint32(state, c.offset+13, v) }
func (c *chainSource) getDefunct(state []byte) bool     { return getBool(state, c.offset+17) }
func (c *chainSource) setDefunct(state []byte, v bool)  { putBool(state, c.offset+17, v) }

func (c *chainSource) currentAsset(state []byte) *SoundAsset {
	if len(c.assets) == 0 {
		return nil
	}
	idx := int(c.getSelected(state))
	if idx < 0 || idx >= len(c.assets) {
		return nil
	}
	return c.assets[idx]
}

// advancePhase runs the Pause/Wait/Play transition ladder for one sample,
// reading select once at the Idle→Playing transition.
func (c *chainSource) advancePhase(inst *SynthesizerInstance, state []byte, pos int) {
	playVal := c.playTarget.GetValue(inst, pos, 0)
	phase := c.getPhase(state)
	switch {
	case playVal < c.pausePlayThreshold:
		if phase != chainStateIdle {
			c.setPos(state, 0)
			c.setBlend(state, 0)
		}
		c.setPhase(state, chainStateIdle)
	case phase == chainStateEnded:
		// stays Ended until play falls below the pause threshold
	case playVal < c.waitPlayThreshold:
		c.setPhase(state, chainStateWait)
	default:
		if phase != chainStatePlaying {
			n := len(c.assets)
			sel := int(math.Floor(c.selectTarget.GetValue(inst, pos, 0) * float64(n)))
			if sel < 0 {
				sel = 0
			}
			if sel >= n && n > 0 {
				sel = n - 1
			}
			c.setSelected(state, uint32(sel))
			c.setPos(state, 0)
			c.setBlend(state, 0)
		}
		c.setPhase(state, chainStatePlaying)
	}
}

func (c *chainSource) generateSource(inst *SynthesizerInstance, source *Source, state []byte, buf []float32, samples int, win CurveWindow) {
	channels := channelsOf(inst)
	for i := range buf[:samples*channels] {
		buf[i] = 0
	}
	if len(c.assets) == 0 || c.getDefunct(state) {
		return
	}

	for i := 0; i < samples; i++ {
		pos := win.EvalPos(i)
		c.advancePhase(inst, state, pos)

		if c.getPhase(state) != chainStatePlaying {
			writeSilenceFrame(buf, i, channels)
			continue
		}

		asset := c.currentAsset(state)
		if asset == nil {
			writeSilenceFrame(buf, i, channels)
			continue
		}
		if asset.SampleRate() != inst.SampleRate() {
			c.setDefunct(state, true)
			writeSilenceFrame(buf, i, channels)
			continue
		}

		sampleCount := asset.SampleCount()
		idx := int(c.getPos(state))
		if idx >= sampleCount-1 {
			// last sample reached: stay silent until play drops below the
			// pause threshold; the next Playing transition after that picks
			// a new asset via select.
			c.setPhase(state, chainStateEnded)
			c.setPos(state, 0)
			c.setBlend(state, 0)
			writeSilenceFrame(buf, i, channels)
			continue
		}

		blend := c.getBlend(state)
		l0, r0 := asset.Frame(idx)
		l1, r1 := asset.Frame(idx + 1)
		l := l0 + (l1-l0)*float32(blend)
		r := r0 + (r1-r0)*float32(blend)

		pan := source.GetPanning(inst, pos)
		writeAssetFrame(buf, i, channels, asset.Channels(), l, r, pan)

		speed := c.minSpeed + (c.maxSpeed-c.minSpeed)*c.speedTarget.GetValue(inst, pos, 0)
		c.advancePosition(state, sampleCount, speed)
	}
}

func (c *chainSource) advancePosition(state []byte, sampleCount int, delta float64) {
	pos := c.getPos(state)
	blend := c.getBlend(state) + delta
	step := uint32(math.Floor(blend))
	blend -= float64(step)
	newPos := pos + step
	if c.looping && sampleCount > 0 {
		newPos %= uint32(sampleCount)
	} else if int(newPos) > sampleCount-1 {
		newPos = uint32(max(sampleCount-1, 0))
	}
	c.setPos(state, newPos)
	c.setBlend(state, blend)
}

func (c *chainSource) skipSource(inst *SynthesizerInstance, source *Source, state []byte, samples int, win CurveWindow) {
	if len(c.assets) == 0 || c.getDefunct(state) {
		return
	}
	for i := 0; i < samples; i++ {
		pos := win.EvalPos(i)
		c.advancePhase(inst, state, pos)
		if c.getPhase(state) != chainStatePlaying {
			continue
		}
		asset := c.currentAsset(state)
		if asset == nil {
			continue
		}
		speed := c.minSpeed + (c.maxSpeed-c.minSpeed)*c.speedTarget.GetValue(inst, pos, 0)
		c.advancePosition(state, asset.SampleCount(), speed)
	}
}
