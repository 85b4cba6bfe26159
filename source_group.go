// source_group.go - the Group primitive: All/Select/Solo over a list of children

package synthcore

import "math"

type GroupMode int

const (
	GroupAll GroupMode = iota
	GroupSelect
	GroupSolo
)

type groupSource struct {
	offset   int
	mode     GroupMode
	childSources []*Source
	selectTarget *Target
}

// groupRuntime is the per-instance scratch state for a Select/Solo group:
// one claimed buffer per child slot plus whether that slot was touched
// this call, reused across calls instead of allocated fresh each time.
type groupRuntime struct {
	scratch [][]float32
	touched []bool
}

// GroupDef is the declarative description of a Group source.
type GroupDef struct {
	Silent                 bool
	MixMode                MixMode
	MinVolume, MaxVolume   float64
	VolumeLinks            []LinkDef
	MinPanning, MaxPanning float64
	PanningLinks           []LinkDef
	BlendLinks             []LinkDef
	Effects                []EffectDef

	Mode        GroupMode
	Children    []SourceDef
	SelectLinks []LinkDef
}

func (d GroupDef) build(mapping []int) *Source {
	children := make([]*Source, len(d.Children))
	for i, cd := range d.Children {
		children[i] = cd.build(mapping)
	}
	prim := &groupSource{
		mode:         d.Mode,
		childSources:    children,
		selectTarget: buildTarget(d.SelectLinks, mapping),
	}
	s := newSource("Group", prim)
	applyCommonDef(s, d.Silent, d.MixMode, d.MinVolume, d.MaxVolume, d.VolumeLinks,
		d.MinPanning, d.MaxPanning, d.PanningLinks, d.BlendLinks, d.Effects, mapping)
	return s
}

func (g *groupSource) ownStateSize() int    { return 0 }
func (g *groupSource) bindOffset(off int)   { g.offset = off }
func (g *groupSource) initOwnState([]byte)  {}
func (g *groupSource) children() []*Source  { return g.childSources }

// selectIndex returns the fractional child-index position for value v.
func (g *groupSource) selectIndex(inst *SynthesizerInstance, pos int) float64 {
	n := len(g.childSources)
	if n == 0 {
		return 0
	}
	v := g.selectTarget.GetValue(inst, pos, 0)
	idx := v * float64(n-1)
	if n == 1 {
		idx = 0
	}
	return idx
}

func (g *groupSource) generateSource(inst *SynthesizerInstance, source *Source, state []byte, buf []float32, samples int, win CurveWindow) {
	channels := channelsOf(inst)
	for i := range buf[:samples*channels] {
		buf[i] = 0
	}
	if len(g.childSources) == 0 {
		return
	}

	switch g.mode {
	case GroupAll:
		for _, child := range g.childSources {
			_ = child.Generate(inst, state, buf, samples, win)
		}
	case GroupSelect:
		g.generateSelectOrSolo(inst, state, buf, samples, win, channels, true)
	case GroupSolo:
		g.generateSelectOrSolo(inst, state, buf, samples, win, channels, false)
	}
}

func (g *groupSource) generateSelectOrSolo(inst *SynthesizerInstance, state []byte, buf []float32, samples int, win CurveWindow, channels int, blend bool) {
	n := len(g.childSources)
	last := n - 1
	rt := inst.groupScratch(g.offset, n)
	scratch := rt.scratch
	touched := rt.touched
	for k := range touched {
		touched[k] = false
	}

	ensure := func(k int) []float32 {
		if k < 0 || k > last {
			return nil
		}
		if scratch[k] == nil {
			cbuf, err := inst.pool.Claim(samples * channels)
			if err != nil {
				return nil
			}
			cbuf = cbuf[:samples*channels]
			for i := range cbuf {
				cbuf[i] = 0
			}
			touched[k] = true
			scratch[k] = cbuf
			_ = g.childSources[k].Generate(inst, state, scratch[k], samples, win)
		}
		return scratch[k]
	}

	defer func() {
		for k, s := range scratch {
			if s != nil {
				inst.pool.Release(s)
				scratch[k] = nil
			}
			if !touched[k] {
				g.childSources[k].SkipSound(inst, state, samples, win)
			}
		}
	}()

	for i := 0; i < samples; i++ {
		pos := win.EvalPos(i)
		idx := g.selectIndex(inst, pos)
		k := int(math.Floor(idx))
		if k < 0 {
			k = 0
		}
		if k > last {
			k = last
		}
		alpha := idx - math.Floor(idx)

		if !blend {
			kk := k
			if alpha >= 0.5 && k < last {
				kk = k + 1
			}
			src := ensure(kk)
			copyFrame(buf, src, i, channels)
			continue
		}

		k1 := k
		if k1 < last {
			k1++
		}
		a := ensure(k)
		b := ensure(k1)
		mixFrames(buf, a, b, i, channels, alpha)
	}
}

func copyFrame(dst, src []float32, i, channels int) {
	if src == nil {
		return
	}
	for c := 0; c < channels; c++ {
		dst[i*channels+c] = src[i*channels+c]
	}
}

func mixFrames(dst, a, b []float32, i, channels int, alpha float64) {
	for c := 0; c < channels; c++ {
		var av, bv float32
		if a != nil {
			av = a[i*channels+c]
		}
		if b != nil {
			bv = b[i*channels+c]
		}
		dst[i*channels+c] = av + (bv-av)*float32(alpha)
	}
}

func (g *groupSource) skipSource(inst *SynthesizerInstance, source *Source, state []byte, samples int, win CurveWindow) {
	for _, child := range g.childSources {
		child.SkipSound(inst, state, samples, win)
	}
}
