// link.go - binding of one controller, through one curve, to one target

package synthcore

import "math"

// Link is immutable once constructed. ControllerIndex == -1 marks an inert
// link: it contributes the target's default value rather than reading any
// controller.
type Link struct {
	ControllerIndex int
	Repeat          int // >=1; >1 means cyclic driving (frac(value*repeat))
	Curve           *Curve
}

// NewLink builds a plain link (no sub-synth remapping).
func NewLink(controllerIndex, repeat int, curve *Curve) *Link {
	if repeat < 1 {
		repeat = 1
	}
	return &Link{ControllerIndex: controllerIndex, Repeat: repeat, Curve: curve}
}

// NewRemappedLink builds a link for a SubSynth's copied child links: the
// child's controller index is passed through mapping (parent controller
// index per child controller index); an out-of-range or already-inert
// index becomes inert (-1). This is the same remapping remapController
// applies when SubSynth builds its child targets in synthesizer.go.
func NewRemappedLink(childControllerIndex, repeat int, curve *Curve, mapping []int) *Link {
	idx := -1
	if childControllerIndex >= 0 && childControllerIndex < len(mapping) {
		idx = mapping[childControllerIndex]
	}
	return NewLink(idx, repeat, curve)
}

// HasController reports whether this link reads a live controller.
func (l *Link) HasController() bool { return l.ControllerIndex != -1 }

// GetValue evaluates the link at the given sample index. instance supplies
// the controller array; defaultValue is returned verbatim for an inert link.
func (l *Link) GetValue(instance *SynthesizerInstance, sample int, defaultValue float64) float64 {
	if l.ControllerIndex == -1 {
		return defaultValue
	}
	value := instance.controllerValue(l.ControllerIndex, sample)
	if l.Repeat > 1 {
		value *= float64(l.Repeat)
		value -= math.Floor(value)
	}
	if l.Curve == nil {
		return value
	}
	return l.Curve.Evaluate(value)
}
