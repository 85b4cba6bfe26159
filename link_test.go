// link_test.go - unit tests for Link's controller-to-value binding

package synthcore

import "testing"

func instWithControllers(values ...float64) *SynthesizerInstance {
	inst := &SynthesizerInstance{}
	inst.controllers = make([]*Controller, len(values))
	for i, v := range values {
		c := NewController()
		c.Update(NewConstantCurve([]CurvePoint{{X: 0, Y: v}}))
		c.UpdateValues(1, 0, 1)
		inst.controllers[i] = c
	}
	return inst
}

func TestLink_InertReturnsDefault(t *testing.T) {
	l := NewLink(-1, 1, nil)
	if l.HasController() {
		t.Fatal("inert link reports HasController() = true")
	}
	if got := l.GetValue(instWithControllers(), 0, 0.42); got != 0.42 {
		t.Errorf("inert GetValue = %v, want default 0.42", got)
	}
}

func TestLink_ReadsControllerAndAppliesCurve(t *testing.T) {
	inst := instWithControllers(0.5)
	l := NewLink(0, 1, NewLinearCurve([]CurvePoint{{X: 0, Y: 0}, {X: 1, Y: 10}}))
	if got := l.GetValue(inst, 0, 0); got != 5 {
		t.Errorf("GetValue = %v, want 5", got)
	}
}

func TestLink_RepeatCyclesValue(t *testing.T) {
	inst := instWithControllers(0.6)
	l := NewLink(0, 3, nil) // repeat=3: frac(0.6*3) = frac(1.8) = 0.8
	if got := l.GetValue(inst, 0, 0); got < 0.79 || got > 0.81 {
		t.Errorf("repeated GetValue = %v, want ~0.8", got)
	}
}

func TestLink_RepeatBelowOneClampsToOne(t *testing.T) {
	l := NewLink(0, 0, nil)
	if l.Repeat != 1 {
		t.Errorf("Repeat = %d, want clamped to 1", l.Repeat)
	}
}
