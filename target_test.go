// target_test.go - unit tests for Target's product-of-active-links combination

package synthcore

import "testing"

func TestTarget_NoLinksReturnsDefault(t *testing.T) {
	tg := NewTarget(nil)
	if got := tg.GetValue(instWithControllers(), 0, 0.7); got != 0.7 {
		t.Errorf("GetValue with no links = %v, want default 0.7", got)
	}
}

func TestTarget_AllInertLinksStillClampsDefault(t *testing.T) {
	tg := NewTarget([]*Link{NewLink(-1, 1, nil), NewLink(-1, 1, nil)})
	if got := tg.GetValue(instWithControllers(), 0, 5); got != 1 {
		t.Errorf("all-inert GetValue = %v, want default 5 clamped to 1", got)
	}
	if got := tg.GetValue(instWithControllers(), 0, -5); got != 0 {
		t.Errorf("all-inert GetValue = %v, want default -5 clamped to 0", got)
	}
}

func TestTarget_ActiveLinksMultiplyAndClamp(t *testing.T) {
	inst := instWithControllers(0.5, 0.5)
	tg := NewTarget([]*Link{NewLink(0, 1, nil), NewLink(1, 1, nil)})
	if got := tg.GetValue(inst, 0, 1); got != 0.25 {
		t.Errorf("product of two 0.5 links = %v, want 0.25", got)
	}
}

func TestTarget_ProductClampedToUnitRange(t *testing.T) {
	inst := instWithControllers(0.9)
	overOne := NewLinearCurve([]CurvePoint{{X: 0, Y: 0}, {X: 1, Y: 5}})
	tg := NewTarget([]*Link{NewLink(0, 1, overOne)})
	if got := tg.GetValue(inst, 0, 0); got != 1 {
		t.Errorf("GetValue = %v, want clamped to 1", got)
	}
}

func TestTarget_MixOfActiveAndInertLinksIgnoresInert(t *testing.T) {
	inst := instWithControllers(0.4)
	tg := NewTarget([]*Link{NewLink(0, 1, nil), NewLink(-1, 1, nil)})
	if got := tg.GetValue(inst, 0, 0); got != 0.4 {
		t.Errorf("GetValue = %v, want 0.4 (inert link ignored)", got)
	}
}
