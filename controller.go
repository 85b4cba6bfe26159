// controller.go - per-instance time-varying scalar sampled from a curve

package synthcore

import "math"

// Controller is owned by a SynthesizerInstance and shares its lifetime.
type Controller struct {
	Min, Max float64
	Clamp    bool // true: clamp to [0,1]; false: wrap (frac) into [0,1)

	curve *Curve
	dirty bool

	values []float64 // dense per-sample vector, grown but never shrunk
}

// NewController returns a controller with the documented defaults:
// min=0, max=1, clamp=true.
func NewController() *Controller {
	return &Controller{Min: 0, Max: 1, Clamp: true}
}

// Update recompiles the controller's evaluation curve against its current
// [min,max], affine-rescaling raw curve output into normalized [0,1] space.
// Unlike Link curves, a Controller's curve is always rebuilt here - it is
// never reused verbatim across Update calls.
func (c *Controller) Update(raw *Curve) {
	c.curve = raw.WithRescale(c.Min, c.Max)
	c.dirty = false
}

func (c *Controller) MarkDirty() { c.dirty = true }
func (c *Controller) Dirty() bool { return c.dirty }

// UpdateValues samples the controller's curve into a dense vector spanning
// `samples` entries starting at `time`, stepping by `step` (= inv_sample_rate).
// The backing slice grows in place and is never reallocated once it reaches
// steady-state size, keeping this off the post-warmup allocation path.
func (c *Controller) UpdateValues(samples int, time, step float64) {
	if cap(c.values) < samples {
		c.values = make([]float64, samples)
	} else {
		c.values = c.values[:samples]
	}
	if c.curve == nil {
		for i := range c.values {
			c.values[i] = 0
		}
		return
	}
	t := time
	for i := 0; i < samples; i++ {
		v := c.curve.Evaluate(t)
		if c.Clamp {
			if v < 0 {
				v = 0
			} else if v > 1 {
				v = 1
			}
		} else {
			v -= math.Floor(v)
		}
		c.values[i] = v
		t += step
	}
}

// Value returns the sampled value at index i within the vector built by the
// most recent UpdateValues call.
func (c *Controller) Value(i int) float64 {
	if i < 0 || i >= len(c.values) {
		return 0
	}
	return c.values[i]
}
