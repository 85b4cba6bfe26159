// curve.go - Bezier curve compiled to a fast evaluator

package synthcore

import "math"

const curveFloatEpsilon = 1e-5

// curveMode selects which evaluator a compiled Curve uses.
type curveMode int

const (
	curveConstant curveMode = iota
	curveLinear
	curveSampled
)

const curveSampleCount = 101 // 0..100 inclusive, matching the 101-point resampling grid

// CurvePoint is one Bezier control point (x = time or input fraction, y = output).
type CurvePoint struct {
	X, Y float64
}

// Curve is immutable once built. It evaluates to a float64 in an
// implementation-defined range, optionally affine-rescaled into [0,1]
// against a declared [min,max] when it drives a normalized controller.
type Curve struct {
	mode   curveMode
	points []CurvePoint // sorted by X; used by constant/linear modes

	// sampled mode: 101 evenly spaced y values across [minX, maxX]
	samples    [curveSampleCount]float64
	minX, maxX float64

	rescale    bool
	rangeMin   float64
	rangeSpan  float64 // rangeMax - rangeMin; zero-guarded at evaluation
}

// NewConstantCurve builds a curve that holds each point's y until the next
// point's x is reached (degenerate/empty curves evaluate to 0).
func NewConstantCurve(points []CurvePoint) *Curve {
	return &Curve{mode: curveConstant, points: append([]CurvePoint(nil), points...)}
}

// NewLinearCurve builds a curve piecewise-linear between points.
func NewLinearCurve(points []CurvePoint) *Curve {
	return &Curve{mode: curveLinear, points: append([]CurvePoint(nil), points...)}
}

// NewBezierCurve resamples a smooth curve through points into 101 evenly
// spaced samples across the control points' x-range, then evaluates by
// linear interpolation between samples (the "sampled" evaluator mode).
// CurvePoint carries only (x,y), not the incoming/outgoing tangent handles
// a true Bezier control point would have, so each segment's tangent is
// derived from its neighbors via a Catmull-Rom spline rather than read off
// the point itself - a smooth interpolant through the same control points,
// without inventing handle data the type doesn't carry.
func NewBezierCurve(points []CurvePoint) *Curve {
	c := &Curve{mode: curveSampled, points: append([]CurvePoint(nil), points...)}
	if len(points) == 0 {
		return c
	}
	c.minX, c.maxX = points[0].X, points[0].X
	for _, p := range points {
		if p.X < c.minX {
			c.minX = p.X
		}
		if p.X > c.maxX {
			c.maxX = p.X
		}
	}
	span := c.maxX - c.minX
	if span < curveFloatEpsilon {
		// Degenerate range: every sample equals the first point's y.
		for i := range c.samples {
			c.samples[i] = points[0].Y
		}
		return c
	}
	for i := 0; i < curveSampleCount; i++ {
		x := c.minX + span*float64(i)/float64(curveSampleCount-1)
		c.samples[i] = catmullRomAt(points, x)
	}
	return c
}

// catmullRomAt evaluates a Catmull-Rom spline through points (sorted by X)
// at x, holding the nearest endpoint's Y outside the control range.
func catmullRomAt(points []CurvePoint, x float64) float64 {
	n := len(points)
	if n == 1 {
		return points[0].Y
	}
	if x <= points[0].X {
		return points[0].Y
	}
	if x >= points[n-1].X {
		return points[n-1].Y
	}
	seg := 0
	for seg < n-2 && x >= points[seg+1].X {
		seg++
	}
	p0, p1, p2, p3 := catmullRomNeighbors(points, seg)
	dx := p2.X - p1.X
	if dx < curveFloatEpsilon {
		return p1.Y
	}
	t := (x - p1.X) / dx
	return catmullRomInterpolate(p0.Y, p1.Y, p2.Y, p3.Y, t)
}

// catmullRomNeighbors returns the four control points bracketing segment
// seg (points[seg] to points[seg+1]), synthesizing a virtual point past
// either end by linear extrapolation when there is no real neighbor.
func catmullRomNeighbors(points []CurvePoint, seg int) (p0, p1, p2, p3 CurvePoint) {
	n := len(points)
	p1, p2 = points[seg], points[seg+1]
	if seg == 0 {
		p0 = CurvePoint{X: p1.X - (p2.X - p1.X), Y: p1.Y}
	} else {
		p0 = points[seg-1]
	}
	if seg+2 >= n {
		p3 = CurvePoint{X: p2.X + (p2.X - p1.X), Y: p2.Y}
	} else {
		p3 = points[seg+2]
	}
	return p0, p1, p2, p3
}

// catmullRomInterpolate is the standard uniform Catmull-Rom basis applied
// to four Y values at parameter t in [0,1] between y1 and y2.
func catmullRomInterpolate(y0, y1, y2, y3, t float64) float64 {
	t2 := t * t
	t3 := t2 * t
	return 0.5 * (2*y1 +
		(-y0+y2)*t +
		(2*y0-5*y1+4*y2-y3)*t2 +
		(-y0+3*y1-3*y2+y3)*t3)
}

// WithRescale returns a copy of the curve that affine-rescales its raw
// output y into (y-min)/(max-min), used when a curve drives a Controller's
// normalized [0,1] value. A degenerate [min,max] (span < epsilon) disables
// the rescale to avoid division by ~zero.
func (c *Curve) WithRescale(min, max float64) *Curve {
	cp := *c
	span := max - min
	if span < curveFloatEpsilon {
		cp.rescale = false
		return &cp
	}
	cp.rescale = true
	cp.rangeMin = min
	cp.rangeSpan = span
	return &cp
}

// Evaluate returns the curve's value at x, clamped to the endpoint y
// outside the control-point range.
func (c *Curve) Evaluate(x float64) float64 {
	var y float64
	switch c.mode {
	case curveConstant:
		y = c.evalConstant(x)
	case curveLinear:
		y = c.evalLinear(x)
	case curveSampled:
		y = c.evalSampled(x)
	}
	if c.rescale {
		y = (y - c.rangeMin) / c.rangeSpan
	}
	return y
}

func (c *Curve) evalConstant(x float64) float64 {
	if len(c.points) == 0 {
		return 0
	}
	y := c.points[0].Y
	for _, p := range c.points {
		if p.X > x {
			break
		}
		y = p.Y
	}
	return y
}

func (c *Curve) evalLinear(x float64) float64 {
	n := len(c.points)
	if n == 0 {
		return 0
	}
	if x <= c.points[0].X {
		return c.points[0].Y
	}
	if x >= c.points[n-1].X {
		return c.points[n-1].Y
	}
	for i := 0; i < n-1; i++ {
		a, b := c.points[i], c.points[i+1]
		if x >= a.X && x <= b.X {
			dx := b.X - a.X
			if dx < curveFloatEpsilon {
				return a.Y
			}
			t := (x - a.X) / dx
			return a.Y + (b.Y-a.Y)*t
		}
	}
	return c.points[n-1].Y
}

func (c *Curve) evalSampled(x float64) float64 {
	if c.maxX-c.minX < curveFloatEpsilon {
		return c.samples[0]
	}
	if x <= c.minX {
		return c.samples[0]
	}
	if x >= c.maxX {
		return c.samples[curveSampleCount-1]
	}
	pos := (x - c.minX) / (c.maxX - c.minX) * float64(curveSampleCount-1)
	idx := int(math.Floor(pos))
	if idx >= curveSampleCount-1 {
		return c.samples[curveSampleCount-1]
	}
	frac := pos - float64(idx)
	return c.samples[idx] + (c.samples[idx+1]-c.samples[idx])*frac
}
