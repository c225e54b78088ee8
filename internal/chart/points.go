package chart

import "math"

// Points is a series of (x, y) values with symmetric uncertainties. It
// satisfies gonum's plotter.XYer, plotter.XErrorer and plotter.YErrorer.
// Nil error slices mean zero error.
type Points struct {
	X, Y       []float64
	XErr, YErr []float64
}

func (p Points) Len() int { return len(p.X) }

func (p Points) XY(i int) (float64, float64) { return p.X[i], p.Y[i] }

func (p Points) XError(i int) (float64, float64) {
	e := at(p.XErr, i)
	return e, e
}

func (p Points) YError(i int) (float64, float64) {
	e := at(p.YErr, i)
	return e, e
}

// Append adds one point.
func (p *Points) Append(x, y, xerr, yerr float64) {
	p.X = append(p.X, x)
	p.Y = append(p.Y, y)
	p.XErr = append(p.XErr, xerr)
	p.YErr = append(p.YErr, yerr)
}

// Finite returns the points whose coordinates are both finite, together
// with the number dropped. Non-finite errors are replaced by 0.
func (p Points) Finite() (Points, int) {
	var out Points
	dropped := 0
	for i := 0; i < p.Len(); i++ {
		x, y := p.XY(i)
		if !finite(x) || !finite(y) {
			dropped++
			continue
		}
		xe, ye := at(p.XErr, i), at(p.YErr, i)
		if !finite(xe) {
			xe = 0
		}
		if !finite(ye) {
			ye = 0
		}
		out.Append(x, y, xe, ye)
	}
	return out, dropped
}

func at(s []float64, i int) float64 {
	if i >= len(s) {
		return 0
	}
	return s[i]
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
