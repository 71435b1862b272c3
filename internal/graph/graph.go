// Package graph samples a calculator expression over a range of one free
// variable for plotting.
package graph

import (
	"errors"
	"math"

	"go-chi-calculator/internal/brain"
)

// MinSamples is the smallest sample count that covers both ends of a range.
const MinSamples = 2

var (
	ErrTooFewSamples = errors.New("graph: at least two samples required")
	ErrEmptyRange    = errors.New("graph: range is empty, not finite or too wide")
)

// Func returns the value of the plotted expression at x, or false when there
// is none.
type Func func(x float64) (float64, bool)

// Range is a closed interval of x values.
type Range struct {
	From, To float64
}

// Options tune sampling.
type Options struct {
	// MaxJump, when positive, starts a new segment between two consecutive
	// samples whose y values differ by MaxJump or more.
	MaxJump float64
}

// Point is one sample. Gap points have no plottable y.
type Point struct {
	X   float64
	Y   float64
	Gap bool

	// Break marks the first point of a segment that follows a jump.
	Break bool
}

// Plot is the sampled curve.
type Plot struct {
	Points []Point
}

// ForTokens plots tokens with variable bound to x. Other variables evaluate
// to zero.
func ForTokens(tokens []brain.Token, variable string) Func {
	return func(x float64) (float64, bool) {
		ev := brain.Evaluate(tokens, map[string]float64{variable: x})
		return ev.Result, ev.HasResult
	}
}

// Sample evaluates fn at n evenly spaced points of r, ends included.
func Sample(fn Func, r Range, n int, opts Options) (Plot, error) {
	if n < MinSamples {
		return Plot{}, ErrTooFewSamples
	}
	if !finite(r.From) || !finite(r.To) || r.From >= r.To || !finite(r.To-r.From) {
		return Plot{}, ErrEmptyRange
	}

	step := (r.To - r.From) / float64(n-1)
	points := make([]Point, n)
	var prev *Point
	for i := range points {
		x := r.From + float64(i)*step
		if i == n-1 {
			x = r.To
		}
		p := Point{X: x}
		y, ok := fn(x)
		if !ok || !finite(y) {
			p.Gap = true
		} else {
			p.Y = y
			if opts.MaxJump > 0 && prev != nil && !prev.Gap && math.Abs(y-prev.Y) >= opts.MaxJump {
				p.Break = true
			}
		}
		points[i] = p
		prev = &points[i]
	}
	return Plot{Points: points}, nil
}

// Segments splits the plot into maximal runs of points that can be joined
// with lines.
func (p Plot) Segments() [][]Point {
	var (
		segs [][]Point
		cur  []Point
	)
	for _, pt := range p.Points {
		if pt.Gap || pt.Break {
			if len(cur) > 0 {
				segs = append(segs, cur)
			}
			cur = nil
			if pt.Gap {
				continue
			}
		}
		cur = append(cur, pt)
	}
	if len(cur) > 0 {
		segs = append(segs, cur)
	}
	return segs
}

func finite(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}
