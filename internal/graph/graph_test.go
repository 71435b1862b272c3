package graph

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"go-chi-calculator/internal/brain"
)

func TestSampleEvenlySpacedInclusive(t *testing.T) {
	plot, err := Sample(func(x float64) (float64, bool) { return 2 * x, true }, Range{From: -1, To: 1}, 5, Options{})
	if err != nil {
		t.Fatalf("sampling: %v", err)
	}

	want := []Point{{X: -1, Y: -2}, {X: -0.5, Y: -1}, {X: 0, Y: 0}, {X: 0.5, Y: 1}, {X: 1, Y: 2}}
	if diff := cmp.Diff(want, plot.Points); diff != "" {
		t.Fatalf("points mismatch (-want +got):\n%s", diff)
	}
	if segs := plot.Segments(); len(segs) != 1 || len(segs[0]) != 5 {
		t.Fatalf("expected one segment of 5 points, got %v", segs)
	}
}

func TestSampleReciprocalHasGapAtZero(t *testing.T) {
	b := brain.New()
	b.SetVariable("M")
	b.PerformOperation("x⁻¹")

	plot, err := Sample(ForTokens(b.Tokens(), "M"), Range{From: -2, To: 2}, 5, Options{})
	if err != nil {
		t.Fatalf("sampling: %v", err)
	}

	if !plot.Points[2].Gap {
		t.Fatalf("expected a gap at x=0, got %+v", plot.Points[2])
	}
	segs := plot.Segments()
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segs))
	}
	if segs[0][0].Y != -0.5 || segs[1][1].Y != 0.5 {
		t.Fatalf("unexpected segment values %v", segs)
	}
}

func TestSampleAbsentResultIsGap(t *testing.T) {
	b := brain.New()
	b.PerformOperation("cos")

	plot, err := Sample(ForTokens(b.Tokens(), "x"), Range{From: 0, To: 1}, 3, Options{})
	if err != nil {
		t.Fatalf("sampling: %v", err)
	}
	for _, p := range plot.Points {
		if !p.Gap {
			t.Fatalf("expected every point to be a gap, got %+v", p)
		}
	}
	if segs := plot.Segments(); len(segs) != 0 {
		t.Fatalf("expected no segments, got %v", segs)
	}
}

func TestSampleMaxJumpBreaksSegment(t *testing.T) {
	step := func(x float64) (float64, bool) {
		if x < 0 {
			return -10, true
		}
		return 10, true
	}
	plot, err := Sample(step, Range{From: -1, To: 1}, 4, Options{MaxJump: 5})
	if err != nil {
		t.Fatalf("sampling: %v", err)
	}
	segs := plot.Segments()
	if len(segs) != 2 || len(segs[0]) != 2 || len(segs[1]) != 2 {
		t.Fatalf("expected two segments of two points, got %v", segs)
	}
}

func TestSampleRejectsBadInput(t *testing.T) {
	id := func(x float64) (float64, bool) { return x, true }

	if _, err := Sample(id, Range{From: 0, To: 1}, 1, Options{}); !errors.Is(err, ErrTooFewSamples) {
		t.Fatalf("expected ErrTooFewSamples, got %v", err)
	}
	for _, r := range []Range{
		{From: 1, To: 1},
		{From: 2, To: 1},
		{From: math.Inf(-1), To: 0},
		{From: -1e308, To: 1e308},
	} {
		if _, err := Sample(id, r, 10, Options{}); !errors.Is(err, ErrEmptyRange) {
			t.Fatalf("range %+v: expected ErrEmptyRange, got %v", r, err)
		}
	}
}
