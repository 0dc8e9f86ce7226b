package hrv

import (
	"math"
	"testing"
)

func TestCleanPassthrough(t *testing.T) {
	in := []float64{800, 810, 790, 805, 795}
	out := Clean(in)
	if len(out) != len(in) {
		t.Fatalf("length changed: %d -> %d", len(in), len(out))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("value %d changed without outliers: %v -> %v", i, in[i], out[i])
		}
	}
}

func TestCleanInterpolatesOutlier(t *testing.T) {
	// A run of ~800 ms with one implausible spike in the middle.
	in := make([]float64, 0, 21)
	for i := 0; i < 21; i++ {
		in = append(in, 800+float64(i%3))
	}
	in[10] = 3000

	out := Clean(in)
	if len(out) != len(in) {
		t.Fatalf("length changed: %d -> %d", len(in), len(out))
	}
	if out[10] == 3000 {
		t.Fatalf("outlier survived cleaning")
	}
	// Interpolated value sits between its surviving neighbours.
	if out[10] < 790 || out[10] > 810 {
		t.Fatalf("interpolated value out of range: %v", out[10])
	}
	// Everything else untouched.
	for i := range in {
		if i == 10 {
			continue
		}
		if out[i] != in[i] {
			t.Fatalf("non-outlier %d changed: %v -> %v", i, in[i], out[i])
		}
	}
}

func TestCleanDoesNotMutateInput(t *testing.T) {
	in := make([]float64, 0, 21)
	for i := 0; i < 21; i++ {
		in = append(in, 800)
	}
	in[5] = 4000
	snapshot := append([]float64(nil), in...)

	Clean(in)
	for i := range in {
		if in[i] != snapshot[i] {
			t.Fatalf("input mutated at %d", i)
		}
	}
}

func TestCleanShortInput(t *testing.T) {
	in := []float64{800, 4000}
	out := Clean(in)
	if len(out) != 2 || out[1] != 4000 {
		t.Fatalf("short input must pass through, got %v", out)
	}
}

func TestInterpolateEdges(t *testing.T) {
	xs := []float64{1, 3}
	ys := []float64{10, 30}
	if got := interpolate(xs, ys, 2); math.Abs(got-20) > 1e-9 {
		t.Fatalf("midpoint: expected 20, got %v", got)
	}
	if got := interpolate(xs, ys, 0); math.Abs(got-0) > 1e-9 {
		t.Fatalf("left extrapolation: expected 0, got %v", got)
	}
	if got := interpolate(xs, ys, 4); math.Abs(got-40) > 1e-9 {
		t.Fatalf("right extrapolation: expected 40, got %v", got)
	}
}
