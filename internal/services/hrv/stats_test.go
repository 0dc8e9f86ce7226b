package hrv

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestRMSSD(t *testing.T) {
	// diffs 10 and -20: sqrt((100+400)/2) = sqrt(250)
	got, ok := RMSSD([]float64{800, 810, 790})
	if !ok {
		t.Fatalf("expected ok")
	}
	if want := math.Sqrt(250); !almostEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestRMSSDInsufficient(t *testing.T) {
	if _, ok := RMSSD([]float64{800}); ok {
		t.Fatalf("one interval must be insufficient")
	}
	if _, ok := RMSSD(nil); ok {
		t.Fatalf("empty input must be insufficient")
	}
}

func TestSDNN(t *testing.T) {
	// mean 800, squared deviations 100+0+100, sample variance 100
	got, ok := SDNN([]float64{790, 800, 810})
	if !ok {
		t.Fatalf("expected ok")
	}
	if !almostEqual(got, 10) {
		t.Fatalf("expected 10, got %v", got)
	}
}

func TestSDNNConstantSeries(t *testing.T) {
	got, ok := SDNN([]float64{800, 800, 800})
	if !ok || got != 0 {
		t.Fatalf("constant series should have zero sdnn, got %v", got)
	}
}

func TestPNN50(t *testing.T) {
	// diffs: 60, -10, 100 -> two of them exceed 50 ms; denominator is the
	// interval count, matching the reference analysis tooling.
	got, ok := PNN50([]float64{800, 860, 850, 950})
	if !ok {
		t.Fatalf("expected ok")
	}
	if want := 2.0 / 4.0 * 100; !almostEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestMedian(t *testing.T) {
	if got := median([]float64{3, 1, 2}); got != 2 {
		t.Fatalf("odd median: expected 2, got %v", got)
	}
	if got := median([]float64{4, 1, 3, 2}); got != 2.5 {
		t.Fatalf("even median: expected 2.5, got %v", got)
	}
}

func TestSummarize(t *testing.T) {
	s := summarize([]float64{790, 800, 810})
	if s.Count != 3 || s.Min != 790 || s.Max != 810 {
		t.Fatalf("unexpected summary %+v", s)
	}
	if !almostEqual(s.Mean, 800) || !almostEqual(s.Median, 800) {
		t.Fatalf("unexpected centre %+v", s)
	}
	if !almostEqual(s.Stddev, 10) {
		t.Fatalf("unexpected stddev %v", s.Stddev)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := summarize(nil)
	if s.Count != 0 || s.Mean != 0 || s.Stddev != 0 {
		t.Fatalf("empty summary should be zero, got %+v", s)
	}
}
