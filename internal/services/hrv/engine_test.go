package hrv

import (
	"reflect"
	"testing"
	"time"

	"PulseLab/internal/domain/models"
)

func rrSeries(start time.Time, intervals ...float64) []models.TimestampedSample {
	out := make([]models.TimestampedSample, 0, len(intervals))
	ts := start
	for _, ms := range intervals {
		ts = ts.Add(time.Duration(ms) * time.Millisecond)
		out = append(out, models.TimestampedSample{
			Sample:    models.Sample{Kind: models.KindRR, IntervalMS: ms},
			Timestamp: ts,
		})
	}
	return out
}

func TestAnalyzeOverall(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rr := rrSeries(start, 800, 810, 790, 805)

	report := New().Analyze("p01", rr, nil, Options{})
	if report.Participant != "p01" {
		t.Fatalf("unexpected participant %q", report.Participant)
	}
	if !report.Overall.Sufficient {
		t.Fatalf("four intervals should be sufficient")
	}
	if report.Overall.RR.Count != 4 {
		t.Fatalf("expected 4 intervals, got %d", report.Overall.RR.Count)
	}
	if len(report.Segments) != 0 {
		t.Fatalf("no markers should yield no segments")
	}
	if !report.Overall.Start.Equal(rr[0].Timestamp) || !report.Overall.End.Equal(rr[3].Timestamp) {
		t.Fatalf("overall window mismatch: %v..%v", report.Overall.Start, report.Overall.End)
	}
}

func TestAnalyzeSegmentPartition(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rr := rrSeries(start, 800, 800, 800, 800, 800, 800, 800, 800, 800, 800)

	// Three markers inside the recording: exactly two segments, and every
	// interval lands in exactly one of them even outside the marked range.
	markers := []models.MarkedTimestamp{
		{Timestamp: rr[3].Timestamp, Label: "Baseline"},
		{Timestamp: rr[6].Timestamp, Label: "Task"},
		{Timestamp: rr[8].Timestamp, Label: "Recovery"},
	}

	report := New().Analyze("p01", rr, markers, Options{})
	if len(report.Segments) != 2 {
		t.Fatalf("expected 2 segments from 3 markers, got %d", len(report.Segments))
	}
	if report.Segments[0].Label != "Baseline" || report.Segments[1].Label != "Task" {
		t.Fatalf("unexpected labels %q %q", report.Segments[0].Label, report.Segments[1].Label)
	}

	total := 0
	for _, seg := range report.Segments {
		total += seg.RR.Count
	}
	if total != len(rr) {
		t.Fatalf("segments must cover every interval exactly once: %d != %d", total, len(rr))
	}
	// First segment reaches back to session start, last reaches the end.
	if report.Segments[0].RR.Count != 6 {
		t.Fatalf("first segment should hold the 6 intervals before the second marker, got %d", report.Segments[0].RR.Count)
	}
	if report.Segments[1].RR.Count != 4 {
		t.Fatalf("last segment should hold the rest, got %d", report.Segments[1].RR.Count)
	}
}

func TestAnalyzeSegmentLabelFallback(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rr := rrSeries(start, 800, 810, 805, 795)
	markers := []models.MarkedTimestamp{
		{Timestamp: rr[1].Timestamp},
		{Timestamp: rr[3].Timestamp},
	}

	report := New().Analyze("p01", rr, markers, Options{})
	if len(report.Segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(report.Segments))
	}
	if report.Segments[0].Label != "Segment_1" {
		t.Fatalf("unexpected fallback label %q", report.Segments[0].Label)
	}
}

func TestAnalyzeInsufficientSegment(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rr := rrSeries(start, 800)

	report := New().Analyze("p01", rr, nil, Options{})
	if report.Overall.Sufficient {
		t.Fatalf("one interval must be insufficient")
	}
	if report.Overall.RR.Count != 1 {
		t.Fatalf("summary still counts the interval: %+v", report.Overall.RR)
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rr := rrSeries(start, 800, 760, 820, 790, 810, 805)
	markers := []models.MarkedTimestamp{
		{Timestamp: rr[1].Timestamp, Label: "A"},
		{Timestamp: rr[4].Timestamp, Label: "B"},
	}

	a := New().Analyze("p01", rr, markers, Options{Clean: true})
	b := New().Analyze("p01", rr, markers, Options{Clean: true})
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("same input produced different reports")
	}
}

func TestAnalyzeCleanFlag(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rr := rrSeries(start, 800, 810, 790)

	if report := New().Analyze("p01", rr, nil, Options{Clean: true}); !report.Cleaned {
		t.Fatalf("report should record that cleaning ran")
	}
	if report := New().Analyze("p01", rr, nil, Options{}); report.Cleaned {
		t.Fatalf("report should record that cleaning did not run")
	}
}
