package models

import (
	"errors"
	"testing"
	"time"
)

func recordingSession(t *testing.T) *Session {
	t.Helper()
	s := NewSession("p01", time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	if err := s.StartRecording(); err != nil {
		t.Fatalf("start: %v", err)
	}
	return s
}

func TestSessionLifecycle(t *testing.T) {
	s := NewSession("p01", time.Now())
	if s.State() != SessionOpen {
		t.Fatalf("new session should be open")
	}
	if err := s.StartRecording(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := s.StartRecording(); !errors.Is(err, ErrAlreadyRecording) {
		t.Fatalf("double start: expected ErrAlreadyRecording, got %v", err)
	}
	if err := s.Seal(time.Now()); err != nil {
		t.Fatalf("seal: %v", err)
	}
	if s.State() != SessionSealed {
		t.Fatalf("expected sealed state")
	}
	if err := s.StartRecording(); !errors.Is(err, ErrSessionSealed) {
		t.Fatalf("restart after seal: expected ErrSessionSealed, got %v", err)
	}
	if err := s.Seal(time.Now()); !errors.Is(err, ErrNotRecording) {
		t.Fatalf("double seal: expected ErrNotRecording, got %v", err)
	}
}

func TestSessionAppendOnlyWhileRecording(t *testing.T) {
	s := NewSession("p01", time.Now())
	sample := TimestampedSample{Sample: Sample{Kind: KindRR, IntervalMS: 800}, Timestamp: time.Now()}

	if err := s.Append(SignalRRInterval, sample); !errors.Is(err, ErrNotRecording) {
		t.Fatalf("append while open: expected ErrNotRecording, got %v", err)
	}
	if err := s.StartRecording(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := s.Append(SignalRRInterval, sample); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.Seal(time.Now()); err != nil {
		t.Fatalf("seal: %v", err)
	}
	if err := s.Append(SignalRRInterval, sample); !errors.Is(err, ErrNotRecording) {
		t.Fatalf("append after seal: expected ErrNotRecording, got %v", err)
	}
	if got := len(s.Samples(SignalRRInterval)); got != 1 {
		t.Fatalf("expected 1 sample, got %d", got)
	}
}

func TestSessionAppendPreservesOrder(t *testing.T) {
	s := recordingSession(t)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		ts := TimestampedSample{
			Sample:    Sample{Kind: KindRR, IntervalMS: float64(800 + i)},
			Timestamp: base.Add(time.Duration(i) * time.Second),
		}
		if err := s.Append(SignalRRInterval, ts); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
	got := s.Samples(SignalRRInterval)
	for i := range got {
		if got[i].Sample.IntervalMS != float64(800+i) {
			t.Fatalf("order lost at %d: %v", i, got[i].Sample.IntervalMS)
		}
	}
}

func TestSessionMarkersStrictlyIncreasing(t *testing.T) {
	s := recordingSession(t)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	if err := s.Mark(MarkedTimestamp{Timestamp: base, Label: "a"}); err != nil {
		t.Fatalf("first mark: %v", err)
	}
	if err := s.Mark(MarkedTimestamp{Timestamp: base, Label: "same"}); !errors.Is(err, ErrMarkerNotAfter) {
		t.Fatalf("equal timestamp: expected ErrMarkerNotAfter, got %v", err)
	}
	if err := s.Mark(MarkedTimestamp{Timestamp: base.Add(-time.Second)}); !errors.Is(err, ErrMarkerNotAfter) {
		t.Fatalf("earlier timestamp: expected ErrMarkerNotAfter, got %v", err)
	}
	if err := s.Mark(MarkedTimestamp{Timestamp: base.Add(time.Second), Label: "b"}); err != nil {
		t.Fatalf("later mark: %v", err)
	}
	if got := len(s.Markers()); got != 2 {
		t.Fatalf("expected 2 markers, got %d", got)
	}
}

func TestSessionMarkRequiresRecording(t *testing.T) {
	s := NewSession("p01", time.Now())
	if err := s.Mark(MarkedTimestamp{Timestamp: time.Now()}); !errors.Is(err, ErrNotRecording) {
		t.Fatalf("expected ErrNotRecording, got %v", err)
	}
}
