package models

import (
	"testing"
	"time"
)

func TestTimestampedSamplePromotesSampleFields(t *testing.T) {
	ts := TimestampedSample{
		Sample: Sample{
			Kind:          KindECG,
			Microvolts:    -412,
			SequenceIndex: 3,
			DeviceTick:    7_700_000_000,
			HasDeviceTick: true,
		},
		Timestamp: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}

	// Consumers read the sample fields directly off the timestamped value.
	if ts.Kind != KindECG {
		t.Fatalf("promoted Kind = %v, want KindECG", ts.Kind)
	}
	if ts.Microvolts != -412 {
		t.Fatalf("promoted Microvolts = %d, want -412", ts.Microvolts)
	}
	if ts.Signal() != SignalECG {
		t.Fatalf("promoted Signal() = %q, want %q", ts.Signal(), SignalECG)
	}
	if ts.Value() != -412 {
		t.Fatalf("promoted Value() = %v, want -412", ts.Value())
	}
	// Explicit selection stays available for call sites that keep it.
	if ts.Sample.IntervalMS != 0 || ts.Sample.DeviceTick != 7_700_000_000 {
		t.Fatalf("explicit Sample selection gave %+v", ts.Sample)
	}
}
