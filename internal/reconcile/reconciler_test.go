package reconcile

import (
	"testing"
	"time"

	"PulseLab/internal/domain/models"
)

func ecgSample(tick uint64) models.Sample {
	return models.Sample{Kind: models.KindECG, DeviceTick: tick, HasDeviceTick: true}
}

func TestResolveArrivalOnlyStreams(t *testing.T) {
	r := New(nil)
	arrival := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	ts, anomaly := r.Resolve(models.Sample{Kind: models.KindHR, BPM: 60}, arrival)
	if anomaly != nil {
		t.Fatalf("unexpected anomaly: %v", anomaly)
	}
	if !ts.Timestamp.Equal(arrival) {
		t.Fatalf("expected arrival timestamp, got %v", ts.Timestamp)
	}
}

func TestResolveProjectsFromAnchor(t *testing.T) {
	r := New(map[models.SignalType]StreamClock{
		models.SignalECG: {TicksPerSecond: 1000},
	})
	anchor := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	first, _ := r.Resolve(ecgSample(5000), anchor)
	if !first.Timestamp.Equal(anchor) {
		t.Fatalf("first sample should anchor at arrival, got %v", first.Timestamp)
	}

	// 250 ticks at 1000 ticks/s is 250 ms, regardless of arrival time.
	late := anchor.Add(5 * time.Second)
	second, anomaly := r.Resolve(ecgSample(5250), late)
	if anomaly != nil {
		t.Fatalf("unexpected anomaly: %v", anomaly)
	}
	if want := anchor.Add(250 * time.Millisecond); !second.Timestamp.Equal(want) {
		t.Fatalf("expected %v, got %v", want, second.Timestamp)
	}
}

func TestResolveTickWrap(t *testing.T) {
	r := New(map[models.SignalType]StreamClock{
		models.SignalECG: {TicksPerSecond: 1000, Modulus: 256},
	})
	anchor := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	ticks := []uint64{100, 200, 50}
	var out []time.Time
	var sawWrap bool
	for i, tick := range ticks {
		ts, anomaly := r.Resolve(ecgSample(tick), anchor.Add(time.Duration(i)*time.Millisecond))
		if anomaly != nil && anomaly.Kind == AnomalyTickWrap {
			sawWrap = true
		}
		out = append(out, ts.Timestamp)
	}
	if !sawWrap {
		t.Fatalf("expected a tick wrap anomaly")
	}
	for i := 1; i < len(out); i++ {
		if out[i].Before(out[i-1]) {
			t.Fatalf("timestamps went backward: %v then %v", out[i-1], out[i])
		}
	}
	// Wrap credit: 50 + 256 - 200 = 106 ticks = 106 ms past the previous.
	if want := out[1].Add(106 * time.Millisecond); !out[2].Equal(want) {
		t.Fatalf("expected %v after wrap, got %v", want, out[2])
	}
}

func TestResolveClampsBackwardArrival(t *testing.T) {
	r := New(nil)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	first, _ := r.Resolve(models.Sample{Kind: models.KindRR, IntervalMS: 800}, base)
	second, anomaly := r.Resolve(models.Sample{Kind: models.KindRR, IntervalMS: 810}, base.Add(-time.Second))
	if anomaly == nil || anomaly.Kind != AnomalyBackwardArrival {
		t.Fatalf("expected backward arrival anomaly, got %v", anomaly)
	}
	if second.Timestamp.Before(first.Timestamp) {
		t.Fatalf("clamp failed: %v before %v", second.Timestamp, first.Timestamp)
	}
}

func TestResolveStreamsAreIndependent(t *testing.T) {
	r := New(map[models.SignalType]StreamClock{
		models.SignalECG: {TicksPerSecond: 1000},
	})
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	r.Resolve(ecgSample(1000), base.Add(time.Hour))
	// HR stream must not inherit the ECG anchor.
	ts, _ := r.Resolve(models.Sample{Kind: models.KindHR, BPM: 60}, base)
	if !ts.Timestamp.Equal(base) {
		t.Fatalf("hr stream leaked ecg state: %v", ts.Timestamp)
	}
}
