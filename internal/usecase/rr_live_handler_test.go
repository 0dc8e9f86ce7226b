package usecase

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"PulseLab/internal/service/live"
)

func rrMessage(signal string, v float64) []byte {
	return []byte(fmt.Sprintf(`{"signal":%q,"t":%d,"v":%g}`, signal, time.Now().UnixMilli(), v))
}

func feedRR(t *testing.T, h *RRLiveHandler, values ...float64) {
	t.Helper()
	for i, v := range values {
		if err := h.Handle(context.Background(), rrMessage("RRinterval", v)); err != nil {
			t.Fatalf("handle %d: %v", i, err)
		}
	}
}

func TestLiveWindowEmitsOncePerFullWindow(t *testing.T) {
	status := live.New(time.Minute)
	h := NewRRLiveHandler("pulselab.RRinterval", status, newCountMetrics())
	now := time.Now()

	// 49 intervals: window not full, no snapshot yet.
	for i := 0; i < rrWindowSize-1; i++ {
		feedRR(t, h, 800)
	}
	if _, ok := status.RollingHRV(now); ok {
		t.Fatalf("snapshot published before window filled")
	}

	// 50th interval completes a constant window: SDNN and RMSSD are zero.
	feedRR(t, h, 800)
	snap, ok := status.RollingHRV(now)
	if !ok {
		t.Fatalf("expected snapshot after full window")
	}
	if snap.WindowSize != rrWindowSize {
		t.Fatalf("window size = %d, want %d", snap.WindowSize, rrWindowSize)
	}
	if snap.SDNN != 0 || snap.RMSSD != 0 {
		t.Fatalf("constant window: sdnn=%v rmssd=%v, want 0/0", snap.SDNN, snap.RMSSD)
	}

	// The window resets after each emission: 49 more intervals keep the
	// old snapshot, the 50th replaces it.
	for i := 0; i < rrWindowSize-1; i++ {
		if i%2 == 0 {
			feedRR(t, h, 780)
		} else {
			feedRR(t, h, 820)
		}
	}
	if snap, _ = status.RollingHRV(now); snap.SDNN != 0 {
		t.Fatalf("snapshot replaced before second window filled")
	}
	feedRR(t, h, 820)

	snap, ok = status.RollingHRV(now)
	if !ok {
		t.Fatalf("expected second snapshot")
	}
	// Alternating 780/820: sample stddev sqrt(50*20^2/49), successive
	// differences all 40 ms.
	wantSDNN := math.Sqrt(50 * 400 / 49.0)
	if math.Abs(snap.SDNN-wantSDNN) > 1e-9 {
		t.Fatalf("sdnn = %v, want %v", snap.SDNN, wantSDNN)
	}
	if math.Abs(snap.RMSSD-40) > 1e-9 {
		t.Fatalf("rmssd = %v, want 40", snap.RMSSD)
	}
}

func TestLiveWindowSkipsForeignSignals(t *testing.T) {
	status := live.New(time.Minute)
	metrics := newCountMetrics()
	h := NewRRLiveHandler("pulselab.RRinterval", status, metrics)

	for i := 0; i < rrWindowSize-1; i++ {
		feedRR(t, h, 800)
	}
	// A heart-rate value republished onto the topic must not fill the
	// window.
	if err := h.Handle(context.Background(), rrMessage("HeartRate", 72)); err != nil {
		t.Fatalf("foreign signal: %v", err)
	}
	if _, ok := status.RollingHRV(time.Now()); ok {
		t.Fatalf("foreign signal counted toward the window")
	}
	if metrics.errors["consumer_signal"] != 1 {
		t.Fatalf("consumer_signal errors = %d, want 1", metrics.errors["consumer_signal"])
	}

	feedRR(t, h, 800)
	if _, ok := status.RollingHRV(time.Now()); !ok {
		t.Fatalf("expected snapshot after 50 rr intervals")
	}
}

func TestLiveWindowCleansOutliers(t *testing.T) {
	status := live.New(time.Minute)
	h := NewRRLiveHandler("pulselab.RRinterval", status, newCountMetrics())

	// One ectopic interval among 49 steady ones sits about seven standard
	// deviations out; the clean pass replaces it before the stats run.
	for i := 0; i < rrWindowSize-1; i++ {
		feedRR(t, h, 800)
	}
	feedRR(t, h, 3000)

	snap, ok := status.RollingHRV(time.Now())
	if !ok {
		t.Fatalf("expected snapshot after full window")
	}
	if snap.WindowSize != rrWindowSize {
		t.Fatalf("window size = %d, want %d", snap.WindowSize, rrWindowSize)
	}
	if snap.SDNN > 1e-9 || snap.RMSSD > 1e-9 {
		t.Fatalf("outlier survived cleaning: sdnn=%v rmssd=%v", snap.SDNN, snap.RMSSD)
	}
}
